package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/PratikDhanave/web-analytics-service/internal/models"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report "apiKey" instead of "APIKey".
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// fieldErrors converts a binding failure into per-field details.
func fieldErrors(err error) []models.FieldError {
	var (
		verrs  validator.ValidationErrors
		typErr *json.UnmarshalTypeError
		synErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &verrs):
		out := make([]models.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, models.FieldError{Field: fe.Field(), Message: describe(fe)})
		}
		return out
	case errors.As(err, &typErr):
		field := typErr.Field
		if field == "" {
			field = "body"
		}
		return []models.FieldError{{
			Field:   field,
			Message: fmt.Sprintf("expected %s, got %s", typErr.Type.String(), typErr.Value),
		}}
	case errors.As(err, &synErr):
		return []models.FieldError{{Field: "body", Message: fmt.Sprintf("malformed JSON at offset %d", synErr.Offset)}}
	case errors.Is(err, io.EOF):
		return []models.FieldError{{Field: "body", Message: "request body is empty"}}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return []models.FieldError{{Field: "body", Message: "malformed JSON: unexpected end of input"}}
	default:
		return []models.FieldError{{Field: "body", Message: "invalid JSON payload"}}
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}
