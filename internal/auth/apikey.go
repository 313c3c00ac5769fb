package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/web-analytics-service/internal/models"
	"github.com/PratikDhanave/web-analytics-service/pkg/logger"
)

// websiteCtxKey is the Gin context key used to store the authenticated website.
const websiteCtxKey = "website"

// UnauthorizedMessage is deliberately the same for unknown and inactive keys.
const UnauthorizedMessage = "Invalid API key or website inactive"

// Registry resolves an API key to an active website.
type Registry interface {
	FindActiveByAPIKey(ctx context.Context, apiKey string) (models.Website, bool, error)
}

// KeyFromHeaders reads X-API-Key, falling back to "Authorization: Bearer <key>".
func KeyFromHeaders(h http.Header) string {
	if k := strings.TrimSpace(h.Get("X-API-Key")); k != "" {
		return k
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(h.Get("Authorization")), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// APIKeyMiddleware enforces multi-tenancy for read endpoints by mapping the
// header key to an active website through the registry.
func APIKeyMiddleware(reg Registry, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := KeyFromHeaders(c.Request.Header)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: UnauthorizedMessage})
			return
		}
		site, ok, err := reg.FindActiveByAPIKey(c.Request.Context(), key)
		if err != nil {
			log.Error(c.Request.Context(), "website lookup failed", logger.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: UnauthorizedMessage})
			return
		}
		c.Set(websiteCtxKey, site)
		c.Next()
	}
}

// Website returns the authenticated website from the request context.
func Website(c *gin.Context) (models.Website, bool) {
	v, ok := c.Get(websiteCtxKey)
	if !ok {
		return models.Website{}, false
	}
	site, ok := v.(models.Website)
	return site, ok
}
