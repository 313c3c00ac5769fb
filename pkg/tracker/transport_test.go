package tracker_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/web-analytics-service/pkg/tracker"
)

func TestHTTPTransport_PostsJSON(t *testing.T) {
	var (
		gotPath, gotType string
		gotBody          map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := &tracker.HTTPTransport{Client: srv.Client()}
	err := tr.Send(context.Background(), srv.URL+"/", tracker.Event{
		APIKey:    "ak_test",
		EventType: "pageview",
		SessionID: "s-1",
		Metadata:  map[string]any{"path": "/"},
	})
	require.NoError(t, err)

	assert.Equal(t, tracker.TrackPath, gotPath)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "ak_test", gotBody["apiKey"])
	assert.Equal(t, "pageview", gotBody["eventType"])
	assert.Equal(t, "s-1", gotBody["sessionId"])
	assert.NotContains(t, gotBody, "userId")
	assert.NotContains(t, gotBody, "referrer")
}

func TestHTTPTransport_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := (&tracker.HTTPTransport{}).Send(context.Background(), srv.URL, tracker.Event{EventType: "x"})
	var se *tracker.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

func TestHTTPTransport_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := (&tracker.HTTPTransport{}).Send(context.Background(), url, tracker.Event{EventType: "x"})
	assert.Error(t, err)
	var se *tracker.StatusError
	assert.False(t, errors.As(err, &se))
}
