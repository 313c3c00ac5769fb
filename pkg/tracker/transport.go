package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TrackPath is appended to the endpoint for every delivery.
const TrackPath = "/api/analytics/track"

const defaultHTTPTimeout = 10 * time.Second

// Event is the wire payload sent to the ingestion endpoint.
type Event struct {
	APIKey    string         `json:"apiKey"`
	EventType string         `json:"eventType"`
	PageURL   string         `json:"pageUrl,omitempty"`
	Referrer  string         `json:"referrer,omitempty"`
	UserAgent string         `json:"userAgent,omitempty"`
	SessionID string         `json:"sessionId,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Transport delivers one event. Implementations must be safe for concurrent use.
type Transport interface {
	Send(ctx context.Context, endpoint string, ev Event) error
}

// StatusError reports a non-2xx response from the endpoint.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tracker: endpoint responded HTTP %d", e.StatusCode)
}

// HTTPTransport POSTs events as JSON.
type HTTPTransport struct {
	// Client defaults to an http.Client with a 10s timeout.
	Client *http.Client
}

var defaultHTTPClient = &http.Client{Timeout: defaultHTTPTimeout}

func (t *HTTPTransport) client() *http.Client {
	if t == nil || t.Client == nil {
		return defaultHTTPClient
	}
	return t.Client
}

// Send posts ev to endpoint + TrackPath.
func (t *HTTPTransport) Send(ctx context.Context, endpoint string, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("tracker: encode event: %w", err)
	}

	url := strings.TrimRight(endpoint, "/") + TrackPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("tracker: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client().Do(req)
	if err != nil {
		return fmt.Errorf("tracker: post event: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
