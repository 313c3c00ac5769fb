// Package enrich turns a validated TrackedEvent into the record that gets persisted.
package enrich

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/PratikDhanave/web-analytics-service/internal/models"
)

// UserAgent prefers the client-reported user agent and falls back to the request header.
func UserAgent(ev models.TrackedEvent, r *http.Request) string {
	if ev.UserAgent != "" {
		return ev.UserAgent
	}
	return r.Header.Get("User-Agent")
}

// Event builds the EnrichedEvent for a website that has already been resolved.
// Classification is always computed here, never taken from the payload.
func Event(ev models.TrackedEvent, site models.Website, r *http.Request, now time.Time) models.EnrichedEvent {
	ua := UserAgent(ev, r)
	client := ClassifyUserAgent(ua)

	metadata := ev.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	return models.EnrichedEvent{
		ID:         uuid.NewString(),
		WebsiteID:  site.ID,
		EventType:  ev.EventType,
		PageURL:    ev.PageURL,
		Referrer:   ev.Referrer,
		UserAgent:  ua,
		IPAddress:  ClientIP(r),
		DeviceType: client.DeviceType,
		Browser:    client.Browser,
		OS:         client.OS,
		SessionID:  ev.SessionID,
		UserID:     ev.UserID,
		Metadata:   metadata,
		CreatedAt:  now.UTC(),
	}
}
