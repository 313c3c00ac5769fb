package models

import "time"

// TrackedEvent is the POST /api/analytics/track payload sent by the tracking client.
// apiKey and eventType are required; everything else is optional.
type TrackedEvent struct {
	APIKey    string         `json:"apiKey" binding:"required"`
	EventType string         `json:"eventType" binding:"required"`
	PageURL   string         `json:"pageUrl,omitempty"`
	Referrer  string         `json:"referrer,omitempty"`
	UserAgent string         `json:"userAgent,omitempty"`
	SessionID string         `json:"sessionId,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// EnrichedEvent is the persisted record: the tracked fields plus server-derived data.
// It is written once and never updated.
type EnrichedEvent struct {
	ID         string         `json:"id"`
	WebsiteID  string         `json:"websiteId"`
	EventType  string         `json:"eventType"`
	PageURL    string         `json:"pageUrl,omitempty"`
	Referrer   string         `json:"referrer,omitempty"`
	UserAgent  string         `json:"userAgent"`
	IPAddress  string         `json:"ipAddress"`
	DeviceType string         `json:"deviceType"`
	Browser    string         `json:"browser"`
	OS         string         `json:"os"`
	SessionID  string         `json:"sessionId,omitempty"`
	UserID     string         `json:"userId,omitempty"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// TrackResponse is returned by POST /api/analytics/track on success.
type TrackResponse struct {
	Success bool   `json:"success"`
	EventID string `json:"eventId"`
}

// FieldError describes one rejected field of a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
// Details is only populated for validation failures.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// StatsResponse is returned by GET /api/analytics/stats.
type StatsResponse struct {
	EventType string    `json:"eventType"`
	Count     int64     `json:"count"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
}
