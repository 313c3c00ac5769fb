package tracker

import (
	"net/http"
	"strings"
	"time"

	"github.com/PratikDhanave/web-analytics-service/pkg/logger"
)

// Endpoints used when Init is not given one.
const (
	LocalEndpoint      = "http://localhost:8080"
	ProductionEndpoint = "https://analytics.example.com"
)

const defaultSettleDelay = time.Second

// Settings are the per-Init tracking switches.
type Settings struct {
	Endpoint         string
	AutoTrack        bool
	TrackPageViews   bool
	TrackClicks      bool
	TrackForms       bool
	TrackPerformance bool
	Debug            bool
}

func defaultSettings() Settings {
	return Settings{
		AutoTrack:        true,
		TrackPageViews:   true,
		TrackClicks:      true,
		TrackForms:       true,
		TrackPerformance: true,
	}
}

// Setting overrides one default in Init.
type Setting func(*Settings)

func WithEndpoint(endpoint string) Setting {
	return func(s *Settings) { s.Endpoint = endpoint }
}

// WithAutoTrack toggles the click, submit, visibility and unload listeners.
func WithAutoTrack(on bool) Setting {
	return func(s *Settings) { s.AutoTrack = on }
}

func WithPageViews(on bool) Setting {
	return func(s *Settings) { s.TrackPageViews = on }
}

func WithClicks(on bool) Setting {
	return func(s *Settings) { s.TrackClicks = on }
}

func WithForms(on bool) Setting {
	return func(s *Settings) { s.TrackForms = on }
}

func WithPerformance(on bool) Setting {
	return func(s *Settings) { s.TrackPerformance = on }
}

// WithDebug logs deliveries and swallowed errors.
func WithDebug(on bool) Setting {
	return func(s *Settings) { s.Debug = on }
}

// DefaultEndpoint picks the ingestion base URL for a page host.
func DefaultEndpoint(hostname string) string {
	if strings.EqualFold(hostname, "localhost") {
		return LocalEndpoint
	}
	return ProductionEndpoint
}

// Option configures New.
type Option func(*Client)

// WithTransport replaces the HTTP delivery.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithHTTPClient delivers through hc instead of the default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.transport = &HTTPTransport{Client: hc} }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock replaces time.Now, used for session start and time on page.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSettleDelay sets how long after load performance is collected.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.settleDelay = d
		}
	}
}
