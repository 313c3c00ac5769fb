// Package tracker is the client side of the analytics service. A Client
// instruments one host page: it reports page views, clicks, form submissions,
// visibility changes, page exits and performance timings to the ingestion
// endpoint.
//
// Delivery is fire-and-forget: every event is sent on its own goroutine with
// no batching, queueing or retries, and failures never reach the host page.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PratikDhanave/web-analytics-service/pkg/logger"
)

var (
	ErrMissingAPIKey      = errors.New("tracker: API key is required")
	ErrAlreadyInitialized = errors.New("tracker: already initialized")
)

const maxClickText = 100

// Client tracks a single page. Create one with New per embedding page.
type Client struct {
	page        Page
	transport   Transport
	log         logger.Logger
	now         func() time.Time
	settleDelay time.Duration

	sessionID    string
	sessionStart time.Time

	mu          sync.Mutex
	settings    Settings
	apiKey      string
	initialized bool
	userID      string
	removers    []func()

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates an uninitialized client for page. A fresh session starts here.
func New(page Page, opts ...Option) *Client {
	c := &Client{
		page:        page,
		transport:   &HTTPTransport{},
		log:         logger.New(os.Stderr, slog.LevelDebug, logger.WithSource(false)),
		now:         time.Now,
		settleDelay: defaultSettleDelay,
		settings:    defaultSettings(),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("tracker")
	c.sessionID = uuid.NewString()
	c.sessionStart = c.now()
	return c
}

// Init activates tracking with apiKey. With auto-tracking on it attaches the
// page listeners; page view and performance tracking follow their own switches.
func (c *Client) Init(apiKey string, settings ...Setting) error {
	ctx := context.Background()

	s := defaultSettings()
	for _, fn := range settings {
		fn(&s)
	}
	if strings.TrimSpace(apiKey) == "" {
		c.log.Error(ctx, "API key is required")
		return ErrMissingAPIKey
	}
	if s.Endpoint == "" {
		s.Endpoint = DefaultEndpoint(c.page.Location().Hostname)
	}
	s.Endpoint = strings.TrimRight(s.Endpoint, "/")

	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return ErrAlreadyInitialized
	}
	c.apiKey = apiKey
	c.settings = s
	c.initialized = true
	c.mu.Unlock()

	if s.Debug {
		c.log.Info(ctx, "initialized",
			logger.String("endpoint", s.Endpoint),
			logger.String("session_id", c.sessionID),
			logger.Any("settings", s))
	}

	if s.AutoTrack {
		c.attachListeners(s)
	}
	if s.TrackPageViews {
		c.TrackPageView("")
	}
	if s.TrackPerformance {
		c.schedulePerformance()
	}
	return nil
}

func (c *Client) attachListeners(s Settings) {
	es, ok := c.page.(EventSource)
	if !ok {
		if s.Debug {
			c.log.Debug(context.Background(), "page has no event source; auto-tracking skipped")
		}
		return
	}

	if s.TrackClicks {
		c.addRemover(es.OnClick(func(el Element) { c.TrackClick(el, nil) }))
	}
	if s.TrackForms {
		c.addRemover(es.OnSubmit(func(f Form) { c.TrackFormSubmission(f, nil) }))
	}
	c.addRemover(es.OnVisibilityChange(func(v Visibility) {
		c.Track("page_visibility", map[string]any{
			"visible":         v != Hidden,
			"visibilityState": string(v),
		})
	}))
	c.addRemover(es.OnUnload(func() {
		c.Track("page_exit", map[string]any{
			"timeOnPage": c.now().Sub(c.sessionStart).Milliseconds(),
		})
	}))
}

// Track sends a custom event stamped with the current page and session.
// Before Init it logs a warning and drops the event.
func (c *Client) Track(eventType string, metadata map[string]any) {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		c.log.Warn(context.Background(), "not initialized; call Init first",
			logger.String("event_type", eventType))
		return
	}
	ev := Event{
		APIKey:    c.apiKey,
		EventType: eventType,
		PageURL:   c.page.Location().Href,
		Referrer:  c.page.Referrer(),
		UserAgent: c.page.UserAgent(),
		SessionID: c.sessionID,
		UserID:    c.userID,
		Metadata:  metadata,
	}
	endpoint, debug := c.settings.Endpoint, c.settings.Debug
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.send(endpoint, ev, debug)
	}()
}

func (c *Client) send(endpoint string, ev Event, debug bool) {
	ctx := context.Background()
	if err := c.transport.Send(ctx, endpoint, ev); err != nil {
		if debug {
			c.log.Error(ctx, "failed to send event",
				logger.String("event_type", ev.EventType), logger.Error(err))
		}
		return
	}
	if debug {
		c.log.Debug(ctx, "event sent", logger.String("event_type", ev.EventType))
	}
}

// TrackPageView reports a page view. An empty url means the current location.
func (c *Client) TrackPageView(url string) {
	loc := c.page.Location()
	if url == "" {
		url = loc.Href
	}
	c.Track("pageview", map[string]any{
		"url":   url,
		"title": c.page.Title(),
		"path":  loc.Pathname,
	})
}

// TrackClick reports a click on el. Keys in metadata override derived ones.
func (c *Client) TrackClick(el Element, metadata map[string]any) {
	data := map[string]any{}
	putNonEmpty(data, "tagName", strings.ToLower(el.TagName))
	putNonEmpty(data, "id", el.ID)
	putNonEmpty(data, "className", el.ClassName)
	putNonEmpty(data, "text", truncateRunes(el.Text, maxClickText))
	putNonEmpty(data, "href", el.Href)
	c.Track("click", merge(data, metadata))
}

// TrackFormSubmission reports a submitted form. Sensitive fields are counted
// but their values are never sent.
func (c *Client) TrackFormSubmission(f Form, metadata map[string]any) {
	fields := map[string]any{}
	for _, fld := range f.Fields {
		if !isSensitiveField(fld.Name) {
			fields[fld.Name] = fld.Value
		}
	}

	method := f.Method
	if method == "" {
		method = "get"
	}
	data := map[string]any{
		"method":     method,
		"fieldCount": len(f.Fields),
	}
	putNonEmpty(data, "formId", f.ID)
	putNonEmpty(data, "formName", f.Name)
	putNonEmpty(data, "action", f.Action)
	if len(fields) > 0 {
		data["fields"] = fields
	}
	c.Track("form_submission", merge(data, metadata))
}

// SetUserID attaches id to every subsequent event.
func (c *Client) SetUserID(id string) {
	c.mu.Lock()
	c.userID = id
	debug := c.settings.Debug
	c.mu.Unlock()
	if debug {
		c.log.Info(context.Background(), "user id set", logger.String("user_id", id))
	}
}

func (c *Client) ClearUserID() {
	c.mu.Lock()
	c.userID = ""
	debug := c.settings.Debug
	c.mu.Unlock()
	if debug {
		c.log.Info(context.Background(), "user id cleared")
	}
}

// SessionID is fixed for the lifetime of the client.
func (c *Client) SessionID() string { return c.sessionID }

// SessionStart is when the client was created.
func (c *Client) SessionStart() time.Time { return c.sessionStart }

// Settings returns the effective settings after Init.
func (c *Client) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Close detaches listeners and observers and cancels a pending performance
// collection. Events already in flight are not waited for.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		removers := c.removers
		c.removers = nil
		c.mu.Unlock()
		for _, remove := range removers {
			remove()
		}
	})
}

// Wait blocks until every event sent so far has been delivered or dropped.
func (c *Client) Wait() {
	c.wg.Wait()
}

func (c *Client) addRemover(remove func()) {
	if remove == nil {
		return
	}
	c.mu.Lock()
	select {
	case <-c.done:
		c.mu.Unlock()
		remove()
		return
	default:
	}
	c.removers = append(c.removers, remove)
	c.mu.Unlock()
}

func (c *Client) debug() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings.Debug
}

func putNonEmpty(m map[string]any, key, val string) {
	if val != "" {
		m[key] = val
	}
}

func merge(derived, extra map[string]any) map[string]any {
	for k, v := range extra {
		derived[k] = v
	}
	return derived
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
