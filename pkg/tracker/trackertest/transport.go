package trackertest

import (
	"context"
	"sync"

	"github.com/PratikDhanave/web-analytics-service/pkg/tracker"
)

// Transport records every event instead of sending it.
type Transport struct {
	mu        sync.Mutex
	endpoints []string
	events    []tracker.Event
	// Err, when set, is returned from every Send after recording.
	Err error
}

var _ tracker.Transport = (*Transport)(nil)

func (t *Transport) Send(_ context.Context, endpoint string, ev tracker.Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endpoints = append(t.endpoints, endpoint)
	t.events = append(t.events, ev)
	return t.Err
}

// Events returns the recorded events in arrival order, which is not
// necessarily the order they were tracked in.
func (t *Transport) Events() []tracker.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]tracker.Event(nil), t.events...)
}

// Endpoints returns the endpoint of each recorded Send.
func (t *Transport) Endpoints() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.endpoints...)
}

// OfType returns the recorded events with the given event type.
func (t *Transport) OfType(eventType string) []tracker.Event {
	var out []tracker.Event
	for _, ev := range t.Events() {
		if ev.EventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}
