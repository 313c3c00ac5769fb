package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PratikDhanave/web-analytics-service/internal/models"
)

// MemoryStore is an append-only in-process event store.
// It backs local development and tests; contents are lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	events []models.EnrichedEvent
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append stores a copy of ev and returns its id, assigning one when empty.
func (m *MemoryStore) Append(ctx context.Context, ev models.EnrichedEvent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ev.WebsiteID == "" || ev.EventType == "" {
		return "", errors.New("websiteID/eventType required")
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	ev.Metadata = cloneMetadata(ev.Metadata)

	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	return ev.ID, nil
}

// CountEvents counts events for (websiteID, eventType) created in [from,to).
func (m *MemoryStore) CountEvents(_ context.Context, websiteID, eventType string, from, to time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, ev := range m.events {
		if ev.WebsiteID != websiteID || ev.EventType != eventType {
			continue
		}
		if ev.CreatedAt.Before(from) || !ev.CreatedAt.Before(to) {
			continue
		}
		n++
	}
	return n, nil
}

// Events returns a snapshot of everything appended so far, in append order.
func (m *MemoryStore) Events() []models.EnrichedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.EnrichedEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Len returns the number of stored events.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }

func cloneMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
