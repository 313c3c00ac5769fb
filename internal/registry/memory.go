// Package registry resolves website API keys to tenant configuration.
package registry

import (
	"context"
	"sync"

	"github.com/PratikDhanave/web-analytics-service/internal/models"
)

// Memory is a concurrency-safe in-process website registry keyed by API key.
type Memory struct {
	mu    sync.RWMutex
	byKey map[string]models.Website
}

// NewMemory creates a registry pre-populated with websites.
func NewMemory(websites ...models.Website) *Memory {
	m := &Memory{byKey: make(map[string]models.Website, len(websites))}
	for _, w := range websites {
		m.byKey[w.APIKey] = w
	}
	return m
}

// FindActiveByAPIKey returns the website owning apiKey if it is active.
// Unknown and inactive keys are indistinguishable to the caller.
func (m *Memory) FindActiveByAPIKey(_ context.Context, apiKey string) (models.Website, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.byKey[apiKey]
	if !ok || !w.IsActive {
		return models.Website{}, false, nil
	}
	return w, true, nil
}

// Put inserts or replaces a website.
func (m *Memory) Put(w models.Website) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKey[w.APIKey] = w
}

// SetActive toggles a website by id. It reports whether the id was found.
func (m *Memory) SetActive(id string, active bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, w := range m.byKey {
		if w.ID == id {
			w.IsActive = active
			m.byKey[key] = w
			return true
		}
	}
	return false
}

// Replace swaps the whole key space atomically.
func (m *Memory) Replace(websites []models.Website) {
	next := make(map[string]models.Website, len(websites))
	for _, w := range websites {
		next[w.APIKey] = w
	}
	m.mu.Lock()
	m.byKey = next
	m.mu.Unlock()
}

// Len returns the number of registered websites.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byKey)
}

// Ping always succeeds; it lets Memory satisfy readiness checks.
func (m *Memory) Ping(context.Context) error { return nil }
