package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/web-analytics-service/internal/models"
)

func TestMemoryStore_AppendAssignsIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ev := models.EnrichedEvent{WebsiteID: "site_1", EventType: "pageview"}
	id1, err := s.Append(ctx, ev)
	require.NoError(t, err)
	id2, err := s.Append(ctx, ev)
	require.NoError(t, err)

	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2, "identical payloads are stored twice")
	assert.Equal(t, 2, s.Len())

	stored := s.Events()
	assert.Equal(t, id1, stored[0].ID)
	assert.False(t, stored[0].CreatedAt.IsZero())
	assert.NotNil(t, stored[0].Metadata)
}

func TestMemoryStore_KeepsProvidedID(t *testing.T) {
	s := NewMemoryStore()
	id, err := s.Append(context.Background(), models.EnrichedEvent{ID: "fixed", WebsiteID: "w", EventType: "click"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)
}

func TestMemoryStore_RejectsIncompleteEvents(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Append(context.Background(), models.EnrichedEvent{EventType: "click"})
	assert.Error(t, err)
	assert.Zero(t, s.Len())
}

func TestMemoryStore_SnapshotIsIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	meta := map[string]any{"k": "v"}
	_, err := s.Append(ctx, models.EnrichedEvent{WebsiteID: "w", EventType: "click", Metadata: meta})
	require.NoError(t, err)

	meta["k"] = "changed"
	assert.Equal(t, "v", s.Events()[0].Metadata["k"])
}

func TestMemoryStore_CountEvents(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, ev := range []models.EnrichedEvent{
		{WebsiteID: "a", EventType: "pageview", CreatedAt: base},
		{WebsiteID: "a", EventType: "pageview", CreatedAt: base.Add(time.Minute)},
		{WebsiteID: "a", EventType: "pageview", CreatedAt: base.Add(time.Hour)},
		{WebsiteID: "a", EventType: "click", CreatedAt: base},
		{WebsiteID: "b", EventType: "pageview", CreatedAt: base},
	} {
		_, err := s.Append(ctx, ev)
		require.NoError(t, err, i)
	}

	n, err := s.CountEvents(ctx, "a", "pageview", base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "window is half-open")
}

func TestMemoryStore_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Append(ctx, models.EnrichedEvent{WebsiteID: "w", EventType: "click"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}
