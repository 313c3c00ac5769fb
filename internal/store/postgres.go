package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PratikDhanave/web-analytics-service/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the durable website registry and event store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schemaSQL)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// Append inserts one event and returns its id. There is no conflict handling:
// every call is a new row, duplicates included.
func (p *PostgresStore) Append(ctx context.Context, ev models.EnrichedEvent) (string, error) {
	if ev.WebsiteID == "" || ev.EventType == "" {
		return "", errors.New("websiteID/eventType required")
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	metadata := ev.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}

	var id string
	err = p.pool.QueryRow(ctx, `
		INSERT INTO analytics_events(
			id, website_id, event_type, page_url, referrer, user_agent, ip_address,
			device_type, browser, os, session_id, user_id, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id::text
	`,
		ev.ID, ev.WebsiteID, ev.EventType, nullable(ev.PageURL), nullable(ev.Referrer),
		ev.UserAgent, ev.IPAddress, ev.DeviceType, ev.Browser, ev.OS,
		nullable(ev.SessionID), nullable(ev.UserID), metadataJSON, ev.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return id, nil
}

// CountEvents returns the number of events for (websiteID, eventType) created in [from,to).
// Using a half-open interval avoids double counting at window boundaries.
func (p *PostgresStore) CountEvents(
	ctx context.Context,
	websiteID string,
	eventType string,
	from time.Time,
	to time.Time,
) (int64, error) {

	var count int64
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM analytics_events
		WHERE website_id=$1
		  AND event_type=$2
		  AND created_at >= $3
		  AND created_at <  $4
	`, websiteID, eventType, from, to).Scan(&count)

	return count, err
}

// ListEvents returns the most recent events of a website, newest first.
func (p *PostgresStore) ListEvents(ctx context.Context, websiteID string, limit int) ([]models.EnrichedEvent, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id::text, website_id, event_type, COALESCE(page_url,''), COALESCE(referrer,''),
		       user_agent, ip_address, device_type, browser, os,
		       COALESCE(session_id,''), COALESCE(user_id,''), metadata, created_at
		FROM analytics_events
		WHERE website_id=$1
		ORDER BY created_at DESC
		LIMIT $2
	`, websiteID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EnrichedEvent
	for rows.Next() {
		var (
			ev  models.EnrichedEvent
			raw []byte
		)
		if err := rows.Scan(
			&ev.ID, &ev.WebsiteID, &ev.EventType, &ev.PageURL, &ev.Referrer,
			&ev.UserAgent, &ev.IPAddress, &ev.DeviceType, &ev.Browser, &ev.OS,
			&ev.SessionID, &ev.UserID, &raw, &ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &ev.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of %s: %w", ev.ID, err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// isNoRows reports whether err means the query matched nothing.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
