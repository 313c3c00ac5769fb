package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/PratikDhanave/web-analytics-service/internal/models"
	"github.com/PratikDhanave/web-analytics-service/internal/registry"
)

// ErrWebsiteNotFound is returned by website admin operations for unknown ids.
var ErrWebsiteNotFound = errors.New("website not found")

const websiteColumns = `id, name, domain, api_key, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWebsite(row rowScanner) (models.Website, error) {
	var w models.Website
	err := row.Scan(&w.ID, &w.Name, &w.Domain, &w.APIKey, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

// FindActiveByAPIKey resolves an active website by exact key match.
// Unknown and inactive keys both yield found=false.
func (p *PostgresStore) FindActiveByAPIKey(ctx context.Context, apiKey string) (models.Website, bool, error) {
	w, err := scanWebsite(p.pool.QueryRow(ctx, `
		SELECT `+websiteColumns+`
		FROM websites
		WHERE api_key=$1 AND is_active
	`, apiKey))
	if isNoRows(err) {
		return models.Website{}, false, nil
	}
	if err != nil {
		return models.Website{}, false, fmt.Errorf("lookup website: %w", err)
	}
	return w, true, nil
}

// CreateWebsite registers a new active website with a freshly generated key.
func (p *PostgresStore) CreateWebsite(ctx context.Context, name, domain string) (models.Website, error) {
	key, err := registry.GenerateAPIKey()
	if err != nil {
		return models.Website{}, err
	}
	w, err := scanWebsite(p.pool.QueryRow(ctx, `
		INSERT INTO websites(id, name, domain, api_key, is_active)
		VALUES ($1,$2,$3,$4,TRUE)
		RETURNING `+websiteColumns,
		uuid.NewString(), name, domain, key))
	if err != nil {
		return models.Website{}, fmt.Errorf("create website: %w", err)
	}
	return w, nil
}

// UpsertWebsite inserts w or updates the row with the same id. Used for seeding.
func (p *PostgresStore) UpsertWebsite(ctx context.Context, w models.Website) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO websites(id, name, domain, api_key, is_active)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE
		SET name=EXCLUDED.name, domain=EXCLUDED.domain, api_key=EXCLUDED.api_key,
		    is_active=EXCLUDED.is_active, updated_at=now()
	`, w.ID, w.Name, w.Domain, w.APIKey, w.IsActive)
	if err != nil {
		return fmt.Errorf("upsert website %s: %w", w.ID, err)
	}
	return nil
}

// ListWebsites returns every registered website ordered by creation time.
func (p *PostgresStore) ListWebsites(ctx context.Context) ([]models.Website, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+websiteColumns+` FROM websites ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Website
	for rows.Next() {
		w, err := scanWebsite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// SetWebsiteActive enables or disables ingestion for a website.
func (p *PostgresStore) SetWebsiteActive(ctx context.Context, id string, active bool) (models.Website, error) {
	w, err := scanWebsite(p.pool.QueryRow(ctx, `
		UPDATE websites SET is_active=$2, updated_at=now()
		WHERE id=$1
		RETURNING `+websiteColumns, id, active))
	if isNoRows(err) {
		return models.Website{}, ErrWebsiteNotFound
	}
	if err != nil {
		return models.Website{}, fmt.Errorf("update website %s: %w", id, err)
	}
	return w, nil
}

// RotateAPIKey replaces a website's key; the old key stops resolving immediately.
func (p *PostgresStore) RotateAPIKey(ctx context.Context, id string) (models.Website, error) {
	key, err := registry.GenerateAPIKey()
	if err != nil {
		return models.Website{}, err
	}
	w, err := scanWebsite(p.pool.QueryRow(ctx, `
		UPDATE websites SET api_key=$2, updated_at=now()
		WHERE id=$1
		RETURNING `+websiteColumns, id, key))
	if isNoRows(err) {
		return models.Website{}, ErrWebsiteNotFound
	}
	if err != nil {
		return models.Website{}, fmt.Errorf("rotate key of %s: %w", id, err)
	}
	return w, nil
}
