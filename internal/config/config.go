// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"
	"strings"

	"github.com/PratikDhanave/web-analytics-service/internal/models"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Local dev fallback so the service runs out-of-the-box in memory mode.
const (
	fallbackWebsiteID = "local"
	fallbackAPIKey    = "ak_test"
)

// Config contains runtime configuration required by the service.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`
	// LogFile switches output from stdout to a rotating file.
	LogFile       string `koanf:"log_file"`
	LogMaxSizeMB  int    `koanf:"log_max_size_mb"`
	LogMaxBackups int    `koanf:"log_max_backups"`

	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the event/website backend: memory or postgres.
	Store string `koanf:"store"`
	DBURL string `koanf:"db_url"`

	// Websites seeds the registry, format "id:key,id:key".
	Websites string `koanf:"websites"`
	// WebsitesFile is a YAML registry watched for changes.
	WebsitesFile string `koanf:"websites_file"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		LogMaxSizeMB:  100,
		LogMaxBackups: 3,
		Addr:          ":8080",
		Store:         StoreMemory,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if strings.TrimSpace(c.DBURL) == "" {
			return fmt.Errorf("%w: db_url required for postgres store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	if _, err := ParseWebsites(c.Websites); err != nil {
		return err
	}
	return nil
}

// SeedWebsites returns the websites named by the websites key. In memory mode
// with neither a seed nor a registry file, a single local website is returned.
func (c *Config) SeedWebsites() ([]models.Website, error) {
	sites, err := ParseWebsites(c.Websites)
	if err != nil {
		return nil, err
	}
	if len(sites) == 0 && c.Store == StoreMemory && c.WebsitesFile == "" {
		sites = append(sites, models.Website{
			ID:       fallbackWebsiteID,
			Name:     fallbackWebsiteID,
			APIKey:   fallbackAPIKey,
			IsActive: true,
		})
	}
	return sites, nil
}

// ParseWebsites parses "id:key,id:key" into active websites.
func ParseWebsites(raw string) ([]models.Website, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var (
		out  []models.Website
		seen = map[string]struct{}{}
	)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, key, ok := strings.Cut(p, ":")
		id, key = strings.TrimSpace(id), strings.TrimSpace(key)
		if !ok || id == "" || key == "" {
			return nil, fmt.Errorf(`%w: websites must be "id:key,id:key"`, ErrInvalidConfig)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate api key for website %q", ErrInvalidConfig, id)
		}
		seen[key] = struct{}{}
		out = append(out, models.Website{ID: id, Name: id, APIKey: key, IsActive: true})
	}
	return out, nil
}
