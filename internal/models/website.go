package models

import "time"

// Website is a registered tenant site. APIKey is unique and doubles as the
// ingestion credential; only active websites accept events.
type Website struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Domain    string    `json:"domain" yaml:"domain"`
	APIKey    string    `json:"apiKey" yaml:"apiKey"`
	IsActive  bool      `json:"isActive" yaml:"isActive"`
	CreatedAt time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"-"`
}
