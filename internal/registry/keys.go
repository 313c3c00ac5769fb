package registry

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// APIKeyPrefix marks website ingestion keys.
const APIKeyPrefix = "ak_"

const apiKeyBytes = 32

// GenerateAPIKey returns a new random key: "ak_" followed by 64 hex characters.
func GenerateAPIKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return APIKeyPrefix + hex.EncodeToString(b), nil
}
