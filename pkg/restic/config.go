package restic

import (
	"encoding/json"
	"fmt"
)

// Repository format versions this package understands.
const (
	MinRepoVersion = 1
	MaxRepoVersion = 2
)

// Config is the decrypted repository configuration object.
type Config struct {
	Version           uint32 `json:"version"`
	ID                string `json:"id"`
	ChunkerPolynomial string `json:"chunker_polynomial"`
}

// parseConfig parses a decrypted config object and validates its format
// version.
func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing repository config: %w", err)
	}

	if cfg.Version < MinRepoVersion || cfg.Version > MaxRepoVersion {
		return nil, fmt.Errorf("unsupported repository version %d (supported: %d through %d)",
			cfg.Version, MinRepoVersion, MaxRepoVersion)
	}
	if !isHexID(cfg.ID) {
		return nil, fmt.Errorf("repository config has malformed id %q", cfg.ID)
	}

	return &cfg, nil
}
