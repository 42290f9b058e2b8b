// Package config loads the backend-configuration blob.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Config is the single configuration blob injected at start time.
// Listener addresses stay on flags; everything describing the shared
// backend project lives here.
type Config struct {
	// Backend selects the realization: "gcp" or "mem".
	Backend string `yaml:"backend"`

	// DataProject is the GCP project holding the document collections.
	DataProject string `yaml:"data_project"`

	// StorageBucket holds post images and profile photos.
	StorageBucket string `yaml:"storage_bucket"`

	// SessionTokenPath is where the signed-in session token is persisted
	// across process restarts.
	SessionTokenPath string `yaml:"session_token_path"`

	// SendgridAPIKey enables the ticket digest notifier when set.
	SendgridAPIKey string `yaml:"sendgrid_api_key"`

	// DigestFromAddress is the From address on digest emails.
	DigestFromAddress string `yaml:"digest_from_address"`

	// RejectDuplicateLikes and RejectQuizRetakes tighten behavior the
	// backend does not enforce.  Both default to off, matching observed
	// production behavior.
	RejectDuplicateLikes bool `yaml:"reject_duplicate_likes"`
	RejectQuizRetakes    bool `yaml:"reject_quiz_retakes"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("while reading config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("while parsing config: %w", err)
	}

	if cfg.Backend == "" {
		cfg.Backend = "gcp"
	}
	if cfg.Backend != "gcp" && cfg.Backend != "mem" {
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if cfg.Backend == "gcp" && cfg.DataProject == "" {
		return nil, fmt.Errorf("data_project is required for the gcp backend")
	}
	if cfg.SessionTokenPath == "" {
		cfg.SessionTokenPath = ".drilldeck-session"
	}

	return cfg, nil
}
