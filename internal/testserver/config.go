package testserver

import (
	"fmt"
	"net/http"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/netforge-io/netforge/pkg/types"
)

// Config holds the server configuration. All fields have working defaults so
// tests can run with a zero-value setup; the demo command loads overrides from
// a TOML file.
type Config struct {
	Listen           string                    `toml:"listen"`             // listen address for the demo server
	Token            string                    `toml:"token"`              // static API token; generated when empty
	APIVersion       string                    `toml:"api-version"`        // NetBox API version reported by the status endpoint
	PageSize         int                       `toml:"page-size"`          // default page size for list envelopes
	DeleteStatusCode int                       `toml:"delete-status-code"` // status answered on successful deletions
	Users            map[string]string         `toml:"users"`              // username -> password for token provisioning
	Seed             map[string][]types.Record `toml:"seed"`               // endpoint -> records loaded at startup
}

// DefaultConfig returns a configuration suitable for tests: one admin user,
// NetBox 4.x API surface, deletions answered with 204.
func DefaultConfig() *Config {
	return &Config{
		Listen:           ":8480",
		APIVersion:       "4.1.3",
		PageSize:         50,
		DeleteStatusCode: http.StatusNoContent,
		Users:            map[string]string{"admin": "admin"},
	}
}

// LoadConfig reads a TOML configuration file on top of the defaults.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("config filename is required")
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	cfg := DefaultConfig()
	if _, err := toml.Decode(string(content), cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.DeleteStatusCode < 200 || c.DeleteStatusCode > 299 {
		return fmt.Errorf("delete status code must be a success status")
	}
	return nil
}
