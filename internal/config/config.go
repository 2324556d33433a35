package config

import (
	"fmt"
	"os"
	"time"
)

const (
	DefaultServiceURL = "http://localhost:8000"
	DefaultOutputDir  = "."
)

// Config holds the settings shared by every cardscan command
type Config struct {
	ServiceURL string
	OutputDir  string
	Timeout    time.Duration
}

// Load reads configuration from the environment. The root command loads
// .env before this runs.
func Load() (*Config, error) {
	cfg := &Config{
		ServiceURL: os.Getenv("CARDSCAN_URL"),
		OutputDir:  os.Getenv("CARDSCAN_OUTPUT_DIR"),
	}

	if cfg.ServiceURL == "" {
		cfg.ServiceURL = DefaultServiceURL
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if v := os.Getenv("CARDSCAN_TIMEOUT"); v != "" {
		if err := cfg.SetTimeout(v); err != nil {
			return nil, fmt.Errorf("invalid CARDSCAN_TIMEOUT: %w", err)
		}
	}

	return cfg, nil
}

// SetTimeout parses a Go duration such as "30s". Zero disables the timeout.
func (c *Config) SetTimeout(v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("timeout %q must not be negative", v)
	}
	c.Timeout = d
	return nil
}
