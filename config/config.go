// Package config holds process wide settings read from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Output formats for emitted events.
const (
	FormatPretty = "pretty"
	FormatJSONL  = "jsonl"
)

// Config is the runtime configuration. Command line flags override it.
type Config struct {
	ProcessName  string        `env:"DISHONORED_PROCESS_NAME" envDefault:"dishonored"`
	PollInterval time.Duration `env:"DISHONORED_POLL_INTERVAL" envDefault:"15ms"`
	SettingsPath string        `env:"DISHONORED_SETTINGS"`
	Format       string        `env:"DISHONORED_FORMAT" envDefault:"pretty"`
	Segments     int           `env:"DISHONORED_SEGMENTS" envDefault:"0"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads and validates the configuration.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that parse but cannot work.
func (c Config) Validate() error {
	if c.ProcessName == "" {
		return fmt.Errorf("process name is empty")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.Format != FormatPretty && c.Format != FormatJSONL {
		return fmt.Errorf("unknown format %q, want %s or %s", c.Format, FormatPretty, FormatJSONL)
	}
	if c.Segments < 0 {
		return fmt.Errorf("segments must not be negative, got %d", c.Segments)
	}
	return nil
}
