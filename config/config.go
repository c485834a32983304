// Package config loads and validates the application configuration from a
// JSON file. Missing fields fall back to defaults, so an empty file and no
// file at all are both valid starting points.
package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/c360/usergraph/errors"
	"github.com/c360/usergraph/graphql"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Config represents the complete application configuration.
type Config struct {
	Server  graphql.Config `json:"server"`
	Logging LoggingConfig  `json:"logging"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default: "info")
	Level string `json:"level,omitempty"`

	// Format is "json" or "text" (default: "json")
	Format string `json:"format,omitempty"`
}

// Validate checks the configuration and fills in defaults.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return errors.Wrap(err, "Config", "Validate", "server section invalid")
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.WrapValidation(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown log level %q", c.Logging.Level))
	}

	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return errors.WrapValidation(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("unknown log format %q", c.Logging.Format))
	}

	return nil
}

// Default returns the default application configuration.
func Default() *Config {
	return &Config{
		Server: graphql.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "Config", "Load",
			fmt.Sprintf("read %s", path))
	}

	cfg := &Config{}
	if err := jsonCodec.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapValidation(err, "Config", "Load",
			fmt.Sprintf("parse %s", path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads the file when path is non-empty, otherwise returns
// validated defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}
