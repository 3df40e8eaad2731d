// Package config loads the service configuration from YAML with
// DRQ_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DatabaseDriver string `yaml:"database_driver"`
	DatabaseURL    string `yaml:"database_url"`
	LogLevel       string `yaml:"log_level"`
	Development    bool   `yaml:"development"`

	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	MetricsConfig struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`

	Nonce struct {
		Secret string        `yaml:"secret"`
		TTL    time.Duration `yaml:"ttl"`
	} `yaml:"nonce"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{
		DatabaseDriver: "sqlite3",
		DatabaseURL:    "drq.db",
		LogLevel:       "info",
	}
	cfg.Server.Port = 8080
	cfg.MetricsConfig.Enabled = true
	cfg.MetricsConfig.Port = 9090
	cfg.MetricsConfig.Path = "/metrics"
	cfg.Nonce.TTL = 12 * time.Hour
	return cfg
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("DRQ_DATABASE_DRIVER"); ok {
		c.DatabaseDriver = v
	}
	if v, ok := lookup("DRQ_DATABASE_URL"); ok {
		c.DatabaseURL = v
	}
	if v, ok := lookup("DRQ_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("DRQ_NONCE_SECRET"); ok {
		c.Nonce.Secret = v
	}
	if v, ok := lookup("DRQ_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DRQ_PORT: %w", err)
		}
		c.Server.Port = port
	}
	return nil
}

// Validate checks the values the service cannot start without
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("database_driver must be sqlite3 or postgres, got %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("database_url is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive, got %d", c.Server.Port)
	}
	if c.MetricsConfig.Enabled && c.MetricsConfig.Port <= 0 {
		return fmt.Errorf("metrics.port must be positive, got %d", c.MetricsConfig.Port)
	}
	if c.Nonce.TTL <= 0 {
		return fmt.Errorf("nonce.ttl must be positive, got %s", c.Nonce.TTL)
	}
	return nil
}
