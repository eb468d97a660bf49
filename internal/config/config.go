// Package config loads runtime settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Auth holds the bot's credential settings.
type Auth struct {
	ClientID       string `yaml:"client_id" env:"RELAY_CLIENT_ID"`
	ClientSecret   string `yaml:"client_secret" env:"RELAY_CLIENT_SECRET"`
	TenantID       string `yaml:"tenant_id" env:"RELAY_TENANT_ID"`
	ConnectionName string `yaml:"connection_name" env:"RELAY_CONNECTION_NAME"`
	Authority      string `yaml:"authority" env:"RELAY_AUTHORITY"`
}

// Retry tunes the backoff policy for outbound calls.
type Retry struct {
	MaxAttempts  int           `yaml:"max_attempts" env:"RELAY_RETRY_MAX_ATTEMPTS"`
	InitialDelay time.Duration `yaml:"initial_delay" env:"RELAY_RETRY_INITIAL_DELAY"`
	MaxDelay     time.Duration `yaml:"max_delay" env:"RELAY_RETRY_MAX_DELAY"`
	Jitter       string        `yaml:"jitter" env:"RELAY_RETRY_JITTER"`
}

// Cache controls token cache sizing and the optional Redis backend.
type Cache struct {
	GraphTokens int    `yaml:"graph_tokens" env:"RELAY_CACHE_GRAPH_TOKENS"`
	RedisAddr   string `yaml:"redis_addr" env:"RELAY_REDIS_ADDR"`
	RedisPrefix string `yaml:"redis_prefix" env:"RELAY_REDIS_PREFIX"`
}

// Config is the full runtime configuration.
type Config struct {
	LogLevel string `yaml:"log_level" env:"RELAY_LOG_LEVEL"`
	Auth     Auth   `yaml:"auth"`
	Retry    Retry  `yaml:"retry"`
	Cache    Cache  `yaml:"cache"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Retry: Retry{
			MaxAttempts:  5,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Jitter:       "full",
		},
		Cache: Cache{
			GraphTokens: 50000,
		},
	}
}

// Load starts from the defaults, overlays the YAML file at path when one is
// given, then applies environment overrides. Env always wins over file
// values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.InitialDelay <= 0 {
		return fmt.Errorf("retry.initial_delay must be positive, got %s", c.Retry.InitialDelay)
	}
	if c.Retry.MaxDelay < c.Retry.InitialDelay {
		return fmt.Errorf("retry.max_delay %s is below initial_delay %s", c.Retry.MaxDelay, c.Retry.InitialDelay)
	}
	switch c.Retry.Jitter {
	case "none", "full", "equal":
	default:
		return fmt.Errorf("retry.jitter must be none, full, or equal, got %q", c.Retry.Jitter)
	}
	if c.Cache.GraphTokens < 1 {
		return fmt.Errorf("cache.graph_tokens must be at least 1, got %d", c.Cache.GraphTokens)
	}
	if (c.Auth.ClientID == "") != (c.Auth.ClientSecret == "") {
		return fmt.Errorf("auth.client_id and auth.client_secret must be set together")
	}
	return nil
}
