// Package config loads server settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"

	minSecretLength = 32
	minBcryptCost   = 4
	maxBcryptCost   = 14
)

type Config struct {
	Port         string        `envconfig:"PORT"          default:"8080"`
	StoreBackend string        `envconfig:"STORE_BACKEND" default:"memory"`
	DatabasePath string        `envconfig:"DATABASE_PATH" default:"rightnow.db"`
	JWTSecret    string        `envconfig:"JWT_SECRET"    required:"true"`
	BcryptCost   int           `envconfig:"BCRYPT_COST"   default:"12"`
	StoreLatency time.Duration `envconfig:"STORE_LATENCY" default:"300ms"`
	// Default to secure cookies; disable only for local development.
	CookieSecure bool    `envconfig:"COOKIE_SECURE" default:"true"`
	LogLevel     string  `envconfig:"LOG_LEVEL"     default:"info"`
	Seed         bool    `envconfig:"SEED"          default:"true"`
	LoginRate    float64 `envconfig:"LOGIN_RATE"    default:"0.2"`
	LoginBurst   int     `envconfig:"LOGIN_BURST"   default:"5"`
}

// Load reads .env if present, then the process environment, and
// validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("error loading .env file, continuing", "error", err)
	} else if err == nil {
		slog.Info("loaded configuration from .env file")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values envconfig cannot.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters for HMAC-SHA256 security", minSecretLength)
	}
	if c.BcryptCost < minBcryptCost || c.BcryptCost > maxBcryptCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", minBcryptCost, maxBcryptCost, c.BcryptCost)
	}
	switch c.StoreBackend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMemory, BackendSQLite, c.StoreBackend)
	}
	if c.StoreLatency < 0 {
		return errors.New("STORE_LATENCY cannot be negative")
	}
	if c.LoginRate <= 0 || c.LoginBurst < 1 {
		return errors.New("LOGIN_RATE must be positive and LOGIN_BURST at least 1")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
