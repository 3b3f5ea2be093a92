// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port                int           `env:"COMPENDIUM_PORT" envDefault:"8080"`
	ReadTimeout         time.Duration `env:"COMPENDIUM_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout        time.Duration `env:"COMPENDIUM_WRITE_TIMEOUT" envDefault:"30s"`
	PublicBaseURL       string        `env:"COMPENDIUM_PUBLIC_BASE_URL"`
	MaxRequestBodyBytes int64         `env:"COMPENDIUM_MAX_REQUEST_BODY_BYTES" envDefault:"1048576"`
	MCPEnabled          bool          `env:"COMPENDIUM_MCP_ENABLED" envDefault:"true"`

	// Database settings. A postgres:// URL selects Postgres, sqlite: selects SQLite.
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite:compendium.db"`

	// Rate limiting. A non-empty RedisURL shares the limit across instances.
	RateLimitEnabled bool    `env:"COMPENDIUM_RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     float64 `env:"COMPENDIUM_RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst   int     `env:"COMPENDIUM_RATE_LIMIT_BURST" envDefault:"100"`
	RedisURL         string  `env:"REDIS_URL"`

	// OTEL settings.
	OTELEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTELInsecure bool   `env:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"compendium"`

	// Seed sources. The CLI flags of `compendium seed` override these.
	SeedDir      string `env:"COMPENDIUM_SEED_DIR"`
	SeedS3Bucket string `env:"COMPENDIUM_SEED_S3_BUCKET"`
	SeedS3Prefix string `env:"COMPENDIUM_SEED_S3_PREFIX"`
	S3Region     string `env:"COMPENDIUM_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint   string `env:"COMPENDIUM_S3_ENDPOINT"`

	// Operational settings.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence over it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and coherent.
// All problems are reported together.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("config: DATABASE_URL is required"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: COMPENDIUM_PORT=%d is out of range", c.Port))
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		errs = append(errs, errors.New("config: read and write timeouts must be positive"))
	}
	if c.MaxRequestBodyBytes <= 0 {
		errs = append(errs, errors.New("config: COMPENDIUM_MAX_REQUEST_BODY_BYTES must be positive"))
	}
	if c.RateLimitEnabled && (c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0) {
		errs = append(errs, errors.New("config: rate limit rps and burst must be positive when enabled"))
	}
	if c.PublicBaseURL != "" {
		u, err := url.Parse(c.PublicBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("config: COMPENDIUM_PUBLIC_BASE_URL=%q must be an absolute http(s) URL", c.PublicBaseURL))
		}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLogLevel maps LOG_LEVEL onto a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: LOG_LEVEL=%q is not one of debug, info, warn, error", s)
	}
}
