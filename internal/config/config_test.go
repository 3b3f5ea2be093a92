package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/compendium/internal/config"
)

// inTempDir runs the test from an empty directory so a developer's .env does
// not leak into the assertions.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "sqlite:compendium.db", cfg.DatabaseURL)
	assert.Equal(t, int64(1<<20), cfg.MaxRequestBodyBytes)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, float64(50), cfg.RateLimitRPS)
	assert.Equal(t, 100, cfg.RateLimitBurst)
	assert.Equal(t, "compendium", cfg.ServiceName)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.True(t, cfg.MCPEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	inTempDir(t)
	t.Setenv("COMPENDIUM_PORT", "9000")
	t.Setenv("COMPENDIUM_READ_TIMEOUT", "5s")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/dnd")
	t.Setenv("COMPENDIUM_PUBLIC_BASE_URL", "https://dnd.example.test")
	t.Setenv("COMPENDIUM_RATE_LIMIT_ENABLED", "false")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "postgres://u:p@db:5432/dnd", cfg.DatabaseURL)
	assert.Equal(t, "https://dnd.example.test", cfg.PublicBaseURL)
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, "redis://cache:6379/0", cfg.RedisURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("COMPENDIUM_SEED_DIR=/data/csv\nCOMPENDIUM_PORT=7000\n"), 0o600))
	t.Setenv("COMPENDIUM_PORT", "7100")
	t.Cleanup(func() { _ = os.Unsetenv("COMPENDIUM_SEED_DIR") })

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/csv", cfg.SeedDir)
	assert.Equal(t, 7100, cfg.Port, "real environment wins over .env")
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	inTempDir(t)
	t.Setenv("COMPENDIUM_PORT", "eighty")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func validConfig() config.Config {
	return config.Config{
		Port:                8080,
		ReadTimeout:         time.Second,
		WriteTimeout:        time.Second,
		DatabaseURL:         "sqlite::memory:",
		MaxRequestBodyBytes: 1024,
		RateLimitEnabled:    true,
		RateLimitRPS:        1,
		RateLimitBurst:      1,
		LogLevel:            "info",
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"missing database", func(c *config.Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"port out of range", func(c *config.Config) { c.Port = 70000 }, "COMPENDIUM_PORT"},
		{"zero timeout", func(c *config.Config) { c.WriteTimeout = 0 }, "timeouts"},
		{"zero body limit", func(c *config.Config) { c.MaxRequestBodyBytes = 0 }, "MAX_REQUEST_BODY_BYTES"},
		{"zero burst", func(c *config.Config) { c.RateLimitBurst = 0 }, "rate limit"},
		{"relative base url", func(c *config.Config) { c.PublicBaseURL = "/api" }, "PUBLIC_BASE_URL"},
		{"unknown log level", func(c *config.Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateIgnoresRateLimitWhenDisabled(t *testing.T) {
	c := validConfig()
	c.RateLimitEnabled = false
	c.RateLimitRPS = 0
	assert.NoError(t, c.Validate())
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := config.ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
