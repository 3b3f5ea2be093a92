// Package testutil provides shared test infrastructure: an in-memory SQLite
// catalog for unit tests and a PostgreSQL container for integration tests.
//
// Usage in TestMain:
//
//	func TestMain(m *testing.M) {
//	    tc, err := testutil.StartPostgres()
//	    if err == nil {
//	        defer tc.Terminate()
//	    }
//	    os.Exit(m.Run())
//	}
package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ashita-ai/compendium/internal/storage"
	"github.com/ashita-ai/compendium/migrations"
)

// TestContainer wraps a testcontainers container with a DSN for connecting.
type TestContainer struct {
	Container testcontainers.Container
	DSN       string
}

// StartPostgres starts a PostgreSQL container. It returns an error when no
// container runtime is reachable so callers can skip the Postgres backend.
func StartPostgres() (tc *TestContainer, err error) {
	// testcontainers panics instead of failing when Docker is missing.
	defer func() {
		if r := recover(); r != nil {
			tc, err = nil, fmt.Errorf("testutil: start container: %v", r)
		}
	}()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "compendium",
			"POSTGRES_PASSWORD": "compendium",
			"POSTGRES_DB":       "compendium",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("testutil: start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("testutil: container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("testutil: container port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://compendium:compendium@%s:%s/compendium?sslmode=disable", host, port.Port())
	return &TestContainer{Container: container, DSN: dsn}, nil
}

// NewTestDB creates a storage.DB connected to this container and runs all migrations.
func (tc *TestContainer) NewTestDB(ctx context.Context, logger *slog.Logger) (*storage.DB, error) {
	return openMigrated(ctx, tc.DSN, logger)
}

// Terminate stops and removes the container.
func (tc *TestContainer) Terminate() {
	_ = tc.Container.Terminate(context.Background())
}

// NewSQLiteDB returns a migrated in-memory SQLite catalog that is closed when
// the test ends. Every call yields an independent, empty database.
func NewSQLiteDB(t testing.TB) *storage.DB {
	t.Helper()
	ctx := context.Background()
	db, err := openMigrated(ctx, "sqlite::memory:", TestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(ctx) })
	return db
}

func openMigrated(ctx context.Context, dsn string, logger *slog.Logger) (*storage.DB, error) {
	db, err := storage.New(ctx, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("testutil: create DB: %w", err)
	}
	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("testutil: run migrations: %w", err)
	}
	return db, nil
}

// TestLogger returns a logger configured for test output (warns only).
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
