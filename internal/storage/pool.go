// Package storage provides the relational storage layer for the catalog.
//
// Two backends share one set of queries: PostgreSQL through a pgxpool, and
// SQLite through modernc.org/sqlite for single-node and test deployments.
// Every write runs inside InTx so association rows are replaced atomically
// with the entity that owns them.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Dialect identifies the SQL backend behind a DB.
type Dialect string

// Supported dialects. The values double as migration directory names.
const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DB wraps either a pgxpool.Pool (PostgreSQL) or a *sql.DB (SQLite).
// Exactly one of pool and sqlDB is non-nil.
type DB struct {
	dialect Dialect
	pool    *pgxpool.Pool
	sqlDB   *sql.DB
	logger  *slog.Logger
}

// New opens a DB for dsn. postgres:// and postgresql:// URLs use pgx; sqlite:
// and file: DSNs (and the bare ":memory:") use the embedded SQLite driver.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*DB, error) {
	switch DialectFor(dsn) {
	case DialectPostgres:
		return newPostgres(ctx, dsn, logger)
	case DialectSQLite:
		return newSQLite(ctx, dsn, logger)
	default:
		return nil, fmt.Errorf("storage: unsupported database URL %q", redactDSN(dsn))
	}
}

// DialectFor reports which backend New would pick for dsn, or "" if none.
func DialectFor(dsn string) Dialect {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres
	case strings.HasPrefix(dsn, "sqlite:"), strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return DialectSQLite
	default:
		return ""
	}
}

func newPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: parse pool DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("storage: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ping pool: %w", err)
	}

	return &DB{dialect: DialectPostgres, pool: pool, logger: logger}, nil
}

func newSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*DB, error) {
	name, memory := sqliteName(dsn)
	sqlDB, err := sql.Open("sqlite", name)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}

	// A single connection serializes writers instead of surfacing SQLITE_BUSY,
	// and is required for :memory: so every query sees the same database.
	sqlDB.SetMaxOpenConns(1)
	if memory {
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("storage: ping sqlite: %w", err)
	}

	return &DB{dialect: DialectSQLite, sqlDB: sqlDB, logger: logger}, nil
}

// sqliteName converts a sqlite:/file: DSN into a modernc driver name with the
// pragmas the schema relies on. Foreign keys are off by default in SQLite.
func sqliteName(dsn string) (name string, memory bool) {
	path := strings.TrimPrefix(dsn, "sqlite:")
	path = strings.TrimPrefix(path, "//")
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file::memory:") {
		return ":memory:?_pragma=foreign_keys(1)", true
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", false
}

// redactDSN strips credentials from a DSN for error messages.
func redactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}
	return scheme + "://" + rest
}

// Dialect returns the backend in use.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Ping checks connectivity to the database.
func (db *DB) Ping(ctx context.Context) error {
	if db.pool != nil {
		return db.pool.Ping(ctx)
	}
	return db.sqlDB.PingContext(ctx)
}

// Close shuts down the connection pool.
func (db *DB) Close(_ context.Context) {
	if db.pool != nil {
		db.pool.Close()
		return
	}
	if err := db.sqlDB.Close(); err != nil {
		db.logger.Warn("storage: close sqlite", "error", err)
	}
}
