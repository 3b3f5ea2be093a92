package storage

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// RunMigrations executes unapplied SQL migration files for the active dialect
// in name order. migrationsFS holds one directory per dialect (postgres/,
// sqlite/). Applied files are tracked in schema_migrations so each runs at
// most once.
func (db *DB) RunMigrations(ctx context.Context, migrationsFS fs.FS) error {
	dir, err := fs.Sub(migrationsFS, string(db.dialect))
	if err != nil {
		return fmt.Errorf("storage: open %s migrations: %w", db.dialect, err)
	}

	return db.Read(ctx, func(q *Queries) error {
		if _, err := q.q.exec(ctx, db.migrationsTableDDL()); err != nil {
			return fmt.Errorf("storage: create schema_migrations: %w", err)
		}

		applied, err := loadAppliedMigrations(ctx, q)
		if err != nil {
			return fmt.Errorf("storage: load applied migrations: %w", err)
		}

		entries, err := fs.ReadDir(dir, ".")
		if err != nil {
			return fmt.Errorf("storage: read migrations dir: %w", err)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Name() < entries[j].Name()
		})

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
				continue
			}

			name := entry.Name()
			if applied[name] {
				db.logger.Debug("migration already applied, skipping", "file", name)
				continue
			}

			content, err := fs.ReadFile(dir, name)
			if err != nil {
				return fmt.Errorf("storage: read migration %s: %w", name, err)
			}

			db.logger.Info("running migration", "file", name, "dialect", db.dialect)
			if _, err := q.q.exec(ctx, string(content)); err != nil {
				return fmt.Errorf("storage: execute migration %s: %w", name, err)
			}

			if _, err := q.q.exec(ctx,
				`INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT DO NOTHING`, name,
			); err != nil {
				return fmt.Errorf("storage: record migration %s: %w", name, err)
			}
		}
		return nil
	})
}

func (db *DB) migrationsTableDDL() string {
	if db.dialect == DialectSQLite {
		return `CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	}
	return `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
}

// loadAppliedMigrations returns the set of migration filenames already recorded
// in the schema_migrations table.
func loadAppliedMigrations(ctx context.Context, q *Queries) (map[string]bool, error) {
	versions, err := collect(ctx, q.q, func(r rowScanner) (string, error) {
		var v string
		err := r.Scan(&v)
		return v, err
	}, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}
