package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("compendium/storage")

// Transaction retry policy for InTx.
const (
	txMaxRetries = 3
	txBaseDelay  = 20 * time.Millisecond
)

// Queries exposes the catalog queries against either the pool or an open
// transaction. It is only valid for the duration of the callback it was
// handed to.
type Queries struct {
	q querier
}

// Read runs fn against the pool without opening a transaction.
func (db *DB) Read(ctx context.Context, fn func(*Queries) error) error {
	if db.pool != nil {
		return fn(&Queries{q: pgxQuerier{q: db.pool}})
	}
	return fn(&Queries{q: sqlQuerier{q: db.sqlDB}})
}

// InTx runs fn inside a single transaction, committing when fn returns nil
// and rolling back otherwise. Transient conflicts are retried, so fn must not
// have side effects outside the transaction.
func (db *DB) InTx(ctx context.Context, fn func(*Queries) error) error {
	ctx, span := tracer.Start(ctx, "storage.tx",
		trace.WithAttributes(attribute.String("db.system", string(db.dialect))),
	)
	defer span.End()

	attempts := 0
	err := WithRetry(ctx, txMaxRetries, txBaseDelay, func() error {
		attempts++
		if db.pool != nil {
			return db.pgTx(ctx, fn)
		}
		return db.sqliteTx(ctx, fn)
	})
	span.SetAttributes(attribute.Int("db.tx.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction failed")
	}
	return err
}

func (db *DB) pgTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Queries{q: pgxQuerier{q: tx}}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("storage: commit tx: %w", err)
	}
	return nil
}

func (db *DB) sqliteTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := db.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Queries{q: sqlQuerier{q: tx}}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit tx: %w", err)
	}
	return nil
}
