package storage

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrConflict is returned when a write violates a unique constraint
// (a duplicate natural key or association pair).
var ErrConflict = errors.New("storage: conflict")

// ErrInvalidReference is returned when a write references a row that does
// not exist, or breaks a CHECK constraint on a reference column.
var ErrInvalidReference = errors.New("storage: invalid reference")

// translate maps driver errors from either backend onto the storage
// sentinels. Errors it does not recognise are returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return errors.Join(ErrConflict, err)
		case "23503", "23514": // foreign_key_violation, check_violation
			return errors.Join(ErrInvalidReference, err)
		}
		return err
	}

	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return errors.Join(ErrConflict, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_CHECK,
			sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return errors.Join(ErrInvalidReference, err)
		case sqlite3.SQLITE_CONSTRAINT:
			// Primary result code only; fall back to the message text.
			msg := sqErr.Error()
			if strings.Contains(msg, "UNIQUE constraint failed") {
				return errors.Join(ErrConflict, err)
			}
			return errors.Join(ErrInvalidReference, err)
		}
	}
	return err
}
