// Package seed bulk-loads the catalog from a fixed set of CSV files.
//
// Files are fetched from a Source (a local directory or an S3 prefix) in
// parallel, then applied in dependency order inside a single transaction.
// Entities are upserted by their natural key, so a seed can be re-run over an
// existing catalog.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrNotExist is returned by a Source when the named file is absent.
var ErrNotExist = errors.New("seed: file does not exist")

// Source yields the contents of one seed file by name.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	String() string
}

// DirSource reads seed files from a local directory.
type DirSource struct {
	Dir string
}

// Open opens name inside the directory.
func (d DirSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(d.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, name)
	}
	if err != nil {
		return nil, fmt.Errorf("seed: open %s: %w", name, err)
	}
	return f, nil
}

func (d DirSource) String() string {
	return "dir:" + d.Dir
}
