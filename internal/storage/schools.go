package storage

import (
	"context"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
)

const schoolColumns = `id, "index", name`

func scanSchool(r rowScanner) (model.School, error) {
	var s model.School
	err := r.Scan(&s.ID, &s.Index, &s.Name)
	return s, err
}

// ListSchools returns all schools in creation order.
func (q *Queries) ListSchools(ctx context.Context) ([]model.School, error) {
	schools, err := collect(ctx, q.q, scanSchool, `SELECT `+schoolColumns+` FROM schools ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list schools: %w", err)
	}
	return schools, nil
}

// GetSchool returns the school with id, or ErrNotFound.
func (q *Queries) GetSchool(ctx context.Context, id int64) (model.School, error) {
	s, err := scanSchool(q.q.queryRow(ctx, `SELECT `+schoolColumns+` FROM schools WHERE id = $1`, id))
	if err != nil {
		return model.School{}, fmt.Errorf("storage: get school %d: %w", id, translate(err))
	}
	return s, nil
}

// CreateSchool inserts s and returns the stored row.
func (q *Queries) CreateSchool(ctx context.Context, s model.School) (model.School, error) {
	created, err := scanSchool(q.q.queryRow(ctx,
		`INSERT INTO schools ("index", name) VALUES ($1, $2) RETURNING `+schoolColumns,
		s.Index, s.Name,
	))
	if err != nil {
		return model.School{}, fmt.Errorf("storage: create school: %w", translate(err))
	}
	return created, nil
}

// UpdateSchool overwrites every column of the school with s.ID.
func (q *Queries) UpdateSchool(ctx context.Context, s model.School) (model.School, error) {
	updated, err := scanSchool(q.q.queryRow(ctx,
		`UPDATE schools SET "index" = $2, name = $3 WHERE id = $1 RETURNING `+schoolColumns,
		s.ID, s.Index, s.Name,
	))
	if err != nil {
		return model.School{}, fmt.Errorf("storage: update school %d: %w", s.ID, translate(err))
	}
	return updated, nil
}

// DeleteSchool removes the school together with the spells it owns.
func (q *Queries) DeleteSchool(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, tableSchools, id)
}
