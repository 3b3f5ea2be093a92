package storage

import (
	"context"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
)

const proficiencyColumns = `id, "index", name, type`

func scanProficiency(r rowScanner) (model.Proficiency, error) {
	var p model.Proficiency
	err := r.Scan(&p.ID, &p.Index, &p.Name, &p.Type)
	return p, err
}

// ListProficiencies returns all proficiencies in creation order.
func (q *Queries) ListProficiencies(ctx context.Context) ([]model.Proficiency, error) {
	profs, err := collect(ctx, q.q, scanProficiency, `SELECT `+proficiencyColumns+` FROM proficiencies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list proficiencies: %w", err)
	}
	return profs, nil
}

// GetProficiency returns the proficiency with id, or ErrNotFound.
func (q *Queries) GetProficiency(ctx context.Context, id int64) (model.Proficiency, error) {
	p, err := scanProficiency(q.q.queryRow(ctx, `SELECT `+proficiencyColumns+` FROM proficiencies WHERE id = $1`, id))
	if err != nil {
		return model.Proficiency{}, fmt.Errorf("storage: get proficiency %d: %w", id, translate(err))
	}
	return p, nil
}

// CreateProficiency inserts p and returns the stored row.
func (q *Queries) CreateProficiency(ctx context.Context, p model.Proficiency) (model.Proficiency, error) {
	created, err := scanProficiency(q.q.queryRow(ctx,
		`INSERT INTO proficiencies ("index", name, type) VALUES ($1, $2, $3)
		 RETURNING `+proficiencyColumns,
		p.Index, p.Name, p.Type,
	))
	if err != nil {
		return model.Proficiency{}, fmt.Errorf("storage: create proficiency: %w", translate(err))
	}
	return created, nil
}

// UpdateProficiency overwrites every column of the proficiency with p.ID.
func (q *Queries) UpdateProficiency(ctx context.Context, p model.Proficiency) (model.Proficiency, error) {
	updated, err := scanProficiency(q.q.queryRow(ctx,
		`UPDATE proficiencies SET "index" = $2, name = $3, type = $4 WHERE id = $1
		 RETURNING `+proficiencyColumns,
		p.ID, p.Index, p.Name, p.Type,
	))
	if err != nil {
		return model.Proficiency{}, fmt.Errorf("storage: update proficiency %d: %w", p.ID, translate(err))
	}
	return updated, nil
}

// DeleteProficiency removes the proficiency and its association rows.
func (q *Queries) DeleteProficiency(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, tableProficiencies, id)
}
