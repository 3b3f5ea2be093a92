package storage

import (
	"context"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
)

const classColumns = `id, "index", name, hit_die`

func scanClass(r rowScanner) (model.Class, error) {
	var c model.Class
	err := r.Scan(&c.ID, &c.Index, &c.Name, &c.HitDie)
	return c, err
}

// ListClasses returns all classes in creation order.
func (q *Queries) ListClasses(ctx context.Context) ([]model.Class, error) {
	classes, err := collect(ctx, q.q, scanClass, `SELECT `+classColumns+` FROM classes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list classes: %w", err)
	}
	return classes, nil
}

// GetClass returns the class with id, or ErrNotFound.
func (q *Queries) GetClass(ctx context.Context, id int64) (model.Class, error) {
	c, err := scanClass(q.q.queryRow(ctx, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id))
	if err != nil {
		return model.Class{}, fmt.Errorf("storage: get class %d: %w", id, translate(err))
	}
	return c, nil
}

// CreateClass inserts c and returns the stored row.
func (q *Queries) CreateClass(ctx context.Context, c model.Class) (model.Class, error) {
	created, err := scanClass(q.q.queryRow(ctx,
		`INSERT INTO classes ("index", name, hit_die) VALUES ($1, $2, $3)
		 RETURNING `+classColumns,
		c.Index, c.Name, c.HitDie,
	))
	if err != nil {
		return model.Class{}, fmt.Errorf("storage: create class: %w", translate(err))
	}
	return created, nil
}

// UpdateClass overwrites every column of the class with c.ID.
func (q *Queries) UpdateClass(ctx context.Context, c model.Class) (model.Class, error) {
	updated, err := scanClass(q.q.queryRow(ctx,
		`UPDATE classes SET "index" = $2, name = $3, hit_die = $4 WHERE id = $1
		 RETURNING `+classColumns,
		c.ID, c.Index, c.Name, c.HitDie,
	))
	if err != nil {
		return model.Class{}, fmt.Errorf("storage: update class %d: %w", c.ID, translate(err))
	}
	return updated, nil
}

// DeleteClass removes the class. Its subclasses and every association row
// naming it are removed by the cascading foreign keys.
func (q *Queries) DeleteClass(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, tableClasses, id)
}
