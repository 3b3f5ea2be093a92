package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
)

const subclassColumns = `id, "index", name, subclass_flavor, class_id`

func scanSubclass(r rowScanner) (model.Subclass, error) {
	var s model.Subclass
	err := r.Scan(&s.ID, &s.Index, &s.Name, &s.SubclassFlavor, &s.ClassID)
	return s, err
}

// ListSubclasses returns all subclasses in creation order.
func (q *Queries) ListSubclasses(ctx context.Context) ([]model.Subclass, error) {
	subclasses, err := collect(ctx, q.q, scanSubclass, `SELECT `+subclassColumns+` FROM subclasses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list subclasses: %w", err)
	}
	return subclasses, nil
}

// ListSubclassesByClass returns the subclasses of classID with their
// descriptions, in creation order.
func (q *Queries) ListSubclassesByClass(ctx context.Context, classID int64) ([]model.SubclassRef, error) {
	refs, err := collect(ctx, q.q, func(r rowScanner) (model.SubclassRef, error) {
		var ref model.SubclassRef
		err := r.Scan(&ref.ID, &ref.Name, &ref.Description)
		return ref, err
	}, `SELECT s.id, s.name, d.value
		FROM subclasses s
		LEFT JOIN subclass_descriptions d ON d.subclass_id = s.id
		WHERE s.class_id = $1
		ORDER BY s.id`, classID)
	if err != nil {
		return nil, fmt.Errorf("storage: list subclasses of class %d: %w", classID, err)
	}
	return refs, nil
}

// GetSubclass returns the subclass with id, or ErrNotFound.
func (q *Queries) GetSubclass(ctx context.Context, id int64) (model.Subclass, error) {
	s, err := scanSubclass(q.q.queryRow(ctx, `SELECT `+subclassColumns+` FROM subclasses WHERE id = $1`, id))
	if err != nil {
		return model.Subclass{}, fmt.Errorf("storage: get subclass %d: %w", id, translate(err))
	}
	return s, nil
}

// CreateSubclass inserts s and returns the stored row.
func (q *Queries) CreateSubclass(ctx context.Context, s model.Subclass) (model.Subclass, error) {
	created, err := scanSubclass(q.q.queryRow(ctx,
		`INSERT INTO subclasses ("index", name, subclass_flavor, class_id) VALUES ($1, $2, $3, $4)
		 RETURNING `+subclassColumns,
		s.Index, s.Name, s.SubclassFlavor, s.ClassID,
	))
	if err != nil {
		return model.Subclass{}, fmt.Errorf("storage: create subclass: %w", translate(err))
	}
	return created, nil
}

// UpdateSubclass overwrites every column of the subclass with s.ID.
func (q *Queries) UpdateSubclass(ctx context.Context, s model.Subclass) (model.Subclass, error) {
	updated, err := scanSubclass(q.q.queryRow(ctx,
		`UPDATE subclasses SET "index" = $2, name = $3, subclass_flavor = $4, class_id = $5 WHERE id = $1
		 RETURNING `+subclassColumns,
		s.ID, s.Index, s.Name, s.SubclassFlavor, s.ClassID,
	))
	if err != nil {
		return model.Subclass{}, fmt.Errorf("storage: update subclass %d: %w", s.ID, translate(err))
	}
	return updated, nil
}

// DeleteSubclass removes the subclass, its description and its spell links.
func (q *Queries) DeleteSubclass(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, tableSubclasses, id)
}

// GetSubclassDescription returns the description of a subclass, or nil when
// it has none.
func (q *Queries) GetSubclassDescription(ctx context.Context, subclassID int64) (*string, error) {
	var value string
	err := q.q.queryRow(ctx,
		`SELECT value FROM subclass_descriptions WHERE subclass_id = $1`, subclassID,
	).Scan(&value)
	if err != nil {
		if err = translate(err); errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: get description of subclass %d: %w", subclassID, err)
	}
	return &value, nil
}

// SetSubclassDescription upserts the single description of a subclass.
// A nil value removes it.
func (q *Queries) SetSubclassDescription(ctx context.Context, subclassID int64, value *string) error {
	if value == nil {
		if _, err := q.q.exec(ctx, `DELETE FROM subclass_descriptions WHERE subclass_id = $1`, subclassID); err != nil {
			return fmt.Errorf("storage: delete description of subclass %d: %w", subclassID, translate(err))
		}
		return nil
	}
	if _, err := q.q.exec(ctx,
		`INSERT INTO subclass_descriptions (subclass_id, value) VALUES ($1, $2)
		 ON CONFLICT (subclass_id) DO UPDATE SET value = excluded.value`,
		subclassID, *value,
	); err != nil {
		return fmt.Errorf("storage: set description of subclass %d: %w", subclassID, translate(err))
	}
	return nil
}
