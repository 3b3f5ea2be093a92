package catalog

import (
	"context"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/storage"
)

// ListClasses returns every class in creation order.
func (s *Service) ListClasses(ctx context.Context) ([]model.Class, error) {
	return read(ctx, s, "list classes", func(q *storage.Queries) ([]model.Class, error) {
		return q.ListClasses(ctx)
	})
}

// GetClass returns a class with its proficiencies, subclasses and spells.
func (s *Service) GetClass(ctx context.Context, id int64) (model.ClassRecord, error) {
	return read(ctx, s, fmt.Sprintf("get class %d", id), func(q *storage.Queries) (model.ClassRecord, error) {
		return q.GetClassRecord(ctx, id)
	})
}

func checkClass(c *checker, in model.ClassInput, class *model.Class) []int64 {
	c.index(model.ResourceClasses, in.Index, &class.Index, class.ID)
	c.text("name", in.Name, &class.Name, maxNameLen)
	c.integer("hit_die", in.HitDie, &class.HitDie, 1)
	return c.refs("proficiencies", model.ResourceProficiencies, in.Proficiencies)
}

// CreateClass validates in and stores a new class with its proficiencies.
func (s *Service) CreateClass(ctx context.Context, in model.ClassInput) (model.ClassRecord, error) {
	var rec model.ClassRecord
	err := s.write(ctx, model.ResourceClasses, opCreate, func(q *storage.Queries) error {
		c := newChecker(ctx, q, true, in.NullKeys)
		var class model.Class
		profs := checkClass(c, in, &class)
		if err := c.done(); err != nil {
			return err
		}

		created, err := q.CreateClass(ctx, class)
		if err != nil {
			return err
		}
		if profs != nil {
			if err := q.ReplaceClassProficiencies(ctx, created.ID, profs); err != nil {
				return err
			}
		}
		rec, err = q.GetClassRecord(ctx, created.ID)
		return err
	})
	if err != nil {
		return model.ClassRecord{}, fmt.Errorf("catalog: create class: %w", err)
	}
	return rec, nil
}

// UpdateClass applies the fields present in in to the class with id. A
// present proficiencies list replaces the class's proficiencies.
func (s *Service) UpdateClass(ctx context.Context, id int64, in model.ClassInput) (model.ClassRecord, error) {
	var rec model.ClassRecord
	err := s.write(ctx, model.ResourceClasses, opUpdate, func(q *storage.Queries) error {
		class, err := q.GetClass(ctx, id)
		if err != nil {
			return err
		}
		c := newChecker(ctx, q, false, in.NullKeys)
		profs := checkClass(c, in, &class)
		if err := c.done(); err != nil {
			return err
		}

		if _, err := q.UpdateClass(ctx, class); err != nil {
			return err
		}
		if profs != nil {
			if err := q.ReplaceClassProficiencies(ctx, id, profs); err != nil {
				return err
			}
		}
		rec, err = q.GetClassRecord(ctx, id)
		return err
	})
	if err != nil {
		return model.ClassRecord{}, fmt.Errorf("catalog: update class %d: %w", id, err)
	}
	return rec, nil
}

// DeleteClass removes a class, its subclasses and every link to either.
func (s *Service) DeleteClass(ctx context.Context, id int64) error {
	return s.remove(ctx, model.ResourceClasses, id, func(ctx context.Context, q *storage.Queries) error {
		return q.DeleteClass(ctx, id)
	})
}
