package catalog

import (
	"context"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/storage"
)

// ListSubclasses returns every subclass in creation order.
func (s *Service) ListSubclasses(ctx context.Context) ([]model.Subclass, error) {
	return read(ctx, s, "list subclasses", func(q *storage.Queries) ([]model.Subclass, error) {
		return q.ListSubclasses(ctx)
	})
}

// GetSubclass returns a subclass with its class and description.
func (s *Service) GetSubclass(ctx context.Context, id int64) (model.SubclassRecord, error) {
	return read(ctx, s, fmt.Sprintf("get subclass %d", id), func(q *storage.Queries) (model.SubclassRecord, error) {
		return q.GetSubclassRecord(ctx, id)
	})
}

func checkSubclass(c *checker, in model.SubclassInput, sc *model.Subclass) {
	c.index(model.ResourceSubclasses, in.Index, &sc.Index, sc.ID)
	c.text("name", in.Name, &sc.Name, maxNameLen)
	c.text("subclass_flavor", in.SubclassFlavor, &sc.SubclassFlavor, maxLongLen)
	c.ref("class", model.ResourceClasses, in.Class, &sc.ClassID)

	var desc *string
	c.nullableText("description", in.Description, &desc, 0)
}

// setDescription writes the description when the field was present.
func setDescription(ctx context.Context, q *storage.Queries, id int64, in model.Nullable[string]) error {
	if !in.Set {
		return nil
	}
	return q.SetSubclassDescription(ctx, id, in.Ptr())
}

// CreateSubclass validates in and stores a new subclass under its class.
func (s *Service) CreateSubclass(ctx context.Context, in model.SubclassInput) (model.SubclassRecord, error) {
	var rec model.SubclassRecord
	err := s.write(ctx, model.ResourceSubclasses, opCreate, func(q *storage.Queries) error {
		c := newChecker(ctx, q, true, in.NullKeys)
		var sc model.Subclass
		checkSubclass(c, in, &sc)
		if err := c.done(); err != nil {
			return err
		}

		created, err := q.CreateSubclass(ctx, sc)
		if err != nil {
			return err
		}
		if err := setDescription(ctx, q, created.ID, in.Description); err != nil {
			return err
		}
		rec, err = q.GetSubclassRecord(ctx, created.ID)
		return err
	})
	if err != nil {
		return model.SubclassRecord{}, fmt.Errorf("catalog: create subclass: %w", err)
	}
	return rec, nil
}

// UpdateSubclass applies the fields present in in to the subclass with id.
// A null description removes it.
func (s *Service) UpdateSubclass(ctx context.Context, id int64, in model.SubclassInput) (model.SubclassRecord, error) {
	var rec model.SubclassRecord
	err := s.write(ctx, model.ResourceSubclasses, opUpdate, func(q *storage.Queries) error {
		sc, err := q.GetSubclass(ctx, id)
		if err != nil {
			return err
		}
		c := newChecker(ctx, q, false, in.NullKeys)
		checkSubclass(c, in, &sc)
		if err := c.done(); err != nil {
			return err
		}

		if _, err := q.UpdateSubclass(ctx, sc); err != nil {
			return err
		}
		if err := setDescription(ctx, q, id, in.Description); err != nil {
			return err
		}
		rec, err = q.GetSubclassRecord(ctx, id)
		return err
	})
	if err != nil {
		return model.SubclassRecord{}, fmt.Errorf("catalog: update subclass %d: %w", id, err)
	}
	return rec, nil
}

// DeleteSubclass removes a subclass, its description and its spell links.
func (s *Service) DeleteSubclass(ctx context.Context, id int64) error {
	return s.remove(ctx, model.ResourceSubclasses, id, func(ctx context.Context, q *storage.Queries) error {
		return q.DeleteSubclass(ctx, id)
	})
}
