package catalog

import (
	"context"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/storage"
)

// ListSchools returns every school in creation order.
func (s *Service) ListSchools(ctx context.Context) ([]model.School, error) {
	return read(ctx, s, "list schools", func(q *storage.Queries) ([]model.School, error) {
		return q.ListSchools(ctx)
	})
}

// GetSchool returns a school with its spells.
func (s *Service) GetSchool(ctx context.Context, id int64) (model.SchoolRecord, error) {
	return read(ctx, s, fmt.Sprintf("get school %d", id), func(q *storage.Queries) (model.SchoolRecord, error) {
		return q.GetSchoolRecord(ctx, id)
	})
}

func checkSchool(c *checker, in model.SchoolInput, sc *model.School) {
	c.index(model.ResourceSchools, in.Index, &sc.Index, sc.ID)
	c.text("name", in.Name, &sc.Name, maxNameLen)
}

// CreateSchool validates in and stores a new school.
func (s *Service) CreateSchool(ctx context.Context, in model.SchoolInput) (model.SchoolRecord, error) {
	var rec model.SchoolRecord
	err := s.write(ctx, model.ResourceSchools, opCreate, func(q *storage.Queries) error {
		c := newChecker(ctx, q, true, in.NullKeys)
		var sc model.School
		checkSchool(c, in, &sc)
		if err := c.done(); err != nil {
			return err
		}

		created, err := q.CreateSchool(ctx, sc)
		if err != nil {
			return err
		}
		rec, err = q.GetSchoolRecord(ctx, created.ID)
		return err
	})
	if err != nil {
		return model.SchoolRecord{}, fmt.Errorf("catalog: create school: %w", err)
	}
	return rec, nil
}

// UpdateSchool applies the fields present in in to the school with id.
func (s *Service) UpdateSchool(ctx context.Context, id int64, in model.SchoolInput) (model.SchoolRecord, error) {
	var rec model.SchoolRecord
	err := s.write(ctx, model.ResourceSchools, opUpdate, func(q *storage.Queries) error {
		sc, err := q.GetSchool(ctx, id)
		if err != nil {
			return err
		}
		c := newChecker(ctx, q, false, in.NullKeys)
		checkSchool(c, in, &sc)
		if err := c.done(); err != nil {
			return err
		}

		if _, err := q.UpdateSchool(ctx, sc); err != nil {
			return err
		}
		rec, err = q.GetSchoolRecord(ctx, id)
		return err
	})
	if err != nil {
		return model.SchoolRecord{}, fmt.Errorf("catalog: update school %d: %w", id, err)
	}
	return rec, nil
}

// DeleteSchool removes a school and, by cascade, all of its spells.
func (s *Service) DeleteSchool(ctx context.Context, id int64) error {
	return s.remove(ctx, model.ResourceSchools, id, func(ctx context.Context, q *storage.Queries) error {
		return q.DeleteSchool(ctx, id)
	})
}
