package catalog

import (
	"context"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/storage"
)

// ListProficiencies returns every proficiency in creation order.
func (s *Service) ListProficiencies(ctx context.Context) ([]model.Proficiency, error) {
	return read(ctx, s, "list proficiencies", func(q *storage.Queries) ([]model.Proficiency, error) {
		return q.ListProficiencies(ctx)
	})
}

// GetProficiency returns a proficiency with its classes and race links.
func (s *Service) GetProficiency(ctx context.Context, id int64) (model.ProficiencyRecord, error) {
	return read(ctx, s, fmt.Sprintf("get proficiency %d", id), func(q *storage.Queries) (model.ProficiencyRecord, error) {
		return q.GetProficiencyRecord(ctx, id)
	})
}

type proficiencyLinks struct {
	classes, races, subraces []int64
}

func checkProficiency(c *checker, in model.ProficiencyInput, p *model.Proficiency) proficiencyLinks {
	c.index(model.ResourceProficiencies, in.Index, &p.Index, p.ID)
	c.text("name", in.Name, &p.Name, maxNameLen)
	c.text("type", in.Type, &p.Type, maxShortLen)
	return proficiencyLinks{
		classes:  c.refs("classes", model.ResourceClasses, in.Classes),
		races:    c.refs("races", model.ResourceRaces, in.Races),
		subraces: c.refs("subraces", model.ResourceSubraces, in.Subraces),
	}
}

// apply replaces each association side whose field was present. The race
// and subrace sides of proficiency_races are independent.
func (l proficiencyLinks) apply(ctx context.Context, q *storage.Queries, id int64) error {
	if l.classes != nil {
		if err := q.ReplaceProficiencyClasses(ctx, id, l.classes); err != nil {
			return err
		}
	}
	if l.races != nil {
		if err := q.ReplaceProficiencyRaces(ctx, id, l.races); err != nil {
			return err
		}
	}
	if l.subraces != nil {
		if err := q.ReplaceProficiencySubraces(ctx, id, l.subraces); err != nil {
			return err
		}
	}
	return nil
}

// CreateProficiency validates in and stores a new proficiency with its links.
func (s *Service) CreateProficiency(ctx context.Context, in model.ProficiencyInput) (model.ProficiencyRecord, error) {
	var rec model.ProficiencyRecord
	err := s.write(ctx, model.ResourceProficiencies, opCreate, func(q *storage.Queries) error {
		c := newChecker(ctx, q, true, in.NullKeys)
		var p model.Proficiency
		links := checkProficiency(c, in, &p)
		if err := c.done(); err != nil {
			return err
		}

		created, err := q.CreateProficiency(ctx, p)
		if err != nil {
			return err
		}
		if err := links.apply(ctx, q, created.ID); err != nil {
			return err
		}
		rec, err = q.GetProficiencyRecord(ctx, created.ID)
		return err
	})
	if err != nil {
		return model.ProficiencyRecord{}, fmt.Errorf("catalog: create proficiency: %w", err)
	}
	return rec, nil
}

// UpdateProficiency applies the fields present in in to the proficiency with id.
func (s *Service) UpdateProficiency(ctx context.Context, id int64, in model.ProficiencyInput) (model.ProficiencyRecord, error) {
	var rec model.ProficiencyRecord
	err := s.write(ctx, model.ResourceProficiencies, opUpdate, func(q *storage.Queries) error {
		p, err := q.GetProficiency(ctx, id)
		if err != nil {
			return err
		}
		c := newChecker(ctx, q, false, in.NullKeys)
		links := checkProficiency(c, in, &p)
		if err := c.done(); err != nil {
			return err
		}

		if _, err := q.UpdateProficiency(ctx, p); err != nil {
			return err
		}
		if err := links.apply(ctx, q, id); err != nil {
			return err
		}
		rec, err = q.GetProficiencyRecord(ctx, id)
		return err
	})
	if err != nil {
		return model.ProficiencyRecord{}, fmt.Errorf("catalog: update proficiency %d: %w", id, err)
	}
	return rec, nil
}

// DeleteProficiency removes a proficiency and every link naming it.
func (s *Service) DeleteProficiency(ctx context.Context, id int64) error {
	return s.remove(ctx, model.ResourceProficiencies, id, func(ctx context.Context, q *storage.Queries) error {
		return q.DeleteProficiency(ctx, id)
	})
}
