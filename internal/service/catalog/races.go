package catalog

import (
	"context"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/storage"
)

// ListRaces returns every race in creation order.
func (s *Service) ListRaces(ctx context.Context) ([]model.Race, error) {
	return read(ctx, s, "list races", func(q *storage.Queries) ([]model.Race, error) {
		return q.ListRaces(ctx)
	})
}

// GetRace returns a race with its subraces and starting proficiencies.
func (s *Service) GetRace(ctx context.Context, id int64) (model.RaceRecord, error) {
	return read(ctx, s, fmt.Sprintf("get race %d", id), func(q *storage.Queries) (model.RaceRecord, error) {
		return q.GetRaceRecord(ctx, id)
	})
}

func checkRace(c *checker, in model.RaceInput, r *model.Race) []int64 {
	c.index(model.ResourceRaces, in.Index, &r.Index, r.ID)
	c.text("name", in.Name, &r.Name, maxNameLen)
	c.text("age", in.Age, &r.Age, 0)
	c.text("alignment", in.Alignment, &r.Alignment, 0)
	c.text("language_desc", in.LanguageDesc, &r.LanguageDesc, 0)
	c.text("size", in.Size, &r.Size, maxShortLen)
	c.text("size_description", in.SizeDescription, &r.SizeDescription, 0)
	c.integer("speed", in.Speed, &r.Speed, 0)
	return c.refs("starting_proficiencies", model.ResourceProficiencies, in.StartingProficiencies)
}

// CreateRace validates in and stores a new race with its starting proficiencies.
func (s *Service) CreateRace(ctx context.Context, in model.RaceInput) (model.RaceRecord, error) {
	var rec model.RaceRecord
	err := s.write(ctx, model.ResourceRaces, opCreate, func(q *storage.Queries) error {
		c := newChecker(ctx, q, true, in.NullKeys)
		var race model.Race
		profs := checkRace(c, in, &race)
		if err := c.done(); err != nil {
			return err
		}

		created, err := q.CreateRace(ctx, race)
		if err != nil {
			return err
		}
		if profs != nil {
			if err := q.ReplaceRaceStartingProficiencies(ctx, created.ID, profs); err != nil {
				return err
			}
		}
		rec, err = q.GetRaceRecord(ctx, created.ID)
		return err
	})
	if err != nil {
		return model.RaceRecord{}, fmt.Errorf("catalog: create race: %w", err)
	}
	return rec, nil
}

// UpdateRace applies the fields present in in to the race with id.
func (s *Service) UpdateRace(ctx context.Context, id int64, in model.RaceInput) (model.RaceRecord, error) {
	var rec model.RaceRecord
	err := s.write(ctx, model.ResourceRaces, opUpdate, func(q *storage.Queries) error {
		race, err := q.GetRace(ctx, id)
		if err != nil {
			return err
		}
		c := newChecker(ctx, q, false, in.NullKeys)
		profs := checkRace(c, in, &race)
		if err := c.done(); err != nil {
			return err
		}

		if _, err := q.UpdateRace(ctx, race); err != nil {
			return err
		}
		if profs != nil {
			if err := q.ReplaceRaceStartingProficiencies(ctx, id, profs); err != nil {
				return err
			}
		}
		rec, err = q.GetRaceRecord(ctx, id)
		return err
	})
	if err != nil {
		return model.RaceRecord{}, fmt.Errorf("catalog: update race %d: %w", id, err)
	}
	return rec, nil
}

// DeleteRace removes a race, its subraces and every link to either.
func (s *Service) DeleteRace(ctx context.Context, id int64) error {
	return s.remove(ctx, model.ResourceRaces, id, func(ctx context.Context, q *storage.Queries) error {
		return q.DeleteRace(ctx, id)
	})
}

// ListSubraces returns every subrace in creation order.
func (s *Service) ListSubraces(ctx context.Context) ([]model.Subrace, error) {
	return read(ctx, s, "list subraces", func(q *storage.Queries) ([]model.Subrace, error) {
		return q.ListSubraces(ctx)
	})
}

// GetSubrace returns a subrace with its race and starting proficiencies.
func (s *Service) GetSubrace(ctx context.Context, id int64) (model.SubraceRecord, error) {
	return read(ctx, s, fmt.Sprintf("get subrace %d", id), func(q *storage.Queries) (model.SubraceRecord, error) {
		return q.GetSubraceRecord(ctx, id)
	})
}

func checkSubrace(c *checker, in model.SubraceInput, sr *model.Subrace) []int64 {
	c.index(model.ResourceSubraces, in.Index, &sr.Index, sr.ID)
	c.text("name", in.Name, &sr.Name, maxNameLen)
	c.text("desc", in.Desc, &sr.Desc, 0)
	c.ref("race", model.ResourceRaces, in.Race, &sr.RaceID)
	return c.refs("starting_proficiencies", model.ResourceProficiencies, in.StartingProficiencies)
}

// CreateSubrace validates in and stores a new subrace under its race.
func (s *Service) CreateSubrace(ctx context.Context, in model.SubraceInput) (model.SubraceRecord, error) {
	var rec model.SubraceRecord
	err := s.write(ctx, model.ResourceSubraces, opCreate, func(q *storage.Queries) error {
		c := newChecker(ctx, q, true, in.NullKeys)
		var sr model.Subrace
		profs := checkSubrace(c, in, &sr)
		if err := c.done(); err != nil {
			return err
		}

		created, err := q.CreateSubrace(ctx, sr)
		if err != nil {
			return err
		}
		if profs != nil {
			if err := q.ReplaceSubraceStartingProficiencies(ctx, created.ID, profs); err != nil {
				return err
			}
		}
		rec, err = q.GetSubraceRecord(ctx, created.ID)
		return err
	})
	if err != nil {
		return model.SubraceRecord{}, fmt.Errorf("catalog: create subrace: %w", err)
	}
	return rec, nil
}

// UpdateSubrace applies the fields present in in to the subrace with id.
// Supplying race moves the subrace to another race.
func (s *Service) UpdateSubrace(ctx context.Context, id int64, in model.SubraceInput) (model.SubraceRecord, error) {
	var rec model.SubraceRecord
	err := s.write(ctx, model.ResourceSubraces, opUpdate, func(q *storage.Queries) error {
		sr, err := q.GetSubrace(ctx, id)
		if err != nil {
			return err
		}
		c := newChecker(ctx, q, false, in.NullKeys)
		profs := checkSubrace(c, in, &sr)
		if err := c.done(); err != nil {
			return err
		}

		if _, err := q.UpdateSubrace(ctx, sr); err != nil {
			return err
		}
		if profs != nil {
			if err := q.ReplaceSubraceStartingProficiencies(ctx, id, profs); err != nil {
				return err
			}
		}
		rec, err = q.GetSubraceRecord(ctx, id)
		return err
	})
	if err != nil {
		return model.SubraceRecord{}, fmt.Errorf("catalog: update subrace %d: %w", id, err)
	}
	return rec, nil
}

// DeleteSubrace removes a subrace and every link naming it.
func (s *Service) DeleteSubrace(ctx context.Context, id int64) error {
	return s.remove(ctx, model.ResourceSubraces, id, func(ctx context.Context, q *storage.Queries) error {
		return q.DeleteSubrace(ctx, id)
	})
}
