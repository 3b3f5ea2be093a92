package storage

import (
	"context"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
)

const raceColumns = `id, "index", name, age, alignment, language_desc, size, size_description, speed`

func scanRace(r rowScanner) (model.Race, error) {
	var race model.Race
	err := r.Scan(&race.ID, &race.Index, &race.Name, &race.Age, &race.Alignment,
		&race.LanguageDesc, &race.Size, &race.SizeDescription, &race.Speed)
	return race, err
}

// ListRaces returns all races in creation order.
func (q *Queries) ListRaces(ctx context.Context) ([]model.Race, error) {
	races, err := collect(ctx, q.q, scanRace, `SELECT `+raceColumns+` FROM races ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list races: %w", err)
	}
	return races, nil
}

// GetRace returns the race with id, or ErrNotFound.
func (q *Queries) GetRace(ctx context.Context, id int64) (model.Race, error) {
	race, err := scanRace(q.q.queryRow(ctx, `SELECT `+raceColumns+` FROM races WHERE id = $1`, id))
	if err != nil {
		return model.Race{}, fmt.Errorf("storage: get race %d: %w", id, translate(err))
	}
	return race, nil
}

// CreateRace inserts race and returns the stored row.
func (q *Queries) CreateRace(ctx context.Context, race model.Race) (model.Race, error) {
	created, err := scanRace(q.q.queryRow(ctx,
		`INSERT INTO races ("index", name, age, alignment, language_desc, size, size_description, speed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+raceColumns,
		race.Index, race.Name, race.Age, race.Alignment, race.LanguageDesc,
		race.Size, race.SizeDescription, race.Speed,
	))
	if err != nil {
		return model.Race{}, fmt.Errorf("storage: create race: %w", translate(err))
	}
	return created, nil
}

// UpdateRace overwrites every column of the race with race.ID.
func (q *Queries) UpdateRace(ctx context.Context, race model.Race) (model.Race, error) {
	updated, err := scanRace(q.q.queryRow(ctx,
		`UPDATE races SET "index" = $2, name = $3, age = $4, alignment = $5, language_desc = $6,
		        size = $7, size_description = $8, speed = $9
		 WHERE id = $1
		 RETURNING `+raceColumns,
		race.ID, race.Index, race.Name, race.Age, race.Alignment, race.LanguageDesc,
		race.Size, race.SizeDescription, race.Speed,
	))
	if err != nil {
		return model.Race{}, fmt.Errorf("storage: update race %d: %w", race.ID, translate(err))
	}
	return updated, nil
}

// DeleteRace removes the race. Its subraces, their starting proficiencies and
// every proficiency_races row naming either go with it.
func (q *Queries) DeleteRace(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, tableRaces, id)
}

const subraceColumns = `id, "index", name, "desc", race_id`

func scanSubrace(r rowScanner) (model.Subrace, error) {
	var s model.Subrace
	err := r.Scan(&s.ID, &s.Index, &s.Name, &s.Desc, &s.RaceID)
	return s, err
}

// ListSubraces returns all subraces in creation order.
func (q *Queries) ListSubraces(ctx context.Context) ([]model.Subrace, error) {
	subraces, err := collect(ctx, q.q, scanSubrace, `SELECT `+subraceColumns+` FROM subraces ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list subraces: %w", err)
	}
	return subraces, nil
}

// ListSubracesByRace returns the subraces owned by raceID in creation order.
func (q *Queries) ListSubracesByRace(ctx context.Context, raceID int64) ([]model.Subrace, error) {
	subraces, err := collect(ctx, q.q, scanSubrace,
		`SELECT `+subraceColumns+` FROM subraces WHERE race_id = $1 ORDER BY id`, raceID)
	if err != nil {
		return nil, fmt.Errorf("storage: list subraces of race %d: %w", raceID, err)
	}
	return subraces, nil
}

// GetSubrace returns the subrace with id, or ErrNotFound.
func (q *Queries) GetSubrace(ctx context.Context, id int64) (model.Subrace, error) {
	s, err := scanSubrace(q.q.queryRow(ctx, `SELECT `+subraceColumns+` FROM subraces WHERE id = $1`, id))
	if err != nil {
		return model.Subrace{}, fmt.Errorf("storage: get subrace %d: %w", id, translate(err))
	}
	return s, nil
}

// CreateSubrace inserts s and returns the stored row.
func (q *Queries) CreateSubrace(ctx context.Context, s model.Subrace) (model.Subrace, error) {
	created, err := scanSubrace(q.q.queryRow(ctx,
		`INSERT INTO subraces ("index", name, "desc", race_id) VALUES ($1, $2, $3, $4)
		 RETURNING `+subraceColumns,
		s.Index, s.Name, s.Desc, s.RaceID,
	))
	if err != nil {
		return model.Subrace{}, fmt.Errorf("storage: create subrace: %w", translate(err))
	}
	return created, nil
}

// UpdateSubrace overwrites every column of the subrace with s.ID.
func (q *Queries) UpdateSubrace(ctx context.Context, s model.Subrace) (model.Subrace, error) {
	updated, err := scanSubrace(q.q.queryRow(ctx,
		`UPDATE subraces SET "index" = $2, name = $3, "desc" = $4, race_id = $5 WHERE id = $1
		 RETURNING `+subraceColumns,
		s.ID, s.Index, s.Name, s.Desc, s.RaceID,
	))
	if err != nil {
		return model.Subrace{}, fmt.Errorf("storage: update subrace %d: %w", s.ID, translate(err))
	}
	return updated, nil
}

// DeleteSubrace removes the subrace and its association rows.
func (q *Queries) DeleteSubrace(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, tableSubraces, id)
}
