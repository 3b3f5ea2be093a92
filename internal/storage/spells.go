package storage

import (
	"context"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
)

const spellColumns = `id, "index", name, level, attack_type, casting_time, concentration,
	duration, material, "range", ritual, school_id`

func scanSpell(r rowScanner) (model.Spell, error) {
	var s model.Spell
	err := r.Scan(&s.ID, &s.Index, &s.Name, &s.Level, &s.AttackType, &s.CastingTime,
		&s.Concentration, &s.Duration, &s.Material, &s.Range, &s.Ritual, &s.SchoolID)
	return s, err
}

// ListSpells returns all spells in creation order.
func (q *Queries) ListSpells(ctx context.Context) ([]model.Spell, error) {
	spells, err := collect(ctx, q.q, scanSpell, `SELECT `+spellColumns+` FROM spells ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list spells: %w", err)
	}
	return spells, nil
}

// GetSpell returns the spell with id, or ErrNotFound.
func (q *Queries) GetSpell(ctx context.Context, id int64) (model.Spell, error) {
	s, err := scanSpell(q.q.queryRow(ctx, `SELECT `+spellColumns+` FROM spells WHERE id = $1`, id))
	if err != nil {
		return model.Spell{}, fmt.Errorf("storage: get spell %d: %w", id, translate(err))
	}
	return s, nil
}

// CreateSpell inserts s and returns the stored row.
func (q *Queries) CreateSpell(ctx context.Context, s model.Spell) (model.Spell, error) {
	created, err := scanSpell(q.q.queryRow(ctx,
		`INSERT INTO spells ("index", name, level, attack_type, casting_time, concentration,
		                     duration, material, "range", ritual, school_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+spellColumns,
		s.Index, s.Name, s.Level, s.AttackType, s.CastingTime, s.Concentration,
		s.Duration, s.Material, s.Range, s.Ritual, s.SchoolID,
	))
	if err != nil {
		return model.Spell{}, fmt.Errorf("storage: create spell: %w", translate(err))
	}
	return created, nil
}

// UpdateSpell overwrites every column of the spell with s.ID.
func (q *Queries) UpdateSpell(ctx context.Context, s model.Spell) (model.Spell, error) {
	updated, err := scanSpell(q.q.queryRow(ctx,
		`UPDATE spells SET "index" = $2, name = $3, level = $4, attack_type = $5, casting_time = $6,
		        concentration = $7, duration = $8, material = $9, "range" = $10, ritual = $11,
		        school_id = $12
		 WHERE id = $1
		 RETURNING `+spellColumns,
		s.ID, s.Index, s.Name, s.Level, s.AttackType, s.CastingTime, s.Concentration,
		s.Duration, s.Material, s.Range, s.Ritual, s.SchoolID,
	))
	if err != nil {
		return model.Spell{}, fmt.Errorf("storage: update spell %d: %w", s.ID, translate(err))
	}
	return updated, nil
}

// DeleteSpell removes the spell, its descriptions and its association rows.
func (q *Queries) DeleteSpell(ctx context.Context, id int64) error {
	return q.deleteByID(ctx, tableSpells, id)
}

// ListSpellsBySchool returns the spells owned by schoolID in creation order.
func (q *Queries) ListSpellsBySchool(ctx context.Context, schoolID int64) ([]model.Ref, error) {
	refs, err := collect(ctx, q.q, scanRef,
		`SELECT id, name FROM spells WHERE school_id = $1 ORDER BY id`, schoolID)
	if err != nil {
		return nil, fmt.Errorf("storage: list spells of school %d: %w", schoolID, err)
	}
	return refs, nil
}

// ListSpellDescriptions returns the description paragraphs of a spell in order.
func (q *Queries) ListSpellDescriptions(ctx context.Context, spellID int64) ([]string, error) {
	values, err := collect(ctx, q.q, func(r rowScanner) (string, error) {
		var v string
		err := r.Scan(&v)
		return v, err
	}, `SELECT value FROM spell_descriptions WHERE spell_id = $1 ORDER BY position, id`, spellID)
	if err != nil {
		return nil, fmt.Errorf("storage: list descriptions of spell %d: %w", spellID, err)
	}
	return values, nil
}

// ReplaceSpellDescriptions replaces the description paragraphs of a spell.
func (q *Queries) ReplaceSpellDescriptions(ctx context.Context, spellID int64, values []string) error {
	if _, err := q.q.exec(ctx, `DELETE FROM spell_descriptions WHERE spell_id = $1`, spellID); err != nil {
		return fmt.Errorf("storage: clear descriptions of spell %d: %w", spellID, translate(err))
	}
	for i, v := range values {
		if _, err := q.q.exec(ctx,
			`INSERT INTO spell_descriptions (spell_id, position, value) VALUES ($1, $2, $3)`,
			spellID, i, v,
		); err != nil {
			return fmt.Errorf("storage: insert description of spell %d: %w", spellID, translate(err))
		}
	}
	return nil
}
