package storage

import (
	"context"

	"github.com/ashita-ai/compendium/internal/model"
)

// The Get*Record methods load an entity together with every related row its
// detail view needs. Run them inside InTx (or after a write in the same
// transaction) when a consistent snapshot matters.

// GetClassRecord loads a class with its proficiencies, subclasses and spells.
func (q *Queries) GetClassRecord(ctx context.Context, id int64) (model.ClassRecord, error) {
	c, err := q.GetClass(ctx, id)
	if err != nil {
		return model.ClassRecord{}, err
	}
	rec := model.ClassRecord{Class: c}
	if rec.Proficiencies, err = q.ListClassProficiencies(ctx, id); err != nil {
		return model.ClassRecord{}, err
	}
	if rec.Subclasses, err = q.ListSubclassesByClass(ctx, id); err != nil {
		return model.ClassRecord{}, err
	}
	if rec.Spells, err = q.ListClassSpells(ctx, id); err != nil {
		return model.ClassRecord{}, err
	}
	return rec, nil
}

// GetProficiencyRecord loads a proficiency with its classes and race links.
func (q *Queries) GetProficiencyRecord(ctx context.Context, id int64) (model.ProficiencyRecord, error) {
	p, err := q.GetProficiency(ctx, id)
	if err != nil {
		return model.ProficiencyRecord{}, err
	}
	rec := model.ProficiencyRecord{Proficiency: p}
	if rec.Classes, err = q.ListProficiencyClasses(ctx, id); err != nil {
		return model.ProficiencyRecord{}, err
	}
	if rec.RaceLinks, err = q.ListProficiencyRaces(ctx, id); err != nil {
		return model.ProficiencyRecord{}, err
	}
	return rec, nil
}

// GetRaceRecord loads a race with its subraces and starting proficiencies.
func (q *Queries) GetRaceRecord(ctx context.Context, id int64) (model.RaceRecord, error) {
	r, err := q.GetRace(ctx, id)
	if err != nil {
		return model.RaceRecord{}, err
	}
	rec := model.RaceRecord{Race: r}
	if rec.Subraces, err = q.ListSubracesByRace(ctx, id); err != nil {
		return model.RaceRecord{}, err
	}
	if rec.StartingProficiencies, err = q.ListRaceStartingProficiencies(ctx, id); err != nil {
		return model.RaceRecord{}, err
	}
	return rec, nil
}

// GetSubraceRecord loads a subrace with its race name and starting proficiencies.
func (q *Queries) GetSubraceRecord(ctx context.Context, id int64) (model.SubraceRecord, error) {
	s, err := q.GetSubrace(ctx, id)
	if err != nil {
		return model.SubraceRecord{}, err
	}
	race, err := q.GetRace(ctx, s.RaceID)
	if err != nil {
		return model.SubraceRecord{}, err
	}
	rec := model.SubraceRecord{Subrace: s, RaceName: race.Name}
	if rec.StartingProficiencies, err = q.ListSubraceStartingProficiencies(ctx, id); err != nil {
		return model.SubraceRecord{}, err
	}
	return rec, nil
}

// GetSchoolRecord loads a school with its spells.
func (q *Queries) GetSchoolRecord(ctx context.Context, id int64) (model.SchoolRecord, error) {
	s, err := q.GetSchool(ctx, id)
	if err != nil {
		return model.SchoolRecord{}, err
	}
	rec := model.SchoolRecord{School: s}
	if rec.Spells, err = q.ListSpellsBySchool(ctx, id); err != nil {
		return model.SchoolRecord{}, err
	}
	return rec, nil
}

// GetSpellRecord loads a spell with its school name, descriptions, classes
// and subclasses.
func (q *Queries) GetSpellRecord(ctx context.Context, id int64) (model.SpellRecord, error) {
	s, err := q.GetSpell(ctx, id)
	if err != nil {
		return model.SpellRecord{}, err
	}
	school, err := q.GetSchool(ctx, s.SchoolID)
	if err != nil {
		return model.SpellRecord{}, err
	}
	rec := model.SpellRecord{Spell: s, SchoolName: school.Name}
	if rec.Descriptions, err = q.ListSpellDescriptions(ctx, id); err != nil {
		return model.SpellRecord{}, err
	}
	if rec.Classes, err = q.ListSpellClasses(ctx, id); err != nil {
		return model.SpellRecord{}, err
	}
	if rec.Subclasses, err = q.ListSpellSubclasses(ctx, id); err != nil {
		return model.SpellRecord{}, err
	}
	return rec, nil
}

// GetSubclassRecord loads a subclass with its class name and description.
func (q *Queries) GetSubclassRecord(ctx context.Context, id int64) (model.SubclassRecord, error) {
	s, err := q.GetSubclass(ctx, id)
	if err != nil {
		return model.SubclassRecord{}, err
	}
	class, err := q.GetClass(ctx, s.ClassID)
	if err != nil {
		return model.SubclassRecord{}, err
	}
	rec := model.SubclassRecord{Subclass: s, ClassName: class.Name}
	if rec.Description, err = q.GetSubclassDescription(ctx, id); err != nil {
		return model.SubclassRecord{}, err
	}
	return rec, nil
}
