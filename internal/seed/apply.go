package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/storage"
)

// applier resolves natural keys within one seed transaction. Ids written
// earlier in the seed are cached; anything else is looked up in the store.
type applier struct {
	q   *storage.Queries
	ids map[string]map[string]int64
}

func newApplier(q *storage.Queries) *applier {
	ids := make(map[string]map[string]int64, len(model.Resources))
	for _, r := range model.Resources {
		ids[r] = make(map[string]int64)
	}
	return &applier{q: q, ids: ids}
}

func (a *applier) remember(resource, index string, id int64) {
	a.ids[resource][index] = id
}

// lookup reports the id of index in resource, or false if there is none.
func (a *applier) lookup(ctx context.Context, resource, index string) (int64, bool, error) {
	if id, ok := a.ids[resource][index]; ok {
		return id, true, nil
	}
	id, err := a.q.IDByIndex(ctx, resource, index)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	a.remember(resource, index, id)
	return id, true, nil
}

// resolve is lookup for a key read from col of r; a miss is an error naming
// the file, line and key.
func (a *applier) resolve(ctx context.Context, t *table, r row, resource, col string) (int64, error) {
	index := t.str(r, col)
	id, ok, err := a.lookup(ctx, resource, index)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, t.errorf(r, "%s: no %s with index %q", col, resource, index)
	}
	return id, nil
}

func applyClasses(ctx context.Context, a *applier, t *table) error {
	if err := t.require("index", "name", "hit_die"); err != nil {
		return err
	}
	for _, r := range t.rows {
		hitDie, err := t.int(r, "hit_die")
		if err != nil {
			return err
		}
		c := model.Class{Index: t.str(r, "index"), Name: t.str(r, "name"), HitDie: hitDie}
		id, err := a.q.UpsertClass(ctx, c)
		if err != nil {
			return err
		}
		a.remember(model.ResourceClasses, c.Index, id)
	}
	return nil
}

func applyProficiencies(ctx context.Context, a *applier, t *table) error {
	if err := t.require("index", "name", "type"); err != nil {
		return err
	}
	for _, r := range t.rows {
		p := model.Proficiency{Index: t.str(r, "index"), Name: t.str(r, "name"), Type: t.str(r, "type")}
		id, err := a.q.UpsertProficiency(ctx, p)
		if err != nil {
			return err
		}
		a.remember(model.ResourceProficiencies, p.Index, id)
	}
	return nil
}

func applyRaces(ctx context.Context, a *applier, t *table) error {
	if err := t.require("index", "name", "age", "alignment", "language_desc", "size", "size_description", "speed"); err != nil {
		return err
	}
	for _, r := range t.rows {
		speed, err := t.int(r, "speed")
		if err != nil {
			return err
		}
		race := model.Race{
			Index:           t.str(r, "index"),
			Name:            t.str(r, "name"),
			Age:             t.str(r, "age"),
			Alignment:       t.str(r, "alignment"),
			LanguageDesc:    t.str(r, "language_desc"),
			Size:            t.str(r, "size"),
			SizeDescription: t.str(r, "size_description"),
			Speed:           speed,
		}
		id, err := a.q.UpsertRace(ctx, race)
		if err != nil {
			return err
		}
		a.remember(model.ResourceRaces, race.Index, id)
	}
	return nil
}

func applySubraces(ctx context.Context, a *applier, t *table) error {
	if err := t.require("index", "name", "desc", "race_index"); err != nil {
		return err
	}
	for _, r := range t.rows {
		raceID, err := a.resolve(ctx, t, r, model.ResourceRaces, "race_index")
		if err != nil {
			return err
		}
		s := model.Subrace{Index: t.str(r, "index"), Name: t.str(r, "name"), Desc: t.str(r, "desc"), RaceID: raceID}
		id, err := a.q.UpsertSubrace(ctx, s)
		if err != nil {
			return err
		}
		a.remember(model.ResourceSubraces, s.Index, id)
	}
	return nil
}

func applySubclasses(ctx context.Context, a *applier, t *table) error {
	if err := t.require("index", "name", "subclass_flavor", "class_index"); err != nil {
		return err
	}
	for _, r := range t.rows {
		classID, err := a.resolve(ctx, t, r, model.ResourceClasses, "class_index")
		if err != nil {
			return err
		}
		s := model.Subclass{
			Index:          t.str(r, "index"),
			Name:           t.str(r, "name"),
			SubclassFlavor: t.str(r, "subclass_flavor"),
			ClassID:        classID,
		}
		id, err := a.q.UpsertSubclass(ctx, s)
		if err != nil {
			return err
		}
		a.remember(model.ResourceSubclasses, s.Index, id)
	}
	return nil
}

// applySubclassDescriptions sets the single description of each subclass.
// A later row for the same subclass wins.
func applySubclassDescriptions(ctx context.Context, a *applier, t *table) error {
	if err := t.require("subclasses_index", "value"); err != nil {
		return err
	}
	for _, r := range t.rows {
		id, err := a.resolve(ctx, t, r, model.ResourceSubclasses, "subclasses_index")
		if err != nil {
			return err
		}
		value := t.str(r, "value")
		if err := a.q.SetSubclassDescription(ctx, id, &value); err != nil {
			return err
		}
	}
	return nil
}

// applySpells upserts spells, creating each school on first sight.
func applySpells(ctx context.Context, a *applier, t *table) error {
	if err := t.require("index", "name", "level", "attack_type", "casting_time", "concentration",
		"duration", "material", "range", "ritual", "school_index", "school_name"); err != nil {
		return err
	}
	for _, r := range t.rows {
		level, err := t.int(r, "level")
		if err != nil {
			return err
		}

		schoolIndex := t.str(r, "school_index")
		schoolID, ok, err := a.lookup(ctx, model.ResourceSchools, schoolIndex)
		if err != nil {
			return err
		}
		if !ok {
			schoolID, err = a.q.UpsertSchool(ctx, model.School{Index: schoolIndex, Name: t.str(r, "school_name")})
			if err != nil {
				return err
			}
			a.remember(model.ResourceSchools, schoolIndex, schoolID)
		}

		s := model.Spell{
			Index:         t.str(r, "index"),
			Name:          t.str(r, "name"),
			Level:         level,
			AttackType:    t.optional(r, "attack_type"),
			CastingTime:   t.str(r, "casting_time"),
			Concentration: t.flag(r, "concentration"),
			Duration:      t.str(r, "duration"),
			Material:      t.optional(r, "material"),
			Range:         t.str(r, "range"),
			Ritual:        t.flag(r, "ritual"),
			SchoolID:      schoolID,
		}
		id, err := a.q.UpsertSpell(ctx, s)
		if err != nil {
			return err
		}
		a.remember(model.ResourceSpells, s.Index, id)
	}
	return nil
}

// applySpellDescriptions replaces the paragraphs of every spell named in the
// file, in file order, so re-seeding does not duplicate them.
func applySpellDescriptions(ctx context.Context, a *applier, t *table) error {
	if err := t.require("spells_index", "value"); err != nil {
		return err
	}
	var order []int64
	paragraphs := make(map[int64][]string)
	for _, r := range t.rows {
		id, err := a.resolve(ctx, t, r, model.ResourceSpells, "spells_index")
		if err != nil {
			return err
		}
		if _, seen := paragraphs[id]; !seen {
			order = append(order, id)
		}
		paragraphs[id] = append(paragraphs[id], t.str(r, "value"))
	}
	for _, id := range order {
		if err := a.q.ReplaceSpellDescriptions(ctx, id, paragraphs[id]); err != nil {
			return err
		}
	}
	return nil
}

// applyProficiencyRaces links a proficiency to a race, or to a subrace when
// no race has the ref_index.
func applyProficiencyRaces(ctx context.Context, a *applier, t *table) error {
	if err := t.require("proficiencies_index", "ref_index"); err != nil {
		return err
	}
	for _, r := range t.rows {
		profID, err := a.resolve(ctx, t, r, model.ResourceProficiencies, "proficiencies_index")
		if err != nil {
			return err
		}
		ref := t.str(r, "ref_index")

		raceID, ok, err := a.lookup(ctx, model.ResourceRaces, ref)
		if err != nil {
			return err
		}
		if ok {
			if err := a.q.AddProficiencyRace(ctx, profID, raceID); err != nil {
				return err
			}
			continue
		}

		subraceID, ok, err := a.lookup(ctx, model.ResourceSubraces, ref)
		if err != nil {
			return err
		}
		if !ok {
			return t.errorf(r, "ref_index: no race or subrace with index %q", ref)
		}
		if err := a.q.AddProficiencySubrace(ctx, profID, subraceID); err != nil {
			return err
		}
	}
	return nil
}

type addFunc func(q *storage.Queries, ctx context.Context, ownerID, targetID int64) error

// linkStep applies an association file with columns <owner>_index and
// ref_index.
func linkStep(owner, target string, add addFunc) func(context.Context, *applier, *table) error {
	ownerCol := owner + "_index"
	return func(ctx context.Context, a *applier, t *table) error {
		if err := t.require(ownerCol, "ref_index"); err != nil {
			return err
		}
		for _, r := range t.rows {
			ownerID, err := a.resolve(ctx, t, r, owner, ownerCol)
			if err != nil {
				return err
			}
			targetID, err := a.resolve(ctx, t, r, target, "ref_index")
			if err != nil {
				return err
			}
			if err := add(a.q, ctx, ownerID, targetID); err != nil {
				return fmt.Errorf("seed: %s line %d: %w", t.name, r.line, err)
			}
		}
		return nil
	}
}

func addProficiencyClass(q *storage.Queries, ctx context.Context, proficiencyID, classID int64) error {
	return q.AddClassProficiency(ctx, classID, proficiencyID)
}
