package storage

import (
	"context"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
)

// link describes one side of a junction table: rows are owned by ownerCol
// and point at targetCol.
type link struct {
	table     string
	ownerCol  string
	targetCol string
}

var (
	classProficiencyLink   = link{"class_proficiencies", "class_id", "proficiency_id"}
	proficiencyClassLink   = link{"class_proficiencies", "proficiency_id", "class_id"}
	raceStartingLink       = link{"race_starting_proficiencies", "race_id", "proficiency_id"}
	subraceStartingLink    = link{"subrace_starting_proficiencies", "subrace_id", "proficiency_id"}
	spellClassLink         = link{"spell_classes", "spell_id", "class_id"}
	spellSubclassLink      = link{"spell_subclasses", "spell_id", "subclass_id"}
	proficiencyRaceLink    = link{"proficiency_races", "proficiency_id", "race_id"}
	proficiencySubraceLink = link{"proficiency_races", "proficiency_id", "subrace_id"}
)

// replace deletes every row the owner has on this side of the junction and
// inserts one row per target, in order. Callers run it inside InTx so readers
// never observe the emptied set.
func (l link) replace(ctx context.Context, q *Queries, ownerID int64, targetIDs []int64) error {
	// proficiency_races holds both sides in one table; only clear ours.
	if _, err := q.q.exec(ctx,
		`DELETE FROM `+l.table+` WHERE `+l.ownerCol+` = $1 AND `+l.targetCol+` IS NOT NULL`, ownerID,
	); err != nil {
		return fmt.Errorf("storage: clear %s.%s for %d: %w", l.table, l.targetCol, ownerID, translate(err))
	}
	for _, id := range targetIDs {
		if err := l.add(ctx, q, ownerID, id); err != nil {
			return err
		}
	}
	return nil
}

// add inserts a single row, ignoring one that already exists.
func (l link) add(ctx context.Context, q *Queries, ownerID, targetID int64) error {
	if _, err := q.q.exec(ctx,
		`INSERT INTO `+l.table+` (`+l.ownerCol+`, `+l.targetCol+`) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		ownerID, targetID,
	); err != nil {
		return fmt.Errorf("storage: link %s %d -> %d: %w", l.table, ownerID, targetID, translate(err))
	}
	return nil
}

// ReplaceClassProficiencies sets the proficiencies of a class.
func (q *Queries) ReplaceClassProficiencies(ctx context.Context, classID int64, proficiencyIDs []int64) error {
	return classProficiencyLink.replace(ctx, q, classID, proficiencyIDs)
}

// ReplaceProficiencyClasses sets the classes of a proficiency. It writes the
// same class_proficiencies rows as ReplaceClassProficiencies, seen from the
// other side.
func (q *Queries) ReplaceProficiencyClasses(ctx context.Context, proficiencyID int64, classIDs []int64) error {
	return proficiencyClassLink.replace(ctx, q, proficiencyID, classIDs)
}

// ReplaceProficiencyRaces sets the race-side proficiency_races rows of a
// proficiency. Subrace-side rows are left alone.
func (q *Queries) ReplaceProficiencyRaces(ctx context.Context, proficiencyID int64, raceIDs []int64) error {
	return proficiencyRaceLink.replace(ctx, q, proficiencyID, raceIDs)
}

// ReplaceProficiencySubraces sets the subrace-side proficiency_races rows of
// a proficiency. Race-side rows are left alone.
func (q *Queries) ReplaceProficiencySubraces(ctx context.Context, proficiencyID int64, subraceIDs []int64) error {
	return proficiencySubraceLink.replace(ctx, q, proficiencyID, subraceIDs)
}

// ReplaceRaceStartingProficiencies sets the starting proficiencies of a race.
func (q *Queries) ReplaceRaceStartingProficiencies(ctx context.Context, raceID int64, proficiencyIDs []int64) error {
	return raceStartingLink.replace(ctx, q, raceID, proficiencyIDs)
}

// ReplaceSubraceStartingProficiencies sets the starting proficiencies of a subrace.
func (q *Queries) ReplaceSubraceStartingProficiencies(ctx context.Context, subraceID int64, proficiencyIDs []int64) error {
	return subraceStartingLink.replace(ctx, q, subraceID, proficiencyIDs)
}

// ReplaceSpellClasses sets the classes that can cast a spell.
func (q *Queries) ReplaceSpellClasses(ctx context.Context, spellID int64, classIDs []int64) error {
	return spellClassLink.replace(ctx, q, spellID, classIDs)
}

// ReplaceSpellSubclasses sets the subclasses that grant a spell.
func (q *Queries) ReplaceSpellSubclasses(ctx context.Context, spellID int64, subclassIDs []int64) error {
	return spellSubclassLink.replace(ctx, q, spellID, subclassIDs)
}

// AddClassProficiency links a class and a proficiency if not already linked.
func (q *Queries) AddClassProficiency(ctx context.Context, classID, proficiencyID int64) error {
	return classProficiencyLink.add(ctx, q, classID, proficiencyID)
}

// AddProficiencyRace links a proficiency to a race.
func (q *Queries) AddProficiencyRace(ctx context.Context, proficiencyID, raceID int64) error {
	return proficiencyRaceLink.add(ctx, q, proficiencyID, raceID)
}

// AddProficiencySubrace links a proficiency to a subrace.
func (q *Queries) AddProficiencySubrace(ctx context.Context, proficiencyID, subraceID int64) error {
	return proficiencySubraceLink.add(ctx, q, proficiencyID, subraceID)
}

// AddRaceStartingProficiency grants a starting proficiency to a race.
func (q *Queries) AddRaceStartingProficiency(ctx context.Context, raceID, proficiencyID int64) error {
	return raceStartingLink.add(ctx, q, raceID, proficiencyID)
}

// AddSubraceStartingProficiency grants a starting proficiency to a subrace.
func (q *Queries) AddSubraceStartingProficiency(ctx context.Context, subraceID, proficiencyID int64) error {
	return subraceStartingLink.add(ctx, q, subraceID, proficiencyID)
}

// AddSpellClass links a spell to a class.
func (q *Queries) AddSpellClass(ctx context.Context, spellID, classID int64) error {
	return spellClassLink.add(ctx, q, spellID, classID)
}

// AddSpellSubclass links a spell to a subclass.
func (q *Queries) AddSpellSubclass(ctx context.Context, spellID, subclassID int64) error {
	return spellSubclassLink.add(ctx, q, spellID, subclassID)
}

func (q *Queries) listRefs(ctx context.Context, what, query string, id int64) ([]model.Ref, error) {
	refs, err := collect(ctx, q.q, scanRef, query, id)
	if err != nil {
		return nil, fmt.Errorf("storage: list %s of %d: %w", what, id, err)
	}
	return refs, nil
}

// ListClassProficiencies returns the proficiencies linked to a class in link order.
func (q *Queries) ListClassProficiencies(ctx context.Context, classID int64) ([]model.Ref, error) {
	return q.listRefs(ctx, "class proficiencies", `
		SELECT p.id, p.name
		FROM class_proficiencies cp
		JOIN proficiencies p ON p.id = cp.proficiency_id
		WHERE cp.class_id = $1
		ORDER BY cp.id`, classID)
}

// ListProficiencyClasses returns the classes linked to a proficiency in link order.
func (q *Queries) ListProficiencyClasses(ctx context.Context, proficiencyID int64) ([]model.Ref, error) {
	return q.listRefs(ctx, "proficiency classes", `
		SELECT c.id, c.name
		FROM class_proficiencies cp
		JOIN classes c ON c.id = cp.class_id
		WHERE cp.proficiency_id = $1
		ORDER BY cp.id`, proficiencyID)
}

// ListRaceStartingProficiencies returns the starting proficiencies of a race.
func (q *Queries) ListRaceStartingProficiencies(ctx context.Context, raceID int64) ([]model.Ref, error) {
	return q.listRefs(ctx, "race starting proficiencies", `
		SELECT p.id, p.name
		FROM race_starting_proficiencies rs
		JOIN proficiencies p ON p.id = rs.proficiency_id
		WHERE rs.race_id = $1
		ORDER BY rs.id`, raceID)
}

// ListSubraceStartingProficiencies returns the starting proficiencies of a subrace.
func (q *Queries) ListSubraceStartingProficiencies(ctx context.Context, subraceID int64) ([]model.Ref, error) {
	return q.listRefs(ctx, "subrace starting proficiencies", `
		SELECT p.id, p.name
		FROM subrace_starting_proficiencies ss
		JOIN proficiencies p ON p.id = ss.proficiency_id
		WHERE ss.subrace_id = $1
		ORDER BY ss.id`, subraceID)
}

// ListSpellClasses returns the classes linked to a spell.
func (q *Queries) ListSpellClasses(ctx context.Context, spellID int64) ([]model.Ref, error) {
	return q.listRefs(ctx, "spell classes", `
		SELECT c.id, c.name
		FROM spell_classes sc
		JOIN classes c ON c.id = sc.class_id
		WHERE sc.spell_id = $1
		ORDER BY sc.id`, spellID)
}

// ListSpellSubclasses returns the subclasses linked to a spell.
func (q *Queries) ListSpellSubclasses(ctx context.Context, spellID int64) ([]model.Ref, error) {
	return q.listRefs(ctx, "spell subclasses", `
		SELECT s.id, s.name
		FROM spell_subclasses ss
		JOIN subclasses s ON s.id = ss.subclass_id
		WHERE ss.spell_id = $1
		ORDER BY ss.id`, spellID)
}

// ListClassSpells returns the spells linked to a class.
func (q *Queries) ListClassSpells(ctx context.Context, classID int64) ([]model.Ref, error) {
	return q.listRefs(ctx, "class spells", `
		SELECT s.id, s.name
		FROM spell_classes sc
		JOIN spells s ON s.id = sc.spell_id
		WHERE sc.class_id = $1
		ORDER BY sc.id`, classID)
}

// ListProficiencyRaces returns the proficiency_races rows of a proficiency
// with race and subrace names resolved. Each row has exactly one side set.
func (q *Queries) ListProficiencyRaces(ctx context.Context, proficiencyID int64) ([]model.RaceLink, error) {
	links, err := collect(ctx, q.q, func(r rowScanner) (model.RaceLink, error) {
		var l model.RaceLink
		err := r.Scan(&l.RaceID, &l.RaceName, &l.SubraceID, &l.SubraceName)
		return l, err
	}, `SELECT pr.race_id, r.name, pr.subrace_id, s.name
		FROM proficiency_races pr
		LEFT JOIN races r ON r.id = pr.race_id
		LEFT JOIN subraces s ON s.id = pr.subrace_id
		WHERE pr.proficiency_id = $1
		ORDER BY pr.id`, proficiencyID)
	if err != nil {
		return nil, fmt.Errorf("storage: list proficiency races of %d: %w", proficiencyID, err)
	}
	return links, nil
}
