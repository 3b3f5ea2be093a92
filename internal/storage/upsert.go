package storage

import (
	"context"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
)

// Upsert* write an entity keyed by its natural key: a new index inserts, an
// existing one has its other columns overwritten. They return the row id and
// back the CSV loader, which must be safe to run repeatedly.

func (q *Queries) upsert(ctx context.Context, what, query string, args ...any) (int64, error) {
	var id int64
	if err := q.q.queryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("storage: upsert %s: %w", what, translate(err))
	}
	return id, nil
}

// UpsertClass inserts or updates a class by index.
func (q *Queries) UpsertClass(ctx context.Context, c model.Class) (int64, error) {
	return q.upsert(ctx, "class "+c.Index,
		`INSERT INTO classes ("index", name, hit_die) VALUES ($1, $2, $3)
		 ON CONFLICT ("index") DO UPDATE SET name = excluded.name, hit_die = excluded.hit_die
		 RETURNING id`,
		c.Index, c.Name, c.HitDie)
}

// UpsertProficiency inserts or updates a proficiency by index.
func (q *Queries) UpsertProficiency(ctx context.Context, p model.Proficiency) (int64, error) {
	return q.upsert(ctx, "proficiency "+p.Index,
		`INSERT INTO proficiencies ("index", name, type) VALUES ($1, $2, $3)
		 ON CONFLICT ("index") DO UPDATE SET name = excluded.name, type = excluded.type
		 RETURNING id`,
		p.Index, p.Name, p.Type)
}

// UpsertRace inserts or updates a race by index.
func (q *Queries) UpsertRace(ctx context.Context, r model.Race) (int64, error) {
	return q.upsert(ctx, "race "+r.Index,
		`INSERT INTO races ("index", name, age, alignment, language_desc, size, size_description, speed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT ("index") DO UPDATE SET
		     name = excluded.name, age = excluded.age, alignment = excluded.alignment,
		     language_desc = excluded.language_desc, size = excluded.size,
		     size_description = excluded.size_description, speed = excluded.speed
		 RETURNING id`,
		r.Index, r.Name, r.Age, r.Alignment, r.LanguageDesc, r.Size, r.SizeDescription, r.Speed)
}

// UpsertSubrace inserts or updates a subrace by index.
func (q *Queries) UpsertSubrace(ctx context.Context, s model.Subrace) (int64, error) {
	return q.upsert(ctx, "subrace "+s.Index,
		`INSERT INTO subraces ("index", name, "desc", race_id) VALUES ($1, $2, $3, $4)
		 ON CONFLICT ("index") DO UPDATE SET name = excluded.name, "desc" = excluded."desc",
		     race_id = excluded.race_id
		 RETURNING id`,
		s.Index, s.Name, s.Desc, s.RaceID)
}

// UpsertSchool inserts or updates a school by index.
func (q *Queries) UpsertSchool(ctx context.Context, s model.School) (int64, error) {
	return q.upsert(ctx, "school "+s.Index,
		`INSERT INTO schools ("index", name) VALUES ($1, $2)
		 ON CONFLICT ("index") DO UPDATE SET name = excluded.name
		 RETURNING id`,
		s.Index, s.Name)
}

// UpsertSpell inserts or updates a spell by index.
func (q *Queries) UpsertSpell(ctx context.Context, s model.Spell) (int64, error) {
	return q.upsert(ctx, "spell "+s.Index,
		`INSERT INTO spells ("index", name, level, attack_type, casting_time, concentration,
		                     duration, material, "range", ritual, school_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT ("index") DO UPDATE SET
		     name = excluded.name, level = excluded.level, attack_type = excluded.attack_type,
		     casting_time = excluded.casting_time, concentration = excluded.concentration,
		     duration = excluded.duration, material = excluded.material,
		     "range" = excluded."range", ritual = excluded.ritual, school_id = excluded.school_id
		 RETURNING id`,
		s.Index, s.Name, s.Level, s.AttackType, s.CastingTime, s.Concentration,
		s.Duration, s.Material, s.Range, s.Ritual, s.SchoolID)
}

// UpsertSubclass inserts or updates a subclass by index.
func (q *Queries) UpsertSubclass(ctx context.Context, s model.Subclass) (int64, error) {
	return q.upsert(ctx, "subclass "+s.Index,
		`INSERT INTO subclasses ("index", name, subclass_flavor, class_id) VALUES ($1, $2, $3, $4)
		 ON CONFLICT ("index") DO UPDATE SET name = excluded.name,
		     subclass_flavor = excluded.subclass_flavor, class_id = excluded.class_id
		 RETURNING id`,
		s.Index, s.Name, s.SubclassFlavor, s.ClassID)
}

// CountRows returns the number of rows in an entity table.
func (q *Queries) CountRows(ctx context.Context, table string) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	var n int64
	if err := q.q.queryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count %s: %w", table, err)
	}
	return n, nil
}
