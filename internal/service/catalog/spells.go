package catalog

import (
	"context"
	"fmt"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/storage"
)

// ListSpells returns every spell in creation order.
func (s *Service) ListSpells(ctx context.Context) ([]model.Spell, error) {
	return read(ctx, s, "list spells", func(q *storage.Queries) ([]model.Spell, error) {
		return q.ListSpells(ctx)
	})
}

// GetSpell returns a spell with its school, descriptions and links.
func (s *Service) GetSpell(ctx context.Context, id int64) (model.SpellRecord, error) {
	return read(ctx, s, fmt.Sprintf("get spell %d", id), func(q *storage.Queries) (model.SpellRecord, error) {
		return q.GetSpellRecord(ctx, id)
	})
}

type spellLinks struct {
	descriptions []string
	classes      []int64
	subclasses   []int64
}

func checkSpell(c *checker, in model.SpellInput, sp *model.Spell) spellLinks {
	c.index(model.ResourceSpells, in.Index, &sp.Index, sp.ID)
	c.text("name", in.Name, &sp.Name, maxNameLen)
	c.integer("level", in.Level, &sp.Level, 0)
	c.nullableText("attack_type", in.AttackType, &sp.AttackType, maxShortLen)
	c.text("casting_time", in.CastingTime, &sp.CastingTime, maxLongLen)
	c.boolean("concentration", in.Concentration, &sp.Concentration)
	c.text("duration", in.Duration, &sp.Duration, maxLongLen)
	c.nullableText("material", in.Material, &sp.Material, 0)
	c.text("range", in.Range, &sp.Range, maxLongLen)
	c.boolean("ritual", in.Ritual, &sp.Ritual)
	c.ref("school", model.ResourceSchools, in.School, &sp.SchoolID)
	return spellLinks{
		descriptions: c.texts("descriptions", in.Descriptions),
		classes:      c.refs("classes", model.ResourceClasses, in.Classes),
		subclasses:   c.refs("subclasses", model.ResourceSubclasses, in.Subclasses),
	}
}

func (l spellLinks) apply(ctx context.Context, q *storage.Queries, id int64) error {
	if l.descriptions != nil {
		if err := q.ReplaceSpellDescriptions(ctx, id, l.descriptions); err != nil {
			return err
		}
	}
	if l.classes != nil {
		if err := q.ReplaceSpellClasses(ctx, id, l.classes); err != nil {
			return err
		}
	}
	if l.subclasses != nil {
		if err := q.ReplaceSpellSubclasses(ctx, id, l.subclasses); err != nil {
			return err
		}
	}
	return nil
}

// CreateSpell validates in and stores a new spell with its descriptions and links.
func (s *Service) CreateSpell(ctx context.Context, in model.SpellInput) (model.SpellRecord, error) {
	var rec model.SpellRecord
	err := s.write(ctx, model.ResourceSpells, opCreate, func(q *storage.Queries) error {
		c := newChecker(ctx, q, true, in.NullKeys)
		var sp model.Spell
		links := checkSpell(c, in, &sp)
		if err := c.done(); err != nil {
			return err
		}

		created, err := q.CreateSpell(ctx, sp)
		if err != nil {
			return err
		}
		if err := links.apply(ctx, q, created.ID); err != nil {
			return err
		}
		rec, err = q.GetSpellRecord(ctx, created.ID)
		return err
	})
	if err != nil {
		return model.SpellRecord{}, fmt.Errorf("catalog: create spell: %w", err)
	}
	return rec, nil
}

// UpdateSpell applies the fields present in in to the spell with id.
// attack_type and material may be cleared with an explicit null.
func (s *Service) UpdateSpell(ctx context.Context, id int64, in model.SpellInput) (model.SpellRecord, error) {
	var rec model.SpellRecord
	err := s.write(ctx, model.ResourceSpells, opUpdate, func(q *storage.Queries) error {
		sp, err := q.GetSpell(ctx, id)
		if err != nil {
			return err
		}
		c := newChecker(ctx, q, false, in.NullKeys)
		links := checkSpell(c, in, &sp)
		if err := c.done(); err != nil {
			return err
		}

		if _, err := q.UpdateSpell(ctx, sp); err != nil {
			return err
		}
		if err := links.apply(ctx, q, id); err != nil {
			return err
		}
		rec, err = q.GetSpellRecord(ctx, id)
		return err
	})
	if err != nil {
		return model.SpellRecord{}, fmt.Errorf("catalog: update spell %d: %w", id, err)
	}
	return rec, nil
}

// DeleteSpell removes a spell, its descriptions and its links.
func (s *Service) DeleteSpell(ctx context.Context, id int64) error {
	return s.remove(ctx, model.ResourceSpells, id, func(ctx context.Context, q *storage.Queries) error {
		return q.DeleteSpell(ctx, id)
	})
}
