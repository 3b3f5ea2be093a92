package represent

import (
	"github.com/ashita-ai/compendium/internal/model"
)

// Summaries renders a list with the given summary function. The result is
// never nil, so empty lists encode as [].
func Summaries[E, S any](l Linker, items []E, fn func(Linker, E) S) []S {
	out := make([]S, len(items))
	for i, item := range items {
		out[i] = fn(l, item)
	}
	return out
}

// Root lists the collection URL of every resource.
func Root(l Linker) map[string]string {
	out := make(map[string]string, len(model.Resources))
	for _, r := range model.Resources {
		out[r] = l.List(r)
	}
	return out
}

func description(v *string) *Description {
	if v == nil {
		return nil
	}
	return &Description{Value: *v}
}

func startingProficiencies(l Linker, refs []model.Ref) []StartingProficiency {
	out := make([]StartingProficiency, len(refs))
	for i, p := range refs {
		out[i] = StartingProficiency{
			ID:              p.ID,
			ProficiencyName: p.Name,
			ProficiencyURL:  l.Detail(model.ResourceProficiencies, p.ID),
		}
	}
	return out
}

// ClassSummary renders a class for lists.
func ClassSummary(l Linker, c model.Class) Summary {
	return Summary{ID: c.ID, Index: c.Index, Name: c.Name, DetailURL: l.Detail(model.ResourceClasses, c.ID)}
}

// ClassDetail renders a class with its proficiencies, subclasses and spells.
func ClassDetail(l Linker, rec model.ClassRecord) Class {
	d := Class{
		ID:                 rec.ID,
		Index:              rec.Index,
		HitDie:             rec.HitDie,
		Name:               rec.Name,
		DetailURL:          l.Detail(model.ResourceClasses, rec.ID),
		ClassProficiencies: make([]ClassProficiency, len(rec.Proficiencies)),
		Subclasses:         make([]ClassSubclass, len(rec.Subclasses)),
		Spells:             make([]ClassSpell, len(rec.Spells)),
	}
	for i, p := range rec.Proficiencies {
		d.ClassProficiencies[i] = ClassProficiency{
			ID:              p.ID,
			ProficiencyName: p.Name,
			DetailURL:       l.Detail(model.ResourceProficiencies, p.ID),
		}
	}
	for i, s := range rec.Subclasses {
		d.Subclasses[i] = ClassSubclass{
			URL:         l.Detail(model.ResourceSubclasses, s.ID),
			ID:          s.ID,
			Name:        s.Name,
			Description: description(s.Description),
		}
	}
	for i, s := range rec.Spells {
		d.Spells[i] = ClassSpell{ID: s.ID, SpellName: s.Name, DetailURL: l.Detail(model.ResourceSpells, s.ID)}
	}
	return d
}

// ProficiencySummary renders a proficiency for lists.
func ProficiencySummary(l Linker, p model.Proficiency) ProficiencyItem {
	return ProficiencyItem{
		ID:        p.ID,
		Index:     p.Index,
		Name:      p.Name,
		Type:      p.Type,
		DetailURL: l.Detail(model.ResourceProficiencies, p.ID),
	}
}

// ProficiencyDetail renders a proficiency with its classes and its race and
// subrace associations. Each association row fills exactly one side.
func ProficiencyDetail(l Linker, rec model.ProficiencyRecord) Proficiency {
	d := Proficiency{
		ID:                 rec.ID,
		Index:              rec.Index,
		Name:               rec.Name,
		Type:               rec.Type,
		DetailURL:          l.Detail(model.ResourceProficiencies, rec.ID),
		ProficiencyClasses: make([]ProficiencyClass, len(rec.Classes)),
		RacesAndSubraces:   make([]ProficiencyRace, 0, len(rec.RaceLinks)),
	}
	for i, c := range rec.Classes {
		d.ProficiencyClasses[i] = ProficiencyClass{
			ID:        c.ID,
			ClassName: c.Name,
			DetailURL: l.Detail(model.ResourceClasses, c.ID),
		}
	}
	for _, link := range rec.RaceLinks {
		var pr ProficiencyRace
		switch {
		case link.RaceID != nil:
			url := l.Detail(model.ResourceRaces, *link.RaceID)
			pr.RaceName, pr.RaceURL = link.RaceName, &url
		case link.SubraceID != nil:
			url := l.Detail(model.ResourceSubraces, *link.SubraceID)
			pr.SubraceName, pr.SubraceURL = link.SubraceName, &url
		default:
			continue
		}
		d.RacesAndSubraces = append(d.RacesAndSubraces, pr)
	}
	return d
}

// RaceSummary renders a race for lists.
func RaceSummary(l Linker, r model.Race) Summary {
	return Summary{ID: r.ID, Index: r.Index, Name: r.Name, DetailURL: l.Detail(model.ResourceRaces, r.ID)}
}

// RaceDetail renders a race with its subraces and starting proficiencies.
func RaceDetail(l Linker, rec model.RaceRecord) Race {
	d := Race{
		ID:                    rec.ID,
		Index:                 rec.Index,
		Name:                  rec.Name,
		Age:                   rec.Age,
		Alignment:             rec.Alignment,
		LanguageDesc:          rec.LanguageDesc,
		Size:                  rec.Size,
		SizeDescription:       rec.SizeDescription,
		Speed:                 rec.Speed,
		DetailURL:             l.Detail(model.ResourceRaces, rec.ID),
		Subraces:              make([]RaceSubrace, len(rec.Subraces)),
		StartingProficiencies: startingProficiencies(l, rec.StartingProficiencies),
	}
	for i, s := range rec.Subraces {
		d.Subraces[i] = RaceSubrace{
			ID:        s.ID,
			Index:     s.Index,
			Name:      s.Name,
			Desc:      s.Desc,
			DetailURL: l.Detail(model.ResourceSubraces, s.ID),
		}
	}
	return d
}

// SubraceSummary renders a subrace for lists.
func SubraceSummary(l Linker, s model.Subrace) Summary {
	return Summary{ID: s.ID, Index: s.Index, Name: s.Name, DetailURL: l.Detail(model.ResourceSubraces, s.ID)}
}

// SubraceDetail renders a subrace with its race and starting proficiencies.
func SubraceDetail(l Linker, rec model.SubraceRecord) Subrace {
	return Subrace{
		ID:        rec.ID,
		Index:     rec.Index,
		Name:      rec.Name,
		Desc:      rec.Desc,
		DetailURL: l.Detail(model.ResourceSubraces, rec.ID),
		Race: ParentRef{
			ID:        rec.RaceID,
			Name:      rec.RaceName,
			DetailURL: l.Detail(model.ResourceRaces, rec.RaceID),
		},
		StartingProficiencies: startingProficiencies(l, rec.StartingProficiencies),
	}
}

// SchoolSummary renders a school for lists.
func SchoolSummary(l Linker, s model.School) Summary {
	return Summary{ID: s.ID, Index: s.Index, Name: s.Name, DetailURL: l.Detail(model.ResourceSchools, s.ID)}
}

// SchoolDetail renders a school with its spells.
func SchoolDetail(l Linker, rec model.SchoolRecord) School {
	d := School{
		ID:        rec.ID,
		Index:     rec.Index,
		Name:      rec.Name,
		DetailURL: l.Detail(model.ResourceSchools, rec.ID),
		Spells:    make([]SchoolSpell, len(rec.Spells)),
	}
	for i, s := range rec.Spells {
		d.Spells[i] = SchoolSpell{ID: s.ID, Name: s.Name, DetailURL: l.Detail(model.ResourceSpells, s.ID)}
	}
	return d
}

// SpellSummary renders a spell for lists.
func SpellSummary(l Linker, s model.Spell) Summary {
	return Summary{ID: s.ID, Index: s.Index, Name: s.Name, DetailURL: l.Detail(model.ResourceSpells, s.ID)}
}

// SpellDetail renders a spell with its school, descriptions, classes and
// subclasses.
func SpellDetail(l Linker, rec model.SpellRecord) Spell {
	d := Spell{
		ID:            rec.ID,
		Index:         rec.Index,
		Name:          rec.Name,
		Level:         rec.Level,
		AttackType:    rec.AttackType,
		CastingTime:   rec.CastingTime,
		Concentration: rec.Concentration,
		Duration:      rec.Duration,
		Material:      rec.Material,
		Range:         rec.Range,
		Ritual:        rec.Ritual,
		School:        rec.SchoolID,
		SchoolName:    rec.SchoolName,
		DetailURL:     l.Detail(model.ResourceSpells, rec.ID),
		Descriptions:  append([]string{}, rec.Descriptions...),
		Classes:       make([]SpellClass, len(rec.Classes)),
		Subclasses:    make([]SpellSubclass, len(rec.Subclasses)),
	}
	for i, c := range rec.Classes {
		d.Classes[i] = SpellClass{ID: c.ID, ClassName: c.Name, ClassURL: l.Detail(model.ResourceClasses, c.ID)}
	}
	for i, s := range rec.Subclasses {
		d.Subclasses[i] = SpellSubclass{
			ID:           s.ID,
			SubclassName: s.Name,
			SubclassURL:  l.Detail(model.ResourceSubclasses, s.ID),
		}
	}
	return d
}

// SubclassSummary renders a subclass for lists.
func SubclassSummary(l Linker, s model.Subclass) Summary {
	return Summary{ID: s.ID, Index: s.Index, Name: s.Name, DetailURL: l.Detail(model.ResourceSubclasses, s.ID)}
}

// SubclassDetail renders a subclass with its description and owning class.
func SubclassDetail(l Linker, rec model.SubclassRecord) Subclass {
	return Subclass{
		ID:             rec.ID,
		Index:          rec.Index,
		Name:           rec.Name,
		SubclassFlavor: rec.SubclassFlavor,
		DetailURL:      l.Detail(model.ResourceSubclasses, rec.ID),
		Description:    description(rec.Description),
		ClassInfo: ParentRef{
			ID:        rec.ClassID,
			Name:      rec.ClassName,
			DetailURL: l.Detail(model.ResourceClasses, rec.ClassID),
		},
	}
}
