package model

// Write payloads. Every field is optional at the type level so the same
// struct serves POST and PATCH: a nil pointer means the key was absent. For
// relational lists, nil means "leave associations alone" and an empty slice
// means "remove them all". Keys that carried an explicit JSON null are
// recorded in NullKeys so fields that cannot be null can reject them.

// NullKeys records the top-level payload keys that were sent as null.
type NullKeys struct {
	keys map[string]bool
}

// MarkNull records that key was present with a null value.
func (n *NullKeys) MarkNull(key string) {
	if n.keys == nil {
		n.keys = make(map[string]bool)
	}
	n.keys[key] = true
}

// IsNull reports whether key was sent as null.
func (n NullKeys) IsNull(key string) bool {
	return n.keys[key]
}

// ClassInput is the body of POST/PATCH /classes/.
type ClassInput struct {
	NullKeys `json:"-"`

	Index         *string  `json:"index"`
	Name          *string  `json:"name"`
	HitDie        *int     `json:"hit_die"`
	Proficiencies *[]int64 `json:"proficiencies"`
}

// ProficiencyInput is the body of POST/PATCH /proficiencies/.
// Races and Subraces together define the proficiency_races rows.
type ProficiencyInput struct {
	NullKeys `json:"-"`

	Index    *string  `json:"index"`
	Name     *string  `json:"name"`
	Type     *string  `json:"type"`
	Classes  *[]int64 `json:"classes"`
	Races    *[]int64 `json:"races"`
	Subraces *[]int64 `json:"subraces"`
}

// RaceInput is the body of POST/PATCH /races/.
type RaceInput struct {
	NullKeys `json:"-"`

	Index                 *string  `json:"index"`
	Name                  *string  `json:"name"`
	Age                   *string  `json:"age"`
	Alignment             *string  `json:"alignment"`
	LanguageDesc          *string  `json:"language_desc"`
	Size                  *string  `json:"size"`
	SizeDescription       *string  `json:"size_description"`
	Speed                 *int     `json:"speed"`
	StartingProficiencies *[]int64 `json:"starting_proficiencies"`
}

// SubraceInput is the body of POST/PATCH /subraces/.
type SubraceInput struct {
	NullKeys `json:"-"`

	Index                 *string  `json:"index"`
	Name                  *string  `json:"name"`
	Desc                  *string  `json:"desc"`
	Race                  *int64   `json:"race"`
	StartingProficiencies *[]int64 `json:"starting_proficiencies"`
}

// SchoolInput is the body of POST/PATCH /schools/.
type SchoolInput struct {
	NullKeys `json:"-"`

	Index *string `json:"index"`
	Name  *string `json:"name"`
}

// SpellInput is the body of POST/PATCH /spells/.
type SpellInput struct {
	NullKeys `json:"-"`

	Index         *string          `json:"index"`
	Name          *string          `json:"name"`
	Level         *int             `json:"level"`
	AttackType    Nullable[string] `json:"attack_type"`
	CastingTime   *string          `json:"casting_time"`
	Concentration *bool            `json:"concentration"`
	Duration      *string          `json:"duration"`
	Material      Nullable[string] `json:"material"`
	Range         *string          `json:"range"`
	Ritual        *bool            `json:"ritual"`
	School        *int64           `json:"school"`
	Descriptions  *[]string        `json:"descriptions"`
	Classes       *[]int64         `json:"classes"`
	Subclasses    *[]int64         `json:"subclasses"`
}

// SubclassInput is the body of POST/PATCH /subclasses/.
// Description is the 1:1 subclass description; null removes it.
type SubclassInput struct {
	NullKeys `json:"-"`

	Index          *string          `json:"index"`
	Name           *string          `json:"name"`
	SubclassFlavor *string          `json:"subclass_flavor"`
	Class          *int64           `json:"class"`
	Description    Nullable[string] `json:"description"`
}
