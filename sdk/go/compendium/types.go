package compendium

import "encoding/json"

// Summary is one item of a collection listing.
type Summary struct {
	ID        int64  `json:"id"`
	Index     string `json:"index"`
	Name      string `json:"name"`
	DetailURL string `json:"detail_url"`
}

// ProficiencySummary is a proficiency as listed; it also carries the type.
type ProficiencySummary struct {
	Summary
	Type string `json:"type"`
}

// Link points at a related record.
type Link struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	DetailURL string `json:"detail_url"`
}

// Description wraps a single block of text.
type Description struct {
	Value string `json:"value"`
}

// Class is the detail document of a class.
type Class struct {
	ID                 int64  `json:"id"`
	Index              string `json:"index"`
	HitDie             int    `json:"hit_die"`
	Name               string `json:"name"`
	DetailURL          string `json:"detail_url"`
	ClassProficiencies []struct {
		ID              int64  `json:"id"`
		ProficiencyName string `json:"proficiency_name"`
		DetailURL       string `json:"detail_url"`
	} `json:"class_proficiencies"`
	Subclasses []struct {
		URL         string       `json:"url"`
		ID          int64        `json:"id"`
		Name        string       `json:"name"`
		Description *Description `json:"description"`
	} `json:"subclasses"`
	Spells []struct {
		ID        int64  `json:"id"`
		SpellName string `json:"spell_name"`
		DetailURL string `json:"detail_url"`
	} `json:"spells"`
}

// Proficiency is the detail document of a proficiency.
type Proficiency struct {
	ID                 int64  `json:"id"`
	Index              string `json:"index"`
	Name               string `json:"name"`
	Type               string `json:"type"`
	DetailURL          string `json:"detail_url"`
	ProficiencyClasses []struct {
		ID        int64  `json:"id"`
		ClassName string `json:"class_name"`
		DetailURL string `json:"detail_url"`
	} `json:"proficiency_classes"`
	// Exactly one of the race and subrace pairs is set per entry.
	RacesAndSubraces []struct {
		RaceName    *string `json:"race_name"`
		RaceURL     *string `json:"race_url"`
		SubraceName *string `json:"subrace_name"`
		SubraceURL  *string `json:"subrace_url"`
	} `json:"races_and_subraces"`
}

// StartingProficiency is a proficiency granted by a race or subrace.
type StartingProficiency struct {
	ID              int64  `json:"id"`
	ProficiencyName string `json:"proficiency_name"`
	ProficiencyURL  string `json:"proficiency_url"`
}

// Race is the detail document of a race.
type Race struct {
	ID              int64  `json:"id"`
	Index           string `json:"index"`
	Name            string `json:"name"`
	Age             string `json:"age"`
	Alignment       string `json:"alignment"`
	LanguageDesc    string `json:"language_desc"`
	Size            string `json:"size"`
	SizeDescription string `json:"size_description"`
	Speed           int    `json:"speed"`
	DetailURL       string `json:"detail_url"`
	Subraces        []struct {
		ID        int64  `json:"id"`
		Index     string `json:"index"`
		Name      string `json:"name"`
		Desc      string `json:"desc"`
		DetailURL string `json:"detail_url"`
	} `json:"subraces"`
	StartingProficiencies []StartingProficiency `json:"starting_proficiencies"`
}

// Subrace is the detail document of a subrace.
type Subrace struct {
	ID                    int64                 `json:"id"`
	Index                 string                `json:"index"`
	Name                  string                `json:"name"`
	Desc                  string                `json:"desc"`
	DetailURL             string                `json:"detail_url"`
	Race                  Link                  `json:"race"`
	StartingProficiencies []StartingProficiency `json:"starting_proficiencies"`
}

// School is the detail document of a school of magic.
type School struct {
	ID        int64  `json:"id"`
	Index     string `json:"index"`
	Name      string `json:"name"`
	DetailURL string `json:"detail_url"`
	Spells    []Link `json:"spells"`
}

// Spell is the detail document of a spell.
type Spell struct {
	ID            int64    `json:"id"`
	Index         string   `json:"index"`
	Name          string   `json:"name"`
	Level         int      `json:"level"`
	AttackType    *string  `json:"attack_type"`
	CastingTime   string   `json:"casting_time"`
	Concentration bool     `json:"concentration"`
	Duration      string   `json:"duration"`
	Material      *string  `json:"material"`
	Range         string   `json:"range"`
	Ritual        bool     `json:"ritual"`
	School        int64    `json:"school"`
	SchoolName    string   `json:"school_name"`
	DetailURL     string   `json:"detail_url"`
	Descriptions  []string `json:"descriptions"`
	Classes       []struct {
		ID        int64  `json:"id"`
		ClassName string `json:"class_name"`
		ClassURL  string `json:"class_url"`
	} `json:"classes"`
	Subclasses []struct {
		ID           int64  `json:"id"`
		SubclassName string `json:"subclass_name"`
		SubclassURL  string `json:"subclass_url"`
	} `json:"subclasses"`
}

// Subclass is the detail document of a subclass.
type Subclass struct {
	ID             int64        `json:"id"`
	Index          string       `json:"index"`
	Name           string       `json:"name"`
	SubclassFlavor string       `json:"subclass_flavor"`
	DetailURL      string       `json:"detail_url"`
	Description    *Description `json:"description"`
	ClassInfo      Link         `json:"class_info"`
}

// ClassInput is the write body of a class. Input types serve both Create and
// Update: a nil field is left out of the request, so an Update only touches
// the fields that are set. A non-nil relationship list replaces the stored set.
type ClassInput struct {
	Index         *string  `json:"index,omitempty"`
	Name          *string  `json:"name,omitempty"`
	HitDie        *int     `json:"hit_die,omitempty"`
	Proficiencies *[]int64 `json:"proficiencies,omitempty"`
}

type ProficiencyInput struct {
	Index    *string  `json:"index,omitempty"`
	Name     *string  `json:"name,omitempty"`
	Type     *string  `json:"type,omitempty"`
	Classes  *[]int64 `json:"classes,omitempty"`
	Races    *[]int64 `json:"races,omitempty"`
	Subraces *[]int64 `json:"subraces,omitempty"`
}

type RaceInput struct {
	Index                 *string  `json:"index,omitempty"`
	Name                  *string  `json:"name,omitempty"`
	Age                   *string  `json:"age,omitempty"`
	Alignment             *string  `json:"alignment,omitempty"`
	LanguageDesc          *string  `json:"language_desc,omitempty"`
	Size                  *string  `json:"size,omitempty"`
	SizeDescription       *string  `json:"size_description,omitempty"`
	Speed                 *int     `json:"speed,omitempty"`
	StartingProficiencies *[]int64 `json:"starting_proficiencies,omitempty"`
}

type SubraceInput struct {
	Index                 *string  `json:"index,omitempty"`
	Name                  *string  `json:"name,omitempty"`
	Desc                  *string  `json:"desc,omitempty"`
	Race                  *int64   `json:"race,omitempty"`
	StartingProficiencies *[]int64 `json:"starting_proficiencies,omitempty"`
}

type SchoolInput struct {
	Index *string `json:"index,omitempty"`
	Name  *string `json:"name,omitempty"`
}

type SpellInput struct {
	Index         *string          `json:"index,omitempty"`
	Name          *string          `json:"name,omitempty"`
	Level         *int             `json:"level,omitempty"`
	AttackType    Nullable[string] `json:"attack_type,omitzero"`
	CastingTime   *string          `json:"casting_time,omitempty"`
	Concentration *bool            `json:"concentration,omitempty"`
	Duration      *string          `json:"duration,omitempty"`
	Material      Nullable[string] `json:"material,omitzero"`
	Range         *string          `json:"range,omitempty"`
	Ritual        *bool            `json:"ritual,omitempty"`
	School        *int64           `json:"school,omitempty"`
	Descriptions  *[]string        `json:"descriptions,omitempty"`
	Classes       *[]int64         `json:"classes,omitempty"`
	Subclasses    *[]int64         `json:"subclasses,omitempty"`
}

type SubclassInput struct {
	Index          *string          `json:"index,omitempty"`
	Name           *string          `json:"name,omitempty"`
	SubclassFlavor *string          `json:"subclass_flavor,omitempty"`
	Class          *int64           `json:"class,omitempty"`
	Description    Nullable[string] `json:"description,omitzero"`
}

// Nullable is a field that can be left out, set to a value, or set to null.
// The zero value is left out.
type Nullable[T any] struct {
	set   bool
	value *T
}

// Value returns a Nullable set to v.
func Value[T any](v T) Nullable[T] { return Nullable[T]{set: true, value: &v} }

// Null returns a Nullable set to null.
func Null[T any]() Nullable[T] { return Nullable[T]{set: true} }

// IsZero reports whether n is left out of the request.
func (n Nullable[T]) IsZero() bool { return !n.set }

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.value)
}

// Ptr returns a pointer to v, for filling input fields.
func Ptr[T any](v T) *T { return &v }

// Health is the body of GET /health.
type Health struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Dialect  string `json:"dialect"`
	Uptime   int64  `json:"uptime_seconds"`
}

type apiErrorEnvelope struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}
