package represent

// Summary is the list shape shared by every resource except proficiencies.
type Summary struct {
	ID        int64  `json:"id"`
	Index     string `json:"index"`
	Name      string `json:"name"`
	DetailURL string `json:"detail_url"`
}

// ProficiencyItem is the list shape of a proficiency; it also carries the
// proficiency type.
type ProficiencyItem struct {
	ID        int64  `json:"id"`
	Index     string `json:"index"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	DetailURL string `json:"detail_url"`
}

// ParentRef points at the entity that owns the one being rendered.
type ParentRef struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	DetailURL string `json:"detail_url"`
}

// Description wraps a single free-text description.
type Description struct {
	Value string `json:"value"`
}

// Class is the detail shape of a class.
type Class struct {
	ID                 int64              `json:"id"`
	Index              string             `json:"index"`
	HitDie             int                `json:"hit_die"`
	Name               string             `json:"name"`
	DetailURL          string             `json:"detail_url"`
	ClassProficiencies []ClassProficiency `json:"class_proficiencies"`
	Subclasses         []ClassSubclass    `json:"subclasses"`
	Spells             []ClassSpell       `json:"spells"`
}

// ClassProficiency is a proficiency as listed under a class.
type ClassProficiency struct {
	ID              int64  `json:"id"`
	ProficiencyName string `json:"proficiency_name"`
	DetailURL       string `json:"detail_url"`
}

// ClassSubclass is a subclass as listed under its class.
type ClassSubclass struct {
	URL         string       `json:"url"`
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description *Description `json:"description"`
}

// ClassSpell is a spell as listed under a class.
type ClassSpell struct {
	ID        int64  `json:"id"`
	SpellName string `json:"spell_name"`
	DetailURL string `json:"detail_url"`
}

// Proficiency is the detail shape of a proficiency.
type Proficiency struct {
	ID                 int64              `json:"id"`
	Index              string             `json:"index"`
	Name               string             `json:"name"`
	Type               string             `json:"type"`
	DetailURL          string             `json:"detail_url"`
	ProficiencyClasses []ProficiencyClass `json:"proficiency_classes"`
	RacesAndSubraces   []ProficiencyRace  `json:"races_and_subraces"`
}

// ProficiencyClass is a class as listed under a proficiency.
type ProficiencyClass struct {
	ID        int64  `json:"id"`
	ClassName string `json:"class_name"`
	DetailURL string `json:"detail_url"`
}

// ProficiencyRace is one race or subrace association. The fields of the side
// that is not set are null.
type ProficiencyRace struct {
	RaceName    *string `json:"race_name"`
	RaceURL     *string `json:"race_url"`
	SubraceName *string `json:"subrace_name"`
	SubraceURL  *string `json:"subrace_url"`
}

// Race is the detail shape of a race.
type Race struct {
	ID                    int64                 `json:"id"`
	Index                 string                `json:"index"`
	Name                  string                `json:"name"`
	Age                   string                `json:"age"`
	Alignment             string                `json:"alignment"`
	LanguageDesc          string                `json:"language_desc"`
	Size                  string                `json:"size"`
	SizeDescription       string                `json:"size_description"`
	Speed                 int                   `json:"speed"`
	DetailURL             string                `json:"detail_url"`
	Subraces              []RaceSubrace         `json:"subraces"`
	StartingProficiencies []StartingProficiency `json:"starting_proficiencies"`
}

// RaceSubrace is a subrace as listed under its race.
type RaceSubrace struct {
	ID        int64  `json:"id"`
	Index     string `json:"index"`
	Name      string `json:"name"`
	Desc      string `json:"desc"`
	DetailURL string `json:"detail_url"`
}

// StartingProficiency is a starting proficiency grant of a race or subrace.
type StartingProficiency struct {
	ID              int64  `json:"id"`
	ProficiencyName string `json:"proficiency_name"`
	ProficiencyURL  string `json:"proficiency_url"`
}

// Subrace is the detail shape of a subrace.
type Subrace struct {
	ID                    int64                 `json:"id"`
	Index                 string                `json:"index"`
	Name                  string                `json:"name"`
	Desc                  string                `json:"desc"`
	DetailURL             string                `json:"detail_url"`
	Race                  ParentRef             `json:"race"`
	StartingProficiencies []StartingProficiency `json:"starting_proficiencies"`
}

// School is the detail shape of a school of magic.
type School struct {
	ID        int64         `json:"id"`
	Index     string        `json:"index"`
	Name      string        `json:"name"`
	DetailURL string        `json:"detail_url"`
	Spells    []SchoolSpell `json:"spells"`
}

// SchoolSpell is a spell as listed under its school.
type SchoolSpell struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	DetailURL string `json:"detail_url"`
}

// Spell is the detail shape of a spell.
type Spell struct {
	ID            int64           `json:"id"`
	Index         string          `json:"index"`
	Name          string          `json:"name"`
	Level         int             `json:"level"`
	AttackType    *string         `json:"attack_type"`
	CastingTime   string          `json:"casting_time"`
	Concentration bool            `json:"concentration"`
	Duration      string          `json:"duration"`
	Material      *string         `json:"material"`
	Range         string          `json:"range"`
	Ritual        bool            `json:"ritual"`
	School        int64           `json:"school"`
	SchoolName    string          `json:"school_name"`
	DetailURL     string          `json:"detail_url"`
	Descriptions  []string        `json:"descriptions"`
	Classes       []SpellClass    `json:"classes"`
	Subclasses    []SpellSubclass `json:"subclasses"`
}

// SpellClass is a class as listed under a spell.
type SpellClass struct {
	ID        int64  `json:"id"`
	ClassName string `json:"class_name"`
	ClassURL  string `json:"class_url"`
}

// SpellSubclass is a subclass as listed under a spell.
type SpellSubclass struct {
	ID           int64  `json:"id"`
	SubclassName string `json:"subclass_name"`
	SubclassURL  string `json:"subclass_url"`
}

// Subclass is the detail shape of a subclass.
type Subclass struct {
	ID             int64        `json:"id"`
	Index          string       `json:"index"`
	Name           string       `json:"name"`
	SubclassFlavor string       `json:"subclass_flavor"`
	DetailURL      string       `json:"detail_url"`
	Description    *Description `json:"description"`
	ClassInfo      ParentRef    `json:"class_info"`
}
