package model

// Resource names, used for routes, links and table lookups.
const (
	ResourceClasses       = "classes"
	ResourceProficiencies = "proficiencies"
	ResourceRaces         = "races"
	ResourceSubraces      = "subraces"
	ResourceSchools       = "schools"
	ResourceSpells        = "spells"
	ResourceSubclasses    = "subclasses"
)

// Resources lists every catalog resource in API root order.
var Resources = []string{
	ResourceClasses,
	ResourceProficiencies,
	ResourceRaces,
	ResourceSubraces,
	ResourceSchools,
	ResourceSpells,
	ResourceSubclasses,
}

// Class is a character class such as "wizard".
type Class struct {
	ID     int64  `json:"id"`
	Index  string `json:"index"`
	Name   string `json:"name"`
	HitDie int    `json:"hit_die"`
}

// Proficiency is a skill, tool, armor or weapon proficiency.
type Proficiency struct {
	ID    int64  `json:"id"`
	Index string `json:"index"`
	Name  string `json:"name"`
	Type  string `json:"type"`
}

// Race is a playable race.
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
}

// Subrace belongs to exactly one Race.
type Subrace struct {
	ID     int64  `json:"id"`
	Index  string `json:"index"`
	Name   string `json:"name"`
	Desc   string `json:"desc"`
	RaceID int64  `json:"race"`
}

// School is a school of magic. It owns its spells.
type School struct {
	ID    int64  `json:"id"`
	Index string `json:"index"`
	Name  string `json:"name"`
}

// Spell belongs to exactly one School.
type Spell struct {
	ID            int64   `json:"id"`
	Index         string  `json:"index"`
	Name          string  `json:"name"`
	Level         int     `json:"level"`
	AttackType    *string `json:"attack_type"`
	CastingTime   string  `json:"casting_time"`
	Concentration bool    `json:"concentration"`
	Duration      string  `json:"duration"`
	Material      *string `json:"material"`
	Range         string  `json:"range"`
	Ritual        bool    `json:"ritual"`
	SchoolID      int64   `json:"school"`
}

// Subclass belongs to exactly one Class.
type Subclass struct {
	ID             int64  `json:"id"`
	Index          string `json:"index"`
	Name           string `json:"name"`
	SubclassFlavor string `json:"subclass_flavor"`
	ClassID        int64  `json:"class"`
}

// Ref is a resolved reference to a related entity.
type Ref struct {
	ID   int64
	Name string
}

// RaceLink is one proficiency_races row with names resolved. Exactly one of
// RaceID and SubraceID is set.
type RaceLink struct {
	RaceID      *int64
	RaceName    *string
	SubraceID   *int64
	SubraceName *string
}

// SubclassRef is a subclass as listed under its class.
type SubclassRef struct {
	ID          int64
	Name        string
	Description *string
}

// ClassRecord is a Class together with everything its detail view shows.
type ClassRecord struct {
	Class
	Proficiencies []Ref
	Subclasses    []SubclassRef
	Spells        []Ref
}

// ProficiencyRecord is a Proficiency with its class and race associations.
type ProficiencyRecord struct {
	Proficiency
	Classes   []Ref
	RaceLinks []RaceLink
}

// RaceRecord is a Race with its subraces and starting proficiencies.
type RaceRecord struct {
	Race
	Subraces              []Subrace
	StartingProficiencies []Ref
}

// SubraceRecord is a Subrace with its owning race and starting proficiencies.
type SubraceRecord struct {
	Subrace
	RaceName              string
	StartingProficiencies []Ref
}

// SchoolRecord is a School with its spells.
type SchoolRecord struct {
	School
	Spells []Ref
}

// SpellRecord is a Spell with its school name, descriptions and links.
type SpellRecord struct {
	Spell
	SchoolName   string
	Descriptions []string
	Classes      []Ref
	Subclasses   []Ref
}

// SubclassRecord is a Subclass with its owning class and description.
type SubclassRecord struct {
	Subclass
	ClassName   string
	Description *string
}
