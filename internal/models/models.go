package models

// Category is one of the six spending buckets of a roster
type Category string

const (
	CategoryCharacters  Category = "characters"
	CategoryCore        Category = "core"
	CategorySpecial     Category = "special"
	CategoryRare        Category = "rare"
	CategoryMercenaries Category = "mercenaries"
	CategoryAllies      Category = "allies"
)

// Categories lists every category in display order. Every per-category
// table in the engine is keyed off this list.
var Categories = []Category{
	CategoryCharacters,
	CategoryCore,
	CategorySpecial,
	CategoryRare,
	CategoryMercenaries,
	CategoryAllies,
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// GroupKey identifies an option group of a catalog unit
type GroupKey string

const (
	GroupCommand   GroupKey = "command"
	GroupEquipment GroupKey = "equipment"
	GroupArmor     GroupKey = "armor"
	GroupMounts    GroupKey = "mounts"
	GroupOptions   GroupKey = "options"
)

// GroupKeys lists the option groups in their fixed display order
var GroupKeys = []GroupKey{
	GroupCommand,
	GroupEquipment,
	GroupArmor,
	GroupMounts,
	GroupOptions,
}

// SelectionKind is the selection discipline of an option group
type SelectionKind string

const (
	SelectionRadio    SelectionKind = "radio"
	SelectionCheckbox SelectionKind = "checkbox"
)

// Kind returns the selection discipline used by the group.
// Equipment, armor and mounts are mutually exclusive.
func (g GroupKey) Kind() SelectionKind {
	switch g {
	case GroupEquipment, GroupArmor, GroupMounts:
		return SelectionRadio
	default:
		return SelectionCheckbox
	}
}

// Order returns the position of the group in GroupKeys, or len(GroupKeys)
// for unknown keys so they sort last.
func (g GroupKey) Order() int {
	for i, key := range GroupKeys {
		if key == g {
			return i
		}
	}
	return len(GroupKeys)
}

// CatalogOption is a purchasable upgrade inside an option group
type CatalogOption struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Points   float64 `json:"points"`
	PerModel bool    `json:"perModel"`
	Default  bool    `json:"default,omitempty"`
	Note     string  `json:"note,omitempty"`
}

// OptionGroup is a named collection of options with a selection discipline
type OptionGroup struct {
	Key     GroupKey        `json:"key"`
	Kind    SelectionKind   `json:"kind"`
	Options []CatalogOption `json:"options"`
}

// Option returns the option with the given id
func (g OptionGroup) Option(id string) (CatalogOption, bool) {
	for _, opt := range g.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return CatalogOption{}, false
}

// CatalogUnit is a normalized unit definition from the army catalog
type CatalogUnit struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Category       Category      `json:"category"`
	PointsPerModel float64       `json:"pointsPerModel"`
	Minimum        int           `json:"minimum,omitempty"`
	Maximum        int           `json:"maximum,omitempty"` // 0 means unbounded
	OptionGroups   []OptionGroup `json:"optionGroups,omitempty"`
	Notes          string        `json:"notes,omitempty"`
}

// Group returns the option group with the given key
func (u CatalogUnit) Group(key GroupKey) (OptionGroup, bool) {
	for _, g := range u.OptionGroups {
		if g.Key == key {
			return g, true
		}
	}
	return OptionGroup{}, false
}

// SelectedOption is an option attached to a roster entry. Points is the
// total contribution, already scaled by unit size for per-model options.
type SelectedOption struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Points   float64  `json:"points"`
	Group    GroupKey `json:"group"`
	Note     string   `json:"note,omitempty"`
	PerModel bool     `json:"perModel"`
	BaseCost float64  `json:"baseCost"`
	SourceID string   `json:"sourceId,omitempty"`
}

// RosterEntry is one purchased unit in a draft
type RosterEntry struct {
	ID             string           `json:"id"`
	UnitID         string           `json:"unitId"`
	Name           string           `json:"name"`
	Category       Category         `json:"category"`
	UnitSize       int              `json:"unitSize"`
	PointsPerModel float64          `json:"pointsPerModel"`
	BasePoints     float64          `json:"basePoints"`
	Options        []SelectedOption `json:"options"`
	TotalPoints    float64          `json:"totalPoints"`
	Notes          string           `json:"notes"`
	Owned          bool             `json:"owned"`

	// TotalOverride is set when a stored total disagrees with the one derived
	// from base and option points. It is persisted as totalPoints.
	TotalOverride *float64 `json:"-"`
}

// RosterDraft is a player's in-progress army list
type RosterDraft struct {
	ID            int64         `json:"id,omitempty"`
	ArmyID        string        `json:"armyId"`
	CompositionID string        `json:"compositionId"`
	ArmyRuleID    string        `json:"armyRuleId"`
	PointsLimit   float64       `json:"pointsLimit"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Entries       []RosterEntry `json:"entries"`
	UpdatedAt     string        `json:"updatedAt,omitempty"`
}

// SpentByCategory sums entry totals per category
func (d RosterDraft) SpentByCategory() map[Category]float64 {
	spent := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		spent[c] = 0
	}
	for _, e := range d.Entries {
		spent[e.Category] += e.TotalPoints
	}
	return spent
}

// CategorySection summarizes spending in one category. Derived, never stored.
type CategorySection struct {
	Category  Category `json:"category"`
	Spent     float64  `json:"spent"`
	Cap       float64  `json:"cap"`
	Capped    bool     `json:"capped"`
	Minimum   float64  `json:"minimum,omitempty"`
	Available float64  `json:"available"`
	OverCap   bool     `json:"overCap"`
	Warning   bool     `json:"warning"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
