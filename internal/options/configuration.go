package options

import (
	"math"

	"github.com/abrezinsky/armyroster/internal/models"
)

// Configuration is the editable state of a unit being added or edited
type Configuration struct {
	UnitSize  int       `json:"unitSize"`
	Selection Selection `json:"selection"`
}

// Quote is the priced result of a configuration
type Quote struct {
	UnitSize       int                     `json:"unitSize"`
	PointsPerModel float64                 `json:"pointsPerModel"`
	BasePoints     float64                 `json:"basePoints"`
	OptionPoints   float64                 `json:"optionPoints"`
	TotalPoints    float64                 `json:"totalPoints"`
	Options        []models.SelectedOption `json:"options"`
}

// NewConfiguration returns the default configuration for a fresh unit
func NewConfiguration(unit models.CatalogUnit) Configuration {
	return Configuration{
		UnitSize:  ClampUnitSize(float64(unit.Minimum), unit.Minimum, unit.Maximum),
		Selection: DefaultSelection(unit.OptionGroups),
	}
}

// EditConfiguration re-derives the configuration of an existing entry
// against the live catalog unit
func EditConfiguration(unit models.CatalogUnit, entry models.RosterEntry) Configuration {
	return Configuration{
		UnitSize:  ClampUnitSize(float64(entry.UnitSize), unit.Minimum, unit.Maximum),
		Selection: HydrateSelection(unit.OptionGroups, entry.Options),
	}
}

// Price clamps the unit size to the unit's bounds and prices the selection
func Price(unit models.CatalogUnit, cfg Configuration) Quote {
	size := ClampUnitSize(float64(cfg.UnitSize), unit.Minimum, unit.Maximum)
	selected := Selected(unit.OptionGroups, cfg.Selection, size)

	q := Quote{
		UnitSize:       size,
		PointsPerModel: math.Max(0, unit.PointsPerModel),
		Options:        selected,
	}
	q.BasePoints = math.Max(0, q.PointsPerModel*float64(size))
	for _, opt := range selected {
		q.OptionPoints += opt.Points
	}
	q.TotalPoints = q.BasePoints + q.OptionPoints
	return q
}

// EntryDetails carries the player-authored fields of a roster entry
type EntryDetails struct {
	ID       string
	Category models.Category
	Notes    string
	Owned    bool
}

// BuildEntry prices the configuration and produces the roster entry that is
// stored in the draft
func BuildEntry(unit models.CatalogUnit, cfg Configuration, details EntryDetails) models.RosterEntry {
	q := Price(unit, cfg)

	category := details.Category
	if !category.Valid() {
		category = unit.Category
	}
	if !category.Valid() {
		category = models.CategoryCore
	}

	return models.RosterEntry{
		ID:             details.ID,
		UnitID:         unit.ID,
		Name:           unit.Name,
		Category:       category,
		UnitSize:       q.UnitSize,
		PointsPerModel: q.PointsPerModel,
		BasePoints:     q.BasePoints,
		Options:        q.Options,
		TotalPoints:    q.TotalPoints,
		Notes:          details.Notes,
		Owned:          details.Owned,
	}
}
