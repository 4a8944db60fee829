// Package points implements the army composition rules: the minimum core
// spend and the per-category spending caps derived from a points limit.
package points

import (
	"math"

	"github.com/abrezinsky/armyroster/internal/models"
)

// MinCoreShare is the fraction of the points limit that must be spent on core
const MinCoreShare = 0.25

// CapShares holds the spending cap of every capped category as a fraction of
// the points limit. Core has a floor instead of a ceiling and is absent.
var CapShares = map[models.Category]float64{
	models.CategoryCharacters:  0.50,
	models.CategorySpecial:     0.50,
	models.CategoryRare:        0.25,
	models.CategoryMercenaries: 0.20,
	models.CategoryAllies:      0.25,
}

// Math is the result of applying the composition rules to a points limit
type Math struct {
	MinCore            float64                     `json:"minCore"`
	Caps               map[models.Category]float64 `json:"caps"`
	Availability       map[models.Category]float64 `json:"availability"`
	CoreRequirementMet bool                        `json:"coreRequirementMet"`
}

// Calculate derives caps, availability and the core requirement from the
// points limit and the current spend per category. Each cap is rounded once
// from the limit; a non-positive limit yields zero caps.
func Calculate(pointsLimit float64, spent map[models.Category]float64) Math {
	limit := pointsLimit
	if math.IsNaN(limit) || limit < 0 {
		limit = 0
	}

	m := Math{
		MinCore:      share(limit, MinCoreShare),
		Caps:         make(map[models.Category]float64, len(CapShares)),
		Availability: make(map[models.Category]float64, len(CapShares)),
	}
	for _, c := range models.Categories {
		pct, capped := CapShares[c]
		if !capped {
			continue
		}
		m.Caps[c] = share(limit, pct)
		m.Availability[c] = math.Max(0, m.Caps[c]-spent[c])
	}

	core := spent[models.CategoryCore]
	if limit == 0 {
		m.CoreRequirementMet = core == 0
	} else {
		m.CoreRequirementMet = core >= m.MinCore
	}
	return m
}

func share(limit, pct float64) float64 {
	return math.Max(0, math.Round(limit*pct))
}

// Sections builds the per-category summary for a draft
func Sections(draft models.RosterDraft) []models.CategorySection {
	spent := draft.SpentByCategory()
	m := Calculate(draft.PointsLimit, spent)

	sections := make([]models.CategorySection, 0, len(models.Categories))
	for _, c := range models.Categories {
		s := models.CategorySection{Category: c, Spent: spent[c]}
		if c == models.CategoryCore {
			s.Minimum = m.MinCore
			s.Warning = !m.CoreRequirementMet
		} else {
			s.Cap = m.Caps[c]
			s.Capped = true
			s.Available = m.Availability[c]
			s.OverCap = s.Spent > s.Cap
		}
		sections = append(sections, s)
	}
	return sections
}
