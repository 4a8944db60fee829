package services

import (
	"github.com/abrezinsky/armyroster/internal/models"
	"github.com/abrezinsky/armyroster/internal/options"
	"github.com/abrezinsky/armyroster/internal/points"
)

// UnitRef identifies a catalog unit. Unit ids are only unique within a
// category, so the category narrows the lookup when given.
type UnitRef struct {
	ArmyID   string          `json:"armyId"`
	Category models.Category `json:"category,omitempty"`
	UnitID   string          `json:"unitId"`
}

// CreateDraftRequest starts a new roster for an army
type CreateDraftRequest struct {
	ArmyID        string   `json:"armyId"`
	CompositionID string   `json:"compositionId"`
	ArmyRuleID    string   `json:"armyRuleId"`
	PointsLimit   *float64 `json:"pointsLimit"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
}

// DraftUpdate changes draft fields. Nil fields are left alone.
type DraftUpdate struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	PointsLimit   *float64 `json:"pointsLimit"`
	CompositionID *string  `json:"compositionId"`
	ArmyRuleID    *string  `json:"armyRuleId"`
}

// EntryRequest adds or edits a roster entry. When adding, a zero unit size
// and a nil selection use the unit defaults. When editing, they keep the
// entry's current configuration. A selection only replaces the groups it
// names.
type EntryRequest struct {
	UnitID    string            `json:"unitId"`
	Category  models.Category   `json:"category"`
	UnitSize  int               `json:"unitSize"`
	Selection options.Selection `json:"selection"`
	Notes     *string           `json:"notes"`
	Owned     *bool             `json:"owned"`
}

// EntryConfiguration is the edit-mode state of an existing entry
type EntryConfiguration struct {
	Entry         models.RosterEntry    `json:"entry"`
	Unit          models.CatalogUnit    `json:"unit"`
	Configuration options.Configuration `json:"configuration"`
	Quote         options.Quote         `json:"quote"`
}

// DraftSummary is a draft as shown in a list
type DraftSummary struct {
	ID          int64   `json:"id"`
	ArmyID      string  `json:"armyId"`
	ArmyName    string  `json:"armyName"`
	Name        string  `json:"name"`
	PointsLimit float64 `json:"pointsLimit"`
	TotalPoints float64 `json:"totalPoints"`
	EntryCount  int     `json:"entryCount"`
	UpdatedAt   string  `json:"updatedAt"`
}

// SectionsView is the category summary of a draft. It is also the payload
// of draft_updated messages.
type SectionsView struct {
	DraftID         int64                    `json:"draftId"`
	PointsLimit     float64                  `json:"pointsLimit"`
	TotalPoints     float64                  `json:"totalPoints"`
	RemainingPoints float64                  `json:"remainingPoints"`
	OverLimit       bool                     `json:"overLimit"`
	Math            points.Math              `json:"math"`
	Sections        []models.CategorySection `json:"sections"`
}

func newSectionsView(d models.RosterDraft) *SectionsView {
	v := &SectionsView{
		DraftID:     d.ID,
		PointsLimit: d.PointsLimit,
		Math:        points.Calculate(d.PointsLimit, d.SpentByCategory()),
		Sections:    points.Sections(d),
	}
	for _, e := range d.Entries {
		v.TotalPoints += e.TotalPoints
	}
	v.RemainingPoints = v.PointsLimit - v.TotalPoints
	v.OverLimit = v.RemainingPoints < 0
	return v
}
