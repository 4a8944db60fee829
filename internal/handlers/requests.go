package handlers

import (
	"github.com/abrezinsky/armyroster/internal/models"
	"github.com/abrezinsky/armyroster/internal/options"
)

// QuoteRequest prices a unit configuration. A missing selection prices the
// unit defaults.
type QuoteRequest struct {
	Category  models.Category   `json:"category"`
	UnitSize  int               `json:"unitSize"`
	Selection options.Selection `json:"selection"`
}

// DraftCreateRequest represents a request to create a draft
type DraftCreateRequest struct {
	ArmyID        string   `json:"armyId"`
	CompositionID string   `json:"compositionId"`
	ArmyRuleID    string   `json:"armyRuleId"`
	PointsLimit   *float64 `json:"pointsLimit"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
}

// DraftUpdateRequest represents a request to update a draft. Omitted fields
// are left unchanged.
type DraftUpdateRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	PointsLimit   *float64 `json:"pointsLimit"`
	CompositionID *string  `json:"compositionId"`
	ArmyRuleID    *string  `json:"armyRuleId"`
}

// EntryRequest represents a request to add or edit a roster entry
type EntryRequest struct {
	UnitID    string            `json:"unitId"`
	Category  models.Category   `json:"category"`
	UnitSize  int               `json:"unitSize"`
	Selection options.Selection `json:"selection"`
	Notes     *string           `json:"notes"`
	Owned     *bool             `json:"owned"`
}
