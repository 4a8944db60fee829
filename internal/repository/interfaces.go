package repository

import (
	"context"
	"encoding/json"
)

// DraftRecord is a stored roster draft. Entries are kept as the raw JSON
// column so the service can normalize them on every read.
type DraftRecord struct {
	ID            int64
	ArmyID        string
	CompositionID string
	ArmyRuleID    string
	PointsLimit   float64
	Name          string
	Description   string
	Entries       json.RawMessage
	CreatedAt     string
	UpdatedAt     string
}

// DraftRepository defines draft data operations
type DraftRepository interface {
	ListDrafts(ctx context.Context) ([]DraftRecord, error)
	GetDraft(ctx context.Context, id int64) (*DraftRecord, error)
	CreateDraft(ctx context.Context, d DraftRecord) (int64, error)
	UpdateDraft(ctx context.Context, d DraftRecord) error
	DeleteDraft(ctx context.Context, id int64) error
}

// SettingsRepository defines key/value settings operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// FullRepository combines all repository interfaces
type FullRepository interface {
	DraftRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
