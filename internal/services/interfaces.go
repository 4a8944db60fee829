package services

import (
	"context"
	"encoding/json"

	"github.com/abrezinsky/armyroster/internal/catalog"
	"github.com/abrezinsky/armyroster/internal/detail"
	"github.com/abrezinsky/armyroster/internal/models"
	"github.com/abrezinsky/armyroster/internal/options"
	"github.com/abrezinsky/armyroster/internal/stats"
)

// CatalogReader is the read side of the catalog store
type CatalogReader interface {
	Armies() []catalog.Army
	Army(id string) (catalog.Army, bool)
	Units(armyID, compositionID string) ([]models.CatalogUnit, bool)
	Unit(armyID string, category models.Category, unitID string) (models.CatalogUnit, bool)
	StatTable(armyID string) []stats.StatLine
	Index(armyID string) *stats.Index
	Load() error
}

// Broadcaster pushes draft changes to connected clients
type Broadcaster interface {
	DraftUpdated(draftID int64, payload any)
	DraftDeleted(draftID int64)
}

// CatalogServicer defines the interface for catalog operations
type CatalogServicer interface {
	ListArmies(ctx context.Context) ([]catalog.Army, error)
	GetArmy(ctx context.Context, armyID string) (*catalog.Army, error)
	ListUnits(ctx context.Context, armyID, compositionID string) ([]models.CatalogUnit, error)
	GetUnit(ctx context.Context, ref UnitRef) (*models.CatalogUnit, error)
	DefaultConfiguration(ctx context.Context, ref UnitRef) (*options.Configuration, error)
	Quote(ctx context.Context, ref UnitRef, cfg options.Configuration) (*options.Quote, error)
	StatTable(ctx context.Context, armyID string) ([]stats.StatLine, error)
	Reload(ctx context.Context) error
}

// DraftServicer defines the interface for roster draft operations
type DraftServicer interface {
	CreateDraft(ctx context.Context, req CreateDraftRequest) (*models.RosterDraft, error)
	ListDrafts(ctx context.Context) ([]DraftSummary, error)
	GetDraft(ctx context.Context, id int64) (*models.RosterDraft, error)
	UpdateDraft(ctx context.Context, id int64, req DraftUpdate) (*models.RosterDraft, error)
	DeleteDraft(ctx context.Context, id int64) error
	ImportDraft(ctx context.Context, raw json.RawMessage) (*models.RosterDraft, error)

	AddEntry(ctx context.Context, id int64, req EntryRequest) (*models.RosterEntry, error)
	UpdateEntry(ctx context.Context, id int64, entryID string, req EntryRequest) (*models.RosterEntry, error)
	RemoveEntry(ctx context.Context, id int64, entryID string) error
	DuplicateEntry(ctx context.Context, id int64, entryID string) (*models.RosterEntry, error)
	EntryConfiguration(ctx context.Context, id int64, entryID string) (*EntryConfiguration, error)

	CopyEntry(ctx context.Context, id int64, entryID string) (*models.RosterEntry, error)
	Clipboard(ctx context.Context) (*models.RosterEntry, error)
	SetClipboard(ctx context.Context, raw json.RawMessage) (*models.RosterEntry, error)
	PasteEntry(ctx context.Context, id int64) (*models.RosterEntry, error)

	Sections(ctx context.Context, id int64) (*SectionsView, error)
	DetailView(ctx context.Context, id int64) (*detail.View, error)
	ShareURL(ctx context.Context, id int64) (string, error)
	ShareQR(ctx context.Context, id int64, size int) ([]byte, error)
}

// Ensure concrete types implement interfaces
var (
	_ CatalogServicer = (*CatalogService)(nil)
	_ DraftServicer   = (*DraftService)(nil)
	_ CatalogReader   = (*catalog.Store)(nil)
)
