package services

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/armyroster/internal/catalog"
	"github.com/abrezinsky/armyroster/internal/detail"
	"github.com/abrezinsky/armyroster/internal/entry"
	"github.com/abrezinsky/armyroster/internal/errors"
	"github.com/abrezinsky/armyroster/internal/logger"
	"github.com/abrezinsky/armyroster/internal/models"
	"github.com/abrezinsky/armyroster/internal/options"
	"github.com/abrezinsky/armyroster/internal/repository"
)

const clipboardKey = "clipboard"

// Share QR code sizes in pixels
const (
	DefaultQRSize = 256
	MinQRSize     = 64
	MaxQRSize     = 1024
)

// DraftSettings holds the configuration the draft service needs
type DraftSettings struct {
	BaseURL            string
	DefaultPointsLimit float64
}

// DraftUpdatedMessage is broadcast after every successful draft mutation
type DraftUpdatedMessage struct {
	Draft   models.RosterDraft `json:"draft"`
	Summary *SectionsView      `json:"summary"`
}

// DraftService handles roster drafts. Entries pass through the entry
// normalizer on every read from storage, every write and every import.
type DraftService struct {
	log         logger.Logger
	repo        repository.FullRepository
	store       CatalogReader
	broadcaster Broadcaster
	normalizer  *entry.Normalizer
	newID       entry.IDGenerator
	settings    DraftSettings

	// serializes read-modify-write cycles on drafts
	mu sync.Mutex
}

// NewDraftService creates a new DraftService
func NewDraftService(log logger.Logger, repo repository.FullRepository, store CatalogReader, settings DraftSettings) *DraftService {
	return &DraftService{
		log:        log,
		repo:       repo,
		store:      store,
		normalizer: entry.NewNormalizer(entry.RandomID),
		newID:      entry.RandomID,
		settings:   settings,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *DraftService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetIDGenerator replaces the id source for new entries and for entries
// normalized without an id
func (s *DraftService) SetIDGenerator(gen entry.IDGenerator) {
	s.newID = gen
	s.normalizer = entry.NewNormalizer(gen)
}

// ==================== Persistence ====================

func (s *DraftService) fromRecord(rec repository.DraftRecord) models.RosterDraft {
	return models.RosterDraft{
		ID:            rec.ID,
		ArmyID:        rec.ArmyID,
		CompositionID: rec.CompositionID,
		ArmyRuleID:    rec.ArmyRuleID,
		PointsLimit:   math.Max(0, rec.PointsLimit),
		Name:          rec.Name,
		Description:   rec.Description,
		Entries:       s.normalizer.Entries(rec.Entries),
		UpdatedAt:     rec.UpdatedAt,
	}
}

func (s *DraftService) toRecord(d models.RosterDraft) (repository.DraftRecord, error) {
	entries := make([]models.RosterEntry, 0, len(d.Entries))
	for _, e := range d.Entries {
		entries = append(entries, s.normalizer.Entry(e))
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return repository.DraftRecord{}, errors.Internal(err)
	}
	return repository.DraftRecord{
		ID:            d.ID,
		ArmyID:        d.ArmyID,
		CompositionID: d.CompositionID,
		ArmyRuleID:    d.ArmyRuleID,
		PointsLimit:   d.PointsLimit,
		Name:          d.Name,
		Description:   d.Description,
		Entries:       raw,
	}, nil
}

func (s *DraftService) load(ctx context.Context, id int64) (models.RosterDraft, error) {
	rec, err := s.repo.GetDraft(ctx, id)
	if err != nil {
		return models.RosterDraft{}, storageError(err, id)
	}
	return s.fromRecord(*rec), nil
}

func (s *DraftService) insert(ctx context.Context, d models.RosterDraft) (models.RosterDraft, error) {
	rec, err := s.toRecord(d)
	if err != nil {
		return models.RosterDraft{}, err
	}
	id, err := s.repo.CreateDraft(ctx, rec)
	if err != nil {
		return models.RosterDraft{}, errors.Internal(err)
	}
	saved, err := s.load(ctx, id)
	if err != nil {
		return models.RosterDraft{}, err
	}
	s.notify(saved)
	return saved, nil
}

// mutate loads a draft, applies fn and stores the result
func (s *DraftService) mutate(ctx context.Context, id int64, fn func(d *models.RosterDraft) error) (models.RosterDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load(ctx, id)
	if err != nil {
		return models.RosterDraft{}, err
	}
	if err := fn(&d); err != nil {
		return models.RosterDraft{}, err
	}

	rec, err := s.toRecord(d)
	if err != nil {
		return models.RosterDraft{}, err
	}
	if err := s.repo.UpdateDraft(ctx, rec); err != nil {
		return models.RosterDraft{}, storageError(err, id)
	}

	saved, err := s.load(ctx, id)
	if err != nil {
		return models.RosterDraft{}, err
	}
	s.notify(saved)
	return saved, nil
}

func (s *DraftService) notify(d models.RosterDraft) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.DraftUpdated(d.ID, DraftUpdatedMessage{Draft: d, Summary: newSectionsView(d)})
}

// ==================== Drafts ====================

// CreateDraft starts a new, empty roster for an army
func (s *DraftService) CreateDraft(ctx context.Context, req CreateDraftRequest) (*models.RosterDraft, error) {
	army, ok := s.store.Army(req.ArmyID)
	if !ok {
		return nil, errors.Validationf("unknown army %q", req.ArmyID)
	}
	if err := validateArmyChoices(army, req.CompositionID, req.ArmyRuleID); err != nil {
		return nil, err
	}

	limit := s.settings.DefaultPointsLimit
	if req.PointsLimit != nil {
		if err := validateLimit(*req.PointsLimit); err != nil {
			return nil, err
		}
		limit = *req.PointsLimit
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = army.Name
	}

	d, err := s.insert(ctx, models.RosterDraft{
		ArmyID:        army.ID,
		CompositionID: req.CompositionID,
		ArmyRuleID:    req.ArmyRuleID,
		PointsLimit:   limit,
		Name:          name,
		Description:   req.Description,
		Entries:       []models.RosterEntry{},
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Draft created", "draft_id", d.ID, "army", d.ArmyID, "points_limit", d.PointsLimit)
	return &d, nil
}

// ListDrafts returns a summary of every stored draft
func (s *DraftService) ListDrafts(ctx context.Context) ([]DraftSummary, error) {
	records, err := s.repo.ListDrafts(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}

	out := make([]DraftSummary, 0, len(records))
	for _, rec := range records {
		d := s.fromRecord(rec)
		sum := DraftSummary{
			ID:          d.ID,
			ArmyID:      d.ArmyID,
			ArmyName:    d.ArmyID,
			Name:        d.Name,
			PointsLimit: d.PointsLimit,
			EntryCount:  len(d.Entries),
			UpdatedAt:   d.UpdatedAt,
		}
		if army, ok := s.store.Army(d.ArmyID); ok {
			sum.ArmyName = army.Name
		}
		for _, e := range d.Entries {
			sum.TotalPoints += e.TotalPoints
		}
		out = append(out, sum)
	}
	return out, nil
}

// GetDraft returns a normalized draft
func (s *DraftService) GetDraft(ctx context.Context, id int64) (*models.RosterDraft, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDraft changes the draft's name, description, points limit,
// composition or army rule
func (s *DraftService) UpdateDraft(ctx context.Context, id int64, req DraftUpdate) (*models.RosterDraft, error) {
	if req.PointsLimit != nil {
		if err := validateLimit(*req.PointsLimit); err != nil {
			return nil, err
		}
	}

	d, err := s.mutate(ctx, id, func(d *models.RosterDraft) error {
		army, ok := s.store.Army(d.ArmyID)
		if req.CompositionID != nil || req.ArmyRuleID != nil {
			if !ok {
				return errors.Validationf("army %q is no longer in the catalog", d.ArmyID)
			}
			comp, rule := d.CompositionID, d.ArmyRuleID
			if req.CompositionID != nil {
				comp = *req.CompositionID
			}
			if req.ArmyRuleID != nil {
				rule = *req.ArmyRuleID
			}
			if err := validateArmyChoices(army, comp, rule); err != nil {
				return err
			}
			d.CompositionID, d.ArmyRuleID = comp, rule
		}
		if req.Name != nil {
			d.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			d.Description = *req.Description
		}
		if req.PointsLimit != nil {
			d.PointsLimit = *req.PointsLimit
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("Draft updated", "draft_id", id)
	return &d, nil
}

// DeleteDraft removes a draft
func (s *DraftService) DeleteDraft(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteDraft(ctx, id); err != nil {
		return storageError(err, id)
	}
	if s.broadcaster != nil {
		s.broadcaster.DraftDeleted(id)
	}
	s.log.Info("Draft deleted", "draft_id", id)
	return nil
}

// ImportDraft stores an externally authored draft as a new draft. The
// input is untrusted: it is normalized field by field, and composition or
// army rule ids unknown to the catalog are dropped.
func (s *DraftService) ImportDraft(ctx context.Context, raw json.RawMessage) (*models.RosterDraft, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyImport
	}
	var probe map[string]any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, errors.InvalidInputf("import must be a JSON object: %v", err)
	}

	d := s.normalizer.Draft(probe)
	army, ok := s.store.Army(d.ArmyID)
	if !ok {
		return nil, errors.Validationf("unknown army %q", d.ArmyID)
	}
	if _, ok := army.Composition(d.CompositionID); d.CompositionID != "" && !ok {
		s.log.Warn("Dropping unknown composition from import", "army", army.ID, "composition", d.CompositionID)
		d.CompositionID = ""
	}
	if _, ok := army.ArmyRule(d.ArmyRuleID); d.ArmyRuleID != "" && !ok {
		s.log.Warn("Dropping unknown army rule from import", "army", army.ID, "army_rule", d.ArmyRuleID)
		d.ArmyRuleID = ""
	}
	if strings.TrimSpace(d.Name) == "" {
		d.Name = army.Name
	}
	d.ID = 0

	saved, err := s.insert(ctx, d)
	if err != nil {
		return nil, err
	}
	s.log.Info("Draft imported", "draft_id", saved.ID, "army", saved.ArmyID, "entries", len(saved.Entries))
	return &saved, nil
}

// ==================== Entries ====================

func findEntry(d models.RosterDraft, entryID string) (int, bool) {
	for i, e := range d.Entries {
		if e.ID == entryID {
			return i, true
		}
	}
	return -1, false
}

func entryNotFound(draftID int64, entryID string) error {
	return errors.NotFoundf("entry %q not found in draft %d", entryID, draftID)
}

// unitFor looks up a unit of the draft's army and checks it against the
// draft's composition
func (s *DraftService) unitFor(d models.RosterDraft, category models.Category, unitID string) (models.CatalogUnit, error) {
	if unitID == "" {
		return models.CatalogUnit{}, errors.Validationf("unitId is required")
	}
	army, ok := s.store.Army(d.ArmyID)
	if !ok {
		return models.CatalogUnit{}, errors.NotFoundf("army %q not found", d.ArmyID)
	}
	unit, ok := s.store.Unit(d.ArmyID, category, unitID)
	if !ok {
		return models.CatalogUnit{}, errors.NotFoundf("unit %q not found in army %q", unitID, d.ArmyID)
	}
	if comp, ok := army.Composition(d.CompositionID); ok && !comp.Allows(unit.ID) {
		return models.CatalogUnit{}, errors.Validationf("unit %q is not available to composition %q", unit.ID, comp.Name)
	}
	return unit, nil
}

// AddEntry prices a unit configuration and appends it to the draft
func (s *DraftService) AddEntry(ctx context.Context, id int64, req EntryRequest) (*models.RosterEntry, error) {
	newID := s.newID()
	saved, err := s.mutate(ctx, id, func(d *models.RosterDraft) error {
		unit, err := s.unitFor(*d, req.Category, req.UnitID)
		if err != nil {
			return err
		}

		cfg := options.NewConfiguration(unit)
		if req.UnitSize > 0 {
			cfg.UnitSize = req.UnitSize
		}
		if req.Selection != nil {
			cfg.Selection = options.MergeSelection(unit.OptionGroups, cfg.Selection, req.Selection)
		}
		details := options.EntryDetails{ID: newID, Category: req.Category}
		if req.Notes != nil {
			details.Notes = *req.Notes
		}
		if req.Owned != nil {
			details.Owned = *req.Owned
		}
		d.Entries = append(d.Entries, options.BuildEntry(unit, cfg, details))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("Entry added", "draft_id", id, "entry_id", newID, "unit", req.UnitID)
	return savedEntry(saved, newID)
}

// UpdateEntry reconfigures an entry in place, keeping its id. When the unit
// has left the catalog only notes and the owned flag can change.
func (s *DraftService) UpdateEntry(ctx context.Context, id int64, entryID string, req EntryRequest) (*models.RosterEntry, error) {
	saved, err := s.mutate(ctx, id, func(d *models.RosterDraft) error {
		i, ok := findEntry(*d, entryID)
		if !ok {
			return entryNotFound(id, entryID)
		}
		cur := d.Entries[i]

		unitID, category := cur.UnitID, cur.Category
		if req.UnitID != "" {
			unitID = req.UnitID
		}
		if req.Category != "" {
			category = req.Category
		}
		reconfigure := req.UnitID != "" || req.UnitSize > 0 || req.Selection != nil || category != cur.Category

		details := options.EntryDetails{ID: cur.ID, Category: category, Notes: cur.Notes, Owned: cur.Owned}
		if req.Notes != nil {
			details.Notes = *req.Notes
		}
		if req.Owned != nil {
			details.Owned = *req.Owned
		}

		unit, err := s.unitFor(*d, category, unitID)
		if err != nil {
			if reconfigure || !errors.Is(err, errors.ErrNotFound) {
				return err
			}
			cur.Notes, cur.Owned = details.Notes, details.Owned
			d.Entries[i] = cur
			return nil
		}

		cfg := options.EditConfiguration(unit, cur)
		if unitID != cur.UnitID {
			cfg = options.NewConfiguration(unit)
		}
		if req.UnitSize > 0 {
			cfg.UnitSize = req.UnitSize
		}
		if req.Selection != nil {
			cfg.Selection = options.MergeSelection(unit.OptionGroups, cfg.Selection, req.Selection)
		}
		d.Entries[i] = options.BuildEntry(unit, cfg, details)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("Entry updated", "draft_id", id, "entry_id", entryID)
	return savedEntry(saved, entryID)
}

// RemoveEntry deletes an entry from the draft
func (s *DraftService) RemoveEntry(ctx context.Context, id int64, entryID string) error {
	_, err := s.mutate(ctx, id, func(d *models.RosterDraft) error {
		i, ok := findEntry(*d, entryID)
		if !ok {
			return entryNotFound(id, entryID)
		}
		d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Debug("Entry removed", "draft_id", id, "entry_id", entryID)
	return nil
}

// DuplicateEntry inserts a copy of an entry right after it
func (s *DraftService) DuplicateEntry(ctx context.Context, id int64, entryID string) (*models.RosterEntry, error) {
	newID := s.newID()
	saved, err := s.mutate(ctx, id, func(d *models.RosterDraft) error {
		i, ok := findEntry(*d, entryID)
		if !ok {
			return entryNotFound(id, entryID)
		}
		dup := cloneEntry(d.Entries[i])
		dup.ID = newID

		entries := make([]models.RosterEntry, 0, len(d.Entries)+1)
		entries = append(entries, d.Entries[:i+1]...)
		entries = append(entries, dup)
		entries = append(entries, d.Entries[i+1:]...)
		d.Entries = entries
		return nil
	})
	if err != nil {
		return nil, err
	}
	return savedEntry(saved, newID)
}

// EntryConfiguration re-derives the edit state of an entry against the live
// catalog unit
func (s *DraftService) EntryConfiguration(ctx context.Context, id int64, entryID string) (*EntryConfiguration, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	i, ok := findEntry(d, entryID)
	if !ok {
		return nil, entryNotFound(id, entryID)
	}
	e := d.Entries[i]

	unit, ok := s.store.Unit(d.ArmyID, e.Category, e.UnitID)
	if !ok {
		return nil, errors.NotFoundf("unit %q not found in army %q", e.UnitID, d.ArmyID)
	}
	cfg := options.EditConfiguration(unit, e)
	return &EntryConfiguration{
		Entry:         e,
		Unit:          unit,
		Configuration: cfg,
		Quote:         options.Price(unit, cfg),
	}, nil
}

func savedEntry(d models.RosterDraft, entryID string) (*models.RosterEntry, error) {
	i, ok := findEntry(d, entryID)
	if !ok {
		return nil, entryNotFound(d.ID, entryID)
	}
	e := d.Entries[i]
	return &e, nil
}

func cloneEntry(e models.RosterEntry) models.RosterEntry {
	e.Options = append([]models.SelectedOption(nil), e.Options...)
	return e
}

// ==================== Clipboard ====================

// CopyEntry places an entry on the clipboard
func (s *DraftService) CopyEntry(ctx context.Context, id int64, entryID string) (*models.RosterEntry, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	i, ok := findEntry(d, entryID)
	if !ok {
		return nil, entryNotFound(id, entryID)
	}
	e := d.Entries[i]
	if err := s.storeClipboard(ctx, e); err != nil {
		return nil, err
	}
	return &e, nil
}

// SetClipboard places externally authored entry JSON on the clipboard
func (s *DraftService) SetClipboard(ctx context.Context, raw json.RawMessage) (*models.RosterEntry, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrClipboardEmpty
	}
	var rec map[string]any
	if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
		return nil, errors.InvalidInputf("clipboard must hold a JSON object")
	}
	e := s.normalizer.Entry(rec)
	if err := s.storeClipboard(ctx, e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *DraftService) storeClipboard(ctx context.Context, e models.RosterEntry) error {
	raw, err := json.Marshal(s.normalizer.Entry(e))
	if err != nil {
		return errors.Internal(err)
	}
	if err := s.repo.SetSetting(ctx, clipboardKey, string(raw)); err != nil {
		return errors.Internal(err)
	}
	return nil
}

// Clipboard returns the entry on the clipboard
func (s *DraftService) Clipboard(ctx context.Context) (*models.RosterEntry, error) {
	raw, err := s.repo.GetSetting(ctx, clipboardKey)
	if stderrors.Is(err, repository.ErrNotFound) || (err == nil && strings.TrimSpace(raw) == "") {
		return nil, ErrClipboardEmpty
	}
	if err != nil {
		return nil, errors.Internal(err)
	}
	e := s.normalizer.Entry(raw)
	return &e, nil
}

// PasteEntry appends the clipboard entry to a draft under a new id
func (s *DraftService) PasteEntry(ctx context.Context, id int64) (*models.RosterEntry, error) {
	clip, err := s.Clipboard(ctx)
	if err != nil {
		return nil, err
	}
	pasted := cloneEntry(*clip)
	pasted.ID = s.newID()

	saved, err := s.mutate(ctx, id, func(d *models.RosterDraft) error {
		d.Entries = append(d.Entries, pasted)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return savedEntry(saved, pasted.ID)
}

// ==================== Views ====================

// Sections returns the category summary of a draft
func (s *DraftService) Sections(ctx context.Context, id int64) (*SectionsView, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return newSectionsView(d), nil
}

// DetailView builds the full roster view with stat lines
func (s *DraftService) DetailView(ctx context.Context, id int64) (*detail.View, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	v := detail.Build(d, s.store.Index(d.ArmyID), s.normalizer)
	return &v, nil
}

// ShareURL returns the public link to a draft
func (s *DraftService) ShareURL(ctx context.Context, id int64) (string, error) {
	if _, err := s.load(ctx, id); err != nil {
		return "", err
	}
	base := strings.TrimRight(s.settings.BaseURL, "/")
	if base == "" {
		return "", errors.Validationf("base URL not configured")
	}
	return fmt.Sprintf("%s/drafts/%d", base, id), nil
}

// ShareQR renders the share link as a PNG QR code. A zero size uses the
// default and other sizes are clamped.
func (s *DraftService) ShareQR(ctx context.Context, id int64, size int) ([]byte, error) {
	url, err := s.ShareURL(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(url, qrcode.Medium, clampQRSize(size))
	if err != nil {
		return nil, errors.Internal(err)
	}
	return png, nil
}

func clampQRSize(size int) int {
	switch {
	case size == 0:
		return DefaultQRSize
	case size < MinQRSize:
		return MinQRSize
	case size > MaxQRSize:
		return MaxQRSize
	default:
		return size
	}
}

// ==================== Validation ====================

func validateLimit(limit float64) error {
	if math.IsNaN(limit) || math.IsInf(limit, 0) || limit < 0 {
		return errors.Validationf("points limit must be a non-negative number")
	}
	return nil
}

func validateArmyChoices(army catalog.Army, compositionID, armyRuleID string) error {
	if compositionID != "" {
		if _, ok := army.Composition(compositionID); !ok {
			return errors.Validationf("unknown composition %q for army %q", compositionID, army.ID)
		}
	}
	if armyRuleID != "" {
		if _, ok := army.ArmyRule(armyRuleID); !ok {
			return errors.Validationf("unknown army rule %q for army %q", armyRuleID, army.ID)
		}
	}
	return nil
}
