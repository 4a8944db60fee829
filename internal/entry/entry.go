// Package entry normalizes roster entries and drafts read from untrusted
// sources (local storage, clipboard, imports) into their canonical shape.
//
// Normalization never fails. Every field falls back to a safe default on
// its own, and the arithmetic invariants are always re-established:
//
//	basePoints  = max(0, pointsPerModel * unitSize)
//	totalPoints = basePoints + sum(option points), unless TotalOverride is set
package entry

import (
	"encoding/json"
	"math"

	"github.com/google/uuid"

	"github.com/abrezinsky/armyroster/internal/coerce"
	"github.com/abrezinsky/armyroster/internal/models"
)

// UnknownUnitID is assigned to entries that lost their catalog reference
const UnknownUnitID = "unknown-unit"

// IDGenerator produces ids for entries and options that arrive without one
type IDGenerator func() string

// RandomID generates a random UUID-based id
func RandomID() string {
	return uuid.NewString()
}

// Normalizer normalizes entries and drafts with an injectable id source
type Normalizer struct {
	newID IDGenerator
}

// NewNormalizer creates a Normalizer. A nil generator uses RandomID.
func NewNormalizer(gen IDGenerator) *Normalizer {
	if gen == nil {
		gen = RandomID
	}
	return &Normalizer{newID: gen}
}

var defaultNormalizer = NewNormalizer(nil)

// Normalize normalizes a single entry using random ids
func Normalize(raw any) models.RosterEntry {
	return defaultNormalizer.Entry(raw)
}

// Entry normalizes one roster entry. raw may be a decoded JSON object,
// raw JSON bytes, or an already typed entry.
func (n *Normalizer) Entry(raw any) models.RosterEntry {
	rec := toRecord(raw)
	if rec == nil {
		rec = map[string]any{}
	}

	opts := coerce.List(rec["options"])
	selected := make([]models.SelectedOption, 0, len(opts))
	for _, item := range opts {
		if o := coerce.Record(item); o != nil {
			selected = append(selected, n.Option(o))
		}
	}

	unitSize, ok := coerce.Integer(rec["unitSize"])
	if !ok || unitSize <= 0 {
		unitSize = 1
	}

	ppm, ok := coerce.Number(rec["pointsPerModel"])
	if !ok || ppm <= 0 {
		base, hasBase := coerce.Number(rec["basePoints"])
		if !hasBase {
			base = coerce.NumberOr(rec["points"], 0)
		}
		ppm = math.Max(0, base/float64(unitSize))
	}
	basePoints := math.Max(0, ppm*float64(unitSize))

	total := basePoints
	for _, o := range selected {
		total += o.Points
	}
	override := totalOverride(raw, rec, total)
	if override != nil {
		total = *override
	}

	category := models.Category(coerce.Text(rec["category"]))
	if !category.Valid() {
		category = models.CategoryCore
	}

	id := coerce.Text(rec["id"])
	if id == "" {
		id = n.newID()
	}
	unitID := coerce.Text(rec["unitId"])
	if unitID == "" {
		unitID = UnknownUnitID
	}
	name, _ := rec["name"].(string)
	notes, _ := rec["notes"].(string)

	return models.RosterEntry{
		ID:             id,
		UnitID:         unitID,
		Name:           name,
		Category:       category,
		UnitSize:       unitSize,
		PointsPerModel: ppm,
		BasePoints:     basePoints,
		Options:        selected,
		TotalPoints:    total,
		Notes:          notes,
		Owned:          coerce.Bool(rec["owned"]),
		TotalOverride:  override,
	}
}

// totalOverride returns the explicit total carried by raw, if any. Typed
// entries only carry one through TotalOverride. Decoded records carry one when
// totalPoints is a number that differs from the derived total.
func totalOverride(raw any, rec map[string]any, derived float64) *float64 {
	var typed *models.RosterEntry
	switch e := raw.(type) {
	case models.RosterEntry:
		typed = &e
	case *models.RosterEntry:
		if e == nil {
			return nil
		}
		typed = e
	}
	if typed != nil {
		if typed.TotalOverride == nil {
			return nil
		}
		v := *typed.TotalOverride
		return &v
	}

	v, ok := coerce.Numeric(rec["totalPoints"])
	if !ok || v == derived {
		return nil
	}
	return &v
}

// Option coerces a stored option. Points is taken as the already scaled
// contribution and defaults to zero.
func (n *Normalizer) Option(rec map[string]any) models.SelectedOption {
	id := coerce.Text(rec["id"])
	if id == "" {
		id = n.newID()
	}
	name, _ := rec["name"].(string)
	note, _ := rec["note"].(string)
	pts := coerce.NumberOr(rec["points"], 0)

	return models.SelectedOption{
		ID:       id,
		Name:     name,
		Points:   pts,
		Group:    models.GroupKey(coerce.Text(rec["group"])),
		Note:     note,
		PerModel: coerce.Bool(rec["perModel"]),
		BaseCost: coerce.NumberOr(rec["baseCost"], pts),
		SourceID: coerce.Text(rec["sourceId"]),
	}
}

// Entries normalizes a list of entries. Elements that are not objects are
// dropped.
func (n *Normalizer) Entries(raw any) []models.RosterEntry {
	if typed, ok := raw.([]models.RosterEntry); ok {
		out := make([]models.RosterEntry, 0, len(typed))
		for _, e := range typed {
			out = append(out, n.Entry(e))
		}
		return out
	}

	items := coerce.List(toValue(raw))
	out := make([]models.RosterEntry, 0, len(items))
	for _, item := range items {
		if rec := coerce.Record(item); rec != nil {
			out = append(out, n.Entry(rec))
		}
	}
	return out
}

// Draft normalizes a stored or imported draft
func (n *Normalizer) Draft(raw any) models.RosterDraft {
	rec := toRecord(raw)
	if rec == nil {
		rec = map[string]any{}
	}

	limit := coerce.NumberOr(rec["pointsLimit"], 0)
	if limit < 0 {
		limit = 0
	}

	draft := models.RosterDraft{
		ArmyID:        coerce.Text(rec["armyId"]),
		CompositionID: coerce.Text(rec["compositionId"]),
		ArmyRuleID:    coerce.Text(rec["armyRuleId"]),
		PointsLimit:   limit,
	}
	switch d := raw.(type) {
	case models.RosterDraft:
		draft.Entries = n.Entries(d.Entries)
	case *models.RosterDraft:
		if d == nil {
			draft.Entries = []models.RosterEntry{}
			break
		}
		draft.Entries = n.Entries(d.Entries)
	default:
		draft.Entries = n.Entries(rec["entries"])
	}
	draft.Name, _ = rec["name"].(string)
	draft.Description, _ = rec["description"].(string)
	if id, ok := coerce.Integer(rec["id"]); ok && id > 0 {
		draft.ID = int64(id)
	}
	draft.UpdatedAt, _ = rec["updatedAt"].(string)
	return draft
}

// NormalizeDraft normalizes a draft using random ids
func NormalizeDraft(raw any) models.RosterDraft {
	return defaultNormalizer.Draft(raw)
}

// toRecord returns raw as a generic JSON object
func toRecord(raw any) map[string]any {
	return coerce.Record(toValue(raw))
}

// toValue converts typed values and raw JSON into their generic decoded form
func toValue(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case map[string]any, []any:
		return v
	case json.RawMessage:
		return decode(v)
	case []byte:
		return decode(v)
	case string:
		return decode([]byte(v))
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return decode(b)
	}
}

func decode(b []byte) any {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	return v
}
