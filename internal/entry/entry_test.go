package entry_test

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/abrezinsky/armyroster/internal/entry"
	"github.com/abrezinsky/armyroster/internal/models"
)

// sequence returns a deterministic id generator
func sequence() entry.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func TestEntry_PerModelScenario(t *testing.T) {
	n := entry.NewNormalizer(sequence())
	e := n.Entry(map[string]any{
		"id":             "e1",
		"unitId":         "state-troops",
		"name":           "State Troops",
		"category":       "core",
		"unitSize":       float64(20),
		"pointsPerModel": float64(8),
		"options": []any{
			map[string]any{"id": "equipment-halberds", "name": "Halberds", "points": float64(40), "group": "equipment", "perModel": true, "baseCost": float64(2), "sourceId": "halberds"},
		},
	})

	if e.BasePoints != 160 {
		t.Errorf("expected basePoints 160, got %v", e.BasePoints)
	}
	if e.TotalPoints != 200 {
		t.Errorf("expected totalPoints 200, got %v", e.TotalPoints)
	}
	if len(e.Options) != 1 || e.Options[0].SourceID != "halberds" || e.Options[0].Group != models.GroupEquipment {
		t.Errorf("unexpected options: %+v", e.Options)
	}
}

func TestEntry_Defaults(t *testing.T) {
	n := entry.NewNormalizer(sequence())
	e := n.Entry(map[string]any{})

	expected := models.RosterEntry{
		ID:             "gen-1",
		UnitID:         entry.UnknownUnitID,
		Category:       models.CategoryCore,
		UnitSize:       1,
		PointsPerModel: 0,
		BasePoints:     0,
		Options:        []models.SelectedOption{},
		TotalPoints:    0,
	}
	if !reflect.DeepEqual(e, expected) {
		t.Errorf("expected %+v, got %+v", expected, e)
	}
}

func TestEntry_UnknownCategoryBecomesCore(t *testing.T) {
	e := entry.Normalize(map[string]any{"category": "unknown-category"})
	if e.Category != models.CategoryCore {
		t.Errorf("expected core, got %q", e.Category)
	}

	e = entry.Normalize(map[string]any{"category": "rare"})
	if e.Category != models.CategoryRare {
		t.Errorf("expected rare to be kept, got %q", e.Category)
	}
}

func TestEntry_UnitSize(t *testing.T) {
	tests := []struct {
		raw      any
		expected int
	}{
		{float64(12), 12},
		{float64(12.7), 12},
		{"15", 15},
		{"15 models", 15},
		{float64(0), 1},
		{float64(-3), 1},
		{"abc", 1},
		{nil, 1},
		{true, 1},
		{float64(1e30), math.MaxInt32},
	}

	for _, tt := range tests {
		e := entry.Normalize(map[string]any{"unitSize": tt.raw})
		if e.UnitSize != tt.expected {
			t.Errorf("unitSize %v: expected %d, got %d", tt.raw, tt.expected, e.UnitSize)
		}
	}
}

func TestEntry_PointsPerModelDerivation(t *testing.T) {
	tests := []struct {
		name        string
		raw         map[string]any
		expectedPPM float64
		expectedBP  float64
	}{
		{"explicit per-model wins", map[string]any{"unitSize": float64(10), "pointsPerModel": float64(5), "basePoints": float64(999)}, 5, 50},
		{"derived from basePoints", map[string]any{"unitSize": float64(10), "basePoints": float64(70)}, 7, 70},
		{"derived from legacy points", map[string]any{"unitSize": float64(4), "points": float64(100)}, 25, 100},
		{"zero per-model falls back", map[string]any{"unitSize": float64(2), "pointsPerModel": float64(0), "basePoints": float64(30)}, 15, 30},
		{"negative base clamps", map[string]any{"unitSize": float64(2), "basePoints": float64(-30)}, 0, 0},
		{"string per-model", map[string]any{"unitSize": float64(3), "pointsPerModel": "6"}, 6, 18},
		{"nothing", map[string]any{"unitSize": float64(3)}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entry.Normalize(tt.raw)
			if e.PointsPerModel != tt.expectedPPM {
				t.Errorf("expected pointsPerModel %v, got %v", tt.expectedPPM, e.PointsPerModel)
			}
			if e.BasePoints != tt.expectedBP {
				t.Errorf("expected basePoints %v, got %v", tt.expectedBP, e.BasePoints)
			}
		})
	}
}

func TestEntry_TotalPointsOverride(t *testing.T) {
	base := map[string]any{
		"unitSize":       float64(10),
		"pointsPerModel": float64(5),
		"options":        []any{map[string]any{"id": "o", "points": float64(20)}},
	}

	e := entry.Normalize(base)
	if e.TotalPoints != 70 {
		t.Errorf("expected recomputed total 70, got %v", e.TotalPoints)
	}

	base["totalPoints"] = float64(123)
	e = entry.Normalize(base)
	if e.TotalPoints != 123 {
		t.Errorf("expected numeric override 123, got %v", e.TotalPoints)
	}

	base["totalPoints"] = "123"
	e = entry.Normalize(base)
	if e.TotalPoints != 70 {
		t.Errorf("expected string override to be ignored, got %v", e.TotalPoints)
	}
}

func TestEntry_TypedTotals(t *testing.T) {
	typed := models.RosterEntry{
		ID: "t", UnitSize: 20, PointsPerModel: 8,
		Options: []models.SelectedOption{{ID: "o", Points: 40}},
	}

	e := entry.Normalize(typed)
	if e.TotalPoints != 200 || e.TotalOverride != nil {
		t.Errorf("expected recomputed total 200 without override, got %v (%v)", e.TotalPoints, e.TotalOverride)
	}

	typed.TotalPoints = 999
	if e = entry.Normalize(&typed); e.TotalPoints != 200 {
		t.Errorf("expected a stale typed total to be recomputed, got %v", e.TotalPoints)
	}

	override := 150.0
	typed.TotalOverride = &override
	e = entry.Normalize(typed)
	if e.TotalPoints != 150 || e.TotalOverride == nil || *e.TotalOverride != 150 {
		t.Errorf("expected override 150, got %v (%v)", e.TotalPoints, e.TotalOverride)
	}
	if e.TotalOverride == typed.TotalOverride {
		t.Error("override must be copied, not shared")
	}
}

func TestEntry_StoredOverrideSurvivesRoundTrip(t *testing.T) {
	stored := entry.Normalize(map[string]any{"id": "a", "unitSize": float64(2), "pointsPerModel": float64(10), "totalPoints": float64(5)})
	if stored.TotalOverride == nil || stored.TotalPoints != 5 {
		t.Fatalf("expected override 5, got %+v", stored)
	}

	b, err := json.Marshal(stored)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	reloaded := entry.Normalize(json.RawMessage(b))
	if reloaded.TotalPoints != 5 || reloaded.TotalOverride == nil {
		t.Errorf("expected override to survive storage, got %+v", reloaded)
	}

	consistent := entry.Normalize(map[string]any{"unitSize": float64(2), "pointsPerModel": float64(10), "totalPoints": float64(20)})
	if consistent.TotalOverride != nil {
		t.Errorf("a total matching the derived one is not an override, got %v", *consistent.TotalOverride)
	}
}

func TestDraft_TypedEntriesRecomputed(t *testing.T) {
	n := entry.NewNormalizer(sequence())
	d := n.Draft(models.RosterDraft{
		ArmyID:      "empire",
		PointsLimit: 1000,
		Entries:     []models.RosterEntry{{Category: models.CategoryCore, UnitSize: 10, PointsPerModel: 5}},
	})

	if len(d.Entries) != 1 || d.Entries[0].TotalPoints != 50 || d.Entries[0].ID != "gen-1" {
		t.Errorf("unexpected typed draft entries: %+v", d.Entries)
	}
}

func TestEntry_OptionCoercion(t *testing.T) {
	n := entry.NewNormalizer(sequence())
	e := n.Entry(map[string]any{
		"options": []any{
			map[string]any{"name": "Shield", "points": "bad"},
			"not an option",
		},
	})

	if len(e.Options) != 1 {
		t.Fatalf("expected 1 option, got %d", len(e.Options))
	}
	o := e.Options[0]
	if o.ID != "gen-1" || o.Points != 0 || o.Group != "" || o.Name != "Shield" {
		t.Errorf("unexpected option: %+v", o)
	}
	if e.ID != "gen-2" {
		t.Errorf("expected entry id generated after option id, got %q", e.ID)
	}
}

func TestEntry_Idempotent(t *testing.T) {
	inputs := []any{
		map[string]any{},
		map[string]any{"unitSize": "7", "basePoints": float64(10), "category": "bogus", "owned": "yes"},
		map[string]any{"unitSize": float64(3), "points": float64(10), "options": []any{map[string]any{"name": "x", "points": float64(1.5)}}},
		map[string]any{"id": "e", "unitId": "u", "name": "N", "category": "allies", "unitSize": float64(5), "pointsPerModel": float64(11), "totalPoints": float64(2), "owned": true, "notes": "n"},
	}

	n := entry.NewNormalizer(sequence())
	for i, raw := range inputs {
		once := n.Entry(raw)
		twice := n.Entry(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("input %d not idempotent:\n once: %+v\ntwice: %+v", i, once, twice)
		}
	}
}

func TestEntry_ArithmeticInvariant(t *testing.T) {
	raw := map[string]any{
		"unitSize":       float64(13),
		"pointsPerModel": float64(7.5),
		"options": []any{
			map[string]any{"id": "a", "points": float64(26)},
			map[string]any{"id": "b", "points": float64(10)},
		},
	}

	e := entry.Normalize(raw)
	if e.BasePoints != e.PointsPerModel*float64(e.UnitSize) {
		t.Errorf("basePoints %v != %v * %d", e.BasePoints, e.PointsPerModel, e.UnitSize)
	}
	sum := e.BasePoints
	for _, o := range e.Options {
		sum += o.Points
	}
	if e.TotalPoints != sum {
		t.Errorf("totalPoints %v != %v", e.TotalPoints, sum)
	}
}

func TestEntry_AcceptsJSONAndTypedValues(t *testing.T) {
	typed := models.RosterEntry{ID: "t", UnitID: "u", Name: "Typed", Category: models.CategorySpecial, UnitSize: 2, PointsPerModel: 10}
	e := entry.Normalize(typed)
	if e.ID != "t" || e.BasePoints != 20 || e.Category != models.CategorySpecial {
		t.Errorf("unexpected entry from typed value: %+v", e)
	}

	raw := json.RawMessage(`{"id":"j","unitSize":4,"pointsPerModel":3}`)
	e = entry.Normalize(raw)
	if e.ID != "j" || e.BasePoints != 12 {
		t.Errorf("unexpected entry from raw JSON: %+v", e)
	}

	e = entry.Normalize("not json")
	if e.UnitID != entry.UnknownUnitID {
		t.Errorf("expected defaults for garbage input, got %+v", e)
	}
}

func TestDraft(t *testing.T) {
	n := entry.NewNormalizer(sequence())
	d := n.Draft(map[string]any{
		"armyId":        "empire",
		"compositionId": "grand-army",
		"pointsLimit":   float64(-100),
		"name":          "My Army",
		"entries": []any{
			map[string]any{"id": "a", "category": "core", "unitSize": float64(10), "pointsPerModel": float64(5)},
			"garbage",
			map[string]any{"id": "b", "category": "nope"},
		},
	})

	if d.ArmyID != "empire" || d.CompositionID != "grand-army" || d.Name != "My Army" {
		t.Errorf("unexpected draft fields: %+v", d)
	}
	if d.PointsLimit != 0 {
		t.Errorf("expected negative limit clamped to 0, got %v", d.PointsLimit)
	}
	if len(d.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(d.Entries))
	}
	if d.Entries[1].Category != models.CategoryCore {
		t.Errorf("expected invalid category normalized to core, got %q", d.Entries[1].Category)
	}
}
