package options_test

import (
	"math"
	"testing"

	"github.com/abrezinsky/armyroster/internal/models"
	"github.com/abrezinsky/armyroster/internal/options"
)

func testUnit() models.CatalogUnit {
	return models.CatalogUnit{
		ID:             "state-troops",
		Name:           "State Troops",
		Category:       models.CategoryCore,
		PointsPerModel: 8,
		Minimum:        10,
		Maximum:        40,
		OptionGroups: []models.OptionGroup{
			{
				Key:  models.GroupCommand,
				Kind: models.SelectionCheckbox,
				Options: []models.CatalogOption{
					{ID: "champion", Name: "Champion", Points: 10},
					{ID: "standard", Name: "Standard Bearer", Points: 10, Default: true},
					{ID: "musician", Name: "Musician", Points: 5, Default: true},
				},
			},
			{
				Key:  models.GroupEquipment,
				Kind: models.SelectionRadio,
				Options: []models.CatalogOption{
					{ID: "spears", Name: "Spears", Points: 0},
					{ID: "halberds", Name: "Halberds", Points: 2, PerModel: true, Default: true},
					{ID: "handguns", Name: "Handguns", Points: 3, PerModel: true},
				},
			},
			{
				Key:  models.GroupArmor,
				Kind: models.SelectionRadio,
				Options: []models.CatalogOption{
					{ID: "light", Name: "Light Armour", Points: 0},
					{ID: "heavy", Name: "Heavy Armour", Points: 1, PerModel: true},
				},
			},
		},
	}
}

func TestClampUnitSize(t *testing.T) {
	tests := []struct {
		name     string
		size     float64
		min, max int
		expected int
	}{
		{"within bounds", 20, 10, 40, 20},
		{"below minimum", 3, 10, 40, 10},
		{"above maximum", 55, 10, 40, 40},
		{"unbounded maximum", 500, 5, 0, 500},
		{"fraction floored", 12.9, 10, 40, 12},
		{"NaN", math.NaN(), 10, 40, 10},
		{"infinite", math.Inf(1), 10, 40, 10},
		{"minimum defaults to one", 0, 0, 0, 1},
		{"negative", -4, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := options.ClampUnitSize(tt.size, tt.min, tt.max)
			if got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestOptionCost_Scaling(t *testing.T) {
	perModel := models.CatalogOption{Points: 2, PerModel: true}
	flat := models.CatalogOption{Points: 15}

	for _, n := range []int{1, 5, 20} {
		if got := options.OptionCost(perModel, n); got != 2*float64(n) {
			t.Errorf("per-model cost at size %d: expected %v, got %v", n, 2*n, got)
		}
		if got := options.OptionCost(flat, n); got != 15 {
			t.Errorf("flat cost at size %d: expected 15, got %v", n, got)
		}
	}
}

func TestDefaultSelection(t *testing.T) {
	unit := testUnit()
	sel := options.DefaultSelection(unit.OptionGroups)

	cmd := sel[models.GroupCommand]
	if len(cmd) != 2 || cmd[0] != "standard" || cmd[1] != "musician" {
		t.Errorf("expected default command options, got %v", cmd)
	}
	if eq := sel[models.GroupEquipment]; len(eq) != 1 || eq[0] != "halberds" {
		t.Errorf("expected flagged default halberds, got %v", eq)
	}
	if ar := sel[models.GroupArmor]; len(ar) != 1 || ar[0] != "light" {
		t.Errorf("expected first armor option, got %v", ar)
	}
}

func TestSelected_RadioExclusivity(t *testing.T) {
	unit := testUnit()
	sel := options.Selection{
		models.GroupEquipment: {"handguns", "halberds", "spears"},
	}

	selected := options.Selected(unit.OptionGroups, sel, 10)
	if len(selected) != 1 {
		t.Fatalf("expected 1 selected option, got %d", len(selected))
	}
	if selected[0].SourceID != "handguns" {
		t.Errorf("expected first selected id to win, got %q", selected[0].SourceID)
	}
	if selected[0].ID != "equipment-handguns" {
		t.Errorf("expected id scoped by group, got %q", selected[0].ID)
	}
	if selected[0].Points != 30 || selected[0].BaseCost != 3 {
		t.Errorf("expected points 30 base 3, got %v / %v", selected[0].Points, selected[0].BaseCost)
	}
}

func TestSelected_IgnoresUnknownAndDuplicateIDs(t *testing.T) {
	unit := testUnit()
	sel := options.Selection{
		models.GroupCommand: {"champion", "ghost", "champion"},
		"unknown-group":     {"champion"},
	}

	selected := options.Selected(unit.OptionGroups, sel, 10)
	if len(selected) != 1 {
		t.Fatalf("expected 1 option, got %d: %+v", len(selected), selected)
	}
	if got := options.TotalCost(unit.OptionGroups, sel, 10); got != 10 {
		t.Errorf("expected total 10, got %v", got)
	}
}

func TestPrice_PerModelScenario(t *testing.T) {
	unit := testUnit()
	cfg := options.Configuration{
		UnitSize:  20,
		Selection: options.Selection{models.GroupEquipment: {"halberds"}},
	}

	q := options.Price(unit, cfg)
	if q.BasePoints != 160 {
		t.Errorf("expected base 160, got %v", q.BasePoints)
	}
	if q.OptionPoints != 40 {
		t.Errorf("expected option points 40, got %v", q.OptionPoints)
	}
	if q.TotalPoints != 200 {
		t.Errorf("expected total 200, got %v", q.TotalPoints)
	}
}

func TestPrice_ClampsBeforeCosting(t *testing.T) {
	unit := testUnit()
	cfg := options.Configuration{
		UnitSize:  100,
		Selection: options.Selection{models.GroupEquipment: {"halberds"}},
	}

	q := options.Price(unit, cfg)
	if q.UnitSize != 40 {
		t.Fatalf("expected unit size clamped to 40, got %d", q.UnitSize)
	}
	if q.OptionPoints != 80 {
		t.Errorf("expected option cost at clamped size, got %v", q.OptionPoints)
	}
}

func TestNewConfiguration(t *testing.T) {
	cfg := options.NewConfiguration(testUnit())
	if cfg.UnitSize != 10 {
		t.Errorf("expected unit minimum as size, got %d", cfg.UnitSize)
	}
	if len(cfg.Selection[models.GroupEquipment]) != 1 {
		t.Errorf("expected equipment default, got %v", cfg.Selection[models.GroupEquipment])
	}
}

func TestHydrateSelection_MatchesBySourceIDThenName(t *testing.T) {
	unit := testUnit()
	stored := []models.SelectedOption{
		{ID: "equipment-handguns", Name: "Handguns", Group: models.GroupEquipment, SourceID: "handguns"},
		{ID: "x", Name: "Champion", Group: models.GroupCommand},
		{ID: "y", Name: "Heavy Armour"},
	}

	sel := options.HydrateSelection(unit.OptionGroups, stored)

	if eq := sel[models.GroupEquipment]; len(eq) != 1 || eq[0] != "handguns" {
		t.Errorf("expected handguns by source id, got %v", eq)
	}
	if cmd := sel[models.GroupCommand]; len(cmd) != 1 || cmd[0] != "champion" {
		t.Errorf("expected champion by name, got %v", cmd)
	}
	if ar := sel[models.GroupArmor]; len(ar) != 1 || ar[0] != "heavy" {
		t.Errorf("expected legacy option without group to match by name, got %v", ar)
	}
}

func TestHydrateSelection_RadioFallsBackToDefault(t *testing.T) {
	unit := testUnit()
	stored := []models.SelectedOption{
		{ID: "equipment-removed", Name: "Removed Weapon", Group: models.GroupEquipment, SourceID: "removed"},
	}

	sel := options.HydrateSelection(unit.OptionGroups, stored)

	if eq := sel[models.GroupEquipment]; len(eq) != 1 || eq[0] != "halberds" {
		t.Errorf("expected fallback to default halberds, got %v", eq)
	}
	if cmd := sel[models.GroupCommand]; len(cmd) != 0 {
		t.Errorf("expected checkbox group to stay empty, got %v", cmd)
	}
}

func TestMergeSelection(t *testing.T) {
	unit := testUnit()
	base := options.DefaultSelection(unit.OptionGroups)

	merged := options.MergeSelection(unit.OptionGroups, base, options.Selection{
		models.GroupCommand:   {"champion"},
		models.GroupEquipment: {},
	})

	if cmd := merged[models.GroupCommand]; len(cmd) != 1 || cmd[0] != "champion" {
		t.Errorf("expected command replaced, got %v", cmd)
	}
	if eq := merged[models.GroupEquipment]; len(eq) != 1 || eq[0] != "halberds" {
		t.Errorf("expected emptied radio group to fall back to halberds, got %v", eq)
	}
	if ar := merged[models.GroupArmor]; len(ar) != len(base[models.GroupArmor]) {
		t.Errorf("expected untouched armour group kept, got %v", ar)
	}
	if cmd := base[models.GroupCommand]; len(cmd) != 2 {
		t.Errorf("base selection must not change, got %v", cmd)
	}
}

func TestBuildEntry(t *testing.T) {
	unit := testUnit()
	cfg := options.Configuration{
		UnitSize:  20,
		Selection: options.Selection{models.GroupEquipment: {"halberds"}},
	}

	entry := options.BuildEntry(unit, cfg, options.EntryDetails{ID: "e1", Notes: "front line"})

	if entry.ID != "e1" || entry.UnitID != "state-troops" || entry.Name != "State Troops" {
		t.Errorf("unexpected identity fields: %+v", entry)
	}
	if entry.Category != models.CategoryCore {
		t.Errorf("expected unit category, got %q", entry.Category)
	}
	if entry.TotalPoints != 200 || entry.BasePoints != 160 {
		t.Errorf("expected 160/200, got %v/%v", entry.BasePoints, entry.TotalPoints)
	}

	edited := options.EditConfiguration(unit, entry)
	if edited.UnitSize != 20 || edited.Selection[models.GroupEquipment][0] != "halberds" {
		t.Errorf("expected round trip through edit configuration, got %+v", edited)
	}
}
