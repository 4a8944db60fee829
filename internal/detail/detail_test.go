package detail_test

import (
	"fmt"
	"testing"

	"github.com/abrezinsky/armyroster/internal/detail"
	"github.com/abrezinsky/armyroster/internal/entry"
	"github.com/abrezinsky/armyroster/internal/models"
	"github.com/abrezinsky/armyroster/internal/stats"
)

func testIndex() *stats.Index {
	return stats.BuildIndex(stats.Prepare([]stats.StatLine{
		{
			Name:            "Knight",
			Characteristics: stats.Characteristics{M: "4", WS: "4", BS: "3", S: "3", T: "3", W: "1", I: "3", A: "1", Ld: "8"},
			MountIDs:        stats.StringList{"warhorse"},
			SpecialRules:    stats.StringList{"Lance Formation"},
			TroopType:       "Heavy Cavalry",
			BaseSize:        "30x60",
			Armour:          "2+",
		},
		{Name: "Warhorse", Characteristics: stats.Characteristics{M: "8", WS: "3", S: "3", I: "3", A: "1"}},
	}))
}

func testDraft() models.RosterDraft {
	return models.RosterDraft{
		ArmyID:      "empire",
		Name:        "Test",
		PointsLimit: 1000,
		Entries: []models.RosterEntry{
			{
				ID: "k", UnitID: "knight", Name: "Knights", Category: models.CategorySpecial,
				UnitSize: 5, PointsPerModel: 20, BasePoints: 100, TotalPoints: 130,
				Options: []models.SelectedOption{
					{ID: "options-shield", Name: "Shields", Points: 5, Group: models.GroupOptions},
					{ID: "mounts-warhorse", Name: "Barded Warhorse", Points: 15, Group: models.GroupMounts, SourceID: "warhorse"},
					{ID: "command-champion", Name: "Champion", Points: 10, Group: models.GroupCommand},
					{ID: "options-shield-2", Name: "Shields", Points: 0, Group: models.GroupOptions},
				},
			},
			{ID: "s", UnitID: "spearmen", Name: "Spearmen", Category: models.CategoryCore, UnitSize: 20, PointsPerModel: 5, BasePoints: 100, TotalPoints: 100},
			{ID: "c", UnitID: "cannon", Name: "Cannon", Category: "bogus", UnitSize: 1, PointsPerModel: 120, BasePoints: 120, TotalPoints: 120},
		},
	}
}

func TestBuild_Totals(t *testing.T) {
	v := detail.Build(testDraft(), testIndex(), nil)

	if len(v.Categories) != len(models.Categories) {
		t.Fatalf("expected %d categories, got %d", len(models.Categories), len(v.Categories))
	}
	if v.TotalPoints != 350 {
		t.Errorf("expected total 350, got %v", v.TotalPoints)
	}
	if v.RemainingPoints != 650 || v.OverLimit {
		t.Errorf("expected 650 remaining, got %v (over=%v)", v.RemainingPoints, v.OverLimit)
	}

	core := v.Categories[1]
	if core.Category != models.CategoryCore || core.Total != 220 || len(core.Entries) != 2 {
		t.Errorf("expected invalid category folded into core, got %+v", core)
	}
	if v.Math.CoreRequirementMet || !core.Section.Warning {
		t.Errorf("expected core warning with 220 of 250")
	}
	if v.Categories[2].Section.Spent != 130 {
		t.Errorf("expected special section spend 130, got %v", v.Categories[2].Section.Spent)
	}
}

func TestBuild_EntryRows(t *testing.T) {
	v := detail.Build(testDraft(), testIndex(), nil)
	knights := v.Categories[2].Entries[0]

	if knights.Stats == nil || knights.Stats.Name != "Knight" {
		t.Fatalf("expected knights to resolve, got %+v", knights.Stats)
	}
	if len(knights.StatRows) != 2 {
		t.Fatalf("expected unit and mount rows, got %+v", knights.StatRows)
	}
	if knights.StatRows[0].Mount || !knights.StatRows[1].Mount || knights.StatRows[1].M != "8" {
		t.Errorf("unexpected stat rows: %+v", knights.StatRows)
	}

	if len(knights.Options) != 3 {
		t.Fatalf("expected 3 option groups, got %+v", knights.Options)
	}
	wantOrder := []models.GroupKey{models.GroupCommand, models.GroupMounts, models.GroupOptions}
	for i, g := range wantOrder {
		if knights.Options[i].Group != g {
			t.Errorf("option group %d: expected %s, got %s", i, g, knights.Options[i].Group)
		}
	}
	if names := knights.Options[2].Names; len(names) != 1 || names[0] != "Shields" {
		t.Errorf("expected deduplicated shields, got %v", names)
	}

	meta := map[string]string{}
	for _, m := range knights.Meta {
		meta[m.Label] = m.Value
	}
	if meta[detail.MetaUnitSize] != "5" || meta[detail.MetaBaseSize] != "30x60" || meta[detail.MetaArmour] != "2+" {
		t.Errorf("unexpected meta rows: %+v", knights.Meta)
	}
	if len(knights.SpecialRules) != 1 {
		t.Errorf("expected special rules, got %v", knights.SpecialRules)
	}
}

func TestBuild_MissingStats(t *testing.T) {
	v := detail.Build(testDraft(), testIndex(), nil)
	spearmen := v.Categories[1].Entries[0]

	if spearmen.Stats != nil {
		t.Errorf("expected no stats for spearmen, got %+v", spearmen.Stats)
	}
	if len(spearmen.StatRows) != 0 {
		t.Errorf("expected empty stat rows, got %+v", spearmen.StatRows)
	}
	if !v.StatsAvailable {
		t.Error("expected statsAvailable when the faction has a table")
	}

	noTable := detail.Build(testDraft(), nil, nil)
	if noTable.StatsAvailable {
		t.Error("expected statsAvailable false without a stat table")
	}
}

func TestBuild_OverLimit(t *testing.T) {
	d := testDraft()
	d.PointsLimit = 300

	v := detail.Build(d, nil, nil)
	if !v.OverLimit || v.RemainingPoints != -50 {
		t.Errorf("expected over limit by 50, got %v", v.RemainingPoints)
	}
}

func TestBuild_RecomputesTypedTotals(t *testing.T) {
	d := models.RosterDraft{
		PointsLimit: 2000,
		Entries: []models.RosterEntry{
			{ID: "a", Category: models.CategoryCore, UnitSize: 20, PointsPerModel: 8,
				Options: []models.SelectedOption{{ID: "o", Name: "Halberds", Points: 40, Group: models.GroupEquipment}}},
		},
	}

	v := detail.Build(d, nil, nil)
	got := v.Categories[1].Entries[0].Entry
	if got.BasePoints != 160 || got.TotalPoints != 200 {
		t.Errorf("expected base 160 total 200, got base %v total %v", got.BasePoints, got.TotalPoints)
	}
	if v.Categories[1].Total != 200 || v.TotalPoints != 200 {
		t.Errorf("expected core total 200, got %v (overall %v)", v.Categories[1].Total, v.TotalPoints)
	}
	if v.Math.CoreRequirementMet {
		t.Error("200 core points must not meet the 500 minimum")
	}
}

func TestBuild_KeepsExplicitOverride(t *testing.T) {
	override := 75.0
	d := models.RosterDraft{
		PointsLimit: 2000,
		Entries: []models.RosterEntry{
			{ID: "a", Category: models.CategoryRare, UnitSize: 1, PointsPerModel: 100, TotalOverride: &override},
		},
	}

	v := detail.Build(d, nil, nil)
	if v.TotalPoints != 75 {
		t.Errorf("expected override total 75, got %v", v.TotalPoints)
	}
}

func TestBuild_UsesInjectedIDs(t *testing.T) {
	n := 0
	norm := entry.NewNormalizer(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
	d := models.RosterDraft{
		PointsLimit: 1000,
		Entries: []models.RosterEntry{
			{Category: models.CategoryCore, UnitSize: 10, PointsPerModel: 5},
		},
	}

	v := detail.Build(d, nil, norm)
	if got := v.Categories[1].Entries[0].Entry.ID; got != "id-1" {
		t.Errorf("expected injected id id-1, got %q", got)
	}
}
