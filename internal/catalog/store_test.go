package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abrezinsky/armyroster/internal/catalog"
	"github.com/abrezinsky/armyroster/internal/logger"
	"github.com/abrezinsky/armyroster/internal/models"
)

const empireCatalog = `{
  "name": "Empire",
  "compositions": [
    {"id": "grand-army", "name": "Grand Army"},
    {"id": "city-guard", "name": "City Guard", "units": ["halberdiers", "captain"]}
  ],
  "armyRules": [{"id": "drilled", "name": "Drilled", "description": "Reform for free"}],
  "characters": [
    {"id": "captain", "name_en": "Captain", "points": 50, "mounts": [{"id": "warhorse", "name": "Warhorse", "points": 12}]}
  ],
  "core": [
    {"id": "halberdiers", "name": "Halberdiers", "points": 6, "minimum": 10,
     "command": [{"id": "champion", "name": "Champion", "points": 10}]},
    {"id": "handgunners", "name": "Handgunners", "points": 8, "minimum": 10}
  ],
  "special": [
    {"id": "knights", "name": "Knights", "points": 22, "minimum": 5, "maximum": 12}
  ]
}`

const empireStats = `
- name: Captain
  M: 4
  WS: 5
- name: Halberdier
  M: 4
  WS: 3
- name: Warhorse
  M: 8
`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func newDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, catalog.CatalogDir, "empire.json"), empireCatalog)
	writeFile(t, filepath.Join(dir, catalog.StatsDir, "empire.yaml"), empireStats)
	writeFile(t, filepath.Join(dir, catalog.CatalogDir, "dwarfs.json"), `{"core": [{"name": "Warriors", "points": 9}]}`)
	writeFile(t, filepath.Join(dir, catalog.CatalogDir, "broken.json"), `{"core": [`)
	writeFile(t, filepath.Join(dir, catalog.CatalogDir, "README.txt"), "not a catalog")
	return dir
}

func loadStore(t *testing.T, dir string) *catalog.Store {
	t.Helper()
	s := catalog.NewStore(logger.Discard(), dir)
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s
}

func TestStore_LoadSkipsBrokenFiles(t *testing.T) {
	s := loadStore(t, newDataDir(t))

	armies := s.Armies()
	if len(armies) != 2 {
		t.Fatalf("expected 2 armies, got %d: %+v", len(armies), armies)
	}
	if armies[0].ID != "dwarfs" || armies[1].ID != "empire" {
		t.Errorf("expected armies sorted by name, got %s, %s", armies[0].Name, armies[1].Name)
	}
	if armies[0].Name != "dwarfs" {
		t.Errorf("expected name to fall back to the id, got %q", armies[0].Name)
	}
	if armies[0].StatsAvailable || !armies[1].StatsAvailable {
		t.Errorf("unexpected stats flags: %v %v", armies[0].StatsAvailable, armies[1].StatsAvailable)
	}
	if armies[1].UnitCount != 4 {
		t.Errorf("expected 4 empire units, got %d", armies[1].UnitCount)
	}
}

func TestStore_ArmyMetadata(t *testing.T) {
	s := loadStore(t, newDataDir(t))

	army, ok := s.Army("empire")
	if !ok {
		t.Fatal("expected empire")
	}
	if len(army.Compositions) != 2 || len(army.ArmyRules) != 1 {
		t.Fatalf("unexpected metadata: %+v", army)
	}
	if _, ok := army.ArmyRule("drilled"); !ok {
		t.Error("expected drilled army rule")
	}
	if _, ok := s.Army("orcs"); ok {
		t.Error("expected unknown army to miss")
	}
}

func TestStore_UnitsByComposition(t *testing.T) {
	s := loadStore(t, newDataDir(t))

	all, ok := s.Units("empire", "")
	if !ok || len(all) != 4 {
		t.Fatalf("expected 4 units, got %d", len(all))
	}
	if all[0].ID != "captain" || all[0].Category != models.CategoryCharacters {
		t.Errorf("expected category order, got %+v", all[0])
	}

	guard, _ := s.Units("empire", "city-guard")
	if len(guard) != 2 {
		t.Fatalf("expected allow-list to keep 2 units, got %d", len(guard))
	}

	open, _ := s.Units("empire", "grand-army")
	if len(open) != 4 {
		t.Errorf("expected composition without allow-list to keep every unit, got %d", len(open))
	}

	if _, ok := s.Units("orcs", ""); ok {
		t.Error("expected unknown army to miss")
	}
}

func TestStore_Unit(t *testing.T) {
	s := loadStore(t, newDataDir(t))

	u, ok := s.Unit("empire", models.CategorySpecial, "knights")
	if !ok {
		t.Fatal("expected knights")
	}
	if u.Minimum != 5 || u.Maximum != 12 || u.PointsPerModel != 22 {
		t.Errorf("unexpected knights: %+v", u)
	}

	if _, ok := s.Unit("empire", "", "halberdiers"); !ok {
		t.Error("expected lookup without category to search every bucket")
	}
	if _, ok := s.Unit("empire", models.CategoryRare, "halberdiers"); !ok {
		t.Error("expected lookup to fall back when the category does not hold the unit")
	}
	if _, ok := s.Unit("empire", "", "steam-tank"); ok {
		t.Error("expected unknown unit to miss")
	}

	w, ok := s.Unit("dwarfs", models.CategoryCore, "unit-Warriors-0")
	if !ok || w.Name != "Warriors" {
		t.Errorf("expected synthesized id, got %+v", w)
	}
}

func TestStore_StatIndex(t *testing.T) {
	s := loadStore(t, newDataDir(t))

	if len(s.StatTable("empire")) != 3 {
		t.Errorf("expected 3 stat lines, got %d", len(s.StatTable("empire")))
	}
	ix := s.Index("empire")
	if ix.Len() != 3 {
		t.Fatalf("expected index of 3, got %d", ix.Len())
	}
	if s.Index("empire") != ix {
		t.Error("expected the index to be built once per load")
	}
	if _, ok := ix.Resolve(models.RosterEntry{Name: "Halberdiers"}); !ok {
		t.Error("expected plural unit name to resolve")
	}
	if s.Index("dwarfs").Len() != 0 {
		t.Error("expected empty index for an army without stats")
	}
}

func TestStore_MissingDirectory(t *testing.T) {
	s := loadStore(t, filepath.Join(t.TempDir(), "absent"))
	if len(s.Armies()) != 0 {
		t.Error("expected empty catalog")
	}
}

func TestStore_ReloadCallbacks(t *testing.T) {
	dir := newDataDir(t)
	s := loadStore(t, dir)

	calls := 0
	s.OnReload(func() { calls++ })

	writeFile(t, filepath.Join(dir, catalog.CatalogDir, "dwarfs.json"), `{"name": "Dwarfs", "core": [], "rare": [{"name": "Cannon", "points": 100}]}`)
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 callback, got %d", calls)
	}
	army, _ := s.Army("dwarfs")
	if army.Name != "Dwarfs" || army.UnitCount != 1 {
		t.Errorf("expected reloaded dwarfs, got %+v", army)
	}
}

func TestStore_Watch(t *testing.T) {
	dir := newDataDir(t)
	s := loadStore(t, dir)

	reloaded := make(chan struct{}, 4)
	s.OnReload(func() { reloaded <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, catalog.CatalogDir, "orcs.json"), `{"name": "Orcs", "core": [{"name": "Boyz", "points": 5}]}`)

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("expected reload after catalog change")
	}
	if _, ok := s.Army("orcs"); !ok {
		t.Error("expected new army after reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("expected Watch to stop on cancel")
	}
}

func TestStore_WatchNothing(t *testing.T) {
	s := catalog.NewStore(logger.Discard(), filepath.Join(t.TempDir(), "absent"))
	if err := s.Watch(context.Background()); err == nil {
		t.Error("expected error when no directory can be watched")
	}
}

func TestComposition_Allows(t *testing.T) {
	open := catalog.Composition{ID: "any"}
	if !open.Allows("anything") {
		t.Error("expected empty allow-list to permit every unit")
	}
	closed := catalog.Composition{ID: "guard", Units: []string{"halberdiers"}}
	if !closed.Allows("halberdiers") || closed.Allows("knights") {
		t.Error("unexpected allow-list result")
	}
}
