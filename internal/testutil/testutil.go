package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abrezinsky/armyroster/internal/catalog"
	"github.com/abrezinsky/armyroster/internal/logger"
	"github.com/abrezinsky/armyroster/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

// EmpireCatalog is a small army used across service and handler tests.
// Halberdiers cost 6 per model with a per-model shield upgrade; knights have
// a radio armour group with a default and are capped at 12 models.
const EmpireCatalog = `{
  "name": "Empire",
  "compositions": [
    {"id": "grand-army", "name": "Grand Army"},
    {"id": "city-guard", "name": "City Guard", "units": ["captain", "halberdiers"]}
  ],
  "armyRules": [{"id": "drilled", "name": "Drilled"}],
  "characters": [
    {"id": "captain", "name": "Captain", "points": 50,
     "equipment": [{"id": "sword", "name": "Hand weapon"}, {"id": "halberd", "name": "Halberd", "points": 4}],
     "mounts": [{"id": "warhorse", "name": "Warhorse", "points": 12}]}
  ],
  "core": [
    {"id": "halberdiers", "name": "Halberdiers", "points": 6, "minimum": 10,
     "command": [{"id": "champion", "name": "Champion", "points": 10}, {"id": "standard", "name": "Standard bearer", "points": 10, "default": true}],
     "options": [{"id": "shields", "name": "Shields", "points": 1, "perModel": true}]}
  ],
  "special": [
    {"id": "knights", "name": "Knights", "points": 22, "minimum": 5, "maximum": 12,
     "armor": [{"id": "full-plate", "name": "Full plate", "points": 0, "default": true}, {"id": "barding", "name": "Barding", "points": 2, "perModel": true}]}
  ],
  "rare": [
    {"id": "cannon", "name": "Great Cannon", "points": 120, "minimum": 1, "maximum": 1}
  ]
}`

// EmpireStats is the stat table matching EmpireCatalog
const EmpireStats = `
- name: Captain
  M: 4
  WS: 5
  BS: 5
  mountIds: [warhorse]
- name: Halberdier
  aliases: [Halabardnik]
  M: 4
  WS: 3
  troopType: Regular Infantry
  baseSize: 20x20
- name: Warhorse
  M: 8
`

// WriteDataDir writes a data directory with the Empire army and returns its path
func WriteDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteFile(t, filepath.Join(dir, catalog.CatalogDir, "empire.json"), EmpireCatalog)
	WriteFile(t, filepath.Join(dir, catalog.StatsDir, "empire.yaml"), EmpireStats)
	return dir
}

// WriteFile writes body to path, creating parent directories
func WriteFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// NewTestCatalog returns a loaded catalog store over a fresh data directory
func NewTestCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	store := catalog.NewStore(logger.Discard(), WriteDataDir(t))
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load test catalog: %v", err)
	}
	return store
}
