// Package catalog loads unit catalogs and stat tables from the data
// directory and serves immutable snapshots of them.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/abrezinsky/armyroster/internal/coerce"
	"github.com/abrezinsky/armyroster/internal/logger"
	"github.com/abrezinsky/armyroster/internal/models"
	"github.com/abrezinsky/armyroster/internal/stats"
)

// Subdirectories of the data directory
const (
	CatalogDir = "catalog"
	StatsDir   = "stats"
)

// reloadDelay coalesces bursts of file events into one reload
const reloadDelay = 150 * time.Millisecond

var statExtensions = []string{".yaml", ".yml", ".json"}

// Composition is a sub-variant of an army. An empty unit list allows every unit.
type Composition struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Units []string `json:"units,omitempty"`
}

// Allows reports whether the composition permits the unit
func (c Composition) Allows(unitID string) bool {
	if len(c.Units) == 0 {
		return true
	}
	for _, id := range c.Units {
		if id == unitID {
			return true
		}
	}
	return false
}

// ArmyRule is a selectable army-wide special rule
type ArmyRule struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Army is one faction of the catalog
type Army struct {
	ID             string                                   `json:"id"`
	Name           string                                   `json:"name"`
	Compositions   []Composition                            `json:"compositions"`
	ArmyRules      []ArmyRule                               `json:"armyRules"`
	StatsAvailable bool                                     `json:"statsAvailable"`
	UnitCount      int                                      `json:"unitCount"`
	Units          map[models.Category][]models.CatalogUnit `json:"-"`
}

// Composition looks up a composition by id
func (a Army) Composition(id string) (Composition, bool) {
	for _, c := range a.Compositions {
		if c.ID == id {
			return c, true
		}
	}
	return Composition{}, false
}

// ArmyRule looks up an army rule by id
func (a Army) ArmyRule(id string) (ArmyRule, bool) {
	for _, r := range a.ArmyRules {
		if r.ID == id {
			return r, true
		}
	}
	return ArmyRule{}, false
}

// snapshot is an immutable view of the data directory
type snapshot struct {
	armies  map[string]*Army
	order   []string
	tables  map[string][]stats.StatLine
	indexes map[string]*stats.Index
}

func emptySnapshot() *snapshot {
	return &snapshot{
		armies:  map[string]*Army{},
		tables:  map[string][]stats.StatLine{},
		indexes: map[string]*stats.Index{},
	}
}

// Store serves the catalog. Readers always see a complete snapshot; reloads
// build a new one and swap it in.
type Store struct {
	log logger.Logger
	dir string

	mu       sync.RWMutex
	snap     *snapshot
	onReload []func()
}

// NewStore creates an empty store over dataDir. Call Load to read it.
func NewStore(log logger.Logger, dataDir string) *Store {
	return &Store{
		log:  log.With("component", "catalog"),
		dir:  dataDir,
		snap: emptySnapshot(),
	}
}

// Dir returns the data directory
func (s *Store) Dir() string {
	return s.dir
}

// OnReload registers a callback run after every successful reload
func (s *Store) OnReload(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}

// Load reads every army of the data directory. Files that cannot be parsed
// are logged and skipped. A missing catalog directory yields an empty catalog.
func (s *Store) Load() error {
	snap, err := s.read()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.snap = snap
	callbacks := append([]func(){}, s.onReload...)
	s.mu.Unlock()

	s.log.Info("Catalog loaded", "armies", len(snap.order), "dir", s.dir)
	for _, fn := range callbacks {
		fn()
	}
	return nil
}

func (s *Store) read() (*snapshot, error) {
	snap := emptySnapshot()

	catalogDir := filepath.Join(s.dir, CatalogDir)
	files, err := os.ReadDir(catalogDir)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Warn("Catalog directory missing", "dir", catalogDir)
		return snap, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog directory: %w", err)
	}

	for _, f := range files {
		if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), ".json") {
			continue
		}
		armyID := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		army, err := readArmy(filepath.Join(catalogDir, f.Name()), armyID)
		if err != nil {
			s.log.Warn("Skipping catalog file", "file", f.Name(), "error", err)
			continue
		}

		table, err := s.readStats(armyID)
		if err != nil {
			s.log.Warn("Skipping stat table", "army", armyID, "error", err)
		}
		army.StatsAvailable = len(table) > 0

		snap.armies[armyID] = army
		snap.order = append(snap.order, armyID)
		snap.tables[armyID] = table
		snap.indexes[armyID] = stats.BuildIndex(table)
	}

	sort.Slice(snap.order, func(i, j int) bool {
		a, b := snap.armies[snap.order[i]], snap.armies[snap.order[j]]
		if an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name); an != bn {
			return an < bn
		}
		return a.ID < b.ID
	})
	return snap, nil
}

// readArmy parses one catalog file. Category keys hold the units; the
// optional name, compositions and armyRules keys hold metadata.
func readArmy(path, armyID string) (*Army, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	army := &Army{
		ID:           armyID,
		Name:         coerce.FirstText(raw, "name_en", "name"),
		Compositions: []Composition{},
		ArmyRules:    []ArmyRule{},
		Units:        NormalizeUnits(raw),
	}
	if army.Name == "" {
		army.Name = armyID
	}
	for _, units := range army.Units {
		army.UnitCount += len(units)
	}

	for i, item := range coerce.List(raw["compositions"]) {
		rec := coerce.Record(item)
		if rec == nil {
			continue
		}
		c := Composition{
			ID:   coerce.Text(rec["id"]),
			Name: coerce.FirstText(rec, "name_en", "name"),
		}
		if c.ID == "" {
			c.ID = fmt.Sprintf("composition-%d", i)
		}
		if c.Name == "" {
			c.Name = c.ID
		}
		for _, u := range coerce.List(rec["units"]) {
			if id := coerce.Text(u); id != "" {
				c.Units = append(c.Units, id)
			}
		}
		army.Compositions = append(army.Compositions, c)
	}

	for i, item := range coerce.List(raw["armyRules"]) {
		rec := coerce.Record(item)
		if rec == nil {
			continue
		}
		r := ArmyRule{
			ID:          coerce.Text(rec["id"]),
			Name:        coerce.FirstText(rec, "name_en", "name"),
			Description: coerce.FirstText(rec, "description_en", "description"),
		}
		if r.ID == "" {
			r.ID = fmt.Sprintf("army-rule-%d", i)
		}
		army.ArmyRules = append(army.ArmyRules, r)
	}
	return army, nil
}

// readStats reads the stat table of an army. A missing table is not an error.
func (s *Store) readStats(armyID string) ([]stats.StatLine, error) {
	for _, ext := range statExtensions {
		f, err := os.Open(filepath.Join(s.dir, StatsDir, armyID+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		lines, err := stats.ReadTable(f)
		f.Close()
		return lines, err
	}
	return nil, nil
}

func (s *Store) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Armies returns every army sorted by name
func (s *Store) Armies() []Army {
	snap := s.current()
	out := make([]Army, 0, len(snap.order))
	for _, id := range snap.order {
		out = append(out, *snap.armies[id])
	}
	return out
}

// Army looks up an army by id
func (s *Store) Army(id string) (Army, bool) {
	a, ok := s.current().armies[id]
	if !ok {
		return Army{}, false
	}
	return *a, true
}

// Units returns the units of an army in category order, filtered by the
// composition's allow-list. An empty or unknown composition id applies no
// filter.
func (s *Store) Units(armyID, compositionID string) ([]models.CatalogUnit, bool) {
	army, ok := s.current().armies[armyID]
	if !ok {
		return nil, false
	}
	comp, _ := army.Composition(compositionID)

	out := []models.CatalogUnit{}
	for _, c := range models.Categories {
		for _, u := range army.Units[c] {
			if comp.Allows(u.ID) {
				out = append(out, u)
			}
		}
	}
	return out, true
}

// Unit looks up a unit. Ids are only unique within a category, so the
// category is matched first; an empty category searches every bucket in
// order.
func (s *Store) Unit(armyID string, category models.Category, unitID string) (models.CatalogUnit, bool) {
	army, ok := s.current().armies[armyID]
	if !ok {
		return models.CatalogUnit{}, false
	}
	if category != "" {
		for _, u := range army.Units[category] {
			if u.ID == unitID {
				return u, true
			}
		}
	}
	for _, c := range models.Categories {
		for _, u := range army.Units[c] {
			if u.ID == unitID {
				return u, true
			}
		}
	}
	return models.CatalogUnit{}, false
}

// StatTable returns the stat lines of an army
func (s *Store) StatTable(armyID string) []stats.StatLine {
	return s.current().tables[armyID]
}

// Index returns the prebuilt stat index of an army, or nil when the army is
// unknown
func (s *Store) Index(armyID string) *stats.Index {
	return s.current().indexes[armyID]
}

// Watch reloads the store whenever a catalog or stat file changes. It
// blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	watched := 0
	for _, sub := range []string{CatalogDir, StatsDir} {
		dir := filepath.Join(s.dir, sub)
		if err := watcher.Add(dir); err != nil {
			s.log.Warn("Not watching directory", "dir", dir, "error", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("nothing to watch under %s", s.dir)
	}
	s.log.Debug("Watching catalog for changes", "dir", s.dir)

	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			s.log.Debug("Catalog file changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(reloadDelay)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("File watcher error", "error", werr)
		case <-timer.C:
			if err := s.Load(); err != nil {
				s.log.Error("Catalog reload failed", "error", err)
			}
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	if ext == ".json" {
		return true
	}
	for _, e := range statExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
