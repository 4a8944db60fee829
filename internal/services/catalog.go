package services

import (
	"context"

	"github.com/abrezinsky/armyroster/internal/catalog"
	"github.com/abrezinsky/armyroster/internal/errors"
	"github.com/abrezinsky/armyroster/internal/logger"
	"github.com/abrezinsky/armyroster/internal/models"
	"github.com/abrezinsky/armyroster/internal/options"
	"github.com/abrezinsky/armyroster/internal/stats"
)

// CatalogService serves armies, units and unit pricing
type CatalogService struct {
	log   logger.Logger
	store CatalogReader
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(log logger.Logger, store CatalogReader) *CatalogService {
	return &CatalogService{log: log, store: store}
}

// ListArmies returns every army of the catalog
func (s *CatalogService) ListArmies(ctx context.Context) ([]catalog.Army, error) {
	return s.store.Armies(), nil
}

// GetArmy returns one army with its compositions and army rules
func (s *CatalogService) GetArmy(ctx context.Context, armyID string) (*catalog.Army, error) {
	army, ok := s.store.Army(armyID)
	if !ok {
		return nil, errors.NotFoundf("army %q not found", armyID)
	}
	return &army, nil
}

// ListUnits returns the units of an army available to a composition
func (s *CatalogService) ListUnits(ctx context.Context, armyID, compositionID string) ([]models.CatalogUnit, error) {
	army, ok := s.store.Army(armyID)
	if !ok {
		return nil, errors.NotFoundf("army %q not found", armyID)
	}
	if compositionID != "" {
		if _, ok := army.Composition(compositionID); !ok {
			return nil, errors.NotFoundf("composition %q not found in army %q", compositionID, armyID)
		}
	}
	units, _ := s.store.Units(armyID, compositionID)
	return units, nil
}

// GetUnit returns one catalog unit
func (s *CatalogService) GetUnit(ctx context.Context, ref UnitRef) (*models.CatalogUnit, error) {
	unit, err := lookupUnit(s.store, ref)
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

// DefaultConfiguration returns the configuration a freshly added unit starts with
func (s *CatalogService) DefaultConfiguration(ctx context.Context, ref UnitRef) (*options.Configuration, error) {
	unit, err := lookupUnit(s.store, ref)
	if err != nil {
		return nil, err
	}
	cfg := options.NewConfiguration(unit)
	return &cfg, nil
}

// Quote prices a configuration without touching any draft. A nil selection
// prices the unit defaults.
func (s *CatalogService) Quote(ctx context.Context, ref UnitRef, cfg options.Configuration) (*options.Quote, error) {
	unit, err := lookupUnit(s.store, ref)
	if err != nil {
		return nil, err
	}
	if cfg.Selection == nil {
		cfg.Selection = options.DefaultSelection(unit.OptionGroups)
	}
	q := options.Price(unit, cfg)
	return &q, nil
}

// StatTable returns the stat lines of an army
func (s *CatalogService) StatTable(ctx context.Context, armyID string) ([]stats.StatLine, error) {
	if _, ok := s.store.Army(armyID); !ok {
		return nil, errors.NotFoundf("army %q not found", armyID)
	}
	lines := s.store.StatTable(armyID)
	if lines == nil {
		lines = []stats.StatLine{}
	}
	return lines, nil
}

// Reload rereads the data directory
func (s *CatalogService) Reload(ctx context.Context) error {
	if err := s.store.Load(); err != nil {
		s.log.Error("Catalog reload failed", "error", err)
		return errors.Internal(err)
	}
	return nil
}

func lookupUnit(store CatalogReader, ref UnitRef) (models.CatalogUnit, error) {
	if _, ok := store.Army(ref.ArmyID); !ok {
		return models.CatalogUnit{}, errors.NotFoundf("army %q not found", ref.ArmyID)
	}
	unit, ok := store.Unit(ref.ArmyID, ref.Category, ref.UnitID)
	if !ok {
		return models.CatalogUnit{}, errors.NotFoundf("unit %q not found in army %q", ref.UnitID, ref.ArmyID)
	}
	return unit, nil
}
