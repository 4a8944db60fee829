package catalog

import (
	"fmt"

	"github.com/abrezinsky/armyroster/internal/coerce"
	"github.com/abrezinsky/armyroster/internal/models"
)

// NormalizeUnit converts a raw catalog record into a CatalogUnit. It never
// fails: missing or malformed fields fall back to defaults, and option
// elements without a usable name are dropped.
func NormalizeUnit(raw map[string]any, index int) models.CatalogUnit {
	name := coerce.FirstText(raw, "name_en", "name")

	id := coerce.Text(raw["id"])
	switch {
	case id != "":
	case name != "":
		id = fmt.Sprintf("unit-%s-%d", name, index)
	default:
		id = fmt.Sprintf("unit-%d", index)
	}
	if name == "" {
		name = fmt.Sprintf("Unit %d", index)
	}

	unit := models.CatalogUnit{
		ID:             id,
		Name:           name,
		PointsPerModel: coerce.NumberOr(raw["points"], 0),
		Notes:          coerce.FirstText(raw, "notes_en", "notes"),
	}
	if n, ok := coerce.Integer(raw["minimum"]); ok && n > 0 {
		unit.Minimum = n
	}
	if n, ok := coerce.Integer(raw["maximum"]); ok && n > 0 {
		unit.Maximum = n
	}

	for _, key := range models.GroupKeys {
		if group, ok := normalizeGroup(key, coerce.List(raw[string(key)])); ok {
			unit.OptionGroups = append(unit.OptionGroups, group)
		}
	}

	return unit
}

// normalizeGroup builds an option group from a raw array. Groups are only
// materialized when at least one option survives normalization.
func normalizeGroup(key models.GroupKey, items []any) (models.OptionGroup, bool) {
	if len(items) == 0 {
		return models.OptionGroup{}, false
	}

	group := models.OptionGroup{Key: key, Kind: key.Kind()}
	for i, item := range items {
		opt, ok := NormalizeOption(key, coerce.Record(item), i)
		if !ok {
			continue
		}
		group.Options = append(group.Options, opt)
	}
	if len(group.Options) == 0 {
		return models.OptionGroup{}, false
	}
	return group, true
}

// NormalizeOption converts one raw option. ok is false when the option has
// no usable name.
func NormalizeOption(key models.GroupKey, raw map[string]any, index int) (models.CatalogOption, bool) {
	if raw == nil {
		return models.CatalogOption{}, false
	}
	name := coerce.FirstText(raw, "name_en", "name")
	if name == "" {
		return models.CatalogOption{}, false
	}

	id := coerce.Text(raw["id"])
	if id == "" {
		id = fmt.Sprintf("%s-%s-%d", key, name, index)
	}

	return models.CatalogOption{
		ID:       id,
		Name:     name,
		Points:   coerce.NumberOr(raw["points"], 0),
		PerModel: coerce.Bool(raw["perModel"]) || coerce.Bool(raw["per_model"]),
		Default:  coerce.Bool(raw["default"]) || coerce.Bool(raw["active"]),
		Note:     coerce.FirstText(raw, "notes_en", "notes", "note"),
	}, true
}

// NormalizeUnits normalizes every record of a raw catalog. Units keep the
// category bucket they were listed under; unknown buckets are skipped.
func NormalizeUnits(raw map[string]any) map[models.Category][]models.CatalogUnit {
	out := make(map[models.Category][]models.CatalogUnit)
	for _, category := range models.Categories {
		items := coerce.List(raw[string(category)])
		if len(items) == 0 {
			continue
		}
		units := make([]models.CatalogUnit, 0, len(items))
		for i, item := range items {
			rec := coerce.Record(item)
			if rec == nil {
				rec = map[string]any{}
			}
			unit := NormalizeUnit(rec, i)
			unit.Category = category
			units = append(units, unit)
		}
		out[category] = units
	}
	return out
}
