// Package options resolves a player's option selections for a catalog unit
// into priced SelectedOptions and roster entries.
package options

import (
	"fmt"
	"math"

	"github.com/abrezinsky/armyroster/internal/models"
)

// Selection maps an option group to the ids of the options checked in it
type Selection map[models.GroupKey][]string

// Clone returns a deep copy of the selection
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, ids := range s {
		out[k] = append([]string(nil), ids...)
	}
	return out
}

// ClampUnitSize bounds size to [minimum, maximum]. A maximum of zero means
// unbounded. Non-finite input resolves to the minimum and fractional input
// is floored before clamping.
func ClampUnitSize(size float64, minimum, maximum int) int {
	if minimum < 1 {
		minimum = 1
	}
	if math.IsNaN(size) || math.IsInf(size, 0) {
		return minimum
	}
	n := int(math.Floor(size))
	if n < minimum {
		n = minimum
	}
	if maximum > 0 && maximum >= minimum && n > maximum {
		n = maximum
	}
	return n
}

// OptionCost returns the total contribution of one option at the given size
func OptionCost(opt models.CatalogOption, unitSize int) float64 {
	if opt.PerModel {
		return opt.Points * float64(unitSize)
	}
	return opt.Points
}

// resolved walks the selection in group order and yields each live option
// once. Radio groups contribute at most their first valid id.
func resolved(groups []models.OptionGroup, sel Selection, fn func(models.OptionGroup, models.CatalogOption)) {
	for _, group := range groups {
		seen := make(map[string]bool)
		for _, id := range sel[group.Key] {
			if seen[id] {
				continue
			}
			opt, ok := group.Option(id)
			if !ok {
				continue
			}
			seen[id] = true
			fn(group, opt)
			if group.Kind == models.SelectionRadio {
				break
			}
		}
	}
}

// TotalCost sums the cost of every selected option
func TotalCost(groups []models.OptionGroup, sel Selection, unitSize int) float64 {
	var total float64
	resolved(groups, sel, func(_ models.OptionGroup, opt models.CatalogOption) {
		total += OptionCost(opt, unitSize)
	})
	return total
}

// Selected builds the SelectedOptions attached to a roster entry
func Selected(groups []models.OptionGroup, sel Selection, unitSize int) []models.SelectedOption {
	out := []models.SelectedOption{}
	resolved(groups, sel, func(group models.OptionGroup, opt models.CatalogOption) {
		out = append(out, models.SelectedOption{
			ID:       fmt.Sprintf("%s-%s", group.Key, opt.ID),
			Name:     opt.Name,
			Points:   OptionCost(opt, unitSize),
			Group:    group.Key,
			Note:     opt.Note,
			PerModel: opt.PerModel,
			BaseCost: opt.Points,
			SourceID: opt.ID,
		})
	})
	return out
}

// DefaultSelection is the selection of a fresh configuration. Radio groups
// pick their default option, else their first option; checkbox groups pick
// every default option.
func DefaultSelection(groups []models.OptionGroup) Selection {
	sel := make(Selection, len(groups))
	for _, group := range groups {
		sel[group.Key] = defaultIDs(group)
	}
	return sel
}

// MergeSelection applies a partial selection over base. Groups present in
// override replace the base choice; other groups keep it. A radio group left
// without a choice falls back to its default.
func MergeSelection(groups []models.OptionGroup, base, override Selection) Selection {
	out := base.Clone()
	for key, ids := range override {
		out[key] = append([]string{}, ids...)
	}
	for _, group := range groups {
		if group.Kind == models.SelectionRadio && len(out[group.Key]) == 0 {
			out[group.Key] = defaultIDs(group)
		}
	}
	return out
}

func defaultIDs(group models.OptionGroup) []string {
	ids := []string{}
	if group.Kind == models.SelectionRadio {
		for _, opt := range group.Options {
			if opt.Default {
				return []string{opt.ID}
			}
		}
		if len(group.Options) > 0 {
			ids = append(ids, group.Options[0].ID)
		}
		return ids
	}
	for _, opt := range group.Options {
		if opt.Default {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// HydrateSelection rebuilds the selection of an existing entry. Stored
// options match live ones by source id, then by exact name. A radio group
// keeps its first match and falls back to its default when nothing matches.
func HydrateSelection(groups []models.OptionGroup, stored []models.SelectedOption) Selection {
	sel := make(Selection, len(groups))
	for _, group := range groups {
		ids := []string{}
		seen := make(map[string]bool)
		for _, so := range stored {
			if so.Group != "" && so.Group != group.Key {
				continue
			}
			id, ok := matchOption(group, so)
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
			if group.Kind == models.SelectionRadio {
				break
			}
		}
		if len(ids) == 0 && group.Kind == models.SelectionRadio {
			ids = defaultIDs(group)
		}
		sel[group.Key] = ids
	}
	return sel
}

func matchOption(group models.OptionGroup, so models.SelectedOption) (string, bool) {
	if so.SourceID != "" {
		if opt, ok := group.Option(so.SourceID); ok {
			return opt.ID, true
		}
	}
	for _, opt := range group.Options {
		if opt.Name == so.Name {
			return opt.ID, true
		}
	}
	return "", false
}
