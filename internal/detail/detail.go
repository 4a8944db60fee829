// Package detail composes the category rules, entry normalization and stat
// lookup into the self-contained roster view handed to presentation and
// export collaborators.
package detail

import (
	"sort"
	"strconv"

	"github.com/abrezinsky/armyroster/internal/entry"
	"github.com/abrezinsky/armyroster/internal/models"
	"github.com/abrezinsky/armyroster/internal/points"
	"github.com/abrezinsky/armyroster/internal/stats"
)

// Meta row labels
const (
	MetaUnitSize = "unitSize"
	MetaBaseSize = "baseSize"
	MetaArmour   = "armour"
	MetaTroop    = "troopType"
)

// StatRow is one printed profile line. Mount rows follow the unit's own rows.
type StatRow struct {
	Label string `json:"label"`
	stats.Characteristics
	Mount bool `json:"mount,omitempty"`
}

// OptionSummary lists the distinct option names chosen in one group
type OptionSummary struct {
	Group models.GroupKey `json:"group"`
	Names []string        `json:"names"`
}

// MetaRow is a label/value pair shown beside the stat block
type MetaRow struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// EntryView is a normalized roster entry together with its derived rows
type EntryView struct {
	Entry        models.RosterEntry `json:"entry"`
	Stats        *stats.StatLine    `json:"stats,omitempty"`
	Mounts       []stats.StatLine   `json:"mounts,omitempty"`
	StatRows     []StatRow          `json:"statRows"`
	Options      []OptionSummary    `json:"options"`
	SpecialRules []string           `json:"specialRules,omitempty"`
	Meta         []MetaRow          `json:"meta"`
}

// CategoryView groups the entries of one category
type CategoryView struct {
	Category models.Category        `json:"category"`
	Entries  []EntryView            `json:"entries"`
	Total    float64                `json:"total"`
	Section  models.CategorySection `json:"section"`
}

// View is the aggregate roster view
type View struct {
	ArmyID          string         `json:"armyId"`
	CompositionID   string         `json:"compositionId"`
	ArmyRuleID      string         `json:"armyRuleId"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	PointsLimit     float64        `json:"pointsLimit"`
	TotalPoints     float64        `json:"totalPoints"`
	RemainingPoints float64        `json:"remainingPoints"`
	OverLimit       bool           `json:"overLimit"`
	StatsAvailable  bool           `json:"statsAvailable"`
	Math            points.Math    `json:"math"`
	Categories      []CategoryView `json:"categories"`
}

// Build composes the roster view. Entries are normalized again with norm so
// the view holds regardless of where the draft came from; a nil norm falls
// back to random ids. A nil or empty index means the faction has no stat
// table at all.
func Build(draft models.RosterDraft, index *stats.Index, norm *entry.Normalizer) View {
	normalize := entry.Normalize
	if norm != nil {
		normalize = norm.Entry
	}
	normalized := draft
	normalized.Entries = make([]models.RosterEntry, 0, len(draft.Entries))
	for _, e := range draft.Entries {
		normalized.Entries = append(normalized.Entries, normalize(e))
	}

	sections := points.Sections(normalized)
	v := View{
		ArmyID:         draft.ArmyID,
		CompositionID:  draft.CompositionID,
		ArmyRuleID:     draft.ArmyRuleID,
		Name:           draft.Name,
		Description:    draft.Description,
		PointsLimit:    draft.PointsLimit,
		StatsAvailable: index.Len() > 0,
		Math:           points.Calculate(normalized.PointsLimit, normalized.SpentByCategory()),
		Categories:     make([]CategoryView, 0, len(models.Categories)),
	}

	for i, c := range models.Categories {
		cv := CategoryView{Category: c, Entries: []EntryView{}, Section: sections[i]}
		for _, e := range normalized.Entries {
			if e.Category != c {
				continue
			}
			cv.Entries = append(cv.Entries, buildEntry(e, index))
			cv.Total += e.TotalPoints
		}
		v.TotalPoints += cv.Total
		v.Categories = append(v.Categories, cv)
	}

	v.RemainingPoints = v.PointsLimit - v.TotalPoints
	v.OverLimit = v.RemainingPoints < 0
	return v
}

func buildEntry(e models.RosterEntry, index *stats.Index) EntryView {
	ev := EntryView{
		Entry:    e,
		StatRows: []StatRow{},
		Options:  summarizeOptions(e.Options),
	}

	line, ok := index.Resolve(e)
	if ok {
		ev.Stats = &line
		ev.Mounts = index.ResolveMounts(e, &line)
		for _, p := range line.Rows() {
			ev.StatRows = append(ev.StatRows, StatRow{Label: p.Name, Characteristics: p.Characteristics})
		}
		for _, m := range ev.Mounts {
			for _, p := range m.Rows() {
				ev.StatRows = append(ev.StatRows, StatRow{Label: p.Name, Characteristics: p.Characteristics, Mount: true})
			}
		}
		ev.SpecialRules = append([]string(nil), line.SpecialRules...)
	}

	ev.Meta = []MetaRow{{Label: MetaUnitSize, Value: strconv.Itoa(e.UnitSize)}}
	if ok {
		if line.TroopType != "" {
			ev.Meta = append(ev.Meta, MetaRow{Label: MetaTroop, Value: line.TroopType})
		}
		if line.BaseSize != "" {
			ev.Meta = append(ev.Meta, MetaRow{Label: MetaBaseSize, Value: line.BaseSize})
		}
		if line.Armour != "" {
			ev.Meta = append(ev.Meta, MetaRow{Label: MetaArmour, Value: line.Armour})
		}
	}
	return ev
}

// summarizeOptions groups option names by group in the fixed group order,
// dropping repeated names
func summarizeOptions(opts []models.SelectedOption) []OptionSummary {
	byGroup := make(map[models.GroupKey]*OptionSummary)
	var order []models.GroupKey
	for _, o := range opts {
		if o.Name == "" {
			continue
		}
		s, ok := byGroup[o.Group]
		if !ok {
			s = &OptionSummary{Group: o.Group}
			byGroup[o.Group] = s
			order = append(order, o.Group)
		}
		if !contains(s.Names, o.Name) {
			s.Names = append(s.Names, o.Name)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Order() < order[j].Order()
	})

	out := make([]OptionSummary, 0, len(order))
	for _, g := range order {
		out = append(out, *byGroup[g])
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
