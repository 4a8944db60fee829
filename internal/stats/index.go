package stats

import (
	"strings"

	"github.com/abrezinsky/armyroster/internal/models"
)

// Index resolves normalized names and aliases to stat lines
type Index struct {
	lines []StatLine
	byKey map[string]int
}

// BuildIndex registers every line under its normalized name and aliases.
// The first registration of a key wins; later duplicates are ignored.
func BuildIndex(lines []StatLine) *Index {
	ix := &Index{
		lines: append([]StatLine(nil), lines...),
		byKey: make(map[string]int, len(lines)),
	}
	for i, line := range ix.lines {
		ix.register(line.Name, i)
		for _, alias := range line.Aliases {
			ix.register(alias, i)
		}
	}
	return ix
}

func (ix *Index) register(name string, i int) {
	key := NormalizeKey(name)
	if key == "" {
		return
	}
	if _, taken := ix.byKey[key]; taken {
		return
	}
	ix.byKey[key] = i
}

// Len returns the number of stat lines in the index
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.lines)
}

// Lines returns a copy of the indexed stat lines in table order
func (ix *Index) Lines() []StatLine {
	if ix == nil {
		return nil
	}
	return append([]StatLine(nil), ix.lines...)
}

// Lookup tries each candidate key in order and returns the first hit.
// Candidates must already be normalized.
func (ix *Index) Lookup(candidates ...string) (StatLine, bool) {
	if ix == nil {
		return StatLine{}, false
	}
	for _, key := range candidates {
		if i, ok := ix.byKey[key]; ok {
			return ix.lines[i], true
		}
	}
	return StatLine{}, false
}

// Find resolves free text such as a unit name against the index
func (ix *Index) Find(names ...string) (StatLine, bool) {
	return ix.Lookup(Candidates(names...)...)
}

// Resolve returns the stat line of a roster entry, matching its display
// name first and its unit id second. A miss is expected for units whose
// stat tables are incomplete.
func (ix *Index) Resolve(e models.RosterEntry) (StatLine, bool) {
	return ix.Find(e.Name, e.UnitID)
}

// ResolveMounts returns the stat lines of mounts chosen on the entry. When
// the base line declares mount ids, only those mounts are accepted. Each
// mount is returned at most once.
func (ix *Index) ResolveMounts(e models.RosterEntry, base *StatLine) []StatLine {
	if ix == nil {
		return nil
	}

	var allowed map[string]bool
	if base != nil && len(base.MountIDs) > 0 {
		allowed = make(map[string]bool, len(base.MountIDs))
		for _, id := range base.MountIDs {
			allowed[NormalizeKey(id)] = true
		}
	}

	var mounts []StatLine
	seen := make(map[string]bool)
	if base != nil {
		seen[base.ID] = true
	}
	for _, opt := range e.Options {
		if !isMountOption(opt) {
			continue
		}
		line, ok := ix.Find(opt.SourceID, opt.ID, opt.Name)
		if !ok || seen[line.ID] {
			continue
		}
		if allowed != nil && !allowed[NormalizeKey(line.ID)] && !allowed[NormalizeKey(line.Name)] {
			continue
		}
		seen[line.ID] = true
		mounts = append(mounts, line)
	}
	return mounts
}

func isMountOption(opt models.SelectedOption) bool {
	if opt.Group == models.GroupMounts {
		return true
	}
	return strings.Contains(NormalizeKey(string(opt.Group)), "mount") ||
		strings.Contains(NormalizeKey(opt.Name), "mount")
}
