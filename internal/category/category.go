// Package category implements the category predicates attached to attribute
// and item definitions. A Set holds inclusion and exclusion labels that are
// evaluated against the caller's active categories; a Stack combines the sets
// contributed by a definition and its base types.
package category

import (
	"fmt"
	"sort"
	"strings"
)

// Mode is a boolean combination mode
type Mode int

const (
	Or Mode = iota
	And
)

// String returns the document form of the mode
func (m Mode) String() string {
	switch m {
	case And:
		return "And"
	default:
		return "Or"
	}
}

// ParseMode converts a document string into a Mode. "Any"/"Or" and
// "All"/"And" are accepted regardless of case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "or", "any":
		return Or, nil
	case "and", "all":
		return And, nil
	default:
		return Or, fmt.Errorf("unknown category combination mode: %q", s)
	}
}

// Set is a local category predicate
type Set struct {
	inclusions    map[string]struct{}
	exclusions    map[string]struct{}
	inclusionMode Mode
	exclusionMode Mode
	combination   Mode
}

// NewSet creates an empty set with Or modes and And combination
func NewSet() *Set {
	return &Set{
		inclusions:  make(map[string]struct{}),
		exclusions:  make(map[string]struct{}),
		combination: And,
	}
}

// InsertInclusion adds a category to the inclusion group
func (s *Set) InsertInclusion(cat string) {
	if cat == "" {
		return
	}
	if s.inclusions == nil {
		s.inclusions = make(map[string]struct{})
	}
	s.inclusions[cat] = struct{}{}
}

// InsertExclusion adds a category to the exclusion group
func (s *Set) InsertExclusion(cat string) {
	if cat == "" {
		return
	}
	if s.exclusions == nil {
		s.exclusions = make(map[string]struct{})
	}
	s.exclusions[cat] = struct{}{}
}

// SetInclusionMode sets how inclusion categories are combined
func (s *Set) SetInclusionMode(m Mode) { s.inclusionMode = m }

// SetExclusionMode sets how exclusion categories are combined
func (s *Set) SetExclusionMode(m Mode) { s.exclusionMode = m }

// SetCombinationMode sets how the inclusion and exclusion results are combined
func (s *Set) SetCombinationMode(m Mode) { s.combination = m }

func (s *Set) InclusionMode() Mode { return s.inclusionMode }
func (s *Set) ExclusionMode() Mode { return s.exclusionMode }
func (s *Set) CombinationMode() Mode { return s.combination }

// Inclusions returns the sorted inclusion categories
func (s *Set) Inclusions() []string { return sortedKeys(s.inclusions) }

// Exclusions returns the sorted exclusion categories
func (s *Set) Exclusions() []string { return sortedKeys(s.exclusions) }

// Empty reports whether the set constrains nothing
func (s *Set) Empty() bool {
	return len(s.inclusions) == 0 && len(s.exclusions) == 0
}

// Reset clears both groups and restores default modes
func (s *Set) Reset() {
	*s = *NewSet()
}

// Passes evaluates the set against the active categories
func (s *Set) Passes(active map[string]struct{}) bool {
	if s.Empty() {
		return true
	}
	included := matches(s.inclusions, s.inclusionMode, active)
	excluded := matches(s.exclusions, s.exclusionMode, active)
	if len(s.exclusions) == 0 {
		return included
	}
	if len(s.inclusions) == 0 {
		return !excluded
	}
	if s.combination == And {
		return included && !excluded
	}
	return included || !excluded
}

// Clone returns a deep copy of the set
func (s *Set) Clone() *Set {
	c := NewSet()
	for k := range s.inclusions {
		c.inclusions[k] = struct{}{}
	}
	for k := range s.exclusions {
		c.exclusions[k] = struct{}{}
	}
	c.inclusionMode = s.inclusionMode
	c.exclusionMode = s.exclusionMode
	c.combination = s.combination
	return c
}

// All returns every category mentioned by the set
func (s *Set) All() []string {
	all := make(map[string]struct{}, len(s.inclusions)+len(s.exclusions))
	for k := range s.inclusions {
		all[k] = struct{}{}
	}
	for k := range s.exclusions {
		all[k] = struct{}{}
	}
	return sortedKeys(all)
}

func matches(group map[string]struct{}, mode Mode, active map[string]struct{}) bool {
	if len(group) == 0 {
		return false
	}
	for cat := range group {
		_, ok := active[cat]
		if ok && mode == Or {
			return true
		}
		if !ok && mode == And {
			return false
		}
	}
	return mode == And
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Active builds an active-category lookup from a list
func Active(cats ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(cats))
	for _, c := range cats {
		if c != "" {
			m[c] = struct{}{}
		}
	}
	return m
}
