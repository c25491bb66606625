package ui

import (
	"sort"
	"strings"
)

const (
	// DefaultMaxDistance is the largest edit distance offered as a suggestion
	DefaultMaxDistance = 3
	// DefaultMaxSuggestions caps the number of names suggested
	DefaultMaxSuggestions = 3
)

// Suggest returns up to DefaultMaxSuggestions names from candidates that are
// within DefaultMaxDistance edits of target, closest first. Matching ignores
// case; ties keep candidate order.
func Suggest(target string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}
	want := strings.ToLower(target)
	var matches []scored
	for _, c := range candidates {
		if c == target {
			continue
		}
		if d := Distance(want, strings.ToLower(c)); d <= DefaultMaxDistance {
			matches = append(matches, scored{c, d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].dist < matches[j].dist })

	out := make([]string, 0, DefaultMaxSuggestions)
	for i := 0; i < len(matches) && i < DefaultMaxSuggestions; i++ {
		out = append(out, matches[i].name)
	}
	return out
}

// Distance is the Levenshtein edit distance between a and b, counted in runes
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = minInt(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
