package category

// Stack folds several sets together. The first entry's mode is ignored.
type Stack struct {
	entries []stackEntry
}

type stackEntry struct {
	mode Mode
	set  *Set
}

// Append adds a set combined with the previous result by mode. Empty sets
// are skipped.
func (s *Stack) Append(mode Mode, set *Set) {
	if set == nil || set.Empty() {
		return
	}
	s.entries = append(s.entries, stackEntry{mode: mode, set: set})
}

// AppendStack adds every entry of other; the first one is joined by mode
func (s *Stack) AppendStack(mode Mode, other Stack) {
	for i, e := range other.entries {
		m := e.mode
		if i == 0 {
			m = mode
		}
		s.entries = append(s.entries, stackEntry{mode: m, set: e.set})
	}
}

// Len returns the number of non-empty sets in the stack
func (s Stack) Len() int { return len(s.entries) }

// Passes evaluates the stack left to right. An empty stack passes.
func (s Stack) Passes(active map[string]struct{}) bool {
	if len(s.entries) == 0 {
		return true
	}
	result := s.entries[0].set.Passes(active)
	for _, e := range s.entries[1:] {
		if e.mode == And {
			result = result && e.set.Passes(active)
		} else {
			result = result || e.set.Passes(active)
		}
	}
	return result
}

// Categories returns every category referenced anywhere in the stack
func (s Stack) Categories() []string {
	all := make(map[string]struct{})
	for _, e := range s.entries {
		for _, c := range e.set.All() {
			all[c] = struct{}{}
		}
	}
	return sortedKeys(all)
}
