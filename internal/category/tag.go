package category

import "sort"

// Tag is a named label with an optional set of values
type Tag struct {
	Name   string
	values map[string]struct{}
}

// NewTag creates a tag with the given values
func NewTag(name string, values ...string) Tag {
	t := Tag{Name: name, values: make(map[string]struct{}, len(values))}
	for _, v := range values {
		t.values[v] = struct{}{}
	}
	return t
}

// Values returns the sorted tag values
func (t Tag) Values() []string {
	return sortedKeys(t.values)
}

// Has reports whether the tag carries value v
func (t Tag) Has(v string) bool {
	_, ok := t.values[v]
	return ok
}

// Tags is an ordered-by-name collection of tags
type Tags struct {
	byName map[string]Tag
}

// Add inserts a tag. It returns false if a tag with the same name exists.
func (ts *Tags) Add(t Tag) bool {
	if t.Name == "" {
		return false
	}
	if ts.byName == nil {
		ts.byName = make(map[string]Tag)
	}
	if _, exists := ts.byName[t.Name]; exists {
		return false
	}
	ts.byName[t.Name] = t
	return true
}

// Remove deletes a tag by name
func (ts *Tags) Remove(name string) bool {
	if _, exists := ts.byName[name]; !exists {
		return false
	}
	delete(ts.byName, name)
	return true
}

// Find returns the tag with the given name
func (ts *Tags) Find(name string) (Tag, bool) {
	t, ok := ts.byName[name]
	return t, ok
}

// All returns tags sorted by name
func (ts *Tags) All() []Tag {
	out := make([]Tag, 0, len(ts.byName))
	for _, t := range ts.byName {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of tags
func (ts *Tags) Len() int { return len(ts.byName) }
