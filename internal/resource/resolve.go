package resource

import (
	"fmt"

	"github.com/google/uuid"
)

// Unresolved describes a reference whose target resource is not loaded
type Unresolved struct {
	Surrogate Surrogate
	ObjectID  uuid.UUID
}

func (u Unresolved) String() string {
	return fmt.Sprintf("%s %s (resource %s at %q)", u.Surrogate.TypeName, u.ObjectID, u.Surrogate.ID, u.Surrogate.Location)
}

// Resolution is the result of resolving a key. Exactly one of Object or
// Unresolved is meaningful; Found is false when the key is not in the table.
type Resolution struct {
	Object     PersistentObject
	Unresolved *Unresolved
	Found      bool
	Role       Role
}

// IsResolved reports whether a live object was found
func (r Resolution) IsResolved() bool {
	return r.Object != nil
}

// Resolve looks key up in table and, if the surrogate's resource is known to
// finder, returns the live object. Nothing is ever loaded: an absent target
// yields an Unresolved marker carrying the surrogate.
func Resolve(table *Table, finder Finder, key Key) Resolution {
	link, row, ok := table.Row(key)
	if !ok {
		return Resolution{Role: InvalidRole}
	}
	res := Resolution{Found: true, Role: row.Role}

	target := findSurrogate(finder, link.Surrogate)
	if target != nil {
		if row.RHS == target.ID() {
			res.Object = target
			return res
		}
		if c := target.Find(row.RHS); c != nil {
			res.Object = c
			return res
		}
	}
	res.Unresolved = &Unresolved{Surrogate: link.Surrogate, ObjectID: row.RHS}
	return res
}

func findSurrogate(finder Finder, s Surrogate) Resource {
	if finder == nil {
		return nil
	}
	if r, ok := finder.Find(s.ID); ok {
		return r
	}
	if s.TypeName == "" {
		return nil
	}
	for _, r := range finder.FindByType(s.TypeName) {
		if r.ID() == s.ID {
			return r
		}
	}
	return nil
}

// Chain combines finders; the first hit wins
type Chain []Finder

// Find implements Finder
func (c Chain) Find(id uuid.UUID) (Resource, bool) {
	for _, f := range c {
		if f == nil {
			continue
		}
		if r, ok := f.Find(id); ok {
			return r, true
		}
	}
	return nil, false
}

// FindByType implements Finder
func (c Chain) FindByType(typeName string) []Resource {
	var out []Resource
	for _, f := range c {
		if f != nil {
			out = append(out, f.FindByType(typeName)...)
		}
	}
	return out
}
