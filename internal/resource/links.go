package resource

import (
	"sort"

	"github.com/google/uuid"
)

// Role qualifies the semantic purpose of a link
type Role int

const (
	// AssociationRole marks an attribute-to-object association
	AssociationRole Role = -1
	// ReferenceRole marks an ordinary reference item value
	ReferenceRole Role = -2
	// InvalidRole is returned for missing links
	InvalidRole Role = -3
)

// Key identifies one relation: the surrogate link and a row within it
type Key struct {
	First  uuid.UUID
	Second uuid.UUID
}

// IsNil reports whether the key is unset
func (k Key) IsNil() bool {
	return k.First == uuid.Nil && k.Second == uuid.Nil
}

// Surrogate identifies an external resource without requiring it be loaded
type Surrogate struct {
	Index    uint
	TypeName string
	ID       uuid.UUID
	Location string
}

// SurrogateFor builds a surrogate describing res
func SurrogateFor(index uint, res Resource) Surrogate {
	return Surrogate{
		Index:    index,
		TypeName: res.TypeName(),
		ID:       res.ID(),
		Location: res.Location(),
	}
}

// Row is one relation between a source object and a target object
type Row struct {
	ID   uuid.UUID
	LHS  uuid.UUID
	RHS  uuid.UUID
	Role Role
}

// Link is a resource-level relation towards a surrogate resource. Its rows
// hold the object-level relations.
type Link struct {
	ID        uuid.UUID
	Surrogate Surrogate
	LHS       uuid.UUID
	RHS       uuid.UUID
	Role      Role

	rows  map[uuid.UUID]Row
	order []uuid.UUID
}

// Insert appends a row keyed by rowID. An existing row with the same id is
// left untouched and false is returned.
func (l *Link) Insert(rowID, lhs, rhs uuid.UUID, role Role) bool {
	if l.rows == nil {
		l.rows = make(map[uuid.UUID]Row)
	}
	if _, exists := l.rows[rowID]; exists {
		return false
	}
	l.rows[rowID] = Row{ID: rowID, LHS: lhs, RHS: rhs, Role: role}
	l.order = append(l.order, rowID)
	return true
}

// Row returns the row with the given id
func (l *Link) Row(rowID uuid.UUID) (Row, bool) {
	r, ok := l.rows[rowID]
	return r, ok
}

// Rows returns all rows in insertion order
func (l *Link) Rows() []Row {
	out := make([]Row, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.rows[id])
	}
	return out
}

// Erase removes a row
func (l *Link) Erase(rowID uuid.UUID) bool {
	if _, ok := l.rows[rowID]; !ok {
		return false
	}
	delete(l.rows, rowID)
	for i, id := range l.order {
		if id == rowID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of rows
func (l *Link) Len() int { return len(l.order) }

// Table is the per-resource link/surrogate table
type Table struct {
	links map[uuid.UUID]*Link
	order []uuid.UUID
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{links: make(map[uuid.UUID]*Link)}
}

// Insert registers a surrogate link under id. If id is already registered
// the existing link is kept and returned unchanged.
func (t *Table) Insert(s Surrogate, id, lhs, rhs uuid.UUID, role Role) *Link {
	if existing, ok := t.links[id]; ok {
		return existing
	}
	l := &Link{ID: id, Surrogate: s, LHS: lhs, RHS: rhs, Role: role}
	t.links[id] = l
	t.order = append(t.order, id)
	return l
}

// Contains reports whether a surrogate link with id exists
func (t *Table) Contains(id uuid.UUID) bool {
	_, ok := t.links[id]
	return ok
}

// Value returns the link with id, or nil
func (t *Table) Value(id uuid.UUID) *Link {
	return t.links[id]
}

// Links returns all links in insertion order
func (t *Table) Links() []*Link {
	out := make([]*Link, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.links[id])
	}
	return out
}

// FindLink returns the first link whose surrogate targets resource rhs
func (t *Table) FindLink(rhs uuid.UUID) *Link {
	for _, id := range t.order {
		if l := t.links[id]; l.Surrogate.ID == rhs {
			return l
		}
	}
	return nil
}

// NextSurrogateIndex returns an index one past the largest in use
func (t *Table) NextSurrogateIndex() uint {
	var next uint
	for _, l := range t.links {
		if l.Surrogate.Index >= next {
			next = l.Surrogate.Index + 1
		}
	}
	return next
}

// Row looks up the row addressed by key
func (t *Table) Row(key Key) (*Link, Row, bool) {
	l, ok := t.links[key.First]
	if !ok {
		return nil, Row{}, false
	}
	r, ok := l.Row(key.Second)
	return l, r, ok
}

// Erase removes the row addressed by key. Links left without rows are kept
// so their surrogates survive.
func (t *Table) Erase(key Key) bool {
	l, ok := t.links[key.First]
	if !ok {
		return false
	}
	return l.Erase(key.Second)
}

// RemoveRows deletes every row whose LHS is lhs and returns how many went
func (t *Table) RemoveRows(lhs uuid.UUID) int {
	n := 0
	for _, l := range t.links {
		for _, r := range l.Rows() {
			if r.LHS == lhs {
				l.Erase(r.ID)
				n++
			}
		}
	}
	return n
}

// RowsTo returns every row targeting rhs with the given role
func (t *Table) RowsTo(rhs uuid.UUID, role Role) []Row {
	var out []Row
	for _, id := range t.order {
		for _, r := range t.links[id].Rows() {
			if r.RHS == rhs && r.Role == role {
				out = append(out, r)
			}
		}
	}
	return out
}

// Rows returns every row with the given role, sorted by LHS then RHS
func (t *Table) Rows(role Role) []Row {
	var out []Row
	for _, id := range t.order {
		for _, r := range t.links[id].Rows() {
			if r.Role == role {
				out = append(out, r)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LHS != out[j].LHS {
			return out[i].LHS.String() < out[j].LHS.String()
		}
		return out[i].RHS.String() < out[j].RHS.String()
	})
	return out
}

// LinksWithRole returns the links whose own role is role
func (t *Table) LinksWithRole(role Role) []*Link {
	var out []*Link
	for _, id := range t.order {
		if l := t.links[id]; l.Role == role {
			out = append(out, l)
		}
	}
	return out
}

// Surrogates returns the distinct surrogates in the table
func (t *Table) Surrogates() []Surrogate {
	seen := make(map[uuid.UUID]bool)
	var out []Surrogate
	for _, id := range t.order {
		s := t.links[id].Surrogate
		if !seen[s.ID] {
			seen[s.ID] = true
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of links
func (t *Table) Len() int { return len(t.order) }
