package attribute

import (
	"github.com/google/uuid"

	"github.com/conduit-lang/attrkit/internal/resource"
)

// ReferenceItem points at persistent objects through the owning resource's
// link table. Each element stores a key; the target is resolved on demand
// and may live in a resource that is not loaded.
type ReferenceItem struct {
	item
	def  *ReferenceItemDefinition
	keys []resource.Key
}

// ReferenceDefinition returns the typed definition
func (r *ReferenceItem) ReferenceDefinition() *ReferenceItemDefinition { return r.def }

func (r *ReferenceItem) Role() resource.Role { return r.def.role }
func (r *ReferenceItem) NumberOfValues() int { return len(r.keys) }
func (r *ReferenceItem) NumberOfRequiredValues() int { return r.def.numRequired }
func (r *ReferenceItem) MaxNumberOfValues() int { return r.def.maxValues }
func (r *ReferenceItem) IsExtensible() bool { return r.def.extensible }
func (r *ReferenceItem) IsFixedCount() bool { return r.def.IsFixedCount() }

// IsSet reports whether element i holds a key
func (r *ReferenceItem) IsSet(i int) bool {
	return i >= 0 && i < len(r.keys) && !r.keys[i].IsNil()
}

// Key returns the key stored in element i
func (r *ReferenceItem) Key(i int) resource.Key {
	if i < 0 || i >= len(r.keys) {
		return resource.Key{}
	}
	return r.keys[i]
}

// SetKey stores a key without touching the link table. Codecs use it after
// inserting the link rows themselves.
func (r *ReferenceItem) SetKey(i int, key resource.Key) error {
	if err := checkIndex(r.Name(), i, len(r.keys)); err != nil {
		return err
	}
	r.keys[i] = key
	return nil
}

func (r *ReferenceItem) table() *resource.Table {
	if r.att == nil || r.att.resource == nil {
		return nil
	}
	return r.att.resource.links
}

// Object resolves element i through the link table. A target in an unloaded
// resource comes back unresolved rather than failing.
func (r *ReferenceItem) Object(i int) resource.Resolution {
	if !r.IsSet(i) || r.table() == nil {
		return resource.Resolution{Role: resource.InvalidRole}
	}
	return resource.Resolve(r.table(), r.att.resource.Finder(), r.keys[i])
}

// Objects returns the resolved targets of every set element
func (r *ReferenceItem) Objects() []resource.PersistentObject {
	var out []resource.PersistentObject
	for i := range r.keys {
		if res := r.Object(i); res.IsResolved() {
			out = append(out, res.Object)
		}
	}
	return out
}

// Find returns the index of the element targeting id, or -1
func (r *ReferenceItem) Find(id uuid.UUID) int {
	t := r.table()
	if t == nil {
		return -1
	}
	for i, key := range r.keys {
		if key.IsNil() {
			continue
		}
		if _, row, ok := t.Row(key); ok && row.RHS == id {
			return i
		}
	}
	return -1
}

// IsValueValid reports whether obj may be stored in this item
func (r *ReferenceItem) IsValueValid(obj resource.PersistentObject) bool {
	if !r.def.IsValueValid(obj) {
		return false
	}
	if r.att == nil || r.att.resource == nil {
		return true
	}
	res := r.att.resource
	if !res.IsRoleUnique(r.def.role) {
		return true
	}
	for _, row := range res.links.RowsTo(obj.ID(), r.def.role) {
		if row.LHS != r.att.id {
			return false
		}
	}
	return true
}

// SetObject stores obj in element i, replacing any previous target
func (r *ReferenceItem) SetObject(i int, obj resource.PersistentObject) error {
	if obj == nil {
		return enrich(ErrValueRejected, "%q: nil object", r.Name())
	}
	if err := checkIndex(r.Name(), i, len(r.keys)); err != nil {
		return err
	}
	if !r.IsValueValid(obj) {
		return enrich(ErrValueRejected, "%q cannot reference %s %q", r.Name(), obj.TypeName(), obj.Name())
	}
	key, err := r.link(obj)
	if err != nil {
		return err
	}
	r.release(i)
	r.keys[i] = key
	return nil
}

// AppendObject adds an element targeting obj. Objects already referenced
// are not added twice.
func (r *ReferenceItem) AppendObject(obj resource.PersistentObject) error {
	if obj == nil {
		return enrich(ErrValueRejected, "%q: nil object", r.Name())
	}
	if r.Find(obj.ID()) >= 0 {
		return nil
	}
	// reuse an unset slot before growing
	for i, key := range r.keys {
		if key.IsNil() {
			return r.SetObject(i, obj)
		}
	}
	if err := checkResize(r.Name(), len(r.keys)+1, r.def.numRequired, r.def.extensible, r.def.maxValues); err != nil {
		return err
	}
	if !r.IsValueValid(obj) {
		return enrich(ErrValueRejected, "%q cannot reference %s %q", r.Name(), obj.TypeName(), obj.Name())
	}
	key, err := r.link(obj)
	if err != nil {
		return err
	}
	r.keys = append(r.keys, key)
	return nil
}

// RemoveValue deletes element i and its link row
func (r *ReferenceItem) RemoveValue(i int) error {
	if err := checkResize(r.Name(), len(r.keys)-1, r.def.numRequired, r.def.extensible, r.def.maxValues); err != nil {
		return err
	}
	if err := checkIndex(r.Name(), i, len(r.keys)); err != nil {
		return err
	}
	r.release(i)
	r.keys = append(r.keys[:i], r.keys[i+1:]...)
	return nil
}

// Unset clears element i and drops its link row
func (r *ReferenceItem) Unset(i int) error {
	if err := checkIndex(r.Name(), i, len(r.keys)); err != nil {
		return err
	}
	r.release(i)
	return nil
}

// SetNumberOfValues grows with unset elements or shrinks from the end
func (r *ReferenceItem) SetNumberOfValues(n int) error {
	if n == len(r.keys) {
		return nil
	}
	if err := checkResize(r.Name(), n, r.def.numRequired, r.def.extensible, r.def.maxValues); err != nil {
		return err
	}
	for len(r.keys) > n {
		r.release(len(r.keys) - 1)
		r.keys = r.keys[:len(r.keys)-1]
	}
	for len(r.keys) < n {
		r.keys = append(r.keys, resource.Key{})
	}
	return nil
}

// Reset clears every element and re-sizes to the required count
func (r *ReferenceItem) Reset() {
	r.enabled = r.def.IsEnabledByDefault()
	for i := range r.keys {
		r.release(i)
	}
	r.keys = make([]resource.Key, r.def.numRequired)
}

// IsValid reports whether the item is disabled or every element is set
func (r *ReferenceItem) IsValid() bool {
	if !r.IsEnabled() {
		return true
	}
	for _, k := range r.keys {
		if k.IsNil() {
			return false
		}
	}
	return true
}

// link registers obj in the resource's link table and returns the key of
// the new row. The link for obj's resource is reused when present.
func (r *ReferenceItem) link(obj resource.PersistentObject) (resource.Key, error) {
	if r.att == nil || r.att.resource == nil {
		return resource.Key{}, enrich(ErrNotFound, "%q is not owned by a resource", r.Name())
	}
	owner := resource.OwningResource(obj)
	if owner == nil {
		return resource.Key{}, enrich(ErrValueRejected, "%s %q has no resource", obj.TypeName(), obj.Name())
	}
	res := r.att.resource
	l := res.links.FindLink(owner.ID())
	if l == nil {
		s := resource.SurrogateFor(res.links.NextSurrogateIndex(), owner)
		l = res.links.Insert(s, uuid.New(), res.id, owner.ID(), resource.ReferenceRole)
	}
	rowID := uuid.New()
	l.Insert(rowID, r.att.id, obj.ID(), r.def.role)
	return resource.Key{First: l.ID, Second: rowID}, nil
}

// release erases the link row of element i
func (r *ReferenceItem) release(i int) {
	if r.keys[i].IsNil() {
		return
	}
	if t := r.table(); t != nil {
		t.Erase(r.keys[i])
	}
	r.keys[i] = resource.Key{}
}

// detachItem erases every link row held by it and its descendants
func detachItem(it Item) {
	switch x := it.(type) {
	case *ReferenceItem:
		for i := range x.keys {
			x.release(i)
		}
	case *GroupItem:
		for _, row := range x.rows {
			x.detach(row)
		}
	case *ValueItem:
		for _, c := range x.children {
			detachItem(c)
		}
	}
}
