package attribute

import (
	"github.com/google/uuid"

	"github.com/conduit-lang/attrkit/internal/resource"
)

// AttributeTypeName is the persistent type name of every attribute
const AttributeTypeName = "attribute"

// Attribute is a named instance of a definition. It is a component of its
// resource and owns one item per item definition, inherited ones first.
type Attribute struct {
	resource     *Resource
	def          *Definition
	id           uuid.UUID
	name         string
	items        []Item
	associations *ReferenceItem
	advance      advanceLevels
}

func newAttribute(res *Resource, def *Definition, name string, id uuid.UUID) *Attribute {
	a := &Attribute{resource: res, def: def, id: id, name: name}
	for _, idef := range def.ItemDefinitions() {
		a.items = append(a.items, idef.newItem(a, nil))
	}
	if rule := def.AssociationRule(); rule != nil {
		a.associations = rule.newItem(a, nil).(*ReferenceItem)
	}
	return a
}

// ID implements resource.PersistentObject
func (a *Attribute) ID() uuid.UUID { return a.id }

// Name implements resource.PersistentObject
func (a *Attribute) Name() string { return a.name }

// TypeName implements resource.PersistentObject
func (a *Attribute) TypeName() string { return AttributeTypeName }

// Resource implements resource.Component
func (a *Attribute) Resource() resource.Resource {
	if a.resource == nil {
		return nil
	}
	return a.resource
}

// AttributeResource returns the owning attribute resource
func (a *Attribute) AttributeResource() *Resource { return a.resource }

// Definition returns the attribute's definition
func (a *Attribute) Definition() *Definition { return a.def }

// Type returns the definition's type name
func (a *Attribute) Type() string { return a.def.typeName }

// IsA reports whether the attribute's definition is or derives from typeName
func (a *Attribute) IsA(typeName string) bool { return a.def.IsATypeName(typeName) }

// Items returns the attribute's items in definition order
func (a *Attribute) Items() []Item { return append([]Item(nil), a.items...) }

// NumberOfItems returns the item count
func (a *Attribute) NumberOfItems() int { return len(a.items) }

// Item returns item i, or nil
func (a *Attribute) Item(i int) Item {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// Find returns the top-level item named name, or nil
func (a *Attribute) Find(name string) Item {
	for _, it := range a.items {
		if it.Name() == name {
			return it
		}
	}
	return nil
}

// FindRecursive searches top-level items, then group rows and conditional
// children, depth first
func (a *Attribute) FindRecursive(name string) Item {
	var walk func(items []Item) Item
	walk = func(items []Item) Item {
		for _, it := range items {
			if it.Name() == name {
				return it
			}
			switch x := it.(type) {
			case *GroupItem:
				for _, row := range x.rows {
					if found := walk(row); found != nil {
						return found
					}
				}
			case *ValueItem:
				if found := walk(x.children); found != nil {
					return found
				}
			}
		}
		return nil
	}
	return walk(a.items)
}

// FindValue returns the value item named name, or nil
func (a *Attribute) FindValue(name string) *ValueItem {
	v, _ := a.Find(name).(*ValueItem)
	return v
}

// FindGroup returns the group item named name, or nil
func (a *Attribute) FindGroup(name string) *GroupItem {
	g, _ := a.Find(name).(*GroupItem)
	return g
}

// FindReference returns the reference item named name, or nil
func (a *Attribute) FindReference(name string) *ReferenceItem {
	r, _ := a.Find(name).(*ReferenceItem)
	return r
}

// FindVoid returns the void item named name, or nil
func (a *Attribute) FindVoid(name string) *VoidItem {
	v, _ := a.Find(name).(*VoidItem)
	return v
}

// Associations returns the association item, or nil when the definition
// has no association rule
func (a *Attribute) Associations() *ReferenceItem { return a.associations }

// Associate attaches the attribute to obj after checking the association
// rule, uniqueness, exclusions and prerequisites
func (a *Attribute) Associate(obj resource.PersistentObject) error {
	if a.associations == nil {
		return enrich(ErrNoAssociationRule, "%q", a.def.typeName)
	}
	if obj == nil {
		return enrich(ErrValueRejected, "%q: nil object", a.name)
	}
	if a.IsObjectAssociated(obj.ID()) {
		return nil
	}
	if !a.associations.def.IsValueValid(obj) {
		return enrich(ErrValueRejected, "%q cannot be associated with %s %q", a.name, obj.TypeName(), obj.Name())
	}
	for _, other := range a.resource.AttributesAssociatedWith(obj.ID()) {
		if other == a {
			continue
		}
		if (a.def.unique && other.def.IsA(a.def)) || (other.def.unique && a.def.IsA(other.def)) {
			return enrich(ErrNotUnique, "%q and %q on %q", a.name, other.name, obj.Name())
		}
		if a.def.IsExclusive(other.def) || other.def.IsExclusive(a.def) {
			return enrich(ErrExcluded, "%q by %q on %q", a.name, other.name, obj.Name())
		}
	}
	for _, p := range a.def.AllPrerequisites() {
		if !a.resource.hasAssociated(obj.ID(), p) {
			return enrich(ErrPrerequisiteMissing, "%q needs a %q on %q", a.name, p.typeName, obj.Name())
		}
	}
	return a.associations.AppendObject(obj)
}

// Disassociate detaches the attribute from the object with id. Attributes
// whose prerequisites would break are left alone unless force is set.
func (a *Attribute) Disassociate(id uuid.UUID, force bool) error {
	if a.associations == nil {
		return nil
	}
	i := a.associations.Find(id)
	if i < 0 {
		return nil
	}
	if !force {
		for _, other := range a.resource.AttributesAssociatedWith(id) {
			if other == a {
				continue
			}
			for _, p := range other.def.AllPrerequisites() {
				if a.def.IsA(p) && a.resource.countAssociated(id, p) == 1 {
					return enrich(ErrPrerequisiteMissing, "%q is required by %q", a.name, other.name)
				}
			}
		}
	}
	if a.associations.IsFixedCount() {
		return a.associations.Unset(i)
	}
	return a.associations.RemoveValue(i)
}

// IsObjectAssociated reports whether the object with id is associated
func (a *Attribute) IsObjectAssociated(id uuid.UUID) bool {
	return a.associations != nil && a.associations.Find(id) >= 0
}

// AssociatedObjects resolves every association; targets in unloaded
// resources come back unresolved
func (a *Attribute) AssociatedObjects() []resource.Resolution {
	if a.associations == nil {
		return nil
	}
	var out []resource.Resolution
	for i := 0; i < a.associations.NumberOfValues(); i++ {
		if a.associations.IsSet(i) {
			out = append(out, a.associations.Object(i))
		}
	}
	return out
}

// LocalAdvanceLevel returns the per-instance override
func (a *Attribute) LocalAdvanceLevel(mode AdvanceMode) (uint, bool) {
	return a.advance.local(mode)
}

func (a *Attribute) SetLocalAdvanceLevel(mode AdvanceMode, level uint) {
	a.advance.setLocal(mode, level)
}

func (a *Attribute) UnsetLocalAdvanceLevel(mode AdvanceMode) {
	a.advance.unset(mode)
}

// AdvanceLevel returns the override when set, otherwise the definition's
func (a *Attribute) AdvanceLevel(mode AdvanceMode) uint {
	if l, ok := a.advance.local(mode); ok {
		return l
	}
	return a.def.AdvanceLevel(mode)
}

// IsRelevant reports whether the definition passes the category filter
func (a *Attribute) IsRelevant(active map[string]struct{}) bool {
	return a.def.IsRelevant(active)
}

// IsValid reports whether every relevant item is valid. A nil filter
// checks every item.
func (a *Attribute) IsValid(active map[string]struct{}) bool {
	for _, it := range a.items {
		if active != nil && !it.IsRelevant(active) {
			continue
		}
		if !it.IsValid() {
			return false
		}
	}
	return true
}

// Reset resets every item
func (a *Attribute) Reset() {
	for _, it := range a.items {
		it.Reset()
	}
}
