package attribute

import (
	"github.com/conduit-lang/attrkit/internal/category"
)

// Item is one named field of an attribute. The concrete types are ValueItem,
// VoidItem, GroupItem and ReferenceItem; Kind tells them apart without a
// type switch.
type Item interface {
	Name() string
	Label() string
	Kind() ItemKind
	Definition() ItemDefinition
	// Attribute returns the attribute owning the item
	Attribute() *Attribute
	// Parent returns the enclosing group or discrete item, or nil
	Parent() Item

	IsOptional() bool
	IsEnabled() bool
	SetIsEnabled(enabled bool)
	// LocalEnabled returns the enabled flag without considering the parent
	LocalEnabled() bool

	LocalAdvanceLevel(mode AdvanceMode) (uint, bool)
	SetLocalAdvanceLevel(mode AdvanceMode, level uint)
	UnsetLocalAdvanceLevel(mode AdvanceMode)
	AdvanceLevel(mode AdvanceMode) uint
	IsVisible(mode AdvanceMode, level uint) bool

	Categories() category.Stack
	IsRelevant(active map[string]struct{}) bool

	// IsValid reports whether every required element is set
	IsValid() bool
	Reset()
}

// item carries the state common to all items
type item struct {
	def     ItemDefinition
	att     *Attribute
	parent  Item
	enabled bool
	advance advanceLevels
}

func newItem(def ItemDefinition, att *Attribute, parent Item) item {
	return item{def: def, att: att, parent: parent, enabled: def.IsEnabledByDefault()}
}

func (i *item) Name() string { return i.def.Name() }
func (i *item) Label() string { return i.def.Label() }
func (i *item) Kind() ItemKind { return i.def.Kind() }
func (i *item) Definition() ItemDefinition { return i.def }
func (i *item) Attribute() *Attribute { return i.att }
func (i *item) Parent() Item { return i.parent }
func (i *item) IsOptional() bool { return i.def.IsOptional() }
func (i *item) LocalEnabled() bool { return i.enabled }

// IsEnabled reports whether the item is in use. Required items are always
// enabled; optional ones follow their flag and their parent's state.
func (i *item) IsEnabled() bool {
	if i.parent != nil && !i.parent.IsEnabled() {
		return false
	}
	if !i.def.IsOptional() {
		return true
	}
	return i.enabled
}

func (i *item) SetIsEnabled(enabled bool) { i.enabled = enabled }

func (i *item) LocalAdvanceLevel(mode AdvanceMode) (uint, bool) {
	return i.advance.local(mode)
}

func (i *item) SetLocalAdvanceLevel(mode AdvanceMode, level uint) {
	i.advance.setLocal(mode, level)
}

func (i *item) UnsetLocalAdvanceLevel(mode AdvanceMode) {
	i.advance.unset(mode)
}

// AdvanceLevel returns the effective level: the item's local override or
// its definition's, never lower than the enclosing item or attribute.
func (i *item) AdvanceLevel(mode AdvanceMode) uint {
	var level uint
	if l, ok := i.advance.local(mode); ok {
		level = l
	} else if l, ok := i.def.LocalAdvanceLevel(mode); ok {
		level = l
	}
	switch {
	case i.parent != nil:
		level = maxLevel(level, i.parent.AdvanceLevel(mode))
	case i.att != nil:
		level = maxLevel(level, i.att.AdvanceLevel(mode))
	}
	return level
}

// IsVisible reports whether a reader at level may see the item
func (i *item) IsVisible(mode AdvanceMode, level uint) bool {
	return level >= i.AdvanceLevel(mode)
}

// Categories returns the owner's effective stack with the item's local set
// appended under And
func (i *item) Categories() category.Stack {
	var stack category.Stack
	switch {
	case i.parent != nil:
		stack = i.parent.Categories()
	case i.att != nil:
		stack = i.att.Definition().Categories()
	}
	stack.Append(category.And, i.def.LocalCategories())
	return stack
}

// IsRelevant reports whether the item passes its category filter
func (i *item) IsRelevant(active map[string]struct{}) bool {
	stack := i.Categories()
	return stack.Passes(active)
}

// VoidItem has no value; only its enabled state matters
type VoidItem struct {
	item
}

func (v *VoidItem) IsValid() bool { return true }

// Reset restores the default enabled state
func (v *VoidItem) Reset() { v.enabled = v.def.IsEnabledByDefault() }

// checkIndex returns ErrOutOfRange unless 0 <= i < n
func checkIndex(name string, i, n int) error {
	if i < 0 || i >= n {
		return enrich(ErrOutOfRange, "%q element %d of %d", name, i, n)
	}
	return nil
}

// checkResize validates a new element count against the count rules. A
// non-extensible item with no required count is variable length.
func checkResize(name string, n, required int, extensible bool, max int) error {
	if !extensible && required > 0 {
		if n != required {
			return enrich(ErrNotExtensible, "%q has a fixed count of %d", name, required)
		}
		return nil
	}
	if n < required {
		return enrich(ErrMinValues, "%q requires %d", name, required)
	}
	if max > 0 && n > max {
		return enrich(ErrMaxValues, "%q allows at most %d", name, max)
	}
	return nil
}
