package attribute

import (
	"github.com/conduit-lang/attrkit/internal/category"
	"github.com/conduit-lang/attrkit/internal/resource"
)

// Definition is the schema of an attribute type. Definitions form a single
// inheritance tree inside one resource; items of the base come first.
type Definition struct {
	resource *Resource
	typeName string
	base     *Definition

	label    string
	version  int
	abstract bool
	unique   bool
	nodal    bool
	brief    string
	detailed string

	itemDefs  []ItemDefinition
	itemIndex map[string]int

	categories      *category.Set
	inheritanceMode category.Mode
	tags            category.Tags

	exclusions    []*Definition
	prerequisites []*Definition
	association   *ReferenceItemDefinition

	advance advanceLevels
}

func (d *Definition) Type() string { return d.typeName }
func (d *Definition) Resource() *Resource { return d.resource }
func (d *Definition) BaseDefinition() *Definition { return d.base }
func (d *Definition) Version() int { return d.version }
func (d *Definition) SetVersion(v int) { d.version = v }
func (d *Definition) IsAbstract() bool { return d.abstract }
func (d *Definition) SetIsAbstract(b bool) { d.abstract = b }
func (d *Definition) IsUnique() bool { return d.unique }
func (d *Definition) SetIsUnique(b bool) { d.unique = b }
func (d *Definition) IsNodal() bool { return d.nodal }
func (d *Definition) SetIsNodal(b bool) { d.nodal = b }
func (d *Definition) BriefDescription() string { return d.brief }
func (d *Definition) SetBriefDescription(s string) { d.brief = s }
func (d *Definition) DetailedDescription() string { return d.detailed }
func (d *Definition) SetDetailedDescription(s string) { d.detailed = s }
func (d *Definition) SetLabel(label string) { d.label = label }
func (d *Definition) HasLabel() bool { return d.label != "" }

// Label returns the display label, falling back to the type name
func (d *Definition) Label() string {
	if d.label == "" {
		return d.typeName
	}
	return d.label
}

// IsA reports whether d is other or derives from it
func (d *Definition) IsA(other *Definition) bool {
	if other == nil {
		return false
	}
	for cur := d; cur != nil; cur = cur.base {
		if cur == other {
			return true
		}
	}
	return false
}

// IsATypeName reports whether d or one of its bases has the given type
func (d *Definition) IsATypeName(typeName string) bool {
	for cur := d; cur != nil; cur = cur.base {
		if cur.typeName == typeName {
			return true
		}
	}
	return false
}

// AddItemDefinition appends a template. Names must be unique across the
// whole inheritance chain.
func (d *Definition) AddItemDefinition(idef ItemDefinition) error {
	if d.FindItemDefinition(idef.Name()) != nil {
		return enrich(ErrDuplicateName, "item %q in definition %q", idef.Name(), d.typeName)
	}
	for _, derived := range d.resource.DerivedDefinitions(d) {
		if _, exists := derived.itemIndex[idef.Name()]; exists {
			return enrich(ErrDuplicateName, "item %q in derived definition %q", idef.Name(), derived.typeName)
		}
	}
	d.itemIndex[idef.Name()] = len(d.itemDefs)
	d.itemDefs = append(d.itemDefs, idef)
	return nil
}

// LocalItemDefinitions returns the templates declared on d itself
func (d *Definition) LocalItemDefinitions() []ItemDefinition {
	return append([]ItemDefinition(nil), d.itemDefs...)
}

// ItemDefinitions returns every template, inherited ones first
func (d *Definition) ItemDefinitions() []ItemDefinition {
	var out []ItemDefinition
	if d.base != nil {
		out = d.base.ItemDefinitions()
	}
	return append(out, d.itemDefs...)
}

// FindItemDefinition returns the template named name, searching bases
func (d *Definition) FindItemDefinition(name string) ItemDefinition {
	for cur := d; cur != nil; cur = cur.base {
		if i, ok := cur.itemIndex[name]; ok {
			return cur.itemDefs[i]
		}
	}
	return nil
}

// NumberOfItemDefinitions counts inherited templates too
func (d *Definition) NumberOfItemDefinitions() int {
	n := len(d.itemDefs)
	if d.base != nil {
		n += d.base.NumberOfItemDefinitions()
	}
	return n
}

// LocalCategories is the definition's own category set
func (d *Definition) LocalCategories() *category.Set { return d.categories }

// CategoryInheritanceMode is how the local set joins the base's categories
func (d *Definition) CategoryInheritanceMode() category.Mode { return d.inheritanceMode }

func (d *Definition) SetCategoryInheritanceMode(m category.Mode) { d.inheritanceMode = m }

// Categories returns the effective category stack: the base's stack with
// the local set joined by the inheritance mode
func (d *Definition) Categories() category.Stack {
	var stack category.Stack
	if d.base != nil {
		stack = d.base.Categories()
	}
	stack.Append(d.inheritanceMode, d.categories)
	return stack
}

// IsRelevant reports whether the definition passes its category filter
func (d *Definition) IsRelevant(active map[string]struct{}) bool {
	stack := d.Categories()
	return stack.Passes(active)
}

// Tags returns the definition's tag set
func (d *Definition) Tags() *category.Tags { return &d.tags }

// AddExclusion makes d and other mutually exclusive. Repeating the call
// has no further effect.
func (d *Definition) AddExclusion(other *Definition) error {
	if other == nil || other.resource != d.resource {
		return enrich(ErrForeignDefinition, "exclusion between %q and another resource", d.typeName)
	}
	if other == d {
		return enrich(ErrExcluded, "%q cannot exclude itself", d.typeName)
	}
	d.exclusions = appendUnique(d.exclusions, other)
	other.exclusions = appendUnique(other.exclusions, d)
	return nil
}

// RemoveExclusion drops the symmetric exclusion edge
func (d *Definition) RemoveExclusion(other *Definition) {
	d.exclusions = removeDefinition(d.exclusions, other)
	if other != nil {
		other.exclusions = removeDefinition(other.exclusions, d)
	}
}

// Exclusions returns the definitions d excludes directly
func (d *Definition) Exclusions() []*Definition {
	return append([]*Definition(nil), d.exclusions...)
}

// IsExclusive reports whether attributes of d and other may not share an
// associated object, taking inheritance into account on both sides
func (d *Definition) IsExclusive(other *Definition) bool {
	for cur := d; cur != nil; cur = cur.base {
		for _, e := range cur.exclusions {
			if other.IsA(e) {
				return true
			}
		}
	}
	return false
}

// AddPrerequisite records that an object associated with an attribute of d
// must also be associated with an attribute of dep. Edges closing a cycle
// are rejected.
func (d *Definition) AddPrerequisite(dep *Definition) error {
	if dep == nil || dep.resource != d.resource {
		return enrich(ErrForeignDefinition, "prerequisite of %q from another resource", d.typeName)
	}
	for _, p := range d.prerequisites {
		if p == dep {
			return nil
		}
	}
	if path := prerequisitePath(dep, d); path != nil {
		return enrich(ErrPrerequisiteCycle, "%s", formatCycle(append([]*Definition{d}, path...)))
	}
	d.prerequisites = append(d.prerequisites, dep)
	return nil
}

// RemovePrerequisite drops a prerequisite edge
func (d *Definition) RemovePrerequisite(dep *Definition) {
	d.prerequisites = removeDefinition(d.prerequisites, dep)
}

// Prerequisites returns the direct prerequisites of d
func (d *Definition) Prerequisites() []*Definition {
	return append([]*Definition(nil), d.prerequisites...)
}

// HasPrerequisites reports whether d or a base has any prerequisite
func (d *Definition) HasPrerequisites() bool {
	for cur := d; cur != nil; cur = cur.base {
		if len(cur.prerequisites) > 0 {
			return true
		}
	}
	return false
}

// AllPrerequisites returns the prerequisites of d and its bases
func (d *Definition) AllPrerequisites() []*Definition {
	var out []*Definition
	for cur := d; cur != nil; cur = cur.base {
		for _, p := range cur.prerequisites {
			out = appendUnique(out, p)
		}
	}
	return out
}

// LocalAssociationRule returns the rule set on d itself
func (d *Definition) LocalAssociationRule() *ReferenceItemDefinition { return d.association }

// SetLocalAssociationRule sets the rule; its role is forced to association
func (d *Definition) SetLocalAssociationRule(rule *ReferenceItemDefinition) {
	if rule != nil {
		rule.role = resource.AssociationRole
	}
	d.association = rule
}

// CreateLocalAssociationRule installs an empty rule named after the type
func (d *Definition) CreateLocalAssociationRule() *ReferenceItemDefinition {
	d.association = NewAssociationRule(d.typeName + "Associations")
	return d.association
}

// AssociationRule returns the local rule or the nearest base's
func (d *Definition) AssociationRule() *ReferenceItemDefinition {
	for cur := d; cur != nil; cur = cur.base {
		if cur.association != nil {
			return cur.association
		}
	}
	return nil
}

// CanBeAssociated reports whether obj satisfies the association rule
func (d *Definition) CanBeAssociated(obj resource.PersistentObject) bool {
	rule := d.AssociationRule()
	return rule != nil && rule.IsValueValid(obj)
}

// LocalAdvanceLevel returns the level set on d itself
func (d *Definition) LocalAdvanceLevel(mode AdvanceMode) (uint, bool) {
	return d.advance.local(mode)
}

func (d *Definition) SetLocalAdvanceLevel(mode AdvanceMode, level uint) {
	d.advance.setLocal(mode, level)
}

func (d *Definition) UnsetLocalAdvanceLevel(mode AdvanceMode) {
	d.advance.unset(mode)
}

// AdvanceLevel falls back to the base definition, then 0
func (d *Definition) AdvanceLevel(mode AdvanceMode) uint {
	for cur := d; cur != nil; cur = cur.base {
		if l, ok := cur.advance.local(mode); ok {
			return l
		}
	}
	return 0
}

func appendUnique(defs []*Definition, d *Definition) []*Definition {
	for _, existing := range defs {
		if existing == d {
			return defs
		}
	}
	return append(defs, d)
}

func removeDefinition(defs []*Definition, d *Definition) []*Definition {
	for i, existing := range defs {
		if existing == d {
			return append(defs[:i], defs[i+1:]...)
		}
	}
	return defs
}
