package attribute

import (
	"strings"

	"github.com/conduit-lang/attrkit/internal/resource"
)

// LockType describes how a referencing operation locks its targets
type LockType int

const (
	LockNone LockType = iota
	LockRead
	LockWrite
)

// ParseLockType parses the document form; unknown text maps to LockNone
func ParseLockType(s string) LockType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read":
		return LockRead
	case "write":
		return LockWrite
	default:
		return LockNone
	}
}

// String returns the document form of the lock type
func (l LockType) String() string {
	switch l {
	case LockRead:
		return "Read"
	case LockWrite:
		return "Write"
	default:
		return "DoNotLock"
	}
}

// Rule is one accepts/rejects entry: a resource type name and an optional
// component filter. An empty filter matches the resource itself.
type Rule struct {
	TypeName string
	Filter   string
}

// ReferenceItemDefinition defines an item pointing at persistent objects.
// Its kind decides whether targets may be components, resources, or either.
type ReferenceItemDefinition struct {
	itemDefinition
	kind          ItemKind
	accepts       []Rule
	rejects       []Rule
	onlyResources bool
	role          resource.Role
	holdReference bool
	lockType      LockType
	numRequired   int
	extensible    bool
	maxValues     int
	valueLabels   []string
	commonLabel   string
}

// NewReferenceItemDefinition creates a definition accepting any object.
// kind must be ReferenceKind, ComponentKind or ResourceKind.
func NewReferenceItemDefinition(name string, kind ItemKind) *ReferenceItemDefinition {
	if !kind.IsReference() {
		kind = ReferenceKind
	}
	return &ReferenceItemDefinition{
		itemDefinition: newItemDefinition(name),
		kind:           kind,
		role:           resource.ReferenceRole,
		numRequired:    1,
	}
}

// NewAssociationRule creates the reference definition used for a
// definition's associations: role AssociationRole, no required values,
// extensible without bound.
func NewAssociationRule(name string) *ReferenceItemDefinition {
	d := NewReferenceItemDefinition(name, ReferenceKind)
	d.role = resource.AssociationRole
	d.numRequired = 0
	d.extensible = true
	return d
}

// Kind implements ItemDefinition
func (d *ReferenceItemDefinition) Kind() ItemKind { return d.kind }

func (d *ReferenceItemDefinition) Role() resource.Role { return d.role }
func (d *ReferenceItemDefinition) SetRole(r resource.Role) { d.role = r }
func (d *ReferenceItemDefinition) HoldReference() bool { return d.holdReference }
func (d *ReferenceItemDefinition) SetHoldReference(b bool) { d.holdReference = b }
func (d *ReferenceItemDefinition) LockType() LockType { return d.lockType }
func (d *ReferenceItemDefinition) SetLockType(l LockType) { d.lockType = l }
func (d *ReferenceItemDefinition) OnlyResources() bool { return d.onlyResources }
func (d *ReferenceItemDefinition) SetOnlyResources(b bool) { d.onlyResources = b }
func (d *ReferenceItemDefinition) NumberOfRequiredValues() int { return d.numRequired }
func (d *ReferenceItemDefinition) IsExtensible() bool { return d.extensible }
func (d *ReferenceItemDefinition) SetIsExtensible(b bool) { d.extensible = b }
func (d *ReferenceItemDefinition) MaxNumberOfValues() int { return d.maxValues }
func (d *ReferenceItemDefinition) SetMaxNumberOfValues(n int) { d.maxValues = n }
func (d *ReferenceItemDefinition) ValueLabels() []string { return d.valueLabels }
func (d *ReferenceItemDefinition) CommonValueLabel() string { return d.commonLabel }

// SetNumberOfRequiredValues sets the fixed or minimum element count
func (d *ReferenceItemDefinition) SetNumberOfRequiredValues(n int) {
	if n < 0 {
		n = 0
	}
	d.numRequired = n
}

// IsFixedCount reports whether the element count can never change
func (d *ReferenceItemDefinition) IsFixedCount() bool {
	return !d.extensible && d.numRequired > 0
}

// SetValueLabels sets one label per element
func (d *ReferenceItemDefinition) SetValueLabels(labels []string) {
	d.valueLabels = append([]string(nil), labels...)
	d.commonLabel = ""
}

// SetCommonValueLabel sets a label shared by every element
func (d *ReferenceItemDefinition) SetCommonValueLabel(label string) {
	d.commonLabel = label
	d.valueLabels = nil
}

// SetAcceptsEntries replaces the accepts rules
func (d *ReferenceItemDefinition) SetAcceptsEntries(rules []Rule) {
	d.accepts = append([]Rule(nil), rules...)
}

// SetAcceptsEntry adds or removes one accepts rule
func (d *ReferenceItemDefinition) SetAcceptsEntry(typeName, filter string, enable bool) {
	d.accepts = setRule(d.accepts, Rule{TypeName: typeName, Filter: filter}, enable)
}

// SetRejectsEntry adds or removes one rejects rule
func (d *ReferenceItemDefinition) SetRejectsEntry(typeName, filter string, enable bool) {
	d.rejects = setRule(d.rejects, Rule{TypeName: typeName, Filter: filter}, enable)
}

// AcceptableEntries returns the accepts rules
func (d *ReferenceItemDefinition) AcceptableEntries() []Rule {
	return append([]Rule(nil), d.accepts...)
}

// RejectedEntries returns the rejects rules
func (d *ReferenceItemDefinition) RejectedEntries() []Rule {
	return append([]Rule(nil), d.rejects...)
}

func setRule(rules []Rule, r Rule, enable bool) []Rule {
	for i, existing := range rules {
		if existing == r {
			if enable {
				return rules
			}
			return append(rules[:i], rules[i+1:]...)
		}
	}
	if enable {
		rules = append(rules, r)
	}
	return rules
}

// IsValueValid reports whether obj is an acceptable target. Rejects win
// over accepts; an empty accepts list accepts everything.
func (d *ReferenceItemDefinition) IsValueValid(obj resource.PersistentObject) bool {
	if obj == nil {
		return false
	}
	isRes := resource.IsResource(obj)
	switch {
	case d.kind == ResourceKind && !isRes:
		return false
	case d.kind == ComponentKind && isRes:
		return false
	case d.onlyResources && !isRes:
		return false
	}
	for _, r := range d.rejects {
		if ruleMatches(r, obj) {
			return false
		}
	}
	if len(d.accepts) == 0 {
		return true
	}
	for _, r := range d.accepts {
		if ruleMatches(r, obj) {
			return true
		}
	}
	return false
}

// ruleMatches checks the owning resource's type and, for components, that
// the filter names the component's type. A filter of "*" or "any" matches
// every component.
func ruleMatches(r Rule, obj resource.PersistentObject) bool {
	owner := resource.OwningResource(obj)
	if owner == nil || (r.TypeName != "" && !owner.IsOfType(r.TypeName)) {
		return false
	}
	if resource.IsResource(obj) {
		return r.Filter == ""
	}
	switch strings.TrimSpace(r.Filter) {
	case "":
		return false
	case "*", "any":
		return true
	}
	if att, ok := obj.(*Attribute); ok {
		if typeName, ok := attributeFilterType(r.Filter); ok {
			return typeName == "" || att.IsA(typeName)
		}
	}
	for _, f := range strings.Split(r.Filter, "|") {
		if strings.TrimSpace(f) == obj.TypeName() {
			return true
		}
	}
	return false
}

// attributeFilterType parses filters of the form attribute[type='Name']
func attributeFilterType(filter string) (string, bool) {
	filter = strings.TrimSpace(filter)
	if filter == AttributeTypeName {
		return "", true
	}
	const prefix, suffix = AttributeTypeName + "[type='", "']"
	if strings.HasPrefix(filter, prefix) && strings.HasSuffix(filter, suffix) {
		return filter[len(prefix) : len(filter)-len(suffix)], true
	}
	return "", false
}

// AttributeFilter returns the component filter matching attributes of
// typeName and its derived types
func AttributeFilter(typeName string) string {
	return AttributeTypeName + "[type='" + typeName + "']"
}

func (d *ReferenceItemDefinition) newItem(att *Attribute, parent Item) Item {
	r := &ReferenceItem{item: newItem(d, att, parent), def: d}
	r.keys = make([]resource.Key, d.numRequired)
	return r
}
