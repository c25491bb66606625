package attribute

import (
	"github.com/conduit-lang/attrkit/internal/category"
)

// ItemKind identifies the concrete item variant a definition instantiates
type ItemKind int

const (
	DoubleKind ItemKind = iota
	IntKind
	StringKind
	BoolKind
	DateTimeKind
	VoidKind
	GroupKind
	ReferenceKind
	ComponentKind
	ResourceKind
)

// String returns the element name used for the kind in documents
func (k ItemKind) String() string {
	switch k {
	case DoubleKind:
		return "Double"
	case IntKind:
		return "Int"
	case StringKind:
		return "String"
	case BoolKind:
		return "Bool"
	case DateTimeKind:
		return "DateTime"
	case VoidKind:
		return "Void"
	case GroupKind:
		return "Group"
	case ReferenceKind:
		return "Reference"
	case ComponentKind:
		return "Component"
	case ResourceKind:
		return "Resource"
	default:
		return "Unknown"
	}
}

// ParseItemKind maps an element name back to a kind
func ParseItemKind(name string) (ItemKind, bool) {
	for k := DoubleKind; k <= ResourceKind; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// IsValue reports whether the kind is one of the scalar value kinds
func (k ItemKind) IsValue() bool { return k <= DateTimeKind }

// IsReference reports whether the kind is one of the reference kinds
func (k ItemKind) IsReference() bool { return k >= ReferenceKind }

// ItemDefinition is the template an item is instantiated from. The concrete
// types are ValueItemDefinition, VoidItemDefinition, GroupItemDefinition and
// ReferenceItemDefinition.
type ItemDefinition interface {
	Name() string
	Kind() ItemKind
	Label() string
	SetLabel(label string)
	Version() int
	SetVersion(v int)
	IsOptional() bool
	SetIsOptional(optional bool)
	IsEnabledByDefault() bool
	SetIsEnabledByDefault(enabled bool)
	BriefDescription() string
	SetBriefDescription(s string)
	DetailedDescription() string
	SetDetailedDescription(s string)
	// LocalCategories is the item's own category set, combined with the
	// owner's effective categories when filtering
	LocalCategories() *category.Set
	LocalAdvanceLevel(mode AdvanceMode) (uint, bool)
	SetLocalAdvanceLevel(mode AdvanceMode, level uint)
	UnsetLocalAdvanceLevel(mode AdvanceMode)

	newItem(att *Attribute, parent Item) Item
}

// itemDefinition carries the fields common to all item definitions
type itemDefinition struct {
	name             string
	label            string
	version          int
	optional         bool
	enabledByDefault bool
	brief            string
	detailed         string
	categories       *category.Set
	advance          advanceLevels
}

func newItemDefinition(name string) itemDefinition {
	return itemDefinition{name: name, categories: category.NewSet()}
}

func (d *itemDefinition) Name() string { return d.name }

// Label returns the display label, falling back to the name
func (d *itemDefinition) Label() string {
	if d.label == "" {
		return d.name
	}
	return d.label
}

func (d *itemDefinition) SetLabel(label string) { d.label = label }
func (d *itemDefinition) Version() int { return d.version }
func (d *itemDefinition) SetVersion(v int) { d.version = v }
func (d *itemDefinition) IsOptional() bool { return d.optional }
func (d *itemDefinition) SetIsOptional(optional bool) { d.optional = optional }
func (d *itemDefinition) IsEnabledByDefault() bool { return d.enabledByDefault }
func (d *itemDefinition) SetIsEnabledByDefault(enabled bool) { d.enabledByDefault = enabled }
func (d *itemDefinition) BriefDescription() string { return d.brief }
func (d *itemDefinition) SetBriefDescription(s string) { d.brief = s }
func (d *itemDefinition) DetailedDescription() string { return d.detailed }
func (d *itemDefinition) SetDetailedDescription(s string) { d.detailed = s }
func (d *itemDefinition) LocalCategories() *category.Set { return d.categories }

func (d *itemDefinition) LocalAdvanceLevel(mode AdvanceMode) (uint, bool) {
	return d.advance.local(mode)
}

func (d *itemDefinition) SetLocalAdvanceLevel(mode AdvanceMode, level uint) {
	d.advance.setLocal(mode, level)
}

func (d *itemDefinition) UnsetLocalAdvanceLevel(mode AdvanceMode) {
	d.advance.unset(mode)
}

// HasLabel reports whether a label was set explicitly
func (d *itemDefinition) HasLabel() bool { return d.label != "" }

// VoidItemDefinition defines an item with no value, used as an on/off flag
type VoidItemDefinition struct {
	itemDefinition
}

// NewVoidItemDefinition creates a void item definition
func NewVoidItemDefinition(name string) *VoidItemDefinition {
	return &VoidItemDefinition{itemDefinition: newItemDefinition(name)}
}

// Kind implements ItemDefinition
func (d *VoidItemDefinition) Kind() ItemKind { return VoidKind }

func (d *VoidItemDefinition) newItem(att *Attribute, parent Item) Item {
	return &VoidItem{item: newItem(d, att, parent)}
}

// GroupItemDefinition defines an item holding rows of child items
type GroupItemDefinition struct {
	itemDefinition
	children    []ItemDefinition
	childIndex  map[string]int
	numRequired int
	extensible  bool
	maxGroups   int
	subLabels   []string
	commonLabel string
	conditional bool
	minChoices  int
	maxChoices  int
}

// NewGroupItemDefinition creates a group definition with one required group
func NewGroupItemDefinition(name string) *GroupItemDefinition {
	return &GroupItemDefinition{
		itemDefinition: newItemDefinition(name),
		childIndex:     make(map[string]int),
		numRequired:    1,
	}
}

// Kind implements ItemDefinition
func (d *GroupItemDefinition) Kind() ItemKind { return GroupKind }

// AddItemDefinition appends a child template; names are unique per group
func (d *GroupItemDefinition) AddItemDefinition(child ItemDefinition) error {
	if _, exists := d.childIndex[child.Name()]; exists {
		return enrich(ErrDuplicateName, "item %q in group %q", child.Name(), d.name)
	}
	d.childIndex[child.Name()] = len(d.children)
	d.children = append(d.children, child)
	return nil
}

// ItemDefinitions returns the child templates in order
func (d *GroupItemDefinition) ItemDefinitions() []ItemDefinition {
	return append([]ItemDefinition(nil), d.children...)
}

// FindItemDefinition returns the child template named name, or nil
func (d *GroupItemDefinition) FindItemDefinition(name string) ItemDefinition {
	if i, ok := d.childIndex[name]; ok {
		return d.children[i]
	}
	return nil
}

func (d *GroupItemDefinition) NumberOfRequiredGroups() int { return d.numRequired }

// SetNumberOfRequiredGroups sets the fixed or minimum row count
func (d *GroupItemDefinition) SetNumberOfRequiredGroups(n int) {
	if n < 0 {
		n = 0
	}
	d.numRequired = n
}

func (d *GroupItemDefinition) IsExtensible() bool { return d.extensible }
func (d *GroupItemDefinition) SetIsExtensible(b bool) { d.extensible = b }
func (d *GroupItemDefinition) MaxNumberOfGroups() int { return d.maxGroups }
func (d *GroupItemDefinition) SetMaxNumberOfGroups(n int) { d.maxGroups = n }
func (d *GroupItemDefinition) CommonSubGroupLabel() string { return d.commonLabel }
func (d *GroupItemDefinition) SubGroupLabels() []string { return d.subLabels }
func (d *GroupItemDefinition) IsConditional() bool { return d.conditional }
func (d *GroupItemDefinition) SetIsConditional(b bool) { d.conditional = b }
func (d *GroupItemDefinition) MinNumberOfChoices() int { return d.minChoices }
func (d *GroupItemDefinition) SetMinNumberOfChoices(n int) { d.minChoices = n }
func (d *GroupItemDefinition) MaxNumberOfChoices() int { return d.maxChoices }
func (d *GroupItemDefinition) SetMaxNumberOfChoices(n int) { d.maxChoices = n }
func (d *GroupItemDefinition) SetCommonSubGroupLabel(s string) {
	d.commonLabel = s
	d.subLabels = nil
}

// SetSubGroupLabels sets one label per required group
func (d *GroupItemDefinition) SetSubGroupLabels(labels []string) {
	d.subLabels = append([]string(nil), labels...)
	d.commonLabel = ""
}

func (d *GroupItemDefinition) newItem(att *Attribute, parent Item) Item {
	g := &GroupItem{item: newItem(d, att, parent), def: d}
	for i := 0; i < d.numRequired; i++ {
		g.rows = append(g.rows, g.buildRow())
	}
	return g
}
