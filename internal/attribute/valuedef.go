package attribute

import (
	"fmt"
)

// Bound is one end of a value range
type Bound struct {
	Value     interface{}
	Inclusive bool
}

// DiscreteValue is one enumerated choice of a discrete item
type DiscreteValue struct {
	Enum  string
	Value interface{}
	// Categories optionally restricts when the choice is offered
	Categories []string
}

// Validator is a custom predicate applied after the built-in checks
type Validator func(v interface{}) error

// ValueItemDefinition defines a scalar item of one ValueType. The same type
// serves double, int, string, bool and date-time items.
type ValueItemDefinition struct {
	itemDefinition
	valueType   ValueType
	numRequired int
	extensible  bool
	maxValues   int
	defaults    []interface{}
	min         *Bound
	max         *Bound
	discrete    []DiscreteValue
	defaultEnum int
	children    []ItemDefinition
	childIndex  map[string]int
	conditional map[string][]string
	units       string
	valueLabels []string
	commonLabel string
	validator   Validator

	// string specific
	multiline bool
	secure    bool

	// date-time specific
	displayFormat string
	showTimeZone  bool
	showCalendar  bool
}

// NewValueItemDefinition creates a definition with one required value
func NewValueItemDefinition(name string, t ValueType) *ValueItemDefinition {
	return &ValueItemDefinition{
		itemDefinition: newItemDefinition(name),
		valueType:      t,
		numRequired:    1,
		defaultEnum:    -1,
		childIndex:     make(map[string]int),
		conditional:    make(map[string][]string),
	}
}

// NewDoubleItemDefinition creates a double definition
func NewDoubleItemDefinition(name string) *ValueItemDefinition {
	return NewValueItemDefinition(name, DoubleType)
}

// NewIntItemDefinition creates an int definition
func NewIntItemDefinition(name string) *ValueItemDefinition {
	return NewValueItemDefinition(name, IntType)
}

// NewStringItemDefinition creates a string definition
func NewStringItemDefinition(name string) *ValueItemDefinition {
	return NewValueItemDefinition(name, StringType)
}

// Kind implements ItemDefinition
func (d *ValueItemDefinition) Kind() ItemKind {
	switch d.valueType {
	case IntType:
		return IntKind
	case StringType:
		return StringKind
	case BoolType:
		return BoolKind
	case DateTimeType:
		return DateTimeKind
	default:
		return DoubleKind
	}
}

func (d *ValueItemDefinition) ValueType() ValueType { return d.valueType }
func (d *ValueItemDefinition) NumberOfRequiredValues() int { return d.numRequired }

// SetNumberOfRequiredValues sets the fixed or minimum element count
func (d *ValueItemDefinition) SetNumberOfRequiredValues(n int) {
	if n < 0 {
		n = 0
	}
	d.numRequired = n
}

func (d *ValueItemDefinition) IsExtensible() bool { return d.extensible }
func (d *ValueItemDefinition) SetIsExtensible(b bool) { d.extensible = b }

// MaxNumberOfValues returns the upper bound for extensible items, 0 if none
func (d *ValueItemDefinition) MaxNumberOfValues() int { return d.maxValues }
func (d *ValueItemDefinition) SetMaxNumberOfValues(n int) { d.maxValues = n }
func (d *ValueItemDefinition) Units() string { return d.units }
func (d *ValueItemDefinition) SetUnits(u string) { d.units = u }
func (d *ValueItemDefinition) SetValidator(v Validator) { d.validator = v }
func (d *ValueItemDefinition) IsMultiline() bool { return d.multiline }
func (d *ValueItemDefinition) SetIsMultiline(b bool) { d.multiline = b }
func (d *ValueItemDefinition) IsSecure() bool { return d.secure }
func (d *ValueItemDefinition) SetIsSecure(b bool) { d.secure = b }
func (d *ValueItemDefinition) DisplayFormat() string { return d.displayFormat }
func (d *ValueItemDefinition) SetDisplayFormat(f string) { d.displayFormat = f }
func (d *ValueItemDefinition) ShowTimeZone() bool { return d.showTimeZone }
func (d *ValueItemDefinition) SetShowTimeZone(b bool) { d.showTimeZone = b }
func (d *ValueItemDefinition) ShowCalendarPopup() bool { return d.showCalendar }
func (d *ValueItemDefinition) SetShowCalendarPopup(b bool) { d.showCalendar = b }

// IsFixedCount reports whether the element count can never change
func (d *ValueItemDefinition) IsFixedCount() bool {
	return !d.extensible && d.numRequired > 0
}

// ValueLabels returns the per-element labels
func (d *ValueItemDefinition) ValueLabels() []string { return d.valueLabels }

// CommonValueLabel returns the label shared by every element
func (d *ValueItemDefinition) CommonValueLabel() string { return d.commonLabel }

// SetValueLabels sets one label per element
func (d *ValueItemDefinition) SetValueLabels(labels []string) {
	d.valueLabels = append([]string(nil), labels...)
	d.commonLabel = ""
}

// SetCommonValueLabel sets a label shared by every element
func (d *ValueItemDefinition) SetCommonValueLabel(label string) {
	d.commonLabel = label
	d.valueLabels = nil
}

// SetDefaultValue sets a default applied to every element
func (d *ValueItemDefinition) SetDefaultValue(v interface{}) error {
	return d.SetDefaultValues([]interface{}{v})
}

// SetDefaultValues sets either one default for all elements or one per
// element. Each default must pass the definition's own checks.
func (d *ValueItemDefinition) SetDefaultValues(vals []interface{}) error {
	converted := make([]interface{}, 0, len(vals))
	for _, v := range vals {
		c, err := d.check(v)
		if err != nil {
			return err
		}
		converted = append(converted, c)
	}
	d.defaults = converted
	return nil
}

// HasDefault reports whether a default value is set
func (d *ValueItemDefinition) HasDefault() bool { return len(d.defaults) > 0 }

// DefaultValues returns the defaults as set
func (d *ValueItemDefinition) DefaultValues() []interface{} {
	return append([]interface{}(nil), d.defaults...)
}

// DefaultValue returns the default for element i
func (d *ValueItemDefinition) DefaultValue(i int) (interface{}, bool) {
	switch {
	case len(d.defaults) == 0:
		return nil, false
	case i < len(d.defaults):
		return d.defaults[i], true
	default:
		return d.defaults[0], true
	}
}

// SetMinRange sets the lower bound
func (d *ValueItemDefinition) SetMinRange(v interface{}, inclusive bool) error {
	c, err := convertValue(d.valueType, v)
	if err != nil {
		return enrich(ErrValueRejected, "%v", err)
	}
	if d.max != nil && compareValues(d.valueType, c, d.max.Value) > 0 {
		return enrich(ErrValueRejected, "min %v exceeds max %v", v, d.max.Value)
	}
	d.min = &Bound{Value: c, Inclusive: inclusive}
	return nil
}

// SetMaxRange sets the upper bound
func (d *ValueItemDefinition) SetMaxRange(v interface{}, inclusive bool) error {
	c, err := convertValue(d.valueType, v)
	if err != nil {
		return enrich(ErrValueRejected, "%v", err)
	}
	if d.min != nil && compareValues(d.valueType, c, d.min.Value) < 0 {
		return enrich(ErrValueRejected, "max %v below min %v", v, d.min.Value)
	}
	d.max = &Bound{Value: c, Inclusive: inclusive}
	return nil
}

// MinRange returns the lower bound, or nil
func (d *ValueItemDefinition) MinRange() *Bound { return d.min }

// MaxRange returns the upper bound, or nil
func (d *ValueItemDefinition) MaxRange() *Bound { return d.max }

// AddDiscreteValue appends an enumerated choice
func (d *ValueItemDefinition) AddDiscreteValue(enum string, v interface{}) error {
	c, err := convertValue(d.valueType, v)
	if err != nil {
		return enrich(ErrValueRejected, "%v", err)
	}
	if enum == "" {
		enum = FormatValue(d.valueType, c)
	}
	d.discrete = append(d.discrete, DiscreteValue{Enum: enum, Value: c})
	return nil
}

// SetDiscreteValueCategories restricts choice i to the given categories
func (d *ValueItemDefinition) SetDiscreteValueCategories(i int, cats []string) {
	if i >= 0 && i < len(d.discrete) {
		d.discrete[i].Categories = append([]string(nil), cats...)
	}
}

// IsDiscrete reports whether values are restricted to enumerated choices
func (d *ValueItemDefinition) IsDiscrete() bool { return len(d.discrete) > 0 }

// DiscreteValues returns the enumerated choices
func (d *ValueItemDefinition) DiscreteValues() []DiscreteValue {
	return append([]DiscreteValue(nil), d.discrete...)
}

// FindDiscreteIndex returns the index of the choice equal to v, or -1
func (d *ValueItemDefinition) FindDiscreteIndex(v interface{}) int {
	c, err := convertValue(d.valueType, v)
	if err != nil {
		return -1
	}
	for i, dv := range d.discrete {
		if equalValues(d.valueType, dv.Value, c) {
			return i
		}
	}
	return -1
}

// DiscreteIndexForEnum returns the index of the choice labelled enum, or -1
func (d *ValueItemDefinition) DiscreteIndexForEnum(enum string) int {
	for i, dv := range d.discrete {
		if dv.Enum == enum {
			return i
		}
	}
	return -1
}

// SetDefaultDiscreteIndex sets the choice used as default
func (d *ValueItemDefinition) SetDefaultDiscreteIndex(i int) error {
	if i < 0 || i >= len(d.discrete) {
		return enrich(ErrOutOfRange, "discrete index %d", i)
	}
	d.defaultEnum = i
	d.defaults = []interface{}{d.discrete[i].Value}
	return nil
}

// DefaultDiscreteIndex returns the default choice, or -1
func (d *ValueItemDefinition) DefaultDiscreteIndex() int { return d.defaultEnum }

// AddChildItemDefinition adds a template for a conditional child item
func (d *ValueItemDefinition) AddChildItemDefinition(child ItemDefinition) error {
	if _, exists := d.childIndex[child.Name()]; exists {
		return enrich(ErrDuplicateName, "child item %q of %q", child.Name(), d.name)
	}
	d.childIndex[child.Name()] = len(d.children)
	d.children = append(d.children, child)
	return nil
}

// ChildItemDefinitions returns the conditional child templates in order
func (d *ValueItemDefinition) ChildItemDefinitions() []ItemDefinition {
	return append([]ItemDefinition(nil), d.children...)
}

// HasChildItemDefinition reports whether a child template is named name
func (d *ValueItemDefinition) HasChildItemDefinition(name string) bool {
	_, ok := d.childIndex[name]
	return ok
}

// AddConditionalItem activates child item name when enum is selected
func (d *ValueItemDefinition) AddConditionalItem(enum, name string) error {
	if d.DiscreteIndexForEnum(enum) < 0 {
		return enrich(ErrNotFound, "enum %q of %q", enum, d.name)
	}
	if !d.HasChildItemDefinition(name) {
		return enrich(ErrNotFound, "child item %q of %q", name, d.name)
	}
	for _, existing := range d.conditional[enum] {
		if existing == name {
			return nil
		}
	}
	d.conditional[enum] = append(d.conditional[enum], name)
	return nil
}

// ConditionalItems returns the child item names activated by enum
func (d *ValueItemDefinition) ConditionalItems(enum string) []string {
	return append([]string(nil), d.conditional[enum]...)
}

// IsValueValid reports whether v passes every check
func (d *ValueItemDefinition) IsValueValid(v interface{}) bool {
	_, err := d.check(v)
	return err == nil
}

// check converts v and applies range, discrete and custom checks
func (d *ValueItemDefinition) check(v interface{}) (interface{}, error) {
	c, err := convertValue(d.valueType, v)
	if err != nil {
		return nil, enrich(ErrValueRejected, "%v", err)
	}
	if len(d.discrete) > 0 {
		found := false
		for _, dv := range d.discrete {
			if equalValues(d.valueType, dv.Value, c) {
				found = true
				break
			}
		}
		if !found {
			return nil, enrich(ErrValueRejected, "%v is not one of the discrete values of %q", v, d.name)
		}
	}
	if err := checkRange(d.valueType, c, d.min, d.max); err != nil {
		return nil, enrich(ErrValueRejected, "%q: %v", d.name, err)
	}
	if d.validator != nil {
		if err := d.validator(c); err != nil {
			return nil, enrich(ErrValueRejected, "%q: %v", d.name, err)
		}
	}
	return c, nil
}

func checkRange(t ValueType, v interface{}, min, max *Bound) error {
	if min != nil {
		cmp := compareValues(t, v, min.Value)
		if cmp < 0 || (cmp == 0 && !min.Inclusive) {
			return fmt.Errorf("%s below minimum %s", FormatValue(t, v), FormatValue(t, min.Value))
		}
	}
	if max != nil {
		cmp := compareValues(t, v, max.Value)
		if cmp > 0 || (cmp == 0 && !max.Inclusive) {
			return fmt.Errorf("%s above maximum %s", FormatValue(t, v), FormatValue(t, max.Value))
		}
	}
	return nil
}

func (d *ValueItemDefinition) newItem(att *Attribute, parent Item) Item {
	v := &ValueItem{item: newItem(d, att, parent), def: d}
	for _, cd := range d.children {
		v.children = append(v.children, cd.newItem(att, v))
	}
	v.Reset()
	return v
}
