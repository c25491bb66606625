package attribute

import (
	"time"
)

// ValueItem holds scalar values of its definition's ValueType, each element
// independently set or unset
type ValueItem struct {
	item
	def      *ValueItemDefinition
	values   []interface{}
	set      []bool
	children []Item
}

// ValueDefinition returns the typed definition
func (v *ValueItem) ValueDefinition() *ValueItemDefinition { return v.def }

func (v *ValueItem) ValueType() ValueType { return v.def.valueType }
func (v *ValueItem) NumberOfValues() int { return len(v.values) }
func (v *ValueItem) NumberOfRequiredValues() int { return v.def.numRequired }
func (v *ValueItem) MaxNumberOfValues() int { return v.def.maxValues }
func (v *ValueItem) IsExtensible() bool { return v.def.extensible }
func (v *ValueItem) IsDiscrete() bool { return v.def.IsDiscrete() }

// SetValue converts and checks value, then stores it in element i
func (v *ValueItem) SetValue(i int, value interface{}) error {
	if err := checkIndex(v.Name(), i, len(v.values)); err != nil {
		return err
	}
	c, err := v.def.check(value)
	if err != nil {
		return err
	}
	v.values[i] = c
	v.set[i] = true
	return nil
}

// SetValues replaces every element. Counts differing from the current one
// are subject to the resize rules.
func (v *ValueItem) SetValues(values []interface{}) error {
	if len(values) != len(v.values) {
		if err := checkResize(v.Name(), len(values), v.def.numRequired, v.def.extensible, v.def.maxValues); err != nil {
			return err
		}
	}
	converted := make([]interface{}, len(values))
	for i, value := range values {
		c, err := v.def.check(value)
		if err != nil {
			return err
		}
		converted[i] = c
	}
	v.values = converted
	v.set = make([]bool, len(values))
	for i := range v.set {
		v.set[i] = true
	}
	return nil
}

// Value returns element i and whether it is set
func (v *ValueItem) Value(i int) (interface{}, bool) {
	if i < 0 || i >= len(v.values) || !v.set[i] {
		return nil, false
	}
	return v.values[i], true
}

// Float returns element i as float64, 0 when unset or not a double item
func (v *ValueItem) Float(i int) float64 {
	x, _ := v.valueAt(i).(float64)
	return x
}

// Int returns element i as int64
func (v *ValueItem) Int(i int) int64 {
	x, _ := v.valueAt(i).(int64)
	return x
}

// Text returns element i as a string; non-string items are formatted
func (v *ValueItem) Text(i int) string {
	x := v.valueAt(i)
	if x == nil {
		return ""
	}
	return FormatValue(v.def.valueType, x)
}

// Bool returns element i as bool
func (v *ValueItem) Bool(i int) bool {
	x, _ := v.valueAt(i).(bool)
	return x
}

// Time returns element i of a date-time item
func (v *ValueItem) Time(i int) time.Time {
	x, _ := v.valueAt(i).(DateTime)
	return x.Time
}

func (v *ValueItem) valueAt(i int) interface{} {
	x, _ := v.Value(i)
	return x
}

// IsSet reports whether element i holds a value
func (v *ValueItem) IsSet(i int) bool {
	return i >= 0 && i < len(v.set) && v.set[i]
}

// Unset clears element i without changing the count
func (v *ValueItem) Unset(i int) error {
	if err := checkIndex(v.Name(), i, len(v.values)); err != nil {
		return err
	}
	v.values[i] = nil
	v.set[i] = false
	return nil
}

// AppendValue adds an element holding value
func (v *ValueItem) AppendValue(value interface{}) error {
	if err := checkResize(v.Name(), len(v.values)+1, v.def.numRequired, v.def.extensible, v.def.maxValues); err != nil {
		return err
	}
	c, err := v.def.check(value)
	if err != nil {
		return err
	}
	v.values = append(v.values, c)
	v.set = append(v.set, true)
	return nil
}

// RemoveValue deletes element i
func (v *ValueItem) RemoveValue(i int) error {
	if err := checkResize(v.Name(), len(v.values)-1, v.def.numRequired, v.def.extensible, v.def.maxValues); err != nil {
		return err
	}
	if err := checkIndex(v.Name(), i, len(v.values)); err != nil {
		return err
	}
	v.values = append(v.values[:i], v.values[i+1:]...)
	v.set = append(v.set[:i], v.set[i+1:]...)
	return nil
}

// SetNumberOfValues grows or shrinks the item. New elements take the
// default value when there is one, otherwise they are unset.
func (v *ValueItem) SetNumberOfValues(n int) error {
	if n == len(v.values) {
		return nil
	}
	if err := checkResize(v.Name(), n, v.def.numRequired, v.def.extensible, v.def.maxValues); err != nil {
		return err
	}
	if n < len(v.values) {
		v.values = v.values[:n]
		v.set = v.set[:n]
		return nil
	}
	for i := len(v.values); i < n; i++ {
		d, ok := v.def.DefaultValue(i)
		v.values = append(v.values, d)
		v.set = append(v.set, ok)
	}
	return nil
}

// Reset restores defaults, re-sizes to the required count and resets the
// conditional children
func (v *ValueItem) Reset() {
	v.enabled = v.def.IsEnabledByDefault()
	v.values = v.values[:0]
	v.set = v.set[:0]
	for i := 0; i < v.def.numRequired; i++ {
		d, ok := v.def.DefaultValue(i)
		v.values = append(v.values, d)
		v.set = append(v.set, ok)
	}
	for _, c := range v.children {
		c.Reset()
	}
}

// IsUsingDefault reports whether element i equals its default
func (v *ValueItem) IsUsingDefault(i int) bool {
	d, ok := v.def.DefaultValue(i)
	if !ok || !v.IsSet(i) {
		return false
	}
	return equalValues(v.def.valueType, d, v.values[i])
}

// DiscreteIndex returns the choice index of element i, or -1
func (v *ValueItem) DiscreteIndex(i int) int {
	value, ok := v.Value(i)
	if !ok {
		return -1
	}
	return v.def.FindDiscreteIndex(value)
}

// SetDiscreteIndex selects choice index for element i
func (v *ValueItem) SetDiscreteIndex(i, index int) error {
	if !v.def.IsDiscrete() || index < 0 || index >= len(v.def.discrete) {
		return enrich(ErrValueRejected, "%q has no discrete value %d", v.Name(), index)
	}
	return v.SetValue(i, v.def.discrete[index].Value)
}

// ChildItems returns every conditional child item
func (v *ValueItem) ChildItems() []Item {
	return append([]Item(nil), v.children...)
}

// ChildItem returns the conditional child named name, or nil
func (v *ValueItem) ChildItem(name string) Item {
	for _, c := range v.children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// ActiveChildItems returns the children activated by the choice currently
// held by the first element
func (v *ValueItem) ActiveChildItems() []Item {
	index := v.DiscreteIndex(0)
	if index < 0 {
		return nil
	}
	var out []Item
	for _, name := range v.def.conditional[v.def.discrete[index].Enum] {
		if c := v.ChildItem(name); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// IsValid reports whether the item is disabled, or every element is set and
// the active children are valid
func (v *ValueItem) IsValid() bool {
	if !v.IsEnabled() {
		return true
	}
	for _, s := range v.set {
		if !s {
			return false
		}
	}
	for _, c := range v.ActiveChildItems() {
		if !c.IsValid() {
			return false
		}
	}
	return true
}
