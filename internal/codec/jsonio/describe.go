// Package jsonio exports a read-only JSON description of an attribute
// resource: its definitions and the current state of its attributes.
package jsonio

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"github.com/conduit-lang/attrkit/internal/attribute"
	"github.com/conduit-lang/attrkit/internal/category"
	"github.com/conduit-lang/attrkit/internal/resource"
)

// Options filters what Describe reports. Items above AdvanceLevel are
// hidden; when Categories is not empty, definitions, attributes and items
// that do not pass the category filter are hidden.
type Options struct {
	AdvanceLevel uint
	Categories   []string
}

func (o Options) active() map[string]struct{} {
	if len(o.Categories) == 0 {
		return nil
	}
	return category.Active(o.Categories...)
}

// Resource describes a whole attribute resource
type Resource struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name,omitempty"`
	Location    string       `json:"location,omitempty"`
	Categories  []string     `json:"categories,omitempty"`
	Analyses    []Analysis   `json:"analyses,omitempty"`
	Definitions []Definition `json:"definitions"`
	Attributes  []Attribute  `json:"attributes"`
	// Unresolved counts set references whose target is not loaded
	Unresolved int `json:"unresolved"`
}

// Analysis describes one analysis of the resource
type Analysis struct {
	Name       string   `json:"name"`
	Parent     string   `json:"parent,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// Definition describes an attribute definition
type Definition struct {
	Type          string              `json:"type"`
	Base          string              `json:"base,omitempty"`
	Label         string              `json:"label,omitempty"`
	Abstract      bool                `json:"abstract,omitempty"`
	Unique        bool                `json:"unique,omitempty"`
	Categories    []string            `json:"categories,omitempty"`
	Tags          map[string][]string `json:"tags,omitempty"`
	Exclusions    []string            `json:"exclusions,omitempty"`
	Prerequisites []string            `json:"prerequisites,omitempty"`
	Associations  bool                `json:"associations,omitempty"`
	Items         []ItemDefinition    `json:"items,omitempty"`
}

// ItemDefinition describes an item template
type ItemDefinition struct {
	Name     string           `json:"name"`
	Kind     string           `json:"kind"`
	Label    string           `json:"label,omitempty"`
	Optional bool             `json:"optional,omitempty"`
	Children []ItemDefinition `json:"children,omitempty"`
}

// Attribute describes an attribute instance
type Attribute struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Type         string      `json:"type"`
	Valid        bool        `json:"valid"`
	Items        []Item      `json:"items,omitempty"`
	Associations []Reference `json:"associations,omitempty"`
}

// Item describes an item instance. Values holds null for unset elements.
type Item struct {
	Name       string        `json:"name"`
	Kind       string        `json:"kind"`
	Enabled    bool          `json:"enabled"`
	Values     []interface{} `json:"values,omitempty"`
	References []Reference   `json:"references,omitempty"`
	Groups     [][]Item      `json:"groups,omitempty"`
	Children   []Item        `json:"children,omitempty"`
}

// Reference describes one element of a reference item
type Reference struct {
	Set        bool      `json:"set"`
	Resolved   bool      `json:"resolved"`
	ID         uuid.UUID `json:"id,omitempty"`
	Name       string    `json:"name,omitempty"`
	Type       string    `json:"type,omitempty"`
	Unresolved string    `json:"unresolved,omitempty"`
}

// Describe builds the description of res
func Describe(res *attribute.Resource, opts Options) *Resource {
	d := &describer{opts: opts, active: opts.active()}

	out := &Resource{
		ID:          res.ID(),
		Name:        res.Name(),
		Location:    res.Location(),
		Categories:  res.Categories(),
		Definitions: []Definition{},
		Attributes:  []Attribute{},
	}
	for _, a := range res.Analyses().All() {
		desc := Analysis{Name: a.Name(), Categories: a.Categories()}
		if p := a.Parent(); p != nil {
			desc.Parent = p.Name()
		}
		out.Analyses = append(out.Analyses, desc)
	}
	for _, def := range res.Definitions() {
		if d.active != nil && !def.IsRelevant(d.active) {
			continue
		}
		out.Definitions = append(out.Definitions, d.definition(def))
	}
	for _, att := range res.Attributes() {
		if d.active != nil && !att.IsRelevant(d.active) {
			continue
		}
		out.Attributes = append(out.Attributes, d.attribute(att))
	}
	out.Unresolved = d.unresolved
	return out
}

// Write encodes the description of res as indented JSON
func Write(w io.Writer, res *attribute.Resource, opts Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Describe(res, opts))
}

// Marshal returns the indented JSON description of res
func Marshal(res *attribute.Resource, opts Options) ([]byte, error) {
	return json.MarshalIndent(Describe(res, opts), "", "  ")
}

type describer struct {
	opts       Options
	active     map[string]struct{}
	unresolved int
}

func (d *describer) definition(def *attribute.Definition) Definition {
	out := Definition{
		Type:         def.Type(),
		Abstract:     def.IsAbstract(),
		Unique:       def.IsUnique(),
		Associations: def.AssociationRule() != nil,
	}
	if def.HasLabel() {
		out.Label = def.Label()
	}
	if base := def.BaseDefinition(); base != nil {
		out.Base = base.Type()
	}
	stack := def.Categories()
	out.Categories = stack.Categories()
	if tags := def.Tags().All(); len(tags) > 0 {
		out.Tags = make(map[string][]string, len(tags))
		for _, t := range tags {
			out.Tags[t.Name] = t.Values()
		}
	}
	for _, other := range def.Exclusions() {
		out.Exclusions = append(out.Exclusions, other.Type())
	}
	for _, p := range def.Prerequisites() {
		out.Prerequisites = append(out.Prerequisites, p.Type())
	}
	for _, idef := range def.ItemDefinitions() {
		out.Items = append(out.Items, itemDefinition(idef))
	}
	return out
}

func itemDefinition(idef attribute.ItemDefinition) ItemDefinition {
	out := ItemDefinition{
		Name:     idef.Name(),
		Kind:     idef.Kind().String(),
		Optional: idef.IsOptional(),
	}
	if idef.Label() != idef.Name() {
		out.Label = idef.Label()
	}
	if g, ok := idef.(*attribute.GroupItemDefinition); ok {
		for _, child := range g.ItemDefinitions() {
			out.Children = append(out.Children, itemDefinition(child))
		}
	}
	return out
}

func (d *describer) attribute(att *attribute.Attribute) Attribute {
	out := Attribute{
		ID:    att.ID(),
		Name:  att.Name(),
		Type:  att.Type(),
		Valid: att.IsValid(d.active),
	}
	out.Items = d.items(att.Items())
	for _, r := range att.AssociatedObjects() {
		out.Associations = append(out.Associations, d.reference(r))
	}
	return out
}

func (d *describer) items(items []attribute.Item) []Item {
	var out []Item
	for _, it := range items {
		if !it.IsVisible(attribute.AdvanceRead, d.opts.AdvanceLevel) {
			continue
		}
		if d.active != nil && !it.IsRelevant(d.active) {
			continue
		}
		out = append(out, d.item(it))
	}
	return out
}

func (d *describer) item(it attribute.Item) Item {
	out := Item{
		Name:    it.Name(),
		Kind:    it.Kind().String(),
		Enabled: it.IsEnabled(),
	}
	switch x := it.(type) {
	case *attribute.ValueItem:
		out.Values = make([]interface{}, x.NumberOfValues())
		for i := range out.Values {
			if !x.IsSet(i) {
				continue
			}
			if x.ValueType() == attribute.DateTimeType {
				out.Values[i] = x.Text(i)
				continue
			}
			out.Values[i], _ = x.Value(i)
		}
		out.Children = d.items(x.ActiveChildItems())
	case *attribute.GroupItem:
		for row := 0; row < x.NumberOfGroups(); row++ {
			out.Groups = append(out.Groups, d.items(x.Items(row)))
		}
	case *attribute.ReferenceItem:
		for i := 0; i < x.NumberOfValues(); i++ {
			if !x.IsSet(i) {
				out.References = append(out.References, Reference{})
				continue
			}
			out.References = append(out.References, d.reference(x.Object(i)))
		}
	}
	return out
}

func (d *describer) reference(r resource.Resolution) Reference {
	out := Reference{Set: r.Found}
	switch {
	case r.Object != nil:
		out.Resolved = true
		out.ID = r.Object.ID()
		out.Name = r.Object.Name()
		out.Type = r.Object.TypeName()
	case r.Unresolved != nil:
		d.unresolved++
		out.ID = r.Unresolved.ObjectID
		out.Type = r.Unresolved.Surrogate.TypeName
		out.Unresolved = r.Unresolved.String()
	}
	return out
}
