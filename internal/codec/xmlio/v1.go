package xmlio

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/conduit-lang/attrkit/internal/attribute"
	"github.com/conduit-lang/attrkit/internal/category"
)

// modelResourceType is the resource type a legacy MembershipMask applies to
const modelResourceType = "model.Resource"

func v1Hooks() *hooks {
	return &hooks{
		root:        v1Root,
		definition:  v1Definition,
		association: v1AssociationDef,
		attribute:   v1Attribute,
		itemDefs: map[string]itemDefFunc{
			"Double":       valueDef(attribute.DoubleType),
			"Int":          valueDef(attribute.IntType),
			"String":       valueDef(attribute.StringType),
			"Bool":         valueDef(attribute.BoolType),
			"Void":         voidDef,
			"Group":        groupDef,
			"AttributeRef": attributeRefDef,
		},
		itemDef: v1ItemDef,
		items: map[attribute.ItemKind]itemFunc{
			attribute.DoubleKind:    valueItem,
			attribute.IntKind:       valueItem,
			attribute.StringKind:    valueItem,
			attribute.BoolKind:      valueItem,
			attribute.VoidKind:      func(*parser, *etree.Element, attribute.Item) {},
			attribute.GroupKind:     groupItem,
			attribute.ComponentKind: attributeRefItem,
		},
		item: v1Item,
		unsetValue: func(el *etree.Element) bool {
			return strings.TrimSpace(el.Text()) == ""
		},
	}
}

func v1Root(p *parser, root *etree.Element) {
	if cats := root.SelectElement("Categories"); cats != nil {
		for _, c := range texts(cats) {
			p.res.AddCategory(c)
		}
	}
	if levels := root.SelectElement("AdvanceLevels"); levels != nil {
		for _, l := range levels.SelectElements("Level") {
			p.res.SetAdvanceLevelLabel(parseUint(l.Text()), l.SelectAttrValue("Label", ""))
		}
	}
	if defs := root.SelectElement("Definitions"); defs != nil {
		p.readDefinitions(defs)
	}
	if atts := root.SelectElement("Attributes"); atts != nil {
		p.readAttributes(atts)
	}
	p.resolvePending()
}

func v1Definition(p *parser, el *etree.Element, def *attribute.Definition) {
	if v, ok := attr(el, "Label"); ok {
		def.SetLabel(v)
	}
	if v, ok := intAttr(el, "Version"); ok {
		def.SetVersion(v)
	}
	if v, ok := boolAttr(el, "Abstract"); ok {
		def.SetIsAbstract(v)
	}
	if v, ok := boolAttr(el, "Unique"); ok {
		def.SetIsUnique(v)
	}
	if v, ok := boolAttr(el, "Nodal"); ok {
		def.SetIsNodal(v)
	}
	if v, ok := uintAttr(el, "AdvanceLevel"); ok {
		def.SetLocalAdvanceLevel(attribute.AdvanceRead, v)
		def.SetLocalAdvanceLevel(attribute.AdvanceWrite, v)
	}
	if v, ok := childText(el, "BriefDescription"); ok {
		def.SetBriefDescription(v)
	}
	if v, ok := childText(el, "DetailedDescription"); ok {
		def.SetDetailedDescription(v)
	}
	if n := el.SelectElement("AssociationsDef"); n != nil {
		p.h.association(p, n, def)
	}
	if items := el.SelectElement("ItemDefinitions"); items != nil {
		p.itemDefinitions(items, def.AddItemDefinition, "definition "+def.Type())
	}
}

func v1AssociationDef(p *parser, el *etree.Element, def *attribute.Definition) {
	name, _ := attr(el, "Name")
	if name == "" {
		name = def.Type() + "Associations"
	}
	rule := attribute.NewAssociationRule(name)
	if n, ok := intAttr(el, "NumberOfRequiredValues"); ok {
		rule.SetNumberOfRequiredValues(n)
	}
	if b, ok := boolAttr(el, "Extensible"); ok {
		rule.SetIsExtensible(b)
		if n, ok := intAttr(el, "MaxNumberOfValues"); ok {
			rule.SetMaxNumberOfValues(n)
		}
	}
	if mask, ok := childText(el, "MembershipMask"); ok {
		rule.SetAcceptsEntry(modelResourceType, strings.TrimSpace(mask), true)
	}
	def.SetLocalAssociationRule(rule)
}

func v1ItemDef(p *parser, el *etree.Element, idef attribute.ItemDefinition) {
	if v, ok := attr(el, "Label"); ok {
		idef.SetLabel(v)
	}
	if v, ok := intAttr(el, "Version"); ok {
		idef.SetVersion(v)
	}
	if v, ok := boolAttr(el, "Optional"); ok {
		idef.SetIsOptional(v)
	}
	if v, ok := boolAttr(el, "IsEnabledByDefault"); ok {
		idef.SetIsEnabledByDefault(v)
	}
	if v, ok := uintAttr(el, "AdvanceLevel"); ok {
		idef.SetLocalAdvanceLevel(attribute.AdvanceRead, v)
		idef.SetLocalAdvanceLevel(attribute.AdvanceWrite, v)
	}
	if v, ok := childText(el, "BriefDescription"); ok {
		idef.SetBriefDescription(v)
	}
	if v, ok := childText(el, "DetailedDescription"); ok {
		idef.SetDetailedDescription(v)
	}
	if cats := el.SelectElement("Categories"); cats != nil {
		p.flatCategories(el, cats, idef.LocalCategories())
	}
}

// flatCategories applies the legacy list form: every entry is an inclusion
// and CategoryCheckMode on owner combines them
func (p *parser) flatCategories(owner, cats *etree.Element, set *category.Set) {
	for _, c := range texts(cats) {
		set.InsertInclusion(strings.TrimSpace(c))
	}
	if m, ok := p.mode(owner, "CategoryCheckMode"); ok {
		set.SetInclusionMode(m)
	}
}

func (p *parser) mode(el *etree.Element, key string) (category.Mode, bool) {
	v, ok := attr(el, key)
	if !ok {
		return category.Or, false
	}
	m, err := category.ParseMode(v)
	if err != nil {
		p.log.Warnf("%s: %v", el.Tag, err)
		return category.Or, false
	}
	return m, true
}

func valueDef(t attribute.ValueType) itemDefFunc {
	return func(p *parser, el *etree.Element) attribute.ItemDefinition {
		d := attribute.NewValueItemDefinition(el.SelectAttrValue("Name", ""), t)
		p.valueDef(el, d)
		return d
	}
}

func (p *parser) valueDef(el *etree.Element, d *attribute.ValueItemDefinition) {
	if n, ok := intAttr(el, "NumberOfRequiredValues"); ok {
		d.SetNumberOfRequiredValues(n)
	}
	if b, ok := boolAttr(el, "Extensible"); ok {
		d.SetIsExtensible(b)
	}
	if n, ok := intAttr(el, "MaxNumberOfValues"); ok {
		d.SetMaxNumberOfValues(n)
	}
	if v, ok := attr(el, "Units"); ok {
		d.SetUnits(v)
	}
	if b, ok := boolAttr(el, "MultipleLines"); ok {
		d.SetIsMultiline(b)
	}
	if b, ok := boolAttr(el, "Secure"); ok {
		d.SetIsSecure(b)
	}
	if labels := el.SelectElement("ComponentLabels"); labels != nil {
		p.labels(labels, d.SetCommonValueLabel, d.SetValueLabels)
	}
	if children := el.SelectElement("ChildrenDefinitions"); children != nil {
		p.itemDefinitions(children, d.AddChildItemDefinition, "item "+d.Name())
	}
	if r := el.SelectElement("RangeInfo"); r != nil {
		if m := r.SelectElement("Min"); m != nil {
			p.bound(d, m, d.SetMinRange)
		}
		if m := r.SelectElement("Max"); m != nil {
			p.bound(d, m, d.SetMaxRange)
		}
	}
	if info := el.SelectElement("DiscreteInfo"); info != nil {
		p.discreteInfo(info, d)
	}
	if dv := el.SelectElement("DefaultValue"); dv != nil {
		p.defaultValue(dv, d)
	}
}

func (p *parser) labels(el *etree.Element, common func(string), each func([]string)) {
	if v, ok := attr(el, "CommonLabel"); ok {
		common(v)
		return
	}
	each(texts(el))
}

func (p *parser) bound(d *attribute.ValueItemDefinition, el *etree.Element, set func(interface{}, bool) error) {
	v, err := attribute.ParseValue(d.ValueType(), el.Text())
	if err != nil {
		p.log.Errorf("item %q: bad %s bound %q", d.Name(), el.Tag, el.Text())
		return
	}
	inclusive, _ := boolAttr(el, "Inclusive")
	if err := set(v, inclusive); err != nil {
		p.log.Errorf("item %q: %v", d.Name(), err)
	}
}

func (p *parser) discreteInfo(info *etree.Element, d *attribute.ValueItemDefinition) {
	for _, c := range info.ChildElements() {
		switch c.Tag {
		case "Value":
			p.discreteValue(d, c)
		case "Structure":
			v := c.SelectElement("Value")
			if v == nil {
				p.log.Errorf("item %q: discrete structure without a Value", d.Name())
				continue
			}
			i := p.discreteValue(d, v)
			if i < 0 {
				continue
			}
			enum := d.DiscreteValues()[i].Enum
			if items := c.SelectElement("Items"); items != nil {
				for _, name := range texts(items) {
					if err := d.AddConditionalItem(enum, strings.TrimSpace(name)); err != nil {
						p.log.Errorf("item %q: %v", d.Name(), err)
					}
				}
			}
			if cats := c.SelectElement("Categories"); cats != nil {
				d.SetDiscreteValueCategories(i, texts(cats))
			}
		}
	}
	if i, ok := intAttr(info, "DefaultIndex"); ok {
		if err := d.SetDefaultDiscreteIndex(i); err != nil {
			p.log.Errorf("item %q: %v", d.Name(), err)
		}
	}
}

// discreteValue adds one choice and returns its index, or -1
func (p *parser) discreteValue(d *attribute.ValueItemDefinition, el *etree.Element) int {
	v, err := attribute.ParseValue(d.ValueType(), el.Text())
	if err != nil {
		p.log.Errorf("item %q: bad discrete value %q", d.Name(), el.Text())
		return -1
	}
	if err := d.AddDiscreteValue(el.SelectAttrValue("Enum", ""), v); err != nil {
		p.log.Errorf("item %q: %v", d.Name(), err)
		return -1
	}
	return len(d.DiscreteValues()) - 1
}

func (p *parser) defaultValue(el *etree.Element, d *attribute.ValueItemDefinition) {
	sep := el.SelectAttrValue("Sep", ",")
	var vals []interface{}
	for _, part := range strings.Split(el.Text(), sep) {
		v, err := attribute.ParseValue(d.ValueType(), part)
		if err != nil {
			p.log.Errorf("item %q: bad default value %q", d.Name(), part)
			return
		}
		vals = append(vals, v)
	}
	if err := d.SetDefaultValues(vals); err != nil {
		p.log.Errorf("item %q: %v", d.Name(), err)
	}
}

func voidDef(p *parser, el *etree.Element) attribute.ItemDefinition {
	return attribute.NewVoidItemDefinition(el.SelectAttrValue("Name", ""))
}

func groupDef(p *parser, el *etree.Element) attribute.ItemDefinition {
	d := attribute.NewGroupItemDefinition(el.SelectAttrValue("Name", ""))
	if n, ok := intAttr(el, "NumberOfRequiredGroups"); ok {
		d.SetNumberOfRequiredGroups(n)
	}
	if b, ok := boolAttr(el, "Extensible"); ok {
		d.SetIsExtensible(b)
	}
	if n, ok := intAttr(el, "MaxNumberOfGroups"); ok {
		d.SetMaxNumberOfGroups(n)
	}
	if b, ok := boolAttr(el, "IsConditional"); ok {
		d.SetIsConditional(b)
	}
	if n, ok := intAttr(el, "MinNumberOfChoices"); ok {
		d.SetMinNumberOfChoices(n)
	}
	if n, ok := intAttr(el, "MaxNumberOfChoices"); ok {
		d.SetMaxNumberOfChoices(n)
	}
	if labels := el.SelectElement("SubGroupLabels"); labels != nil {
		p.labels(labels, d.SetCommonSubGroupLabel, d.SetSubGroupLabels)
	}
	if items := el.SelectElement("ItemDefinitions"); items != nil {
		p.itemDefinitions(items, d.AddItemDefinition, "group "+d.Name())
	}
	return d
}

// attributeRefDef reads the legacy attribute reference: a component item
// accepting attributes of the type named by the AttDef child
func attributeRefDef(p *parser, el *etree.Element) attribute.ItemDefinition {
	d := attribute.NewReferenceItemDefinition(el.SelectAttrValue("Name", ""), attribute.ComponentKind)
	if n, ok := intAttr(el, "NumberOfRequiredValues"); ok {
		d.SetNumberOfRequiredValues(n)
	}
	if b, ok := boolAttr(el, "Extensible"); ok {
		d.SetIsExtensible(b)
	}
	if n, ok := intAttr(el, "MaxNumberOfValues"); ok {
		d.SetMaxNumberOfValues(n)
	}
	filter := attribute.AttributeTypeName
	if typeName, ok := childText(el, "AttDef"); ok && strings.TrimSpace(typeName) != "" {
		filter = attribute.AttributeFilter(strings.TrimSpace(typeName))
	}
	d.SetAcceptsEntry(attribute.ResourceTypeName, filter, true)
	if labels := el.SelectElement("ComponentLabels"); labels != nil {
		p.labels(labels, d.SetCommonValueLabel, d.SetValueLabels)
	}
	return d
}

func v1Attribute(p *parser, el *etree.Element, att *attribute.Attribute) {
	if items := el.SelectElement("Items"); items != nil {
		p.readItems(items, att.Find, "attribute "+att.Name())
	}
}

func v1Item(p *parser, el *etree.Element, it attribute.Item) {
	if v, ok := boolAttr(el, "Enabled"); ok {
		it.SetIsEnabled(v)
	}
	if v, ok := uintAttr(el, "AdvanceLevel"); ok {
		it.SetLocalAdvanceLevel(attribute.AdvanceRead, v)
		it.SetLocalAdvanceLevel(attribute.AdvanceWrite, v)
	}
}

func valueItem(p *parser, el *etree.Element, it attribute.Item) {
	v := it.(*attribute.ValueItem)
	if n, ok := intAttr(el, "NumberOfValues"); ok {
		if n != v.NumberOfValues() {
			if err := v.SetNumberOfValues(n); err != nil {
				p.log.Errorf("item %q: %v", v.Name(), err)
			}
		}
		if vals := el.SelectElement("Values"); vals != nil {
			for _, c := range vals.ChildElements() {
				i, ok := p.index(c, v.Name(), v.NumberOfValues())
				if !ok {
					continue
				}
				switch c.Tag {
				case "Val":
					p.setValue(v, i, c.Text())
				case "UnsetVal":
					_ = v.Unset(i)
				default:
					p.log.Errorf("item %q: unsupported value element %q", v.Name(), c.Tag)
				}
			}
		}
	} else if v.NumberOfValues() > 0 {
		if p.h.unsetValue(el) {
			_ = v.Unset(0)
		} else {
			p.setValue(v, 0, el.Text())
		}
	}
	if children := el.SelectElement("ChildrenItems"); children != nil {
		p.readItems(children, v.ChildItem, "item "+v.Name())
	}
}

// index reads the Ith attribute of a per-element node and checks it
// against n
func (p *parser) index(el *etree.Element, name string, n int) (int, bool) {
	i, ok := intAttr(el, "Ith")
	if !ok {
		p.log.Errorf("item %q: XML attribute Ith is missing", name)
		return 0, false
	}
	if i < 0 || i >= n {
		p.log.Errorf("item %q: XML attribute Ith = %d is out of range", name, i)
		return 0, false
	}
	return i, true
}

// setValue stores text into element i. Discrete items hold the index of
// the chosen value.
func (p *parser) setValue(v *attribute.ValueItem, i int, text string) {
	if v.IsDiscrete() {
		if err := v.SetDiscreteIndex(i, parseInt(text)); err != nil {
			p.log.Errorf("item %q: %v", v.Name(), err)
		}
		return
	}
	val, err := attribute.ParseValue(v.ValueType(), text)
	if err != nil {
		p.log.Errorf("item %q: cannot read %q as %s", v.Name(), text, v.ValueType())
		return
	}
	if err := v.SetValue(i, val); err != nil {
		p.log.Errorf("item %q: %v", v.Name(), err)
	}
}

func groupItem(p *parser, el *etree.Element, it attribute.Item) {
	g := it.(*attribute.GroupItem)
	if n, ok := intAttr(el, "NumberOfGroups"); ok && n != g.NumberOfGroups() {
		if err := g.SetNumberOfGroups(n); err != nil {
			p.log.Errorf("item %q: %v", g.Name(), err)
		}
	}
	clusters := el.SelectElement("GroupClusters")
	if clusters == nil {
		return
	}
	for _, c := range clusters.SelectElements("Cluster") {
		row, ok := p.index(c, g.Name(), g.NumberOfGroups())
		if !ok {
			continue
		}
		p.readItems(c, func(name string) attribute.Item { return g.FindInGroup(row, name) }, "group "+g.Name())
	}
}

// attributeRefItem reads legacy attribute references by name. They are
// resolved after every attribute has been created.
func attributeRefItem(p *parser, el *etree.Element, it attribute.Item) {
	r := it.(*attribute.ReferenceItem)
	if n, ok := intAttr(el, "NumberOfValues"); ok && n != r.NumberOfValues() {
		if err := r.SetNumberOfValues(n); err != nil {
			p.log.Errorf("item %q: %v", r.Name(), err)
		}
	}
	if vals := el.SelectElement("Values"); vals != nil {
		for _, c := range vals.SelectElements("Val") {
			if i, ok := p.index(c, r.Name(), r.NumberOfValues()); ok {
				p.deferRef(r, i, c.Text())
			}
		}
		return
	}
	if val := el.SelectElement("Val"); val != nil && r.NumberOfValues() > 0 {
		p.deferRef(r, 0, val.Text())
	}
}

func (p *parser) deferRef(r *attribute.ReferenceItem, i int, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	p.pending = append(p.pending, pendingRef{item: r, index: i, name: name})
}
