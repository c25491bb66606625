package xmlio

import (
	"errors"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/conduit-lang/attrkit/internal/attribute"
	"github.com/conduit-lang/attrkit/internal/category"
	"github.com/conduit-lang/attrkit/internal/resource"
)

// v3Hooks adds structured category information, tags, exclusions,
// prerequisites, reference-based associations, reference and date-time
// items, configurations, unique roles and resource associations
func v3Hooks() *hooks {
	h := v2Hooks()

	root := h.root
	h.root = func(p *parser, el *etree.Element) {
		root(p, el)
		v3Root(p, el)
	}

	definition := h.definition
	h.definition = func(p *parser, el *etree.Element, def *attribute.Definition) {
		definition(p, el, def)
		v3Definition(p, el, def)
	}

	association := h.association
	h.association = func(p *parser, el *etree.Element, def *attribute.Definition) {
		association(p, el, def)
		rule := def.LocalAssociationRule()
		p.h.itemDef(p, el, rule)
		p.referenceDef(el, rule, "ReferenceLabels")
		if b, _ := boolAttr(el, "OnlyResources"); b {
			rule.SetOnlyResources(true)
		}
		def.SetLocalAssociationRule(rule)
	}

	itemDef := h.itemDef
	h.itemDef = func(p *parser, el *etree.Element, idef attribute.ItemDefinition) {
		itemDef(p, el, idef)
		if info := el.SelectElement("CategoryInfo"); info != nil {
			p.categoryInfo(info, idef.LocalCategories())
		}
	}

	h.itemDefs["DateTime"] = dateTimeDef
	h.itemDefs["Reference"] = referenceDef(attribute.ReferenceKind, "ReferenceLabels")
	h.itemDefs["Component"] = referenceDef(attribute.ComponentKind, "ComponentLabels")
	h.itemDefs["Resource"] = referenceDef(attribute.ResourceKind, "ResourceLabels")

	att := h.attribute
	h.attribute = func(p *parser, el *etree.Element, a *attribute.Attribute) {
		att(p, el, a)
		n := el.SelectElement("Associations")
		if n == nil {
			return
		}
		if assoc := a.Associations(); assoc != nil {
			p.readItem(n, assoc)
		} else {
			p.log.Warnf("attribute %q: associations given but %q has no association rule", a.Name(), a.Type())
		}
	}

	legacyComponent := h.items[attribute.ComponentKind]
	h.items[attribute.ComponentKind] = func(p *parser, el *etree.Element, it attribute.Item) {
		if el.Tag == "AttributeRef" {
			legacyComponent(p, el, it)
			return
		}
		referenceItem(p, el, it)
	}
	h.items[attribute.ReferenceKind] = referenceItem
	h.items[attribute.ResourceKind] = referenceItem
	h.items[attribute.DateTimeKind] = valueItem
	return h
}

func v3Root(p *parser, el *etree.Element) {
	if n := el.SelectElement("Exclusions"); n != nil {
		for _, rule := range n.ChildElements() {
			p.exclusion(rule)
		}
	}
	if n := el.SelectElement("Prerequisites"); n != nil {
		for _, rule := range n.ChildElements() {
			p.prerequisite(rule)
		}
	}
	if n := el.SelectElement("Configurations"); n != nil {
		p.configurations(n)
	}
	if n := el.SelectElement("UniqueRoles"); n != nil {
		for _, r := range n.SelectElements("Role") {
			if id, ok := intAttr(r, "ID"); ok {
				p.res.AddUniqueRole(resource.Role(id))
			}
		}
	}
	if n := el.SelectElement("Associations"); n != nil {
		for _, c := range n.ChildElements() {
			s := surrogate(c)
			linkID := uuid.Nil
			if v, ok := attr(c, "Key"); ok {
				linkID = parseUUID(v)
			}
			if linkID == uuid.Nil {
				linkID = uuid.New()
			}
			p.res.AssociateSurrogate(s, linkID)
		}
	}
}

func v3Definition(p *parser, el *etree.Element, def *attribute.Definition) {
	set := def.LocalCategories()
	if info := el.SelectElement("CategoryInfo"); info != nil {
		p.categoryInfo(info, set)
	} else if cats := el.SelectElement("Categories"); cats != nil {
		p.flatCategories(el, cats, set)
	}
	if m, ok := p.mode(el, "CategoryInheritanceMode"); ok {
		def.SetCategoryInheritanceMode(m)
	}
	tags := el.SelectElement("Tags")
	if tags == nil {
		return
	}
	for _, t := range tags.SelectElements("Tag") {
		name := t.SelectAttrValue("Name", "")
		var tag category.Tag
		if values := t.Text(); values == "" {
			tag = category.NewTag(name)
		} else {
			tag = category.NewTag(name, strings.Split(values, t.SelectAttrValue("Sep", ","))...)
		}
		if !def.Tags().Add(tag) {
			p.log.Warnf("definition %q: could not add tag %q", def.Type(), name)
		}
	}
}

// categoryInfo replaces set with the structured form
func (p *parser) categoryInfo(info *etree.Element, set *category.Set) {
	set.Reset()
	if m, ok := p.mode(info, "Combination"); ok {
		set.SetCombinationMode(m)
	}
	if inc := info.SelectElement("Include"); inc != nil {
		if m, ok := p.mode(inc, "Combination"); ok {
			set.SetInclusionMode(m)
		}
		for _, c := range texts(inc) {
			set.InsertInclusion(strings.TrimSpace(c))
		}
	}
	if exc := info.SelectElement("Exclude"); exc != nil {
		if m, ok := p.mode(exc, "Combination"); ok {
			set.SetExclusionMode(m)
		}
		for _, c := range texts(exc) {
			set.InsertExclusion(strings.TrimSpace(c))
		}
	}
}

// exclusion makes every listed definition exclude every other one
func (p *parser) exclusion(rule *etree.Element) {
	var defs []*attribute.Definition
	for _, name := range texts(rule) {
		def := p.res.FindDefinition(strings.TrimSpace(name))
		if def == nil {
			p.log.Warnf("cannot find exclusion definition %q", name)
			continue
		}
		defs = append(defs, def)
	}
	for i := range defs {
		for j := i + 1; j < len(defs); j++ {
			if err := defs[i].AddExclusion(defs[j]); err != nil {
				p.log.Errorf("exclusion %q/%q: %v", defs[i].Type(), defs[j].Type(), err)
			}
		}
	}
}

// prerequisite adds the listed definitions as prerequisites of the rule's
// Type. Edges closing a cycle are skipped with a warning.
func (p *parser) prerequisite(rule *etree.Element) {
	typeName, ok := attr(rule, "Type")
	if !ok {
		p.log.Warnf("prerequisite rule is missing its Type attribute")
		return
	}
	target := p.res.FindDefinition(typeName)
	if target == nil {
		p.log.Warnf("cannot find prerequisite target definition %q", typeName)
		return
	}
	for _, name := range texts(rule) {
		dep := p.res.FindDefinition(strings.TrimSpace(name))
		if dep == nil {
			p.log.Warnf("cannot find prerequisite definition %q", name)
			continue
		}
		err := target.AddPrerequisite(dep)
		switch {
		case errors.Is(err, attribute.ErrPrerequisiteCycle):
			p.log.Warnf("skipping prerequisite: %v", err)
		case err != nil:
			p.log.Errorf("prerequisite %q of %q: %v", dep.Type(), typeName, err)
		}
	}
}

func dateTimeDef(p *parser, el *etree.Element) attribute.ItemDefinition {
	d := attribute.NewValueItemDefinition(el.SelectAttrValue("Name", ""), attribute.DateTimeType)
	p.valueDef(el, d)
	if v, ok := attr(el, "DisplayFormat"); ok {
		d.SetDisplayFormat(v)
	}
	if b, ok := boolAttr(el, "ShowTimeZone"); ok {
		d.SetShowTimeZone(b)
	}
	if b, ok := boolAttr(el, "ShowCalendarPopup"); ok {
		d.SetShowCalendarPopup(b)
	}
	return d
}

func referenceDef(kind attribute.ItemKind, labels string) itemDefFunc {
	return func(p *parser, el *etree.Element) attribute.ItemDefinition {
		d := attribute.NewReferenceItemDefinition(el.SelectAttrValue("Name", ""), kind)
		p.referenceDef(el, d, labels)
		return d
	}
}

func (p *parser) referenceDef(el *etree.Element, d *attribute.ReferenceItemDefinition, labels string) {
	if accepts := el.SelectElement("Accepts"); accepts != nil {
		for _, c := range accepts.SelectElements("Resource") {
			d.SetAcceptsEntry(c.SelectAttrValue("Name", ""), c.SelectAttrValue("Filter", ""), true)
		}
	}
	if rejects := el.SelectElement("Rejects"); rejects != nil {
		for _, c := range rejects.SelectElements("Resource") {
			d.SetRejectsEntry(c.SelectAttrValue("Name", ""), c.SelectAttrValue("Filter", ""), true)
		}
	}
	if v, ok := attr(el, "LockType"); ok {
		d.SetLockType(attribute.ParseLockType(v))
	}
	if v, ok := intAttr(el, "Role"); ok {
		d.SetRole(resource.Role(v))
	}
	if b, ok := boolAttr(el, "HoldReference"); ok {
		d.SetHoldReference(b)
	}
	if n, ok := intAttr(el, "NumberOfRequiredValues"); ok {
		d.SetNumberOfRequiredValues(n)
	}
	if b, ok := boolAttr(el, "Extensible"); ok {
		d.SetIsExtensible(b)
		if n, ok := intAttr(el, "MaxNumberOfValues"); ok {
			d.SetMaxNumberOfValues(n)
		}
	}
	if el.SelectElement("Labels") != nil {
		p.log.Errorf("item %q: Labels has been renamed to %s", d.Name(), labels)
	}
	if n := el.SelectElement(labels); n != nil {
		p.labels(n, d.SetCommonValueLabel, d.SetValueLabels)
	}
}

func referenceItem(p *parser, el *etree.Element, it attribute.Item) {
	r := it.(*attribute.ReferenceItem)
	if r.NumberOfRequiredValues() == 0 || r.IsExtensible() {
		n, ok := intAttr(el, "NumberOfValues")
		if !ok {
			p.log.Errorf("item %q: XML attribute NumberOfValues is missing", r.Name())
			return
		}
		if n != r.NumberOfValues() {
			if err := r.SetNumberOfValues(n); err != nil {
				p.log.Errorf("item %q: %v", r.Name(), err)
				return
			}
		}
	}
	if r.NumberOfValues() == 0 {
		return
	}
	if vals := el.SelectElement("Values"); vals != nil {
		for _, c := range vals.SelectElements("Val") {
			if i, ok := p.index(c, r.Name(), r.NumberOfValues()); ok {
				p.referenceValue(r, i, c)
			}
		}
		return
	}
	if r.NumberOfRequiredValues() == 1 {
		if val := el.SelectElement("Val"); val != nil {
			p.referenceValue(r, 0, val)
		}
		return
	}
	p.log.Errorf("item %q: XML node Values is missing", r.Name())
}

// referenceValue restores one relation: the surrogate link is created if
// the table does not know it yet, then the row is inserted
func (p *parser) referenceValue(r *attribute.ReferenceItem, i int, val *etree.Element) {
	first, second := pair(val, "Key")
	key := resource.Key{First: first, Second: second}
	rhs1, rhs2 := pair(val, "RHS")
	role, _ := intAttr(val, "Role")

	links := p.res.Links()
	if !links.Contains(key.First) {
		s := resource.Surrogate{}
		if n := val.SelectElement("Surrogate"); n != nil {
			s = surrogate(n)
		}
		links.Insert(s, key.First, p.res.ID(), rhs1, resource.ReferenceRole)
	}
	links.Value(key.First).Insert(key.Second, r.Attribute().ID(), rhs2, resource.Role(role))
	if err := r.SetKey(i, key); err != nil {
		p.log.Errorf("item %q: %v", r.Name(), err)
	}
}

func pair(el *etree.Element, tag string) (uuid.UUID, uuid.UUID) {
	n := el.SelectElement(tag)
	if n == nil {
		return uuid.Nil, uuid.Nil
	}
	first, _ := childText(n, "_1_")
	second, _ := childText(n, "_2_")
	return parseUUID(first), parseUUID(second)
}

func surrogate(el *etree.Element) resource.Surrogate {
	index, _ := uintAttr(el, "Index")
	id, _ := attr(el, "Id")
	return resource.Surrogate{
		Index:    index,
		TypeName: el.SelectAttrValue("TypeName", ""),
		ID:       parseUUID(id),
		Location: el.SelectAttrValue("Location", ""),
	}
}
