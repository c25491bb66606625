package xmlio

import (
	"github.com/beevik/etree"

	"github.com/conduit-lang/attrkit/internal/attribute"
)

// advanceSetter is implemented by definitions, item definitions, attributes
// and items
type advanceSetter interface {
	SetLocalAdvanceLevel(mode attribute.AdvanceMode, level uint)
}

// v2Hooks adds analyses, split read/write advance levels and explicit
// unset values
func v2Hooks() *hooks {
	h := v1Hooks()

	root := h.root
	h.root = func(p *parser, el *etree.Element) {
		root(p, el)
		if n := el.SelectElement("Analyses"); n != nil {
			v2Analyses(p, n)
		}
	}

	definition := h.definition
	h.definition = func(p *parser, el *etree.Element, def *attribute.Definition) {
		definition(p, el, def)
		splitAdvanceLevels(el, def)
	}

	itemDef := h.itemDef
	h.itemDef = func(p *parser, el *etree.Element, idef attribute.ItemDefinition) {
		itemDef(p, el, idef)
		splitAdvanceLevels(el, idef)
	}

	att := h.attribute
	h.attribute = func(p *parser, el *etree.Element, a *attribute.Attribute) {
		att(p, el, a)
		splitAdvanceLevels(el, a)
	}

	item := h.item
	h.item = func(p *parser, el *etree.Element, it attribute.Item) {
		item(p, el, it)
		splitAdvanceLevels(el, it)
	}

	h.unsetValue = func(el *etree.Element) bool {
		return el.SelectElement("UnsetVal") != nil
	}
	return h
}

func splitAdvanceLevels(el *etree.Element, target advanceSetter) {
	if v, ok := uintAttr(el, "AdvanceReadLevel"); ok {
		target.SetLocalAdvanceLevel(attribute.AdvanceRead, v)
	}
	if v, ok := uintAttr(el, "AdvanceWriteLevel"); ok {
		target.SetLocalAdvanceLevel(attribute.AdvanceWrite, v)
	}
}

func v2Analyses(p *parser, el *etree.Element) {
	analyses := p.res.Analyses()
	if b, ok := boolAttr(el, "Exclusive"); ok {
		analyses.SetTopLevelExclusive(b)
	}
	nodes := el.SelectElements("Analysis")
	for _, n := range nodes {
		name, _ := attr(n, "Type")
		a, err := analyses.Create(name)
		if err != nil {
			p.log.Errorf("analysis %q: %v", name, err)
			continue
		}
		if v, ok := attr(n, "Label"); ok {
			a.SetLabel(v)
		}
		if b, ok := boolAttr(n, "Exclusive"); ok {
			a.SetExclusive(b)
		}
		if b, ok := boolAttr(n, "Required"); ok {
			a.SetRequired(b)
		}
		for _, c := range n.SelectElements("Cat") {
			a.AddCategory(c.Text())
		}
	}
	for _, n := range nodes {
		base, ok := attr(n, "BaseType")
		if !ok || base == "" {
			continue
		}
		if err := analyses.SetParent(n.SelectAttrValue("Type", ""), base); err != nil {
			p.log.Errorf("analysis %q: %v", n.SelectAttrValue("Type", ""), err)
		}
	}
}
