package xmlio

import (
	"github.com/beevik/etree"

	"github.com/conduit-lang/attrkit/internal/attribute"
)

// itemContainer is an attribute or a group item: something analysis items
// are looked up in by name
type itemContainer interface {
	Name() string
	Find(name string) attribute.Item
}

// configurations builds one attribute of the analysis definition per Config
// element. A configuration that does not match the analysis tree is removed
// again and the next one is processed.
func (p *parser) configurations(el *etree.Element) {
	typeName, ok := attr(el, "AnalysisAttributeType")
	if !ok {
		p.log.Errorf("Configurations is missing its AnalysisAttributeType attribute; cannot build configurations")
		return
	}
	def := p.res.FindDefinition(typeName)
	if def == nil {
		var err error
		def, err = p.res.Analyses().BuildDefinition(p.res, typeName)
		if err != nil {
			p.log.Errorf("cannot build analysis definition %q: %v", typeName, err)
			return
		}
	}
	if def.NumberOfItemDefinitions() == 0 {
		p.log.Errorf("analysis definition %q is empty", typeName)
		return
	}
	exclusive := p.res.Analyses().AreTopLevelExclusive()

	for _, n := range el.SelectElements("Config") {
		name, ok := attr(n, "Name")
		if !ok {
			p.log.Errorf("configuration is missing its Name attribute; skipping it")
			continue
		}
		att, err := p.res.CreateAttribute(name, typeName)
		if err != nil {
			p.log.Errorf("cannot create configuration %q: %v", name, err)
			continue
		}
		splitAdvanceLevels(n, att)

		var choice *attribute.ValueItem
		if exclusive {
			choice = stringItem(att.Item(0))
			if choice == nil {
				p.log.Errorf("configuration %q: top level exclusive analyses need a single string item", name)
				p.res.RemoveAttribute(att)
				continue
			}
		}
		for _, a := range n.SelectElements("Analysis") {
			var ok bool
			if choice != nil {
				ok = p.exclusiveAnalysis(choice, a)
			} else {
				ok = p.analysis(att, a)
			}
			if !ok {
				p.log.Errorf("encountered a problem constructing configuration %q; configuration not built", name)
				p.res.RemoveAttribute(att)
				break
			}
		}
	}
}

func stringItem(it attribute.Item) *attribute.ValueItem {
	v, ok := it.(*attribute.ValueItem)
	if !ok || v.ValueType() != attribute.StringType {
		return nil
	}
	return v
}

// analysis enables the item of container named by the node's Type and
// descends into its children
func (p *parser) analysis(container itemContainer, el *etree.Element) bool {
	typeName, ok := attr(el, "Type")
	if !ok {
		p.log.Errorf("analysis node under %q is missing its Type attribute", container.Name())
		return false
	}
	it := container.Find(typeName)
	if it == nil {
		p.log.Errorf("cannot find analysis %q under %q", typeName, container.Name())
		return false
	}
	it.SetIsEnabled(true)
	children := el.SelectElements("Analysis")

	switch x := it.(type) {
	case *attribute.VoidItem:
		if len(children) > 0 {
			p.log.Warnf("analysis %q under %q has no child analyses; the given children are ignored", typeName, container.Name())
		}
		return true
	case *attribute.GroupItem:
		for _, c := range children {
			if !p.analysis(x, c) {
				return false
			}
		}
		return true
	}
	if s := stringItem(it); s != nil {
		if len(children) == 0 {
			p.log.Errorf("exclusive analysis %q under %q does not name a child", typeName, container.Name())
			return false
		}
		for _, c := range children {
			if !p.exclusiveAnalysis(s, c) {
				return false
			}
		}
		return true
	}
	p.log.Errorf("item %q is not an analysis item", typeName)
	return false
}

// exclusiveAnalysis selects the node's Type in a discrete string item and
// descends into the activated child
func (p *parser) exclusiveAnalysis(item *attribute.ValueItem, el *etree.Element) bool {
	typeName, ok := attr(el, "Type")
	if !ok {
		p.log.Errorf("analysis node under %q is missing its Type attribute", item.Name())
		return false
	}
	if err := item.SetValue(0, typeName); err != nil {
		p.log.Errorf("cannot find analysis %q under %q", typeName, item.Name())
		return false
	}
	children := el.SelectElements("Analysis")
	active := item.ActiveChildItems()
	if len(active) == 0 {
		if len(children) > 0 {
			p.log.Warnf("analysis %q under %q has no child analyses; the given children are ignored", typeName, item.Name())
		}
		return true
	}
	next := stringItem(active[0])
	if len(children) == 0 {
		if next != nil {
			p.log.Errorf("analysis %q under %q has exclusive children but none is named", typeName, item.Name())
			return false
		}
		return true
	}
	if next != nil {
		for _, c := range children {
			if !p.exclusiveAnalysis(next, c) {
				return false
			}
		}
		return true
	}
	group, ok := active[0].(*attribute.GroupItem)
	if !ok {
		p.log.Errorf("analysis %q under %q does not have a proper child structure", typeName, item.Name())
		return false
	}
	for _, c := range children {
		if !p.analysis(group, c) {
			return false
		}
	}
	return true
}
