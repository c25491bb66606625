package xmlio

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/conduit-lang/attrkit/internal/attribute"
	"github.com/conduit-lang/attrkit/internal/category"
	"github.com/conduit-lang/attrkit/internal/resource"
)

// Write serializes res as a version 3 document
func Write(w io.Writer, res *attribute.Resource) error {
	doc := Document(res)
	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

// WriteString serializes res and returns the document text
func WriteString(res *attribute.Resource) (string, error) {
	doc := Document(res)
	doc.Indent(2)
	return doc.WriteToString()
}

// WriteFile serializes res to path
func WriteFile(path string, res *attribute.Resource) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Document builds the version 3 document tree for res. Configurations are
// written as ordinary attributes of the analysis definition.
func Document(res *attribute.Resource) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	root := doc.CreateElement(RootElement)
	setIntAttr(root, "Version", CurrentVersion)
	root.CreateAttr("ID", res.ID().String())

	w := &writer{res: res}
	w.categories(root)
	w.analyses(root)
	w.advanceLevels(root)
	w.definitions(root)
	w.exclusions(root)
	w.prerequisites(root)
	w.attributes(root)
	w.uniqueRoles(root)
	w.associations(root)
	return doc
}

type writer struct {
	res *attribute.Resource
}

type labelled interface {
	HasLabel() bool
}

type advanced interface {
	LocalAdvanceLevel(mode attribute.AdvanceMode) (uint, bool)
}

func (w *writer) categories(root *etree.Element) {
	cats := w.res.Categories()
	if len(cats) == 0 {
		return
	}
	el := root.CreateElement("Categories")
	for _, c := range cats {
		textChild(el, "Cat", c)
	}
}

func (w *writer) analyses(root *etree.Element) {
	analyses := w.res.Analyses()
	if analyses.Len() == 0 {
		return
	}
	el := root.CreateElement("Analyses")
	if analyses.AreTopLevelExclusive() {
		setBoolAttr(el, "Exclusive", true)
	}
	for _, a := range analyses.All() {
		n := el.CreateElement("Analysis")
		n.CreateAttr("Type", a.Name())
		if a.Parent() != nil {
			n.CreateAttr("BaseType", a.Parent().Name())
		}
		if a.HasLabel() {
			n.CreateAttr("Label", a.Label())
		}
		if a.IsExclusive() {
			setBoolAttr(n, "Exclusive", true)
		}
		if a.IsRequired() {
			setBoolAttr(n, "Required", true)
		}
		for _, c := range a.Categories() {
			textChild(n, "Cat", c)
		}
	}
}

func (w *writer) advanceLevels(root *etree.Element) {
	levels := w.res.AdvanceLevels()
	if len(levels) == 0 {
		return
	}
	el := root.CreateElement("AdvanceLevels")
	for _, l := range levels {
		n := textChild(el, "Level", strconv.FormatUint(uint64(l), 10))
		n.CreateAttr("Label", w.res.AdvanceLevelLabel(l))
	}
}

func writeAdvanceLevels(el *etree.Element, obj advanced) {
	if v, ok := obj.LocalAdvanceLevel(attribute.AdvanceRead); ok {
		setUintAttr(el, "AdvanceReadLevel", v)
	}
	if v, ok := obj.LocalAdvanceLevel(attribute.AdvanceWrite); ok {
		setUintAttr(el, "AdvanceWriteLevel", v)
	}
}

func writeDescriptions(el *etree.Element, brief, detailed string) {
	if brief != "" {
		textChild(el, "BriefDescription", brief)
	}
	if detailed != "" {
		textChild(el, "DetailedDescription", detailed)
	}
}

func writeCategoryInfo(el *etree.Element, set *category.Set) {
	if set.Empty() {
		return
	}
	info := el.CreateElement("CategoryInfo")
	info.CreateAttr("Combination", set.CombinationMode().String())
	if inc := set.Inclusions(); len(inc) > 0 {
		n := info.CreateElement("Include")
		n.CreateAttr("Combination", set.InclusionMode().String())
		for _, c := range inc {
			textChild(n, "Cat", c)
		}
	}
	if exc := set.Exclusions(); len(exc) > 0 {
		n := info.CreateElement("Exclude")
		n.CreateAttr("Combination", set.ExclusionMode().String())
		for _, c := range exc {
			textChild(n, "Cat", c)
		}
	}
}

// separator picks a list separator that occurs in none of vals
func separator(vals []string) string {
	for _, sep := range []string{",", ";", "|", "\t"} {
		clash := false
		for _, v := range vals {
			if strings.Contains(v, sep) {
				clash = true
				break
			}
		}
		if !clash {
			return sep
		}
	}
	return ","
}

func (w *writer) definitions(root *etree.Element) {
	defs := w.res.Definitions()
	if len(defs) == 0 {
		return
	}
	el := root.CreateElement("Definitions")
	for _, def := range defs {
		w.definition(el, def)
	}
}

func (w *writer) definition(parent *etree.Element, def *attribute.Definition) {
	el := parent.CreateElement("AttDef")
	el.CreateAttr("Type", def.Type())
	if base := def.BaseDefinition(); base != nil {
		el.CreateAttr("BaseType", base.Type())
	}
	if def.HasLabel() {
		el.CreateAttr("Label", def.Label())
	}
	if def.Version() != 0 {
		setIntAttr(el, "Version", def.Version())
	}
	if def.IsAbstract() {
		setBoolAttr(el, "Abstract", true)
	}
	if def.IsUnique() {
		setBoolAttr(el, "Unique", true)
	}
	if def.IsNodal() {
		setBoolAttr(el, "Nodal", true)
	}
	if def.CategoryInheritanceMode() != category.Or {
		el.CreateAttr("CategoryInheritanceMode", def.CategoryInheritanceMode().String())
	}
	writeAdvanceLevels(el, def)
	writeDescriptions(el, def.BriefDescription(), def.DetailedDescription())
	writeCategoryInfo(el, def.LocalCategories())

	if tags := def.Tags().All(); len(tags) > 0 {
		n := el.CreateElement("Tags")
		for _, t := range tags {
			tag := n.CreateElement("Tag")
			tag.CreateAttr("Name", t.Name)
			if vals := t.Values(); len(vals) > 0 {
				sep := separator(vals)
				tag.CreateAttr("Sep", sep)
				tag.SetText(strings.Join(vals, sep))
			}
		}
	}

	if rule := def.LocalAssociationRule(); rule != nil {
		n := el.CreateElement("AssociationsDef")
		w.itemDefCommon(n, rule)
		w.referenceDefBody(n, rule, "ReferenceLabels")
		if rule.OnlyResources() {
			setBoolAttr(n, "OnlyResources", true)
		}
	}

	if idefs := def.LocalItemDefinitions(); len(idefs) > 0 {
		n := el.CreateElement("ItemDefinitions")
		for _, idef := range idefs {
			w.itemDef(n, idef)
		}
	}
}

func (w *writer) itemDefCommon(el *etree.Element, idef attribute.ItemDefinition) {
	el.CreateAttr("Name", idef.Name())
	if l, ok := idef.(labelled); ok && l.HasLabel() {
		el.CreateAttr("Label", idef.Label())
	}
	if idef.Version() != 0 {
		setIntAttr(el, "Version", idef.Version())
	}
	if idef.IsOptional() {
		setBoolAttr(el, "Optional", true)
		setBoolAttr(el, "IsEnabledByDefault", idef.IsEnabledByDefault())
	}
	writeAdvanceLevels(el, idef)
	writeDescriptions(el, idef.BriefDescription(), idef.DetailedDescription())
	writeCategoryInfo(el, idef.LocalCategories())
}

func (w *writer) itemDef(parent *etree.Element, idef attribute.ItemDefinition) {
	el := parent.CreateElement(idef.Kind().String())
	w.itemDefCommon(el, idef)
	switch d := idef.(type) {
	case *attribute.ValueItemDefinition:
		w.valueDef(el, d)
	case *attribute.GroupItemDefinition:
		w.groupDef(el, d)
	case *attribute.ReferenceItemDefinition:
		w.referenceDefBody(el, d, labelsElement(d.Kind()))
	}
}

func labelsElement(kind attribute.ItemKind) string {
	switch kind {
	case attribute.ComponentKind:
		return "ComponentLabels"
	case attribute.ResourceKind:
		return "ResourceLabels"
	default:
		return "ReferenceLabels"
	}
}

func writeLabels(el *etree.Element, tag, common string, labels []string) {
	if common == "" && len(labels) == 0 {
		return
	}
	n := el.CreateElement(tag)
	if common != "" {
		n.CreateAttr("CommonLabel", common)
		return
	}
	for _, l := range labels {
		textChild(n, "Label", l)
	}
}

func (w *writer) valueDef(el *etree.Element, d *attribute.ValueItemDefinition) {
	t := d.ValueType()
	setIntAttr(el, "NumberOfRequiredValues", d.NumberOfRequiredValues())
	if d.IsExtensible() {
		setBoolAttr(el, "Extensible", true)
	}
	if d.MaxNumberOfValues() > 0 {
		setIntAttr(el, "MaxNumberOfValues", d.MaxNumberOfValues())
	}
	if d.Units() != "" {
		el.CreateAttr("Units", d.Units())
	}
	if d.IsMultiline() {
		setBoolAttr(el, "MultipleLines", true)
	}
	if d.IsSecure() {
		setBoolAttr(el, "Secure", true)
	}
	if t == attribute.DateTimeType {
		if d.DisplayFormat() != "" {
			el.CreateAttr("DisplayFormat", d.DisplayFormat())
		}
		setBoolAttr(el, "ShowTimeZone", d.ShowTimeZone())
		setBoolAttr(el, "ShowCalendarPopup", d.ShowCalendarPopup())
	}
	writeLabels(el, "ComponentLabels", d.CommonValueLabel(), d.ValueLabels())

	if children := d.ChildItemDefinitions(); len(children) > 0 {
		n := el.CreateElement("ChildrenDefinitions")
		for _, c := range children {
			w.itemDef(n, c)
		}
	}

	if d.MinRange() != nil || d.MaxRange() != nil {
		n := el.CreateElement("RangeInfo")
		if b := d.MinRange(); b != nil {
			setBoolAttr(textChild(n, "Min", attribute.FormatValue(t, b.Value)), "Inclusive", b.Inclusive)
		}
		if b := d.MaxRange(); b != nil {
			setBoolAttr(textChild(n, "Max", attribute.FormatValue(t, b.Value)), "Inclusive", b.Inclusive)
		}
	}

	if d.IsDiscrete() {
		n := el.CreateElement("DiscreteInfo")
		if i := d.DefaultDiscreteIndex(); i >= 0 {
			setIntAttr(n, "DefaultIndex", i)
		}
		for _, dv := range d.DiscreteValues() {
			items := d.ConditionalItems(dv.Enum)
			target := n
			if len(items) > 0 || len(dv.Categories) > 0 {
				target = n.CreateElement("Structure")
			}
			textChild(target, "Value", attribute.FormatValue(t, dv.Value)).CreateAttr("Enum", dv.Enum)
			if len(items) > 0 {
				list := target.CreateElement("Items")
				for _, name := range items {
					textChild(list, "Item", name)
				}
			}
			if len(dv.Categories) > 0 {
				list := target.CreateElement("Categories")
				for _, c := range dv.Categories {
					textChild(list, "Cat", c)
				}
			}
		}
	}

	if d.HasDefault() && !(d.IsDiscrete() && d.DefaultDiscreteIndex() >= 0) {
		var vals []string
		for _, v := range d.DefaultValues() {
			vals = append(vals, attribute.FormatValue(t, v))
		}
		sep := separator(vals)
		n := textChild(el, "DefaultValue", strings.Join(vals, sep))
		if sep != "," {
			n.CreateAttr("Sep", sep)
		}
	}
}

func (w *writer) groupDef(el *etree.Element, d *attribute.GroupItemDefinition) {
	setIntAttr(el, "NumberOfRequiredGroups", d.NumberOfRequiredGroups())
	if d.IsExtensible() {
		setBoolAttr(el, "Extensible", true)
	}
	if d.MaxNumberOfGroups() > 0 {
		setIntAttr(el, "MaxNumberOfGroups", d.MaxNumberOfGroups())
	}
	if d.IsConditional() {
		setBoolAttr(el, "IsConditional", true)
		setIntAttr(el, "MinNumberOfChoices", d.MinNumberOfChoices())
		setIntAttr(el, "MaxNumberOfChoices", d.MaxNumberOfChoices())
	}
	writeLabels(el, "SubGroupLabels", d.CommonSubGroupLabel(), d.SubGroupLabels())
	if children := d.ItemDefinitions(); len(children) > 0 {
		n := el.CreateElement("ItemDefinitions")
		for _, c := range children {
			w.itemDef(n, c)
		}
	}
}

func (w *writer) referenceDefBody(el *etree.Element, d *attribute.ReferenceItemDefinition, labels string) {
	el.CreateAttr("LockType", d.LockType().String())
	setIntAttr(el, "Role", int(d.Role()))
	if d.HoldReference() {
		setBoolAttr(el, "HoldReference", true)
	}
	setIntAttr(el, "NumberOfRequiredValues", d.NumberOfRequiredValues())
	setBoolAttr(el, "Extensible", d.IsExtensible())
	if d.MaxNumberOfValues() > 0 {
		setIntAttr(el, "MaxNumberOfValues", d.MaxNumberOfValues())
	}
	writeRules(el, "Accepts", d.AcceptableEntries())
	writeRules(el, "Rejects", d.RejectedEntries())
	writeLabels(el, labels, d.CommonValueLabel(), d.ValueLabels())
}

func writeRules(el *etree.Element, tag string, rules []attribute.Rule) {
	if len(rules) == 0 {
		return
	}
	n := el.CreateElement(tag)
	for _, r := range rules {
		c := n.CreateElement("Resource")
		c.CreateAttr("Name", r.TypeName)
		if r.Filter != "" {
			c.CreateAttr("Filter", r.Filter)
		}
	}
}

func (w *writer) exclusions(root *etree.Element) {
	var el *etree.Element
	written := make(map[[2]string]bool)
	for _, def := range w.res.Definitions() {
		for _, other := range def.Exclusions() {
			pair := [2]string{def.Type(), other.Type()}
			if written[pair] || written[[2]string{pair[1], pair[0]}] {
				continue
			}
			written[pair] = true
			if el == nil {
				el = root.CreateElement("Exclusions")
			}
			rule := el.CreateElement("Rule")
			textChild(rule, "Def", pair[0])
			textChild(rule, "Def", pair[1])
		}
	}
}

func (w *writer) prerequisites(root *etree.Element) {
	var el *etree.Element
	for _, def := range w.res.Definitions() {
		deps := def.Prerequisites()
		if len(deps) == 0 {
			continue
		}
		if el == nil {
			el = root.CreateElement("Prerequisites")
		}
		rule := el.CreateElement("Rule")
		rule.CreateAttr("Type", def.Type())
		for _, dep := range deps {
			textChild(rule, "Def", dep.Type())
		}
	}
}

func (w *writer) attributes(root *etree.Element) {
	atts := w.res.Attributes()
	if len(atts) == 0 {
		return
	}
	el := root.CreateElement("Attributes")
	for _, att := range atts {
		n := el.CreateElement("Att")
		n.CreateAttr("Name", att.Name())
		n.CreateAttr("Type", att.Type())
		n.CreateAttr("ID", att.ID().String())
		writeAdvanceLevels(n, att)
		if items := att.Items(); len(items) > 0 {
			list := n.CreateElement("Items")
			for _, it := range items {
				w.item(list, it)
			}
		}
		if assoc := att.Associations(); assoc != nil {
			a := n.CreateElement("Associations")
			w.itemCommon(a, assoc)
			w.referenceItem(a, assoc)
		}
	}
}

func (w *writer) itemCommon(el *etree.Element, it attribute.Item) {
	el.CreateAttr("Name", it.Name())
	if it.IsOptional() {
		setBoolAttr(el, "Enabled", it.LocalEnabled())
	}
	writeAdvanceLevels(el, it)
}

func (w *writer) item(parent *etree.Element, it attribute.Item) {
	el := parent.CreateElement(it.Kind().String())
	w.itemCommon(el, it)
	switch x := it.(type) {
	case *attribute.ValueItem:
		w.valueItem(el, x)
	case *attribute.GroupItem:
		w.groupItem(el, x)
	case *attribute.ReferenceItem:
		w.referenceItem(el, x)
	}
}

func valueText(v *attribute.ValueItem, i int) string {
	if v.IsDiscrete() {
		return strconv.Itoa(v.DiscreteIndex(i))
	}
	val, _ := v.Value(i)
	return attribute.FormatValue(v.ValueType(), val)
}

func (w *writer) valueItem(el *etree.Element, v *attribute.ValueItem) {
	children := v.ChildItems()
	single := v.ValueDefinition().IsFixedCount() && v.NumberOfRequiredValues() == 1 &&
		v.NumberOfValues() == 1 && len(children) == 0
	if single {
		if v.IsSet(0) {
			el.SetText(valueText(v, 0))
		} else {
			el.CreateElement("UnsetVal")
		}
	} else {
		setIntAttr(el, "NumberOfValues", v.NumberOfValues())
		vals := el.CreateElement("Values")
		for i := 0; i < v.NumberOfValues(); i++ {
			var n *etree.Element
			if v.IsSet(i) {
				n = textChild(vals, "Val", valueText(v, i))
			} else {
				n = vals.CreateElement("UnsetVal")
			}
			setIntAttr(n, "Ith", i)
		}
	}
	if len(children) > 0 {
		n := el.CreateElement("ChildrenItems")
		for _, c := range children {
			w.item(n, c)
		}
	}
}

func (w *writer) groupItem(el *etree.Element, g *attribute.GroupItem) {
	setIntAttr(el, "NumberOfGroups", g.NumberOfGroups())
	clusters := el.CreateElement("GroupClusters")
	for row := 0; row < g.NumberOfGroups(); row++ {
		c := clusters.CreateElement("Cluster")
		setIntAttr(c, "Ith", row)
		for _, it := range g.Items(row) {
			w.item(c, it)
		}
	}
}

func (w *writer) referenceItem(el *etree.Element, r *attribute.ReferenceItem) {
	table := w.res.Links()
	if r.NumberOfRequiredValues() == 1 && !r.IsExtensible() {
		if link, row, ok := table.Row(r.Key(0)); ok {
			w.referenceValue(el.CreateElement("Val"), r.Key(0), link, row)
		}
		return
	}
	if r.NumberOfRequiredValues() == 0 || r.IsExtensible() {
		setIntAttr(el, "NumberOfValues", r.NumberOfValues())
	}
	vals := el.CreateElement("Values")
	for i := 0; i < r.NumberOfValues(); i++ {
		link, row, ok := table.Row(r.Key(i))
		if !ok {
			continue
		}
		n := vals.CreateElement("Val")
		setIntAttr(n, "Ith", i)
		w.referenceValue(n, r.Key(i), link, row)
	}
}

func (w *writer) referenceValue(el *etree.Element, key resource.Key, link *resource.Link, row resource.Row) {
	setIntAttr(el, "Role", int(row.Role))
	k := el.CreateElement("Key")
	textChild(k, "_1_", key.First.String())
	textChild(k, "_2_", key.Second.String())
	rhs := el.CreateElement("RHS")
	textChild(rhs, "_1_", link.RHS.String())
	textChild(rhs, "_2_", row.RHS.String())
	writeSurrogate(el.CreateElement("Surrogate"), link.Surrogate)
}

func writeSurrogate(el *etree.Element, s resource.Surrogate) {
	setUintAttr(el, "Index", s.Index)
	el.CreateAttr("TypeName", s.TypeName)
	el.CreateAttr("Id", s.ID.String())
	el.CreateAttr("Location", s.Location)
}

func (w *writer) uniqueRoles(root *etree.Element) {
	roles := w.res.UniqueRoles()
	if len(roles) == 0 {
		return
	}
	el := root.CreateElement("UniqueRoles")
	for _, r := range roles {
		setIntAttr(el.CreateElement("Role"), "ID", int(r))
	}
}

func (w *writer) associations(root *etree.Element) {
	links := w.res.AssociatedResources()
	if len(links) == 0 {
		return
	}
	el := root.CreateElement("Associations")
	for _, l := range links {
		n := el.CreateElement("Resource")
		writeSurrogate(n, l.Surrogate)
		n.CreateAttr("Key", l.ID.String())
	}
}
