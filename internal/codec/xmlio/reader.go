// Package xmlio reads and writes attribute resources as XML documents.
//
// Documents carry a Version on their SMTK_AttributeResource root. Versions 1
// through 3 are read; documents are always written as version 3. Problems
// with individual elements are recorded in the supplied logger and parsing
// continues; only a missing root, a missing version or an unsupported
// version abort the read.
package xmlio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/conduit-lang/attrkit/internal/attribute"
	"github.com/conduit-lang/attrkit/internal/logger"
)

// RootElement is the document element of every attribute resource document
const RootElement = "SMTK_AttributeResource"

// CurrentVersion is the version written by Write
const CurrentVersion = 3

// ErrDocumentFatal is returned when a document cannot be parsed at all
var ErrDocumentFatal = errors.New("document cannot be parsed")

// Handler parses one document version
type Handler struct {
	Version int
	hooks   func() *hooks
}

// CanParse reports whether the handler understands the document rooted at root
func (h Handler) CanParse(root *etree.Element) bool {
	if root == nil || root.Tag != RootElement {
		return false
	}
	v, ok := attr(root, "Version")
	return ok && parseInt(v) == h.Version
}

// Handlers returns the registered handlers, newest first
func Handlers() []Handler {
	return []Handler{
		{Version: 3, hooks: v3Hooks},
		{Version: 2, hooks: v2Hooks},
		{Version: 1, hooks: v1Hooks},
	}
}

// Read parses a document from r into res. Element-level problems are
// logged to log and do not produce an error.
func Read(r io.Reader, res *attribute.Resource, log *logger.Logger) error {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return fatal(log, "malformed XML: %v", err)
	}
	return ReadDocument(doc, res, log)
}

// ReadString parses a document held in s
func ReadString(s string, res *attribute.Resource, log *logger.Logger) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return fatal(log, "malformed XML: %v", err)
	}
	return ReadDocument(doc, res, log)
}

// ReadFile parses the document stored at path. The resource location is
// set to path.
func ReadFile(path string, res *attribute.Resource, log *logger.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fatal(log, "cannot open %s: %v", path, err)
	}
	defer f.Close()
	res.SetLocation(path)
	return Read(f, res, log)
}

// ReadDocument parses an already loaded document tree
func ReadDocument(doc *etree.Document, res *attribute.Resource, log *logger.Logger) error {
	if log == nil {
		log = logger.New()
	}
	root := doc.SelectElement(RootElement)
	if root == nil {
		return fatal(log, "missing %s element", RootElement)
	}
	v, ok := attr(root, "Version")
	if !ok {
		return fatal(log, "missing Version attribute on %s", RootElement)
	}
	for _, h := range Handlers() {
		if h.CanParse(root) {
			p := &parser{res: res, log: log, h: h.hooks(), version: h.Version}
			p.process(root)
			return nil
		}
	}
	return fatal(log, "unsupported document version %q", v)
}

func fatal(log *logger.Logger, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if log != nil {
		log.Fatalf("%s", msg)
	}
	return fmt.Errorf("%w: %s", ErrDocumentFatal, msg)
}

// pendingRef is a reference to an attribute by name, resolved once every
// attribute of the document exists
type pendingRef struct {
	item  *attribute.ReferenceItem
	index int
	name  string
}

type parser struct {
	res     *attribute.Resource
	log     *logger.Logger
	h       *hooks
	version int
	pending []pendingRef
}

func (p *parser) process(root *etree.Element) {
	if v, ok := attr(root, "ID"); ok {
		if id := parseUUID(v); id != uuid.Nil {
			p.res.SetID(id)
		}
	}
	p.h.root(p, root)
}

// readDefinitions creates every AttDef, bases before derived types, and then
// fills them in document order of creation
func (p *parser) readDefinitions(el *etree.Element) {
	type created struct {
		def *attribute.Definition
		el  *etree.Element
	}
	var done []created
	pending := el.SelectElements("AttDef")
	for len(pending) > 0 {
		var next []*etree.Element
		for _, n := range pending {
			typeName, _ := attr(n, "Type")
			base, _ := attr(n, "BaseType")
			if typeName == "" {
				p.log.Errorf("AttDef is missing its Type attribute")
				continue
			}
			if base != "" && p.res.FindDefinition(base) == nil && declares(pending, base) {
				next = append(next, n)
				continue
			}
			def, err := p.res.CreateDefinition(typeName, base)
			if err != nil {
				p.log.Errorf("cannot create definition %q: %v", typeName, err)
				continue
			}
			done = append(done, created{def: def, el: n})
		}
		if len(next) == len(pending) {
			for _, n := range next {
				p.log.Errorf("definition %q: base type %q is never defined", n.SelectAttrValue("Type", ""), n.SelectAttrValue("BaseType", ""))
			}
			break
		}
		pending = next
	}
	for _, c := range done {
		p.h.definition(p, c.el, c.def)
	}
}

func declares(nodes []*etree.Element, typeName string) bool {
	for _, n := range nodes {
		if n.SelectAttrValue("Type", "") == typeName {
			return true
		}
	}
	return false
}

// itemDefinitions parses every child of el as an item definition and hands
// it to add
func (p *parser) itemDefinitions(el *etree.Element, add func(attribute.ItemDefinition) error, owner string) {
	for _, c := range el.ChildElements() {
		idef := p.itemDefinition(c)
		if idef == nil {
			continue
		}
		if err := add(idef); err != nil {
			p.log.Errorf("%s: %v", owner, err)
		}
	}
}

func (p *parser) itemDefinition(el *etree.Element) attribute.ItemDefinition {
	build, ok := p.h.itemDefs[el.Tag]
	if !ok {
		p.log.Errorf("unsupported item definition element %q", el.Tag)
		return nil
	}
	name, _ := attr(el, "Name")
	if name == "" {
		p.log.Errorf("%s item definition is missing its Name attribute", el.Tag)
		return nil
	}
	idef := build(p, el)
	p.h.itemDef(p, el, idef)
	return idef
}

func (p *parser) readAttributes(el *etree.Element) {
	for _, n := range el.SelectElements("Att") {
		name, _ := attr(n, "Name")
		typeName, _ := attr(n, "Type")
		if typeName == "" {
			p.log.Errorf("attribute %q is missing its Type attribute", name)
			continue
		}
		id := uuid.Nil
		if v, ok := attr(n, "ID"); ok {
			id = parseUUID(v)
		}
		if id == uuid.Nil {
			id = uuid.New()
		}
		att, err := p.res.CreateAttributeWithID(name, typeName, id)
		if err != nil {
			p.log.Errorf("cannot create attribute %q of type %q: %v", name, typeName, err)
			continue
		}
		p.h.attribute(p, n, att)
	}
}

// readItems matches every child of el to an item by its Name attribute
func (p *parser) readItems(el *etree.Element, find func(name string) attribute.Item, owner string) {
	for _, c := range el.ChildElements() {
		name, _ := attr(c, "Name")
		it := find(name)
		if it == nil {
			p.log.Errorf("%s: cannot find item %q", owner, name)
			continue
		}
		p.readItem(c, it)
	}
}

func (p *parser) readItem(el *etree.Element, it attribute.Item) {
	p.h.item(p, el, it)
	read, ok := p.h.items[it.Kind()]
	if !ok {
		p.log.Errorf("item %q: %s items are not supported in version %d documents", it.Name(), it.Kind(), p.version)
		return
	}
	read(p, el, it)
}

func (p *parser) resolvePending() {
	for _, ref := range p.pending {
		target := p.res.FindAttribute(ref.name)
		if target == nil {
			p.log.Errorf("item %q: cannot find referenced attribute %q", ref.item.Name(), ref.name)
			continue
		}
		if err := ref.item.SetObject(ref.index, target); err != nil {
			p.log.Errorf("item %q: %v", ref.item.Name(), err)
		}
	}
	p.pending = nil
}
