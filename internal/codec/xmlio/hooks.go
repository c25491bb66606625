package xmlio

import (
	"github.com/beevik/etree"

	"github.com/conduit-lang/attrkit/internal/attribute"
)

type itemDefFunc func(p *parser, el *etree.Element) attribute.ItemDefinition

type itemFunc func(p *parser, el *etree.Element, it attribute.Item)

// hooks are the per-version parse steps. Each version starts from its
// predecessor's hooks and wraps or replaces the steps whose format changed.
// Nested elements are always dispatched through the parser's hooks so the
// newest behavior applies at every depth.
type hooks struct {
	root        func(p *parser, root *etree.Element)
	definition  func(p *parser, el *etree.Element, def *attribute.Definition)
	association func(p *parser, el *etree.Element, def *attribute.Definition)
	attribute   func(p *parser, el *etree.Element, att *attribute.Attribute)

	// itemDefs builds an item definition from its element, keyed by tag
	itemDefs map[string]itemDefFunc
	// itemDef applies the settings shared by every item definition
	itemDef func(p *parser, el *etree.Element, idef attribute.ItemDefinition)

	// items fills an item from its element, keyed by item kind
	items map[attribute.ItemKind]itemFunc
	// item applies the settings shared by every item
	item func(p *parser, el *etree.Element, it attribute.Item)

	// unsetValue reports whether a single-valued item element holds no value
	unsetValue func(el *etree.Element) bool
}
