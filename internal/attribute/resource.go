// Package attribute implements the attribute system: definitions arranged in
// an inheritance graph with exclusion and prerequisite constraints, typed
// item templates, attribute instances holding items, analyses, and the
// resource owning all of them together with its link table.
package attribute

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/conduit-lang/attrkit/internal/category"
	"github.com/conduit-lang/attrkit/internal/resource"
)

// ResourceTypeName is the persistent type name of attribute resources
const ResourceTypeName = "attribute.Resource"

// Resource owns definitions and attributes. It is not safe for concurrent
// use; hosts serialize access through resource.Manager.Lock.
type Resource struct {
	id       uuid.UUID
	name     string
	location string

	defs     map[string]*Definition
	defOrder []*Definition

	atts     map[string]*Attribute
	attsByID map[uuid.UUID]*Attribute
	attOrder []*Attribute

	categories    map[string]struct{}
	advanceLevels map[uint]string
	analyses      *Analyses
	uniqueRoles   map[resource.Role]struct{}
	links         *resource.Table
	finder        resource.Finder
}

// NewResource creates an empty resource. A nil id is replaced by a random one.
func NewResource(id uuid.UUID) *Resource {
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Resource{
		id:            id,
		defs:          make(map[string]*Definition),
		atts:          make(map[string]*Attribute),
		attsByID:      make(map[uuid.UUID]*Attribute),
		categories:    make(map[string]struct{}),
		advanceLevels: make(map[uint]string),
		analyses:      NewAnalyses(),
		uniqueRoles:   make(map[resource.Role]struct{}),
		links:         resource.NewTable(),
	}
}

// ID implements resource.PersistentObject
func (r *Resource) ID() uuid.UUID { return r.id }

// SetID changes the resource id; readers use it to adopt a document's id
func (r *Resource) SetID(id uuid.UUID) { r.id = id }

// Name implements resource.PersistentObject
func (r *Resource) Name() string { return r.name }

func (r *Resource) SetName(name string) { r.name = name }

// TypeName implements resource.PersistentObject
func (r *Resource) TypeName() string { return ResourceTypeName }

// Location implements resource.Resource
func (r *Resource) Location() string { return r.location }

func (r *Resource) SetLocation(location string) { r.location = location }

// IsOfType implements resource.Resource
func (r *Resource) IsOfType(typeName string) bool {
	return typeName == ResourceTypeName || typeName == "resource.Resource"
}

// Find implements resource.Resource by looking up an attribute by id
func (r *Resource) Find(id uuid.UUID) resource.Component {
	if a, ok := r.attsByID[id]; ok {
		return a
	}
	return nil
}

// Links returns the resource's link table
func (r *Resource) Links() *resource.Table { return r.links }

// SetFinder installs the lookup service used to resolve references into
// other resources
func (r *Resource) SetFinder(f resource.Finder) { r.finder = f }

// Finder returns a finder that knows this resource first, then the
// installed lookup service
func (r *Resource) Finder() resource.Finder {
	return resource.Chain{selfFinder{r}, r.finder}
}

type selfFinder struct{ r *Resource }

func (f selfFinder) Find(id uuid.UUID) (resource.Resource, bool) {
	if id == f.r.id {
		return f.r, true
	}
	return nil, false
}

func (f selfFinder) FindByType(typeName string) []resource.Resource {
	if f.r.IsOfType(typeName) {
		return []resource.Resource{f.r}
	}
	return nil
}

// CreateDefinition adds a definition. baseType may be empty.
func (r *Resource) CreateDefinition(typeName, baseType string) (*Definition, error) {
	if typeName == "" {
		return nil, enrich(ErrNotFound, "empty definition type")
	}
	if _, exists := r.defs[typeName]; exists {
		return nil, enrich(ErrDuplicateType, "%q", typeName)
	}
	var base *Definition
	if baseType != "" {
		var ok bool
		if base, ok = r.defs[baseType]; !ok {
			return nil, enrich(ErrNotFound, "base definition %q of %q", baseType, typeName)
		}
	}
	d := &Definition{
		resource:   r,
		typeName:   typeName,
		base:       base,
		itemIndex:  make(map[string]int),
		categories: category.NewSet(),
	}
	r.defs[typeName] = d
	r.defOrder = append(r.defOrder, d)
	return d, nil
}

// FindDefinition returns the definition with the given type, or nil
func (r *Resource) FindDefinition(typeName string) *Definition {
	return r.defs[typeName]
}

// Definitions returns every definition in creation order
func (r *Resource) Definitions() []*Definition {
	return append([]*Definition(nil), r.defOrder...)
}

// DerivedDefinitions returns every definition deriving, directly or not,
// from def
func (r *Resource) DerivedDefinitions(def *Definition) []*Definition {
	var out []*Definition
	for _, d := range r.defOrder {
		if d != def && d.IsA(def) {
			out = append(out, d)
		}
	}
	return out
}

// AddExclusion makes the two named definitions mutually exclusive
func (r *Resource) AddExclusion(a, b string) error {
	da, db := r.defs[a], r.defs[b]
	if da == nil || db == nil {
		return enrich(ErrNotFound, "exclusion between %q and %q", a, b)
	}
	return da.AddExclusion(db)
}

// AddPrerequisite records that attributes of target require one of dep
func (r *Resource) AddPrerequisite(target, dep string) error {
	dt, dd := r.defs[target], r.defs[dep]
	if dt == nil || dd == nil {
		return enrich(ErrNotFound, "prerequisite %q of %q", dep, target)
	}
	return dt.AddPrerequisite(dd)
}

// CreateAttribute instantiates the named definition. An empty name is
// replaced by a generated one.
func (r *Resource) CreateAttribute(name, typeName string) (*Attribute, error) {
	return r.CreateAttributeWithID(name, typeName, uuid.New())
}

// CreateAttributeWithID instantiates the named definition with a given id
func (r *Resource) CreateAttributeWithID(name, typeName string, id uuid.UUID) (*Attribute, error) {
	def := r.defs[typeName]
	if def == nil {
		return nil, enrich(ErrNotFound, "definition %q", typeName)
	}
	if def.abstract {
		return nil, enrich(ErrAbstract, "%q", typeName)
	}
	if name == "" {
		name = r.GenerateAttributeName(typeName)
	}
	if _, exists := r.atts[name]; exists {
		return nil, enrich(ErrDuplicateName, "attribute %q", name)
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	if _, exists := r.attsByID[id]; exists {
		return nil, enrich(ErrDuplicateName, "attribute id %s", id)
	}
	a := newAttribute(r, def, name, id)
	r.atts[name] = a
	r.attsByID[id] = a
	r.attOrder = append(r.attOrder, a)
	return a, nil
}

// GenerateAttributeName returns "<type>-<n>" for the lowest unused n
func (r *Resource) GenerateAttributeName(typeName string) string {
	for n := 0; ; n++ {
		name := fmt.Sprintf("%s-%d", typeName, n)
		if _, exists := r.atts[name]; !exists {
			return name
		}
	}
}

// RemoveAttribute deletes the attribute, its own link rows, and every
// reference or association other attributes hold to it
func (r *Resource) RemoveAttribute(a *Attribute) bool {
	if a == nil || r.attsByID[a.id] != a {
		return false
	}
	for _, other := range r.attOrder {
		if other == a {
			continue
		}
		for _, it := range other.items {
			releaseTargeting(it, a.id)
		}
		if other.associations != nil {
			releaseTargeting(other.associations, a.id)
		}
	}
	r.links.RemoveRows(a.id)
	delete(r.atts, a.name)
	delete(r.attsByID, a.id)
	for i, existing := range r.attOrder {
		if existing == a {
			r.attOrder = append(r.attOrder[:i], r.attOrder[i+1:]...)
			break
		}
	}
	return true
}

// releaseTargeting unsets every reference element pointing at id
func releaseTargeting(it Item, id uuid.UUID) {
	switch x := it.(type) {
	case *ReferenceItem:
		for {
			i := x.Find(id)
			if i < 0 {
				return
			}
			x.release(i)
		}
	case *GroupItem:
		for _, row := range x.rows {
			for _, c := range row {
				releaseTargeting(c, id)
			}
		}
	case *ValueItem:
		for _, c := range x.children {
			releaseTargeting(c, id)
		}
	}
}

// RenameAttribute changes an attribute's name, keeping names unique
func (r *Resource) RenameAttribute(a *Attribute, name string) error {
	if a == nil || r.attsByID[a.id] != a {
		return enrich(ErrNotFound, "attribute")
	}
	if name == a.name {
		return nil
	}
	if _, exists := r.atts[name]; exists {
		return enrich(ErrDuplicateName, "attribute %q", name)
	}
	delete(r.atts, a.name)
	a.name = name
	r.atts[name] = a
	return nil
}

// FindAttribute returns the attribute named name, or nil
func (r *Resource) FindAttribute(name string) *Attribute { return r.atts[name] }

// AttributeByID returns the attribute with the given id, or nil
func (r *Resource) AttributeByID(id uuid.UUID) *Attribute { return r.attsByID[id] }

// Attributes returns every attribute in creation order
func (r *Resource) Attributes() []*Attribute {
	return append([]*Attribute(nil), r.attOrder...)
}

// FindAttributes returns the attributes whose definition is or derives
// from typeName
func (r *Resource) FindAttributes(typeName string) []*Attribute {
	var out []*Attribute
	for _, a := range r.attOrder {
		if a.IsA(typeName) {
			out = append(out, a)
		}
	}
	return out
}

// AttributesAssociatedWith returns the attributes associated with the
// object with id
func (r *Resource) AttributesAssociatedWith(id uuid.UUID) []*Attribute {
	var out []*Attribute
	seen := make(map[uuid.UUID]bool)
	for _, row := range r.links.RowsTo(id, resource.AssociationRole) {
		if a := r.attsByID[row.LHS]; a != nil && !seen[a.id] {
			seen[a.id] = true
			out = append(out, a)
		}
	}
	return out
}

func (r *Resource) hasAssociated(id uuid.UUID, def *Definition) bool {
	return r.countAssociated(id, def) > 0
}

func (r *Resource) countAssociated(id uuid.UUID, def *Definition) int {
	n := 0
	for _, a := range r.AttributesAssociatedWith(id) {
		if a.def.IsA(def) {
			n++
		}
	}
	return n
}

// AssociateResource records that this resource applies to res. The link
// carries the association role and no rows.
func (r *Resource) AssociateResource(res resource.Resource) *resource.Link {
	if l := r.links.FindLink(res.ID()); l != nil {
		l.Role = resource.AssociationRole
		return l
	}
	s := resource.SurrogateFor(r.links.NextSurrogateIndex(), res)
	return r.links.Insert(s, uuid.New(), r.id, res.ID(), resource.AssociationRole)
}

// AssociateSurrogate records an association with a possibly unloaded
// resource under a given link id
func (r *Resource) AssociateSurrogate(s resource.Surrogate, linkID uuid.UUID) *resource.Link {
	if l := r.links.Value(linkID); l != nil {
		l.Role = resource.AssociationRole
		return l
	}
	if l := r.links.FindLink(s.ID); l != nil {
		l.Role = resource.AssociationRole
		return l
	}
	return r.links.Insert(s, linkID, r.id, s.ID, resource.AssociationRole)
}

// AssociatedResources returns the surrogates of associated resources
func (r *Resource) AssociatedResources() []*resource.Link {
	return r.links.LinksWithRole(resource.AssociationRole)
}

// AddUniqueRole marks role as unique: an object may be the target of at
// most one attribute's relation with that role
func (r *Resource) AddUniqueRole(role resource.Role) {
	r.uniqueRoles[role] = struct{}{}
}

// IsRoleUnique reports whether role was marked unique
func (r *Resource) IsRoleUnique(role resource.Role) bool {
	_, ok := r.uniqueRoles[role]
	return ok
}

// UniqueRoles returns the unique roles in ascending order
func (r *Resource) UniqueRoles() []resource.Role {
	out := make([]resource.Role, 0, len(r.uniqueRoles))
	for role := range r.uniqueRoles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AddCategory registers a category name
func (r *Resource) AddCategory(name string) {
	if name != "" {
		r.categories[name] = struct{}{}
	}
}

// Categories returns the registered categories, sorted
func (r *Resource) Categories() []string {
	out := make([]string, 0, len(r.categories))
	for c := range r.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// UpdateCategories registers every category used by a definition, item
// definition or analysis
func (r *Resource) UpdateCategories() {
	for _, d := range r.defOrder {
		for _, c := range d.categories.All() {
			r.AddCategory(c)
		}
		for _, idef := range d.itemDefs {
			collectItemCategories(idef, r.AddCategory)
		}
	}
	for _, a := range r.analyses.All() {
		for _, c := range a.Categories() {
			r.AddCategory(c)
		}
	}
}

func collectItemCategories(idef ItemDefinition, add func(string)) {
	for _, c := range idef.LocalCategories().All() {
		add(c)
	}
	switch x := idef.(type) {
	case *GroupItemDefinition:
		for _, child := range x.children {
			collectItemCategories(child, add)
		}
	case *ValueItemDefinition:
		for _, child := range x.children {
			collectItemCategories(child, add)
		}
	}
}

// SetAdvanceLevelLabel names an advance level
func (r *Resource) SetAdvanceLevelLabel(level uint, label string) {
	r.advanceLevels[level] = label
}

// AdvanceLevels returns the named levels in ascending order
func (r *Resource) AdvanceLevels() []uint {
	out := make([]uint, 0, len(r.advanceLevels))
	for l := range r.advanceLevels {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AdvanceLevelLabel returns the name of level
func (r *Resource) AdvanceLevelLabel(level uint) string { return r.advanceLevels[level] }

// Analyses returns the resource's analysis tree
func (r *Resource) Analyses() *Analyses { return r.analyses }
