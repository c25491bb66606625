package resource

import (
	"github.com/google/uuid"
)

// Generic is a minimal in-memory resource with flat components. Hosts use
// it to stand in for resources owned by external collaborators (geometry or
// mesh sessions) so references into them can be resolved.
type Generic struct {
	id         uuid.UUID
	name       string
	typeName   string
	location   string
	parents    []string
	components map[uuid.UUID]*GenericComponent
}

// NewGeneric creates an empty generic resource. parents lists the type names
// it also answers to in IsOfType.
func NewGeneric(id uuid.UUID, typeName, location string, parents ...string) *Generic {
	return &Generic{
		id:         id,
		typeName:   typeName,
		location:   location,
		parents:    parents,
		components: make(map[uuid.UUID]*GenericComponent),
	}
}

func (g *Generic) ID() uuid.UUID { return g.id }
func (g *Generic) Name() string { return g.name }
func (g *Generic) TypeName() string { return g.typeName }
func (g *Generic) Location() string { return g.location }
func (g *Generic) SetName(name string) { g.name = name }

// IsOfType implements Resource
func (g *Generic) IsOfType(typeName string) bool {
	if typeName == g.typeName {
		return true
	}
	for _, p := range g.parents {
		if p == typeName {
			return true
		}
	}
	return false
}

// Find implements Resource
func (g *Generic) Find(id uuid.UUID) Component {
	if c, ok := g.components[id]; ok {
		return c
	}
	return nil
}

// AddComponent creates a component owned by g
func (g *Generic) AddComponent(id uuid.UUID, name, typeName string) *GenericComponent {
	c := &GenericComponent{id: id, name: name, typeName: typeName, owner: g}
	g.components[id] = c
	return c
}

// GenericComponent is a component of a Generic resource
type GenericComponent struct {
	id       uuid.UUID
	name     string
	typeName string
	owner    *Generic
}

func (c *GenericComponent) ID() uuid.UUID { return c.id }
func (c *GenericComponent) Name() string { return c.name }
func (c *GenericComponent) TypeName() string { return c.typeName }
func (c *GenericComponent) Resource() Resource { return c.owner }
