// Package resource provides the persistent-object abstractions shared by
// attribute resources and external resources, the link/surrogate table used
// to reference objects in other resources, lazy resolution of those
// references, and a manager that hosts loaded resources.
package resource

import (
	"github.com/google/uuid"
)

// PersistentObject is anything with a stable identity that may be referenced
type PersistentObject interface {
	ID() uuid.UUID
	Name() string
	TypeName() string
}

// Resource is a persistent object that owns components
type Resource interface {
	PersistentObject
	Location() string
	// IsOfType reports whether the resource is, or derives from, typeName
	IsOfType(typeName string) bool
	// Find returns the component with the given id, or nil
	Find(id uuid.UUID) Component
}

// Component is a persistent object owned by a resource
type Component interface {
	PersistentObject
	Resource() Resource
}

// Finder looks up loaded resources. It must never load anything.
type Finder interface {
	Find(id uuid.UUID) (Resource, bool)
	FindByType(typeName string) []Resource
}

// OwningResource returns obj if it is a resource, otherwise the resource that
// owns the component. It returns nil for unknown objects.
func OwningResource(obj PersistentObject) Resource {
	switch o := obj.(type) {
	case Resource:
		return o
	case Component:
		return o.Resource()
	default:
		return nil
	}
}

// IsResource reports whether obj is a resource rather than a component
func IsResource(obj PersistentObject) bool {
	_, ok := obj.(Resource)
	return ok
}
