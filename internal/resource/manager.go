package resource

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Manager hosts loaded resources and serves as the lookup service used for
// reference resolution. It is safe for concurrent use; the resources it
// hosts are not, so hosts serialize access with Lock.
type Manager struct {
	resources map[uuid.UUID]Resource
	locks     map[uuid.UUID]*sync.RWMutex
	mu        sync.RWMutex
}

// NewManager creates an empty manager
func NewManager() *Manager {
	return &Manager{
		resources: make(map[uuid.UUID]Resource),
		locks:     make(map[uuid.UUID]*sync.RWMutex),
	}
}

// Register adds a resource. Registering a different resource under an id
// already in use is an error; re-registering the same one is a no-op.
func (m *Manager) Register(r Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, exists := m.resources[r.ID()]; exists {
		if existing == r {
			return nil
		}
		return fmt.Errorf("resource %s is already registered", r.ID())
	}
	m.resources[r.ID()] = r
	if _, ok := m.locks[r.ID()]; !ok {
		m.locks[r.ID()] = &sync.RWMutex{}
	}
	return nil
}

// Remove unregisters a resource
func (m *Manager) Remove(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.resources[id]; !exists {
		return false
	}
	delete(m.resources, id)
	return true
}

// Find implements Finder
func (m *Manager) Find(id uuid.UUID) (Resource, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.resources[id]
	return r, ok
}

// FindByType implements Finder
func (m *Manager) FindByType(typeName string) []Resource {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Resource
	for _, r := range m.resources {
		if r.IsOfType(typeName) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().String() < out[j].ID().String() })
	return out
}

// All returns every registered resource ordered by id
func (m *Manager) All() []Resource {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Resource, 0, len(m.resources))
	for _, r := range m.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().String() < out[j].ID().String() })
	return out
}

// Count returns the number of registered resources
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.resources)
}

// Lock returns the reader/writer lock keyed by resource id. The lock exists
// even for ids that are not registered yet, so a host can hold it while
// loading.
func (m *Manager) Lock(id uuid.UUID) *sync.RWMutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		l = &sync.RWMutex{}
		m.locks[id] = l
	}
	return l
}
