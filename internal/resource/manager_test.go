package resource

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Register(t *testing.T) {
	m := NewManager()
	model := NewGeneric(uuid.New(), "model.Resource", "", "resource.Resource")

	require.NoError(t, m.Register(model))
	require.NoError(t, m.Register(model), "re-registering the same resource is a no-op")

	imposter := NewGeneric(model.ID(), "model.Resource", "")
	assert.Error(t, m.Register(imposter))

	found, ok := m.Find(model.ID())
	require.True(t, ok)
	assert.Same(t, model, found)

	assert.Len(t, m.FindByType("resource.Resource"), 1)
	assert.Empty(t, m.FindByType("mesh.Resource"))
	assert.Len(t, m.All(), 1)

	assert.True(t, m.Remove(model.ID()))
	assert.False(t, m.Remove(model.ID()))
	assert.Equal(t, 0, m.Count())
}

func TestManager_Lock(t *testing.T) {
	m := NewManager()
	id := uuid.New()

	l1 := m.Lock(id)
	l2 := m.Lock(id)
	assert.Same(t, l1, l2)

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := m.Lock(id)
			l.Lock()
			counter++
			l.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, counter)
}

func TestGeneric(t *testing.T) {
	g := NewGeneric(uuid.New(), "model.Resource", "m.smtk")
	g.SetName("model")
	c := g.AddComponent(uuid.New(), "edge", "edge")

	assert.Equal(t, "model", g.Name())
	assert.Same(t, c, g.Find(c.ID()))
	assert.Nil(t, g.Find(uuid.New()))
	assert.Same(t, g, OwningResource(c))
	assert.Same(t, g, OwningResource(g))
	assert.True(t, IsResource(g))
	assert.False(t, IsResource(c))
}
