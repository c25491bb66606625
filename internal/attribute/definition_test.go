package attribute

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/attrkit/internal/category"
)

func newTestResource(t *testing.T) *Resource {
	t.Helper()
	return NewResource(uuid.New())
}

func mustDefinition(t *testing.T, r *Resource, typeName, base string) *Definition {
	t.Helper()
	d, err := r.CreateDefinition(typeName, base)
	require.NoError(t, err)
	return d
}

func TestResource_CreateDefinition(t *testing.T) {
	r := newTestResource(t)

	base := mustDefinition(t, r, "BoundaryCondition", "")
	derived := mustDefinition(t, r, "Dirichlet", "BoundaryCondition")

	_, err := r.CreateDefinition("Dirichlet", "")
	assert.True(t, errors.Is(err, ErrDuplicateType))

	_, err = r.CreateDefinition("Neumann", "Missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Nil(t, r.FindDefinition("Neumann"))

	assert.Same(t, derived, r.FindDefinition("Dirichlet"))
	assert.Same(t, base, derived.BaseDefinition())
	assert.True(t, derived.IsA(base))
	assert.False(t, base.IsA(derived))
	assert.True(t, derived.IsATypeName("BoundaryCondition"))
	assert.Equal(t, []*Definition{derived}, r.DerivedDefinitions(base))
	assert.Len(t, r.Definitions(), 2)
}

func TestDefinition_ItemDefinitionsInherited(t *testing.T) {
	r := newTestResource(t)
	base := mustDefinition(t, r, "Material", "")
	derived := mustDefinition(t, r, "Steel", "Material")

	require.NoError(t, base.AddItemDefinition(NewDoubleItemDefinition("density")))
	require.NoError(t, derived.AddItemDefinition(NewDoubleItemDefinition("yield")))

	err := derived.AddItemDefinition(NewIntItemDefinition("density"))
	assert.True(t, errors.Is(err, ErrDuplicateName))

	err = base.AddItemDefinition(NewIntItemDefinition("yield"))
	assert.True(t, errors.Is(err, ErrDuplicateName), "base items may not shadow derived ones")

	names := []string{}
	for _, idef := range derived.ItemDefinitions() {
		names = append(names, idef.Name())
	}
	assert.Equal(t, []string{"density", "yield"}, names)
	assert.Equal(t, 2, derived.NumberOfItemDefinitions())
	assert.NotNil(t, derived.FindItemDefinition("density"))
	assert.Len(t, derived.LocalItemDefinitions(), 1)
}

func TestDefinition_ExclusionIsSymmetricAndIdempotent(t *testing.T) {
	r := newTestResource(t)
	a := mustDefinition(t, r, "A", "")
	b := mustDefinition(t, r, "B", "")
	c := mustDefinition(t, r, "C", "B")

	require.NoError(t, r.AddExclusion("A", "B"))
	require.NoError(t, a.AddExclusion(b))

	assert.Equal(t, []*Definition{b}, a.Exclusions())
	assert.Equal(t, []*Definition{a}, b.Exclusions())
	assert.True(t, a.IsExclusive(c), "derived types inherit the exclusion")
	assert.True(t, c.IsExclusive(a))

	a.RemoveExclusion(b)
	assert.Empty(t, a.Exclusions())
	assert.Empty(t, b.Exclusions())

	other := NewResource(uuid.Nil)
	foreign := mustDefinition(t, other, "A", "")
	assert.True(t, errors.Is(a.AddExclusion(foreign), ErrForeignDefinition))
	assert.True(t, errors.Is(r.AddExclusion("A", "Missing"), ErrNotFound))
}

func TestDefinition_PrerequisiteCycleRejected(t *testing.T) {
	r := newTestResource(t)
	a := mustDefinition(t, r, "A", "")
	b := mustDefinition(t, r, "B", "")
	c := mustDefinition(t, r, "C", "")

	require.NoError(t, a.AddPrerequisite(b))
	require.NoError(t, b.AddPrerequisite(c))
	require.NoError(t, a.AddPrerequisite(b), "repeating an edge is a no-op")

	err := c.AddPrerequisite(a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPrerequisiteCycle))
	assert.Contains(t, err.Error(), "C -> A -> B -> C")

	assert.True(t, errors.Is(a.AddPrerequisite(a), ErrPrerequisiteCycle))
	assert.Empty(t, r.PrerequisiteCycles())

	order, err := r.PrerequisiteOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, order)

	assert.Equal(t, []*Definition{b}, a.Prerequisites())
	a.RemovePrerequisite(b)
	assert.False(t, a.HasPrerequisites())
}

func TestDefinition_PrerequisiteCyclesReported(t *testing.T) {
	r := newTestResource(t)
	a := mustDefinition(t, r, "A", "")
	b := mustDefinition(t, r, "B", "")

	// splice a cycle in behind AddPrerequisite's back
	a.prerequisites = append(a.prerequisites, b)
	b.prerequisites = append(b.prerequisites, a)

	cycles := r.PrerequisiteCycles()
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"A", "B"}, cycles[0])

	_, err := r.PrerequisiteOrder()
	assert.True(t, errors.Is(err, ErrPrerequisiteCycle))
	assert.Contains(t, err.Error(), "A -> B -> A")
}

func TestDefinition_CategoryFiltering(t *testing.T) {
	r := newTestResource(t)
	d := mustDefinition(t, r, "Solver", "")
	d.LocalCategories().InsertInclusion("solid")
	d.LocalCategories().InsertExclusion("thermal")
	d.LocalCategories().SetCombinationMode(category.And)

	assert.False(t, d.IsRelevant(category.Active("solid", "thermal")))
	assert.True(t, d.IsRelevant(category.Active("solid")))
	assert.False(t, d.IsRelevant(category.Active("fluid")))
}

func TestDefinition_CategoryInheritance(t *testing.T) {
	r := newTestResource(t)
	base := mustDefinition(t, r, "Base", "")
	base.LocalCategories().InsertInclusion("fluid")
	derived := mustDefinition(t, r, "Derived", "Base")
	derived.LocalCategories().InsertInclusion("heat")

	assert.True(t, derived.IsRelevant(category.Active("fluid")), "Or inheritance by default")
	assert.True(t, derived.IsRelevant(category.Active("heat")))

	derived.SetCategoryInheritanceMode(category.And)
	assert.False(t, derived.IsRelevant(category.Active("fluid")))
	assert.True(t, derived.IsRelevant(category.Active("fluid", "heat")))

	unconstrained := mustDefinition(t, r, "Free", "")
	assert.True(t, unconstrained.IsRelevant(category.Active()))
}

func TestDefinition_AdvanceLevelFallsBack(t *testing.T) {
	r := newTestResource(t)
	base := mustDefinition(t, r, "Base", "")
	derived := mustDefinition(t, r, "Derived", "Base")

	assert.Equal(t, uint(0), derived.AdvanceLevel(AdvanceRead))
	base.SetLocalAdvanceLevel(AdvanceRead, 2)
	assert.Equal(t, uint(2), derived.AdvanceLevel(AdvanceRead))
	assert.Equal(t, uint(0), derived.AdvanceLevel(AdvanceWrite))

	derived.SetLocalAdvanceLevel(AdvanceRead, 1)
	assert.Equal(t, uint(1), derived.AdvanceLevel(AdvanceRead))
	derived.UnsetLocalAdvanceLevel(AdvanceRead)
	assert.Equal(t, uint(2), derived.AdvanceLevel(AdvanceRead))
}

func TestDefinition_AssociationRuleInherited(t *testing.T) {
	r := newTestResource(t)
	base := mustDefinition(t, r, "Base", "")
	derived := mustDefinition(t, r, "Derived", "Base")

	assert.Nil(t, derived.AssociationRule())
	rule := base.CreateLocalAssociationRule()
	assert.Equal(t, "BaseAssociations", rule.Name())
	assert.Same(t, rule, derived.AssociationRule())
	assert.Nil(t, derived.LocalAssociationRule())
}
