package attribute

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAnalyses(t *testing.T, s *Analyses) {
	t.Helper()
	for _, name := range []string{"CFD", "Heat", "Turbulence", "RANS", "LES", "Radiation"} {
		_, err := s.Create(name)
		require.NoError(t, err)
	}
	require.NoError(t, s.SetParent("Turbulence", "CFD"))
	require.NoError(t, s.SetParent("RANS", "Turbulence"))
	require.NoError(t, s.SetParent("LES", "Turbulence"))
	require.NoError(t, s.SetParent("Radiation", "Heat"))
	s.Find("Turbulence").SetExclusive(true)
	s.Find("CFD").AddCategory("fluid")
	s.Find("Heat").AddCategory("thermal")
	s.Find("Radiation").AddCategory("radiation")
}

func TestAnalyses_Tree(t *testing.T) {
	s := NewAnalyses()
	buildAnalyses(t, s)

	_, err := s.Create("CFD")
	assert.True(t, errors.Is(err, ErrDuplicateName))
	assert.True(t, errors.Is(s.SetParent("CFD", "RANS"), ErrPrerequisiteCycle))
	assert.True(t, errors.Is(s.SetParent("CFD", "Missing"), ErrNotFound))

	top := s.TopLevel()
	require.Len(t, top, 2)
	assert.Equal(t, "CFD", top[0].Name())
	assert.Equal(t, []string{"radiation", "thermal"}, s.Find("Radiation").AllCategories())
	assert.Len(t, s.Find("Turbulence").Children(), 2)

	require.NoError(t, s.SetParent("LES", "CFD"))
	assert.Len(t, s.Find("Turbulence").Children(), 1)
	assert.Same(t, s.Find("CFD"), s.Find("LES").Parent())
}

func TestAnalyses_BuildDefinitionNonExclusive(t *testing.T) {
	r := newTestResource(t)
	buildAnalyses(t, r.Analyses())

	def, err := r.Analyses().BuildDefinition(r, "Analysis")
	require.NoError(t, err)

	cfd, ok := def.FindItemDefinition("CFD").(*GroupItemDefinition)
	require.True(t, ok, "analyses with non-exclusive children become groups")
	assert.True(t, cfd.IsOptional())
	assert.Equal(t, []string{"fluid"}, cfd.LocalCategories().Inclusions())

	turb, ok := cfd.FindItemDefinition("Turbulence").(*ValueItemDefinition)
	require.True(t, ok, "exclusive analyses become discrete strings")
	assert.Len(t, turb.DiscreteValues(), 2)
	assert.Equal(t, 1, turb.FindDiscreteIndex("LES"))

	heat, ok := def.FindItemDefinition("Heat").(*GroupItemDefinition)
	require.True(t, ok)
	_, ok = heat.FindItemDefinition("Radiation").(*VoidItemDefinition)
	assert.True(t, ok, "leaf analyses become void items")

	_, err = r.Analyses().BuildDefinition(r, "Analysis")
	assert.True(t, errors.Is(err, ErrDuplicateType))
}

func TestAnalyses_BuildDefinitionExclusive(t *testing.T) {
	r := newTestResource(t)
	buildAnalyses(t, r.Analyses())
	r.Analyses().SetTopLevelExclusive(true)

	def, err := r.Analyses().BuildDefinition(r, "Analysis")
	require.NoError(t, err)
	require.Equal(t, 1, def.NumberOfItemDefinitions())

	choice, ok := def.FindItemDefinition(AnalysisItemName).(*ValueItemDefinition)
	require.True(t, ok)
	assert.Equal(t, 0, choice.FindDiscreteIndex("CFD"))
	assert.Equal(t, []string{"CFD"}, choice.ConditionalItems("CFD"))

	att, err := r.CreateAttribute("config", "Analysis")
	require.NoError(t, err)
	item := att.FindValue(AnalysisItemName)
	require.NoError(t, item.SetValue(0, "Heat"))
	active := item.ActiveChildItems()
	require.Len(t, active, 1)
	assert.Equal(t, GroupKind, active[0].Kind())
}
