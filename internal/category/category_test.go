package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_Passes(t *testing.T) {
	t.Run("inclusion and exclusion with And combination", func(t *testing.T) {
		s := NewSet()
		s.InsertInclusion("solid")
		s.InsertExclusion("thermal")
		s.SetCombinationMode(And)

		assert.False(t, s.Passes(Active("solid", "thermal")))
		assert.True(t, s.Passes(Active("solid")))
		assert.False(t, s.Passes(Active("fluid")))
	})

	t.Run("Or combination", func(t *testing.T) {
		s := NewSet()
		s.InsertInclusion("solid")
		s.InsertExclusion("thermal")
		s.SetCombinationMode(Or)

		assert.True(t, s.Passes(Active("solid", "thermal")))
		assert.True(t, s.Passes(Active("fluid")))
		assert.False(t, s.Passes(Active("thermal")))
	})

	t.Run("inclusion modes", func(t *testing.T) {
		s := NewSet()
		s.InsertInclusion("a")
		s.InsertInclusion("b")

		assert.True(t, s.Passes(Active("a")))
		s.SetInclusionMode(And)
		assert.False(t, s.Passes(Active("a")))
		assert.True(t, s.Passes(Active("a", "b", "c")))
	})

	t.Run("exclusion only", func(t *testing.T) {
		s := NewSet()
		s.InsertExclusion("x")
		s.InsertExclusion("y")
		s.SetExclusionMode(And)

		assert.True(t, s.Passes(Active("x")))
		assert.False(t, s.Passes(Active("x", "y")))
	})

	t.Run("empty set is unconstrained", func(t *testing.T) {
		s := NewSet()
		assert.True(t, s.Empty())
		assert.True(t, s.Passes(Active()))
	})
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"Or": Or, "any": Or, "And": And, "ALL": And} {
		m, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, m, in)
	}
	_, err := ParseMode("xor")
	assert.Error(t, err)
	assert.Equal(t, "And", And.String())
	assert.Equal(t, "Or", Or.String())
}

func TestSet_CloneAndReset(t *testing.T) {
	s := NewSet()
	s.InsertInclusion("b")
	s.InsertInclusion("a")
	s.InsertExclusion("c")
	s.SetInclusionMode(And)

	c := s.Clone()
	s.Reset()

	assert.True(t, s.Empty())
	assert.Equal(t, []string{"a", "b"}, c.Inclusions())
	assert.Equal(t, []string{"c"}, c.Exclusions())
	assert.Equal(t, And, c.InclusionMode())
	assert.Equal(t, []string{"a", "b", "c"}, c.All())
}

func TestStack_Passes(t *testing.T) {
	base := NewSet()
	base.InsertInclusion("solid")
	local := NewSet()
	local.InsertInclusion("thermal")

	var st Stack
	st.Append(Or, base)
	st.Append(Or, NewSet())
	st.Append(Or, local)
	require.Equal(t, 2, st.Len())
	assert.True(t, st.Passes(Active("thermal")))
	assert.Equal(t, []string{"solid", "thermal"}, st.Categories())

	var and Stack
	and.AppendStack(Or, st)
	and.Append(And, local)
	assert.False(t, and.Passes(Active("solid")))
	assert.True(t, and.Passes(Active("solid", "thermal")))

	assert.True(t, Stack{}.Passes(Active()))
}

func TestTags(t *testing.T) {
	var ts Tags
	assert.True(t, ts.Add(NewTag("color", "red", "blue")))
	assert.False(t, ts.Add(NewTag("color")))
	assert.False(t, ts.Add(NewTag("")))
	assert.True(t, ts.Add(NewTag("alpha")))

	tag, ok := ts.Find("color")
	require.True(t, ok)
	assert.Equal(t, []string{"blue", "red"}, tag.Values())
	assert.True(t, tag.Has("red"))

	all := ts.All()
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Name)
	assert.True(t, ts.Remove("alpha"))
	assert.False(t, ts.Remove("alpha"))
	assert.Equal(t, 1, ts.Len())
}
