package nfasim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutomata(t *testing.T) {
	run := func(t *testing.T, a *Automaton, input string) bool {
		t.Helper()
		res, err := Run(a, input)
		require.NoError(t, err)
		return res.Accepted
	}

	t.Run("MakeEmpty", func(t *testing.T) {
		a := defaultAutomata.MakeEmpty()
		assert.Equal(t, 1, a.GetNumStates())
		assert.False(t, run(t, a, ""))
		assert.False(t, run(t, a, "a"))
	})

	t.Run("MakeEmptyString", func(t *testing.T) {
		a := defaultAutomata.MakeEmptyString()
		assert.True(t, run(t, a, ""))
		assert.False(t, run(t, a, "a"))
	})

	t.Run("MakeString", func(t *testing.T) {
		a := defaultAutomata.MakeString("foo")
		assert.Equal(t, 4, a.GetNumStates())
		assert.True(t, run(t, a, "foo"))
		assert.False(t, run(t, a, "fo"))
		assert.False(t, run(t, a, "fooo"))
	})

	t.Run("MakeAnyString", func(t *testing.T) {
		a := defaultAutomata.MakeAnyString("xy")
		assert.True(t, run(t, a, ""))
		assert.True(t, run(t, a, "xyyx"))
		assert.False(t, run(t, a, "xz"))
	})

	t.Run("MakeSuffixEmpty", func(t *testing.T) {
		a := defaultAutomata.MakeSuffix("ab", "")
		assert.True(t, run(t, a, "abab"))
	})

	t.Run("MakeSuffixIsNondeterministic", func(t *testing.T) {
		a := defaultAutomata.MakeSuffix("01", "10")
		res, err := Run(a, "1")
		require.NoError(t, err)
		assert.Equal(t, []string{"q0", "q1"}, res.Final())
		assert.True(t, run(t, a, "0110"))
		assert.False(t, run(t, a, "0101"))
	})
}
