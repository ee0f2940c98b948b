package nfasim

import (
	"errors"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTrace [][]string
		accepted  bool
	}{
		{
			name:      "accepted",
			input:     "01",
			wantTrace: [][]string{{"A"}, {"A", "B"}, {"C"}},
			accepted:  true,
		},
		{
			name:      "missing transition from B",
			input:     "00",
			wantTrace: [][]string{{"A"}, {"A", "B"}, {"A", "B"}},
			accepted:  false,
		},
		{
			name:      "empty input",
			input:     "",
			wantTrace: [][]string{{"A"}},
			accepted:  false,
		},
		{
			name:      "dead end stays empty",
			input:     "1100",
			wantTrace: [][]string{{"A"}, {}, {}, {}, {}},
			accepted:  false,
		},
		{
			name:      "symbol outside alphabet",
			input:     "0x",
			wantTrace: [][]string{{"A"}, {"A", "B"}, {}},
			accepted:  false,
		},
	}

	a := exampleAutomaton()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(a, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.input, res.Input)
			assert.Equal(t, tt.wantTrace, res.Trace)
			assert.Equalf(t, tt.accepted, res.Accepted, "Run(%q)", tt.input)
		})
	}
}

func TestRun_InvalidAutomaton(t *testing.T) {
	b := NewBuilder()
	b.AddTransition("A", '0', "A")

	_, err := Run(b.Finish(), "0")
	assert.True(t, errors.Is(err, ErrInvalidAutomaton))

	_, err = NewSimulator(nil)
	assert.ErrorIs(t, err, ErrInvalidAutomaton)
}

func TestRun_EmptyInputAcceptance(t *testing.T) {
	res, err := Run(defaultAutomata.MakeEmptyString(), "")
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	res, err = Run(defaultAutomata.MakeEmpty(), "")
	require.NoError(t, err)
	assert.False(t, res.Accepted)
}

func TestRun_DuplicateTransitions(t *testing.T) {
	b := NewBuilder()
	b.SetStart("A")
	b.SetAccept("B", true)
	b.AddTransition("A", 'a', "B")
	b.AddTransition("A", 'a', "C")
	a := b.Finish()

	res, err := Run(a, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, res.Final())
	assert.False(t, res.Accepted)

	res, err = Run(a, "a", WithUnionDuplicates())
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, res.Final())
	assert.True(t, res.Accepted)
}

// checkTraceProperties verifies the structural invariants every run must satisfy.
func checkTraceProperties(t *testing.T, sim *Simulator, input string, res *Result) {
	t.Helper()
	a := sim.Automaton()

	require.Len(t, res.Trace, utf8.RuneCountInString(input)+1)
	require.Len(t, res.Steps, len(res.Trace))
	assert.Equal(t, []string{a.Label(a.Start())}, res.Trace[0])

	i := 0
	for _, symbol := range input {
		want := NewStateSet(0)
		for _, s := range res.Steps[i].GetArray() {
			want.Union(sim.Index().Lookup(s, symbol))
		}
		assert.Truef(t, want.Equals(res.Steps[i+1]), "step %d on %q", i+1, symbol)
		assert.Equal(t, i+1, res.Steps[i+1].Step())
		i++
	}

	final := res.Steps[len(res.Steps)-1]
	accepted := false
	for _, s := range final.GetArray() {
		accepted = accepted || a.IsAccept(s)
	}
	assert.Equal(t, accepted, res.Accepted)
	if final.Size() == 0 {
		assert.False(t, res.Accepted)
	}
}

func TestSimulator_Properties(t *testing.T) {
	automata := map[string]*Automaton{
		"example":   exampleAutomaton(),
		"suffix":    defaultAutomata.MakeSuffix("ab", "abb"),
		"string":    defaultAutomata.MakeString("aba"),
		"anyString": defaultAutomata.MakeAnyString("ab"),
	}
	inputs := []string{"", "a", "b", "01", "abb", "aabb", "ababb", "abba", "aba", "0011", "bbbbabb"}

	for name, a := range automata {
		sim, err := NewSimulator(a)
		require.NoError(t, err)
		for _, input := range inputs {
			t.Run(name+"/"+input, func(t *testing.T) {
				first := sim.Run(input)
				checkTraceProperties(t, sim, input, first)

				second := sim.Run(input)
				assert.Equal(t, first.Trace, second.Trace)
				assert.Equal(t, first.Accepted, second.Accepted)
			})
		}
	}
}

func TestSimulator_Suffix(t *testing.T) {
	sim, err := NewSimulator(defaultAutomata.MakeSuffix("ab", "abb"))
	require.NoError(t, err)

	tests := map[string]bool{
		"abb":     true,
		"aabb":    true,
		"babb":    true,
		"ab":      false,
		"abba":    false,
		"":        false,
		"abbabb":  true,
		"bbbbbbb": false,
	}
	for input, want := range tests {
		assert.Equalf(t, want, sim.Run(input).Accepted, "input %q", input)
	}
}

func TestSimulator_Concurrent(t *testing.T) {
	sim, err := NewSimulator(defaultAutomata.MakeSuffix("ab", "ab"))
	require.NoError(t, err)
	want := sim.Run("abababab")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := sim.Run("abababab")
			assert.Equal(t, want.Trace, got.Trace)
			assert.True(t, got.Accepted)
		}()
	}
	wg.Wait()
}

func TestSimulator_MultiByteInput(t *testing.T) {
	b := NewBuilder()
	b.SetStart("s")
	b.SetAccept("t", true)
	b.AddTransition("s", 'é', "t")
	res, err := Run(b.Finish(), "é")
	require.NoError(t, err)

	assert.Len(t, res.Trace, 2)
	assert.True(t, res.Accepted)
}
