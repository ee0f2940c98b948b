package nfasim

import "strconv"

// Automata builds small canonical automata. States are labelled q0, q1, ...
type Automata struct {
}

var defaultAutomata = &Automata{}

func stateLabel(i int) string {
	return "q" + strconv.Itoa(i)
}

// MakeEmpty
// Returns an automaton with the empty language: a single non-accepting start state.
func (*Automata) MakeEmpty() *Automaton {
	b := NewBuilder()
	b.SetStart(stateLabel(0))
	return b.Finish()
}

// MakeEmptyString
// Returns an automaton that accepts only the empty string.
func (*Automata) MakeEmptyString() *Automaton {
	b := NewBuilder()
	b.SetStart(stateLabel(0))
	b.SetAccept(stateLabel(0), true)
	return b.Finish()
}

// MakeString
// Returns an automaton that accepts exactly s.
func (*Automata) MakeString(s string) *Automaton {
	b := NewBuilder()
	b.SetStart(stateLabel(0))
	i := 0
	for _, r := range s {
		b.AddTransition(stateLabel(i), r, stateLabel(i+1))
		i++
	}
	b.SetAccept(stateLabel(i), true)
	return b.Finish()
}

// MakeAnyString
// Returns an automaton that accepts every string over alphabet.
func (*Automata) MakeAnyString(alphabet string) *Automaton {
	b := NewBuilder()
	s := stateLabel(0)
	b.SetStart(s)
	b.SetAccept(s, true)
	for _, r := range alphabet {
		b.AddTransition(s, r, s)
	}
	return b.Finish()
}

// MakeSuffix
// Returns an automaton over alphabet that accepts every string ending in suffix. The start
// state loops on every symbol and also guesses where the suffix begins, so the automaton
// is nondeterministic whenever suffix is not empty.
func (*Automata) MakeSuffix(alphabet, suffix string) *Automaton {
	runes := []rune(suffix)
	if len(runes) == 0 {
		return defaultAutomata.MakeAnyString(alphabet)
	}

	b := NewBuilder()
	b.SetStart(stateLabel(0))
	for _, r := range alphabet {
		if r == runes[0] {
			b.AddTransition(stateLabel(0), r, stateLabel(0), stateLabel(1))
		} else {
			b.AddTransition(stateLabel(0), r, stateLabel(0))
		}
	}
	for i := 1; i < len(runes); i++ {
		b.AddTransition(stateLabel(i), runes[i], stateLabel(i+1))
	}
	b.SetAccept(stateLabel(len(runes)), true)
	return b.Finish()
}
