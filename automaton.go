package nfasim

import (
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// Automaton Represents a nondeterministic finite automaton. States are opaque string labels
// interned to dense integer ids in the order they are first seen; the ids index the accept
// bitset and every state-set built during a run. An Automaton is immutable once returned
// by Builder.Finish and may be shared between goroutines.
type Automaton struct {
	// State labels indexed by id.
	labels []string

	ids map[string]int

	// Id of the initial state, or -1 if none was declared.
	start int

	isAccept *bitset.BitSet

	// Transitions in the order they were added. Several entries may share the same
	// (source, symbol) pair; the index decides how they combine.
	transitions []Transition
}

// Transition Maps a source state and one input symbol to a set of destination states.
type Transition struct {
	Source int
	Symbol rune
	Dests  []int
}

// HasStart reports whether an initial state was declared.
func (a *Automaton) HasStart() bool {
	return a.start >= 0
}

// Start Returns the id of the initial state, -1 if unset.
func (a *Automaton) Start() int {
	return a.start
}

// IsAccept Returns true if this state is an accept state.
func (a *Automaton) IsAccept(state int) bool {
	return state >= 0 && a.isAccept.Test(uint(state))
}

// Returns accept states. If the bit is set then that state is an accept state.
func (a *Automaton) getAcceptStates() *bitset.BitSet {
	return a.isAccept
}

// AcceptStates returns a copy of the accept set.
func (a *Automaton) AcceptStates() *bitset.BitSet {
	return a.isAccept.Clone()
}

// GetNumStates How many distinct states this automaton references.
func (a *Automaton) GetNumStates() int {
	return len(a.labels)
}

// GetNumTransitions How many transition triples this automaton has, duplicates included.
func (a *Automaton) GetNumTransitions() int {
	return len(a.transitions)
}

// Transitions returns the transition list in source order. Callers must not modify it.
func (a *Automaton) Transitions() []Transition {
	return a.transitions
}

// Label returns the label of a state id, or "" if the id is unknown.
func (a *Automaton) Label(state int) string {
	if state < 0 || state >= len(a.labels) {
		return ""
	}
	return a.labels[state]
}

// Labels maps state ids to their labels, keeping the order of ids.
func (a *Automaton) Labels(states []int) []string {
	out := make([]string, 0, len(states))
	for _, s := range states {
		out = append(out, a.Label(s))
	}
	return out
}

// StateID looks up the id of a label.
func (a *Automaton) StateID(label string) (int, bool) {
	id, ok := a.ids[label]
	return id, ok
}

// Builder Accumulates states and transitions and produces an immutable Automaton.
// A Builder is not safe for concurrent use.
type Builder struct {
	labels      []string
	ids         map[string]int
	start       int
	isAccept    *bitset.BitSet
	transitions []Transition
}

func NewBuilder() *Builder {
	return NewBuilderV1(2, 2)
}

// NewBuilderV1 presizes the builder for the expected number of states and transitions.
func NewBuilderV1(numStates, numTransitions int) *Builder {
	return &Builder{
		labels:      make([]string, 0, numStates),
		ids:         make(map[string]int, numStates),
		start:       -1,
		isAccept:    bitset.New(uint(numStates)),
		transitions: make([]Transition, 0, numTransitions),
	}
}

// CreateState Interns a state label and returns its id. Repeated calls with the same
// label return the same id.
func (b *Builder) CreateState(label string) int {
	if id, ok := b.ids[label]; ok {
		return id
	}
	id := len(b.labels)
	b.labels = append(b.labels, label)
	b.ids[label] = id
	return id
}

// SetStart Declares the initial state. Any label is valid, the empty string included.
func (b *Builder) SetStart(label string) {
	b.start = b.CreateState(label)
}

// ClearStart removes the initial state declaration.
func (b *Builder) ClearStart() {
	b.start = -1
}

// SetAccept Set or clear this state as an accept state.
func (b *Builder) SetAccept(label string, accept bool) {
	id := b.CreateState(label)
	b.isAccept.SetTo(uint(id), accept)
}

// AddTransition Add a transition from source on symbol to every state in dests. An empty
// dests list is a valid "no move" entry: it still overrides earlier entries for the pair.
func (b *Builder) AddTransition(source string, symbol rune, dests ...string) {
	t := Transition{
		Source: b.CreateState(source),
		Symbol: symbol,
		Dests:  make([]int, 0, len(dests)),
	}
	for _, d := range dests {
		t.Dests = append(t.Dests, b.CreateState(d))
	}
	b.transitions = append(b.transitions, t)
}

// GetNumStates How many states have been interned so far.
func (b *Builder) GetNumStates() int {
	return len(b.labels)
}

// Finish Returns an Automaton holding a copy of everything added so far. The builder
// stays usable.
func (b *Builder) Finish() *Automaton {
	a := &Automaton{
		labels:      slices.Clone(b.labels),
		ids:         make(map[string]int, len(b.ids)),
		start:       b.start,
		isAccept:    b.isAccept.Clone(),
		transitions: make([]Transition, len(b.transitions)),
	}
	for k, v := range b.ids {
		a.ids[k] = v
	}
	for i, t := range b.transitions {
		a.transitions[i] = Transition{Source: t.Source, Symbol: t.Symbol, Dests: slices.Clone(t.Dests)}
	}
	return a
}
