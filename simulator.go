package nfasim

import (
	"errors"
	"fmt"
)

// ErrInvalidAutomaton is returned when an automaton cannot be run, which only happens
// when it has no start state.
var ErrInvalidAutomaton = errors.New("invalid automaton")

// Result is the outcome of one run.
type Result struct {
	Input string

	// Trace holds one entry per input position, 0 through len(input) in runes. Labels
	// inside an entry are ordered by state id.
	Trace [][]string

	// Steps are the same snapshots as Trace, as state ids.
	Steps []*FrozenIntSet

	Accepted bool
}

// Final returns the state-set after the whole input was consumed.
func (r *Result) Final() []string {
	return r.Trace[len(r.Trace)-1]
}

// Simulator runs one automaton over any number of inputs. The transition index is
// built once; Run may be called from several goroutines.
type Simulator struct {
	automaton *Automaton
	index     *TransitionIndex
}

func NewSimulator(a *Automaton, opts ...IndexOption) (*Simulator, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: nil automaton", ErrInvalidAutomaton)
	}
	if !a.HasStart() {
		return nil, fmt.Errorf("%w: no start state", ErrInvalidAutomaton)
	}
	return &Simulator{
		automaton: a,
		index:     BuildTransitionIndex(a.Transitions(), opts...),
	}, nil
}

// Automaton returns the automaton this simulator runs.
func (s *Simulator) Automaton() *Automaton {
	return s.automaton
}

// Index returns the transition index built for the automaton.
func (s *Simulator) Index() *TransitionIndex {
	return s.index
}

// Run consumes input one rune at a time and records the active states after every step.
func (s *Simulator) Run(input string) *Result {
	a := s.automaton
	numStates := a.GetNumStates()

	current := NewStateSet(numStates)
	next := NewStateSet(numStates)
	current.Add(a.Start())

	result := &Result{Input: input}
	record := func(step int) {
		frozen := current.Freeze(step)
		result.Steps = append(result.Steps, frozen)
		result.Trace = append(result.Trace, a.Labels(frozen.GetArray()))
	}
	record(0)

	step := 0
	for _, symbol := range input {
		step++
		// the empty set has no successors
		if current.IsEmpty() {
			record(step)
			continue
		}

		next.Clear()
		for _, state := range current.GetArray() {
			next.Union(s.index.lookup(state, symbol))
		}
		current, next = next, current
		record(step)
	}

	result.Accepted = current.Intersects(a.getAcceptStates())
	return result
}

// Run Simulates a on input with a freshly built transition index.
func Run(a *Automaton, input string, opts ...IndexOption) (*Result, error) {
	sim, err := NewSimulator(a, opts...)
	if err != nil {
		return nil, err
	}
	return sim.Run(input), nil
}
