package nfasim

import (
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// successors groups the indexed transitions by source state.
func successors(index *TransitionIndex) map[int][]*bitset.BitSet {
	out := make(map[int][]*bitset.BitSet)
	for key, dests := range index.table.Iterator() {
		k := key.(transitionKey)
		out[k.state] = append(out[k.state], dests)
	}
	return out
}

// LiveStatesFromInitial
// Returns the states reachable from the start state over any input, the start state
// included. Transitions are taken as the index sees them, so overwritten duplicates do
// not count.
func LiveStatesFromInitial(a *Automaton, opts ...IndexOption) *bitset.BitSet {
	live := bitset.New(uint(a.GetNumStates()))
	if !a.HasStart() {
		return live
	}

	next := successors(BuildTransitionIndex(a.Transitions(), opts...))

	workList := []int{a.Start()}
	live.Set(uint(a.Start()))
	for len(workList) > 0 {
		state := workList[0]
		workList = workList[1:]

		for _, dests := range next[state] {
			for d, ok := dests.NextSet(0); ok; d, ok = dests.NextSet(d + 1) {
				if !live.Test(d) {
					live.Set(d)
					workList = append(workList, int(d))
				}
			}
		}
	}
	return live
}

// IsEmptyAutomaton
// Returns true if the given automaton accepts no strings.
func IsEmptyAutomaton(a *Automaton, opts ...IndexOption) bool {
	if !a.HasStart() || a.getAcceptStates().None() {
		return true
	}
	if a.IsAccept(a.Start()) {
		// accepts the empty string
		return false
	}
	return LiveStatesFromInitial(a, opts...).IntersectionCardinality(a.getAcceptStates()) == 0
}

// UnreachableAcceptStates returns the accept states no input can lead to, in id order.
func UnreachableAcceptStates(a *Automaton, opts ...IndexOption) []int {
	live := LiveStatesFromInitial(a, opts...)
	accept := a.getAcceptStates()

	var out []int
	for s, ok := accept.NextSet(0); ok; s, ok = accept.NextSet(s + 1) {
		if !live.Test(s) {
			out = append(out, int(s))
		}
	}
	return out
}

// Alphabet returns the distinct symbols used by the transitions, sorted.
func Alphabet(a *Automaton) []rune {
	seen := make(map[rune]struct{})
	for _, t := range a.Transitions() {
		seen[t.Symbol] = struct{}{}
	}
	out := make([]rune, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}
