package nfasim

import "github.com/bits-and-blooms/bitset"

var _ Hashable = transitionKey{}

type transitionKey struct {
	state  int
	symbol rune
}

func (k transitionKey) Hash() uint64 {
	return mixPair(k.state, k.symbol)
}

func (k transitionKey) Equals(other Hashable) bool {
	o, ok := other.(transitionKey)
	return ok && o == k
}

// TransitionIndex maps a (state, symbol) pair to the set of destination states.
// It is read-only once built and may be shared between concurrent runs.
type TransitionIndex struct {
	table *HashMap[*bitset.BitSet]

	// entries that hit an already indexed (state, symbol) pair
	duplicates int
}

type indexOptions struct {
	unionDuplicates bool
}

type IndexOption func(*indexOptions)

// WithUnionDuplicates merges the destinations of repeated (state, symbol) entries
// instead of letting the last entry win.
func WithUnionDuplicates() IndexOption {
	return func(o *indexOptions) {
		o.unionDuplicates = true
	}
}

// BuildTransitionIndex indexes transitions in order. By default a later entry for the
// same (state, symbol) pair replaces the earlier one.
func BuildTransitionIndex(transitions []Transition, opts ...IndexOption) *TransitionIndex {
	options := &indexOptions{}
	for _, opt := range opts {
		opt(options)
	}

	table := NewHashMap[*bitset.BitSet](WithCapacity(len(transitions)))
	duplicates := 0
	for _, t := range transitions {
		key := transitionKey{state: t.Source, symbol: t.Symbol}

		dests := bitset.New(0)
		for _, d := range t.Dests {
			if d >= 0 {
				dests.Set(uint(d))
			}
		}

		if options.unionDuplicates {
			if prev, ok := table.Get(key); ok {
				dests.InPlaceUnion(prev)
			}
		}
		if table.Set(key, dests) {
			duplicates++
		}
	}

	return &TransitionIndex{table: table, duplicates: duplicates}
}

// lookup returns the stored set without copying; nil when absent.
func (x *TransitionIndex) lookup(state int, symbol rune) *bitset.BitSet {
	dests, ok := x.table.Get(transitionKey{state: state, symbol: symbol})
	if !ok {
		return nil
	}
	return dests
}

// Lookup Returns the destinations of (state, symbol), empty if there is no such transition.
// The returned set is a copy.
func (x *TransitionIndex) Lookup(state int, symbol rune) *bitset.BitSet {
	dests := x.lookup(state, symbol)
	if dests == nil {
		return bitset.New(0)
	}
	return dests.Clone()
}

// Duplicates is the number of transitions whose (state, symbol) pair was already
// indexed, and which were therefore overwritten into or merged with an earlier entry.
func (x *TransitionIndex) Duplicates() int {
	return x.duplicates
}

// Size is the number of distinct (state, symbol) keys.
func (x *TransitionIndex) Size() int {
	return x.table.Size()
}
