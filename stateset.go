package nfasim

import "github.com/bits-and-blooms/bitset"

var _ IntSet = &StateSet{}

// StateSet is the mutable set of active states during a run. Members are state
// ids; the set grows as needed so ids beyond the initial capacity are fine.
type StateSet struct {
	bits        *bitset.BitSet
	hashUpdated bool
	hashCode    uint64
}

func NewStateSet(numStates int) *StateSet {
	return &StateSet{
		bits: bitset.New(uint(max(numStates, 0))),
	}
}

func (s *StateSet) keyChanged() {
	s.hashUpdated = false
	s.hashCode = 0
}

// Add inserts state into the set.
func (s *StateSet) Add(state int) {
	if state < 0 {
		return
	}
	if !s.bits.Test(uint(state)) {
		s.bits.Set(uint(state))
		s.keyChanged()
	}
}

func (s *StateSet) Contains(state int) bool {
	return state >= 0 && s.bits.Test(uint(state))
}

// Union adds every member of other. A nil set is the empty set.
func (s *StateSet) Union(other *bitset.BitSet) {
	if other == nil || other.None() {
		return
	}
	s.bits.InPlaceUnion(other)
	s.keyChanged()
}

// Intersects reports whether the two sets share at least one member.
func (s *StateSet) Intersects(other *bitset.BitSet) bool {
	if other == nil {
		return false
	}
	return s.bits.IntersectionCardinality(other) > 0
}

func (s *StateSet) IsEmpty() bool {
	return s.bits.None()
}

// Clear removes all members and keeps the allocated capacity.
func (s *StateSet) Clear() {
	s.bits.ClearAll()
	s.keyChanged()
}

func (s *StateSet) Size() int {
	return int(s.bits.Count())
}

// GetArray returns the members in ascending id order.
func (s *StateSet) GetArray() []int {
	values := make([]int, 0, s.bits.Count())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		values = append(values, int(i))
	}
	return values
}

func (s *StateSet) Hash() uint64 {
	if s.hashUpdated {
		return s.hashCode
	}
	s.hashCode = hashMembers(s.GetArray())
	s.hashUpdated = true
	return s.hashCode
}

func (s *StateSet) Equals(other Hashable) bool {
	is, ok := other.(IntSet)
	if !ok || isNilSet(other) {
		return false
	}
	return equalMembers(s, is)
}

// Freeze captures the current members as an immutable snapshot tagged with the
// step that produced it.
func (s *StateSet) Freeze(step int) *FrozenIntSet {
	return NewFrozenIntSet(s.GetArray(), step)
}
