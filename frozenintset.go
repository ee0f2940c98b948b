package nfasim

var _ IntSet = &FrozenIntSet{}

// FrozenIntSet is an immutable snapshot of a StateSet. step is the number of
// input symbols consumed when the snapshot was taken.
type FrozenIntSet struct {
	values []int
	step   int
}

// NewFrozenIntSet takes ownership of values, which must be sorted ascending.
func NewFrozenIntSet(values []int, step int) *FrozenIntSet {
	return &FrozenIntSet{values: values, step: step}
}

// Hash is computed on demand; runs never hash their snapshots.
func (f *FrozenIntSet) Hash() uint64 {
	return hashMembers(f.values)
}

func (f *FrozenIntSet) Equals(other Hashable) bool {
	if f == nil {
		_, isSet := other.(IntSet)
		return isSet && isNilSet(other)
	}

	is, ok := other.(IntSet)
	if !ok || isNilSet(other) {
		return false
	}
	return equalMembers(f, is)
}

func (f *FrozenIntSet) GetArray() []int {
	return f.values
}

func (f *FrozenIntSet) Size() int {
	return len(f.values)
}

// Step is the input position this snapshot belongs to.
func (f *FrozenIntSet) Step() int {
	return f.step
}

func (f *FrozenIntSet) Contains(state int) bool {
	for _, v := range f.values {
		if v == state {
			return true
		}
		if v > state {
			return false
		}
	}
	return false
}
