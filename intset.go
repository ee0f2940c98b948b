package nfasim

// IntSet is a set of state ids that can be used as a HashMap key.
type IntSet interface {
	Hashable

	// GetArray returns the members in ascending order.
	GetArray() []int

	Size() int
}

// hashMembers is the hash shared by every IntSet implementation, so a live
// StateSet and its frozen snapshot always agree.
func hashMembers(values []int) uint64 {
	h := uint64(len(values))
	for _, v := range values {
		h += mix(v)
	}
	return h
}

// isNilSet reports whether h is nil or a typed nil set pointer.
func isNilSet(h Hashable) bool {
	switch v := h.(type) {
	case nil:
		return true
	case *StateSet:
		return v == nil
	case *FrozenIntSet:
		return v == nil
	}
	return false
}

func equalMembers(a, b IntSet) bool {
	if a.Size() != b.Size() || a.Hash() != b.Hash() {
		return false
	}
	x, y := a.GetArray(), b.GetArray()
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
