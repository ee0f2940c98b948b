package nfasim

const (
	// Golden ratio bit mixers.
	PHI_C32 = uint32(0x9e3779b9)
	PHI_C64 = uint64(0x9e3779b97f4a7c15)
)

func mix(key int) uint64 {
	return uint64(mix32(key))
}

// 32-bit finalization step of MurmurHash3.
func mix32(v int) uint32 {
	k := uint32(v)
	k = (k ^ (k >> 16)) * 0x85ebca6b
	k = (k ^ (k >> 13)) * 0xc2b2ae35
	return k ^ (k >> 16)
}

// mixPair combines a state id and a symbol into one hash.
func mixPair(state int, symbol rune) uint64 {
	h := uint64(mix32(state)) * PHI_C64
	return h ^ uint64(mix32(int(symbol)))
}
