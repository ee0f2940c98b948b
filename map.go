package nfasim

import (
	"iter"
	"sync"
)

// Hashable is implemented by HashMap keys.
type Hashable interface {
	Hash() uint64
	Equals(other Hashable) bool
}

// HashMap is a chained hash table keyed by Hashable values. Reads take a shared
// lock, so a fully built map can be queried from many goroutines.
type HashMap[T any] struct {
	buckets    []*Entry[T]
	size       int
	mask       uint64
	mutex      sync.RWMutex
	emptyValue T
	loadFactor float64
}

// Entry is one node of a bucket chain.
type Entry[T any] struct {
	key   Hashable
	value T
	next  *Entry[T]
}

type optionsHashMap struct {
	capacity   int
	loadFactor float64 // resize threshold, 0.75 by default
}

func newOptionsHashMap(opts ...OptionsHashMap) *optionsHashMap {
	options := &optionsHashMap{
		capacity:   1,
		loadFactor: 0.75,
	}

	for _, opt := range opts {
		opt(options)
	}

	realCap := 1
	for realCap < options.capacity {
		realCap <<= 1
	}
	options.capacity = realCap

	return options
}

type OptionsHashMap func(hashMap *optionsHashMap)

// WithCapacity sets the initial bucket count, rounded up to a power of two.
func WithCapacity(capacity int) OptionsHashMap {
	return func(hashMap *optionsHashMap) {
		hashMap.capacity = capacity
	}
}

func WithLoadFactor(loadFactor float64) OptionsHashMap {
	return func(hashMap *optionsHashMap) {
		if loadFactor > 0 {
			hashMap.loadFactor = loadFactor
		}
	}
}

func NewHashMap[T any](options ...OptionsHashMap) *HashMap[T] {
	opt := newOptionsHashMap(options...)

	return &HashMap[T]{
		buckets:    make([]*Entry[T], opt.capacity),
		mask:       uint64(opt.capacity - 1),
		loadFactor: opt.loadFactor,
	}
}

// Set inserts or replaces the value stored under key. It reports whether an
// existing entry was replaced.
func (m *HashMap[T]) Set(key Hashable, value T) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	index := key.Hash() & m.mask

	for e := m.buckets[index]; e != nil; e = e.next {
		if e.key.Equals(key) {
			e.value = value
			return true
		}
	}

	// prepend to the bucket chain
	m.buckets[index] = &Entry[T]{
		key:   key,
		value: value,
		next:  m.buckets[index],
	}
	m.size++

	if float64(m.size)/float64(len(m.buckets)) > m.loadFactor {
		m.resize()
	}
	return false
}

// Get returns the value stored under key.
func (m *HashMap[T]) Get(key Hashable) (T, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	index := key.Hash() & m.mask

	for e := m.buckets[index]; e != nil; e = e.next {
		if e.key.Equals(key) {
			return e.value, true
		}
	}
	return m.emptyValue, false
}

// Delete removes key if present.
func (m *HashMap[T]) Delete(key Hashable) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	index := key.Hash() & m.mask

	var prev *Entry[T]
	for e := m.buckets[index]; e != nil; prev, e = e, e.next {
		if e.key.Equals(key) {
			if prev == nil {
				m.buckets[index] = e.next
			} else {
				prev.next = e.next
			}
			m.size--
			return
		}
	}
}

func (m *HashMap[T]) resize() {
	newCap := len(m.buckets) << 1
	newBuckets := make([]*Entry[T], newCap)
	newMask := uint64(newCap - 1)

	for _, head := range m.buckets {
		for e := head; e != nil; e = e.next {
			newIndex := e.key.Hash() & newMask
			newBuckets[newIndex] = &Entry[T]{
				key:   e.key,
				value: e.value,
				next:  newBuckets[newIndex],
			}
		}
	}

	m.buckets = newBuckets
	m.mask = newMask
}

// Size returns the number of entries.
func (m *HashMap[T]) Size() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.size
}

// Iterator walks all entries in bucket order. The map must not be modified
// while iterating.
func (m *HashMap[T]) Iterator() iter.Seq2[Hashable, T] {
	return func(yield func(Hashable, T) bool) {
		m.mutex.RLock()
		defer m.mutex.RUnlock()

		for _, bucket := range m.buckets {
			for e := bucket; e != nil; e = e.next {
				if !yield(e.key, e.value) {
					return
				}
			}
		}
	}
}
