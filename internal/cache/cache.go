// Package cache stores simulation records keyed by automaton and input. Runs are
// pure, so a record computed once can be served again for the same request.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/geange/nfasim/internal/record"
)

// Store is a best-effort record cache.
type Store interface {
	// Get returns the cached record, or ok=false when there is none.
	Get(ctx context.Context, key string) (r *record.Record, ok bool, err error)
	Put(ctx context.Context, key string, r *record.Record) error
}

// Key derives a cache key from the normalized description, the input and the
// duplicate-handling mode.
func Key(description any, input string, unionDuplicates bool) (string, error) {
	doc, err := json.Marshal(description)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write(doc)
	h.Write([]byte{0})
	h.Write([]byte(input))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(unionDuplicates)))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Memory is an unbounded in-process Store.
type Memory struct {
	mu    sync.RWMutex
	items map[string]*record.Record
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]*record.Record)}
}

func (m *Memory) Get(_ context.Context, key string) (*record.Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	clone := *r
	return &clone, true, nil
}

func (m *Memory) Put(_ context.Context, key string, r *record.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *r
	m.items[key] = &clone
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
