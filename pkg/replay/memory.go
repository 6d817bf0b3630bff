package replay

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries bounds a MemoryStore created with a non-positive size.
const DefaultMaxEntries = 100000

// MemoryStore keeps nonces in a map guarded by a mutex. Expired entries are
// swept lazily when the map reaches its bound, and by Prune.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]time.Time
	maxEntries int
	now        func() time.Time
}

// NewMemoryStore creates a store holding at most maxEntries nonces.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{
		entries:    make(map[string]time.Time),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Remember implements Store.
func (m *MemoryStore) Remember(_ context.Context, nonce string, expires time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if exp, ok := m.entries[nonce]; ok {
		if now.Before(exp) {
			return false, nil
		}
		delete(m.entries, nonce)
	}

	if len(m.entries) >= m.maxEntries {
		m.sweepLocked(now)
		if len(m.entries) >= m.maxEntries {
			return false, ErrCapacity
		}
	}

	m.entries[nonce] = expires
	return true, nil
}

// Prune implements Pruner.
func (m *MemoryStore) Prune(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(now), nil
}

func (m *MemoryStore) sweepLocked(now time.Time) int {
	removed := 0
	for nonce, exp := range m.entries {
		if !now.Before(exp) {
			delete(m.entries, nonce)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored nonces, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]time.Time)
	return nil
}
