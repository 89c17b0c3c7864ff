package cachex

import (
	"strconv"
	"sync"
	"time"
)

// memoryStore is the in-process fallback used once the Redis backend is
// marked unavailable. Expiry is checked lazily on read; stale entries are
// only dropped when touched again.
type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func newMemoryStore(now func() time.Time) *memoryStore {
	if now == nil {
		now = time.Now
	}
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

func (m *memoryStore) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return "", false
	}
	return e.value, true
}

func (m *memoryStore) set(key, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
}

func (m *memoryStore) delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *memoryStore) increment(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if ok && !e.expiresAt.IsZero() && m.now().After(e.expiresAt) {
		ok = false
	}

	var n int64
	if ok {
		n, _ = strconv.ParseInt(e.value, 10, 64)
	}
	n++

	expiresAt := time.Time{}
	if ok {
		expiresAt = e.expiresAt
	}
	m.entries[key] = memoryEntry{value: strconv.FormatInt(n, 10), expiresAt: expiresAt}
	return n
}

func (m *memoryStore) expire(key string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return
	}
	e.expiresAt = m.now().Add(ttl)
	m.entries[key] = e
}
