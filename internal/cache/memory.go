package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// Memory is an in-process TTL cache. When MaxEntries is reached the entry
// closest to expiry is evicted.
type Memory struct {
	mu         sync.Mutex
	data       map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

func NewMemory(maxEntries int) *Memory {
	return &Memory{
		data:       make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	if !ent.expires.IsZero() && !m.now().Before(ent.expires) {
		delete(m.data, key)
		return nil, false, nil
	}
	return ent.value, true, nil
}

// Set stores value. ttl <= 0 means no expiry.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = m.now().Add(ttl)
	}
	if _, exists := m.data[key]; !exists && m.maxEntries > 0 && len(m.data) >= m.maxEntries {
		m.evictLocked()
	}
	m.data[key] = memoryEntry{value: value, expires: expires}
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *Memory) evictLocked() {
	var victim string
	var victimExp time.Time
	first := true
	for k, e := range m.data {
		// Entries without expiry are evicted last.
		if first || (!e.expires.IsZero() && (victimExp.IsZero() || e.expires.Before(victimExp))) {
			victim, victimExp, first = k, e.expires, false
		}
	}
	if !first {
		delete(m.data, victim)
	}
}
