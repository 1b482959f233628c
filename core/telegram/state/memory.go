package state

import "sync"

// Memory is a concurrency-safe map from Telegram user ID to a value of type T.
// Values are copied in and out; callers mutate through Update.
type Memory[T any] struct {
	mu      sync.RWMutex
	entries map[int64]T
}

// NewMemory constructs an empty store.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{entries: make(map[int64]T)}
}

// Get returns the value for a user and whether it exists.
func (m *Memory[T]) Get(userID int64) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[userID]
	return v, ok
}

// Set stores the value for a user, replacing any previous one.
func (m *Memory[T]) Set(userID int64, v T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[userID] = v
}

// Update runs fn under the write lock with the current value (zero if absent).
// When fn returns keep=false the entry is removed, otherwise the returned value is stored.
func (m *Memory[T]) Update(userID int64, fn func(cur T, ok bool) (next T, keep bool)) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.entries[userID]
	next, keep := fn(cur, ok)
	if keep {
		m.entries[userID] = next
	} else {
		delete(m.entries, userID)
	}
	return next
}

// Delete removes the value for a user and returns what was stored.
func (m *Memory[T]) Delete(userID int64) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[userID]
	if ok {
		delete(m.entries, userID)
	}
	return v, ok
}

// DeleteFunc removes every entry for which match returns true and reports the removed user IDs.
func (m *Memory[T]) DeleteFunc(match func(userID int64, v T) bool) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []int64
	for id, v := range m.entries {
		if match(id, v) {
			delete(m.entries, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Len returns the number of stored entries.
func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
