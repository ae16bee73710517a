package store

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory rule store.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	rules  map[string]storedRule
	seq    int
	closed bool
}

// storedRule keeps insertion order so List is stable for equal timestamps.
type storedRule struct {
	rule     Rule
	sequence int
}

// NewMemoryStore creates a new in-memory rule store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rules: make(map[string]storedRule)}
}

// Save implements Store.
func (m *MemoryStore) Save(r Rule) error {
	if r.ID == "" {
		return ErrInvalidRule
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	// Copy the tree to avoid retaining the caller's slice
	r.Tree = append([]byte(nil), r.Tree...)

	seq := m.seq + 1
	if prev, ok := m.rules[r.ID]; ok {
		seq = prev.sequence
		r.CreatedAt = prev.rule.CreatedAt
	} else {
		m.seq = seq
	}
	m.rules[r.ID] = storedRule{rule: r, sequence: seq}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(id string) (Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Rule{}, ErrStoreClosed
	}

	stored, ok := m.rules[id]
	if !ok {
		return Rule{}, ErrNotFound
	}

	r := stored.rule
	r.Tree = append([]byte(nil), r.Tree...)
	return r, nil
}

// List implements Store.
func (m *MemoryStore) List() ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	stored := make([]storedRule, 0, len(m.rules))
	for _, s := range m.rules {
		stored = append(stored, s)
	}
	sort.Slice(stored, func(i, j int) bool {
		a, b := stored[i], stored[j]
		if !a.rule.CreatedAt.Equal(b.rule.CreatedAt) {
			return a.rule.CreatedAt.Before(b.rule.CreatedAt)
		}
		return a.sequence < b.sequence
	})

	infos := make([]Info, len(stored))
	for i, s := range stored {
		infos[i] = infoOf(s.rule)
	}
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if _, ok := m.rules[id]; !ok {
		return ErrNotFound
	}
	delete(m.rules, id)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.rules = nil
	return nil
}

// Len returns the number of stored rules.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rules)
}
