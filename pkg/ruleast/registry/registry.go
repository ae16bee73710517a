package registry

import "sync"

// Registry is a thread-safe cache of built values indexed by key.
// It uses sync.RWMutex for read-heavy workloads.
type Registry[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	limit   int
}

// New creates a new empty, unbounded registry.
func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		entries: make(map[K]V),
	}
}

// NewBounded creates a registry holding at most limit entries.
// A limit below one means unbounded.
func NewBounded[K comparable, V any](limit int) *Registry[K, V] {
	r := New[K, V]()
	if limit > 0 {
		r.limit = limit
	}
	return r
}

// store inserts under the write lock, evicting one entry when full.
func (r *Registry[K, V]) store(key K, value V) {
	if _, exists := r.entries[key]; !exists && r.limit > 0 && len(r.entries) >= r.limit {
		for k := range r.entries {
			delete(r.entries, k)
			break
		}
	}
	r.entries[key] = value
}

// Delete removes a key from the registry.
func (r *Registry[K, V]) Delete(key K) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

// Len returns the number of entries in the registry.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// GetOrBuild returns the value for a key, building it with build if it
// doesn't exist. The build function runs at most once per key under
// concurrent access; an error is returned to the caller and nothing is
// stored.
func (r *Registry[K, V]) GetOrBuild(key K, build func() (V, error)) (V, error) {
	// Fast path
	r.mu.RLock()
	v, ok := r.entries[key]
	r.mu.RUnlock()
	if ok {
		return v, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if v, ok := r.entries[key]; ok {
		return v, nil
	}

	v, err := build()
	if err != nil {
		var zero V
		return zero, err
	}
	r.store(key, v)
	return v, nil
}
