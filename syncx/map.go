package syncx

import "sync"

// Map is a typed wrapper of [sync.Map].
// Reads never block, which makes it a good fit for caches that are read far more often than they're written.
//
// The zero value is ready to use. A Map must not be copied after first use.
type Map[K comparable, V any] struct {
	m sync.Map
}

// Load returns the value stored for key, if any.
func (m *Map[K, V]) Load(key K) (V, bool) {
	val, ok := m.m.Load(key)
	if !ok {
		var mt V
		return mt, false
	}
	return val.(V), true
}

// LoadOrStore returns the existing value for key if present.
// Otherwise, it stores and returns val. The loaded result is true if the value was already present.
func (m *Map[K, V]) LoadOrStore(key K, val V) (V, bool) {
	actual, loaded := m.m.LoadOrStore(key, val)
	return actual.(V), loaded
}

// Range calls fn for each key and value in the Map until fn returns false.
// See [sync.Map.Range] for consistency guarantees.
func (m *Map[K, V]) Range(fn func(key K, val V) bool) {
	m.m.Range(func(key, val any) bool {
		return fn(key.(K), val.(V))
	})
}

// Keys returns a snapshot of the keys currently in the Map, in no particular order.
func (m *Map[K, V]) Keys() []K {
	var keys []K
	m.Range(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Len counts the entries currently in the Map.
func (m *Map[K, V]) Len() int {
	var n int
	m.Range(func(K, V) bool {
		n++
		return true
	})
	return n
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() {
	m.m.Clear()
}
