package multicast

import (
	"fmt"
	"github.com/saylorsolutions/eventcast/listener"
	"github.com/saylorsolutions/eventcast/structures/set"
	"github.com/saylorsolutions/eventcast/typeinfo"
)

// CacheKey identifies the listeners for one combination of event type and source type.
// CacheKey is comparable, so it's used directly as a map key.
type CacheKey struct {
	EventType  typeinfo.Type
	SourceType typeinfo.Type
}

// Compare orders keys by event type, then source type.
func (k CacheKey) Compare(other CacheKey) int {
	if c := k.EventType.Compare(other.EventType); c != 0 {
		return c
	}
	return k.SourceType.Compare(other.SourceType)
}

func (k CacheKey) String() string {
	return fmt.Sprintf("[event type = %s, source type = %s]", k.EventType, k.SourceType)
}

// retriever holds listener references, either every registered reference or those known to match one [CacheKey].
// Direct listeners are kept free of duplicates with [listener.Same].
type retriever struct {
	listeners   []listener.Listener
	names       set.Ordered[string]
	preFiltered bool
}

func (r *retriever) indexOf(l listener.Listener) int {
	for i, existing := range r.listeners {
		if listener.Same(existing, l) {
			return i
		}
	}
	return -1
}

// add appends l if it's not already present.
func (r *retriever) add(l listener.Listener) bool {
	if r.indexOf(l) >= 0 {
		return false
	}
	r.listeners = append(r.listeners, l)
	return true
}

func (r *retriever) remove(l listener.Listener) bool {
	idx := r.indexOf(l)
	if idx < 0 {
		return false
	}
	r.listeners = append(r.listeners[:idx:idx], r.listeners[idx+1:]...)
	return true
}

func (r *retriever) removeIf(fn func(l listener.Listener) bool) int {
	var (
		kept    []listener.Listener
		removed int
	)
	for _, l := range r.listeners {
		if fn(l) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	r.listeners = kept
	return removed
}

func (r *retriever) clear() {
	r.listeners = nil
	r.names.Clear()
}

func (r *retriever) len() int {
	return len(r.listeners) + r.names.Len()
}

// snapshot copies the references so they can be used without holding a lock.
func (r *retriever) snapshot() ([]listener.Listener, []string) {
	listeners := make([]listener.Listener, len(r.listeners))
	copy(listeners, r.listeners)
	return listeners, r.names.Values()
}
