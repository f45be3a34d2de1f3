package multicast

import (
	"errors"
	"fmt"
	"github.com/saylorsolutions/eventcast/listener"
	"github.com/saylorsolutions/eventcast/order"
	"github.com/saylorsolutions/eventcast/registry"
	"github.com/saylorsolutions/eventcast/syncx"
	"github.com/saylorsolutions/eventcast/typeinfo"
	"log/slog"
	"slices"
	"sync"
)

var (
	ErrMissingRegistry = errors.New("no registry configured to resolve listeners by name")
	ErrInvalidOption   = errors.New("invalid multicaster option")
)

// Option configures a [Multicaster] when it's created with [New].
type Option func(m *Multicaster) error

// WithRegistry sets the [registry.Registry] used to resolve listeners registered by name.
func WithRegistry(reg registry.Registry) Option {
	return func(m *Multicaster) error {
		if reg == nil {
			return fmt.Errorf("%w: nil registry", ErrInvalidOption)
		}
		m.registry = reg
		return nil
	}
}

// WithComparator sets the delivery order of listeners, which is [order.ByPriority] by default.
func WithComparator(compare order.Comparator) Option {
	return func(m *Multicaster) error {
		if compare == nil {
			return fmt.Errorf("%w: nil comparator", ErrInvalidOption)
		}
		m.compare = compare
		return nil
	}
}

// WithLogger sets the logger used to report cache population and skipped listeners. This is [slog.Default] by default.
func WithLogger(log *slog.Logger) Option {
	return func(m *Multicaster) error {
		if log == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidOption)
		}
		m.log = log
		return nil
	}
}

// WithCaching enables or disables caching of matched listeners. Caching is enabled by default.
func WithCaching(enabled bool) Option {
	return func(m *Multicaster) error {
		m.caching = enabled
		return nil
	}
}

// WithCacheSafety sets a function that decides whether the listeners matched for an event type and source type may be cached.
// Every combination is cached by default.
func WithCacheSafety(safe func(eventType, sourceType typeinfo.Type) bool) Option {
	return func(m *Multicaster) error {
		if safe == nil {
			return fmt.Errorf("%w: nil cache safety function", ErrInvalidOption)
		}
		m.cacheSafe = safe
		return nil
	}
}

func alwaysSafe(typeinfo.Type, typeinfo.Type) bool {
	return true
}

// Multicaster keeps track of listeners and decides which of them should receive an event, and in what order.
// Listeners may be registered directly, or by a name that's resolved with a [registry.Registry] when needed.
//
// The listeners matching each combination of event type and source type are cached, and any change to the registered
// listeners invalidates the whole cache. Cached lookups don't need a lock.
//
// Listeners are matched and resolved from the registry without holding a lock, so a listener factory may register
// other listeners. Results built while the registered listeners changed are returned, but not cached.
//
// A Multicaster is safe for concurrent use.
type Multicaster struct {
	mux        sync.Mutex
	generation uint64
	defaults   retriever
	cache      syncx.Map[CacheKey, *retriever]
	registry   registry.Registry
	compare    order.Comparator
	log        *slog.Logger
	caching    bool
	cacheSafe  func(eventType, sourceType typeinfo.Type) bool
}

// New creates a [Multicaster] with the given options.
func New(opts ...Option) (*Multicaster, error) {
	m := &Multicaster{
		compare:   order.ByPriority,
		log:       slog.Default(),
		caching:   true,
		cacheSafe: alwaysSafe,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Register adds a listener.
// If l is a proxy for listeners that are already registered, then those listeners are replaced by l so an event isn't
// delivered to the same listener twice. Registering a listener that's already present has no effect.
//
// Register panics if l is nil.
func (m *Multicaster) Register(l listener.Listener) {
	if l == nil {
		panic("nil listener")
	}
	syncx.LockFunc(&m.mux, func() {
		for _, target := range listener.Targets(l) {
			m.defaults.remove(target)
		}
		m.defaults.add(l)
		m.invalidate()
	})
}

// RegisterByName adds a reference to a listener that will be resolved from the registry when it's needed.
// The name doesn't need to resolve yet.
//
// RegisterByName panics if name is empty.
func (m *Multicaster) RegisterByName(name string) {
	if len(name) == 0 {
		panic("empty listener name")
	}
	syncx.LockFunc(&m.mux, func() {
		m.defaults.names.Add(name)
		m.invalidate()
	})
}

// Unregister removes a listener, and reports whether it was registered.
func (m *Multicaster) Unregister(l listener.Listener) bool {
	return syncx.LockFuncT(&m.mux, func() bool {
		m.invalidate()
		return m.defaults.remove(l)
	})
}

// UnregisterByName removes a listener reference, and reports whether it was registered.
func (m *Multicaster) UnregisterByName(name string) bool {
	return syncx.LockFuncT(&m.mux, func() bool {
		m.invalidate()
		return m.defaults.names.Remove(name)
	})
}

// UnregisterIf removes every directly registered listener for which fn returns true, and returns how many were removed.
func (m *Multicaster) UnregisterIf(fn func(l listener.Listener) bool) int {
	return syncx.LockFuncT(&m.mux, func() int {
		m.invalidate()
		return m.defaults.removeIf(fn)
	})
}

// UnregisterNamesIf removes every listener reference for which fn returns true, and returns how many were removed.
func (m *Multicaster) UnregisterNamesIf(fn func(name string) bool) int {
	return syncx.LockFuncT(&m.mux, func() int {
		m.invalidate()
		var removed int
		for _, name := range m.defaults.names.Values() {
			if fn(name) && m.defaults.names.Remove(name) {
				removed++
			}
		}
		return removed
	})
}

// Clear removes all listeners and listener references.
func (m *Multicaster) Clear() {
	syncx.LockFunc(&m.mux, func() {
		m.defaults.clear()
		m.invalidate()
	})
}

// Close releases all listeners. The Multicaster may still be used afterward.
func (m *Multicaster) Close() {
	m.Clear()
	m.log.Debug("Multicaster closed")
}

// Len returns the number of registered listeners and listener references.
func (m *Multicaster) Len() int {
	return syncx.LockFuncT(&m.mux, m.defaults.len)
}

// CacheKeys returns the keys currently cached, in order.
func (m *Multicaster) CacheKeys() []CacheKey {
	keys := m.cache.Keys()
	slices.SortFunc(keys, CacheKey.Compare)
	return keys
}

// Listeners returns every registered listener in delivery order, including listeners registered by name.
// References that no longer resolve are skipped.
func (m *Multicaster) Listeners() ([]listener.Listener, error) {
	snapshot := syncx.LockFuncT(&m.mux, func() *retriever {
		listeners, names := m.defaults.snapshot()
		r := &retriever{listeners: listeners}
		for _, name := range names {
			r.names.Add(name)
		}
		return r
	})
	return m.resolve(snapshot)
}

// ListenersFor returns the listeners that should receive evt, in delivery order.
// If eventType is [typeinfo.None], then it's derived from evt with [listener.TypeOf].
// The source type is always derived from the event's source.
func (m *Multicaster) ListenersFor(evt listener.Event, eventType typeinfo.Type) ([]listener.Listener, error) {
	if eventType.IsNone() {
		eventType = listener.TypeOf(evt)
	}
	key := CacheKey{
		EventType:  eventType,
		SourceType: listener.SourceTypeOf(evt),
	}
	if cached, ok := m.cache.Load(key); ok {
		return m.resolve(cached)
	}
	listeners, names, generation := m.snapshot()
	r, matched, err := m.retrieve(key, listeners, names)
	if err != nil {
		return nil, err
	}
	if m.caching && m.cacheSafe(key.EventType, key.SourceType) {
		m.store(key, r, generation)
	}
	return matched, nil
}

func (m *Multicaster) snapshot() ([]listener.Listener, []string, uint64) {
	m.mux.Lock()
	defer m.mux.Unlock()
	listeners, names := m.defaults.snapshot()
	return listeners, names, m.generation
}

// store caches r for key, unless the registered listeners changed since generation or key was already cached.
func (m *Multicaster) store(key CacheKey, r *retriever, generation uint64) {
	syncx.LockFunc(&m.mux, func() {
		if m.generation != generation {
			return
		}
		if _, loaded := m.cache.LoadOrStore(key, r); !loaded {
			m.log.Debug("Cached listeners", "key", key.String(), "listeners", r.len(), "keys", m.cache.Len())
		}
	})
}

// invalidate must be called with the lock held whenever registered listeners change.
func (m *Multicaster) invalidate() {
	m.generation++
	m.cache.Clear()
}

// retrieve matches references against key. The returned retriever is pre-filtered, and the matched listeners are sorted.
func (m *Multicaster) retrieve(key CacheKey, listeners []listener.Listener, names []string) (*retriever, []listener.Listener, error) {
	r := &retriever{preFiltered: true}
	var matched []listener.Listener
	for _, l := range listeners {
		if listener.Matches(l, key.EventType, key.SourceType) {
			r.listeners = append(r.listeners, l)
			matched = append(matched, l)
		}
	}
	if len(names) > 0 && m.registry == nil {
		return nil, nil, fmt.Errorf("%w: listener '%s'", ErrMissingRegistry, names[0])
	}
	for _, name := range names {
		rt, err := m.registry.ResolveListenerType(name)
		if err != nil {
			if m.skipMissing(name, err) {
				continue
			}
			return nil, nil, resolveErr(name, err)
		}
		if !listener.QuickSupports(rt, key.EventType) {
			continue
		}
		l, err := m.registry.ResolveListener(name)
		if err != nil {
			if m.skipMissing(name, err) {
				continue
			}
			return nil, nil, resolveErr(name, err)
		}
		if l == nil || containsSame(matched, l) || !listener.Matches(l, key.EventType, key.SourceType) {
			continue
		}
		r.names.Add(name)
		matched = append(matched, l)
	}
	order.Sort(matched, m.compare)
	return r, matched, nil
}

// resolve creates the ordered listeners for r, resolving references by name.
// Pre-filtered retrievers were already matched and de-duplicated when they were built.
func (m *Multicaster) resolve(r *retriever) ([]listener.Listener, error) {
	names := r.names.Values()
	result := make([]listener.Listener, 0, len(r.listeners)+len(names))
	result = append(result, r.listeners...)
	if len(names) > 0 && m.registry == nil {
		return nil, fmt.Errorf("%w: listener '%s'", ErrMissingRegistry, names[0])
	}
	for _, name := range names {
		l, err := m.registry.ResolveListener(name)
		if err != nil {
			if m.skipMissing(name, err) {
				continue
			}
			return nil, resolveErr(name, err)
		}
		if l == nil || (!r.preFiltered && containsSame(result, l)) {
			continue
		}
		result = append(result, l)
	}
	order.Sort(result, m.compare)
	return result, nil
}

func (m *Multicaster) skipMissing(name string, err error) bool {
	if errors.Is(err, registry.ErrNotFound) {
		m.log.Debug("Skipping missing listener", "name", name, "error", err)
		return true
	}
	return false
}

func resolveErr(name string, err error) error {
	return fmt.Errorf("failed to resolve listener '%s': %w", name, err)
}

func containsSame(listeners []listener.Listener, l listener.Listener) bool {
	return slices.ContainsFunc(listeners, func(el listener.Listener) bool {
		return listener.Same(el, l)
	})
}
