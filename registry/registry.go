package registry

import (
	"errors"
	"fmt"
	"github.com/saylorsolutions/eventcast/listener"
	"github.com/saylorsolutions/eventcast/syncx"
	"reflect"
	"slices"
	"sync"
)

var (
	ErrNotFound  = errors.New("listener not found")
	ErrDuplicate = errors.New("listener name already defined")
)

// Registry resolves listeners by name.
// Both methods must return an error wrapping [ErrNotFound] when nothing is registered with the given name.
type Registry interface {
	// ResolveListenerType returns the static type of the named listener without creating it.
	// A nil type with a nil error means the type is unknown until the listener is created.
	ResolveListenerType(name string) (reflect.Type, error)
	// ResolveListener returns the named listener, creating it if necessary.
	ResolveListener(name string) (listener.Listener, error)
}

type definition struct {
	staticType reflect.Type
	create     func() (listener.Listener, error)
	instance   listener.Listener
	created    bool
	creations  int
}

// Container is an in-memory [Registry] of named singleton listeners.
// Listeners defined with [Define] are created the first time they're resolved, and the same instance is returned after that.
//
// A Container is safe for concurrent use.
type Container struct {
	mux  sync.RWMutex
	defs map[string]*definition
}

func NewContainer() *Container {
	return &Container{
		defs: map[string]*definition{},
	}
}

// Define adds a lazily created listener to the container.
// The static type of the listener is T, which is used to decide whether the listener is worth creating for an event.
// An error wrapping [ErrDuplicate] is returned if the name is already defined.
//
// The factory is called while the container is locked, so it must not use the container.
func Define[T listener.Listener](c *Container, name string, factory func() (T, error)) error {
	if factory == nil {
		panic("nil listener factory")
	}
	return c.add(name, &definition{
		staticType: reflect.TypeFor[T](),
		create: func() (listener.Listener, error) {
			l, err := factory()
			if err != nil {
				return nil, err
			}
			return l, nil
		},
	})
}

// Singleton adds an existing listener to the container.
func (c *Container) Singleton(name string, l listener.Listener) error {
	if l == nil {
		panic("nil listener")
	}
	return c.add(name, &definition{
		staticType: reflect.TypeOf(l),
		instance:   l,
		created:    true,
	})
}

func (c *Container) add(name string, def *definition) error {
	if len(name) == 0 {
		panic("empty listener name")
	}
	_, err := syncx.LockFuncTErr(&c.mux, func() (struct{}, error) {
		if c.defs == nil {
			c.defs = map[string]*definition{}
		}
		if _, ok := c.defs[name]; ok {
			return struct{}{}, fmt.Errorf("%w: %s", ErrDuplicate, name)
		}
		c.defs[name] = def
		return struct{}{}, nil
	})
	return err
}

// Remove deletes the named definition, and reports whether it existed.
func (c *Container) Remove(name string) bool {
	return syncx.LockFuncT(&c.mux, func() bool {
		_, ok := c.defs[name]
		delete(c.defs, name)
		return ok
	})
}

// Names returns the defined names in sorted order.
func (c *Container) Names() []string {
	return syncx.RLockFuncT(&c.mux, func() []string {
		names := make([]string, 0, len(c.defs))
		for name := range c.defs {
			names = append(names, name)
		}
		slices.Sort(names)
		return names
	})
}

// Creations returns the number of times the named listener's factory has been called.
func (c *Container) Creations(name string) int {
	return syncx.RLockFuncT(&c.mux, func() int {
		def, ok := c.defs[name]
		if !ok {
			return 0
		}
		return def.creations
	})
}

// ResolveListenerType returns the static type of the named listener without creating it.
func (c *Container) ResolveListenerType(name string) (reflect.Type, error) {
	return syncx.RLockFuncTErr(&c.mux, func() (reflect.Type, error) {
		def, ok := c.defs[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return def.staticType, nil
	})
}

// ResolveListener returns the named listener, creating it first if it was defined with [Define].
// A factory error is returned wrapped, and the factory is called again the next time the listener is resolved.
func (c *Container) ResolveListener(name string) (listener.Listener, error) {
	instance, err := syncx.RLockFuncTErr(&c.mux, func() (listener.Listener, error) {
		def, ok := c.defs[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return def.instance, nil
	})
	if err != nil || instance != nil {
		return instance, err
	}
	return syncx.LockFuncTErr(&c.mux, func() (listener.Listener, error) {
		// The definition may have been removed or replaced since it was read.
		def, ok := c.defs[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if def.created {
			return def.instance, nil
		}
		def.creations++
		l, err := def.create()
		if err != nil {
			return nil, fmt.Errorf("failed to create listener '%s': %w", name, err)
		}
		if isNil(l) {
			return nil, fmt.Errorf("factory for listener '%s' returned nil", name)
		}
		def.instance = l
		def.created = true
		return l, nil
	})
}

func isNil(l listener.Listener) bool {
	if l == nil {
		return true
	}
	rv := reflect.ValueOf(l)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
