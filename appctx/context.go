package appctx

import (
	"errors"
	"fmt"
	"github.com/saylorsolutions/eventcast/config"
	"github.com/saylorsolutions/eventcast/dispatch"
	"github.com/saylorsolutions/eventcast/listener"
	"github.com/saylorsolutions/eventcast/multicast"
	"github.com/saylorsolutions/eventcast/order"
	"github.com/saylorsolutions/eventcast/registry"
	"github.com/saylorsolutions/eventcast/syncx"
	"github.com/saylorsolutions/eventcast/typeinfo"
	"log/slog"
	"os"
	"sync"
)

var (
	ErrClosed        = errors.New("context is closed")
	ErrNotRefreshed  = errors.New("context has not been refreshed")
	ErrInvalidOption = errors.New("invalid context option")
)

type settings struct {
	cfg       config.Config
	hasConfig bool
	log       *slog.Logger
	compare   order.Comparator
	parent    *Context
}

// Option configures a [Context] when it's created with [New].
type Option func(s *settings) error

// WithConfig applies a [config.Config] to the context.
// Unless [WithLogger] is also used, the context logs to stderr as configured.
func WithConfig(cfg config.Config) Option {
	return func(s *settings) error {
		s.cfg = cfg
		s.hasConfig = true
		return nil
	}
}

// WithLogger sets the logger used by the context and its components. This is [slog.Default] unless [WithConfig] is used.
func WithLogger(log *slog.Logger) Option {
	return func(s *settings) error {
		if log == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidOption)
		}
		s.log = log
		return nil
	}
}

// WithComparator sets the delivery order of listeners.
func WithComparator(compare order.Comparator) Option {
	return func(s *settings) error {
		if compare == nil {
			return fmt.Errorf("%w: nil comparator", ErrInvalidOption)
		}
		s.compare = compare
		return nil
	}
}

// WithParent sets a parent context. Events published in the new context are published in parent too.
func WithParent(parent *Context) Option {
	return func(s *settings) error {
		if parent == nil {
			return fmt.Errorf("%w: nil parent", ErrInvalidOption)
		}
		s.parent = parent
		return nil
	}
}

type state int

const (
	stateCreated state = iota
	stateActive
	stateClosed
)

// Context owns the listeners of an application and publishes events to them.
//
// Events published before the first call to [Context.Refresh] are held, and delivered once the context is refreshed.
// Closing a context releases all of its listeners, and events can't be published afterward.
//
// A Context is safe for concurrent use.
type Context struct {
	name        string
	log         *slog.Logger
	parent      *Context
	container   *registry.Container
	multicaster *multicast.Multicaster
	dispatcher  *dispatch.Dispatcher

	mux         sync.Mutex
	state       state
	running     bool
	earlyEvents []earlyEvent
}

type earlyEvent struct {
	evt       listener.Event
	eventType typeinfo.Type
}

// New creates a [Context] with the given name.
func New(name string, opts ...Option) (*Context, error) {
	s := &settings{cfg: config.Default()}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if len(name) > 0 {
		s.cfg.Name = name
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	log := s.log
	if log == nil {
		if s.hasConfig {
			log = s.cfg.Logger(os.Stderr)
		} else {
			log = slog.Default().With("context", s.cfg.Name)
		}
	}

	container := registry.NewContainer()
	mopts := []multicast.Option{
		multicast.WithRegistry(container),
		multicast.WithLogger(log),
		multicast.WithCaching(s.cfg.Caching),
	}
	if s.compare != nil {
		mopts = append(mopts, multicast.WithComparator(s.compare))
	}
	m, err := multicast.New(mopts...)
	if err != nil {
		return nil, err
	}
	dopts := []dispatch.Option{dispatch.WithLogger(log)}
	if s.cfg.Isolation {
		dopts = append(dopts, dispatch.WithIsolation())
	}
	d, err := dispatch.New(m, dopts...)
	if err != nil {
		return nil, err
	}
	return &Context{
		name:        s.cfg.Name,
		log:         log,
		parent:      s.parent,
		container:   container,
		multicaster: m,
		dispatcher:  d,
	}, nil
}

func (c *Context) Name() string {
	return c.name
}

// Container returns the registry used to resolve listeners added with [Context.AddListenerByName].
func (c *Context) Container() *registry.Container {
	return c.container
}

// Multicaster returns the [multicast.Multicaster] that matches events to listeners.
func (c *Context) Multicaster() *multicast.Multicaster {
	return c.multicaster
}

// AddListener registers a listener with the context.
func (c *Context) AddListener(l listener.Listener) error {
	if c.IsClosed() {
		return ErrClosed
	}
	c.multicaster.Register(l)
	return nil
}

// AddListenerByName registers a listener defined in [Context.Container].
func (c *Context) AddListenerByName(name string) error {
	if c.IsClosed() {
		return ErrClosed
	}
	c.multicaster.RegisterByName(name)
	return nil
}

// RemoveListener unregisters a listener, and reports whether it was registered.
func (c *Context) RemoveListener(l listener.Listener) bool {
	return c.multicaster.Unregister(l)
}

func (c *Context) IsActive() bool {
	return syncx.LockFuncT(&c.mux, func() bool {
		return c.state == stateActive
	})
}

func (c *Context) IsRunning() bool {
	return syncx.LockFuncT(&c.mux, func() bool {
		return c.running
	})
}

func (c *Context) IsClosed() bool {
	return syncx.LockFuncT(&c.mux, func() bool {
		return c.state == stateClosed
	})
}

// Refresh activates the context, delivers any events that were published before it was active, then publishes a
// [RefreshedEvent]. A context may be refreshed more than once.
func (c *Context) Refresh() error {
	early, err := syncx.LockFuncTErr(&c.mux, func() ([]earlyEvent, error) {
		if c.state == stateClosed {
			return nil, ErrClosed
		}
		c.state = stateActive
		early := c.earlyEvents
		c.earlyEvents = nil
		return early, nil
	})
	if err != nil {
		return err
	}
	for _, e := range early {
		if err := c.publish(e.evt, e.eventType); err != nil {
			return err
		}
	}
	c.log.Info("Context refreshed", "listeners", c.multicaster.Len())
	return c.publish(&RefreshedEvent{newContextEvent(c)}, typeinfo.None)
}

// Start publishes a [StartedEvent]. Starting a running context has no effect.
func (c *Context) Start() error {
	start, err := syncx.LockFuncTErr(&c.mux, func() (bool, error) {
		switch c.state {
		case stateClosed:
			return false, ErrClosed
		case stateCreated:
			return false, ErrNotRefreshed
		}
		if c.running {
			return false, nil
		}
		c.running = true
		return true, nil
	})
	if err != nil || !start {
		return err
	}
	c.log.Info("Context started")
	return c.publish(&StartedEvent{newContextEvent(c)}, typeinfo.None)
}

// Stop publishes a [StoppedEvent]. Stopping a context that isn't running has no effect.
func (c *Context) Stop() error {
	stop, err := syncx.LockFuncTErr(&c.mux, func() (bool, error) {
		if c.state == stateClosed {
			return false, ErrClosed
		}
		if !c.running {
			return false, nil
		}
		c.running = false
		return true, nil
	})
	if err != nil || !stop {
		return err
	}
	c.log.Info("Context stopped")
	return c.publish(&StoppedEvent{newContextEvent(c)}, typeinfo.None)
}

// Close publishes a [ClosedEvent] if the context is active, then releases all listeners.
// Closing a closed context has no effect.
func (c *Context) Close() error {
	wasActive, alreadyClosed := false, false
	syncx.LockFunc(&c.mux, func() {
		switch c.state {
		case stateClosed:
			alreadyClosed = true
			return
		case stateActive:
			wasActive = true
		}
	})
	if alreadyClosed {
		return nil
	}
	var err error
	if wasActive {
		err = c.publish(&ClosedEvent{newContextEvent(c)}, typeinfo.None)
	}
	syncx.LockFunc(&c.mux, func() {
		c.state = stateClosed
		c.running = false
		c.earlyEvents = nil
	})
	c.multicaster.Close()
	c.log.Info("Context closed")
	return err
}

// Publish delivers evt to the interested listeners of the context, and then to its parent if it has one.
// Events published before the context is refreshed are held until it is.
func (c *Context) Publish(evt listener.Event) error {
	return c.PublishAs(evt, typeinfo.None)
}

// PublishAs is the same as [Context.Publish], but matches listeners with eventType instead of the event's own type.
func (c *Context) PublishAs(evt listener.Event, eventType typeinfo.Type) error {
	if evt == nil {
		panic("nil event")
	}
	deliver, err := syncx.LockFuncTErr(&c.mux, func() (bool, error) {
		switch c.state {
		case stateClosed:
			return false, ErrClosed
		case stateCreated:
			c.earlyEvents = append(c.earlyEvents, earlyEvent{evt: evt, eventType: eventType})
			return false, nil
		}
		return true, nil
	})
	if err != nil || !deliver {
		return err
	}
	return c.publish(evt, eventType)
}

func (c *Context) publish(evt listener.Event, eventType typeinfo.Type) error {
	if err := c.dispatcher.PublishAs(evt, eventType); err != nil {
		return err
	}
	if c.parent != nil {
		if err := c.parent.PublishAs(evt, eventType); err != nil && !errors.Is(err, ErrClosed) {
			return fmt.Errorf("failed to publish to parent context '%s': %w", c.parent.name, err)
		}
	}
	return nil
}

// PublishPayload publishes payload wrapped in a [listener.PayloadEvent], with c as the source.
// Listeners receive it by declaring interest in *listener.PayloadEvent[T].
func PublishPayload[T any](c *Context, payload T) error {
	return c.Publish(listener.NewPayloadEvent(c, payload))
}
