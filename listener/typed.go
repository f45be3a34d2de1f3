package listener

import "github.com/saylorsolutions/eventcast/typeinfo"

type typedOptions struct {
	order  int
	source typeinfo.Type
}

// Option configures a [Typed] listener.
type Option func(opts *typedOptions)

// WithOrder sets the priority of the listener. Lower values are delivered first.
func WithOrder(order int) Option {
	return func(opts *typedOptions) {
		opts.order = order
	}
}

// FromSource restricts the listener to events with a source assignable to S.
func FromSource[S any]() Option {
	return func(opts *typedOptions) {
		opts.source = typeinfo.For[S]()
	}
}

// Typed is a [Listener] that handles a single event type E, along with any event types assignable to it.
type Typed[E Event] struct {
	fn     func(evt E)
	order  int
	source typeinfo.Type
}

// On creates a [Typed] listener that calls fn with events of type E.
// Events are converted to E with [typeinfo.Upcast], so a listener for an embedded event type receives the embedded value.
func On[E Event](fn func(evt E), opts ...Option) *Typed[E] {
	if fn == nil {
		panic("nil listener function")
	}
	conf := typedOptions{order: LowestPrecedence}
	for _, opt := range opts {
		opt(&conf)
	}
	return &Typed[E]{
		fn:     fn,
		order:  conf.order,
		source: conf.source,
	}
}

// OnEvent delivers evt to the listener function.
// Events that can't be represented as E are ignored.
func (t *Typed[E]) OnEvent(evt Event) {
	if e, ok := evt.(E); ok {
		t.fn(e)
		return
	}
	v, ok := typeinfo.Upcast(evt, typeinfo.For[E]())
	if !ok {
		return
	}
	if e, ok := v.(E); ok {
		t.fn(e)
	}
}

func (t *Typed[E]) Order() int {
	if t == nil {
		return LowestPrecedence
	}
	return t.order
}

func (t *Typed[E]) DeclaredEventType() typeinfo.Type {
	return typeinfo.For[E]()
}

func (t *Typed[E]) DeclaredSourceType() typeinfo.Type {
	if t == nil {
		return typeinfo.None
	}
	return t.source
}
