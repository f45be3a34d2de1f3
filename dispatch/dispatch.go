package dispatch

import (
	"errors"
	"fmt"
	"github.com/saylorsolutions/eventcast/assert"
	"github.com/saylorsolutions/eventcast/listener"
	"github.com/saylorsolutions/eventcast/typeinfo"
	"log/slog"
	"runtime/debug"
)

var (
	ErrInvalidOption = errors.New("invalid dispatcher option")
)

// ListenerSource provides the ordered listeners for an event.
// This is satisfied by *multicast.Multicaster.
type ListenerSource interface {
	ListenersFor(evt listener.Event, eventType typeinfo.Type) ([]listener.Listener, error)
}

// ListenerPanicError is returned for a listener that panicked while an isolated [Dispatcher] delivered an event to it.
type ListenerPanicError struct {
	Listener listener.Listener
	Value    any
	Stack    []byte
}

func (e *ListenerPanicError) Error() string {
	return fmt.Sprintf("listener %T panicked: %v", e.Listener, e.Value)
}

// Unwrap returns the panic value if it was an error.
func (e *ListenerPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Option configures a [Dispatcher].
type Option func(d *Dispatcher) error

// WithIsolation recovers from listener panics, so a failing listener doesn't stop delivery to the listeners after it.
// Failures are returned from [Dispatcher.Publish] as [*ListenerPanicError].
func WithIsolation() Option {
	return func(d *Dispatcher) error {
		d.isolate = true
		return nil
	}
}

// WithErrorHandler sets a function that's called with each isolated failure as it happens.
// This implies [WithIsolation].
func WithErrorHandler(handler func(evt listener.Event, err *ListenerPanicError)) Option {
	return func(d *Dispatcher) error {
		if handler == nil {
			return fmt.Errorf("%w: nil error handler", ErrInvalidOption)
		}
		d.isolate = true
		d.onError = handler
		return nil
	}
}

// WithLogger sets the logger used to report publishing and listener failures. This is [slog.Default] by default.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) error {
		if log == nil {
			return fmt.Errorf("%w: nil logger", ErrInvalidOption)
		}
		d.log = log
		return nil
	}
}

// Dispatcher delivers events to the listeners provided by a [ListenerSource].
// Listeners are called one at a time, in order, on the publishing goroutine.
//
// By default, a panicking listener stops delivery and the panic continues up to the publisher.
// Use [WithIsolation] to keep delivering events to the remaining listeners instead.
type Dispatcher struct {
	source  ListenerSource
	isolate bool
	onError func(evt listener.Event, err *ListenerPanicError)
	log     *slog.Logger
}

func New(source ListenerSource, opts ...Option) (*Dispatcher, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: nil listener source", ErrInvalidOption)
	}
	d := &Dispatcher{
		source: source,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Publish delivers evt to every interested listener.
func (d *Dispatcher) Publish(evt listener.Event) error {
	return d.PublishAs(evt, typeinfo.None)
}

// PublishAs delivers evt to every listener interested in eventType.
// If eventType is [typeinfo.None], then it's derived from evt.
//
// An error is returned if the listeners can't be determined, or if isolated listeners failed.
func (d *Dispatcher) PublishAs(evt listener.Event, eventType typeinfo.Type) error {
	if evt == nil {
		panic("nil event")
	}
	listeners, err := d.source.ListenersFor(evt, eventType)
	if err != nil {
		return fmt.Errorf("failed to find listeners for %T: %w", evt, err)
	}
	d.log.Debug("Publishing event", "event", fmt.Sprintf("%T", evt), "listeners", len(listeners))
	if !d.isolate {
		for _, l := range listeners {
			l.OnEvent(evt)
		}
		return nil
	}
	errs := assert.CollectErrors()
	for _, l := range listeners {
		if perr := d.invoke(l, evt); perr != nil {
			d.log.Error("Listener panicked", "listener", fmt.Sprintf("%T", l), "error", perr)
			if d.onError != nil {
				d.onError(evt, perr)
			}
			errs.Add(perr)
		}
	}
	return errs.Result()
}

func (d *Dispatcher) invoke(l listener.Listener, evt listener.Event) (perr *ListenerPanicError) {
	defer func() {
		if r := recover(); r != nil {
			perr = &ListenerPanicError{
				Listener: l,
				Value:    r,
				Stack:    debug.Stack(),
			}
		}
	}()
	l.OnEvent(evt)
	return nil
}
