package dispatch

import (
	"errors"
	"github.com/saylorsolutions/eventcast/listener"
	"github.com/saylorsolutions/eventcast/multicast"
	"github.com/saylorsolutions/eventcast/typeinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

type testEvent struct {
	listener.BaseEvent
}

type fixedSource struct {
	listeners []listener.Listener
	err       error
	eventType typeinfo.Type
}

func (s *fixedSource) ListenersFor(_ listener.Event, eventType typeinfo.Type) ([]listener.Listener, error) {
	s.eventType = eventType
	return s.listeners, s.err
}

func recording(calls *[]string, name string) listener.Listener {
	return listener.On(func(listener.Event) {
		*calls = append(*calls, name)
	})
}

func panicking(val any) listener.Listener {
	return listener.On(func(listener.Event) {
		panic(val)
	})
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = New(&fixedSource{}, WithLogger(nil))
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = New(&fixedSource{}, WithErrorHandler(nil))
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestDispatcher_Publish(t *testing.T) {
	var calls []string
	src := &fixedSource{listeners: []listener.Listener{
		recording(&calls, "a"),
		recording(&calls, "b"),
		recording(&calls, "c"),
	}}
	d, err := New(src)
	require.NoError(t, err)
	require.NoError(t, d.Publish(&testEvent{}))
	assert.Equal(t, []string{"a", "b", "c"}, calls)
	assert.Equal(t, typeinfo.None, src.eventType)

	require.NoError(t, d.PublishAs(&testEvent{}, typeinfo.For[listener.Event]()))
	assert.Equal(t, typeinfo.For[listener.Event](), src.eventType)
	assert.Panics(t, func() {
		_ = d.Publish(nil)
	})
}

func TestDispatcher_SourceError(t *testing.T) {
	errBoom := errors.New("boom")
	d, err := New(&fixedSource{err: errBoom})
	require.NoError(t, err)
	assert.ErrorIs(t, d.Publish(&testEvent{}), errBoom)
}

func TestDispatcher_FailFast(t *testing.T) {
	var calls []string
	d, err := New(&fixedSource{listeners: []listener.Listener{
		recording(&calls, "a"),
		panicking("boom"),
		recording(&calls, "c"),
	}})
	require.NoError(t, err)
	assert.PanicsWithValue(t, "boom", func() {
		_ = d.Publish(&testEvent{})
	})
	assert.Equal(t, []string{"a"}, calls, "Delivery should stop at the failing listener")
}

func TestDispatcher_Isolation(t *testing.T) {
	var (
		calls   []string
		handled []*ListenerPanicError
	)
	errBoom := errors.New("boom")
	failing := panicking(errBoom)
	d, err := New(&fixedSource{listeners: []listener.Listener{
		recording(&calls, "a"),
		failing,
		recording(&calls, "c"),
		panicking("second"),
	}}, WithErrorHandler(func(_ listener.Event, err *ListenerPanicError) {
		handled = append(handled, err)
	}))
	require.NoError(t, err)

	err = d.Publish(&testEvent{})
	require.Error(t, err)
	assert.Equal(t, []string{"a", "c"}, calls, "Delivery should continue past failures")
	assert.ErrorIs(t, err, errBoom)
	var perr *ListenerPanicError
	require.ErrorAs(t, err, &perr)
	assert.Same(t, failing, perr.Listener)
	assert.NotEmpty(t, perr.Stack)
	require.Len(t, handled, 2)
	assert.Equal(t, "second", handled[1].Value)
	assert.Nil(t, handled[1].Unwrap())
}

func TestDispatcher_Multicaster(t *testing.T) {
	m, err := multicast.New()
	require.NoError(t, err)
	var calls []string
	m.Register(listener.On(func(*testEvent) {
		calls = append(calls, "second")
	}, listener.WithOrder(2)))
	m.Register(listener.On(func(*testEvent) {
		calls = append(calls, "first")
	}, listener.WithOrder(1)))
	m.Register(listener.On(func(*listener.PayloadEvent[string]) {
		calls = append(calls, "payload")
	}))

	d, err := New(m, WithIsolation())
	require.NoError(t, err)
	require.NoError(t, d.Publish(&testEvent{}))
	require.NoError(t, d.Publish(listener.NewPayloadEvent(nil, "value")))
	assert.Equal(t, []string{"first", "second", "payload"}, calls)
}
