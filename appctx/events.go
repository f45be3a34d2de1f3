package appctx

import "github.com/saylorsolutions/eventcast/listener"

// ContextEvent is embedded in every lifecycle event published by a [Context].
// Listen for *ContextEvent to receive all of them.
type ContextEvent struct {
	listener.BaseEvent
}

func newContextEvent(c *Context) ContextEvent {
	return ContextEvent{BaseEvent: listener.NewBaseEvent(c)}
}

// Context returns the [Context] that published the event.
func (e ContextEvent) Context() *Context {
	c, _ := e.Source().(*Context)
	return c
}

// RefreshedEvent is published when a [Context] is refreshed.
type RefreshedEvent struct {
	ContextEvent
}

// StartedEvent is published when a [Context] is started.
type StartedEvent struct {
	ContextEvent
}

// StoppedEvent is published when a [Context] is stopped.
type StoppedEvent struct {
	ContextEvent
}

// ClosedEvent is published when a [Context] is closed, before its listeners are released.
type ClosedEvent struct {
	ContextEvent
}
