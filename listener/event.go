package listener

import (
	"github.com/google/uuid"
	"github.com/saylorsolutions/eventcast/typeinfo"
	"time"
)

// Event is anything that can be published to listeners.
// The runtime type of an Event decides which listeners receive it. Struct events that embed another event type are delivered
// to listeners of the embedded type too.
type Event interface {
	// Source returns the object that originated the event, which may be nil.
	Source() any
	// Timestamp returns the time the event was created.
	Timestamp() time.Time
}

// EventTypeProvider may be implemented by events that should be matched as a type other than their runtime type.
// This is useful for envelopes that carry a value of some other type.
type EventTypeProvider interface {
	EventType() typeinfo.Type
}

var topEventType = typeinfo.For[Event]()

// TypeOf returns the type used to match evt against listeners.
func TypeOf(evt Event) typeinfo.Type {
	if p, ok := evt.(EventTypeProvider); ok {
		if t := p.EventType(); !t.IsNone() {
			return t
		}
	}
	return typeinfo.Of(evt)
}

// SourceTypeOf returns the type of evt's source, or [typeinfo.None] if the source is nil.
func SourceTypeOf(evt Event) typeinfo.Type {
	if evt == nil {
		return typeinfo.None
	}
	return typeinfo.Of(evt.Source())
}

// BaseEvent is an immutable [Event] implementation intended to be embedded in domain events.
type BaseEvent struct {
	id        string
	source    any
	timestamp time.Time
}

// NewBaseEvent creates a [BaseEvent] with a unique ID, stamped with the current time.
func NewBaseEvent(source any) BaseEvent {
	return BaseEvent{
		id:        uuid.NewString(),
		source:    source,
		timestamp: time.Now(),
	}
}

// ID returns the unique ID of the event, which is empty for a zero BaseEvent.
func (e BaseEvent) ID() string {
	return e.id
}

func (e BaseEvent) Source() any {
	return e.source
}

func (e BaseEvent) Timestamp() time.Time {
	return e.timestamp
}

// PayloadEvent wraps an arbitrary value so it can be published as an [Event].
// Listeners interested in a payload type should be declared for *PayloadEvent[T].
type PayloadEvent[T any] struct {
	BaseEvent
	Payload T
}

func NewPayloadEvent[T any](source any, payload T) *PayloadEvent[T] {
	return &PayloadEvent[T]{
		BaseEvent: NewBaseEvent(source),
		Payload:   payload,
	}
}
