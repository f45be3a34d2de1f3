package listener

import (
	"github.com/saylorsolutions/eventcast/typeinfo"
	"math"
	"reflect"
)

const (
	HighestPrecedence = math.MinInt // HighestPrecedence is the priority of a listener that should run before all others.
	LowestPrecedence  = math.MaxInt // LowestPrecedence is the priority of a listener that should run after all others, and the default.
)

// Listener receives published events.
// A Listener that doesn't declare anything else about itself receives every event.
type Listener interface {
	OnEvent(evt Event)
}

// Ordered is implemented by listeners that care about their position in the delivery order.
// Lower values are delivered first.
type Ordered interface {
	Order() int
}

// SmartListener decides dynamically which events it supports using raw runtime types.
// Its predicates take precedence over any static declaration.
type SmartListener interface {
	Listener
	Ordered
	// SupportsEventType is never called with a nil eventType.
	SupportsEventType(eventType reflect.Type) bool
	// SupportsSourceType is called with nil when the event has no source.
	SupportsSourceType(sourceType reflect.Type) bool
}

// GenericListener decides dynamically which events it supports using [typeinfo.Type].
// Its predicates take precedence over any static declaration.
type GenericListener interface {
	Listener
	Ordered
	SupportsEventType(eventType typeinfo.Type) bool
	SupportsSourceType(sourceType typeinfo.Type) bool
}

// EventTypeDeclarer is implemented by listeners that only handle one type of event.
//
// DeclaredEventType must not depend on receiver state, because it may be called on the zero value of the listener type
// to decide whether a listener is worth creating at all.
type EventTypeDeclarer interface {
	DeclaredEventType() typeinfo.Type
}

// SourceTypeDeclarer is implemented by listeners that only handle events from one type of source.
// Returning [typeinfo.None] means any source is accepted.
type SourceTypeDeclarer interface {
	DeclaredSourceType() typeinfo.Type
}

// PriorityOf returns the priority of l.
// Proxies that aren't [Ordered] take the priority of their target, and everything else is [LowestPrecedence].
func PriorityOf(l Listener) int {
	if o, ok := l.(Ordered); ok {
		return o.Order()
	}
	if p, ok := l.(Proxy); ok {
		if target := p.Target(); target != nil {
			return PriorityOf(target)
		}
	}
	return LowestPrecedence
}

// Same reports whether a and b are the same listener.
//
//   - Pointers, maps and channels are the same when they share an address.
//   - Pointers to zero-size types are never the same, since distinct values may share an address.
//   - Function listeners are never the same, even when compared with themselves. Go functions have no identity, so every
//     registration of a function listener is distinct. Wrap it with [On] to get a listener that can be unregistered.
//   - Comparable values are the same when they're equal.
//   - Other values, such as slices or structs holding slices, are the same when they're deeply equal. Functions held by
//     such values are never deeply equal.
func Same(a, b Listener) (same bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	switch ta.Kind() {
	case reflect.Func:
		return false
	case reflect.Pointer:
		if ta.Elem().Size() == 0 {
			return false
		}
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	case reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	if !ta.Comparable() {
		return reflect.DeepEqual(a, b)
	}
	// Comparable structs may still hold interfaces with incomparable values.
	defer func() {
		if r := recover(); r != nil {
			same = reflect.DeepEqual(a, b)
		}
	}()
	return a == b
}
