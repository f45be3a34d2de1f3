package listener

import (
	"github.com/saylorsolutions/eventcast/syncx"
	"github.com/saylorsolutions/eventcast/typeinfo"
	"reflect"
)

// Descriptor answers matching questions about a listener, whichever way the listener expresses its interest.
type Descriptor interface {
	SupportsEventType(eventType typeinfo.Type) bool
	SupportsSourceType(sourceType typeinfo.Type) bool
	Priority() int
}

// Describe creates a [Descriptor] for l.
//
// Dynamic predicates from [GenericListener] and [SmartListener] always win over static declarations.
// Other listeners are matched by their [EventTypeDeclarer] and [SourceTypeDeclarer] declarations. When l doesn't declare
// an event type, or declares [Event] itself, the declarations of its unwrapped target are used instead. A listener with no
// usable declaration matches every event.
func Describe(l Listener) Descriptor {
	if d, ok := dynamicDescriptor(l); ok {
		return d
	}
	d := &declaredDescriptor{
		priority:  PriorityOf(l),
		eventType: declaredEventType(l),
	}
	if d.eventType.IsNone() || d.eventType == topEventType {
		target := UnwrapTarget(l)
		if dyn, ok := dynamicDescriptor(target); ok {
			return &proxyDescriptor{Descriptor: dyn, priority: d.priority}
		}
		if t := declaredEventType(target); !t.IsNone() {
			d.eventType = t
		}
		d.sourceType = declaredSourceType(target)
	}
	if t := declaredSourceType(l); !t.IsNone() {
		d.sourceType = t
	}
	return d
}

// Matches reports whether l should receive events of eventType from sources of sourceType.
func Matches(l Listener, eventType, sourceType typeinfo.Type) bool {
	d := Describe(l)
	return d.SupportsEventType(eventType) && d.SupportsSourceType(sourceType)
}

var (
	smartListenerType   = reflect.TypeFor[SmartListener]()
	genericListenerType = reflect.TypeFor[GenericListener]()
	declarerType        = reflect.TypeFor[EventTypeDeclarer]()

	staticEventTypes syncx.Map[reflect.Type, typeinfo.Type]
)

// QuickSupports decides from a listener's type alone whether a listener of that type could possibly support eventType.
// This is used to avoid creating listeners that would never match.
//
// A nil listenerType is unknown and is always supported. Listener types with dynamic predicates are supported too, since
// the decision can only be made with an instance.
func QuickSupports(listenerType reflect.Type, eventType typeinfo.Type) bool {
	if listenerType == nil {
		return true
	}
	if listenerType.Implements(smartListenerType) || listenerType.Implements(genericListenerType) {
		return true
	}
	declared := StaticEventType(listenerType)
	if declared.IsNone() {
		return true
	}
	return declared.IsAssignableFrom(eventType)
}

// StaticEventType returns the event type declared by listenerType, or [typeinfo.None] if it doesn't declare one.
// Results are cached per type.
func StaticEventType(listenerType reflect.Type) typeinfo.Type {
	if listenerType == nil || !listenerType.Implements(declarerType) {
		return typeinfo.None
	}
	if t, ok := staticEventTypes.Load(listenerType); ok {
		return t
	}
	t, _ := staticEventTypes.LoadOrStore(listenerType, zeroDeclaration(listenerType))
	return t
}

func zeroDeclaration(listenerType reflect.Type) (declared typeinfo.Type) {
	defer func() {
		if r := recover(); r != nil {
			declared = typeinfo.None
		}
	}()
	d, ok := reflect.Zero(listenerType).Interface().(EventTypeDeclarer)
	if !ok {
		return typeinfo.None
	}
	return d.DeclaredEventType()
}

func dynamicDescriptor(l Listener) (Descriptor, bool) {
	switch v := l.(type) {
	case GenericListener:
		return genericDescriptor{v}, true
	case SmartListener:
		return smartDescriptor{v}, true
	}
	return nil, false
}

func declaredEventType(l Listener) typeinfo.Type {
	if d, ok := l.(EventTypeDeclarer); ok {
		return d.DeclaredEventType()
	}
	return typeinfo.None
}

func declaredSourceType(l Listener) typeinfo.Type {
	if d, ok := l.(SourceTypeDeclarer); ok {
		return d.DeclaredSourceType()
	}
	return typeinfo.None
}

type declaredDescriptor struct {
	priority   int
	eventType  typeinfo.Type
	sourceType typeinfo.Type
}

func (d *declaredDescriptor) SupportsEventType(eventType typeinfo.Type) bool {
	if d.eventType.IsNone() {
		return true
	}
	return d.eventType.IsAssignableFrom(eventType)
}

func (d *declaredDescriptor) SupportsSourceType(sourceType typeinfo.Type) bool {
	if d.sourceType.IsNone() {
		return true
	}
	return d.sourceType.IsAssignableFrom(sourceType)
}

func (d *declaredDescriptor) Priority() int {
	return d.priority
}

type genericDescriptor struct {
	l GenericListener
}

func (d genericDescriptor) SupportsEventType(eventType typeinfo.Type) bool {
	return d.l.SupportsEventType(eventType)
}

func (d genericDescriptor) SupportsSourceType(sourceType typeinfo.Type) bool {
	return d.l.SupportsSourceType(sourceType)
}

func (d genericDescriptor) Priority() int {
	return d.l.Order()
}

type smartDescriptor struct {
	l SmartListener
}

func (d smartDescriptor) SupportsEventType(eventType typeinfo.Type) bool {
	if eventType.IsNone() {
		return false
	}
	return d.l.SupportsEventType(eventType.Reflect())
}

func (d smartDescriptor) SupportsSourceType(sourceType typeinfo.Type) bool {
	return d.l.SupportsSourceType(sourceType.Reflect())
}

func (d smartDescriptor) Priority() int {
	return d.l.Order()
}

// proxyDescriptor uses the predicates of a proxy's target with the priority of the proxy.
type proxyDescriptor struct {
	Descriptor
	priority int
}

func (d *proxyDescriptor) Priority() int {
	return d.priority
}
