package main

import (
	"fmt"
	"github.com/saylorsolutions/eventcast/appctx"
	"github.com/saylorsolutions/eventcast/listener"
	"github.com/saylorsolutions/eventcast/registry"
	"github.com/saylorsolutions/eventcast/syncx"
	"github.com/saylorsolutions/eventcast/typeinfo"
	"reflect"
	"sync"
)

type Storefront struct {
	Name string
}

type Warehouse struct {
	Name string
}

type OrderPlaced struct {
	listener.BaseEvent
	ID string
}

type ExpressOrderPlaced struct {
	OrderPlaced
}

type InventoryLow struct {
	listener.BaseEvent
	SKU string
}

// tracer records the names of listeners in the order they receive events.
type tracer struct {
	mux       sync.Mutex
	delivered []string
}

func (t *tracer) record(name string) {
	syncx.LockFunc(&t.mux, func() {
		t.delivered = append(t.delivered, name)
	})
}

func (t *tracer) drain() []string {
	return syncx.LockFuncT(&t.mux, func() []string {
		delivered := t.delivered
		t.delivered = nil
		return delivered
	})
}

// restockMonitor only wants low inventory events coming from a warehouse.
type restockMonitor struct {
	trace *tracer
}

func (m *restockMonitor) OnEvent(listener.Event) {
	m.trace.record("inventory")
}

func (m *restockMonitor) Order() int {
	return 1
}

func (m *restockMonitor) SupportsEventType(eventType reflect.Type) bool {
	return eventType == reflect.TypeFor[*InventoryLow]()
}

func (m *restockMonitor) SupportsSourceType(sourceType reflect.Type) bool {
	return sourceType == reflect.TypeFor[*Warehouse]()
}

// orderAnalytics receives every kind of order, from any source.
type orderAnalytics struct {
	trace *tracer
}

func (a *orderAnalytics) OnEvent(listener.Event) {
	a.trace.record("analytics")
}

func (a *orderAnalytics) Order() int {
	return 30
}

func (a *orderAnalytics) SupportsEventType(eventType typeinfo.Type) bool {
	return typeinfo.For[*OrderPlaced]().IsAssignableFrom(eventType)
}

func (a *orderAnalytics) SupportsSourceType(typeinfo.Type) bool {
	return true
}

// recordAs returns a listener function that records name for each event of type E.
func recordAs[E listener.Event](trace *tracer, name string) func(E) {
	return func(E) {
		trace.record(name)
	}
}

// registerSamples adds one of each kind of listener to c.
// The flaky listener panics, and is only added when failures are isolated.
func registerSamples(c *appctx.Context, trace *tracer, flaky bool) error {
	direct := []listener.Listener{
		listener.On(recordAs[listener.Event](trace, "audit"), listener.WithOrder(listener.HighestPrecedence)),
		listener.On(recordAs[*OrderPlaced](trace, "orders"), listener.WithOrder(10)),
		listener.On(recordAs[*ExpressOrderPlaced](trace, "express"), listener.WithOrder(5)),
		listener.On(recordAs[*OrderPlaced](trace, "storefront"),
			listener.WithOrder(20), listener.FromSource[*Storefront]()),
		&restockMonitor{trace: trace},
		&orderAnalytics{trace: trace},
		listener.Intercept(
			listener.On(recordAs[*InventoryLow](trace, "alerts"), listener.WithOrder(40)),
			func(evt listener.Event, next func(listener.Event)) {
				trace.record("proxy")
				next(evt)
			},
		),
		listener.On(recordAs[*listener.PayloadEvent[string]](trace, "messages")),
	}
	if flaky {
		direct = append(direct, listener.On(func(evt *InventoryLow) {
			trace.record("flaky")
			panic(fmt.Sprintf("unable to restock %s", evt.SKU))
		}, listener.WithOrder(3)))
	}
	for _, l := range direct {
		if err := c.AddListener(l); err != nil {
			return err
		}
	}

	if err := registry.Define(c.Container(), "billing", func() (*listener.Typed[*OrderPlaced], error) {
		return listener.On(recordAs[*OrderPlaced](trace, "billing"), listener.WithOrder(15)), nil
	}); err != nil {
		return err
	}
	if err := registry.Define(c.Container(), "restock", func() (*listener.Typed[*InventoryLow], error) {
		return listener.On(recordAs[*InventoryLow](trace, "restock"), listener.WithOrder(2)), nil
	}); err != nil {
		return err
	}
	for _, name := range []string{"billing", "restock", "ghost"} {
		if err := c.AddListenerByName(name); err != nil {
			return err
		}
	}
	return nil
}

// sampleEvents returns a fresh set of events to publish in a round.
func sampleEvents(round int) []listener.Event {
	store := &Storefront{Name: "web"}
	depot := &Warehouse{Name: "east"}
	return []listener.Event{
		&OrderPlaced{BaseEvent: listener.NewBaseEvent(store), ID: fmt.Sprintf("order-%d", round)},
		&ExpressOrderPlaced{OrderPlaced{BaseEvent: listener.NewBaseEvent(depot), ID: fmt.Sprintf("express-%d", round)}},
		&InventoryLow{BaseEvent: listener.NewBaseEvent(depot), SKU: fmt.Sprintf("sku-%d", round)},
	}
}
