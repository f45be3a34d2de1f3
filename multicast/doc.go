/*
Package multicast decides which listeners receive an event.

A [Multicaster] holds listeners registered directly, and the names of listeners to resolve from a [registry.Registry].
The listeners for an event are found by matching the event type and source type against each listener's [listener.Descriptor], then sorted with an [order.Comparator].

Results are cached by [CacheKey], and the whole cache is cleared whenever a listener is registered or unregistered.
Listeners registered by name are only cached by name, so they're resolved from the registry again each time an event is published.
A named listener is never created if its type shows that it can't handle the event.
*/
package multicast
