/*
Package eventcast matches application events to the listeners that want them, based on the runtime types of events and their sources.

The module is split by concern:

  - [github.com/saylorsolutions/eventcast/listener] defines events, listeners, and how a listener declares interest.
  - [github.com/saylorsolutions/eventcast/multicast] keeps the registered listeners, and caches which of them apply to each event and source type.
  - [github.com/saylorsolutions/eventcast/dispatch] delivers events, optionally isolating listener failures.
  - [github.com/saylorsolutions/eventcast/registry] lazily creates listeners that were registered by name.
  - [github.com/saylorsolutions/eventcast/appctx] ties it all together into an application context with a lifecycle.

The eventcast command in cmd/eventcast publishes sample events and traces how they're delivered.
*/
package eventcast
