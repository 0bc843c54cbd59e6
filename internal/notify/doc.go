// Package notify fans device notifications out to live listeners and
// keeps bounded in-memory histories.
//
// Every published notification lands in two histories: the global one and,
// when it targets a device, that device's own. Histories are insert-at-head
// and capped, so the newest entries are always at the front and memory use
// is bounded regardless of fleet size or uptime.
//
// Live delivery goes through a Sink (the websocket hub in production).
// Publishing with no listeners attached is a valid no-op; the history is
// the catch-up mechanism, not the sink.
package notify
