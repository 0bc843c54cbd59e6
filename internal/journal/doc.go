// Package journal provides the durable offline-event journal.
//
// Every noteworthy device event is appended as a row so consumers that
// were offline at the time can catch up later. Rows are never deleted by
// normal operation; delivery is tracked by the one-way processed flag.
// Duplicate events are tolerated: the journal never dedupes, and marking
// a processed row again is a no-op, so redelivery from the transport is
// harmless.
//
// The Service wraps the SQLite repository with the ordering and
// idempotency contract plus the presence-counter side effect.
package journal
