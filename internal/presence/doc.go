// Package presence tracks which dispenser devices are currently online.
//
// A device is online when its last heartbeat arrived within OnlineTimeout.
// The store never persists the online flag; it is derived from the last
// activity timestamp at read time, so a reader can never observe a stale
// verdict.
//
// The store holds one record per device for the lifetime of the process.
// Records are created on first contact and never deleted; a device that
// was never seen is simply reported offline.
//
// All methods are safe for concurrent use. Accessors return copies, so
// callers can never mutate shared state.
package presence
