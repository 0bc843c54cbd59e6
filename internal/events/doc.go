// Package events orchestrates the handling of device events.
//
// Every operation follows the same shape: append the event to the durable
// journal, then publish a notification. The two halves are error-isolated;
// a journal failure never suppresses the notification and vice versa. The
// Result returned from each operation carries both outcomes so callers can
// log or retry either half.
//
// The orchestrator also owns presence-transition detection. It remembers
// the last online verdict it observed per device and fires online/offline
// events only on edges, plus a single escalation warning when a device
// stays offline beyond the configured threshold.
package events
