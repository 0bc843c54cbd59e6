package journal

import "errors"

// Sentinel errors for journal operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrDeviceIDRequired is returned when an operation is missing a device ID.
	ErrDeviceIDRequired = errors.New("journal: device id is required")

	// ErrEventTypeRequired is returned when appending without an event type.
	ErrEventTypeRequired = errors.New("journal: event type is required")
)
