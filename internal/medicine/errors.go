package medicine

import "errors"

// Sentinel errors for medicine operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound is returned when a medicine does not exist.
	ErrNotFound = errors.New("medicine: not found")

	// ErrDeviceIDRequired is returned when an operation is missing a device ID.
	ErrDeviceIDRequired = errors.New("medicine: device id is required")

	// ErrNameRequired is returned when a medicine has no name.
	ErrNameRequired = errors.New("medicine: name is required")

	// ErrInvalidSchedule is returned when hour or minute is out of range.
	ErrInvalidSchedule = errors.New("medicine: schedule time out of range")
)
