package notify

import "time"

// Severity grades a notification.
type Severity string

// Notification severities.
const (
	SeverityInfo     Severity = "info"
	SeveritySuccess  Severity = "success"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityReminder Severity = "reminder"
)

// Notification is one entry pushed to listeners and kept in history.
//
// DeviceID is empty for fleet-wide notifications; those appear only in
// the global history.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"type"`
	DeviceID  string    `json:"deviceId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
	EventType string    `json:"eventType,omitempty"`
	EventData string    `json:"eventData,omitempty"`
}

// Channel names for live delivery.
const (
	// GlobalChannel receives every notification.
	GlobalChannel = "/topic/notifications"

	// deviceChannelPrefix + deviceID + deviceChannelSuffix forms the
	// per-device channel.
	deviceChannelPrefix = "/topic/device/"
	deviceChannelSuffix = "/notifications"
)

// DeviceChannel returns the live channel for one device's notifications.
func DeviceChannel(deviceID string) string {
	return deviceChannelPrefix + deviceID + deviceChannelSuffix
}
