package journal

import "time"

// EventType classifies journal entries.
type EventType string

// Known event types. The journal itself accepts any value; these are the
// types the rest of the backend produces.
const (
	EventDeviceOnline       EventType = "DEVICE_ONLINE"
	EventDeviceOffline      EventType = "DEVICE_OFFLINE"
	EventConfigSync         EventType = "CONFIG_SYNC"
	EventMedicationReminder EventType = "MEDICATION_REMINDER"
	EventMedicineTaken      EventType = "MEDICINE_TAKEN"
	EventDeviceWarning      EventType = "DEVICE_WARNING"
	EventDeviceError        EventType = "DEVICE_ERROR"
	EventEmergency          EventType = "EMERGENCY"
	EventEmergencyCancel    EventType = "EMERGENCY_CANCEL"
)

// Event is one journal row.
//
// ID is assigned by the database (AUTOINCREMENT) and is strictly
// increasing in insertion order. EventTime is server-assigned at append
// time; device clocks are never trusted.
type Event struct {
	ID          int64     `json:"id"`
	DeviceID    string    `json:"deviceId"`
	EventTime   time.Time `json:"eventTime"`
	EventType   EventType `json:"eventType"`
	EventData   string    `json:"eventData"`
	Description string    `json:"description"`
	Processed   bool      `json:"processed"`
}
