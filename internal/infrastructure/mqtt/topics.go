package mqtt

import "fmt"

// Topic grammar for the dispenser fleet.
//
// Device-to-backend topics carry the device ID in the second segment:
//
//	medicinebox/{deviceId}/status
//	medicinebox/{deviceId}/events
//
// Backend-to-device topics mirror that shape, plus one broadcast topic
// shared by the whole fleet.
const (
	// TopicPrefix is the root of all dispenser topics.
	TopicPrefix = "medicinebox"

	// statusSuffix and eventsSuffix name the inbound topic leaves.
	statusSuffix = "status"
	eventsSuffix = "events"

	// configSuffix and commandSuffix name the outbound topic leaves.
	configSuffix  = "config"
	commandSuffix = "command"

	// broadcastLeaf is the fleet-wide announcement topic leaf.
	broadcastLeaf = "broadcast"

	// SystemStatusTopic carries the backend's own online/offline status (LWT).
	SystemStatusTopic = "medbox/system/status"
)

// Topics provides builders for dispenser MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	configTopic := topics.Config("box-001")
//	// Returns: "medicinebox/box-001/config"
type Topics struct{}

// Status returns the heartbeat/status topic for a device.
//
// Example: medicinebox/box-001/status
func (Topics) Status(deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, deviceID, statusSuffix)
}

// Events returns the event topic for a device.
//
// Example: medicinebox/box-001/events
func (Topics) Events(deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, deviceID, eventsSuffix)
}

// Config returns the configuration sync topic for a device.
//
// Example: medicinebox/box-001/config
func (Topics) Config(deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, deviceID, configSuffix)
}

// Command returns the command topic for a device.
//
// Example: medicinebox/box-001/command
func (Topics) Command(deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, deviceID, commandSuffix)
}

// Broadcast returns the fleet-wide announcement topic.
//
// Example: medicinebox/broadcast
func (Topics) Broadcast() string {
	return fmt.Sprintf("%s/%s", TopicPrefix, broadcastLeaf)
}

// AllStatus returns a pattern matching status topics from every device.
//
// Pattern: medicinebox/+/status
func (Topics) AllStatus() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefix, statusSuffix)
}

// AllEvents returns a pattern matching event topics from every device.
//
// Pattern: medicinebox/+/events
func (Topics) AllEvents() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefix, eventsSuffix)
}

// SystemStatus returns the backend status topic used for the LWT.
func (Topics) SystemStatus() string {
	return SystemStatusTopic
}
