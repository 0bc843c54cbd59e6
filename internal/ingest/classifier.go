package ingest

import (
	"strings"
	"unicode/utf8"
)

// MessageClass partitions inbound traffic.
type MessageClass string

// Message classes.
const (
	// ClassStatus is a heartbeat/state snapshot from a device.
	ClassStatus MessageClass = "STATUS"

	// ClassEvent is a medication or alarm event from a device.
	ClassEvent MessageClass = "EVENT"
)

// topicPrefix mirrors the fleet topic grammar.
const topicPrefix = "medicinebox"

// Classify maps an inbound topic onto a message class and device ID.
//
// Recognized shapes:
//
//	medicinebox/{deviceId}/status -> STATUS
//	medicinebox/{deviceId}/events -> EVENT
//
// Anything else, including empty device IDs, returns ok=false and should
// be dropped by the caller.
func Classify(topic string) (deviceID string, class MessageClass, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != topicPrefix || parts[1] == "" {
		return "", "", false
	}

	switch parts[2] {
	case "status":
		return parts[1], ClassStatus, true
	case "events":
		return parts[1], ClassEvent, true
	default:
		return "", "", false
	}
}

// DecodePayload converts a raw payload to a string, best-effort.
//
// Invalid UTF-8 yields an empty string. Decoding never fails the message;
// downstream matching simply finds nothing in an empty payload.
func DecodePayload(payload []byte) string {
	if !utf8.Valid(payload) {
		return ""
	}
	return string(payload)
}
