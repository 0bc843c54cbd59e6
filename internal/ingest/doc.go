// Package ingest routes inbound MQTT traffic from the dispenser fleet.
//
// The classifier maps topics onto message classes (status heartbeats and
// device events) and extracts the device ID; anything outside the grammar
// is dropped with a warning. The handler then serializes processing per
// device, touches presence first for every classified message, and turns
// the small fixed event vocabulary the firmware emits into orchestrator
// calls.
//
// Payload handling is deliberately forgiving: payloads are decoded
// best-effort, and unknown event literals are logged and skipped rather
// than failing the message.
package ingest
