package command

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/medboxlab/medbox-core/internal/infrastructure/mqtt"
	"github.com/medboxlab/medbox-core/internal/medicine"
)

// publishQoS is the QoS level for all outbound messages. At-least-once:
// the firmware tolerates duplicate syncs and commands.
const publishQoS = 1

// Outbound message type discriminators.
const (
	typeSyncMedicines = "SYNC_MEDICINES"
	typeCommand       = "COMMAND"
	typeBroadcast     = "BROADCAST"
)

// Transport is the publish surface. Satisfied by mqtt.Client.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Presence is consulted for the online flag and updated after syncs.
// Satisfied by presence.Store.
type Presence interface {
	IsOnline(deviceID string) bool
	MarkSynced(deviceID string)
}

// Logger is the narrow logging interface used by the Publisher.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Publisher sends configuration, commands and broadcasts to the fleet.
type Publisher struct {
	transport Transport
	presence  Presence
	logger    Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewPublisher creates an outbound publisher.
func NewPublisher(transport Transport, presence Presence) *Publisher {
	return &Publisher{
		transport: transport,
		presence:  presence,
		logger:    noopLogger{},
		now:       time.Now,
	}
}

// SetLogger sets the logger for the publisher.
func (p *Publisher) SetLogger(logger Logger) {
	p.logger = logger
}

// syncPayload is the medicine schedule sync message.
type syncPayload struct {
	Type      string              `json:"type"`
	DeviceID  string              `json:"deviceId"`
	Medicines []medicine.Medicine `json:"medicines"`
	Timestamp int64               `json:"timestamp"`
}

// commandPayload is the direct device command message.
type commandPayload struct {
	Type         string         `json:"type"`
	Command      string         `json:"command"`
	Data         map[string]any `json:"data,omitempty"`
	Timestamp    int64          `json:"timestamp"`
	DeviceOnline bool           `json:"deviceOnline"`
}

// broadcastPayload is the fleet-wide announcement message.
type broadcastPayload struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// SyncMedicines pushes a device's medicine schedule to its config topic.
// On successful publish the device's last-sync timestamp is recorded.
func (p *Publisher) SyncMedicines(deviceID string, medicines []medicine.Medicine) error {
	if deviceID == "" {
		return fmt.Errorf("sync medicines: device id is required")
	}
	if medicines == nil {
		medicines = []medicine.Medicine{}
	}

	payload, err := json.Marshal(syncPayload{
		Type:      typeSyncMedicines,
		DeviceID:  deviceID,
		Medicines: medicines,
		Timestamp: p.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshalling sync payload: %w", err)
	}

	topic := mqtt.Topics{}.Config(deviceID)
	if err := p.transport.Publish(topic, payload, publishQoS, false); err != nil {
		p.logger.Error("medicine sync publish failed", "device_id", deviceID, "error", err)
		return fmt.Errorf("publishing medicine sync: %w", err)
	}

	p.presence.MarkSynced(deviceID)
	p.logger.Info("medicine schedule synced",
		"device_id", deviceID,
		"medicines", len(medicines),
	)

	return nil
}

// SendCommand sends a direct command to a device.
//
// The payload carries the device's current online verdict so the firmware
// (and anyone sniffing the topic) can see what the backend believed at
// send time. Sending to an offline device is allowed; the broker holds
// QoS 1 messages for the device's persistent session.
func (p *Publisher) SendCommand(deviceID, cmd string, data map[string]any) error {
	if deviceID == "" {
		return fmt.Errorf("send command: device id is required")
	}
	if cmd == "" {
		return fmt.Errorf("send command: command is required")
	}

	payload, err := json.Marshal(commandPayload{
		Type:         typeCommand,
		Command:      cmd,
		Data:         data,
		Timestamp:    p.now().UnixMilli(),
		DeviceOnline: p.presence.IsOnline(deviceID),
	})
	if err != nil {
		return fmt.Errorf("marshalling command payload: %w", err)
	}

	topic := mqtt.Topics{}.Command(deviceID)
	if err := p.transport.Publish(topic, payload, publishQoS, false); err != nil {
		p.logger.Error("command publish failed", "device_id", deviceID, "command", cmd, "error", err)
		return fmt.Errorf("publishing command: %w", err)
	}

	p.logger.Info("command sent", "device_id", deviceID, "command", cmd)
	return nil
}

// Broadcast sends an announcement to the whole fleet.
func (p *Publisher) Broadcast(message string) error {
	if message == "" {
		return fmt.Errorf("broadcast: message is required")
	}

	payload, err := json.Marshal(broadcastPayload{
		Type:      typeBroadcast,
		Message:   message,
		Timestamp: p.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshalling broadcast payload: %w", err)
	}

	topic := mqtt.Topics{}.Broadcast()
	if err := p.transport.Publish(topic, payload, publishQoS, false); err != nil {
		p.logger.Error("broadcast publish failed", "error", err)
		return fmt.Errorf("publishing broadcast: %w", err)
	}

	p.logger.Info("broadcast sent")
	return nil
}
