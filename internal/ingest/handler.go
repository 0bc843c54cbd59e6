package ingest

import (
	"context"
	"strings"
	"sync"

	"github.com/medboxlab/medbox-core/internal/events"
	"github.com/medboxlab/medbox-core/internal/infrastructure/mqtt"
)

// subscribeQoS is the QoS level for fleet subscriptions. At-least-once:
// duplicates are tolerated downstream, lost messages are not.
const subscribeQoS = 1

// Event payload literals emitted by the dispenser firmware.
const (
	payloadEmergency       = "EMERGENCY"
	payloadEmergencyCancel = "EMERGENCY_CANCEL"
	payloadTaken           = "TAKEN"
)

// placeholderMedicineName is used for TAKEN events; the firmware does not
// report which medicine was dispensed.
const placeholderMedicineName = "未知药品"

// Presence receives activity marks. Satisfied by presence.Store.
type Presence interface {
	Touch(deviceID string)
}

// Orchestrator receives classified events. Satisfied by events.Orchestrator.
type Orchestrator interface {
	OnEmergency(ctx context.Context, deviceID string) events.Result
	OnEmergencyCancel(ctx context.Context, deviceID string) events.Result
	OnMedicineTaken(ctx context.Context, deviceID, medicineName string) events.Result
	EvaluatePresence(ctx context.Context)
}

// Telemetry receives optional time-series writes. May be nil.
// Satisfied by influxdb.Client.
type Telemetry interface {
	WriteHeartbeat(deviceID string, online bool)
	WriteEventMetric(deviceID string, eventType string)
}

// Logger is the narrow logging interface used by the Handler.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Handler processes classified inbound messages.
//
// The transport delivers concurrently; the handler serializes processing
// per device with a keyed mutex so one device's messages are handled in
// arrival order while different devices proceed in parallel.
type Handler struct {
	presence     Presence
	orchestrator Orchestrator
	telemetry    Telemetry
	logger       Logger

	// deviceLocks keys a mutex per device ID.
	mu          sync.Mutex
	deviceLocks map[string]*sync.Mutex
}

// NewHandler creates an ingest handler. telemetry may be nil.
func NewHandler(p Presence, o Orchestrator, telemetry Telemetry) *Handler {
	return &Handler{
		presence:     p,
		orchestrator: o,
		telemetry:    telemetry,
		logger:       noopLogger{},
		deviceLocks:  make(map[string]*sync.Mutex),
	}
}

// SetLogger sets the logger for the handler.
func (h *Handler) SetLogger(logger Logger) {
	h.logger = logger
}

// HandleMessage is the transport callback for all inbound fleet topics.
//
// Messages outside the topic grammar are dropped with a warning. Every
// classified message marks device activity before anything else.
func (h *Handler) HandleMessage(topic string, payload []byte) error {
	deviceID, class, ok := Classify(topic)
	if !ok {
		h.logger.Warn("unrecognized topic dropped", "topic", topic)
		return nil
	}

	lock := h.deviceLock(deviceID)
	lock.Lock()
	defer lock.Unlock()

	// Activity first: even a malformed payload proves the device is alive.
	h.presence.Touch(deviceID)

	ctx := context.Background()

	switch class {
	case ClassStatus:
		h.handleStatus(ctx, deviceID, payload)
	case ClassEvent:
		h.handleEvent(ctx, deviceID, payload)
	}

	return nil
}

// handleStatus processes a heartbeat. The payload itself is not persisted;
// a few well-known fragments drive auxiliary log lines.
func (h *Handler) handleStatus(ctx context.Context, deviceID string, payload []byte) {
	body := DecodePayload(payload)

	if strings.Contains(body, `"mqttConnected":true`) {
		h.logger.Debug("device reports broker link up", "device_id", deviceID)
	}
	if strings.Contains(body, `"arduinoReady":true`) {
		h.logger.Debug("device reports controller ready", "device_id", deviceID)
	}

	if h.telemetry != nil {
		h.telemetry.WriteHeartbeat(deviceID, true)
	}

	// Fresh activity may flip the device online; let the orchestrator
	// observe the edge promptly instead of waiting for the next sweep.
	h.orchestrator.EvaluatePresence(ctx)
}

// handleEvent matches the firmware's event vocabulary.
func (h *Handler) handleEvent(ctx context.Context, deviceID string, payload []byte) {
	body := strings.TrimSpace(DecodePayload(payload))

	switch body {
	case payloadEmergency:
		h.orchestrator.OnEmergency(ctx, deviceID)
	case payloadEmergencyCancel:
		h.orchestrator.OnEmergencyCancel(ctx, deviceID)
	case payloadTaken:
		h.orchestrator.OnMedicineTaken(ctx, deviceID, placeholderMedicineName)
	default:
		h.logger.Warn("unknown event payload",
			"device_id", deviceID,
			"payload", body,
		)
		return
	}

	if h.telemetry != nil {
		h.telemetry.WriteEventMetric(deviceID, body)
	}
}

// Subscriber is the transport subscription surface. Satisfied by mqtt.Client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Attach subscribes the handler to both inbound fleet topics at QoS 1.
func (h *Handler) Attach(sub Subscriber) error {
	topics := mqtt.Topics{}
	for _, topic := range []string{topics.AllStatus(), topics.AllEvents()} {
		if err := sub.Subscribe(topic, subscribeQoS, h.HandleMessage); err != nil {
			return err
		}
		h.logger.Info("subscribed", "topic", topic)
	}
	return nil
}

// deviceLock returns the mutex for a device, creating it on first use.
func (h *Handler) deviceLock(deviceID string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()

	lock, ok := h.deviceLocks[deviceID]
	if !ok {
		lock = &sync.Mutex{}
		h.deviceLocks[deviceID] = lock
	}
	return lock
}
