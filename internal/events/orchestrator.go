package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/medboxlab/medbox-core/internal/journal"
	"github.com/medboxlab/medbox-core/internal/notify"
	"github.com/medboxlab/medbox-core/internal/presence"
)

// DefaultOfflineWarningAfter is how long a device may stay continuously
// offline before the single escalation warning fires.
const DefaultOfflineWarningAfter = 5 * time.Minute

// Journal is the durable-append dependency. Satisfied by journal.Service.
type Journal interface {
	Append(ctx context.Context, deviceID string, eventType journal.EventType, eventData, description string) (journal.Event, error)
}

// Notifier is the fan-out dependency. Satisfied by notify.Service.
type Notifier interface {
	Publish(n notify.Notification) notify.Notification
}

// PresenceLister supplies presence snapshots. Satisfied by presence.Store.
type PresenceLister interface {
	List() []presence.DeviceStatus
}

// Telemetry receives presence transitions for time-series recording.
// Optional; satisfied by influxdb.Client.
type Telemetry interface {
	WritePresenceTransition(deviceID string, online bool)
}

// Logger is the narrow logging interface used by the Orchestrator.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Result carries the independent outcomes of one handled event.
//
// JournalErr and NotifyErr are isolated: either half can fail without
// affecting the other.
type Result struct {
	Event      journal.Event
	JournalErr error
	NotifyErr  error
}

// Ok reports whether both halves succeeded.
func (r Result) Ok() bool {
	return r.JournalErr == nil && r.NotifyErr == nil
}

// Orchestrator routes device events through the journal and the notifier
// and tracks presence transitions.
//
// All public methods are thread-safe.
type Orchestrator struct {
	journal   Journal
	notifier  Notifier
	presence  PresenceLister
	logger    Logger
	telemetry Telemetry

	offlineWarningAfter time.Duration

	mu sync.Mutex
	// lastKnownOnline holds the last verdict observed per device.
	// Devices absent from the map were never evaluated.
	lastKnownOnline map[string]bool
	// offlineSince marks when a device was last seen going offline.
	// Cleared after the escalation warning fires, and on any online edge.
	offlineSince map[string]time.Time
	// emergency is the per-device emergency overlay. Independent of the
	// online/offline verdict.
	emergency map[string]bool

	// now is injectable for tests.
	now func() time.Time
}

// NewOrchestrator creates an event orchestrator.
// A non-positive offlineWarningAfter falls back to DefaultOfflineWarningAfter.
func NewOrchestrator(j Journal, n Notifier, p PresenceLister, offlineWarningAfter time.Duration) *Orchestrator {
	if offlineWarningAfter <= 0 {
		offlineWarningAfter = DefaultOfflineWarningAfter
	}
	return &Orchestrator{
		journal:             j,
		notifier:            n,
		presence:            p,
		logger:              noopLogger{},
		offlineWarningAfter: offlineWarningAfter,
		lastKnownOnline:     make(map[string]bool),
		offlineSince:        make(map[string]time.Time),
		emergency:           make(map[string]bool),
		now:                 time.Now,
	}
}

// SetLogger sets the logger for the orchestrator.
func (o *Orchestrator) SetLogger(logger Logger) {
	o.logger = logger
}

// SetTelemetry sets an optional time-series recorder for presence transitions.
func (o *Orchestrator) SetTelemetry(t Telemetry) {
	o.telemetry = t
}

// handle appends the event and publishes the notification, isolating the
// two failure domains.
func (o *Orchestrator) handle(ctx context.Context, deviceID string, eventType journal.EventType, eventData, description string, n notify.Notification) Result {
	var result Result

	result.Event, result.JournalErr = o.journal.Append(ctx, deviceID, eventType, eventData, description)
	if result.JournalErr != nil {
		o.logger.Error("journal append failed",
			"device_id", deviceID,
			"event_type", eventType,
			"error", result.JournalErr,
		)
	}

	result.NotifyErr = o.publish(n)
	if result.NotifyErr != nil {
		o.logger.Error("notification publish failed",
			"device_id", deviceID,
			"event_type", eventType,
			"error", result.NotifyErr,
		)
	}

	return result
}

// publish pushes a notification, converting a panicking sink into an error.
func (o *Orchestrator) publish(n notify.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &publishPanicError{value: r}
		}
	}()

	o.notifier.Publish(n)
	return nil
}

// OnDeviceStatusChange records an online or offline transition.
//
// An online edge also resets the device's offline bookkeeping, so a device
// that cycles offline again becomes eligible for a fresh escalation warning.
func (o *Orchestrator) OnDeviceStatusChange(ctx context.Context, deviceID string, online bool) Result {
	o.mu.Lock()
	o.lastKnownOnline[deviceID] = online
	if online {
		delete(o.offlineSince, deviceID)
	} else if _, marked := o.offlineSince[deviceID]; !marked {
		o.offlineSince[deviceID] = o.now()
	}
	o.mu.Unlock()

	if o.telemetry != nil {
		o.telemetry.WritePresenceTransition(deviceID, online)
	}

	data := marshalData(map[string]any{"online": online})
	if online {
		return o.handle(ctx, deviceID, journal.EventDeviceOnline, data, "设备上线", notify.DeviceOnline(deviceID))
	}
	return o.handle(ctx, deviceID, journal.EventDeviceOffline, data, "设备离线", notify.DeviceOffline(deviceID))
}

// OnConfigSyncResult records the outcome of a medicine schedule sync.
func (o *Orchestrator) OnConfigSyncResult(ctx context.Context, deviceID string, success bool) Result {
	data := marshalData(map[string]any{"success": success})
	return o.handle(ctx, deviceID, journal.EventConfigSync, data, "配置同步", notify.ConfigSync(deviceID, success))
}

// OnMedicationReminder records a due medication. reminderTime is the
// scheduled dose time as the device or scheduler reported it.
func (o *Orchestrator) OnMedicationReminder(ctx context.Context, deviceID, medicineName, reminderTime string) Result {
	data := marshalData(map[string]any{"medicineName": medicineName, "time": reminderTime})
	return o.handle(ctx, deviceID, journal.EventMedicationReminder, data, "服药提醒", notify.MedicationReminder(deviceID, medicineName))
}

// OnMedicineTaken records a confirmed dose.
func (o *Orchestrator) OnMedicineTaken(ctx context.Context, deviceID, medicineName string) Result {
	data := marshalData(map[string]any{"medicineName": medicineName})
	return o.handle(ctx, deviceID, journal.EventMedicineTaken, data, "服药确认", notify.MedicineTaken(deviceID, medicineName))
}

// OnDeviceWarning records a device-raised warning.
func (o *Orchestrator) OnDeviceWarning(ctx context.Context, deviceID, detail string) Result {
	data := marshalData(map[string]any{"detail": detail})
	return o.handle(ctx, deviceID, journal.EventDeviceWarning, data, "设备警告", notify.DeviceWarning(deviceID, detail))
}

// OnDeviceError records a device-raised error.
func (o *Orchestrator) OnDeviceError(ctx context.Context, deviceID, detail string) Result {
	data := marshalData(map[string]any{"detail": detail})
	return o.handle(ctx, deviceID, journal.EventDeviceError, data, "设备错误", notify.DeviceError(deviceID, detail))
}

// OnEmergency raises the device's emergency overlay and records the event.
// The overlay is independent of the online/offline verdict.
func (o *Orchestrator) OnEmergency(ctx context.Context, deviceID string) Result {
	o.mu.Lock()
	o.emergency[deviceID] = true
	o.mu.Unlock()

	return o.handle(ctx, deviceID, journal.EventEmergency, "", "紧急报警", notify.Emergency(deviceID))
}

// OnEmergencyCancel clears the device's emergency overlay and records the event.
func (o *Orchestrator) OnEmergencyCancel(ctx context.Context, deviceID string) Result {
	o.mu.Lock()
	delete(o.emergency, deviceID)
	o.mu.Unlock()

	return o.handle(ctx, deviceID, journal.EventEmergencyCancel, "", "紧急报警解除", notify.EmergencyCancel(deviceID))
}

// IsEmergency reports whether the device's emergency overlay is raised.
func (o *Orchestrator) IsEmergency(deviceID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.emergency[deviceID]
}

// EvaluatePresence compares every device's derived online verdict against
// the last observed one and fires OnDeviceStatusChange on edges. A device
// seen online for the first time gets an online notification only; journal
// rows start with the first genuine transition after that.
//
// It also fires the single long-offline escalation warning for devices
// continuously offline beyond the threshold. After the warning the marker
// is cleared; it is rearmed only when the device cycles online again.
//
// Called lazily by interested readers and periodically from the cmd wiring;
// both paths are safe to interleave.
func (o *Orchestrator) EvaluatePresence(ctx context.Context) {
	snapshot := o.presence.List()
	now := o.now()

	type edge struct {
		deviceID string
		online   bool
	}
	var edges []edge
	var firstSightings []string
	var escalations []string

	o.mu.Lock()
	for _, d := range snapshot {
		last, seen := o.lastKnownOnline[d.DeviceID]

		switch {
		case !seen && d.Online:
			// First heartbeat: announce the device but keep the journal
			// quiet. A plain status message is routine traffic, not a
			// transition worth recording.
			firstSightings = append(firstSightings, d.DeviceID)
		case !seen:
			// Never online since startup; nothing to report yet.
		case d.Online != last:
			edges = append(edges, edge{d.DeviceID, d.Online})
		}

		// Record the verdict inside the lock so interleaved sweeps
		// cannot double-fire the same edge.
		o.lastKnownOnline[d.DeviceID] = d.Online

		if !d.Online {
			if since, marked := o.offlineSince[d.DeviceID]; marked && now.Sub(since) > o.offlineWarningAfter {
				escalations = append(escalations, d.DeviceID)
				delete(o.offlineSince, d.DeviceID)
			}
		}
	}
	o.mu.Unlock()

	for _, deviceID := range firstSightings {
		if o.telemetry != nil {
			o.telemetry.WritePresenceTransition(deviceID, true)
		}
		if err := o.publish(notify.DeviceOnline(deviceID)); err != nil {
			o.logger.Error("notification publish failed",
				"device_id", deviceID,
				"event_type", journal.EventDeviceOnline,
				"error", err,
			)
		}
	}

	for _, e := range edges {
		o.OnDeviceStatusChange(ctx, e.deviceID, e.online)
	}

	for _, deviceID := range escalations {
		o.logger.Warn("device offline beyond threshold",
			"device_id", deviceID,
			"threshold", o.offlineWarningAfter,
		)
		data := marshalData(map[string]any{"threshold": o.offlineWarningAfter.String()})
		o.handle(ctx, deviceID, journal.EventDeviceWarning, data, "设备离线警告", notify.DeviceOfflineWarning(deviceID))
	}
}

// marshalData encodes event data, falling back to empty on failure.
func marshalData(v map[string]any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// publishPanicError wraps a panic escaping the notification sink.
type publishPanicError struct {
	value any
}

func (e *publishPanicError) Error() string {
	return fmt.Sprintf("notification publish panicked: %v", e.value)
}
