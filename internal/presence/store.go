package presence

import (
	"sync"
	"time"
)

// DefaultOnlineTimeout is the heartbeat window for the online verdict.
// A device whose last activity is older than this is offline.
const DefaultOnlineTimeout = 60 * time.Second

// Defaults applied when a device is first seen. The dispenser firmware
// does not report these until a config sync, so the store seeds them.
const (
	defaultDeviceType         = "medicinebox"
	defaultFirmwareVersion    = "V8.3"
	defaultLocalConfigVersion = "1.0"
)

// DeviceStatus is a snapshot of one device's presence record.
//
// Online is derived from LastActive at read time; it is never stored.
type DeviceStatus struct {
	DeviceID           string    `json:"deviceId"`
	Online             bool      `json:"online"`
	LastActive         time.Time `json:"lastActiveTime"`
	OfflineModeEnabled bool      `json:"offlineModeEnabled"`
	LastSync           time.Time `json:"lastSyncTime"`
	LocalConfigVersion string    `json:"localConfigVersion"`
	OfflineEventsCount int       `json:"offlineEventsCount"`
	LastEventTime      time.Time `json:"lastEventTime"`
	DeviceType         string    `json:"deviceType"`
	FirmwareVersion    string    `json:"firmwareVersion"`
}

// Store tracks per-device presence records.
//
// All public methods are thread-safe. Accessors return copies with the
// online flag freshly derived, so callers never see stale verdicts and
// can never mutate shared state.
type Store struct {
	mu      sync.RWMutex
	devices map[string]*DeviceStatus

	onlineTimeout time.Duration

	// now is injectable for tests.
	now func() time.Time
}

// NewStore creates a presence store with the given online timeout.
// A non-positive timeout falls back to DefaultOnlineTimeout.
func NewStore(onlineTimeout time.Duration) *Store {
	if onlineTimeout <= 0 {
		onlineTimeout = DefaultOnlineTimeout
	}
	return &Store{
		devices:       make(map[string]*DeviceStatus),
		onlineTimeout: onlineTimeout,
		now:           time.Now,
	}
}

// Touch records activity for a device, creating its record on first contact.
//
// Touch never rewinds LastActive: an activity timestamp older than the one
// already recorded is ignored, so late-delivered heartbeats cannot push an
// online device back toward offline.
func (s *Store) Touch(deviceID string) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.ensureLocked(deviceID)
	if now.After(d.LastActive) {
		d.LastActive = now
	}
}

// IsOnline reports whether the device's last activity falls within the
// online timeout. Unknown devices are offline.
func (s *Store) IsOnline(deviceID string) bool {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.devices[deviceID]
	if !ok {
		return false
	}
	return s.isOnlineLocked(d, now)
}

// Get returns a snapshot of one device's record.
// The second return is false when the device was never seen.
func (s *Store) Get(deviceID string) (DeviceStatus, bool) {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.devices[deviceID]
	if !ok {
		return DeviceStatus{}, false
	}
	return s.snapshotLocked(d, now), true
}

// List returns snapshots of every known device record.
// The online flag is recomputed for each entry at call time.
func (s *Store) List() []DeviceStatus {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]DeviceStatus, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, s.snapshotLocked(d, now))
	}
	return out
}

// RecordEvent bumps the device's offline-event counter and last event time.
// The record is created first when the device was never seen.
//
// Journaling is server-side bookkeeping, not proof of life: LastActive is
// never advanced here. Otherwise journaling a DEVICE_OFFLINE event would
// resurrect the silent device and the presence verdict would flap.
func (s *Store) RecordEvent(deviceID string) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.ensureLocked(deviceID)
	d.OfflineEventsCount++
	d.LastEventTime = now
}

// MarkSynced records a successful configuration sync for the device.
// The record is created first when the device was never seen. Syncs are
// server-initiated, so LastActive is left alone.
func (s *Store) MarkSynced(deviceID string) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLocked(deviceID).LastSync = now
}

// SetOfflineMode toggles the device's offline-mode flag.
// The record is created first when the device was never seen.
func (s *Store) SetOfflineMode(deviceID string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureLocked(deviceID).OfflineModeEnabled = enabled
}

// ensureLocked returns the device record, creating it with defaults when
// absent. A record created here has a zero LastActive, so the device stays
// offline until it sends something itself. Caller must hold mu.
func (s *Store) ensureLocked(deviceID string) *DeviceStatus {
	d, ok := s.devices[deviceID]
	if !ok {
		d = &DeviceStatus{
			DeviceID:           deviceID,
			OfflineModeEnabled: true,
			LocalConfigVersion: defaultLocalConfigVersion,
			DeviceType:         defaultDeviceType,
			FirmwareVersion:    defaultFirmwareVersion,
		}
		s.devices[deviceID] = d
	}
	return d
}

// isOnlineLocked derives the online verdict. Caller must hold mu.
func (s *Store) isOnlineLocked(d *DeviceStatus, now time.Time) bool {
	return now.Sub(d.LastActive) <= s.onlineTimeout
}

// snapshotLocked copies a record with the online flag derived. Caller must hold mu.
func (s *Store) snapshotLocked(d *DeviceStatus, now time.Time) DeviceStatus {
	out := *d
	out.Online = s.isOnlineLocked(d, now)
	return out
}
