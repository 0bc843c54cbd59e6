package presence

import (
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests control the store's notion of now.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *fakeClock) Rewind(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(-d)
}

func newTestStore() (*Store, *fakeClock) {
	clock := newFakeClock()
	s := NewStore(DefaultOnlineTimeout)
	s.now = clock.Now
	return s, clock
}

func TestTouchCreatesRecordWithDefaults(t *testing.T) {
	s, _ := newTestStore()

	s.Touch("box-001")

	d, ok := s.Get("box-001")
	if !ok {
		t.Fatal("Get() ok = false after Touch")
	}
	if !d.Online {
		t.Error("Online = false immediately after Touch")
	}
	if !d.OfflineModeEnabled {
		t.Error("OfflineModeEnabled = false, want true by default")
	}
	if d.DeviceType != "medicinebox" {
		t.Errorf("DeviceType = %q, want medicinebox", d.DeviceType)
	}
	if d.FirmwareVersion != "V8.3" {
		t.Errorf("FirmwareVersion = %q, want V8.3", d.FirmwareVersion)
	}
	if d.LocalConfigVersion != "1.0" {
		t.Errorf("LocalConfigVersion = %q, want 1.0", d.LocalConfigVersion)
	}
}

func TestIsOnlineUnknownDevice(t *testing.T) {
	s, _ := newTestStore()

	if s.IsOnline("never-seen") {
		t.Error("IsOnline() = true for unknown device, want false")
	}
}

func TestOnlineExpiresAfterTimeout(t *testing.T) {
	s, clock := newTestStore()

	s.Touch("box-001")

	clock.Advance(DefaultOnlineTimeout)
	if !s.IsOnline("box-001") {
		t.Error("IsOnline() = false exactly at the timeout boundary, want true")
	}

	clock.Advance(time.Second)
	if s.IsOnline("box-001") {
		t.Error("IsOnline() = true past the timeout, want false")
	}
}

func TestTouchRevivesOfflineDevice(t *testing.T) {
	s, clock := newTestStore()

	s.Touch("box-001")
	clock.Advance(2 * DefaultOnlineTimeout)

	if s.IsOnline("box-001") {
		t.Fatal("device should be offline before the new heartbeat")
	}

	s.Touch("box-001")
	if !s.IsOnline("box-001") {
		t.Error("IsOnline() = false after fresh Touch, want true")
	}
}

func TestTouchNeverRewindsLastActive(t *testing.T) {
	s, clock := newTestStore()

	s.Touch("box-001")
	first, _ := s.Get("box-001")

	// A late-delivered heartbeat carries an older clock reading.
	clock.Rewind(30 * time.Second)
	s.Touch("box-001")

	after, _ := s.Get("box-001")
	if after.LastActive.Before(first.LastActive) {
		t.Errorf("LastActive rewound from %v to %v", first.LastActive, after.LastActive)
	}
}

func TestListReturnsSnapshotCopies(t *testing.T) {
	s, _ := newTestStore()

	s.Touch("box-001")
	s.Touch("box-002")

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("List() returned %d entries, want 2", len(list))
	}

	// Mutating the snapshot must not affect the store.
	list[0].OfflineEventsCount = 999
	for _, id := range []string{"box-001", "box-002"} {
		d, _ := s.Get(id)
		if d.OfflineEventsCount != 0 {
			t.Errorf("store record %s mutated through snapshot", id)
		}
	}
}

func TestListRecomputesOnline(t *testing.T) {
	s, clock := newTestStore()

	s.Touch("box-old")
	clock.Advance(2 * DefaultOnlineTimeout)
	s.Touch("box-new")

	for _, d := range s.List() {
		switch d.DeviceID {
		case "box-old":
			if d.Online {
				t.Error("box-old reported online, want offline")
			}
		case "box-new":
			if !d.Online {
				t.Error("box-new reported offline, want online")
			}
		}
	}
}

func TestRecordEvent(t *testing.T) {
	s, _ := newTestStore()

	s.RecordEvent("box-001")
	s.RecordEvent("box-001")

	d, ok := s.Get("box-001")
	if !ok {
		t.Fatal("RecordEvent should create the record")
	}
	if d.OfflineEventsCount != 2 {
		t.Errorf("OfflineEventsCount = %d, want 2", d.OfflineEventsCount)
	}
	if d.LastEventTime.IsZero() {
		t.Error("LastEventTime not set")
	}
}

func TestMarkSynced(t *testing.T) {
	s, _ := newTestStore()

	s.MarkSynced("box-001")

	d, _ := s.Get("box-001")
	if d.LastSync.IsZero() {
		t.Error("LastSync not set after MarkSynced")
	}
}

func TestSetOfflineMode(t *testing.T) {
	s, _ := newTestStore()

	s.SetOfflineMode("box-001", false)

	d, _ := s.Get("box-001")
	if d.OfflineModeEnabled {
		t.Error("OfflineModeEnabled = true after disabling")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s, _ := newTestStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Touch("box-001")
				s.IsOnline("box-001")
				s.List()
				s.RecordEvent("box-002")
			}
		}()
	}
	wg.Wait()

	d, _ := s.Get("box-002")
	if d.OfflineEventsCount != 1000 {
		t.Errorf("OfflineEventsCount = %d, want 1000", d.OfflineEventsCount)
	}
}

func TestRecordEventIsNotActivity(t *testing.T) {
	s, clock := newTestStore()

	// An event record for a never-seen device must not mark it online.
	s.RecordEvent("box-001")
	if s.IsOnline("box-001") {
		t.Error("RecordEvent on an unknown device marked it online")
	}

	// A device that went silent stays offline even while events about it
	// are being journaled.
	s.Touch("box-001")
	clock.Advance(DefaultOnlineTimeout + time.Second)
	if s.IsOnline("box-001") {
		t.Fatal("device should be offline after the timeout")
	}

	s.RecordEvent("box-001")
	if s.IsOnline("box-001") {
		t.Error("RecordEvent resurrected a silent device")
	}

	d, _ := s.Get("box-001")
	if d.OfflineEventsCount != 2 {
		t.Errorf("OfflineEventsCount = %d, want 2", d.OfflineEventsCount)
	}
}

func TestMarkSyncedIsNotActivity(t *testing.T) {
	s, clock := newTestStore()

	s.Touch("box-001")
	clock.Advance(DefaultOnlineTimeout + time.Second)

	s.MarkSynced("box-001")
	if s.IsOnline("box-001") {
		t.Error("MarkSynced resurrected a silent device")
	}
}
