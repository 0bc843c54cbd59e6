package journal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mockRepository records inserts without a database.
type mockRepository struct {
	Repository

	mu        sync.Mutex
	inserted  []Event
	insertErr error
	nextID    int64
}

func (m *mockRepository) Insert(_ context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.insertErr != nil {
		return m.insertErr
	}
	m.nextID++
	event.ID = m.nextID
	m.inserted = append(m.inserted, *event)
	return nil
}

// countingPresence records RecordEvent calls.
type countingPresence struct {
	mu    sync.Mutex
	calls map[string]int
}

func (p *countingPresence) RecordEvent(deviceID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.calls == nil {
		p.calls = make(map[string]int)
	}
	p.calls[deviceID]++
}

func TestAppendAssignsServerTime(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil)

	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	event, err := svc.Append(context.Background(), "box-001", EventMedicineTaken, `{"medicineName":"未知药品"}`, "服药确认")
	if err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if !event.EventTime.Equal(fixed) {
		t.Errorf("EventTime = %v, want server-assigned %v", event.EventTime, fixed)
	}
	if event.ID == 0 {
		t.Error("Append() did not backfill the event ID")
	}
	if event.Processed {
		t.Error("new event must start unprocessed")
	}
}

func TestAppendBumpsPresenceCounter(t *testing.T) {
	repo := &mockRepository{}
	presence := &countingPresence{}
	svc := NewService(repo, presence)

	for i := 0; i < 3; i++ {
		if _, err := svc.Append(context.Background(), "box-001", EventDeviceWarning, "", ""); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}

	if presence.calls["box-001"] != 3 {
		t.Errorf("presence RecordEvent calls = %d, want 3", presence.calls["box-001"])
	}
}

func TestAppendInsertFailureSkipsPresence(t *testing.T) {
	wantErr := errors.New("disk full")
	repo := &mockRepository{insertErr: wantErr}
	presence := &countingPresence{}
	svc := NewService(repo, presence)

	_, err := svc.Append(context.Background(), "box-001", EventDeviceError, "", "")
	if !errors.Is(err, wantErr) {
		t.Fatalf("Append() error = %v, want wrapped %v", err, wantErr)
	}

	if len(presence.calls) != 0 {
		t.Error("presence counter bumped despite failed insert")
	}
}

func TestAppendNeverDedupes(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil)

	for i := 0; i < 2; i++ {
		if _, err := svc.Append(context.Background(), "box-001", EventMedicineTaken, "same", "same"); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}

	if len(repo.inserted) != 2 {
		t.Errorf("inserted rows = %d, want 2 (duplicates are kept)", len(repo.inserted))
	}
}
