package journal

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory database with the offline_events schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // test cleanup
	})

	schema := `
		CREATE TABLE offline_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id TEXT NOT NULL,
			event_time TEXT NOT NULL,
			event_type TEXT NOT NULL,
			event_data TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			processed INTEGER NOT NULL DEFAULT 0
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return db
}

func insertTestEvent(t *testing.T, repo *SQLiteRepository, deviceID string, eventType EventType, at time.Time) Event {
	t.Helper()

	event := Event{
		DeviceID:  deviceID,
		EventTime: at,
		EventType: eventType,
	}
	if err := repo.Insert(context.Background(), &event); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	return event
}

func TestInsertAssignsIncreasingIDs(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var prev int64
	for i := 0; i < 5; i++ {
		event := insertTestEvent(t, repo, "box-001", EventMedicineTaken, base.Add(time.Duration(i)*time.Second))
		if event.ID <= prev {
			t.Fatalf("event %d: id %d not greater than previous %d", i, event.ID, prev)
		}
		prev = event.ID
	}
}

func TestInsertValidation(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	err := repo.Insert(context.Background(), &Event{EventType: EventDeviceOnline})
	if !errors.Is(err, ErrDeviceIDRequired) {
		t.Errorf("Insert() without device id error = %v, want ErrDeviceIDRequired", err)
	}

	err = repo.Insert(context.Background(), &Event{DeviceID: "box-001"})
	if !errors.Is(err, ErrEventTypeRequired) {
		t.Errorf("Insert() without event type error = %v, want ErrEventTypeRequired", err)
	}
}

func TestListByDeviceNewestFirst(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	insertTestEvent(t, repo, "box-001", EventDeviceOnline, base)
	insertTestEvent(t, repo, "box-001", EventMedicineTaken, base.Add(time.Minute))
	insertTestEvent(t, repo, "box-002", EventDeviceOnline, base.Add(2*time.Minute))

	events, err := repo.ListByDevice(context.Background(), "box-001")
	if err != nil {
		t.Fatalf("ListByDevice() error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("ListByDevice() returned %d events, want 2", len(events))
	}
	if events[0].EventType != EventMedicineTaken {
		t.Errorf("first event = %s, want newest (MEDICINE_TAKEN)", events[0].EventType)
	}
	if !events[0].EventTime.After(events[1].EventTime) {
		t.Error("events not ordered newest first")
	}
}

func TestListByDeviceAndType(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	insertTestEvent(t, repo, "box-001", EventDeviceOnline, base)
	insertTestEvent(t, repo, "box-001", EventMedicineTaken, base.Add(time.Minute))
	insertTestEvent(t, repo, "box-001", EventMedicineTaken, base.Add(2*time.Minute))

	events, err := repo.ListByDeviceAndType(context.Background(), "box-001", EventMedicineTaken)
	if err != nil {
		t.Fatalf("ListByDeviceAndType() error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("returned %d events, want 2", len(events))
	}
	for _, e := range events {
		if e.EventType != EventMedicineTaken {
			t.Errorf("event type = %s, want MEDICINE_TAKEN", e.EventType)
		}
	}
}

func TestListByDeviceRange(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	insertTestEvent(t, repo, "box-001", EventDeviceOnline, base)
	inRange := insertTestEvent(t, repo, "box-001", EventMedicineTaken, base.Add(time.Hour))
	insertTestEvent(t, repo, "box-001", EventDeviceOffline, base.Add(2*time.Hour))

	events, err := repo.ListByDeviceRange(context.Background(), "box-001",
		base.Add(30*time.Minute), base.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("ListByDeviceRange() error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("returned %d events, want 1", len(events))
	}
	if events[0].ID != inRange.ID {
		t.Errorf("returned event id = %d, want %d", events[0].ID, inRange.ID)
	}
}

func TestUnprocessedLifecycle(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	first := insertTestEvent(t, repo, "box-001", EventDeviceOffline, base)
	second := insertTestEvent(t, repo, "box-001", EventMedicineTaken, base.Add(time.Minute))

	pending, err := repo.ListUnprocessedByDevice(context.Background(), "box-001")
	if err != nil {
		t.Fatalf("ListUnprocessedByDevice() error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].ID != first.ID {
		t.Error("unprocessed events not ordered oldest first")
	}

	if err := repo.MarkProcessed(context.Background(), first.ID); err != nil {
		t.Fatalf("MarkProcessed() error: %v", err)
	}

	pending, err = repo.ListUnprocessedByDevice(context.Background(), "box-001")
	if err != nil {
		t.Fatalf("ListUnprocessedByDevice() error: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Fatalf("pending after MarkProcessed = %+v, want only second event", pending)
	}
}

func TestMarkProcessedIdempotent(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	event := insertTestEvent(t, repo, "box-001", EventDeviceOffline, time.Now().UTC())

	// Marking twice, and marking an ID that never existed, must all succeed.
	for _, id := range []int64{event.ID, event.ID, 99999} {
		if err := repo.MarkProcessed(context.Background(), id); err != nil {
			t.Errorf("MarkProcessed(%d) error: %v", id, err)
		}
	}

	pending, err := repo.ListUnprocessed(context.Background())
	if err != nil {
		t.Fatalf("ListUnprocessed() error: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
}

func TestMarkAllProcessedForDevice(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	insertTestEvent(t, repo, "box-001", EventDeviceOffline, base)
	insertTestEvent(t, repo, "box-001", EventMedicineTaken, base.Add(time.Minute))
	insertTestEvent(t, repo, "box-002", EventDeviceOffline, base)

	affected, err := repo.MarkAllProcessedForDevice(context.Background(), "box-001")
	if err != nil {
		t.Fatalf("MarkAllProcessedForDevice() error: %v", err)
	}
	if affected != 2 {
		t.Errorf("affected = %d, want 2", affected)
	}

	pending, err := repo.ListUnprocessed(context.Background())
	if err != nil {
		t.Fatalf("ListUnprocessed() error: %v", err)
	}
	if len(pending) != 1 || pending[0].DeviceID != "box-002" {
		t.Errorf("pending = %+v, want only box-002's event", pending)
	}
}

func TestPurgeDevice(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	insertTestEvent(t, repo, "box-001", EventDeviceOffline, base)
	insertTestEvent(t, repo, "box-002", EventDeviceOffline, base)

	deleted, err := repo.PurgeDevice(context.Background(), "box-001")
	if err != nil {
		t.Fatalf("PurgeDevice() error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	events, err := repo.ListByDevice(context.Background(), "box-001")
	if err != nil {
		t.Fatalf("ListByDevice() error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("events after purge = %d, want 0", len(events))
	}
}
