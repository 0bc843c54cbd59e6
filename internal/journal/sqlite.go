package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository defines persistence for journal events.
type Repository interface {
	Insert(ctx context.Context, event *Event) error
	ListByDevice(ctx context.Context, deviceID string) ([]Event, error)
	ListByDeviceAndType(ctx context.Context, deviceID string, eventType EventType) ([]Event, error)
	ListByDeviceRange(ctx context.Context, deviceID string, from, to time.Time) ([]Event, error)
	ListUnprocessed(ctx context.Context) ([]Event, error)
	ListUnprocessedByDevice(ctx context.Context, deviceID string) ([]Event, error)
	MarkProcessed(ctx context.Context, id int64) error
	MarkAllProcessedForDevice(ctx context.Context, deviceID string) (int64, error)
	PurgeDevice(ctx context.Context, deviceID string) (int64, error)
}

// SQLiteRepository implements Repository using SQLite.
//
// Timestamps are stored as RFC3339 UTC strings, which keeps string
// comparison and chronological comparison equivalent.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a journal repository on an open connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const eventColumns = "id, device_id, event_time, event_type, event_data, description, processed"

// Insert appends one event row and backfills the assigned ID.
func (r *SQLiteRepository) Insert(ctx context.Context, event *Event) error {
	if event.DeviceID == "" {
		return ErrDeviceIDRequired
	}
	if event.EventType == "" {
		return ErrEventTypeRequired
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO offline_events (device_id, event_time, event_type, event_data, description, processed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.DeviceID,
		event.EventTime.UTC().Format(time.RFC3339),
		string(event.EventType),
		event.EventData,
		event.Description,
		boolToInt(event.Processed),
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted event id: %w", err)
	}
	event.ID = id

	return nil
}

// ListByDevice returns all events for a device, newest first.
func (r *SQLiteRepository) ListByDevice(ctx context.Context, deviceID string) ([]Event, error) {
	if deviceID == "" {
		return nil, ErrDeviceIDRequired
	}

	return r.queryEvents(ctx,
		`SELECT `+eventColumns+`
		 FROM offline_events
		 WHERE device_id = ?
		 ORDER BY event_time DESC, id DESC`,
		deviceID,
	)
}

// ListByDeviceAndType returns a device's events of one type, newest first.
func (r *SQLiteRepository) ListByDeviceAndType(ctx context.Context, deviceID string, eventType EventType) ([]Event, error) {
	if deviceID == "" {
		return nil, ErrDeviceIDRequired
	}
	if eventType == "" {
		return nil, ErrEventTypeRequired
	}

	return r.queryEvents(ctx,
		`SELECT `+eventColumns+`
		 FROM offline_events
		 WHERE device_id = ? AND event_type = ?
		 ORDER BY event_time DESC, id DESC`,
		deviceID,
		string(eventType),
	)
}

// ListByDeviceRange returns a device's events inside [from, to], newest first.
func (r *SQLiteRepository) ListByDeviceRange(ctx context.Context, deviceID string, from, to time.Time) ([]Event, error) {
	if deviceID == "" {
		return nil, ErrDeviceIDRequired
	}

	return r.queryEvents(ctx,
		`SELECT `+eventColumns+`
		 FROM offline_events
		 WHERE device_id = ? AND event_time >= ? AND event_time <= ?
		 ORDER BY event_time DESC, id DESC`,
		deviceID,
		from.UTC().Format(time.RFC3339),
		to.UTC().Format(time.RFC3339),
	)
}

// ListUnprocessed returns every undelivered event, oldest first.
// Oldest-first matches the catch-up consumption order.
func (r *SQLiteRepository) ListUnprocessed(ctx context.Context) ([]Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+`
		 FROM offline_events
		 WHERE processed = 0
		 ORDER BY event_time ASC, id ASC`,
	)
}

// ListUnprocessedByDevice returns a device's undelivered events, oldest first.
func (r *SQLiteRepository) ListUnprocessedByDevice(ctx context.Context, deviceID string) ([]Event, error) {
	if deviceID == "" {
		return nil, ErrDeviceIDRequired
	}

	return r.queryEvents(ctx,
		`SELECT `+eventColumns+`
		 FROM offline_events
		 WHERE device_id = ? AND processed = 0
		 ORDER BY event_time ASC, id ASC`,
		deviceID,
	)
}

// MarkProcessed flips one event's processed flag.
// Unknown or already-processed IDs are a silent no-op.
func (r *SQLiteRepository) MarkProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE offline_events SET processed = 1 WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("marking event processed: %w", err)
	}
	return nil
}

// MarkAllProcessedForDevice flips every unprocessed event for a device.
// Returns the number of rows changed.
func (r *SQLiteRepository) MarkAllProcessedForDevice(ctx context.Context, deviceID string) (int64, error) {
	if deviceID == "" {
		return 0, ErrDeviceIDRequired
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE offline_events SET processed = 1 WHERE device_id = ? AND processed = 0",
		deviceID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking device events processed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return affected, nil
}

// PurgeDevice deletes every event for a device.
// This is an administrative operation, not part of normal flow.
func (r *SQLiteRepository) PurgeDevice(ctx context.Context, deviceID string) (int64, error) {
	if deviceID == "" {
		return 0, ErrDeviceIDRequired
	}

	res, err := r.db.ExecContext(ctx,
		"DELETE FROM offline_events WHERE device_id = ?",
		deviceID,
	)
	if err != nil {
		return 0, fmt.Errorf("purging device events: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}
	return affected, nil
}

// queryEvents runs a SELECT over offline_events and scans the rows.
func (r *SQLiteRepository) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event     Event
			eventTime string
			eventType string
			processed int
		)

		if err := rows.Scan(&event.ID, &event.DeviceID, &eventTime, &eventType, &event.EventData, &event.Description, &processed); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}

		ts, err := time.Parse(time.RFC3339, eventTime)
		if err != nil {
			return nil, fmt.Errorf("parsing event time %q: %w", eventTime, err)
		}
		event.EventTime = ts
		event.EventType = EventType(eventType)
		event.Processed = processed != 0

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return events, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
