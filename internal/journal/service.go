package journal

import (
	"context"
	"fmt"
	"time"
)

// PresenceRecorder receives the journal's per-device event counter side
// effect. Satisfied by presence.Store.
type PresenceRecorder interface {
	RecordEvent(deviceID string)
}

// Service owns the journal's ordering and idempotency contract.
//
// Append never dedupes: the transport may redeliver, and duplicate rows
// are preferred over lost ones. Delivery tracking is one-way; a processed
// row never becomes unprocessed again.
type Service struct {
	repo     Repository
	presence PresenceRecorder

	// now is injectable for tests.
	now func() time.Time
}

// NewService creates a journal service.
// presence may be nil when no counter side effect is wanted.
func NewService(repo Repository, presence PresenceRecorder) *Service {
	return &Service{
		repo:     repo,
		presence: presence,
		now:      time.Now,
	}
}

// Append records one event with a server-assigned timestamp.
//
// The returned event carries the database-assigned ID. On success the
// device's presence event counter is bumped.
func (s *Service) Append(ctx context.Context, deviceID string, eventType EventType, eventData, description string) (Event, error) {
	event := Event{
		DeviceID:    deviceID,
		EventTime:   s.now().UTC(),
		EventType:   eventType,
		EventData:   eventData,
		Description: description,
	}

	if err := s.repo.Insert(ctx, &event); err != nil {
		return Event{}, fmt.Errorf("appending %s event: %w", eventType, err)
	}

	if s.presence != nil {
		s.presence.RecordEvent(deviceID)
	}

	return event, nil
}

// ListByDevice returns all events for a device, newest first.
func (s *Service) ListByDevice(ctx context.Context, deviceID string) ([]Event, error) {
	return s.repo.ListByDevice(ctx, deviceID)
}

// ListByDeviceAndType returns a device's events of one type, newest first.
func (s *Service) ListByDeviceAndType(ctx context.Context, deviceID string, eventType EventType) ([]Event, error) {
	return s.repo.ListByDeviceAndType(ctx, deviceID, eventType)
}

// ListByDeviceRange returns a device's events inside a time window, newest first.
func (s *Service) ListByDeviceRange(ctx context.Context, deviceID string, from, to time.Time) ([]Event, error) {
	return s.repo.ListByDeviceRange(ctx, deviceID, from, to)
}

// ListUnprocessed returns every undelivered event, oldest first.
func (s *Service) ListUnprocessed(ctx context.Context) ([]Event, error) {
	return s.repo.ListUnprocessed(ctx)
}

// ListUnprocessedByDevice returns a device's undelivered events, oldest first.
func (s *Service) ListUnprocessedByDevice(ctx context.Context, deviceID string) ([]Event, error) {
	return s.repo.ListUnprocessedByDevice(ctx, deviceID)
}

// MarkProcessed marks one event delivered. Idempotent; unknown IDs are a no-op.
func (s *Service) MarkProcessed(ctx context.Context, id int64) error {
	return s.repo.MarkProcessed(ctx, id)
}

// MarkAllProcessedForDevice marks every pending event for a device delivered.
func (s *Service) MarkAllProcessedForDevice(ctx context.Context, deviceID string) (int64, error) {
	return s.repo.MarkAllProcessedForDevice(ctx, deviceID)
}

// PurgeDevice deletes every event for a device.
func (s *Service) PurgeDevice(ctx context.Context, deviceID string) (int64, error) {
	return s.repo.PurgeDevice(ctx, deviceID)
}
