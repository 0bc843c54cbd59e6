package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxHistorySize caps each history. The oldest entries are evicted.
const maxHistorySize = 100

// globalKey is the internal history key for fleet-wide notifications.
const globalKey = "all"

// Sink receives live notifications. Satisfied by the websocket hub.
//
// Broadcast must not block; implementations drop slow listeners rather
// than stalling the publisher.
type Sink interface {
	Broadcast(channel string, payload any)
}

// Logger is the narrow logging interface used by the Service.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Service publishes notifications and keeps bounded histories.
//
// All public methods are thread-safe. History accessors return copies.
type Service struct {
	mu        sync.RWMutex
	histories map[string][]Notification

	sink   Sink
	logger Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewService creates a notification service.
// sink may be nil; publishing then only records history.
func NewService(sink Sink) *Service {
	return &Service{
		histories: make(map[string][]Notification),
		sink:      sink,
		logger:    noopLogger{},
		now:       time.Now,
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// Publish assigns the notification an ID and timestamp, records it in the
// global history (and the device history when targeted), and pushes it to
// live listeners. Publishing with no listeners is a no-op beyond history.
func (s *Service) Publish(n Notification) Notification {
	n.ID = uuid.New().String()
	n.Timestamp = s.now()
	n.Read = false

	s.mu.Lock()
	s.insertLocked(globalKey, n)
	if n.DeviceID != "" {
		s.insertLocked(n.DeviceID, n)
	}
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.Broadcast(GlobalChannel, n)
		if n.DeviceID != "" {
			s.sink.Broadcast(DeviceChannel(n.DeviceID), n)
		}
	}

	s.logger.Debug("notification published",
		"id", n.ID,
		"device_id", n.DeviceID,
		"severity", n.Severity,
		"title", n.Title,
	)

	return n
}

// insertLocked prepends to one history, evicting past the cap. Caller must hold mu.
func (s *Service) insertLocked(key string, n Notification) {
	history := s.histories[key]
	history = append([]Notification{n}, history...)
	if len(history) > maxHistorySize {
		history = history[:maxHistorySize]
	}
	s.histories[key] = history
}

// History returns a newest-first copy of a device's history.
// An empty deviceID selects the global history.
func (s *Service) History(deviceID string) []Notification {
	key := deviceID
	if key == "" {
		key = globalKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.histories[key]
	out := make([]Notification, len(history))
	copy(out, history)
	return out
}

// MarkRead marks a notification read in every history it appears in.
// Unknown IDs are a silent no-op.
func (s *Service) MarkRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, history := range s.histories {
		for i := range history {
			if history[i].ID == id {
				s.histories[key][i].Read = true
			}
		}
	}
}

// Clear drops a device's history. An empty deviceID clears the global one.
func (s *Service) Clear(deviceID string) {
	key := deviceID
	if key == "" {
		key = globalKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.histories, key)
}
