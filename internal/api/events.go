package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medboxlab/medbox-core/internal/journal"
)

// handleListDeviceEvents returns a device's journal, newest first.
//
// Optional query parameters:
//   - type: filter by event type (e.g. EMERGENCY)
//   - from, to: RFC3339 timestamps bounding the window (both required together)
func (s *Server) handleListDeviceEvents(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")
	q := r.URL.Query()

	if eventType := q.Get("type"); eventType != "" {
		events, err := s.journal.ListByDeviceAndType(r.Context(), deviceID, journal.EventType(eventType))
		if err != nil {
			s.logger.Error("listing events by type failed", "device_id", deviceID, "error", err)
			writeInternalError(w, "failed to list events")
			return
		}
		writeEventList(w, events)
		return
	}

	fromStr, toStr := q.Get("from"), q.Get("to")
	if fromStr != "" || toStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			writeBadRequest(w, "invalid from timestamp, want RFC3339")
			return
		}
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			writeBadRequest(w, "invalid to timestamp, want RFC3339")
			return
		}
		events, err := s.journal.ListByDeviceRange(r.Context(), deviceID, from, to)
		if err != nil {
			s.logger.Error("listing events by range failed", "device_id", deviceID, "error", err)
			writeInternalError(w, "failed to list events")
			return
		}
		writeEventList(w, events)
		return
	}

	events, err := s.journal.ListByDevice(r.Context(), deviceID)
	if err != nil {
		s.logger.Error("listing events failed", "device_id", deviceID, "error", err)
		writeInternalError(w, "failed to list events")
		return
	}
	writeEventList(w, events)
}

// handleListUnprocessedEvents returns a device's unprocessed events, oldest first.
func (s *Server) handleListUnprocessedEvents(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")

	events, err := s.journal.ListUnprocessedByDevice(r.Context(), deviceID)
	if err != nil {
		s.logger.Error("listing unprocessed events failed", "device_id", deviceID, "error", err)
		writeInternalError(w, "failed to list unprocessed events")
		return
	}
	writeEventList(w, events)
}

// handleListAllUnprocessed returns unprocessed events across all devices.
func (s *Server) handleListAllUnprocessed(w http.ResponseWriter, r *http.Request) {
	events, err := s.journal.ListUnprocessed(r.Context())
	if err != nil {
		s.logger.Error("listing unprocessed events failed", "error", err)
		writeInternalError(w, "failed to list unprocessed events")
		return
	}
	writeEventList(w, events)
}

// handleMarkProcessed flags a single journal entry as processed.
// Repeated calls succeed; the flag is one-way.
func (s *Server) handleMarkProcessed(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid event ID")
		return
	}

	if err := s.journal.MarkProcessed(r.Context(), id); err != nil {
		s.logger.Error("marking event processed failed", "event_id", id, "error", err)
		writeInternalError(w, "failed to mark event processed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "processed": true})
}

// handleMarkAllProcessed flags every unprocessed event for a device.
func (s *Server) handleMarkAllProcessed(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")

	count, err := s.journal.MarkAllProcessedForDevice(r.Context(), deviceID)
	if err != nil {
		s.logger.Error("marking all events processed failed", "device_id", deviceID, "error", err)
		writeInternalError(w, "failed to mark events processed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deviceId": deviceID, "processed": count})
}

// handlePurgeDeviceEvents deletes a device's entire journal.
func (s *Server) handlePurgeDeviceEvents(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")

	count, err := s.journal.PurgeDevice(r.Context(), deviceID)
	if err != nil {
		s.logger.Error("purging events failed", "device_id", deviceID, "error", err)
		writeInternalError(w, "failed to purge events")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deviceId": deviceID, "deleted": count})
}

// writeEventList writes a journal slice in the standard list envelope.
func writeEventList(w http.ResponseWriter, events []journal.Event) {
	writeJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}
