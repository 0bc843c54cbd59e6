package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medboxlab/medbox-core/internal/notify"
)

// handleSyncMedicines pushes a device's active medication schedule to it.
//
// The sync outcome is recorded in the journal and notification history via
// the orchestrator, so operators can see failed pushes without tailing logs.
func (s *Server) handleSyncMedicines(w http.ResponseWriter, r *http.Request) {
	if s.commands == nil || s.medicines == nil {
		writeNotFound(w, "command publisher not configured")
		return
	}
	deviceID := chi.URLParam(r, "id")

	meds, err := s.medicines.ListActiveByDevice(r.Context(), deviceID)
	if err != nil {
		s.logger.Error("loading medicines for sync failed", "device_id", deviceID, "error", err)
		writeInternalError(w, "failed to load medication schedule")
		return
	}

	syncErr := s.commands.SyncMedicines(deviceID, meds)
	if s.orchestrator != nil {
		s.orchestrator.OnConfigSyncResult(r.Context(), deviceID, syncErr == nil)
	}
	if syncErr != nil {
		s.logger.Error("medicine sync publish failed", "device_id", deviceID, "error", syncErr)
		writeInternalError(w, "failed to publish sync")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"deviceId": deviceID,
		"synced":   len(meds),
	})
}

// commandRequest is the body of POST /devices/{id}/command.
type commandRequest struct {
	Command string         `json:"command"`
	Data    map[string]any `json:"data,omitempty"`
}

// handleSendCommand publishes an ad-hoc command to one device.
func (s *Server) handleSendCommand(w http.ResponseWriter, r *http.Request) {
	if s.commands == nil {
		writeNotFound(w, "command publisher not configured")
		return
	}
	deviceID := chi.URLParam(r, "id")

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Command == "" {
		writeBadRequest(w, "command is required")
		return
	}

	if err := s.commands.SendCommand(deviceID, req.Command, req.Data); err != nil {
		s.logger.Error("command publish failed", "device_id", deviceID, "command", req.Command, "error", err)
		writeInternalError(w, "failed to publish command")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"deviceId": deviceID,
		"command":  req.Command,
		"online":   s.presence.IsOnline(deviceID),
	})
}

// broadcastRequest is the body of POST /broadcast.
type broadcastRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// handleBroadcast publishes a message to the whole fleet. Admin only.
func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	if s.commands == nil {
		writeNotFound(w, "command publisher not configured")
		return
	}

	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeBadRequest(w, "message is required")
		return
	}

	if err := s.commands.Broadcast(req.Message); err != nil {
		s.logger.Error("broadcast publish failed", "error", err)
		writeInternalError(w, "failed to publish broadcast")
		return
	}

	if s.notify != nil {
		s.notify.Publish(notify.Broadcast(req.Title, req.Message))
	}

	writeJSON(w, http.StatusOK, map[string]any{"broadcast": true})
}
