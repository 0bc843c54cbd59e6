package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListDevices returns the presence snapshot for every known device.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.presence.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

// handleGetDevice returns the presence snapshot for a single device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")

	status, ok := s.presence.Get(deviceID)
	if !ok {
		writeNotFound(w, "device not found")
		return
	}

	resp := map[string]any{"device": status}
	if s.orchestrator != nil {
		resp["emergency"] = s.orchestrator.IsEmergency(deviceID)
	}
	writeJSON(w, http.StatusOK, resp)
}

// offlineModeRequest is the body of PUT /devices/{id}/offline-mode.
type offlineModeRequest struct {
	Enabled bool `json:"enabled"`
}

// handleSetOfflineMode toggles a device's offline journaling mode.
func (s *Server) handleSetOfflineMode(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")

	var req offlineModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if _, ok := s.presence.Get(deviceID); !ok {
		writeNotFound(w, "device not found")
		return
	}

	s.presence.SetOfflineMode(deviceID, req.Enabled)
	writeJSON(w, http.StatusOK, map[string]any{
		"deviceId":           deviceID,
		"offlineModeEnabled": req.Enabled,
	})
}
