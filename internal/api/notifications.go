package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medboxlab/medbox-core/internal/events"
)

// handleNotificationHistory returns a bounded notification history.
// Without a device query parameter the global history is returned.
func (s *Server) handleNotificationHistory(w http.ResponseWriter, r *http.Request) {
	if s.notify == nil {
		writeNotFound(w, "notification service not configured")
		return
	}

	deviceID := r.URL.Query().Get("device")
	history := s.notify.History(deviceID)

	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": history,
		"count":         len(history),
	})
}

// handleMarkNotificationRead flags a notification as read in every history
// that holds it.
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if s.notify == nil {
		writeNotFound(w, "notification service not configured")
		return
	}

	id := chi.URLParam(r, "id")
	s.notify.MarkRead(id)
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "read": true})
}

// testNotificationRequest is the body of POST /notifications/test.
type testNotificationRequest struct {
	DeviceID string `json:"deviceId"`
	Type     string `json:"type"`
}

// handleTestNotification fires a synthetic event through the real
// orchestrator path, so operators can check the journal and the live
// notification fan-out end to end without waiting for a device.
func (s *Server) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator == nil {
		writeNotFound(w, "event orchestrator not configured")
		return
	}

	var req testNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.DeviceID == "" {
		writeBadRequest(w, "deviceId is required")
		return
	}

	ctx := r.Context()
	var result events.Result
	switch req.Type {
	case "TEST_MEDICATION_REMINDER":
		result = s.orchestrator.OnMedicationReminder(ctx, req.DeviceID, "测试药品", time.Now().Format("15:04"))
	case "TEST_WARNING":
		result = s.orchestrator.OnDeviceWarning(ctx, req.DeviceID, "测试警告")
	case "TEST_ERROR":
		result = s.orchestrator.OnDeviceError(ctx, req.DeviceID, "测试错误")
	case "TEST_ONLINE":
		result = s.orchestrator.OnDeviceStatusChange(ctx, req.DeviceID, true)
	case "TEST_OFFLINE":
		result = s.orchestrator.OnDeviceStatusChange(ctx, req.DeviceID, false)
	default:
		writeBadRequest(w, "unknown test notification type")
		return
	}

	if !result.Ok() {
		s.logger.Error("test notification failed",
			"device_id", req.DeviceID,
			"type", req.Type,
			"journal_error", result.JournalErr,
			"notify_error", result.NotifyErr,
		)
		writeInternalError(w, "failed to dispatch test notification")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"deviceId": req.DeviceID,
		"type":     req.Type,
		"sent":     true,
	})
}

// handleClearNotifications empties a history. Without a device query
// parameter the global history is cleared.
func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	if s.notify == nil {
		writeNotFound(w, "notification service not configured")
		return
	}

	deviceID := r.URL.Query().Get("device")
	s.notify.Clear(deviceID)
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}
