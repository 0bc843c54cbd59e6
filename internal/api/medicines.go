package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medboxlab/medbox-core/internal/medicine"
)

// medicineRequest is the body of medicine create/update requests.
type medicineRequest struct {
	Name    string `json:"name"`
	Dosage  string `json:"dosage"`
	Hour    int    `json:"hour"`
	Minute  int    `json:"minute"`
	BoxNum  int    `json:"boxNum"`
	Enabled bool   `json:"enabled"`
}

// handleListMedicines returns a device's medication schedule.
// With ?active=true only enabled entries are returned.
func (s *Server) handleListMedicines(w http.ResponseWriter, r *http.Request) {
	if s.medicines == nil {
		writeNotFound(w, "medicine store not configured")
		return
	}
	deviceID := chi.URLParam(r, "id")

	var (
		meds []medicine.Medicine
		err  error
	)
	if r.URL.Query().Get("active") == "true" {
		meds, err = s.medicines.ListActiveByDevice(r.Context(), deviceID)
	} else {
		meds, err = s.medicines.ListByDevice(r.Context(), deviceID)
	}
	if err != nil {
		s.logger.Error("listing medicines failed", "device_id", deviceID, "error", err)
		writeInternalError(w, "failed to list medicines")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"medicines": meds,
		"count":     len(meds),
	})
}

// handleCreateMedicine adds a medication schedule entry to a device.
func (s *Server) handleCreateMedicine(w http.ResponseWriter, r *http.Request) {
	if s.medicines == nil {
		writeNotFound(w, "medicine store not configured")
		return
	}
	deviceID := chi.URLParam(r, "id")

	var req medicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	m := &medicine.Medicine{
		DeviceID: deviceID,
		Name:     req.Name,
		Dosage:   req.Dosage,
		Hour:     req.Hour,
		Minute:   req.Minute,
		BoxNum:   req.BoxNum,
		Enabled:  req.Enabled,
	}
	if err := s.medicines.Create(r.Context(), m); err != nil {
		writeMedicineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

// handleGetMedicine returns one medicine record by its ID.
func (s *Server) handleGetMedicine(w http.ResponseWriter, r *http.Request) {
	if s.medicines == nil {
		writeNotFound(w, "medicine store not configured")
		return
	}

	m, err := s.medicines.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeMedicineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleUpdateMedicine replaces a medicine record's mutable fields.
func (s *Server) handleUpdateMedicine(w http.ResponseWriter, r *http.Request) {
	if s.medicines == nil {
		writeNotFound(w, "medicine store not configured")
		return
	}

	m, err := s.medicines.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeMedicineError(w, err)
		return
	}

	var req medicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	m.Name = req.Name
	m.Dosage = req.Dosage
	m.Hour = req.Hour
	m.Minute = req.Minute
	m.BoxNum = req.BoxNum
	m.Enabled = req.Enabled

	if err := s.medicines.Update(r.Context(), m); err != nil {
		writeMedicineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleDeleteMedicine removes a medicine record.
func (s *Server) handleDeleteMedicine(w http.ResponseWriter, r *http.Request) {
	if s.medicines == nil {
		writeNotFound(w, "medicine store not configured")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.medicines.Delete(r.Context(), id); err != nil {
		writeMedicineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

// writeMedicineError maps medicine store errors onto HTTP responses.
func writeMedicineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, medicine.ErrNotFound):
		writeNotFound(w, "medicine not found")
	case errors.Is(err, medicine.ErrDeviceIDRequired),
		errors.Is(err, medicine.ErrNameRequired),
		errors.Is(err, medicine.ErrInvalidSchedule):
		writeBadRequest(w, err.Error())
	default:
		writeInternalError(w, "medicine operation failed")
	}
}
