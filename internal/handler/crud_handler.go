package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shiva/rsvp/internal/model"
)

// reserveRequest is the wire shape for POST /api/v1/reservations. Status is
// the raw wire status code; Manager.Reserve coerces anything outside the
// enumeration to Pending. Omitting it sends the zero value, Unknown, which
// is inside the enumeration and is stored as is.
type reserveRequest struct {
	UserID     string    `json:"user_id"`
	ResourceID string    `json:"resource_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Note       string    `json:"note"`
	Status     int32     `json:"status"`
}

// Reserve handles POST /api/v1/reservations.
func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	rsvp := model.NewPendingReservation(req.UserID, req.ResourceID, req.Start, req.End, req.Note)
	rsvp.Status = model.ReservationStatus(req.Status)

	created, err := h.manager.Reserve(r.Context(), rsvp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Confirm handles POST /api/v1/reservations/{id}/confirm.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rsvp, err := h.manager.ChangeStatus(r.Context(), model.ReservationID(id))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rsvp)
}

// updateNoteRequest is the wire shape for PATCH /api/v1/reservations/{id}.
type updateNoteRequest struct {
	Note string `json:"note"`
}

// UpdateNote handles PATCH /api/v1/reservations/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	rsvp, err := h.manager.UpdateNote(r.Context(), model.ReservationID(id), req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rsvp)
}

// Cancel handles DELETE /api/v1/reservations/{id}. Per the Open Question
// decision in DESIGN.md, this returns no body on success.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.manager.Delete(r.Context(), model.ReservationID(id)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /api/v1/reservations/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rsvp, err := h.manager.Get(r.Context(), model.ReservationID(id))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rsvp)
}
