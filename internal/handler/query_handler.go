package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shiva/rsvp/internal/model"
	"github.com/shiva/rsvp/internal/stream"
)

// queryRequest is the wire shape for POST /api/v1/reservations/query.
type queryRequest struct {
	UserID     string    `json:"user_id"`
	ResourceID string    `json:"resource_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Status     int32     `json:"status"`
	Page       int32     `json:"page"`
	PageSize   int32     `json:"page_size"`
	IsDesc     bool      `json:"is_desc"`
}

// Query handles POST /api/v1/reservations/query. Unlike every other route
// it does not use writeJSON: the body is a stream of newline-delimited JSON
// objects written as the cursor produces them, not a single JSON value.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	q := model.ReservationQuery{
		UserID:     req.UserID,
		ResourceID: req.ResourceID,
		Start:      req.Start,
		End:        req.End,
		Status:     model.ReservationStatus(req.Status),
		Page:       req.Page,
		PageSize:   req.PageSize,
		IsDesc:     req.IsDesc,
	}

	results, err := h.manager.Query(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	stream.WriteNDJSON(w, r, results)
}
