package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shiva/rsvp/internal/model"
)

// filterRequest is the wire shape for POST /api/v1/reservations/filter.
type filterRequest struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Status     int32  `json:"status"`
	Cursor     int64  `json:"cursor"`
	PageSize   int32  `json:"page_size"`
	IsDesc     bool   `json:"is_desc"`
}

// filterResponse pairs the page of reservations with its pager metadata.
type filterResponse struct {
	Pager        model.FilterPager   `json:"pager"`
	Reservations []model.Reservation `json:"reservations"`
}

// Filter handles POST /api/v1/reservations/filter.
func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	f := model.ReservationFilter{
		UserID:     req.UserID,
		ResourceID: req.ResourceID,
		Status:     model.ReservationStatus(req.Status),
		Cursor:     req.Cursor,
		PageSize:   req.PageSize,
		IsDesc:     req.IsDesc,
	}

	pager, reservations, err := h.manager.Filter(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	if reservations == nil {
		reservations = []model.Reservation{}
	}

	writeJSON(w, http.StatusOK, filterResponse{Pager: pager, Reservations: reservations})
}
