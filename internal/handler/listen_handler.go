package handler

import "net/http"

// Listen handles GET /api/v1/reservations/listen. Per the Open Question
// decision in DESIGN.md, the reservation_update notification channel exists
// in the schema but nothing consumes it yet, so this endpoint reports that
// plainly rather than pretending to stream.
func (h *Handler) Listen(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "listen is not implemented"})
}
