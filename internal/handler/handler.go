// Package handler is the RPC dispatch layer: it mounts the reservation
// system's JSON HTTP surface on a gorilla/mux router (see the Open Question
// note in DESIGN.md for why this repo speaks HTTP+JSON rather than gRPC).
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/shiva/rsvp/internal/reservation"
	"github.com/shiva/rsvp/internal/rsvperr"
)

// Handler holds the dependencies every reservation route needs.
type Handler struct {
	manager *reservation.Manager
}

// New builds a Handler backed by manager.
func New(manager *reservation.Manager) *Handler {
	return &Handler{manager: manager}
}

// Mount registers every reservation route on router.
func (h *Handler) Mount(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/reservations", h.Reserve).Methods(http.MethodPost)
	api.HandleFunc("/reservations/query", h.Query).Methods(http.MethodPost)
	api.HandleFunc("/reservations/filter", h.Filter).Methods(http.MethodPost)
	api.HandleFunc("/reservations/listen", h.Listen).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id}/confirm", h.Confirm).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id}", h.UpdateNote).Methods(http.MethodPatch)
	api.HandleFunc("/reservations/{id}", h.Cancel).Methods(http.MethodDelete)
	api.HandleFunc("/reservations/{id}", h.Get).Methods(http.MethodGet)
}

// writeJSON writes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError classifies err into the HTTP status the Error Handling Design
// section prescribes and writes it as a JSON error body.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps a *rsvperr.Error's Kind to an HTTP status code. Anything
// that isn't a *rsvperr.Error (a programmer error slipping through) maps to
// 500, same as the Unknown/DbError/config-error kinds.
func statusFor(err error) int {
	var rerr *rsvperr.Error
	if !errors.As(err, &rerr) {
		return http.StatusInternalServerError
	}

	switch rerr.Kind {
	case rsvperr.ConflictReservation:
		return http.StatusConflict
	case rsvperr.NotFound:
		return http.StatusNotFound
	case rsvperr.InvalidTime, rsvperr.InvalidUserID, rsvperr.InvalidResourceID,
		rsvperr.InvalidReservationID, rsvperr.InvalidStatus:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseID extracts the {id} path variable. A malformed id (not an integer)
// is treated the same as an out-of-range one: InvalidReservationID, 400.
func parseID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, rsvperr.NewInvalidReservationID(0)
	}
	return id, nil
}
