package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/shiva/rsvp/internal/model"
	"github.com/shiva/rsvp/internal/reservation"
	"github.com/shiva/rsvp/internal/testutil"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	db := testutil.NewTestDB(t)
	manager := reservation.NewManager(db.Pool, nil)
	h := New(manager)
	router := mux.NewRouter()
	h.Mount(router)
	return router
}

func postJSON(t *testing.T, router *mux.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestReserveThenGet(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	rec := postJSON(t, router, "/api/v1/reservations", reserveRequest{
		UserID: "alice", ResourceID: "room-1", Start: start, End: end, Note: "standup",
		Status: int32(model.StatusPending),
	})
	require.Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Reservation
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(created.ID)

	getReq := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/reservations/%d", created.ID), nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	require.Equal(http.StatusOK, getRec.Code, getRec.Body.String())
}

func TestReserveValidationFailureIsBadRequest(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	rec := postJSON(t, router, "/api/v1/reservations", reserveRequest{
		UserID: "", ResourceID: "room-1",
		Start: time.Now(), End: time.Now().Add(time.Hour),
	})
	require.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestReserveConflictIsConflictStatus(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	first := postJSON(t, router, "/api/v1/reservations", reserveRequest{
		UserID: "alice", ResourceID: "room-1", Start: start, End: end,
		Status: int32(model.StatusPending),
	})
	require.Equal(http.StatusCreated, first.Code)

	second := postJSON(t, router, "/api/v1/reservations", reserveRequest{
		UserID: "bob", ResourceID: "room-1", Start: start, End: end,
		Status: int32(model.StatusPending),
	})
	require.Equal(http.StatusConflict, second.Code, second.Body.String())
}

func TestGetUnknownIDIsNotFound(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/99999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestGetMalformedIDIsBadRequest(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/not-a-number", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestCancelReturnsNoContent(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	created := postJSON(t, router, "/api/v1/reservations", reserveRequest{
		UserID: "alice", ResourceID: "room-1", Start: start, End: end,
		Status: int32(model.StatusPending),
	})
	var rsvp model.Reservation
	require.NoError(json.Unmarshal(created.Body.Bytes(), &rsvp))

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/reservations/%d", rsvp.ID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(http.StatusNoContent, rec.Code, rec.Body.String())
	require.Zero(rec.Body.Len())
}

func TestListenReportsNotImplemented(t *testing.T) {
	require := require.New(t)
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/listen", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(http.StatusNotImplemented, rec.Code)
}
