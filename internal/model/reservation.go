// Package model contains the domain types for the reservation system.
// These map to the `rsvp` schema defined in migrations/000001_init.up.sql.
package model

import (
	"time"

	"github.com/shiva/rsvp/internal/rsvperr"
)

// ReservationStatus mirrors the Postgres enum rsvp.reservation_status.
type ReservationStatus int32

const (
	StatusUnknown ReservationStatus = iota
	StatusPending
	StatusConfirmed
	StatusBlocked
)

// String renders the status the way it appears in SQL (the enum's text form).
func (s ReservationStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusConfirmed:
		return "confirmed"
	case StatusBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the four known status codes.
func (s ReservationStatus) Valid() bool {
	return s >= StatusUnknown && s <= StatusBlocked
}

// StatusFromString is the inverse of String, used when scanning rows back
// from the reservation_status enum column. Unknown is accepted on read; it is
// stored only when a reservation passed to Reserve already carries it.
func StatusFromString(s string) ReservationStatus {
	switch s {
	case "pending":
		return StatusPending
	case "confirmed":
		return StatusConfirmed
	case "blocked":
		return StatusBlocked
	default:
		return StatusUnknown
	}
}

// Reservation is the central entity: a resource held for a half-open UTC
// interval [Start, End).
type Reservation struct {
	ID         int64             `json:"id"`
	UserID     string            `json:"user_id"`
	ResourceID string            `json:"resource_id"`
	Start      time.Time         `json:"start"`
	End        time.Time         `json:"end"`
	Note       string            `json:"note"`
	Status     ReservationStatus `json:"status"`
}

// NewPendingReservation builds a reservation request with status Pending,
// the constructor ergonomics the test suite leans on throughout (mirrors
// original_source's Reservation::new_pending).
func NewPendingReservation(userID, resourceID string, start, end time.Time, note string) Reservation {
	return Reservation{
		UserID:     userID,
		ResourceID: resourceID,
		Start:      start.UTC(),
		End:        end.UTC(),
		Note:       note,
		Status:     StatusPending,
	}
}

// Validate enforces invariants (c) and (d) from spec.md §3: non-empty
// identifiers and a well-formed, strictly increasing interval. Status is
// intentionally not validated here — Reserve coerces it instead (spec.md §4.1).
func (r Reservation) Validate() error {
	if r.UserID == "" {
		return rsvperr.NewInvalidUserID(r.UserID)
	}
	if r.ResourceID == "" {
		return rsvperr.NewInvalidResourceID(r.ResourceID)
	}
	if !r.Start.Before(r.End) {
		return rsvperr.ErrInvalidTime
	}
	return nil
}

// ReservationQuery is the filter for the streaming Query operation.
type ReservationQuery struct {
	UserID     string
	ResourceID string
	Start      time.Time
	End        time.Time
	Status     ReservationStatus
	Page       int32
	PageSize   int32
	IsDesc     bool
}

// Validate enforces the boundary rules spec.md §8 lists for Query: the
// status code must be one of the four known values and Start must precede End.
func (q ReservationQuery) Validate() error {
	if !q.Status.Valid() {
		return rsvperr.NewInvalidStatus(int32(q.Status))
	}
	if !q.Start.Before(q.End) {
		return rsvperr.ErrInvalidTime
	}
	return nil
}

// ReservationFilter is the filter for cursor-paginated retrieval.
type ReservationFilter struct {
	UserID     string
	ResourceID string
	Status     ReservationStatus
	Cursor     int64
	PageSize   int32
	IsDesc     bool
}

// DefaultFilterPageSize is used when a caller leaves PageSize unset (<= 0).
const DefaultFilterPageSize = 10

// FilterPager describes a page boundary in terms of reservation ids rather
// than an offset.
type FilterPager struct {
	Prev  int64 `json:"prev"`
	Next  int64 `json:"next"`
	Total int64 `json:"total"`
}

// ReservationID is a validated identifier: it must be a positive integer.
type ReservationID int64

// Validate enforces invariant (a): an id referring to a persisted row must be > 0.
func (id ReservationID) Validate() error {
	if id <= 0 {
		return rsvperr.NewInvalidReservationID(int64(id))
	}
	return nil
}
