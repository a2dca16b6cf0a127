// Package rsvperr defines the error taxonomy shared by every layer of the
// reservation service: validators, the storage-facing manager, and the HTTP
// handlers that translate it into a status code.
package rsvperr

import (
	"fmt"

	"github.com/shiva/rsvp/internal/conflict"
)

// Kind classifies an Error. The zero value, Unknown, is never returned by
// this package's New* constructors; only the ErrUnknown sentinel carries it.
type Kind int

const (
	Unknown Kind = iota
	ReadConfigError
	ParseConfigError
	DbError
	ConflictReservation
	NotFound
	InvalidTime
	InvalidUserID
	InvalidReservationID
	InvalidResourceID
	InvalidStatus
)

func (k Kind) String() string {
	switch k {
	case ReadConfigError:
		return "read_config_error"
	case ParseConfigError:
		return "parse_config_error"
	case DbError:
		return "db_error"
	case ConflictReservation:
		return "conflict_reservation"
	case NotFound:
		return "not_found"
	case InvalidTime:
		return "invalid_time"
	case InvalidUserID:
		return "invalid_user_id"
	case InvalidReservationID:
		return "invalid_reservation_id"
	case InvalidResourceID:
		return "invalid_resource_id"
	case InvalidStatus:
		return "invalid_status"
	default:
		return "unknown"
	}
}

// Error is the single error type every package in this module returns for
// anything other than plain exhaustion-of-resources style failures. Only the
// fields relevant to Kind are populated; the rest are zero.
type Error struct {
	Kind Kind

	// InvalidUserID / InvalidResourceID payload.
	Value string
	// InvalidReservationID payload.
	ID int64
	// InvalidStatus payload.
	StatusCode int32
	// ConflictReservation payload.
	Conflict conflict.Info

	// Err is the underlying cause for DbError, ReadConfigError and
	// ParseConfigError. It is never compared by Is — see the equality note
	// on DbError below.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ReadConfigError:
		return fmt.Sprintf("read config: %v", e.Err)
	case ParseConfigError:
		return fmt.Sprintf("parse config: %v", e.Err)
	case DbError:
		return fmt.Sprintf("database error: %v", e.Err)
	case ConflictReservation:
		return fmt.Sprintf("conflicting reservation: %s", e.Conflict)
	case NotFound:
		return "no reservation found by the given condition"
	case InvalidTime:
		return "invalid start time or end time for the reservation"
	case InvalidUserID:
		return fmt.Sprintf("invalid user id: %q", e.Value)
	case InvalidReservationID:
		return fmt.Sprintf("invalid reservation id: %d", e.ID)
	case InvalidResourceID:
		return fmt.Sprintf("invalid resource id: %q", e.Value)
	case InvalidStatus:
		return fmt.Sprintf("invalid status: %d", e.StatusCode)
	default:
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is implements the spec's equality rule: errors of the same Kind compare
// equal, and for variants that carry structured data (conflict window,
// invalid id/value/status) that data must match too. DbError deliberately
// compares equal to any other DbError regardless of the underlying driver
// payload, to keep tests that only care "some database error happened"
// tractable.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	switch e.Kind {
	case DbError, ReadConfigError, ParseConfigError, NotFound, InvalidTime, Unknown:
		return true
	case InvalidUserID, InvalidResourceID:
		return e.Value == t.Value
	case InvalidReservationID:
		return e.ID == t.ID
	case InvalidStatus:
		return e.StatusCode == t.StatusCode
	case ConflictReservation:
		return e.Conflict == t.Conflict
	default:
		return true
	}
}

// NewInvalidUserID, NewInvalidResourceID, NewInvalidStatus and
// NewInvalidReservationID are constructors used both by internal/model's
// validators and directly by this package's own tests.
func NewInvalidUserID(id string) *Error { return &Error{Kind: InvalidUserID, Value: id} }

func NewInvalidResourceID(id string) *Error { return &Error{Kind: InvalidResourceID, Value: id} }

func NewInvalidStatus(code int32) *Error { return &Error{Kind: InvalidStatus, StatusCode: code} }

func NewInvalidReservationID(id int64) *Error { return &Error{Kind: InvalidReservationID, ID: id} }

// ErrInvalidTime is a shared sentinel since InvalidTime carries no payload.
var ErrInvalidTime = &Error{Kind: InvalidTime}

// ErrNotFound is a shared sentinel since NotFound carries no payload.
var ErrNotFound = &Error{Kind: NotFound}

// ErrUnknown is returned where the original implementation has no better
// classification to offer.
var ErrUnknown = &Error{Kind: Unknown}

// NewConflict wraps a parsed or unparsed conflict detail string.
func NewConflict(info conflict.Info) *Error {
	return &Error{Kind: ConflictReservation, Conflict: info}
}

// NewDbError wraps an opaque driver error that isn't one of the classified
// cases (exclusion violation, row-not-found).
func NewDbError(err error) *Error { return &Error{Kind: DbError, Err: err} }

// NewReadConfigError wraps a failure to locate or read the config file.
func NewReadConfigError(err error) *Error { return &Error{Kind: ReadConfigError, Err: err} }

// NewParseConfigError wraps a failure to unmarshal the config file contents.
func NewParseConfigError(err error) *Error { return &Error{Kind: ParseConfigError, Err: err} }
