package rsvperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shiva/rsvp/internal/conflict"
)

func TestErrorIsSentinels(t *testing.T) {
	require := require.New(t)
	require.ErrorIs(ErrInvalidTime, ErrInvalidTime)
	require.False(errors.Is(ErrInvalidTime, ErrNotFound))
}

func TestErrorIsPayloadSensitive(t *testing.T) {
	require := require.New(t)
	require.ErrorIs(NewInvalidUserID("alice"), NewInvalidUserID("alice"))
	require.False(errors.Is(NewInvalidUserID("alice"), NewInvalidUserID("bob")))
	require.ErrorIs(NewInvalidReservationID(7), NewInvalidReservationID(7))
	require.False(errors.Is(NewInvalidReservationID(7), NewInvalidReservationID(8)))
	require.ErrorIs(NewInvalidStatus(3), NewInvalidStatus(3))
}

func TestErrorIsConflictComparesPayload(t *testing.T) {
	require := require.New(t)
	a := NewConflict(conflict.Parse("unparseable detail a"))
	b := NewConflict(conflict.Parse("unparseable detail a"))
	c := NewConflict(conflict.Parse("unparseable detail b"))

	require.ErrorIs(a, b)
	require.False(errors.Is(a, c))
}

func TestErrorIsDbErrorIgnoresPayload(t *testing.T) {
	require := require.New(t)
	a := NewDbError(fmt.Errorf("connection reset"))
	b := NewDbError(fmt.Errorf("deadline exceeded"))
	require.ErrorIs(a, b)
}

func TestErrorUnwrap(t *testing.T) {
	require := require.New(t)
	cause := fmt.Errorf("boom")
	err := NewDbError(cause)
	require.ErrorIs(err, cause)
}

func TestErrorMessageFormatting(t *testing.T) {
	require := require.New(t)
	require.NotEmpty(NewInvalidUserID("").Error())
	require.NotEmpty(ErrNotFound.Error())
}
