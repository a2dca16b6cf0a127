package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shiva/rsvp/internal/model"
	"github.com/shiva/rsvp/internal/rsvperr"
	"github.com/shiva/rsvp/internal/testutil"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewManager(db.Pool, nil)
}

func day(n int) time.Time {
	return time.Date(2024, 6, n, 0, 0, 0, 0, time.UTC)
}

func TestReserveAndGet(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	rsvp := model.NewPendingReservation("alice", "room-1", day(1), day(2), "standup")
	saved, err := m.Reserve(ctx, rsvp)
	require.NoError(err)
	require.NotZero(saved.ID)
	require.Equal(model.StatusPending, saved.Status)

	got, err := m.Get(ctx, model.ReservationID(saved.ID))
	require.NoError(err)
	require.Equal("alice", got.UserID)
	require.Equal("room-1", got.ResourceID)
	require.Equal("standup", got.Note)
}

func TestReserveConflictingWindowIsRejected(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	first := model.NewPendingReservation("alice", "room-1", day(1), day(3), "")
	_, err := m.Reserve(ctx, first)
	require.NoError(err)

	overlapping := model.NewPendingReservation("bob", "room-1", day(2), day(4), "")
	_, err = m.Reserve(ctx, overlapping)
	require.Error(err)

	var rerr *rsvperr.Error
	require.ErrorAs(err, &rerr)
	require.Equal(rsvperr.ConflictReservation, rerr.Kind)
	if rerr.Conflict.Parsed {
		require.Equal("room-1", rerr.Conflict.Window.ResourceID)
	}
}

func TestReserveSameResourceDisjointWindowsSucceed(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	a := model.NewPendingReservation("alice", "room-1", day(1), day(2), "")
	_, err := m.Reserve(ctx, a)
	require.NoError(err)

	b := model.NewPendingReservation("bob", "room-1", day(2), day(3), "")
	_, err = m.Reserve(ctx, b)
	require.NoError(err, "half-open windows touching at day 2 don't overlap")
}

func TestChangeStatusConfirmsOnce(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	rsvp, err := m.Reserve(ctx, model.NewPendingReservation("alice", "room-1", day(1), day(2), ""))
	require.NoError(err)
	id := model.ReservationID(rsvp.ID)

	confirmed, err := m.ChangeStatus(ctx, id)
	require.NoError(err)
	require.Equal(model.StatusConfirmed, confirmed.Status)

	_, err = m.ChangeStatus(ctx, id)
	require.ErrorIs(err, rsvperr.ErrNotFound)
}

func TestUpdateNote(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	rsvp, err := m.Reserve(ctx, model.NewPendingReservation("alice", "room-1", day(1), day(2), "old"))
	require.NoError(err)

	updated, err := m.UpdateNote(ctx, model.ReservationID(rsvp.ID), "new")
	require.NoError(err)
	require.Equal("new", updated.Note)
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	rsvp, err := m.Reserve(ctx, model.NewPendingReservation("alice", "room-1", day(1), day(2), ""))
	require.NoError(err)
	id := model.ReservationID(rsvp.ID)

	require.NoError(m.Delete(ctx, id))

	_, err = m.Get(ctx, id)
	require.ErrorIs(err, rsvperr.ErrNotFound)
}

func TestQueryStreamsMatchingReservations(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	m := newTestManager(t)

	for i, start := 0, 1; i < 3; i, start = i+1, start+1 {
		r := model.NewPendingReservation("alice", "room-1", day(start), day(start+1), "")
		_, err := m.Reserve(ctx, r)
		require.NoError(err)
	}

	q := model.ReservationQuery{
		ResourceID: "room-1",
		Start:      day(1),
		End:        day(10),
		Status:     model.StatusPending,
		PageSize:   10,
	}
	results, err := m.Query(ctx, q)
	require.NoError(err)

	var got []model.Reservation
	for r := range results {
		require.NoError(r.Err)
		got = append(got, r.Reservation)
	}
	require.Len(got, 3)
}

func TestQueryStreamStopsOnContextCancel(t *testing.T) {
	require := require.New(t)
	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())

	for i, start := 0, 1; i < 5; i, start = i+1, start+1 {
		r := model.NewPendingReservation("alice", "room-1", day(start), day(start+1), "")
		_, err := m.Reserve(context.Background(), r)
		require.NoError(err)
	}

	q := model.ReservationQuery{
		ResourceID: "room-1",
		Start:      day(1),
		End:        day(10),
		Status:     model.StatusPending,
		PageSize:   10,
	}
	results, err := m.Query(ctx, q)
	require.NoError(err)

	<-results
	cancel()

	// The producer goroutine must close the channel once it observes
	// cancellation; draining it should complete rather than hang.
	for range results {
	}
}

// filterFixture reproduces original_source/reservation/src/manager.rs's
// filter_reservation_should_work / filter_pager_should_work fixtures: 19
// pending reservations for "alice" on one resource with back-to-back
// one-day windows, ids 1..19.
func filterFixture(t *testing.T, m *Manager) {
	t.Helper()
	require := require.New(t)
	ctx := context.Background()
	for i := 1; i <= 19; i++ {
		r := model.NewPendingReservation("alice", "room-x", day(i), day(i+1), "")
		_, err := m.Reserve(ctx, r)
		require.NoError(err)
	}
}

func TestFilterPagerAscending(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	m := newTestManager(t)
	filterFixture(t, m)

	pager, rsvps, err := m.Filter(ctx, model.ReservationFilter{
		UserID: "alice", Status: model.StatusPending, Cursor: 2, PageSize: 10,
	})
	require.NoError(err)
	require.Len(rsvps, 10)
	require.EqualValues(3, pager.Prev)
	require.EqualValues(12, pager.Next)
	require.EqualValues(19, pager.Total)
}

func TestFilterPagerLastPageHasNoNext(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	m := newTestManager(t)
	filterFixture(t, m)

	pager, rsvps, err := m.Filter(ctx, model.ReservationFilter{
		UserID: "alice", Status: model.StatusPending, Cursor: 12, PageSize: 10,
	})
	require.NoError(err)
	require.Len(rsvps, 7)
	require.EqualValues(13, pager.Prev)
	require.EqualValues(-1, pager.Next)
}

func TestFilterPagerDescending(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	m := newTestManager(t)
	filterFixture(t, m)

	pager, rsvps, err := m.Filter(ctx, model.ReservationFilter{
		UserID: "alice", Status: model.StatusPending, Cursor: 13, PageSize: 10, IsDesc: true,
	})
	require.NoError(err)
	require.Len(rsvps, 10)
	require.EqualValues(3, pager.Prev)
	require.EqualValues(12, pager.Next)
}
