package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/shiva/rsvp/internal/model"
)

func newTestCache(t *testing.T, ttl time.Duration) *ReservationCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewReservationCache(client, ttl)
}

func TestCacheSetThenGet(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := newTestCache(t, time.Minute)

	rsvp := model.Reservation{ID: 1, UserID: "alice", ResourceID: "room-1", Status: model.StatusPending}
	c.Set(ctx, rsvp)

	got, ok := c.Get(ctx, 1)
	require.True(ok)
	require.Equal("alice", got.UserID)
}

func TestCacheGetMissReportsFalse(t *testing.T) {
	require := require.New(t)
	c := newTestCache(t, time.Minute)
	_, ok := c.Get(context.Background(), 42)
	require.False(ok)
}

func TestCacheInvalidate(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := newTestCache(t, time.Minute)

	c.Set(ctx, model.Reservation{ID: 7})
	c.Invalidate(ctx, 7)

	_, ok := c.Get(ctx, 7)
	require.False(ok)
}

func TestCacheDisabledWhenTTLNonPositive(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	c := newTestCache(t, 0)

	c.Set(ctx, model.Reservation{ID: 1, UserID: "alice"})
	_, ok := c.Get(ctx, 1)
	require.False(ok, "a ttl<=0 cache should never report a hit")
}
