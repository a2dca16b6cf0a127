// Package cache implements a read-through, invalidate-on-write cache for
// single-reservation lookups, the same pattern the teacher's pricing
// repository uses for fare quotes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shiva/rsvp/internal/model"
)

const keyPrefix = "rsvp:reservation:"

// ReservationCache wraps a Redis client with the id-keyed get/set/invalidate
// operations internal/reservation.Manager needs.
type ReservationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReservationCache builds a cache with the given per-entry TTL. A
// ttl <= 0 disables caching: Get always reports a miss and Set/Invalidate
// are no-ops, so callers can wire this unconditionally and let config
// decide whether it does anything.
func NewReservationCache(client *redis.Client, ttl time.Duration) *ReservationCache {
	return &ReservationCache{client: client, ttl: ttl}
}

func key(id int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

// Get returns the cached reservation for id, if present and still fresh.
func (c *ReservationCache) Get(ctx context.Context, id int64) (model.Reservation, bool) {
	if c.ttl <= 0 {
		return model.Reservation{}, false
	}

	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[cache] get %d: %v", id, err)
		}
		return model.Reservation{}, false
	}

	var rsvp model.Reservation
	if err := json.Unmarshal(raw, &rsvp); err != nil {
		log.Printf("[cache] decode %d: %v", id, err)
		return model.Reservation{}, false
	}
	return rsvp, true
}

// Set caches rsvp under its own id.
func (c *ReservationCache) Set(ctx context.Context, rsvp model.Reservation) {
	if c.ttl <= 0 {
		return
	}

	raw, err := json.Marshal(rsvp)
	if err != nil {
		log.Printf("[cache] encode %d: %v", rsvp.ID, err)
		return
	}

	if err := c.client.Set(ctx, key(rsvp.ID), raw, c.ttl).Err(); err != nil {
		log.Printf("[cache] set %d: %v", rsvp.ID, err)
	}
}

// Invalidate drops the cached entry for id, called whenever the manager
// mutates a reservation's row.
func (c *ReservationCache) Invalidate(ctx context.Context, id int64) {
	if c.ttl <= 0 {
		return
	}

	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		log.Printf("[cache] invalidate %d: %v", id, err)
	}
}
