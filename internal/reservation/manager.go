// Package reservation is the transactional boundary between the domain
// model and PostgreSQL: it turns model.Reservation values into SQL,
// validates them, and classifies everything the driver reports back
// through internal/rsvperr.
//
// Grounded on original_source/reservation/src/manager.rs, re-expressed with
// pgx/v5's pool + native tstzrange support in place of sqlx.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shiva/rsvp/internal/conflict"
	"github.com/shiva/rsvp/internal/model"
	"github.com/shiva/rsvp/internal/rsvperr"
)

const queryChannelCapacity = 128

// Cache is the subset of internal/cache.ReservationCache the manager needs;
// kept as an interface so tests can run without Redis.
type Cache interface {
	Get(ctx context.Context, id int64) (model.Reservation, bool)
	Set(ctx context.Context, r model.Reservation)
	Invalidate(ctx context.Context, id int64)
}

// Manager is the reservation system's storage-facing service. It owns no
// business logic beyond what invariant (b) in spec.md §3 requires of
// callers: that is enforced by the database's exclusion constraint, not by
// this type.
type Manager struct {
	pool  *pgxpool.Pool
	cache Cache
}

// NewManager builds a Manager. cache may be nil, in which case Get always
// falls through to the database.
func NewManager(pool *pgxpool.Pool, c Cache) *Manager {
	return &Manager{pool: pool, cache: c}
}

// Reserve validates rsvp, coerces an out-of-range status to Pending, and
// inserts it. On success the returned reservation carries the generated id.
func (m *Manager) Reserve(ctx context.Context, rsvp model.Reservation) (model.Reservation, error) {
	if err := rsvp.Validate(); err != nil {
		return model.Reservation{}, err
	}

	status := rsvp.Status
	if !status.Valid() {
		status = model.StatusPending
	}

	timespan := toRange(rsvp.Start, rsvp.End)

	var id int64
	err := m.pool.QueryRow(ctx, `
		INSERT INTO rsvp.reservations (user_id, resource_id, timespan, note, status)
		VALUES ($1, $2, $3, $4, $5::rsvp.reservation_status)
		RETURNING id`,
		rsvp.UserID, rsvp.ResourceID, timespan, rsvp.Note, status.String(),
	).Scan(&id)
	if err != nil {
		return model.Reservation{}, classify(err)
	}

	rsvp.ID = id
	rsvp.Status = status
	return rsvp, nil
}

// ChangeStatus confirms a pending reservation. It is a conditional update:
// rows whose status isn't Pending are left untouched and the operation
// reports NotFound, matching spec.md §4.1's "sole transition" wording.
func (m *Manager) ChangeStatus(ctx context.Context, id model.ReservationID) (model.Reservation, error) {
	if err := id.Validate(); err != nil {
		return model.Reservation{}, err
	}

	row := m.pool.QueryRow(ctx, `
		UPDATE rsvp.reservations
		SET status = 'confirmed'::rsvp.reservation_status
		WHERE id = $1 AND status = 'pending'::rsvp.reservation_status
		RETURNING id, user_id, resource_id, timespan, note, status`,
		int64(id))

	rsvp, err := scanRow(row)
	if err != nil {
		return model.Reservation{}, classify(err)
	}
	m.invalidate(ctx, int64(id))
	return rsvp, nil
}

// UpdateNote unconditionally overwrites the note on the given reservation.
func (m *Manager) UpdateNote(ctx context.Context, id model.ReservationID, note string) (model.Reservation, error) {
	if err := id.Validate(); err != nil {
		return model.Reservation{}, err
	}

	row := m.pool.QueryRow(ctx, `
		UPDATE rsvp.reservations
		SET note = $2
		WHERE id = $1
		RETURNING id, user_id, resource_id, timespan, note, status`,
		int64(id), note)

	rsvp, err := scanRow(row)
	if err != nil {
		return model.Reservation{}, classify(err)
	}
	m.invalidate(ctx, int64(id))
	return rsvp, nil
}

// Delete removes a reservation. Deleting an id that doesn't exist is not an
// error here; the caller's subsequent Get will surface NotFound.
func (m *Manager) Delete(ctx context.Context, id model.ReservationID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	if _, err := m.pool.Exec(ctx, `DELETE FROM rsvp.reservations WHERE id = $1`, int64(id)); err != nil {
		return classify(err)
	}
	m.invalidate(ctx, int64(id))
	return nil
}

// Get fetches a reservation by id, consulting the cache first when one is
// configured.
func (m *Manager) Get(ctx context.Context, id model.ReservationID) (model.Reservation, error) {
	if err := id.Validate(); err != nil {
		return model.Reservation{}, err
	}

	if m.cache != nil {
		if rsvp, ok := m.cache.Get(ctx, int64(id)); ok {
			return rsvp, nil
		}
	}

	row := m.pool.QueryRow(ctx, `
		SELECT id, user_id, resource_id, timespan, note, status
		FROM rsvp.reservations
		WHERE id = $1`, int64(id))

	rsvp, err := scanRow(row)
	if err != nil {
		return model.Reservation{}, classify(err)
	}

	if m.cache != nil {
		m.cache.Set(ctx, rsvp)
	}
	return rsvp, nil
}

// QueryResult is one item of a Query stream: either a decoded reservation or
// an error the driver reported for that particular row. Driver errors do
// not terminate the stream (spec.md §4.1).
type QueryResult struct {
	Reservation model.Reservation
	Err         error
}

// Query opens a cursor against the rsvp.query stored function and streams
// results into a channel of capacity 128. The channel is closed once the
// cursor is exhausted or ctx is cancelled (client disconnect, in the HTTP
// adapter's case).
func (m *Manager) Query(ctx context.Context, q model.ReservationQuery) (<-chan QueryResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	status := q.Status
	if !status.Valid() {
		status = model.StatusPending
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	rows, err := m.pool.Query(ctx, `
		SELECT * FROM rsvp.query($1, $2, $3, $4, $5::rsvp.reservation_status, $6, $7, $8)`,
		nullable(q.UserID), nullable(q.ResourceID), q.Start, q.End, status.String(), q.IsDesc, page, pageSize)
	if err != nil {
		return nil, classify(err)
	}

	out := make(chan QueryResult, queryChannelCapacity)
	go m.produce(ctx, rows, out)
	return out, nil
}

func (m *Manager) produce(ctx context.Context, rows pgx.Rows, out chan<- QueryResult) {
	defer close(out)
	defer rows.Close()

	for rows.Next() {
		rsvp, err := scanRows(rows)
		var result QueryResult
		if err != nil {
			result = QueryResult{Err: classify(err)}
		} else {
			result = QueryResult{Reservation: rsvp}
		}

		select {
		case out <- result:
		case <-ctx.Done():
			log.Printf("[reservation] query stream cancelled: %v", ctx.Err())
			return
		}
	}

	if err := rows.Err(); err != nil {
		select {
		case out <- QueryResult{Err: classify(err)}:
		case <-ctx.Done():
		}
	}
}

// Filter runs cursor-based pagination over rsvp.filter: cursor is exclusive,
// rows come back at most page_size deep in id order (descending flips the
// comparison, then the slice is reversed so the caller always sees
// ascending-by-id). prev/next are the boundary ids of the returned page, or
// -1 when there is nothing further in that direction.
func (m *Manager) Filter(ctx context.Context, f model.ReservationFilter) (model.FilterPager, []model.Reservation, error) {
	status := f.Status
	if !status.Valid() {
		status = model.StatusPending
	}

	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = model.DefaultFilterPageSize
	}

	rows, err := m.pool.Query(ctx, `
		SELECT * FROM rsvp.filter($1, $2, $3::rsvp.reservation_status, $4, $5, $6)`,
		nullable(f.UserID), nullable(f.ResourceID), status.String(), f.Cursor, f.IsDesc, pageSize)
	if err != nil {
		return model.FilterPager{}, nil, classify(err)
	}

	reservations, err := scanAll(rows)
	if err != nil {
		return model.FilterPager{}, nil, classify(err)
	}

	var total int64
	if err := m.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rsvp.reservations`).Scan(&total); err != nil {
		return model.FilterPager{}, nil, classify(err)
	}

	if f.IsDesc {
		reverse(reservations)
	}

	pager := model.FilterPager{Prev: -1, Next: -1, Total: total}
	if len(reservations) > 0 {
		pager.Prev = reservations[0].ID
	}
	if int32(len(reservations)) == pageSize {
		pager.Next = reservations[len(reservations)-1].ID
	}

	return pager, reservations, nil
}

func (m *Manager) invalidate(ctx context.Context, id int64) {
	if m.cache != nil {
		m.cache.Invalidate(ctx, id)
	}
}

func reverse(rsvps []model.Reservation) {
	for i, j := 0, len(rsvps)-1; i < j; i, j = i+1, j-1 {
		rsvps[i], rsvps[j] = rsvps[j], rsvps[i]
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toRange(start, end time.Time) pgtype.Range[pgtype.Timestamptz] {
	return pgtype.Range[pgtype.Timestamptz]{
		Lower:     pgtype.Timestamptz{Time: start, Valid: true},
		Upper:     pgtype.Timestamptz{Time: end, Valid: true},
		LowerType: pgtype.Inclusive,
		UpperType: pgtype.Exclusive,
		Valid:     true,
	}
}

// scanner is satisfied by both pgx.Row (QueryRow) and pgx.Rows (Query),
// letting scan serve both the single-row and cursor-iteration call sites.
type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (model.Reservation, error) {
	var (
		rsvp     model.Reservation
		timespan pgtype.Range[pgtype.Timestamptz]
		status   string
	)

	if err := s.Scan(&rsvp.ID, &rsvp.UserID, &rsvp.ResourceID, &timespan, &rsvp.Note, &status); err != nil {
		return model.Reservation{}, err
	}

	if !timespan.Lower.Valid || !timespan.Upper.Valid {
		panic("reservation: timespan must have both bounds set, violating the NOT NULL + insert-path invariant")
	}

	rsvp.Start = timespan.Lower.Time
	rsvp.End = timespan.Upper.Time
	rsvp.Status = model.StatusFromString(status)

	return rsvp, nil
}

func scanRow(row pgx.Row) (model.Reservation, error)    { return scan(row) }
func scanRows(rows pgx.Rows) (model.Reservation, error) { return scan(rows) }

func scanAll(rows pgx.Rows) ([]model.Reservation, error) {
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		rsvp, err := scanRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rsvp)
	}
	return out, rows.Err()
}

func classify(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return rsvperr.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23P01" && pgErr.SchemaName == "rsvp" && pgErr.TableName == "reservations" {
			return rsvperr.NewConflict(conflict.Parse(pgErr.Detail))
		}
	}

	return rsvperr.NewDbError(fmt.Errorf("reservation: %w", err))
}
