package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/store/memstore"
)

// monday is an open day used throughout the engine tests.
var monday = time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *memstore.MemStore) {
	t.Helper()
	s := memstore.New()
	e := New(s, zerolog.Nop())
	return e, s
}

// assertConsistent checks the booked-iff-active invariant: a seat is
// booked exactly when one active booking references it, and an available
// seat carries no hold fields.
func assertConsistent(t *testing.T, s *memstore.MemStore) {
	t.Helper()
	ctx := context.Background()

	seats, err := s.ListSeats(ctx)
	require.NoError(t, err)
	bookings, err := s.ListBookings(ctx)
	require.NoError(t, err)

	activeBySeat := make(map[string]int)
	for _, b := range bookings {
		if b.Status.Active() {
			activeBySeat[b.SeatID]++
		}
	}
	for _, seat := range seats {
		switch seat.Status {
		case model.SeatBooked:
			assert.Equal(t, 1, activeBySeat[seat.ID], "booked seat %s must have exactly one active booking", seat.ID)
			assert.NotEmpty(t, seat.BookedBy, "booked seat %s must record its holder", seat.ID)
		case model.SeatAvailable:
			assert.Zero(t, activeBySeat[seat.ID], "available seat %s must have no active booking", seat.ID)
			assert.Empty(t, seat.BookedBy)
			assert.Empty(t, seat.EndTime)
			assert.False(t, seat.Approved)
		}
	}
}

func TestReserveSuccess(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	ids, err := e.Reserve(ctx, "u1", "u1@example.com", []string{"I3", "O7"}, monday, "10:00", 2)
	require.NoError(t, err)
	require.Len(t, ids, 2)

	for _, seatID := range []string{"I3", "O7"} {
		seat, err := s.GetSeat(ctx, seatID)
		require.NoError(t, err)
		assert.Equal(t, model.SeatBooked, seat.Status)
		assert.Equal(t, "u1", seat.BookedBy)
		assert.Equal(t, "12:00", seat.EndTime)
		assert.False(t, seat.Approved)
	}
	for _, id := range ids {
		b, err := s.GetBooking(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.BookingPending, b.Status)
		assert.Equal(t, "10:00", b.StartTime)
		assert.Equal(t, "12:00", b.EndTime)
		assert.Equal(t, "2026-08-31", b.Date)
	}
	assertConsistent(t, s)
}

func TestReserveWeekendRejected(t *testing.T) {
	e, s := newTestEngine(t)
	saturday := monday.AddDate(0, 0, 5)

	_, err := e.Reserve(context.Background(), "u1", "", []string{"I1"}, saturday, "10:00", 1)
	require.ErrorIs(t, err, ErrPolicyViolation)
	assertConsistent(t, s)
}

func TestReserveClosingTime(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	// 23:00 + 1h wraps to "00:00", which is past the 23:30 close.
	_, err := e.Reserve(ctx, "u1", "", []string{"I1"}, monday, "23:00", 1)
	require.ErrorIs(t, err, ErrPolicyViolation)

	// 20:00 + 2h ends at 22:00 and is fine.
	_, err = e.Reserve(ctx, "u1", "", []string{"I1"}, monday, "20:00", 2)
	require.NoError(t, err)
}

func TestReserveDuplicateActiveBooking(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Reserve(ctx, "u1", "", []string{"I1"}, monday, "10:00", 1)
	require.NoError(t, err)

	_, err = e.Reserve(ctx, "u1", "", []string{"I2"}, monday, "12:00", 1)
	require.ErrorIs(t, err, ErrDuplicateActiveBooking)

	// The second seat must not have been touched.
	seat, err := s.GetSeat(ctx, "I2")
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, seat.Status)
	assertConsistent(t, s)
}

func TestReserveSeatConflict(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Reserve(ctx, "u1", "", []string{"I3"}, monday, "10:00", 2)
	require.NoError(t, err)

	_, err = e.Reserve(ctx, "u2", "", []string{"I3", "I4"}, monday, "10:00", 2)
	require.ErrorIs(t, err, ErrSeatConflict)

	var conflict *SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"I3"}, conflict.SeatIDs)

	// The conflicting request must leave no partial state: I4 stays free
	// and I3 stays with its original holder.
	seat, err := s.GetSeat(ctx, "I4")
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, seat.Status)
	held, err := s.GetSeat(ctx, "I3")
	require.NoError(t, err)
	assert.Equal(t, "u1", held.BookedBy)
	assertConsistent(t, s)
}

func TestReserveUnknownSeat(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	// Ids outside the catalog, including zero-padded spellings of real
	// seats, are rejected before any booking state is touched.
	for _, id := range []string{"Z99", "I01", "O07"} {
		_, err := e.Reserve(ctx, "u1", "", []string{id}, monday, "10:00", 1)
		require.ErrorIs(t, err, ErrSeatNotFound, "seat id %q", id)
	}

	bookings, err := s.ListBookings(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)
	assertConsistent(t, s)
}

// TestReserveBookingOrder reserves seats in an order that differs from the
// sorted lock order and checks the returned booking ids still follow the
// request.
func TestReserveBookingOrder(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	request := []string{"O7", "I3", "O12"}
	ids, err := e.Reserve(ctx, "u1", "", request, monday, "10:00", 2)
	require.NoError(t, err)
	require.Len(t, ids, len(request))

	for i, id := range ids {
		b, err := s.GetBooking(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, request[i], b.SeatID, "booking %d must cover the seat at the same request position", i)
	}
	assertConsistent(t, s)
}

func TestReserveEmptySelection(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Reserve(context.Background(), "u1", "", nil, monday, "10:00", 1)
	require.ErrorIs(t, err, ErrPolicyViolation)
}

// TestReserveConcurrentSameUser races one user's two reservations over
// different seats.  The in-transaction duplicate check must let exactly
// one commit, leaving the user with one active booking and one seat.
func TestReserveConcurrentSameUser(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, seatID := range []string{"I1", "O9"} {
		wg.Add(1)
		go func(i int, seatID string) {
			defer wg.Done()
			_, errs[i] = e.Reserve(ctx, "u1", "", []string{seatID}, monday, "10:00", 2)
		}(i, seatID)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateActiveBooking)
		}
	}
	require.Equal(t, 1, winners, "exactly one of the user's racing reservations must commit")

	active, err := s.ActiveBookingsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assertConsistent(t, s)
}

// TestReserveConcurrentSameSeat races two users over one seat and requires
// exactly one winner with the loser seeing a conflict or duplicate error
// and no partial state either way.
func TestReserveConcurrentSameSeat(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, user := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(i int, user string) {
			defer wg.Done()
			_, errs[i] = e.Reserve(ctx, user, "", []string{"I3"}, monday, "10:00", 2)
		}(i, user)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSeatConflict)
		}
	}
	require.Equal(t, 1, winners, "exactly one of the two racing reservations must commit")

	seat, err := s.GetSeat(ctx, "I3")
	require.NoError(t, err)
	assert.Equal(t, model.SeatBooked, seat.Status)
	assertConsistent(t, s)
}
