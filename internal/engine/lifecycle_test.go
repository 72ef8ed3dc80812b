package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// reserveOne creates a single pending booking for user on seatID and
// returns its id.
func reserveOne(t *testing.T, e *Engine, user, seatID string) string {
	t.Helper()
	ids, err := e.Reserve(context.Background(), user, user+"@example.com", []string{seatID}, monday, "10:00", 2)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	return ids[0]
}

func TestConfirmMarksSeatApproved(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	id := reserveOne(t, e, "u1", "I5")

	require.NoError(t, e.Confirm(ctx, id))

	b, err := s.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, b.Status)

	seat, err := s.GetSeat(ctx, "I5")
	require.NoError(t, err)
	assert.Equal(t, model.SeatBooked, seat.Status)
	assert.True(t, seat.Approved)
	assertConsistent(t, s)
}

func TestConfirmNonPending(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	id := reserveOne(t, e, "u1", "I5")

	require.NoError(t, e.Confirm(ctx, id))
	assert.ErrorIs(t, e.Confirm(ctx, id), ErrInvalidTransition)
}

func TestRejectReleasesSeat(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	id := reserveOne(t, e, "u1", "O2")

	require.NoError(t, e.Reject(ctx, id))

	b, err := s.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.BookingRejected, b.Status)
	require.NotNil(t, b.ClosedAt)

	seat, err := s.GetSeat(ctx, "O2")
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, seat.Status)
	assert.Empty(t, seat.BookedBy)
	assertConsistent(t, s)

	// The user is free to book again.
	_, err = e.Reserve(ctx, "u1", "", []string{"O3"}, monday, "12:00", 1)
	require.NoError(t, err)
}

func TestRejectConfirmedBooking(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	id := reserveOne(t, e, "u1", "O2")
	require.NoError(t, e.Confirm(ctx, id))

	// Revoking an already approved booking is allowed and frees the seat.
	require.NoError(t, e.Reject(ctx, id))
	seat, err := s.GetSeat(ctx, "O2")
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, seat.Status)
	assert.False(t, seat.Approved)
	assertConsistent(t, s)
}

func TestCancelOwnBooking(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	id := reserveOne(t, e, "u1", "I9")

	require.NoError(t, e.Cancel(ctx, id, "u1"))

	b, err := s.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, b.Status)
	require.NotNil(t, b.ClosedAt)

	seat, err := s.GetSeat(ctx, "I9")
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, seat.Status)
	assertConsistent(t, s)
}

func TestCancelForeignBookingForbidden(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	id := reserveOne(t, e, "u1", "I9")

	err := e.Cancel(ctx, id, "u2")
	require.ErrorIs(t, err, ErrForbidden)

	// Untouched: still pending, seat still held.
	b, err := s.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, b.Status)
	seat, err := s.GetSeat(ctx, "I9")
	require.NoError(t, err)
	assert.Equal(t, model.SeatBooked, seat.Status)
}

func TestCancelTerminalBooking(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()
	id := reserveOne(t, e, "u1", "I9")
	require.NoError(t, e.Cancel(ctx, id, "u1"))

	assert.ErrorIs(t, e.Cancel(ctx, id, "u1"), ErrInvalidTransition)
}

func TestLifecycleUnknownBooking(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	assert.ErrorIs(t, e.Confirm(ctx, "nope"), ErrInvalidTransition)
	assert.ErrorIs(t, e.Reject(ctx, "nope"), ErrInvalidTransition)
	assert.ErrorIs(t, e.Cancel(ctx, "nope", "u1"), ErrInvalidTransition)
}

// TestFullBookingDay walks a booking through the happy path end to end:
// reserved at 10:00 for two hours, confirmed by an admin, then swept after
// the window lapses.
func TestFullBookingDay(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	bookedAt := time.Date(2026, time.August, 31, 9, 55, 0, 0, time.UTC)
	e.now = func() time.Time { return bookedAt }

	id := reserveOne(t, e, "u1", "I3")
	require.NoError(t, e.Confirm(ctx, id))

	// Before the window ends the sweep leaves everything alone.
	n, err := e.RunExpirySweep(ctx, time.Date(2026, time.August, 31, 11, 59, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = e.RunExpirySweep(ctx, time.Date(2026, time.August, 31, 12, 1, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	b, err := s.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCompleted, b.Status)
	require.NotNil(t, b.CompletedAt)

	seat, err := s.GetSeat(ctx, "I3")
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, seat.Status)
	assert.Empty(t, seat.BookedBy)
	assert.False(t, seat.Approved)
	assertConsistent(t, s)
}
