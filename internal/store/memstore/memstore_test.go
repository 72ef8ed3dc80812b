package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

func TestNewSeedsCatalog(t *testing.T) {
	s := New()
	seats, err := s.ListSeats(context.Background())
	require.NoError(t, err)
	require.Len(t, seats, len(model.Catalog()))
	for _, seat := range seats {
		assert.Equal(t, model.SeatAvailable, seat.Status)
		assert.Empty(t, seat.BookedBy)
	}
}

func TestRunTxAtomicRollback(t *testing.T) {
	s := New()
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.RunTx(ctx, func(tx store.Tx) error {
		seat, err := tx.SeatForUpdate(ctx, "I3")
		require.NoError(t, err)
		seat.Status = model.SeatBooked
		seat.BookedBy = "user-1"
		require.NoError(t, tx.PutSeat(ctx, seat))
		require.NoError(t, tx.CreateBooking(ctx, &model.Booking{
			ID: "b1", UserID: "user-1", SeatID: "I3", Status: model.BookingPending,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Nothing from the failed transaction may be visible.
	seat, err := s.GetSeat(ctx, "I3")
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, seat.Status)
	_, err = s.GetBooking(ctx, "b1")
	assert.ErrorIs(t, err, store.ErrBookingNotFound)
}

func TestRunTxReadYourWrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.RunTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.CreateBooking(ctx, &model.Booking{
			ID: "b1", UserID: "user-1", SeatID: "I1", Status: model.BookingPending,
			CreatedAt: time.Now(),
		}))
		active, err := tx.ActiveBookingsByUser(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, active, 1, "staged booking must be visible inside the transaction")

		seat, err := tx.SeatForUpdate(ctx, "I1")
		require.NoError(t, err)
		seat.Status = model.SeatBooked
		require.NoError(t, tx.PutSeat(ctx, seat))

		again, err := tx.SeatForUpdate(ctx, "I1")
		require.NoError(t, err)
		assert.Equal(t, model.SeatBooked, again.Status)
		return nil
	})
	require.NoError(t, err)

	seat, err := s.GetSeat(ctx, "I1")
	require.NoError(t, err)
	assert.Equal(t, model.SeatBooked, seat.Status)
}

func TestSubscribeSeatsDeliversSnapshots(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.SubscribeSeats(ctx)

	// Initial snapshot carries the live contents.
	select {
	case snap := <-ch:
		require.Len(t, snap, len(model.Catalog()))
	case <-time.After(time.Second):
		t.Fatal("no initial seat snapshot")
	}

	require.NoError(t, s.RunTx(ctx, func(tx store.Tx) error {
		seat, err := tx.SeatForUpdate(ctx, "O5")
		if err != nil {
			return err
		}
		seat.Status = model.SeatBooked
		seat.BookedBy = "user-2"
		return tx.PutSeat(ctx, seat)
	}))

	deadline := time.After(time.Second)
	for {
		select {
		case snap := <-ch:
			for _, seat := range snap {
				if seat.ID == "O5" && seat.Status == model.SeatBooked {
					return
				}
			}
		case <-deadline:
			t.Fatal("seat change never reached the subscriber")
		}
	}
}

func TestCreateUserUniqueEmail(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &model.User{ID: "u1", Email: "a@example.com"}))
	err := s.CreateUser(ctx, &model.User{ID: "u2", Email: "a@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicateRecord)
}
