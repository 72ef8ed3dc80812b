package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/store"
	"github.com/iliyamo/library-seat-reservation/internal/store/memstore"
)

type recordingObserver struct {
	mu       sync.Mutex
	seats    [][]model.Seat
	bookings [][]model.Booking
}

func (r *recordingObserver) SeatsChanged(s []model.Seat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seats = append(r.seats, s)
}

func (r *recordingObserver) BookingsChanged(b []model.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = append(r.bookings, b)
}

func (r *recordingObserver) seatSnapshots() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seats)
}

func (r *recordingObserver) lastSeats() []model.Seat {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seats) == 0 {
		return nil
	}
	return r.seats[len(r.seats)-1]
}

func TestNotifierDispatchesSnapshots(t *testing.T) {
	s := memstore.New()
	n := NewNotifier(zerolog.Nop())
	obs := &recordingObserver{}
	unregister := n.Register(obs)
	defer unregister()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx, s)

	// Initial snapshots arrive without any writes.
	require.Eventually(t, func() bool {
		return obs.seatSnapshots() > 0
	}, time.Second, 10*time.Millisecond, "no initial seat snapshot")

	require.NoError(t, s.RunTx(ctx, func(tx store.Tx) error {
		seat, err := tx.SeatForUpdate(ctx, "I7")
		if err != nil {
			return err
		}
		seat.Status = model.SeatBooked
		seat.BookedBy = "u1"
		return tx.PutSeat(ctx, seat)
	}))

	require.Eventually(t, func() bool {
		for _, seat := range obs.lastSeats() {
			if seat.ID == "I7" && seat.Status == model.SeatBooked {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond, "seat change never reached the observer")
}

func TestNotifierUnregisterStopsDelivery(t *testing.T) {
	s := memstore.New()
	n := NewNotifier(zerolog.Nop())
	obs := &recordingObserver{}
	unregister := n.Register(obs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx, s)

	require.Eventually(t, func() bool {
		return obs.seatSnapshots() > 0
	}, time.Second, 10*time.Millisecond)

	unregister()
	before := obs.seatSnapshots()

	require.NoError(t, s.RunTx(ctx, func(tx store.Tx) error {
		seat, err := tx.SeatForUpdate(ctx, "O1")
		if err != nil {
			return err
		}
		seat.Status = model.SeatBooked
		return tx.PutSeat(ctx, seat)
	}))

	// Give the dispatch loop time to (wrongly) deliver.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, obs.seatSnapshots(), "removed observer must receive nothing")
}
