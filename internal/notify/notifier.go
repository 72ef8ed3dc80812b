// Package notify fans committed store changes out to registered
// observers.  The notifier consumes the store's seat and booking feeds
// and pushes each snapshot to every observer without blocking: an
// observer that falls behind misses intermediate snapshots, never the
// latest one.  No ordering is guaranteed between the two streams; an
// observer that needs a coherent picture derives it from the latest
// snapshot of each collection.
package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// Observer receives collection snapshots.  Both methods must not block;
// the notifier calls them from its single dispatch goroutine.
type Observer interface {
	SeatsChanged(seats []model.Seat)
	BookingsChanged(bookings []model.Booking)
}

// Notifier bridges the store feeds to registered observers.
type Notifier struct {
	mu        sync.Mutex
	observers map[int]Observer
	next      int
	log       zerolog.Logger
}

// NewNotifier returns an empty notifier.  Observers can be registered
// before or after Run starts.
func NewNotifier(log zerolog.Logger) *Notifier {
	return &Notifier{
		observers: make(map[int]Observer),
		log:       log.With().Str("component", "notifier").Logger(),
	}
}

// Register adds an observer and returns a function that removes it.
// A delivery already in flight when the removal runs may still arrive.
func (n *Notifier) Register(o Observer) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	n.observers[id] = o
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.observers, id)
	}
}

// Run subscribes to both store feeds and dispatches snapshots until the
// context is cancelled.  It blocks; callers run it in a goroutine.
func (n *Notifier) Run(ctx context.Context, st store.Store) {
	seatCh := st.SubscribeSeats(ctx)
	bookingCh := st.SubscribeBookings(ctx)
	n.log.Info().Msg("notifier running")

	for {
		select {
		case <-ctx.Done():
			n.log.Info().Msg("notifier stopped")
			return
		case seats, ok := <-seatCh:
			if !ok {
				seatCh = nil
				continue
			}
			for _, o := range n.snapshotObservers() {
				o.SeatsChanged(seats)
			}
		case bookings, ok := <-bookingCh:
			if !ok {
				bookingCh = nil
				continue
			}
			for _, o := range n.snapshotObservers() {
				o.BookingsChanged(bookings)
			}
		}
	}
}

func (n *Notifier) snapshotObservers() []Observer {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Observer, 0, len(n.observers))
	for _, o := range n.observers {
		out = append(out, o)
	}
	return out
}
