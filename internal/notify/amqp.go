package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/queue"
)

// AMQPObserver republishes booking lifecycle changes to the broker.  It
// diffs consecutive booking snapshots by id and status, so only actual
// transitions become events.  Publishing happens on a separate goroutine
// per snapshot; broker failures are logged and dropped, never propagated
// into the notifier's dispatch loop.
type AMQPObserver struct {
	log  zerolog.Logger
	seen map[string]model.BookingStatus
}

// NewAMQPObserver returns an observer with no snapshot history; the first
// snapshot it sees emits one event per booking.
func NewAMQPObserver(log zerolog.Logger) *AMQPObserver {
	return &AMQPObserver{
		log:  log.With().Str("component", "amqp-observer").Logger(),
		seen: make(map[string]model.BookingStatus),
	}
}

// SeatsChanged is a no-op: seat state is derivable from booking events.
func (o *AMQPObserver) SeatsChanged([]model.Seat) {}

// BookingsChanged publishes one event for every booking whose status
// differs from the previous snapshot.
func (o *AMQPObserver) BookingsChanged(bookings []model.Booking) {
	var events []queue.BookingEvent
	now := time.Now().UTC().Format(time.RFC3339)
	for _, b := range bookings {
		if prev, ok := o.seen[b.ID]; ok && prev == b.Status {
			continue
		}
		o.seen[b.ID] = b.Status
		events = append(events, queue.BookingEvent{
			BookingID:  b.ID,
			UserID:     b.UserID,
			UserEmail:  b.UserEmail,
			SeatID:     b.SeatID,
			Status:     string(b.Status),
			Date:       b.Date,
			StartTime:  b.StartTime,
			EndTime:    b.EndTime,
			OccurredAt: now,
		})
	}
	if len(events) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, ev := range events {
			if err := queue.PublishBookingEvent(ctx, ev); err != nil {
				o.log.Warn().Err(err).Str("booking_id", ev.BookingID).Msg("event publish failed, dropping")
			}
		}
	}()
}
