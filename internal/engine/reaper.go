package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/policy"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// RunExpirySweep scans all confirmed bookings and completes every one
// whose window has lapsed at now, releasing its seat in the same
// transaction.  Each expired booking is handled in its own transaction
// that re-checks the status under lock, so a sweep racing an admin Reject
// or an owner Cancel skips the booking instead of erroring; running the
// sweep twice in a row is a no-op the second time.
//
// A failure on one booking is logged and does not stop the sweep.  It
// returns the number of bookings completed.
//
// Pending bookings are not auto-expired: only a confirmed booking's lapse
// is acted on here, matching the admin-approval flow where an unreviewed
// request stays visible until an admin resolves it.
func (e *Engine) RunExpirySweep(ctx context.Context, now time.Time) (int, error) {
	confirmed, err := e.store.BookingsByStatus(ctx, model.BookingConfirmed)
	if err != nil {
		return 0, wrapStoreErr(err)
	}

	completed := 0
	for _, candidate := range confirmed {
		if !policy.HasExpired(candidate.EndTime, now) {
			continue
		}
		if err := e.expireBooking(ctx, candidate.ID, now); err != nil {
			e.log.Error().
				Err(err).
				Str("booking_id", candidate.ID).
				Str("seat_id", candidate.SeatID).
				Msg("failed to expire booking, continuing sweep")
			continue
		}
		completed++
	}
	return completed, nil
}

// expireBooking completes one elapsed booking and frees its seat.  A
// booking that is no longer confirmed when re-read under lock is skipped.
func (e *Engine) expireBooking(ctx context.Context, bookingID string, now time.Time) error {
	err := e.store.RunTx(ctx, func(tx store.Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != model.BookingConfirmed {
			// Moved out of confirmed by a concurrent Reject or Cancel.
			return nil
		}
		stamp := now.UTC()
		b.Status = model.BookingCompleted
		b.CompletedAt = &stamp
		if err := tx.PutBooking(ctx, b); err != nil {
			return err
		}
		return e.releaseSeat(ctx, tx, b.SeatID)
	})
	return wrapStoreErr(err)
}

// Reaper drives RunExpirySweep on a fixed interval for the lifetime of the
// process: one run at startup, then one per tick until the context is
// cancelled.  It runs independently of any observer or request traffic.
type Reaper struct {
	engine   *Engine
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time
	done     chan struct{}
}

// NewReaper returns a reaper sweeping at the given interval; a
// non-positive interval defaults to one minute.
func NewReaper(e *Engine, interval time.Duration, log zerolog.Logger) *Reaper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reaper{
		engine:   e,
		interval: interval,
		log:      log.With().Str("component", "reaper").Logger(),
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in a goroutine.  The loop stops when ctx
// is cancelled; Wait blocks until it has fully stopped.
func (r *Reaper) Start(ctx context.Context) {
	go func() {
		defer close(r.done)
		r.sweep(ctx)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sweep(ctx)
			}
		}
	}()
}

// Wait blocks until the sweep loop has exited.
func (r *Reaper) Wait() {
	<-r.done
}

func (r *Reaper) sweep(ctx context.Context) {
	n, err := r.engine.RunExpirySweep(ctx, r.now())
	if err != nil {
		r.log.Error().Err(err).Msg("expiry sweep failed")
		return
	}
	if n > 0 {
		r.log.Info().Int("completed", n).Msg("expiry sweep released seats")
	}
}
