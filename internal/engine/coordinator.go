package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/policy"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// Engine executes the four transactional operations of the reservation
// core plus the expiry sweep.  It holds no in-memory locks and no durable
// state of its own; the store's transactions provide the mutual exclusion.
type Engine struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// New returns an engine bound to the given store.
func New(st store.Store, log zerolog.Logger) *Engine {
	return &Engine{
		store: st,
		log:   log.With().Str("component", "engine").Logger(),
		now:   time.Now,
	}
}

// Reserve validates a seat reservation request and executes it as one
// atomic transaction: every requested seat is re-read under lock, rejected
// wholesale on any conflict, then locked to the caller with one pending
// booking created per seat.  On success it returns the created booking
// ids in request order, duplicates removed.
//
// Under concurrent Reserve calls targeting overlapping seat sets, at most
// one transaction commits per seat; the losers fail with a SeatConflictError
// naming the contested seats and no partial state.  A duplicate-booking
// check runs both before the transaction (fast, user-friendly failure) and
// inside it (authoritative, closes the check-then-act race).
func (e *Engine) Reserve(ctx context.Context, userID, userEmail string, seatIDs []string, date time.Time, start string, hours int) ([]string, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrForbidden)
	}
	unique := dedupe(seatIDs)
	if len(unique) == 0 {
		return nil, &PolicyViolationError{Reason: "no seats requested"}
	}
	for _, id := range unique {
		if !model.InCatalog(id) {
			return nil, fmt.Errorf("%w: %s", ErrSeatNotFound, id)
		}
	}

	if !policy.IsOpenDay(date) {
		return nil, &PolicyViolationError{Reason: "the library is closed on weekends"}
	}
	startStr, endStr, err := policy.ComputeWindow(start, hours)
	if err != nil {
		return nil, &PolicyViolationError{Reason: err.Error()}
	}
	if policy.CrossesMidnight(start, hours) || !policy.IsWithinHours(endStr) {
		return nil, &PolicyViolationError{Reason: fmt.Sprintf("the window %s–%s ends after the 23:30 close", startStr, endStr)}
	}

	// Pre-check outside the transaction so the common duplicate case fails
	// without taking any seat locks.  The same check is repeated inside
	// the transaction, where it is authoritative.
	active, err := e.store.ActiveBookingsByUser(ctx, userID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if len(active) > 0 {
		return nil, ErrDuplicateActiveBooking
	}

	var bookingIDs []string
	err = e.store.RunTx(ctx, func(tx store.Tx) error {
		active, err := tx.ActiveBookingsByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return ErrDuplicateActiveBooking
		}

		// Re-read every requested seat under lock.  Locks are taken in
		// sorted seat order so two multi-seat reservations with opposite
		// request orders queue instead of deadlocking.  Any conflict
		// aborts the whole transaction: no seats are partially reserved.
		lockOrder := make([]string, len(unique))
		copy(lockOrder, unique)
		sort.Strings(lockOrder)

		var conflicts []string
		seats := make(map[string]*model.Seat, len(unique))
		for _, id := range lockOrder {
			seat, err := tx.SeatForUpdate(ctx, id)
			if errors.Is(err, store.ErrSeatNotFound) {
				return fmt.Errorf("%w: %s", ErrSeatNotFound, id)
			}
			if err != nil {
				return err
			}
			if seat.Status == model.SeatBooked {
				conflicts = append(conflicts, id)
				continue
			}
			seats[id] = seat
		}
		if len(conflicts) > 0 {
			return &SeatConflictError{SeatIDs: conflicts}
		}

		// Writes run in request order so the returned booking ids line
		// up with the seats the caller asked for.
		now := e.now().UTC()
		for _, id := range unique {
			seat := seats[id]
			seat.Status = model.SeatBooked
			seat.BookedBy = userID
			seat.BookedAt = now
			seat.EndTime = endStr
			seat.Approved = false
			if err := tx.PutSeat(ctx, seat); err != nil {
				return err
			}
			b := &model.Booking{
				ID:        uuid.NewString(),
				UserID:    userID,
				UserEmail: userEmail,
				SeatID:    seat.ID,
				Date:      date.Format("2006-01-02"),
				StartTime: startStr,
				EndTime:   endStr,
				Hours:     hours,
				Status:    model.BookingPending,
				CreatedAt: now,
			}
			if err := tx.CreateBooking(ctx, b); err != nil {
				return err
			}
			bookingIDs = append(bookingIDs, b.ID)
		}
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	e.log.Info().
		Str("user_id", userID).
		Strs("seats", unique).
		Str("window", startStr+"–"+endStr).
		Msg("reservation created")
	return bookingIDs, nil
}

// dedupe drops empty and repeated seat ids while preserving request order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
