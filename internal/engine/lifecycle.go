package engine

import (
	"context"
	"fmt"

	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// Confirm moves a pending booking to confirmed and marks its seat as
// admin-approved.  The seat stays booked.  Authorization (admin role) is
// enforced by the caller; the engine only enforces the state machine.
func (e *Engine) Confirm(ctx context.Context, bookingID string) error {
	err := e.store.RunTx(ctx, func(tx store.Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != model.BookingPending {
			return fmt.Errorf("%w: cannot confirm a %s booking", ErrInvalidTransition, b.Status)
		}
		b.Status = model.BookingConfirmed
		if err := tx.PutBooking(ctx, b); err != nil {
			return err
		}

		seat, err := tx.SeatForUpdate(ctx, b.SeatID)
		if err != nil {
			return err
		}
		seat.Approved = true
		return tx.PutSeat(ctx, seat)
	})
	if err != nil {
		return wrapStoreErr(err)
	}
	e.log.Info().Str("booking_id", bookingID).Msg("booking confirmed")
	return nil
}

// Reject moves a pending or confirmed booking to rejected, stamps
// ClosedAt, and releases the seat in the same transaction.
func (e *Engine) Reject(ctx context.Context, bookingID string) error {
	err := e.store.RunTx(ctx, func(tx store.Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !model.CanTransition(b.Status, model.BookingRejected) {
			return fmt.Errorf("%w: cannot reject a %s booking", ErrInvalidTransition, b.Status)
		}
		now := e.now().UTC()
		b.Status = model.BookingRejected
		b.ClosedAt = &now
		if err := tx.PutBooking(ctx, b); err != nil {
			return err
		}
		return e.releaseSeat(ctx, tx, b.SeatID)
	})
	if err != nil {
		return wrapStoreErr(err)
	}
	e.log.Info().Str("booking_id", bookingID).Msg("booking rejected")
	return nil
}

// Cancel withdraws the caller's own active booking and releases the seat.
// Only the booking's owner may cancel it.
func (e *Engine) Cancel(ctx context.Context, bookingID, callerUserID string) error {
	err := e.store.RunTx(ctx, func(tx store.Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != callerUserID {
			return fmt.Errorf("%w: booking belongs to another user", ErrForbidden)
		}
		if !model.CanTransition(b.Status, model.BookingCancelled) {
			return fmt.Errorf("%w: cannot cancel a %s booking", ErrInvalidTransition, b.Status)
		}
		now := e.now().UTC()
		b.Status = model.BookingCancelled
		b.ClosedAt = &now
		if err := tx.PutBooking(ctx, b); err != nil {
			return err
		}
		return e.releaseSeat(ctx, tx, b.SeatID)
	})
	if err != nil {
		return wrapStoreErr(err)
	}
	e.log.Info().Str("booking_id", bookingID).Str("user_id", callerUserID).Msg("booking cancelled")
	return nil
}

// releaseSeat clears the seat's hold fields inside the transaction that
// terminates its owning booking.  A seat is only ever released by the same
// writer that moves the booking out of its active state.
func (e *Engine) releaseSeat(ctx context.Context, tx store.Tx, seatID string) error {
	seat, err := tx.SeatForUpdate(ctx, seatID)
	if err != nil {
		return err
	}
	seat.Release()
	return tx.PutSeat(ctx, seat)
}
