// Package engine implements the seat reservation consistency engine: the
// reservation coordinator, the booking lifecycle state machine, and the
// expiry reaper.  Every mutation of seat or booking state in the system
// goes through one of the transactional operations defined here.
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// Typed results for the operational surface.  Callers match these with
// errors.Is; the concrete error values carry the detail a user needs to
// correct the request.
var (
	// ErrPolicyViolation: the requested window breaks the open-day or
	// open-hours rules.  User-correctable, not retryable as-is.
	ErrPolicyViolation = errors.New("policy violation")

	// ErrDuplicateActiveBooking: the caller already holds a pending or
	// confirmed booking.
	ErrDuplicateActiveBooking = errors.New("user already has an active booking")

	// ErrSeatNotFound: a requested seat code is not in the catalog; the
	// client's view is stale and should be refreshed.
	ErrSeatNotFound = errors.New("seat not found")

	// ErrSeatConflict: one or more requested seats were taken by a
	// concurrent transaction.  The caller should re-display live state and
	// let the user re-select, not retry the same request.
	ErrSeatConflict = errors.New("seat conflict")

	// ErrInvalidTransition: a lifecycle operation hit a booking that is
	// not in the required source state; stale admin or client state.
	ErrInvalidTransition = errors.New("invalid booking transition")

	// ErrForbidden: the caller does not own the booking it is operating on.
	ErrForbidden = errors.New("forbidden")

	// ErrStoreUnavailable: transport or transaction-layer failure.  The
	// whole operation is safe to retry because nothing was committed.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// PolicyViolationError explains which rule a reservation request broke so
// the user can pick another day or time window.
type PolicyViolationError struct {
	Reason string
}

func (e *PolicyViolationError) Error() string {
	return "policy violation: " + e.Reason
}

// Is makes errors.Is(err, ErrPolicyViolation) hold for all policy errors.
func (e *PolicyViolationError) Is(target error) bool {
	return target == ErrPolicyViolation
}

// SeatConflictError lists the seats that were already booked when the
// transaction re-read them, so the client can highlight exactly which
// selections to redo.
type SeatConflictError struct {
	SeatIDs []string
}

func (e *SeatConflictError) Error() string {
	return "seats already booked: " + strings.Join(e.SeatIDs, ", ")
}

// Is makes errors.Is(err, ErrSeatConflict) hold for all seat conflicts.
func (e *SeatConflictError) Is(target error) bool {
	return target == ErrSeatConflict
}

// wrapStoreErr translates store sentinels into the engine taxonomy.
// Errors that already belong to the taxonomy pass through untouched;
// anything else is a transport-level failure.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrPolicyViolation),
		errors.Is(err, ErrDuplicateActiveBooking),
		errors.Is(err, ErrSeatNotFound),
		errors.Is(err, ErrSeatConflict),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrForbidden):
		return err
	case errors.Is(err, store.ErrSeatNotFound):
		return fmt.Errorf("%w: %v", ErrSeatNotFound, err)
	case errors.Is(err, store.ErrBookingNotFound):
		// A lifecycle operation on a vanished booking is stale state.
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
