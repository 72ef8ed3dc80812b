package store

// Sentinel errors shared by every store backend.  Higher layers use
// errors.Is against these values to distinguish missing records from
// transport failures; the engine re-wraps them into its own taxonomy
// before they reach a caller.

import "errors"

// ErrSeatNotFound is returned when a seat code is not present in the
// catalog collection.
var ErrSeatNotFound = errors.New("seat not found")

// ErrBookingNotFound is returned when no booking exists for the given id.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound is returned when no user matches the given id or email.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateRecord is returned when a create collides with an existing
// record id or unique field.
var ErrDuplicateRecord = errors.New("duplicate record")

// ErrUnavailable wraps transport or transaction-layer failures.  An
// operation that fails with ErrUnavailable committed nothing and is safe
// to retry wholesale.
var ErrUnavailable = errors.New("store unavailable")
