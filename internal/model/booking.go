package model

import "time"

// BookingStatus is the closed set of booking lifecycle states.  Using a
// typed enumeration instead of bare strings makes invalid transitions a
// matter for the transition table below rather than ad-hoc string
// comparisons scattered through the code.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"   // awaiting admin review
	BookingConfirmed BookingStatus = "confirmed" // approved by an admin
	BookingRejected  BookingStatus = "rejected"  // declined by an admin; terminal
	BookingCancelled BookingStatus = "cancelled" // withdrawn by the owner; terminal
	BookingCompleted BookingStatus = "completed" // window elapsed, reaped; terminal
)

// Valid reports whether s is one of the known booking statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingRejected, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Active reports whether a booking in this status still holds its seat.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Terminal reports whether no further transition is permitted from s.
func (s BookingStatus) Terminal() bool {
	return s == BookingRejected || s == BookingCancelled || s == BookingCompleted
}

// transitions enumerates every permitted lifecycle move.  A pending booking
// can be confirmed or rejected by an admin, or cancelled by its owner; a
// confirmed booking can be completed by the reaper, rejected by an admin
// override, or cancelled by its owner.  Terminal states have no exits.
var transitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingRejected, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingRejected, BookingCancelled},
	BookingRejected:  {},
	BookingCancelled: {},
	BookingCompleted: {},
}

// CanTransition reports whether a booking may move from one status to
// another.  Callers must still apply the move inside the same transaction
// that re-reads the current status.
func CanTransition(from, to BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Booking is a time-bounded claim by one user on one seat.  It carries its
// own lifecycle independent of the seat record; the two are only ever
// mutated together inside a single store transaction.
//
// Fields:
//
//	ID          – generated record id.
//	UserID      – owner of the claim.
//	UserEmail   – denormalised for admin display.
//	SeatID      – seat code this booking holds.
//	Date        – booking day, "YYYY-MM-DD".
//	StartTime   – reservation window start, "HH:MM".
//	EndTime     – reservation window end, "HH:MM"; always start + hours.
//	Hours       – positive whole-hour duration.
//	Status      – current lifecycle state.
//	CreatedAt   – when the booking was created.
//	ClosedAt    – set when an admin rejects or the owner cancels.
//	CompletedAt – set when the reaper completes an elapsed booking.
type Booking struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	UserEmail   string        `json:"user_email"`
	SeatID      string        `json:"seat_id"`
	Date        string        `json:"date"`
	StartTime   string        `json:"start_time"`
	EndTime     string        `json:"end_time"`
	Hours       int           `json:"hours"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	ClosedAt    *time.Time    `json:"closed_at,omitempty"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}
