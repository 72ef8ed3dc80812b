package model

import (
	"strconv"
	"time"
)

// SeatStatus is the closed set of states a seat record can be in.  A seat
// is either free for booking or held by exactly one active booking; the
// coordinator is the only component that moves a seat from available to
// booked.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available" // seat is free and selectable
	SeatBooked    SeatStatus = "booked"    // seat is held by a pending or confirmed booking
)

// Valid reports whether s is one of the known seat statuses.
func (s SeatStatus) Valid() bool {
	return s == SeatAvailable || s == SeatBooked
}

// Seat describes one addressable seat in the reading room.  Seats are
// identified by their stable code from the fixed layout (e.g. "I3", "O17").
// The hold fields (BookedBy, BookedAt, EndTime, Approved) are meaningful
// only while Status is SeatBooked and are cleared when the owning booking
// terminates.
//
// Fields:
//
//	ID       – stable seat code from the layout catalog.
//	Status   – available or booked.
//	BookedBy – user id of the current holder; empty when available.
//	BookedAt – when the current hold was taken; zero when available.
//	EndTime  – wall-clock "HH:MM" at which the hold lapses; empty when available.
//	Approved – true once an admin has confirmed the owning booking.
type Seat struct {
	ID       string     `json:"id"`
	Status   SeatStatus `json:"status"`
	BookedBy string     `json:"booked_by,omitempty"`
	BookedAt time.Time  `json:"booked_at,omitempty"`
	EndTime  string     `json:"end_time,omitempty"`
	Approved bool       `json:"approved"`
}

// Release clears every hold field and returns the seat to available.  The
// caller is responsible for persisting the change in the same transaction
// that terminates the owning booking.
func (s *Seat) Release() {
	s.Status = SeatAvailable
	s.BookedBy = ""
	s.BookedAt = time.Time{}
	s.EndTime = ""
	s.Approved = false
}

// The reading room has a fixed layout: sixteen seats around the central
// study table (inner ring) and thirty-four along the walls (outer ring).
const (
	innerSeatCount = 16
	outerSeatCount = 34
)

// Catalog returns the full list of seat codes in display order: the inner
// ring I1..I16 followed by the outer ring O1..O34.  The layout is fixed;
// seat configuration is out of scope.
func Catalog() []string {
	ids := make([]string, 0, innerSeatCount+outerSeatCount)
	for i := 1; i <= innerSeatCount; i++ {
		ids = append(ids, "I"+strconv.Itoa(i))
	}
	for i := 1; i <= outerSeatCount; i++ {
		ids = append(ids, "O"+strconv.Itoa(i))
	}
	return ids
}

// InCatalog reports whether id names a seat in the fixed layout.  Only
// the canonical spelling counts: zero-padded forms like "I01" are not
// catalog codes.
func InCatalog(id string) bool {
	if len(id) < 2 || id[1] == '0' {
		return false
	}
	n := 0
	for i := 1; i < len(id); i++ {
		ch := id[i]
		if ch < '0' || ch > '9' {
			return false
		}
		n = n*10 + int(ch-'0')
	}
	switch id[0] {
	case 'I':
		return n >= 1 && n <= innerSeatCount
	case 'O':
		return n >= 1 && n <= outerSeatCount
	}
	return false
}
