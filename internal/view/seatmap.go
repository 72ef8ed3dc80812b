// Package view derives the seat-map presentation state from store
// snapshots.  The derivation is a pure function of the latest seats and
// bookings collections, so observers that receive the two feeds in any
// interleaving always render a state that actually existed.
package view

import (
	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// SeatColor is the hex color the client renders a seat with.
type SeatColor string

const (
	ColorAvailable SeatColor = "#22c55e"
	ColorPending   SeatColor = "#2563eb"
	ColorConfirmed SeatColor = "#ef4444"
)

// SeatView is one seat of the rendered map.
type SeatView struct {
	ID       string           `json:"id"`
	Status   model.SeatStatus `json:"status"`
	Color    SeatColor        `json:"color"`
	BookedBy string           `json:"booked_by,omitempty"`
	EndTime  string           `json:"end_time,omitempty"`
	Approved bool             `json:"approved"`
}

// Colors maps every seat in the snapshot to its display state.  A booked
// seat shows pending until its booking is confirmed, then confirmed.  The
// booking collection is the source of truth for the pending/confirmed
// split; the seat's Approved flag only breaks ties when the two snapshots
// were taken a commit apart.
func Colors(seats []model.Seat, bookings []model.Booking) []SeatView {
	confirmedSeat := make(map[string]bool, len(bookings))
	pendingSeat := make(map[string]bool, len(bookings))
	for _, b := range bookings {
		switch b.Status {
		case model.BookingConfirmed:
			confirmedSeat[b.SeatID] = true
		case model.BookingPending:
			pendingSeat[b.SeatID] = true
		}
	}

	out := make([]SeatView, 0, len(seats))
	for _, seat := range seats {
		v := SeatView{
			ID:       seat.ID,
			Status:   seat.Status,
			BookedBy: seat.BookedBy,
			EndTime:  seat.EndTime,
			Approved: seat.Approved,
		}
		switch {
		case seat.Status != model.SeatBooked:
			v.Color = ColorAvailable
			v.BookedBy = ""
			v.EndTime = ""
		case confirmedSeat[seat.ID]:
			v.Color = ColorConfirmed
		case pendingSeat[seat.ID]:
			v.Color = ColorPending
		case seat.Approved:
			// Bookings snapshot lags the seat snapshot.
			v.Color = ColorConfirmed
		default:
			v.Color = ColorPending
		}
		out = append(out, v)
	}
	return out
}
