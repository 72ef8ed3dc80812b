package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-seat-reservation/internal/model"
)

func TestColors(t *testing.T) {
	seats := []model.Seat{
		{ID: "I1", Status: model.SeatAvailable},
		{ID: "I2", Status: model.SeatBooked, BookedBy: "u1", EndTime: "12:00"},
		{ID: "I3", Status: model.SeatBooked, BookedBy: "u2", EndTime: "14:00", Approved: true},
	}
	bookings := []model.Booking{
		{ID: "b1", SeatID: "I2", UserID: "u1", Status: model.BookingPending},
		{ID: "b2", SeatID: "I3", UserID: "u2", Status: model.BookingConfirmed},
		{ID: "b0", SeatID: "I1", UserID: "u9", Status: model.BookingCancelled},
	}

	views := Colors(seats, bookings)
	require.Len(t, views, 3)
	byID := make(map[string]SeatView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}

	assert.Equal(t, ColorAvailable, byID["I1"].Color)
	assert.Empty(t, byID["I1"].BookedBy, "terminal bookings must not color a free seat")

	assert.Equal(t, ColorPending, byID["I2"].Color)
	assert.Equal(t, "u1", byID["I2"].BookedBy)

	assert.Equal(t, ColorConfirmed, byID["I3"].Color)
	assert.Equal(t, "14:00", byID["I3"].EndTime)
}

// A seat snapshot that has outrun the bookings snapshot still renders a
// state that existed: the Approved flag decides pending vs confirmed.
func TestColorsLaggingBookings(t *testing.T) {
	seats := []model.Seat{
		{ID: "O1", Status: model.SeatBooked, BookedBy: "u1"},
		{ID: "O2", Status: model.SeatBooked, BookedBy: "u2", Approved: true},
	}

	views := Colors(seats, nil)
	require.Len(t, views, 2)
	assert.Equal(t, ColorPending, views[0].Color)
	assert.Equal(t, ColorConfirmed, views[1].Color)
}

func TestColorsEmpty(t *testing.T) {
	assert.Empty(t, Colors(nil, nil))
}
