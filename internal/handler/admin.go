package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-reservation/internal/engine"
	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/store"
	"github.com/iliyamo/library-seat-reservation/internal/view"
)

// AdminHandler exposes the review and operations surface: pending request
// queue, confirm/reject, the manual sweep trigger, and dashboard stats.
// Role enforcement happens in the router; these handlers trust it.
type AdminHandler struct {
	Engine *engine.Engine
	Store  store.Store
}

func NewAdminHandler(e *engine.Engine, st store.Store) *AdminHandler {
	return &AdminHandler{Engine: e, Store: st}
}

// ListBookings returns the pending and confirmed bookings for review.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pending, err := h.Store.BookingsByStatus(ctx, model.BookingPending)
	if err != nil {
		return engineErrorFromStore(c, err)
	}
	confirmed, err := h.Store.BookingsByStatus(ctx, model.BookingConfirmed)
	if err != nil {
		return engineErrorFromStore(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"pending":   pending,
		"confirmed": confirmed,
	})
}

// Confirm approves a pending booking.
func (h *AdminHandler) Confirm(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Engine.Confirm(ctx, c.Param("id")); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Reject declines a pending or revokes a confirmed booking.
func (h *AdminHandler) Reject(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Engine.Reject(ctx, c.Param("id")); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Sweep runs one expiry sweep immediately and reports how many bookings
// it completed.  The periodic reaper keeps running regardless.
func (h *AdminHandler) Sweep(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	n, err := h.Engine.RunExpirySweep(ctx, time.Now())
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"completed": n})
}

// Stats returns the dashboard numbers: seat occupancy, user count, and
// the most recent bookings with their derived map state.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	seats, err := h.Store.ListSeats(ctx)
	if err != nil {
		return engineErrorFromStore(c, err)
	}
	bookings, err := h.Store.ListBookings(ctx)
	if err != nil {
		return engineErrorFromStore(c, err)
	}
	users, err := h.Store.ListUsers(ctx)
	if err != nil {
		return engineErrorFromStore(c, err)
	}

	booked := 0
	for _, seat := range seats {
		if seat.Status == model.SeatBooked {
			booked++
		}
	}
	recent := bookings
	if len(recent) > 10 {
		recent = recent[:10]
	}

	return c.JSON(http.StatusOK, echo.Map{
		"seats_total":     len(seats),
		"seats_booked":    booked,
		"seats_available": len(seats) - booked,
		"users_total":     len(users),
		"recent_bookings": recent,
		"seat_map":        view.Colors(seats, bookings),
	})
}
