package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-reservation/internal/engine"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// BookingHandler exposes the reservation operations to authenticated
// students: reserve, cancel, and read back their own state.
type BookingHandler struct {
	Engine *engine.Engine
	Store  store.Store
}

func NewBookingHandler(e *engine.Engine, st store.Store) *BookingHandler {
	return &BookingHandler{Engine: e, Store: st}
}

type reserveReq struct {
	SeatIDs   []string `json:"seat_ids"`
	Date      string   `json:"date"`       // YYYY-MM-DD
	StartTime string   `json:"start_time"` // HH:MM
	Hours     int      `json:"hours"`
}

type reserveResp struct {
	BookingIDs []string `json:"booking_ids"`
}

// Reserve books the requested seats for the caller as one atomic request.
func (h *BookingHandler) Reserve(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	if req.Hours <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hours must be positive"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	email := h.userEmail(ctx, userID)
	ids, err := h.Engine.Reserve(ctx, userID, email, req.SeatIDs, date, req.StartTime, req.Hours)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, reserveResp{BookingIDs: ids})
}

// Cancel withdraws the caller's own booking.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID := c.Param("id")
	if bookingID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing booking id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Engine.Cancel(ctx, bookingID, userID); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's profile and current active booking.
func (h *BookingHandler) Me(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrUserNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return engineErrorFromStore(c, err)
	}
	active, err := h.Store.ActiveBookingsByUser(ctx, userID)
	if err != nil {
		return engineErrorFromStore(c, err)
	}

	resp := echo.Map{
		"user": userPart{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role},
	}
	if len(active) > 0 {
		resp["active_bookings"] = active
	}
	return c.JSON(http.StatusOK, resp)
}

// MyBookings returns the caller's booking history, newest first.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, err := h.Store.BookingsByUser(ctx, userID)
	if err != nil {
		return engineErrorFromStore(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// userEmail resolves the caller's email for booking records; a lookup
// failure leaves it empty rather than failing the reservation.
func (h *BookingHandler) userEmail(ctx context.Context, userID string) string {
	u, err := h.Store.GetUser(ctx, userID)
	if err != nil {
		return ""
	}
	return u.Email
}
