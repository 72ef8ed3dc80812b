package handler // handler defines http handlers

import (
	"errors"   // errors provides sentinel matching for engine failures
	"net/http" // net/http provides status codes

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/library-seat-reservation/internal/engine"
)

// currentUserID extracts the authenticated user's id from echo.Context.
// JWTAuth stores the token subject as a string; anything else means the
// route was registered without the auth middleware.
func currentUserID(c echo.Context) (string, error) {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("invalid user_id in context")
}

// engineError maps the engine's error taxonomy to an HTTP response.  The
// body always carries enough detail for the client to correct itself: a
// policy violation names the broken rule, a seat conflict lists the
// contested seats.
func engineError(c echo.Context, err error) error {
	var policyErr *engine.PolicyViolationError
	if errors.As(err, &policyErr) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "policy_violation", "reason": policyErr.Reason})
	}
	var conflictErr *engine.SeatConflictError
	if errors.As(err, &conflictErr) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat_conflict", "seats": conflictErr.SeatIDs})
	}
	switch {
	case errors.Is(err, engine.ErrPolicyViolation):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "policy_violation"})
	case errors.Is(err, engine.ErrDuplicateActiveBooking):
		return c.JSON(http.StatusConflict, echo.Map{"error": "duplicate_active_booking"})
	case errors.Is(err, engine.ErrSeatNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat_not_found"})
	case errors.Is(err, engine.ErrSeatConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat_conflict"})
	case errors.Is(err, engine.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid_transition"})
	case errors.Is(err, engine.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, engine.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store_unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal"})
	}
}
