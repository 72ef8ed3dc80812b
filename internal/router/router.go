package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/library-seat-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/library-seat-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// Deps bundles everything the route table needs.  The rate limiter is
// optional; passing nil registers the routes without it.
type Deps struct {
	Auth      *handler.AuthHandler
	Seats     *handler.SeatHandler
	Bookings  *handler.BookingHandler
	Admin     *handler.AdminHandler
	JWTSecret string
	RateLimit echo.MiddlewareFunc
}

// Register wires the full route table onto the provided Echo instance.
//
//	/healthz                     liveness probe, no auth
//	/v1/auth/*                   register + login, no auth
//	/v1/seats                    live seat map, no auth (the booking page
//	                             polls it before login)
//	/v1/*                        authenticated student surface
//	/v1/admin/*                  admin-only review and operations surface
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	e.GET("/v1/seats", d.Seats.List)

	// Unauthenticated session establishment.
	authGroup := e.Group("/v1/auth")
	authGroup.POST("/register", d.Auth.Register)
	authGroup.POST("/login", d.Auth.Login)

	// Everything else requires a valid access token.  Students and admins
	// both pass here; the admin group narrows further below.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(d.JWTSecret))
	auth.Use(middleware.RequireRole(model.RoleStudent, model.RoleAdmin))

	auth.GET("/me", d.Bookings.Me)
	auth.GET("/me/bookings", d.Bookings.MyBookings)

	// Mutations carry the rate limiter so one client cannot hammer the
	// seat locks.
	if d.RateLimit != nil {
		auth.POST("/reserve", d.Bookings.Reserve, d.RateLimit)
		auth.DELETE("/bookings/:id", d.Bookings.Cancel, d.RateLimit)
	} else {
		auth.POST("/reserve", d.Bookings.Reserve)
		auth.DELETE("/bookings/:id", d.Bookings.Cancel)
	}

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/bookings", d.Admin.ListBookings)
	admin.POST("/bookings/:id/confirm", d.Admin.Confirm)
	admin.POST("/bookings/:id/reject", d.Admin.Reject)
	admin.POST("/sweep", d.Admin.Sweep)
	admin.GET("/stats", d.Admin.Stats)
}
