// Package router defines how HTTP routes are registered for the API.
// Public routes carry no middleware; the /v1 surface requires a valid
// access token and is rate limited; the /v1/admin surface additionally
// requires an elevated role.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-reservation/internal/handler"
	"github.com/iliyamo/library-seat-reservation/internal/middleware"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// Handlers bundles the handler set wired in cmd/server.
type Handlers struct {
	Reservation *handler.ReservationHandler
	Seat        *handler.SeatHandler
	Admin       *handler.AdminHandler
	Appeal      *handler.AppealHandler
	WS          *handler.WSHandler
}

// Register wires every route onto the Echo instance.  rateLimit may be
// a pass-through when the limiter is disabled.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	// The websocket endpoint authenticates itself from the token query
	// parameter; anonymous connections get broadcast topics only.
	e.GET("/ws", h.WS.Serve)

	// Seat map and pool statistics are public so guests can browse
	// availability before signing in.
	e.GET("/v1/seats", h.Seat.List)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(rateLimit)

	auth.POST("/reservations", h.Reservation.Create)
	auth.GET("/reservations", h.Reservation.History)
	auth.GET("/reservations/active", h.Reservation.Active)
	auth.POST("/reservations/presence", h.Reservation.Presence)
	auth.POST("/reservations/:id/checkin", h.Reservation.CheckIn)
	auth.POST("/reservations/:id/leave", h.Reservation.Leave)
	auth.POST("/reservations/:id/release", h.Reservation.Release)

	auth.POST("/appeals", h.Appeal.Submit)
	auth.GET("/appeals", h.Appeal.Mine)

	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(store.RoleLibrarian, store.RoleAdmin))

	admin.GET("/monitoring", h.Admin.Monitoring)
	admin.POST("/monitoring/check", h.Admin.CheckNow)
	admin.POST("/monitoring/closing-sweep", h.Admin.ClosingSweep)
	admin.POST("/reservations/:id/checkout", h.Admin.ManualCheckout)
	admin.POST("/reservations/:id/release", h.Admin.ForceRelease)
	admin.PUT("/seats/:id/status", h.Seat.SetStatus)
	admin.GET("/seats/:id/qrcode", h.Seat.QRCode)
	admin.GET("/appeals", h.Appeal.Pending)
	admin.POST("/appeals/:id/review", h.Appeal.Review)
}
