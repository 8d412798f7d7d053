package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-reservation/internal/middleware"
	"github.com/iliyamo/library-seat-reservation/internal/monitor"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// AdminHandler serves the librarian console: live occupancy monitoring,
// manual sweeps and administrative reservation actions.
type AdminHandler struct {
	Store   *store.Store
	Monitor *monitor.Monitor
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(st *store.Store, m *monitor.Monitor) *AdminHandler {
	if st == nil || m == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Store: st, Monitor: m}
}

// Monitoring handles GET /v1/admin/monitoring: every active reservation
// with its occupancy record.
func (h *AdminHandler) Monitoring(c echo.Context) error {
	actor := middleware.ActorFromContext(c)
	entries, err := h.Monitor.Monitoring(actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": entries})
}

// CheckNow handles POST /v1/admin/monitoring/check: an immediate
// monitor pass outside the regular interval.
func (h *AdminHandler) CheckNow(c echo.Context) error {
	actor := middleware.ActorFromContext(c)
	if err := h.Monitor.CheckNow(actor); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "check completed"})
}

// ManualCheckout handles POST /v1/admin/reservations/:id/checkout,
// closing a checked-in or away reservation with a recorded reason.
func (h *AdminHandler) ManualCheckout(c echo.Context) error {
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil || body.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason is required"})
	}

	actor := middleware.ActorFromContext(c)
	if err := h.Store.ManualCheckout(actor, id, body.Reason); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "checked out"})
}

// ForceRelease handles POST /v1/admin/reservations/:id/release, ending
// any active reservation including one still pending check-in.
func (h *AdminHandler) ForceRelease(c echo.Context) error {
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.Bind(&body)

	actor := middleware.ActorFromContext(c)
	if err := h.Store.ForceRelease(actor, id, body.Reason); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "released"})
}

// ClosingSweep handles POST /v1/admin/monitoring/closing-sweep, closing
// every active reservation without penalty at the end of the day.
func (h *AdminHandler) ClosingSweep(c echo.Context) error {
	actor := middleware.ActorFromContext(c)
	if !actor.Elevated() {
		return fail(c, store.ErrAuthorizationDenied)
	}
	h.Monitor.ClosingSweep()
	return c.JSON(http.StatusOK, echo.Map{"status": "sweep completed"})
}
