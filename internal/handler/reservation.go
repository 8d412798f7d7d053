package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-reservation/internal/middleware"
	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// ReservationHandler serves the customer-facing reservation lifecycle:
// create, check in, temporary leave, release, and the read endpoints
// the client synchronization layer pulls from.
type ReservationHandler struct {
	Store *store.Store
}

// NewReservationHandler constructs the handler.  The store must be
// non-nil.
func NewReservationHandler(st *store.Store) *ReservationHandler {
	if st == nil {
		panic("nil store passed to NewReservationHandler")
	}
	return &ReservationHandler{Store: st}
}

// Create handles POST /v1/reservations.  The body names a seat and a
// slot; the authenticated user becomes the owner.
func (h *ReservationHandler) Create(c echo.Context) error {
	var body struct {
		SeatID uint64    `json:"seat_id"`
		Start  time.Time `json:"start"`
		End    time.Time `json:"end"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SeatID == 0 || body.Start.IsZero() || !body.Start.Before(body.End) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id and a valid slot are required"})
	}

	actor := middleware.ActorFromContext(c)
	res, err := h.Store.Create(c.Request().Context(), actor,
		body.SeatID, model.Slot{Start: body.Start.UTC(), End: body.End.UTC()})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// CheckIn handles POST /v1/reservations/:id/checkin.  The body carries
// the presence proof: a scanned QR token, or latitude and longitude for
// the geofence check.  The same endpoint records the return from a
// temporary leave.
func (h *ReservationHandler) CheckIn(c echo.Context) error {
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var proof store.CheckInProof
	if err := c.Bind(&proof); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	actor := middleware.ActorFromContext(c)
	if err := h.Store.CheckIn(actor, id, proof); err != nil {
		return fail(c, err)
	}
	res, err := h.Store.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Leave handles POST /v1/reservations/:id/leave, starting a temporary
// leave with its grace deadline.
func (h *ReservationHandler) Leave(c echo.Context) error {
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	actor := middleware.ActorFromContext(c)
	if err := h.Store.TemporaryLeave(actor, id); err != nil {
		return fail(c, err)
	}
	res, err := h.Store.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Release handles POST /v1/reservations/:id/release, ending the
// reservation early on the owner's initiative.
func (h *ReservationHandler) Release(c echo.Context) error {
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	actor := middleware.ActorFromContext(c)
	if err := h.Store.Release(actor, id); err != nil {
		return fail(c, err)
	}
	res, err := h.Store.Get(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Active handles GET /v1/reservations/active: the caller's current
// active reservation, or 204 when they have none.  This is the client
// resync pull endpoint.
func (h *ReservationHandler) Active(c echo.Context) error {
	actor := middleware.ActorFromContext(c)
	res := h.Store.ActiveByUser(actor.UserID)
	if res == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, res)
}

// History handles GET /v1/reservations: the caller's reservations,
// newest first.
func (h *ReservationHandler) History(c echo.Context) error {
	actor := middleware.ActorFromContext(c)
	return c.JSON(http.StatusOK, h.Store.History(actor.UserID))
}

// Presence handles POST /v1/reservations/presence: a liveness ping that
// resets the caller's absence counter.
func (h *ReservationHandler) Presence(c echo.Context) error {
	actor := middleware.ActorFromContext(c)
	if err := h.Store.MarkPresence(actor.UserID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func reservationID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}
