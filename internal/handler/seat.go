package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-reservation/internal/middleware"
	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/store"
	"github.com/iliyamo/library-seat-reservation/internal/utils"
)

// SeatHandler serves the seat pool: the public map view, maintenance
// toggling, and the QR codes displayed on seat desk units.
type SeatHandler struct {
	Store    *store.Store
	QRSecret string
}

// NewSeatHandler constructs the handler.
func NewSeatHandler(st *store.Store, qrSecret string) *SeatHandler {
	if st == nil {
		panic("nil store passed to NewSeatHandler")
	}
	return &SeatHandler{Store: st, QRSecret: qrSecret}
}

// List handles GET /v1/seats: every seat with its live status, plus the
// pool statistics clients render on the dashboard.
func (h *SeatHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"seats": h.Store.Seats(),
		"stats": h.Store.Stats(),
	})
}

// SetStatus handles PUT /v1/admin/seats/:id/status, toggling a seat
// between available and maintenance.  Occupied cannot be set directly.
func (h *SeatHandler) SetStatus(c echo.Context) error {
	seatID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || seatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	var body struct {
		Status model.SeatStatus `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Status != model.SeatAvailable && body.Status != model.SeatMaintenance {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be available or maintenance"})
	}

	actor := middleware.ActorFromContext(c)
	if err := h.Store.SetSeatStatus(actor, seatID, body.Status); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "updated"})
}

// QRCode handles GET /v1/admin/seats/:id/qrcode.  The seat's desk unit
// polls this endpoint to refresh its displayed check-in code; the token
// expires quickly so a photographed code is useless.
func (h *SeatHandler) QRCode(c echo.Context) error {
	seatID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || seatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	token, err := utils.NewSeatToken(h.QRSecret, seatID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"seat_id": seatID, "qr_token": token})
}
