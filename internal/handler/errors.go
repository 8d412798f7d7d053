// Package handler contains the HTTP handlers for the reservation
// service.  Handlers translate between the transport layer and the
// store's typed operations; authentication and rate limiting run in
// middleware before any handler is reached.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-reservation/internal/appeal"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// fail maps domain sentinel errors to HTTP responses.  Unknown errors
// become opaque 500s; the detail stays in the server log, not the body.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, store.ErrAuthorizationDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, store.ErrSeatUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat unavailable"})
	case errors.Is(err, store.ErrUserAlreadyActive):
		return c.JSON(http.StatusConflict, echo.Map{"error": "an active reservation already exists"})
	case errors.Is(err, store.ErrWindowExpired):
		return c.JSON(http.StatusConflict, echo.Map{"error": "deadline passed"})
	case errors.Is(err, store.ErrInvalidState):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid reservation state"})
	case errors.Is(err, store.ErrProofInvalid):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "presence proof rejected"})
	case errors.Is(err, store.ErrCreditTooLow):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "credit score too low"})
	case errors.Is(err, appeal.ErrDuplicateAppeal):
		return c.JSON(http.StatusConflict, echo.Map{"error": "appeal already filed"})
	case errors.Is(err, appeal.ErrAlreadyReviewed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "appeal already reviewed"})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
