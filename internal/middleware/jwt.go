// Package middleware provides reusable HTTP middleware: bearer token
// authentication, role enforcement and the Redis token-bucket rate
// limiter.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-reservation/internal/store"
	"github.com/iliyamo/library-seat-reservation/internal/utils"
)

// Context keys populated by JWTAuth and consumed by handlers.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the token's subject and role claims into the
// request context.  The provided secret must match the one used when
// issuing tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}

// ActorFromContext rebuilds the authenticated actor from the context
// keys set by JWTAuth.  Requests that skipped authentication yield a
// guest actor, which every protected store operation rejects.
func ActorFromContext(c echo.Context) store.Actor {
	id, _ := c.Get(CtxUserID).(uint64)
	role, _ := c.Get(CtxRole).(string)
	if id == 0 {
		return store.Actor{Role: store.RoleGuest}
	}
	return store.Actor{UserID: id, Role: role}
}
