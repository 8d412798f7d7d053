package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-seat-reservation/internal/middleware"
	"github.com/iliyamo/library-seat-reservation/internal/store"
	"github.com/iliyamo/library-seat-reservation/internal/utils"
)

const secret = "test-secret"

func run(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(secret, 42, store.RoleStudent, 15)
	require.NoError(t, err)

	rec, c := run(t, middleware.JWTAuth(secret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	actor := middleware.ActorFromContext(c)
	assert.Equal(t, uint64(42), actor.UserID)
	assert.Equal(t, store.RoleStudent, actor.Role)
}

func TestJWTAuthRejectsMissingAndBadTokens(t *testing.T) {
	rec, _ := run(t, middleware.JWTAuth(secret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = run(t, middleware.JWTAuth(secret), "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestActorFromContextDefaultsToGuest(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	actor := middleware.ActorFromContext(c)
	assert.Equal(t, store.RoleGuest, actor.Role)
	assert.False(t, actor.Elevated())
}

func TestRequireRole(t *testing.T) {
	mw := middleware.RequireRole(store.RoleLibrarian, store.RoleAdmin)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxRole, store.RoleStudent)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(middleware.CtxRole, store.RoleLibrarian)
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
