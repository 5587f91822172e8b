package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/auth-service/internal/middleware"
	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/token"
)

func invokeWithRole(t *testing.T, payload any, allowed ...model.Role) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if payload != nil {
		c.Set(middleware.PayloadKey, payload)
	}

	next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	err := middleware.RequireRole(allowed...)(next)(c)
	require.NoError(t, err)
	return rec
}

func TestRequireRoleAllowsMember(t *testing.T) {
	rec := invokeWithRole(t, token.Payload{UserID: 1, Role: model.RoleAdmin}, model.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleForbidsNonMember(t *testing.T) {
	// A valid customer token on an admin-only route is a 403, not a 401:
	// the caller is known, just not allowed.
	rec := invokeWithRole(t, token.Payload{UserID: 1, Role: model.RoleCustomer}, model.RoleAdmin)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleRejectsMissingPayload(t *testing.T) {
	rec := invokeWithRole(t, nil, model.RoleAdmin)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
