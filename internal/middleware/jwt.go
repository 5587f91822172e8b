package middleware // contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-service/internal/auth"
)

// PayloadKey is the context key under which the verified token payload is
// stored for handlers and downstream middleware.
const PayloadKey = "payload"

// AccessAuth returns middleware that validates the access token carried in
// the Authorization header (or the accessToken cookie as fallback) and
// stores the verified payload in the request context.  Protected routes
// wrap themselves with this so handlers can trust c.Get(PayloadKey).
func AccessAuth(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c, "accessToken")
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
			}
			p, err := svc.VerifyAccess(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(PayloadKey, p)
			return next(c)
		}
	}
}

// tokenFromRequest prefers a Bearer Authorization header and falls back to
// the named cookie.  Cookies are how browsers carry the tokens (HttpOnly,
// SameSite=Strict); the header form serves non-browser clients.
func tokenFromRequest(c echo.Context, cookieName string) string {
	if h := c.Request().Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if ck, err := c.Cookie(cookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	return ""
}
