package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-service/internal/auth"
	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/token"
)

// RequireRole returns middleware enforcing that the authenticated user's
// role is in the allowed set.  It must run after AccessAuth has stored a
// verified payload; a request that never passed authentication gets 401,
// while a valid identity with an insufficient role gets 403 so callers can
// tell "who are you" apart from "you may not do this".
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := c.Get(PayloadKey).(token.Payload)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
			}
			if !auth.Authorize(p, roles...) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
