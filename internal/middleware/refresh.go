package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/auth-service/internal/auth"
)

// RefreshAuth returns middleware for the refresh and logout endpoints.  It
// verifies the presented refresh token cryptographically and then checks
// that the record named by its jti claim still exists and belongs to the
// token's subject.  Any authentication failure answers with the same 401;
// only a store outage surfaces as 500.
func RefreshAuth(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c, "refreshToken")
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			p, err := svc.VerifyRefresh(c.Request().Context(), raw)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidCredentials) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				log.Error().Err(err).Msg("refresh token lookup failed")
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			c.Set(PayloadKey, p)
			return next(c)
		}
	}
}
