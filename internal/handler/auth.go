package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/auth-service/internal/auth"
	"github.com/iliyamo/auth-service/internal/middleware"
	"github.com/iliyamo/auth-service/internal/queue"
	queue_publisher "github.com/iliyamo/auth-service/internal/service"
	"github.com/iliyamo/auth-service/internal/token"
)

// AuthHandler exposes the session lifecycle endpoints.  Tokens are
// delivered as HttpOnly SameSite=Strict cookies so page scripts can never
// read them; response bodies carry only the identity id, never a token.
type AuthHandler struct {
	Auth *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{Auth: svc}
}

// ----- DTOs -----

type registerReq struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates an identity with the default role and logs it straight
// in: both cookies are set on the 201 response.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, pair, err := h.Auth.Register(ctx, auth.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		log.Error().Err(err).Msg("register failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	// Broker outages must not fail the registration.
	go func() {
		_ = queue_publisher.PublishUserRegistered(context.Background(), queue.UserRegisteredEvent{
			UserID:       u.ID,
			Email:        u.Email,
			Role:         u.Role.String(),
			RegisteredAt: time.Now().UTC(),
		})
	}()

	setAuthCookies(c, pair)
	return c.JSON(http.StatusCreated, echo.Map{"id": u.ID})
}

// Login verifies credentials and sets a fresh cookie pair.  Unknown email
// and wrong password answer identically.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, pair, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		log.Error().Err(err).Msg("login failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	setAuthCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{"id": u.ID})
}

// Self returns the authenticated user, minus the password hash.
func (h *AuthHandler) Self(c echo.Context) error {
	p, ok := c.Get(middleware.PayloadKey).(token.Payload)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Auth.User(ctx, p.UserID)
	if err != nil {
		log.Error().Err(err).Uint64("id", p.UserID).Msg("load user failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Refresh exchanges the verified refresh token (payload stored by the
// refresh middleware) for a brand-new pair, rotating the record.
func (h *AuthHandler) Refresh(c echo.Context) error {
	p, ok := c.Get(middleware.PayloadKey).(token.Payload)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, pair, err := h.Auth.Refresh(ctx, p)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		log.Error().Err(err).Msg("refresh failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	setAuthCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{"id": u.ID})
}

// Logout deletes the presented refresh token's record and clears both
// cookies from the caller.
func (h *AuthHandler) Logout(c echo.Context) error {
	p, ok := c.Get(middleware.PayloadKey).(token.Payload)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.Logout(ctx, p); err != nil {
		log.Error().Err(err).Msg("logout failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	clearAuthCookies(c)
	return c.NoContent(http.StatusNoContent)
}

// setAuthCookies delivers the token pair.  HttpOnly keeps the tokens out of
// reach of page scripts, SameSite=Strict scopes them to same-site requests,
// and each cookie expires with its token.
func setAuthCookies(c echo.Context, pair auth.TokenPair) {
	c.SetCookie(&http.Cookie{
		Name:     "accessToken",
		Value:    pair.Access.Token,
		Path:     "/",
		Expires:  pair.Access.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     "refreshToken",
		Value:    pair.Refresh.Token,
		Path:     "/",
		Expires:  pair.Refresh.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearAuthCookies(c echo.Context) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
