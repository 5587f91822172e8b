package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/utils"
)

// UserHandler implements the admin-only user management endpoints.  Routes
// using it are gated behind AccessAuth + RequireRole(admin).
type UserHandler struct {
	Users      *repository.UserRepo
	BcryptCost int
}

func NewUserHandler(users *repository.UserRepo, bcryptCost int) *UserHandler {
	return &UserHandler{Users: users, BcryptCost: bcryptCost}
}

type createUserReq struct {
	FirstName string  `json:"firstName" validate:"required"`
	LastName  string  `json:"lastName" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	Role      string  `json:"role" validate:"required,oneof=customer manager admin"`
	TenantID  *uint64 `json:"tenantId"`
}

type updateUserReq struct {
	FirstName string  `json:"firstName" validate:"required"`
	LastName  string  `json:"lastName" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Role      string  `json:"role" validate:"required,oneof=customer manager admin"`
	TenantID  *uint64 `json:"tenantId"`
}

type userResp struct {
	ID        uint64     `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	TenantID  *uint64    `json:"tenantId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// toUserResp strips the password hash; it never crosses the HTTP boundary.
func toUserResp(u model.User) userResp {
	return userResp{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		TenantID:  u.TenantID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Create makes a user with an admin-assigned role and optional tenant.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		log.Error().Err(err).Msg("hash password failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	id, err := h.Users.Create(ctx, &model.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.Role(req.Role),
		TenantID:     req.TenantID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		log.Error().Err(err).Msg("create user failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	log.Info().Uint64("id", id).Msg("user created")
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// List returns one page of users.
func (h *UserHandler) List(c echo.Context) error {
	page, perPage := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, total, err := h.Users.List(ctx, page, perPage)
	if err != nil {
		log.Error().Err(err).Msg("list users failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	data := make([]userResp, 0, len(users))
	for _, u := range users {
		data = append(data, toUserResp(u))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"currentPage": page,
		"perPage":     perPage,
		"total":       total,
		"data":        data,
	})
}

// GetByID returns a single user.
func (h *UserHandler) GetByID(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid url param"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		log.Error().Err(err).Msg("load user failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Update rewrites a user's profile fields.  The password is never updated
// through this endpoint.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid url param"})
	}

	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Users.Update(ctx, id, req.FirstName, req.LastName, req.Email, model.Role(req.Role), req.TenantID)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		log.Error().Err(err).Msg("update user failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	log.Info().Uint64("id", id).Msg("user updated")
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

// Delete removes a user and, via the cascading foreign key, every refresh
// token record it owns.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid url param"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		log.Error().Err(err).Msg("delete user failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	log.Info().Uint64("id", id).Msg("user deleted")
	return c.NoContent(http.StatusNoContent)
}

func idParam(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

func pagination(c echo.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.QueryParam("currentPage"))
	perPage, _ = strconv.Atoi(c.QueryParam("perPage"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	return page, perPage
}
