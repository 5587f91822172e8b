package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/auth-service/internal/repository"
)

// TenantHandler implements the admin-only tenant management endpoints.
type TenantHandler struct {
	Tenants *repository.TenantRepo
}

func NewTenantHandler(tenants *repository.TenantRepo) *TenantHandler {
	return &TenantHandler{Tenants: tenants}
}

type createTenantReq struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
}

type updateTenantReq struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Create makes a tenant.
func (h *TenantHandler) Create(c echo.Context) error {
	var req createTenantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Tenants.Create(ctx, req.Name, req.Address)
	if err != nil {
		log.Error().Err(err).Msg("create tenant failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	log.Info().Uint64("id", id).Msg("tenant created")
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// List returns one page of tenants.
func (h *TenantHandler) List(c echo.Context) error {
	page, perPage := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tenants, total, err := h.Tenants.List(ctx, page, perPage)
	if err != nil {
		log.Error().Err(err).Msg("list tenants failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"currentPage": page,
		"perPage":     perPage,
		"total":       total,
		"data":        tenants,
	})
}

// GetByID returns a single tenant.
func (h *TenantHandler) GetByID(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid url param"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tenants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error().Err(err).Msg("load tenant failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, t)
}

// Update patches a tenant's name and address; empty fields keep their
// current value.
func (h *TenantHandler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid url param"})
	}

	var req updateTenantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tenants.Update(ctx, id, req.Name, req.Address); err != nil {
		log.Error().Err(err).Msg("update tenant failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	log.Info().Uint64("id", id).Msg("tenant updated")
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

// Delete removes a tenant.
func (h *TenantHandler) Delete(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid url param"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tenants.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error().Err(err).Msg("delete tenant failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	log.Info().Uint64("id", id).Msg("tenant deleted")
	return c.NoContent(http.StatusNoContent)
}
