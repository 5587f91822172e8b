// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-service/internal/auth"
	"github.com/iliyamo/auth-service/internal/handler"
	"github.com/iliyamo/auth-service/internal/middleware"
	"github.com/iliyamo/auth-service/internal/model"
)

// Register mounts every route.  The credential endpoints sit behind the
// rate limiter; /auth/refresh and /auth/logout behind refresh-token
// verification; the user and tenant CRUD behind access-token verification
// plus the admin role gate.
func Register(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, t *handler.TenantHandler, svc *auth.Service, limiter echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	ag := e.Group("/auth")
	ag.POST("/register", a.Register, limiter)
	ag.POST("/login", a.Login, limiter)
	ag.GET("/self", a.Self, middleware.AccessAuth(svc))
	ag.POST("/refresh", a.Refresh, middleware.RefreshAuth(svc))
	ag.POST("/logout", a.Logout, middleware.RefreshAuth(svc))

	admin := []echo.MiddlewareFunc{
		middleware.AccessAuth(svc),
		middleware.RequireRole(model.RoleAdmin),
	}

	ug := e.Group("/users", admin...)
	ug.POST("", u.Create)
	ug.GET("", u.List)
	ug.GET("/:id", u.GetByID)
	ug.PATCH("/:id", u.Update)
	ug.DELETE("/:id", u.Delete)

	tg := e.Group("/tenants", admin...)
	tg.POST("", t.Create)
	tg.GET("", t.List)
	tg.GET("/:id", t.GetByID)
	tg.PATCH("/:id", t.Update)
	tg.DELETE("/:id", t.Delete)
}
