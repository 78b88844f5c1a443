package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/beswib/beswib/internal/handler"
	"github.com/beswib/beswib/internal/middleware"
	"github.com/beswib/beswib/internal/model"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance. Currently it exposes only a health
// check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware. Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout works without the JWT middleware: a refresh token in the
	// body is enough to terminate that session.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleRunner, model.RoleAdmin))
	auth.GET("/me", a.Me)

	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated marketplace surface:
// event browse, the open marketplace and listing detail. The detail
// route also resolves private listings via ?token=; no auth applies,
// the access gate inside the handler decides.
func RegisterPublic(e *echo.Echo, m *handler.MarketplaceHandler, mws ...echo.MiddlewareFunc) {
	e.GET("/v1/events", m.ListEvents, mws...)
	e.GET("/v1/events/:id", m.EventDetail, mws...)
	e.GET("/v1/marketplace", m.Browse, mws...)
	e.GET("/v1/marketplace/:id", m.Detail, mws...)
}
