package router

import (
	"github.com/labstack/echo/v4"

	"github.com/beswib/beswib/internal/handler"
	"github.com/beswib/beswib/internal/middleware"
	"github.com/beswib/beswib/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, ab *handler.AdminBibHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Events ----
	g.POST("/events", a.CreateEvent)
	g.PUT("/events/:id", a.UpdateEvent)
	g.PATCH("/events/:id", a.UpdateEvent)
	g.DELETE("/events/:id", a.DeleteEvent)

	// ---- Organizers ----
	g.POST("/organizers", a.CreateOrganizer)
	g.GET("/organizers", a.ListOrganizers)
	g.PUT("/organizers/:id", a.UpdateOrganizer)
	g.PATCH("/organizers/:id", a.UpdateOrganizer)
	g.DELETE("/organizers/:id", a.DeleteOrganizer)

	// ---- Listing validation ----
	g.POST("/bibs/:id/approve", ab.ApproveBib)
	g.POST("/bibs/:id/reject", ab.RejectBib)

	// ---- Payment follow-up ----
	g.GET("/reconciliations", a.ListReconciliations)
}
