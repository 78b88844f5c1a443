package router

import (
	"github.com/labstack/echo/v4"

	"github.com/beswib/beswib/internal/handler"
	"github.com/beswib/beswib/internal/middleware"
	"github.com/beswib/beswib/internal/model"
)

// RegisterRunner registers the authenticated runner surface under /v1.
// Runners act as sellers (bib lifecycle), buyers (checkout/confirm)
// and profile owners; admins pass the role check too so they can use
// the marketplace like anyone else.
func RegisterRunner(e *echo.Echo, s *handler.SellerHandler, p *handler.PurchaseHandler,
	pr *handler.ProfileHandler, w *handler.WaitlistHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleRunner, model.RoleAdmin),
	)

	// ---- Selling ----
	g.POST("/bibs", s.CreateBib)
	g.PATCH("/bibs/:id", s.UpdateBib)
	g.PUT("/bibs/:id", s.UpdateBib) // alias for clients that use PUT
	g.PUT("/bibs/:id/visibility", s.SetVisibility)
	g.DELETE("/bibs/:id", s.WithdrawBib)
	g.GET("/my-bibs", s.MyBibs)

	// ---- Buying ----
	g.POST("/marketplace/:id/checkout", p.Checkout)
	g.POST("/marketplace/:id/confirm", p.Confirm)
	g.GET("/my-purchases", p.MyPurchases)

	// ---- Profile ----
	g.GET("/profile", pr.GetProfile)
	g.PUT("/profile", pr.UpdateProfile)

	// ---- Waitlists ----
	g.POST("/events/:id/waitlist", w.Join)
	g.GET("/my-waitlist", w.MyWaitlist)
}
