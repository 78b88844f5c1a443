package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/beswib/beswib/internal/marketplace"
)

// PurchaseHandler exposes the two-step buy flow: checkout opens a
// provider transaction, confirm captures it and transfers the bib.
// Timeouts here are longer than elsewhere because a payment provider
// round-trip sits in the middle.
type PurchaseHandler struct {
	Orch     *marketplace.Orchestrator
	Listings *marketplace.ListingService
}

func NewPurchaseHandler(o *marketplace.Orchestrator, l *marketplace.ListingService) *PurchaseHandler {
	return &PurchaseHandler{Orch: o, Listings: l}
}

type confirmReq struct {
	ProviderRef string `json:"provider_ref"`
}

// Checkout starts a purchase of the listing in :id. Private listings
// need ?token= exactly like the detail page. On success the buyer
// gets the provider reference to approve.
func (h *PurchaseHandler) Checkout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	res, err := h.Orch.Checkout(ctx, id, uid, c.QueryParam("token"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Confirm completes the purchase after provider-side approval. The
// response carries the bib, now assigned to the buyer.
func (h *PurchaseHandler) Confirm(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	var req confirmReq
	if err := c.Bind(&req); err != nil || req.ProviderRef == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provider_ref required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	b, err := h.Orch.Confirm(ctx, id, uid, req.ProviderRef, c.QueryParam("token"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bib": toBibView(b)})
}

// MyPurchases lists the bibs the caller has bought.
func (h *PurchaseHandler) MyPurchases(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bibs, err := h.Listings.MyPurchases(ctx, uid)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]bibView, 0, len(bibs))
	for i := range bibs {
		out = append(out, toBibView(&bibs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"bibs": out})
}
