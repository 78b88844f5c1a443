package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/beswib/beswib/internal/marketplace"
	"github.com/beswib/beswib/internal/model"
)

// SellerHandler exposes the listing lifecycle to its owner: create,
// edit, publish/unpublish, withdraw, and the dashboard list.
type SellerHandler struct {
	Listings *marketplace.ListingService
}

func NewSellerHandler(l *marketplace.ListingService) *SellerHandler {
	return &SellerHandler{Listings: l}
}

// ----- DTOs -----

type unlistedEventReq struct {
	Name       string  `json:"name"`
	Location   string  `json:"location"`
	EventDate  string  `json:"event_date"` // YYYY-MM-DD
	DistanceKm float64 `json:"distance_km"`
	Type       string  `json:"type"`
}

type createBibReq struct {
	EventID            uint64            `json:"event_id"`
	UnlistedEvent      *unlistedEventReq `json:"unlisted_event"`
	RegistrationNumber string            `json:"registration_number"`
	PriceCents         int64             `json:"price_cents"`
	OriginalPriceCents *int64            `json:"original_price_cents"`
	Listed             string            `json:"listed"` // public | private, default public
	PrivateToken       string            `json:"private_token"`
	OptionValues       map[string]string `json:"option_values"`
}

type updateBibReq struct {
	RegistrationNumber *string           `json:"registration_number"`
	PriceCents         *int64            `json:"price_cents"`
	OriginalPriceCents *int64            `json:"original_price_cents"`
	OptionValues       map[string]string `json:"option_values"`
}

type visibilityReq struct {
	Listed       string `json:"listed"` // public | private
	PrivateToken string `json:"private_token"`
}

// CreateBib lists a new bib for resale. The listing starts in
// pending_validation and is invisible to buyers until approved.
func (h *SellerHandler) CreateBib(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBibReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	in := marketplace.NewListing{
		EventID:            req.EventID,
		RegistrationNumber: req.RegistrationNumber,
		PriceCents:         req.PriceCents,
		OriginalPriceCents: req.OriginalPriceCents,
		Visibility:         model.Visibility(req.Listed),
		PrivateToken:       req.PrivateToken,
		OptionValues:       req.OptionValues,
	}
	if req.UnlistedEvent != nil {
		date, err := time.Parse("2006-01-02", req.UnlistedEvent.EventDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unlisted_event.event_date must be YYYY-MM-DD"})
		}
		in.UnlistedEvent = &marketplace.UnlistedEvent{
			Name:       req.UnlistedEvent.Name,
			Location:   req.UnlistedEvent.Location,
			EventDate:  date,
			DistanceKm: req.UnlistedEvent.DistanceKm,
			Type:       req.UnlistedEvent.Type,
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Listings.Create(ctx, uid, in)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toOwnerBibView(b))
}

// UpdateBib edits listing details (price, registration number,
// options). Allowed in any non-terminal status.
func (h *SellerHandler) UpdateBib(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateBibReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Listings.UpdateDetails(ctx, id, uid, marketplace.ListingPatch{
		RegistrationNumber: req.RegistrationNumber,
		PriceCents:         req.PriceCents,
		OriginalPriceCents: req.OriginalPriceCents,
		OptionValues:       req.OptionValues,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toOwnerBibView(b))
}

// SetVisibility flips a listing between public and private. Going
// private without a token gets one generated; the response carries it
// so the seller can build the share link.
func (h *SellerHandler) SetVisibility(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req visibilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Listings.SetVisibility(ctx, id, uid, model.Visibility(req.Listed), req.PrivateToken)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toOwnerBibView(b))
}

// WithdrawBib takes a listing off the market for good.
func (h *SellerHandler) WithdrawBib(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Listings.Withdraw(ctx, id, uid)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toOwnerBibView(b))
}

// MyBibs returns the seller dashboard: every listing the caller
// created, newest first, with owner-only fields included.
func (h *SellerHandler) MyBibs(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bibs, err := h.Listings.MyListings(ctx, uid)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]ownerBibView, 0, len(bibs))
	for i := range bibs {
		out = append(out, toOwnerBibView(&bibs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"bibs": out})
}
