package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/beswib/beswib/internal/marketplace"
	"github.com/beswib/beswib/internal/repository"
)

// MarketplaceHandler serves the buyer-facing browse and detail pages.
// Browse lists only available public listings; detail additionally
// resolves private listings when the correct access token is present
// in the query string.
type MarketplaceHandler struct {
	Bibs     *repository.BibRepo
	Events   *repository.EventRepo
	Listings *marketplace.ListingService
}

func NewMarketplaceHandler(b *repository.BibRepo, e *repository.EventRepo, l *marketplace.ListingService) *MarketplaceHandler {
	return &MarketplaceHandler{Bibs: b, Events: e, Listings: l}
}

// Browse lists available public bibs. Supports ?event_id= and
// ?sort=price_asc|price_desc|newest. Private listings never appear
// here no matter what the query says.
func (h *MarketplaceHandler) Browse(c echo.Context) error {
	var f repository.MarketplaceFilter
	if raw := c.QueryParam("event_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event_id"})
		}
		f.EventID = n
	}
	f.Sort = c.QueryParam("sort")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bibs, err := h.Bibs.ListAvailablePublic(ctx, f)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]bibView, 0, len(bibs))
	for i := range bibs {
		out = append(out, toBibView(&bibs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"bibs": out})
}

// Detail returns one listing. Private listings require
// ?token=<access token>; a missing or wrong token yields the same 404
// as a listing that does not exist, so links cannot be probed. The
// token check runs on every request and is never cached.
func (h *MarketplaceHandler) Detail(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	token := c.QueryParam("token")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Listings.Get(ctx, id)
	if err != nil {
		return domainError(c, err)
	}
	if !marketplace.CanView(b, 0, token) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	resp := echo.Map{"bib": toBibView(b)}
	if ev, err := h.Events.GetByID(ctx, b.EventID); err == nil {
		resp["event"] = toEventView(ev)
	}
	return c.JSON(http.StatusOK, resp)
}

// EventDetail returns one public event. Non-public events only exist
// to back unlisted-event listings and get the same 404 as a missing
// id.
func (h *MarketplaceHandler) EventDetail(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return domainError(c, err)
	}
	if !ev.IsPublic {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"event": toEventView(ev)})
}

// ListEvents returns upcoming public events for the browse filters.
func (h *MarketplaceHandler) ListEvents(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.ListPublic(ctx)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]eventView, 0, len(events))
	for i := range events {
		out = append(out, toEventView(&events[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}
