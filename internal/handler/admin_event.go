package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/beswib/beswib/internal/model"
	"github.com/beswib/beswib/internal/repository"
)

// AdminHandler bundles the repositories admins manage directly:
// events, organizers, and the transaction backlog.
type AdminHandler struct {
	Events     *repository.EventRepo
	Organizers *repository.OrganizerRepo
	Txns       *repository.TransactionRepo
}

func NewAdminHandler(e *repository.EventRepo, o *repository.OrganizerRepo, t *repository.TransactionRepo) *AdminHandler {
	return &AdminHandler{Events: e, Organizers: o, Txns: t}
}

// ----- event DTOs -----

type eventReq struct {
	OrganizerID       *uint64 `json:"organizer_id"`
	Name              string  `json:"name"`
	Location          string  `json:"location"`
	EventDate         string  `json:"event_date"` // YYYY-MM-DD
	DistanceKm        float64 `json:"distance_km"`
	Type              string  `json:"type"`
	PickupWindowBegin string  `json:"pickup_window_begin"` // RFC3339, optional
	PickupWindowEnd   string  `json:"pickup_window_end"`
	TransferDeadline  string  `json:"transfer_deadline"` // YYYY-MM-DD, optional
	IsPublic          *bool   `json:"is_public"`
}

func (r *eventReq) apply(e *model.Event) (string, bool) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return "name required", false
	}
	date, err := time.Parse("2006-01-02", r.EventDate)
	if err != nil {
		return "event_date must be YYYY-MM-DD", false
	}
	e.OrganizerID = r.OrganizerID
	e.Name = name
	e.Location = strings.TrimSpace(r.Location)
	e.EventDate = date
	e.DistanceKm = r.DistanceKm
	e.Type = strings.TrimSpace(r.Type)
	e.IsPublic = true
	if r.IsPublic != nil {
		e.IsPublic = *r.IsPublic
	}

	e.PickupWindowBegin, e.PickupWindowEnd, e.TransferDeadline = nil, nil, nil
	if r.PickupWindowBegin != "" {
		t, err := time.Parse(time.RFC3339, r.PickupWindowBegin)
		if err != nil {
			return "pickup_window_begin must be RFC3339", false
		}
		e.PickupWindowBegin = &t
	}
	if r.PickupWindowEnd != "" {
		t, err := time.Parse(time.RFC3339, r.PickupWindowEnd)
		if err != nil {
			return "pickup_window_end must be RFC3339", false
		}
		e.PickupWindowEnd = &t
	}
	if r.TransferDeadline != "" {
		t, err := time.Parse("2006-01-02", r.TransferDeadline)
		if err != nil {
			return "transfer_deadline must be YYYY-MM-DD", false
		}
		e.TransferDeadline = &t
	}
	return "", true
}

// CreateEvent adds an event to the catalogue.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var e model.Event
	if msg, ok := req.apply(&e); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if e.OrganizerID != nil {
		if _, err := h.Organizers.GetByID(ctx, *e.OrganizerID); err != nil {
			return domainError(c, err)
		}
	}
	if err := h.Events.Create(ctx, &e); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toEventView(&e))
}

// UpdateEvent replaces an event's fields.
func (h *AdminHandler) UpdateEvent(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return domainError(c, err)
	}
	if msg, ok := req.apply(e); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Events.Update(ctx, e); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toEventView(e))
}

// DeleteEvent removes an event. Events with bibs attached refuse
// deletion (409) to keep listings pointing somewhere.
func (h *AdminHandler) DeleteEvent(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.Delete(ctx, id); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "event has listings attached"})
		}
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
