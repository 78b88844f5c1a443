package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/beswib/beswib/internal/model"
)

// ----- organizer DTOs -----

type organizerReq struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	IsPartnered bool   `json:"is_partnered"`
}

type organizerView struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Website     string    `json:"website,omitempty"`
	IsPartnered bool      `json:"is_partnered"`
	CreatedAt   time.Time `json:"created_at"`
}

func toOrganizerView(o *model.Organizer) organizerView {
	return organizerView{
		ID:          o.ID,
		Name:        o.Name,
		Email:       o.Email,
		Website:     o.Website,
		IsPartnered: o.IsPartnered,
		CreatedAt:   o.CreatedAt,
	}
}

// CreateOrganizer registers a race organizer.
func (h *AdminHandler) CreateOrganizer(c echo.Context) error {
	var req organizerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	o := &model.Organizer{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Website:     strings.TrimSpace(req.Website),
		IsPartnered: req.IsPartnered,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Organizers.Create(ctx, o); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toOrganizerView(o))
}

// ListOrganizers returns every organizer.
func (h *AdminHandler) ListOrganizers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orgs, err := h.Organizers.List(ctx)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]organizerView, 0, len(orgs))
	for i := range orgs {
		out = append(out, toOrganizerView(&orgs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"organizers": out})
}

// UpdateOrganizer replaces an organizer's fields.
func (h *AdminHandler) UpdateOrganizer(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	var req organizerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, err := h.Organizers.GetByID(ctx, id)
	if err != nil {
		return domainError(c, err)
	}
	o.Name = strings.TrimSpace(req.Name)
	o.Email = strings.ToLower(strings.TrimSpace(req.Email))
	o.Website = strings.TrimSpace(req.Website)
	o.IsPartnered = req.IsPartnered
	if err := h.Organizers.Update(ctx, o); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toOrganizerView(o))
}

// DeleteOrganizer removes an organizer; its events are detached, not
// deleted.
func (h *AdminHandler) DeleteOrganizer(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Organizers.Delete(ctx, id); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
