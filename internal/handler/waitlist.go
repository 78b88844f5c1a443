package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/beswib/beswib/internal/repository"
)

// WaitlistHandler lets runners queue up for events with no available
// bibs. The waitlist is informational: joining twice is rejected, and
// mail_notification marks whether the runner wants an email when a
// bib shows up.
type WaitlistHandler struct {
	Waitlists *repository.WaitlistRepo
	Events    *repository.EventRepo
}

func NewWaitlistHandler(w *repository.WaitlistRepo, e *repository.EventRepo) *WaitlistHandler {
	return &WaitlistHandler{Waitlists: w, Events: e}
}

type joinWaitlistReq struct {
	MailNotification bool `json:"mail_notification"`
}

type waitlistEntryView struct {
	ID               uint64    `json:"id"`
	EventID          uint64    `json:"event_id"`
	MailNotification bool      `json:"mail_notification"`
	AddedAt          time.Time `json:"added_at"`
}

// Join adds the caller to the waitlist of the event in :id.
func (h *WaitlistHandler) Join(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	var req joinWaitlistReq
	_ = c.Bind(&req) // empty body defaults to no mail notification

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Events.GetByID(ctx, eventID); err != nil {
		return domainError(c, err)
	}
	entry, err := h.Waitlists.Join(ctx, uid, eventID, req.MailNotification)
	if err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already on this waitlist"})
		}
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, waitlistEntryView{
		ID:               entry.ID,
		EventID:          entry.EventID,
		MailNotification: entry.MailNotification,
		AddedAt:          entry.AddedAt,
	})
}

// MyWaitlist lists the caller's waitlist entries.
func (h *WaitlistHandler) MyWaitlist(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entries, err := h.Waitlists.ListByUser(ctx, uid)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]waitlistEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, waitlistEntryView{
			ID:               e.ID,
			EventID:          e.EventID,
			MailNotification: e.MailNotification,
			AddedAt:          e.AddedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"waitlist": out})
}
