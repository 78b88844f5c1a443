package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/beswib/beswib/internal/marketplace"
	"github.com/beswib/beswib/internal/model"
)

// AdminBibHandler covers listing validation: every new listing waits
// in pending_validation until an admin approves or rejects it here.
type AdminBibHandler struct {
	Listings *marketplace.ListingService
}

func NewAdminBibHandler(l *marketplace.ListingService) *AdminBibHandler {
	return &AdminBibHandler{Listings: l}
}

// ApproveBib clears a pending listing for sale.
func (h *AdminBibHandler) ApproveBib(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Listings.Approve(ctx, id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toOwnerBibView(b))
}

// RejectBib fails a pending listing's validation. The seller keeps
// edit rights but cannot publish.
func (h *AdminBibHandler) RejectBib(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Listings.Reject(ctx, id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toOwnerBibView(b))
}

// ----- reconciliation backlog -----

type transactionView struct {
	ID          uint64    `json:"id"`
	BibID       uint64    `json:"bib_id"`
	BuyerID     uint64    `json:"buyer_id"`
	SellerID    uint64    `json:"seller_id"`
	Provider    string    `json:"provider"`
	ProviderRef string    `json:"provider_ref"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTransactionView(t *model.Transaction) transactionView {
	return transactionView{
		ID:          t.ID,
		BibID:       t.BibID,
		BuyerID:     t.BuyerID,
		SellerID:    t.SellerID,
		Provider:    t.Provider,
		ProviderRef: t.ProviderRef,
		AmountCents: t.AmountCents,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ListReconciliations returns the captured-but-unassigned payment
// backlog, oldest first. Every entry is a refund owed; the system
// never clears these on its own.
func (h *AdminHandler) ListReconciliations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	txns, err := h.Txns.ListReconciliationRequired(ctx)
	if err != nil {
		return domainError(c, err)
	}
	out := make([]transactionView, 0, len(txns))
	for i := range txns {
		out = append(out, toTransactionView(&txns[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": out})
}
