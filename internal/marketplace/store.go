package marketplace

import (
	"context"
	"time"

	"github.com/beswib/beswib/internal/model"
)

// The marketplace core talks to persistence and messaging through
// these small interfaces.  The MySQL repositories satisfy them in
// production; tests plug in in-memory fakes.  Store errors use the
// repository sentinels (ErrNotFound, ErrConflict) which the services
// translate into domain errors.

// ListingStore persists bib listings.  MarkSold must be atomic: it
// may only succeed while the listing is available with no buyer, and
// must report repository.ErrConflict when that condition fails.
type ListingStore interface {
	Create(ctx context.Context, b *model.Bib) error
	GetByID(ctx context.Context, id uint64) (*model.Bib, error)
	Update(ctx context.Context, b *model.Bib) error
	MarkSold(ctx context.Context, bibID, buyerID uint64) error
	ListBySeller(ctx context.Context, sellerID uint64) ([]model.Bib, error)
	ListPurchasedBy(ctx context.Context, buyerID uint64) ([]model.Bib, error)
}

// EventStore resolves and creates the events listings point at.
// Create is used for seller-supplied unlisted events.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	Create(ctx context.Context, e *model.Event) error
}

// UserStore resolves buyers for the profile-completeness check.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TransactionStore keeps the durable payment-attempt records.
type TransactionStore interface {
	Create(ctx context.Context, t *model.Transaction) error
	GetByProviderRef(ctx context.Context, providerRef string) (*model.Transaction, error)
	SetStatus(ctx context.Context, id uint64, status model.TransactionStatus) error
}

// SoldNotice is emitted once per completed sale.
type SoldNotice struct {
	BibID       uint64    `json:"bib_id"`
	EventID     uint64    `json:"event_id"`
	SellerID    uint64    `json:"seller_id"`
	BuyerID     uint64    `json:"buyer_id"`
	AmountCents int64     `json:"amount_cents"`
	Provider    string    `json:"provider"`
	ProviderRef string    `json:"provider_ref"`
	SoldAt      time.Time `json:"sold_at"`
}

// ReconciliationNotice is emitted when money was captured but the
// listing could not be handed over.  It duplicates the transaction
// row on purpose: the queue survives even if a later read of the
// table is what failed.
type ReconciliationNotice struct {
	BibID       uint64    `json:"bib_id"`
	BuyerID     uint64    `json:"buyer_id"`
	Provider    string    `json:"provider"`
	ProviderRef string    `json:"provider_ref"`
	AmountCents int64     `json:"amount_cents"`
	Cause       string    `json:"cause"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Notifier publishes marketplace events.  Implementations must be
// best-effort and non-blocking from the caller's point of view:
// orchestration outcomes never depend on a broker being up.
type Notifier interface {
	BibSold(n SoldNotice)
	ReconciliationRequired(n ReconciliationNotice)
}
