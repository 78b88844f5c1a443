package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/beswib/beswib/internal/model"
	"github.com/beswib/beswib/internal/payment"
	"github.com/beswib/beswib/internal/repository"
)

// markSoldAttempts bounds the retry loop after a captured payment.
// Retries are for transient store errors only; a definitive "someone
// else bought it" is never retried.
const markSoldAttempts = 3

// Orchestrator drives the money-then-ownership sequence of a
// purchase.  The ordering is fixed: eligibility and access checks
// happen before any provider call, capture happens before the sold
// transition, and a capture that cannot be followed by the sold
// transition is recorded loudly instead of being rolled back (no
// automatic refunds here; that is an operator decision).
type Orchestrator struct {
	listings *ListingService
	users    UserStore
	txns     TransactionStore
	provider payment.Provider
	notifier Notifier
	currency string

	retryDelay time.Duration
}

// NewOrchestrator wires the purchase flow together.  currency is the
// platform settlement currency, e.g. "EUR".
func NewOrchestrator(listings *ListingService, users UserStore, txns TransactionStore,
	provider payment.Provider, notifier Notifier, currency string) *Orchestrator {
	return &Orchestrator{
		listings:   listings,
		users:      users,
		txns:       txns,
		provider:   provider,
		notifier:   notifier,
		currency:   currency,
		retryDelay: 150 * time.Millisecond,
	}
}

// CheckoutResult tells the buyer what to approve on the provider side.
type CheckoutResult struct {
	Provider    string `json:"provider"`
	ProviderRef string `json:"provider_ref"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// Checkout starts a purchase: it verifies the buyer's profile, runs
// the access gate, opens a provider transaction for the listing price
// and records it as created.  No listing state changes here, so a
// failed or abandoned checkout leaves the market untouched.
func (o *Orchestrator) Checkout(ctx context.Context, bibID, buyerID uint64, token string) (*CheckoutResult, error) {
	buyer, err := o.users.GetByID(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if missing := MissingProfileFields(buyer); len(missing) > 0 {
		return nil, &ProfileIncompleteError{Missing: missing}
	}

	b, err := o.listings.Get(ctx, bibID)
	if err != nil {
		return nil, err
	}
	if b.SellerID == buyerID {
		return nil, ErrOwnListing
	}
	if d := EvaluatePurchase(b, token); !d.CanPurchase {
		return nil, d.DenialError()
	}

	pt, err := o.provider.CreateTransaction(ctx, payment.CreateRequest{
		AmountCents: b.PriceCents,
		Currency:    o.currency,
		Description: fmt.Sprintf("bib #%d resale", b.ID),
	})
	if err != nil {
		return nil, &PaymentError{Stage: "create", Err: err}
	}

	txn := &model.Transaction{
		BibID:       b.ID,
		BuyerID:     buyerID,
		SellerID:    b.SellerID,
		Provider:    o.provider.Name(),
		ProviderRef: pt.Ref,
		AmountCents: b.PriceCents,
		Status:      model.TxCreated,
	}
	if err := o.txns.Create(ctx, txn); err != nil {
		// Provider-side transaction exists but was never captured; it
		// simply expires unapproved.  Nothing to clean up.
		return nil, err
	}
	return &CheckoutResult{
		Provider:    o.provider.Name(),
		ProviderRef: pt.Ref,
		AmountCents: b.PriceCents,
		Currency:    o.currency,
	}, nil
}

// Confirm completes a purchase after the buyer approved the provider
// transaction.  It re-runs the access gate (the listing may have been
// sold, withdrawn or re-keyed since checkout), captures the payment,
// and only then flips the listing to sold.
//
// The capture/assign boundary is the delicate part.  Before capture,
// every failure is clean: the transaction stays retryable and the
// listing stays on the market.  After capture, a failure to assign
// the bib means money moved without goods: the transaction is marked
// reconciliation_required, an alert is published, and the buyer gets
// ErrReconciliationRequired.  That state is never cleared by code.
func (o *Orchestrator) Confirm(ctx context.Context, bibID, buyerID uint64, providerRef, token string) (*model.Bib, error) {
	txn, err := o.txns.GetByProviderRef(ctx, providerRef)
	if err != nil {
		return nil, err
	}
	if txn.BibID != bibID || txn.BuyerID != buyerID {
		return nil, repository.ErrNotFound
	}
	if txn.Status != model.TxCreated {
		return nil, fmt.Errorf("transaction %s already %s: %w", providerRef, txn.Status, repository.ErrConflict)
	}

	b, err := o.listings.Get(ctx, bibID)
	if err != nil {
		return nil, err
	}
	if d := EvaluatePurchase(b, token); !d.CanPurchase {
		// Nothing was captured; abandon the transaction so a stale
		// ref cannot be replayed after the listing moves on.
		if serr := o.txns.SetStatus(ctx, txn.ID, model.TxFailed); serr != nil {
			log.Printf("purchase: failing transaction %d: %v", txn.ID, serr)
		}
		return nil, d.DenialError()
	}

	if _, err := o.provider.CaptureTransaction(ctx, providerRef); err != nil {
		// Capture declined or unreachable: no money moved, keep the
		// transaction in created so the buyer can retry confirming.
		return nil, &PaymentError{Stage: "capture", Err: err}
	}
	if err := o.txns.SetStatus(ctx, txn.ID, model.TxCaptured); err != nil {
		// Bookkeeping only; the capture itself succeeded, so press on
		// to the transfer rather than stranding the buyer's money.
		log.Printf("purchase: recording capture of transaction %d: %v", txn.ID, err)
	}

	sold, err := o.markSoldWithRetry(ctx, bibID, buyerID)
	if err != nil {
		o.flagReconciliation(ctx, txn, err)
		return nil, fmt.Errorf("%w: %v", ErrReconciliationRequired, err)
	}

	o.notifier.BibSold(SoldNotice{
		BibID:       sold.ID,
		EventID:     sold.EventID,
		SellerID:    sold.SellerID,
		BuyerID:     buyerID,
		AmountCents: txn.AmountCents,
		Provider:    txn.Provider,
		ProviderRef: providerRef,
		SoldAt:      time.Now().UTC(),
	})
	return sold, nil
}

// markSoldWithRetry retries the sold transition on transient store
// errors only.  ErrAlreadySold / ErrNotAvailable are definitive — the
// listing is gone and retrying cannot bring it back — so they fail
// immediately.
func (o *Orchestrator) markSoldWithRetry(ctx context.Context, bibID, buyerID uint64) (*model.Bib, error) {
	var lastErr error
	for attempt := 1; attempt <= markSoldAttempts; attempt++ {
		b, err := o.listings.MarkSold(ctx, bibID, buyerID)
		if err == nil {
			return b, nil
		}
		if errors.Is(err, ErrAlreadySold) || errors.Is(err, ErrNotAvailable) ||
			errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		lastErr = err
		if attempt < markSoldAttempts {
			select {
			case <-time.After(o.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// flagReconciliation durably records a captured-but-unassigned
// payment and alerts operators.  Both writes are best-effort
// individually; together with the queue message at least one durable
// trace survives a partial outage.
func (o *Orchestrator) flagReconciliation(ctx context.Context, txn *model.Transaction, cause error) {
	if err := o.txns.SetStatus(ctx, txn.ID, model.TxReconciliationRequired); err != nil {
		log.Printf("purchase: flagging transaction %d for reconciliation: %v", txn.ID, err)
	}
	o.notifier.ReconciliationRequired(ReconciliationNotice{
		BibID:       txn.BibID,
		BuyerID:     txn.BuyerID,
		Provider:    txn.Provider,
		ProviderRef: txn.ProviderRef,
		AmountCents: txn.AmountCents,
		Cause:       cause.Error(),
		OccurredAt:  time.Now().UTC(),
	})
}
