package marketplace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/beswib/beswib/internal/model"
	"github.com/beswib/beswib/internal/payment"
	"github.com/beswib/beswib/internal/repository"
)

type purchaseEnv struct {
	orch     *Orchestrator
	listings *ListingService
	bibs     *fakeBibStore
	users    *fakeUserStore
	txns     *fakeTxnStore
	stub     *payment.Stub
	notifier *fakeNotifier
}

func newPurchaseEnv() *purchaseEnv {
	bibs := newFakeBibStore()
	events := newFakeEventStore()
	_ = events.Create(context.Background(), &model.Event{
		Name: "Paris Marathon", EventDate: mustDate("2030-04-07"), IsPublic: true,
	})
	users := &fakeUserStore{users: map[uint64]model.User{
		7:  completeUser(7),  // seller
		21: completeUser(21), // buyer
		22: completeUser(22), // rival buyer
	}}
	txns := newFakeTxnStore()
	stub := payment.NewStub()
	notifier := &fakeNotifier{}
	listings := NewListingService(bibs, events)

	orch := NewOrchestrator(listings, users, txns, stub, notifier, "EUR")
	orch.retryDelay = time.Millisecond

	return &purchaseEnv{
		orch: orch, listings: listings, bibs: bibs,
		users: users, txns: txns, stub: stub, notifier: notifier,
	}
}

func (e *purchaseEnv) seedAvailable(listed model.Visibility, token string) *model.Bib {
	return seedBib(e.bibs, model.Bib{
		SellerID: 7, EventID: 1, RegistrationNumber: "M-1",
		PriceCents: 8500, Status: model.StatusAvailable,
		Listed: listed, PrivateToken: token,
	})
}

func TestPurchaseHappyPath(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	b := env.seedAvailable(model.VisibilityPublic, "")

	res, err := env.orch.Checkout(ctx, b.ID, 21, "")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if res.AmountCents != 8500 || res.Currency != "EUR" || res.ProviderRef == "" {
		t.Fatalf("unexpected checkout result: %+v", res)
	}
	if got := env.txns.statusOf(res.ProviderRef); got != model.TxCreated {
		t.Fatalf("txn status after checkout = %s, want created", got)
	}

	sold, err := env.orch.Confirm(ctx, b.ID, 21, res.ProviderRef, "")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if sold.Status != model.StatusSold || sold.BuyerID == nil || *sold.BuyerID != 21 {
		t.Fatalf("bib after confirm: status=%s buyer=%v", sold.Status, sold.BuyerID)
	}
	if got := env.txns.statusOf(res.ProviderRef); got != model.TxCaptured {
		t.Fatalf("txn status after confirm = %s, want captured", got)
	}
	if len(env.notifier.sold) != 1 {
		t.Fatalf("sold notices = %d, want 1", len(env.notifier.sold))
	}
	n := env.notifier.sold[0]
	if n.BibID != b.ID || n.BuyerID != 21 || n.SellerID != 7 || n.AmountCents != 8500 {
		t.Fatalf("sold notice = %+v", n)
	}
}

func TestCheckoutRequiresCompleteProfile(t *testing.T) {
	env := newPurchaseEnv()
	b := env.seedAvailable(model.VisibilityPublic, "")

	u := env.users.users[21]
	u.Phone = ""
	env.users.users[21] = u

	_, err := env.orch.Checkout(context.Background(), b.ID, 21, "")
	if !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("got %v, want ErrProfileIncomplete", err)
	}
	var pe *ProfileIncompleteError
	if !errors.As(err, &pe) || len(pe.Missing) != 1 || pe.Missing[0] != "phone" {
		t.Fatalf("missing fields not reported: %v", err)
	}
	// No provider transaction may exist before the profile passes.
	if len(env.txns.txns) != 0 {
		t.Fatalf("transaction recorded despite incomplete profile")
	}
}

func TestCheckoutOwnListing(t *testing.T) {
	env := newPurchaseEnv()
	b := env.seedAvailable(model.VisibilityPublic, "")

	_, err := env.orch.Checkout(context.Background(), b.ID, 7, "")
	if !errors.Is(err, ErrOwnListing) {
		t.Fatalf("got %v, want ErrOwnListing", err)
	}
}

func TestCheckoutPrivateNeedsToken(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	b := env.seedAvailable(model.VisibilityPrivate, "s3cret")

	if _, err := env.orch.Checkout(ctx, b.ID, 21, ""); !errors.Is(err, ErrTokenRequired) {
		t.Fatalf("no token: got %v, want ErrTokenRequired", err)
	}
	if _, err := env.orch.Checkout(ctx, b.ID, 21, "guess"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong token: got %v, want ErrInvalidToken", err)
	}
	if _, err := env.orch.Checkout(ctx, b.ID, 21, "s3cret"); err != nil {
		t.Fatalf("right token: %v", err)
	}
}

func TestConfirmReRunsGate(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	b := env.seedAvailable(model.VisibilityPublic, "")

	res, err := env.orch.Checkout(ctx, b.ID, 21, "")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	// Seller withdraws between checkout and confirm.
	if _, err := env.listings.Withdraw(ctx, b.ID, 7); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}

	_, err = env.orch.Confirm(ctx, b.ID, 21, res.ProviderRef, "")
	if !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("got %v, want ErrNotAvailable", err)
	}
	// Nothing was captured and the transaction is dead.
	if got := env.txns.statusOf(res.ProviderRef); got != model.TxFailed {
		t.Fatalf("txn status = %s, want failed", got)
	}
	if len(env.notifier.sold) != 0 {
		t.Fatal("sold notice emitted for a failed purchase")
	}
}

func TestConfirmCaptureFailureIsRetryable(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	b := env.seedAvailable(model.VisibilityPublic, "")

	res, err := env.orch.Checkout(ctx, b.ID, 21, "")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	env.stub.FailCapture = true
	_, err = env.orch.Confirm(ctx, b.ID, 21, res.ProviderRef, "")
	var pe *PaymentError
	if !errors.As(err, &pe) || pe.Stage != "capture" {
		t.Fatalf("got %v, want capture PaymentError", err)
	}
	// No money moved: listing stays on the market, transaction stays
	// created so the buyer can simply confirm again.
	if got := env.txns.statusOf(res.ProviderRef); got != model.TxCreated {
		t.Fatalf("txn status = %s, want created", got)
	}
	cur, _ := env.bibs.GetByID(ctx, b.ID)
	if cur.Status != model.StatusAvailable {
		t.Fatalf("bib status = %s, want available", cur.Status)
	}

	env.stub.FailCapture = false
	if _, err := env.orch.Confirm(ctx, b.ID, 21, res.ProviderRef, ""); err != nil {
		t.Fatalf("retry Confirm: %v", err)
	}
}

func TestSecondBuyerCannotConfirmSoldBib(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	b := env.seedAvailable(model.VisibilityPublic, "")

	resA, err := env.orch.Checkout(ctx, b.ID, 21, "")
	if err != nil {
		t.Fatalf("Checkout A: %v", err)
	}
	resB, err := env.orch.Checkout(ctx, b.ID, 22, "")
	if err != nil {
		t.Fatalf("Checkout B: %v", err)
	}

	if _, err := env.orch.Confirm(ctx, b.ID, 21, resA.ProviderRef, ""); err != nil {
		t.Fatalf("Confirm A: %v", err)
	}
	_, err = env.orch.Confirm(ctx, b.ID, 22, resB.ProviderRef, "")
	if !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("Confirm B: got %v, want ErrNotAvailable", err)
	}

	// Buyer A keeps the bib; buyer B paid nothing.
	cur, _ := env.bibs.GetByID(ctx, b.ID)
	if cur.BuyerID == nil || *cur.BuyerID != 21 {
		t.Fatalf("buyer = %v, want 21", cur.BuyerID)
	}
	if got := env.txns.statusOf(resB.ProviderRef); got != model.TxFailed {
		t.Fatalf("txn B status = %s, want failed", got)
	}
}

func TestMarkSoldTransientRetry(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	b := env.seedAvailable(model.VisibilityPublic, "")

	res, err := env.orch.Checkout(ctx, b.ID, 21, "")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	env.bibs.failMarkSold = 1 // first attempt fails, second succeeds
	if _, err := env.orch.Confirm(ctx, b.ID, 21, res.ProviderRef, ""); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if env.bibs.markSoldCalls != 2 {
		t.Fatalf("markSold calls = %d, want 2", env.bibs.markSoldCalls)
	}
	if len(env.notifier.reconciliations) != 0 {
		t.Fatal("reconciliation raised despite eventual success")
	}
}

func TestCapturedButUnassignedFlagsReconciliation(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	b := env.seedAvailable(model.VisibilityPublic, "")

	res, err := env.orch.Checkout(ctx, b.ID, 21, "")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	env.bibs.failMarkSold = markSoldAttempts // exhaust every retry
	_, err = env.orch.Confirm(ctx, b.ID, 21, res.ProviderRef, "")
	if !errors.Is(err, ErrReconciliationRequired) {
		t.Fatalf("got %v, want ErrReconciliationRequired", err)
	}
	if env.bibs.markSoldCalls != markSoldAttempts {
		t.Fatalf("markSold calls = %d, want %d", env.bibs.markSoldCalls, markSoldAttempts)
	}
	if got := env.txns.statusOf(res.ProviderRef); got != model.TxReconciliationRequired {
		t.Fatalf("txn status = %s, want reconciliation_required", got)
	}
	if len(env.notifier.reconciliations) != 1 {
		t.Fatalf("reconciliation notices = %d, want 1", len(env.notifier.reconciliations))
	}
	n := env.notifier.reconciliations[0]
	if n.BibID != b.ID || n.BuyerID != 21 || n.ProviderRef != res.ProviderRef || n.Cause == "" {
		t.Fatalf("reconciliation notice = %+v", n)
	}
}

func TestConfirmValidatesTransaction(t *testing.T) {
	env := newPurchaseEnv()
	ctx := context.Background()
	b := env.seedAvailable(model.VisibilityPublic, "")
	other := env.seedAvailable(model.VisibilityPublic, "")

	res, err := env.orch.Checkout(ctx, b.ID, 21, "")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if _, err := env.orch.Confirm(ctx, b.ID, 21, "no-such-ref", ""); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("unknown ref: got %v, want ErrNotFound", err)
	}
	if _, err := env.orch.Confirm(ctx, other.ID, 21, res.ProviderRef, ""); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("mismatched bib: got %v, want ErrNotFound", err)
	}
	if _, err := env.orch.Confirm(ctx, b.ID, 22, res.ProviderRef, ""); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("foreign buyer: got %v, want ErrNotFound", err)
	}

	if _, err := env.orch.Confirm(ctx, b.ID, 21, res.ProviderRef, ""); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	// A completed transaction cannot be replayed.
	if _, err := env.orch.Confirm(ctx, b.ID, 21, res.ProviderRef, ""); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("replay: got %v, want ErrConflict", err)
	}
}
