package marketplace

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/beswib/beswib/internal/model"
	"github.com/beswib/beswib/internal/repository"
)

func newTestListingService() (*ListingService, *fakeBibStore, *fakeEventStore) {
	bibs := newFakeBibStore()
	events := newFakeEventStore()
	_ = events.Create(context.Background(), &model.Event{
		Name:      "Paris Marathon",
		Location:  "Paris",
		EventDate: mustDate("2030-04-07"),
		IsPublic:  true,
	})
	return NewListingService(bibs, events), bibs, events
}

func TestCreateStartsPendingValidation(t *testing.T) {
	svc, _, _ := newTestListingService()

	b, err := svc.Create(context.Background(), 7, NewListing{
		EventID:            1,
		RegistrationNumber: "M-1234",
		PriceCents:         8500,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Status != model.StatusPendingValidation {
		t.Fatalf("new listing status = %s, want %s", b.Status, model.StatusPendingValidation)
	}
	if b.Listed != model.VisibilityPublic {
		t.Fatalf("default visibility = %s, want public", b.Listed)
	}
	if b.PrivateToken != "" {
		t.Fatalf("public listing must not carry a token, got %q", b.PrivateToken)
	}
}

func TestCreatePrivateGeneratesToken(t *testing.T) {
	svc, _, _ := newTestListingService()

	b, err := svc.Create(context.Background(), 7, NewListing{
		EventID:            1,
		RegistrationNumber: "M-1234",
		PriceCents:         8500,
		Visibility:         model.VisibilityPrivate,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Listed != model.VisibilityPrivate {
		t.Fatalf("visibility = %s, want private", b.Listed)
	}
	if b.PrivateToken == "" {
		t.Fatal("private listing without a token")
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestListingService()
	ctx := context.Background()

	cases := []struct {
		name string
		in   NewListing
	}{
		{"empty registration", NewListing{EventID: 1, PriceCents: 100}},
		{"zero price", NewListing{EventID: 1, RegistrationNumber: "X"}},
		{"negative price", NewListing{EventID: 1, RegistrationNumber: "X", PriceCents: -5}},
		{"unknown event", NewListing{EventID: 99, RegistrationNumber: "X", PriceCents: 100}},
		{"no event at all", NewListing{RegistrationNumber: "X", PriceCents: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, 7, tc.in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("got %v, want ValidationError", err)
			}
		})
	}
}

func TestCreateWithUnlistedEvent(t *testing.T) {
	svc, _, events := newTestListingService()

	b, err := svc.Create(context.Background(), 7, NewListing{
		UnlistedEvent: &UnlistedEvent{
			Name:      "Backyard Ultra",
			Location:  "Lyon",
			EventDate: mustDate("2030-09-01"),
		},
		RegistrationNumber: "BY-9",
		PriceCents:         4000,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ev, err := events.GetByID(context.Background(), b.EventID)
	if err != nil {
		t.Fatalf("created event not found: %v", err)
	}
	if ev.IsPublic {
		t.Fatal("unlisted event must stay non-public")
	}
}

func TestUpdateGuards(t *testing.T) {
	svc, bibs, _ := newTestListingService()
	ctx := context.Background()
	price := int64(9000)

	b := seedBib(bibs, model.Bib{
		SellerID: 7, EventID: 1, RegistrationNumber: "M-1",
		PriceCents: 8000, Status: model.StatusAvailable, Listed: model.VisibilityPublic,
	})

	if _, err := svc.UpdateDetails(ctx, b.ID, 8, ListingPatch{PriceCents: &price}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("foreign edit: got %v, want ErrNotOwner", err)
	}

	sold := seedBib(bibs, model.Bib{
		SellerID: 7, EventID: 1, RegistrationNumber: "M-2",
		PriceCents: 8000, Status: model.StatusSold,
	})
	if _, err := svc.UpdateDetails(ctx, sold.ID, 7, ListingPatch{PriceCents: &price}); !errors.Is(err, ErrImmutable) {
		t.Fatalf("edit after sale: got %v, want ErrImmutable", err)
	}

	got, err := svc.UpdateDetails(ctx, b.ID, 7, ListingPatch{PriceCents: &price})
	if err != nil {
		t.Fatalf("owner edit: %v", err)
	}
	if got.PriceCents != price {
		t.Fatalf("price = %d, want %d", got.PriceCents, price)
	}
}

func TestSetVisibilityTokenInvariant(t *testing.T) {
	svc, bibs, _ := newTestListingService()
	ctx := context.Background()

	b := seedBib(bibs, model.Bib{
		SellerID: 7, EventID: 1, RegistrationNumber: "M-1",
		PriceCents: 8000, Status: model.StatusAvailable, Listed: model.VisibilityPublic,
	})

	priv, err := svc.SetVisibility(ctx, b.ID, 7, model.VisibilityPrivate, "secret-link")
	if err != nil {
		t.Fatalf("go private: %v", err)
	}
	if priv.PrivateToken != "secret-link" {
		t.Fatalf("token = %q, want seller-chosen value", priv.PrivateToken)
	}

	pub, err := svc.SetVisibility(ctx, b.ID, 7, model.VisibilityPublic, "")
	if err != nil {
		t.Fatalf("go public: %v", err)
	}
	if pub.PrivateToken != "" {
		t.Fatalf("token must be cleared on public, got %q", pub.PrivateToken)
	}
}

func TestSetVisibilityBlockedWhileRejected(t *testing.T) {
	svc, bibs, _ := newTestListingService()

	b := seedBib(bibs, model.Bib{
		SellerID: 7, EventID: 1, RegistrationNumber: "M-1",
		PriceCents: 8000, Status: model.StatusValidationFailed, Listed: model.VisibilityPublic,
	})
	_, err := svc.SetVisibility(context.Background(), b.ID, 7, model.VisibilityPrivate, "x")
	if !errors.Is(err, ErrValidationPending) {
		t.Fatalf("got %v, want ErrValidationPending", err)
	}
}

func TestWithdraw(t *testing.T) {
	svc, bibs, _ := newTestListingService()
	ctx := context.Background()

	b := seedBib(bibs, model.Bib{
		SellerID: 7, EventID: 1, RegistrationNumber: "M-1",
		PriceCents: 8000, Status: model.StatusAvailable, Listed: model.VisibilityPublic,
	})

	got, err := svc.Withdraw(ctx, b.ID, 7)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if got.Status != model.StatusWithdrawn {
		t.Fatalf("status = %s, want withdrawn", got.Status)
	}
	if _, err := svc.Withdraw(ctx, b.ID, 7); !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("second withdraw: got %v, want ErrAlreadyTerminal", err)
	}
}

func TestApproveRejectOnlyFromPending(t *testing.T) {
	svc, bibs, _ := newTestListingService()
	ctx := context.Background()

	pending := seedBib(bibs, model.Bib{
		SellerID: 7, EventID: 1, RegistrationNumber: "M-1",
		PriceCents: 8000, Status: model.StatusPendingValidation, Listed: model.VisibilityPublic,
	})
	got, err := svc.Approve(ctx, pending.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if got.Status != model.StatusAvailable {
		t.Fatalf("status = %s, want available", got.Status)
	}
	if _, err := svc.Approve(ctx, pending.ID); !errors.Is(err, ErrNotPending) {
		t.Fatalf("re-approve: got %v, want ErrNotPending", err)
	}

	pending2 := seedBib(bibs, model.Bib{
		SellerID: 7, EventID: 1, RegistrationNumber: "M-2",
		PriceCents: 8000, Status: model.StatusPendingValidation, Listed: model.VisibilityPublic,
	})
	got2, err := svc.Reject(ctx, pending2.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if got2.Status != model.StatusValidationFailed {
		t.Fatalf("status = %s, want validation_failed", got2.Status)
	}
}

func TestMarkSoldClassifiesLosers(t *testing.T) {
	svc, bibs, _ := newTestListingService()
	ctx := context.Background()

	b := seedBib(bibs, model.Bib{
		SellerID: 7, EventID: 1, RegistrationNumber: "M-1",
		PriceCents: 8000, Status: model.StatusAvailable, Listed: model.VisibilityPublic,
	})

	sold, err := svc.MarkSold(ctx, b.ID, 21)
	if err != nil {
		t.Fatalf("first MarkSold: %v", err)
	}
	if sold.BuyerID == nil || *sold.BuyerID != 21 {
		t.Fatalf("buyer = %v, want 21", sold.BuyerID)
	}

	// The loser of the race sees already-sold and the winner keeps
	// the assignment.
	if _, err := svc.MarkSold(ctx, b.ID, 22); !errors.Is(err, ErrAlreadySold) {
		t.Fatalf("second MarkSold: got %v, want ErrAlreadySold", err)
	}
	again, _ := bibs.GetByID(ctx, b.ID)
	if *again.BuyerID != 21 {
		t.Fatalf("buyer changed to %d after losing attempt", *again.BuyerID)
	}

	withdrawn := seedBib(bibs, model.Bib{
		SellerID: 7, EventID: 1, RegistrationNumber: "M-3",
		PriceCents: 8000, Status: model.StatusWithdrawn,
	})
	if _, err := svc.MarkSold(ctx, withdrawn.ID, 22); !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("withdrawn MarkSold: got %v, want ErrNotAvailable", err)
	}

	if _, err := svc.MarkSold(ctx, 999, 22); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing MarkSold: got %v, want ErrNotFound", err)
	}
}

func TestMarkSoldConcurrentSingleWinner(t *testing.T) {
	svc, bibs, _ := newTestListingService()
	ctx := context.Background()

	b := seedBib(bibs, model.Bib{
		SellerID: 7, EventID: 1, RegistrationNumber: "M-9",
		PriceCents: 8000, Status: model.StatusAvailable, Listed: model.VisibilityPublic,
	})

	const buyers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins []uint64
	)
	for i := 0; i < buyers; i++ {
		buyerID := uint64(100 + i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sold, err := svc.MarkSold(ctx, b.ID, buyerID)
			switch {
			case err == nil:
				mu.Lock()
				wins = append(wins, *sold.BuyerID)
				mu.Unlock()
			case errors.Is(err, ErrAlreadySold):
			default:
				t.Errorf("buyer %d: unexpected error %v", buyerID, err)
			}
		}()
	}
	wg.Wait()

	if len(wins) != 1 {
		t.Fatalf("winners = %d, want exactly 1", len(wins))
	}
	final, _ := bibs.GetByID(ctx, b.ID)
	if final.Status != model.StatusSold || final.BuyerID == nil || *final.BuyerID != wins[0] {
		t.Fatalf("final state %s buyer=%v, want sold with buyer %d", final.Status, final.BuyerID, wins[0])
	}
}
