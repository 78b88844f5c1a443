package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/beswib/beswib/internal/model"
	"github.com/beswib/beswib/internal/repository"
)

// ListingService owns every transition of the bib lifecycle.  All
// guards live here; handlers never touch a bib status directly.
type ListingService struct {
	bibs   ListingStore
	events EventStore
}

// NewListingService wires the service to its stores.
func NewListingService(bibs ListingStore, events EventStore) *ListingService {
	return &ListingService{bibs: bibs, events: events}
}

// UnlistedEvent carries seller-supplied event details for races not
// yet in the catalogue.  The created event stays non-public until an
// admin approves the listing built on it.
type UnlistedEvent struct {
	Name       string
	Location   string
	EventDate  time.Time
	DistanceKm float64
	Type       string
}

// NewListing is the seller's creation input.  Exactly one of EventID
// and UnlistedEvent must be set.
type NewListing struct {
	EventID            uint64
	UnlistedEvent      *UnlistedEvent
	RegistrationNumber string
	PriceCents         int64
	OriginalPriceCents *int64
	Visibility         model.Visibility
	PrivateToken       string
	OptionValues       map[string]string
}

// Create validates the input and inserts a new listing.  Every new
// listing starts in pending_validation regardless of the event being
// a known one: admins confirm that the registration looks plausible
// before buyers ever see it.  For private visibility a missing token
// is generated rather than rejected, so "share a secret link" works
// out of the box.
func (s *ListingService) Create(ctx context.Context, sellerID uint64, in NewListing) (*model.Bib, error) {
	if strings.TrimSpace(in.RegistrationNumber) == "" {
		return nil, &ValidationError{Field: "registration_number", Reason: "must not be empty"}
	}
	if in.PriceCents <= 0 {
		return nil, &ValidationError{Field: "price", Reason: "must be positive"}
	}
	if in.OriginalPriceCents != nil && *in.OriginalPriceCents <= 0 {
		return nil, &ValidationError{Field: "original_price", Reason: "must be positive when set"}
	}

	eventID := in.EventID
	switch {
	case eventID != 0 && in.UnlistedEvent != nil:
		return nil, &ValidationError{Field: "event", Reason: "supply either an event id or unlisted event details, not both"}
	case eventID != 0:
		if _, err := s.events.GetByID(ctx, eventID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &ValidationError{Field: "event", Reason: "unknown event"}
			}
			return nil, err
		}
	case in.UnlistedEvent != nil:
		ev := in.UnlistedEvent
		if strings.TrimSpace(ev.Name) == "" || ev.EventDate.IsZero() {
			return nil, &ValidationError{Field: "event", Reason: "unlisted event needs at least a name and a date"}
		}
		created := &model.Event{
			Name:       strings.TrimSpace(ev.Name),
			Location:   strings.TrimSpace(ev.Location),
			EventDate:  ev.EventDate,
			DistanceKm: ev.DistanceKm,
			Type:       ev.Type,
			IsPublic:   false,
		}
		if err := s.events.Create(ctx, created); err != nil {
			return nil, err
		}
		eventID = created.ID
	default:
		return nil, &ValidationError{Field: "event", Reason: "an event id or unlisted event details are required"}
	}

	vis := in.Visibility
	if vis == "" {
		vis = model.VisibilityPublic
	}
	if vis != model.VisibilityPublic && vis != model.VisibilityPrivate {
		return nil, &ValidationError{Field: "visibility", Reason: "must be public or private"}
	}
	token := ""
	if vis == model.VisibilityPrivate {
		token = strings.TrimSpace(in.PrivateToken)
		if token == "" {
			token = uuid.NewString()
		}
	}

	b := &model.Bib{
		SellerID:           sellerID,
		EventID:            eventID,
		RegistrationNumber: strings.TrimSpace(in.RegistrationNumber),
		PriceCents:         in.PriceCents,
		OriginalPriceCents: in.OriginalPriceCents,
		Status:             model.StatusPendingValidation,
		Listed:             vis,
		PrivateToken:       token,
		OptionValues:       in.OptionValues,
	}
	if err := s.bibs.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Get loads a single listing with no access checks; callers apply the
// gate themselves.
func (s *ListingService) Get(ctx context.Context, id uint64) (*model.Bib, error) {
	return s.bibs.GetByID(ctx, id)
}

// ListingPatch is a partial update of seller-editable fields.  Nil
// pointers mean "leave unchanged"; a nil OptionValues map likewise.
type ListingPatch struct {
	RegistrationNumber *string
	PriceCents         *int64
	OriginalPriceCents *int64
	OptionValues       map[string]string
}

// UpdateDetails applies a patch to a listing the caller owns.  Edits
// are allowed in every non-terminal status, including while the
// listing is live: price drops on available bibs are the normal case.
// The buyer assignment is never touched here.
func (s *ListingService) UpdateDetails(ctx context.Context, bibID, sellerID uint64, p ListingPatch) (*model.Bib, error) {
	b, err := s.ownedMutable(ctx, bibID, sellerID)
	if err != nil {
		return nil, err
	}
	if p.RegistrationNumber != nil {
		rn := strings.TrimSpace(*p.RegistrationNumber)
		if rn == "" {
			return nil, &ValidationError{Field: "registration_number", Reason: "must not be empty"}
		}
		b.RegistrationNumber = rn
	}
	if p.PriceCents != nil {
		if *p.PriceCents <= 0 {
			return nil, &ValidationError{Field: "price", Reason: "must be positive"}
		}
		b.PriceCents = *p.PriceCents
	}
	if p.OriginalPriceCents != nil {
		if *p.OriginalPriceCents <= 0 {
			return nil, &ValidationError{Field: "original_price", Reason: "must be positive when set"}
		}
		b.OriginalPriceCents = p.OriginalPriceCents
	}
	if p.OptionValues != nil {
		b.OptionValues = p.OptionValues
	}
	if err := s.bibs.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// SetVisibility switches a listing between public and private.  Going
// private requires a token (seller-chosen, or generated when empty);
// going public clears it so the token-iff-private invariant holds.
// The switch is blocked while validation has not been cleared: a
// rejected listing cannot sneak into the marketplace by toggling.
func (s *ListingService) SetVisibility(ctx context.Context, bibID, sellerID uint64, target model.Visibility, token string) (*model.Bib, error) {
	if target != model.VisibilityPublic && target != model.VisibilityPrivate {
		return nil, &ValidationError{Field: "visibility", Reason: "must be public or private"}
	}
	b, err := s.ownedMutable(ctx, bibID, sellerID)
	if err != nil {
		return nil, err
	}
	if b.Status == model.StatusValidationFailed {
		return nil, ErrValidationPending
	}
	switch target {
	case model.VisibilityPrivate:
		t := strings.TrimSpace(token)
		if t == "" {
			t = uuid.NewString()
		}
		b.Listed = model.VisibilityPrivate
		b.PrivateToken = t
	case model.VisibilityPublic:
		b.Listed = model.VisibilityPublic
		b.PrivateToken = ""
	}
	if err := s.bibs.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Withdraw is the seller-driven terminal transition.  Allowed from
// any non-terminal status; a second withdraw reports
// ErrAlreadyTerminal rather than succeeding silently.
func (s *ListingService) Withdraw(ctx context.Context, bibID, sellerID uint64) (*model.Bib, error) {
	b, err := s.bibs.GetByID(ctx, bibID)
	if err != nil {
		return nil, err
	}
	if b.SellerID != sellerID {
		return nil, ErrNotOwner
	}
	if b.Status.Terminal() {
		return nil, ErrAlreadyTerminal
	}
	b.Status = model.StatusWithdrawn
	if err := s.bibs.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// MarkSold runs the atomic available -> sold transition and assigns
// the buyer.  Losing the race is not an internal error: the store's
// conflict is re-read and classified so the caller can tell "someone
// beat you to it" (ErrAlreadySold) apart from "the listing left the
// market" (ErrNotAvailable).
func (s *ListingService) MarkSold(ctx context.Context, bibID, buyerID uint64) (*model.Bib, error) {
	err := s.bibs.MarkSold(ctx, bibID, buyerID)
	if err == nil {
		return s.bibs.GetByID(ctx, bibID)
	}
	if !errors.Is(err, repository.ErrConflict) {
		return nil, err
	}
	b, rerr := s.bibs.GetByID(ctx, bibID)
	if rerr != nil {
		return nil, rerr
	}
	if b.Status == model.StatusSold {
		return nil, ErrAlreadySold
	}
	return nil, ErrNotAvailable
}

// Approve clears a pending listing for sale (admin only).  The
// listing becomes available immediately under whatever visibility the
// seller chose at creation.
func (s *ListingService) Approve(ctx context.Context, bibID uint64) (*model.Bib, error) {
	return s.resolveValidation(ctx, bibID, model.StatusAvailable)
}

// Reject marks a pending listing's details as failed (admin only).
// The seller can edit and withdraw but not publish.
func (s *ListingService) Reject(ctx context.Context, bibID uint64) (*model.Bib, error) {
	return s.resolveValidation(ctx, bibID, model.StatusValidationFailed)
}

func (s *ListingService) resolveValidation(ctx context.Context, bibID uint64, to model.BibStatus) (*model.Bib, error) {
	b, err := s.bibs.GetByID(ctx, bibID)
	if err != nil {
		return nil, err
	}
	if b.Status != model.StatusPendingValidation {
		return nil, fmt.Errorf("%w (status %s)", ErrNotPending, b.Status)
	}
	b.Status = to
	if err := s.bibs.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// MyListings returns the seller dashboard view.
func (s *ListingService) MyListings(ctx context.Context, sellerID uint64) ([]model.Bib, error) {
	return s.bibs.ListBySeller(ctx, sellerID)
}

// MyPurchases returns the bibs the user has bought.
func (s *ListingService) MyPurchases(ctx context.Context, buyerID uint64) ([]model.Bib, error) {
	return s.bibs.ListPurchasedBy(ctx, buyerID)
}

// ownedMutable loads a listing and enforces the two guards shared by
// every seller edit: ownership and a non-terminal status.
func (s *ListingService) ownedMutable(ctx context.Context, bibID, sellerID uint64) (*model.Bib, error) {
	b, err := s.bibs.GetByID(ctx, bibID)
	if err != nil {
		return nil, err
	}
	if b.SellerID != sellerID {
		return nil, ErrNotOwner
	}
	if b.Status.Terminal() {
		return nil, ErrImmutable
	}
	return b, nil
}
