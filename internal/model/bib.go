package model

import "time"

// BibStatus enumerates the lifecycle states of a bib listing.
type BibStatus string

const (
	// StatusPendingValidation is the entry state of every new listing.
	// The event details supplied by the seller still await an admin
	// check; the listing is invisible to buyers.
	StatusPendingValidation BibStatus = "pending_validation"
	// StatusValidationFailed means an admin rejected the listing's
	// event details.  The seller may edit and withdraw but cannot
	// publish until an admin clears it again.
	StatusValidationFailed BibStatus = "validation_failed"
	// StatusAvailable means the listing is live; whether buyers can
	// discover it depends on the Listed visibility field.
	StatusAvailable BibStatus = "available"
	// StatusSold, StatusExpired and StatusWithdrawn are terminal.
	StatusSold      BibStatus = "sold"
	StatusExpired   BibStatus = "expired"
	StatusWithdrawn BibStatus = "withdrawn"
)

// Terminal reports whether no further seller- or system-driven
// transition may leave this status.
func (s BibStatus) Terminal() bool {
	return s == StatusSold || s == StatusExpired || s == StatusWithdrawn
}

// Visibility of a listed bib.  Public listings appear in the open
// marketplace; private listings are reachable only through a direct
// link carrying the seller-chosen access token.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Bib is the central marketplace entity: one race-registration slot
// offered for resale.  Status and Listed together drive everything
// the marketplace does; the invariants are enforced by the listing
// service, not by this struct:
//
//   - BuyerID is set if and only if Status == sold.
//   - PrivateToken is non-empty if and only if Listed == private.
//   - PriceCents > 0 always.  OriginalPriceCents is display-only and
//     carries no ordering constraint.
//
// Fields:
//  ID                 – primary key identifier.
//  SellerID           – user who listed the bib; the only actor
//                       allowed to mutate it besides system-driven
//                       sold/expired transitions.
//  EventID            – race this registration belongs to.
//  RegistrationNumber – race-side registration reference.
//  PriceCents         – asking price in cents.
//  OriginalPriceCents – optional original price for discount display.
//  Status             – see BibStatus.
//  Listed             – public/private visibility, empty string until
//                       first listed.
//  PrivateToken       – access token gating a private listing.
//  BuyerID            – buyer, present only once sold.
//  OptionValues       – free-form option map (e.g. size, gender),
//                       stored as a JSON column.
//  CreatedAt, UpdatedAt – row timestamps.
type Bib struct {
	ID                 uint64            // bibs.id
	SellerID           uint64            // bibs.seller_id
	EventID            uint64            // bibs.event_id
	RegistrationNumber string            // bibs.registration_number
	PriceCents         int64             // bibs.price_cents
	OriginalPriceCents *int64            // bibs.original_price_cents (nullable)
	Status             BibStatus         // bibs.status
	Listed             Visibility        // bibs.listed ('' until listed)
	PrivateToken       string            // bibs.private_token ('' unless private)
	BuyerID            *uint64           // bibs.buyer_id (nullable)
	OptionValues       map[string]string // bibs.option_values (JSON)
	CreatedAt          time.Time         // bibs.created_at
	UpdatedAt          time.Time         // bibs.updated_at
}
