package marketplace

import "github.com/beswib/beswib/internal/model"

// The access gate is deliberately a set of pure functions over a
// loaded bib: no store, no cache, no clock.  Callers must re-load the
// bib and re-run the gate on every request — a token revoked by the
// seller flipping the listing public, or a sale completing, takes
// effect on the very next evaluation.

// DenialReason explains why the gate refused a purchase attempt.
type DenialReason string

const (
	ReasonNotAvailable  DenialReason = "not_available"
	ReasonTokenRequired DenialReason = "token_required"
	ReasonInvalidToken  DenialReason = "invalid_token"
)

// Decision is the gate's verdict on a single purchase attempt.
type Decision struct {
	CanPurchase bool
	Reason      DenialReason
}

// EvaluatePurchase decides whether a buyer presenting the given token
// may start (or continue) a purchase of this listing.  Status is
// checked before visibility: a sold private listing reports
// not-available, never a token problem, so probing a stale link leaks
// nothing about the token.
func EvaluatePurchase(b *model.Bib, token string) Decision {
	if b.Status != model.StatusAvailable {
		return Decision{Reason: ReasonNotAvailable}
	}
	if b.Listed != model.VisibilityPrivate {
		return Decision{CanPurchase: true}
	}
	if token == "" {
		return Decision{Reason: ReasonTokenRequired}
	}
	if token != b.PrivateToken {
		return Decision{Reason: ReasonInvalidToken}
	}
	return Decision{CanPurchase: true}
}

// DenialError maps a gate refusal onto the corresponding domain
// error.  Must not be called on a granting decision.
func (d Decision) DenialError() error {
	switch d.Reason {
	case ReasonTokenRequired:
		return ErrTokenRequired
	case ReasonInvalidToken:
		return ErrInvalidToken
	default:
		return ErrNotAvailable
	}
}

// CanView reports whether a detail-page request may see this listing
// at all.  Sellers and buyers always see their own bibs in any
// status; everyone else sees public listings, or private ones only
// with the exact token.  A false here is rendered as not-found by the
// web layer so that link guessing cannot distinguish "absent" from
// "private".
func CanView(b *model.Bib, viewerID uint64, token string) bool {
	if viewerID != 0 && viewerID == b.SellerID {
		return true
	}
	if viewerID != 0 && b.BuyerID != nil && viewerID == *b.BuyerID {
		return true
	}
	if b.Listed == model.VisibilityPrivate {
		return token != "" && token == b.PrivateToken
	}
	// Public listings are viewable while live; pending and terminal
	// ones are only visible to their participants above.
	return b.Status == model.StatusAvailable || b.Status == model.StatusSold
}
