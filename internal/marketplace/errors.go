// Package marketplace holds the bib-listing lifecycle, the
// private-listing access gate and the purchase orchestration.  It is
// the one part of the system with multi-step invariants; everything
// here is callable from a handler, a CLI or a test identically, with
// the web layer acting as a thin adapter.
package marketplace

import (
	"errors"
	"fmt"
	"strings"
)

// Guard violations reported by the listing state machine.  These are
// ordinary typed errors, not exceptions used for control flow: every
// caller checks them with errors.Is.
var (
	// ErrNotOwner: the caller is not the listing's seller.  Handlers
	// surface it without revealing anything about the listing beyond
	// the fact that it exists.
	ErrNotOwner = errors.New("not the listing owner")
	// ErrImmutable: the listing is in a terminal status (sold,
	// expired, withdrawn) and rejects further mutation.
	ErrImmutable = errors.New("listing is immutable in its current status")
	// ErrAlreadyTerminal: a withdraw on an already terminal listing.
	ErrAlreadyTerminal = errors.New("listing already in a terminal status")
	// ErrAlreadySold: the sold transition ran against a listing that
	// already has a buyer.  The second caller must see this without
	// any side effect on the first buyer's assignment.
	ErrAlreadySold = errors.New("listing already sold")
	// ErrNotAvailable: purchase-path operations on a listing that is
	// not in the available status.
	ErrNotAvailable = errors.New("listing not available")
	// ErrTokenRequired: a private visibility change or purchase
	// without an access token.
	ErrTokenRequired = errors.New("private listing requires an access token")
	// ErrInvalidToken: the supplied token does not match the
	// listing's private access token.
	ErrInvalidToken = errors.New("invalid access token")
	// ErrValidationPending: publishing is blocked until an admin
	// clears the listing's event details.
	ErrValidationPending = errors.New("listing validation not cleared")
	// ErrNotPending: an admin approve/reject against a listing that
	// is not awaiting validation.
	ErrNotPending = errors.New("listing is not pending validation")
	// ErrOwnListing: a seller attempting to buy their own bib.
	ErrOwnListing = errors.New("cannot purchase own listing")
	// ErrProfileIncomplete: the buyer's profile is missing required
	// fields; checked before any payment-provider call.
	ErrProfileIncomplete = errors.New("buyer profile incomplete")
	// ErrReconciliationRequired is the one fatal-class error in this
	// core: a payment was captured but the listing could not be
	// assigned.  Money has moved without a state transition; the
	// failure is durably recorded before this error is returned.
	ErrReconciliationRequired = errors.New("payment captured but listing assignment failed")
)

// ValidationError reports bad input shape or values on listing
// creation and edits.  It is always recoverable by the caller
// correcting input and is surfaced verbatim to the UI.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProfileIncompleteError carries the missing field names so the UI
// can point the buyer at what to fill in.
type ProfileIncompleteError struct {
	Missing []string
}

func (e *ProfileIncompleteError) Error() string {
	return "profile incomplete, missing: " + strings.Join(e.Missing, ", ")
}

func (e *ProfileIncompleteError) Unwrap() error { return ErrProfileIncomplete }

// PaymentError wraps a payment-provider failure with the
// orchestration stage it occurred in ("create" or "capture").  At
// either stage no listing mutation has happened, so retry is always
// safe for the buyer.
type PaymentError struct {
	Stage string
	Err   error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment %s failed: %v", e.Stage, e.Err)
}

func (e *PaymentError) Unwrap() error { return e.Err }
