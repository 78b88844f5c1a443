// Package payment abstracts the external payment processors behind a
// single Provider interface.  The marketplace core only ever sees
// "create a transaction" and "capture it"; which processor answers is
// a configuration concern handled by the factory.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDeclined is returned when the processor refuses the operation
// for a business reason (insufficient funds, order not approved).
// Transport and server errors are returned as ordinary wrapped
// errors.  Callers can treat both the same way: nothing was captured.
var ErrDeclined = errors.New("payment declined")

// CreateRequest describes the transaction to open with a processor.
// SellerPayout identifies where the money ultimately lands (a PayPal
// payee email, a Stripe connected account, ...); the zero value means
// the platform account.
type CreateRequest struct {
	AmountCents  int64
	Currency     string
	Description  string
	SellerPayout string
}

// Transaction is the provider-side handle returned by
// CreateTransaction.  Ref is the only field the marketplace persists.
type Transaction struct {
	Ref    string
	Status string
}

// Receipt proves a successful capture.
type Receipt struct {
	Ref         string
	AmountCents int64
	Currency    string
	CapturedAt  time.Time
}

// Provider is the contract every payment processor implementation
// satisfies.  CaptureTransaction must never be called with a ref that
// did not come from a successful CreateTransaction — the purchase
// orchestrator enforces that ordering.
type Provider interface {
	Name() string
	CreateTransaction(ctx context.Context, req CreateRequest) (*Transaction, error)
	CaptureTransaction(ctx context.Context, ref string) (*Receipt, error)
}

// formatAmount renders cents as a decimal string ("5000" -> "50.00")
// the way processor APIs expect amounts.
func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
