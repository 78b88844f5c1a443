package model

import "time"

// TransactionStatus tracks a payment-provider transaction through the
// purchase orchestration.  The statuses mirror the orchestration
// steps so that operators can tell "nothing happened" apart from
// "money moved, needs follow-up" from the table alone.
type TransactionStatus string

const (
	// TxCreated: provider-side transaction exists, nothing captured.
	TxCreated TransactionStatus = "created"
	// TxCaptured: the buyer's payment was captured.
	TxCaptured TransactionStatus = "captured"
	// TxFailed: creation or capture failed; no money moved.
	TxFailed TransactionStatus = "failed"
	// TxReconciliationRequired: payment captured but the bib could
	// not be assigned to the buyer.  A refund is owed; flagged for
	// manual operator follow-up and never cleared automatically.
	TxReconciliationRequired TransactionStatus = "reconciliation_required"
)

// Transaction is the durable record of one payment attempt against a
// bib listing.  One bib may accumulate several failed transactions
// (buyer retries) but at most one captured one.
type Transaction struct {
	ID          uint64            // transactions.id
	BibID       uint64            // transactions.bib_id
	BuyerID     uint64            // transactions.buyer_id
	SellerID    uint64            // transactions.seller_id
	Provider    string            // transactions.provider (paypal, stripe, stub)
	ProviderRef string            // transactions.provider_ref
	AmountCents int64             // transactions.amount_cents
	Status      TransactionStatus // transactions.status
	CreatedAt   time.Time         // transactions.created_at
	UpdatedAt   time.Time         // transactions.updated_at
}
