// Package queue defines message payloads exchanged over the message broker.
package queue

// BibSoldEvent is published when a purchase completes. It carries enough
// information for downstream consumers to log, notify the seller, or feed
// analytics without querying the primary database.
type BibSoldEvent struct {
	BibID       uint64 `json:"bib_id"`
	EventID     uint64 `json:"event_id"`
	SellerID    uint64 `json:"seller_id"`
	BuyerID     uint64 `json:"buyer_id"`
	AmountCents int64  `json:"amount_cents"`
	Provider    string `json:"provider"`
	ProviderRef string `json:"provider_ref"`
	SoldAt      string `json:"sold_at"`
}

// ReconciliationAlert is published when a payment was captured but the bib
// could not be assigned to the buyer. Operators consume these; the message
// deliberately duplicates the transactions row so the alert survives even
// when the database is what failed.
type ReconciliationAlert struct {
	BibID       uint64 `json:"bib_id"`
	BuyerID     uint64 `json:"buyer_id"`
	Provider    string `json:"provider"`
	ProviderRef string `json:"provider_ref"`
	AmountCents int64  `json:"amount_cents"`
	Cause       string `json:"cause"`
	OccurredAt  string `json:"occurred_at"`
}
