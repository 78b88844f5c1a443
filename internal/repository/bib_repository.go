package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/beswib/beswib/internal/model"
)

// BibRepo provides persistence for bib listings.  The one operation
// with concurrency teeth is MarkSold: it is a conditional UPDATE keyed
// on the current status so that two buyers racing for the same bib can
// never both win.  Everything else is plain CRUD scoped by seller or
// visibility.
type BibRepo struct {
	db *sql.DB
}

// NewBibRepo returns a new BibRepo bound to the given database.
func NewBibRepo(db *sql.DB) *BibRepo { return &BibRepo{db: db} }

const bibColumns = `id, seller_id, event_id, registration_number,
	price_cents, original_price_cents, status, listed, private_token,
	buyer_id, option_values, created_at, updated_at`

// Create inserts a new bib listing and populates the generated ID and
// row timestamps on the provided struct.
func (r *BibRepo) Create(ctx context.Context, b *model.Bib) error {
	opts, err := marshalOptions(b.OptionValues)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bibs (seller_id, event_id, registration_number,
			price_cents, original_price_cents, status, listed, private_token, option_values)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		b.SellerID, b.EventID, b.RegistrationNumber,
		b.PriceCents, b.OriginalPriceCents, string(b.Status),
		nullableVisibility(b.Listed), nullIfEmpty(b.PrivateToken), opts)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	got, err := r.GetByID(ctx, b.ID)
	if err != nil {
		return err
	}
	*b = *got
	return nil
}

// GetByID loads a single bib listing.  Returns ErrNotFound when no
// such row exists.
func (r *BibRepo) GetByID(ctx context.Context, id uint64) (*model.Bib, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+bibColumns+" FROM bibs WHERE id = ?", id)
	b, err := scanBib(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// Update persists the seller-mutable fields plus status and
// visibility.  Buyer assignment is deliberately excluded: the only
// path that sets buyer_id is MarkSold.
func (r *BibRepo) Update(ctx context.Context, b *model.Bib) error {
	opts, err := marshalOptions(b.OptionValues)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE bibs SET registration_number=?, price_cents=?, original_price_cents=?,
			status=?, listed=?, private_token=?, option_values=?
		 WHERE id=?`,
		b.RegistrationNumber, b.PriceCents, b.OriginalPriceCents,
		string(b.Status), nullableVisibility(b.Listed), nullIfEmpty(b.PrivateToken), opts,
		b.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, b.ID); err != nil {
			return err
		}
	}
	return nil
}

// MarkSold performs the compare-and-set transition available -> sold
// and assigns the buyer in the same statement.  The WHERE clause is
// the double-sale guard: it matches only while the listing is still
// available with no buyer, so concurrent callers cannot both succeed.
// When zero rows match, the row is re-read to classify the failure:
// ErrNotFound if the bib vanished, ErrConflict otherwise (already
// sold, withdrawn, expired, or never published).
func (r *BibRepo) MarkSold(ctx context.Context, bibID, buyerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bibs SET status=?, buyer_id=?
		 WHERE id=? AND status=? AND buyer_id IS NULL`,
		string(model.StatusSold), buyerID, bibID, string(model.StatusAvailable))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, bibID); err != nil {
		return err // ErrNotFound or a driver error
	}
	return ErrConflict
}

// ListBySeller returns every listing created by the given seller,
// newest first.  Feeds the seller dashboard.
func (r *BibRepo) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Bib, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bibColumns+" FROM bibs WHERE seller_id = ? ORDER BY created_at DESC",
		sellerID)
	if err != nil {
		return nil, err
	}
	return collectBibs(rows)
}

// ListPurchasedBy returns the listings a buyer has bought, newest
// first.
func (r *BibRepo) ListPurchasedBy(ctx context.Context, buyerID uint64) ([]model.Bib, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+bibColumns+" FROM bibs WHERE buyer_id = ? ORDER BY updated_at DESC",
		buyerID)
	if err != nil {
		return nil, err
	}
	return collectBibs(rows)
}

// MarketplaceFilter narrows and orders the public marketplace query.
type MarketplaceFilter struct {
	EventID uint64 // 0 = all events
	Sort    string // "price_asc", "price_desc", anything else = newest first
}

// ListAvailablePublic returns listings visible in the open
// marketplace: status available and visibility public.  Private
// listings never appear here regardless of token knowledge.
func (r *BibRepo) ListAvailablePublic(ctx context.Context, f MarketplaceFilter) ([]model.Bib, error) {
	q := "SELECT " + bibColumns + " FROM bibs WHERE status = ? AND listed = ?"
	args := []interface{}{string(model.StatusAvailable), string(model.VisibilityPublic)}
	if f.EventID != 0 {
		q += " AND event_id = ?"
		args = append(args, f.EventID)
	}
	switch f.Sort {
	case "price_asc":
		q += " ORDER BY price_cents ASC"
	case "price_desc":
		q += " ORDER BY price_cents DESC"
	default:
		q += " ORDER BY created_at DESC"
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectBibs(rows)
}

// ExpireOverdue flips available listings whose event date has passed
// to expired.  The transition is time-driven, never user-initiated;
// the conditional WHERE keeps it from touching sold or withdrawn
// rows.  Returns the number of listings expired.
func (r *BibRepo) ExpireOverdue(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bibs b
		 JOIN events e ON e.id = b.event_id
		 SET b.status = ?
		 WHERE b.status = ? AND e.event_date < UTC_DATE()`,
		string(model.StatusExpired), string(model.StatusAvailable))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// --- scanning helpers ---

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanBib(row rowScanner) (*model.Bib, error) {
	var b model.Bib
	var status, regNum string
	var listed, token sql.NullString
	var origPrice sql.NullInt64
	var buyer sql.NullInt64
	var opts sql.NullString
	err := row.Scan(
		&b.ID, &b.SellerID, &b.EventID, &regNum,
		&b.PriceCents, &origPrice, &status, &listed, &token,
		&buyer, &opts, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.RegistrationNumber = regNum
	b.Status = model.BibStatus(status)
	if listed.Valid {
		b.Listed = model.Visibility(listed.String)
	}
	if token.Valid {
		b.PrivateToken = token.String
	}
	if origPrice.Valid {
		p := origPrice.Int64
		b.OriginalPriceCents = &p
	}
	if buyer.Valid {
		id := uint64(buyer.Int64)
		b.BuyerID = &id
	}
	if opts.Valid && strings.TrimSpace(opts.String) != "" {
		if err := json.Unmarshal([]byte(opts.String), &b.OptionValues); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

func collectBibs(rows *sql.Rows) ([]model.Bib, error) {
	defer rows.Close()
	out := make([]model.Bib, 0)
	for rows.Next() {
		b, err := scanBib(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func marshalOptions(m map[string]string) (interface{}, error) {
	if len(m) == 0 {
		return nil, nil
	}
	bs, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(bs), nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableVisibility(v model.Visibility) interface{} {
	if v == "" {
		return nil
	}
	return string(v)
}
