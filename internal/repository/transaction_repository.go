package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/beswib/beswib/internal/model"
)

// TransactionRepo is the durable record of payment attempts.  Its
// single most important duty is keeping reconciliation_required rows
// until an operator clears them: a captured payment with no bib
// transfer must never exist only in logs.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const txColumns = `id, bib_id, buyer_id, seller_id, provider,
	provider_ref, amount_cents, status, created_at, updated_at`

// Create inserts a transaction row and populates the generated ID.
func (r *TransactionRepo) Create(ctx context.Context, t *model.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (bib_id, buyer_id, seller_id, provider,
			provider_ref, amount_cents, status)
		 VALUES (?,?,?,?,?,?,?)`,
		t.BibID, t.BuyerID, t.SellerID, t.Provider,
		t.ProviderRef, t.AmountCents, string(t.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// GetByProviderRef loads the transaction carrying the given
// provider-side reference.  ErrNotFound when absent.
func (r *TransactionRepo) GetByProviderRef(ctx context.Context, providerRef string) (*model.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+txColumns+" FROM transactions WHERE provider_ref = ?", providerRef)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// SetStatus updates the status of a transaction.
func (r *TransactionRepo) SetStatus(ctx context.Context, id uint64, status model.TransactionStatus) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM transactions WHERE id = ?", id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// ListReconciliationRequired returns the open reconciliation backlog,
// oldest first, for the admin follow-up screen.
func (r *TransactionRepo) ListReconciliationRequired(ctx context.Context) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+txColumns+" FROM transactions WHERE status = ? ORDER BY created_at ASC",
		string(model.TxReconciliationRequired))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var t model.Transaction
	var status string
	err := row.Scan(
		&t.ID, &t.BibID, &t.BuyerID, &t.SellerID, &t.Provider,
		&t.ProviderRef, &t.AmountCents, &status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = model.TransactionStatus(status)
	return &t, nil
}
