package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/beswib/beswib/internal/model"
)

// OrganizerRepo provides CRUD for race organizers.  Pure admin
// reference data.
type OrganizerRepo struct {
	db *sql.DB
}

func NewOrganizerRepo(db *sql.DB) *OrganizerRepo { return &OrganizerRepo{db: db} }

// Create inserts an organizer and populates the generated ID.
func (r *OrganizerRepo) Create(ctx context.Context, o *model.Organizer) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO organizers (name, email, website, is_partnered) VALUES (?,?,?,?)",
		o.Name, o.Email, o.Website, o.IsPartnered)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// GetByID loads one organizer; ErrNotFound when absent.
func (r *OrganizerRepo) GetByID(ctx context.Context, id uint64) (*model.Organizer, error) {
	var o model.Organizer
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, website, is_partnered, created_at, updated_at
		 FROM organizers WHERE id = ?`, id).
		Scan(&o.ID, &o.Name, &o.Email, &o.Website, &o.IsPartnered, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Update overwrites an organizer's fields.
func (r *OrganizerRepo) Update(ctx context.Context, o *model.Organizer) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE organizers SET name=?, email=?, website=?, is_partnered=? WHERE id=?",
		o.Name, o.Email, o.Website, o.IsPartnered, o.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, o.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an organizer.  Events keep a nullable organizer_id,
// so referencing events are detached rather than blocked.
func (r *OrganizerRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE events SET organizer_id = NULL WHERE organizer_id = ?", id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM organizers WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all organizers ordered by name.
func (r *OrganizerRepo) List(ctx context.Context) ([]model.Organizer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, website, is_partnered, created_at, updated_at
		 FROM organizers ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Organizer, 0)
	for rows.Next() {
		var o model.Organizer
		if err := rows.Scan(&o.ID, &o.Name, &o.Email, &o.Website, &o.IsPartnered, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
