package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/beswib/beswib/internal/model"
)

// EventRepo provides CRUD for race events.  Events are admin-owned
// reference data; the marketplace reads them for display and for the
// listing expiry sweep.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, organizer_id, name, location, event_date,
	distance_km, type, pickup_window_begin, pickup_window_end,
	transfer_deadline, is_public, created_at, updated_at`

// Create inserts an event and populates the generated ID.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (organizer_id, name, location, event_date,
			distance_km, type, pickup_window_begin, pickup_window_end,
			transfer_deadline, is_public)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		e.OrganizerID, e.Name, e.Location, e.EventDate.UTC(),
		e.DistanceKm, e.Type, nullableTime(e.PickupWindowBegin),
		nullableTime(e.PickupWindowEnd), nullableTime(e.TransferDeadline),
		e.IsPublic)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// GetByID loads one event; ErrNotFound when absent.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// Update overwrites the mutable fields of an event.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET organizer_id=?, name=?, location=?, event_date=?,
			distance_km=?, type=?, pickup_window_begin=?, pickup_window_end=?,
			transfer_deadline=?, is_public=?
		 WHERE id=?`,
		e.OrganizerID, e.Name, e.Location, e.EventDate.UTC(),
		e.DistanceKm, e.Type, nullableTime(e.PickupWindowBegin),
		nullableTime(e.PickupWindowEnd), nullableTime(e.TransferDeadline),
		e.IsPublic, e.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, e.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an event.  Fails with ErrConflict while bib listings
// still reference it so that listings never dangle.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bibs WHERE event_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPublic returns upcoming public events ordered by date.  Used by
// the event browse endpoint and the waitlist picker.
func (r *EventRepo) ListPublic(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+eventColumns+` FROM events
		 WHERE is_public = TRUE AND event_date >= UTC_DATE()
		 ORDER BY event_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	var organizer sql.NullInt64
	var pickupBegin, pickupEnd, deadline sql.NullTime
	err := row.Scan(
		&e.ID, &organizer, &e.Name, &e.Location, &e.EventDate,
		&e.DistanceKm, &e.Type, &pickupBegin, &pickupEnd,
		&deadline, &e.IsPublic, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if organizer.Valid {
		id := uint64(organizer.Int64)
		e.OrganizerID = &id
	}
	if pickupBegin.Valid {
		t := pickupBegin.Time
		e.PickupWindowBegin = &t
	}
	if pickupEnd.Valid {
		t := pickupEnd.Time
		e.PickupWindowEnd = &t
	}
	if deadline.Valid {
		t := deadline.Time
		e.TransferDeadline = &t
	}
	return &e, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
