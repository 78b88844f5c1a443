package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/beswib/beswib/internal/model"
)

// WaitlistRepo persists buyer interest in events with no available
// bib.  Entries are create-and-list only; there is no state machine.
type WaitlistRepo struct {
	db *sql.DB
}

func NewWaitlistRepo(db *sql.DB) *WaitlistRepo { return &WaitlistRepo{db: db} }

// Join adds the user to an event's waitlist.  The (user_id, event_id)
// pair is unique; joining twice returns ErrDuplicate.
func (r *WaitlistRepo) Join(ctx context.Context, userID, eventID uint64, mailNotification bool) (*model.WaitlistEntry, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO waitlists (user_id, event_id, mail_notification) VALUES (?,?,?)",
		userID, eventID, mailNotification)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	var w model.WaitlistEntry
	err = r.db.QueryRowContext(ctx,
		"SELECT id, user_id, event_id, mail_notification, added_at FROM waitlists WHERE id = ?",
		id).Scan(&w.ID, &w.UserID, &w.EventID, &w.MailNotification, &w.AddedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListByUser returns the user's waitlist entries, newest first.
func (r *WaitlistRepo) ListByUser(ctx context.Context, userID uint64) ([]model.WaitlistEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, event_id, mail_notification, added_at
		 FROM waitlists WHERE user_id = ? ORDER BY added_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.WaitlistEntry, 0)
	for rows.Next() {
		var w model.WaitlistEntry
		if err := rows.Scan(&w.ID, &w.UserID, &w.EventID, &w.MailNotification, &w.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
