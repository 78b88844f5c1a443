package model

import "time"

// WaitlistEntry records a buyer's interest in an event that currently
// has no bib available.  Entries have no state machine: a single
// create, listed on the dashboard, implicitly stale once the event
// date has passed (display-only, never enforced).
type WaitlistEntry struct {
	ID               uint64    // waitlists.id
	UserID           uint64    // waitlists.user_id
	EventID          uint64    // waitlists.event_id
	MailNotification bool      // waitlists.mail_notification
	AddedAt          time.Time // waitlists.added_at
}
