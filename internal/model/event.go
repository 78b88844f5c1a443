package model

import "time"

// Event is the read-mostly reference entity a bib listing points at.
// Events are owned by admins; the marketplace core consumes them for
// display and for the time-driven expiry of listings (a bib whose
// event date has passed can no longer be sold).
//
// Fields:
//  ID                   – primary key identifier.
//  OrganizerID          – organizer running the race (nullable for
//                         unlisted events supplied by sellers).
//  Name                 – race name.
//  Location             – city / venue.
//  EventDate            – race day; drives listing expiry.
//  DistanceKm           – race distance in kilometres.
//  Type                 – road, trail, triathlon, ...
//  PickupWindowBegin/End – when bibs can be collected (nullable).
//  TransferDeadline     – last day the organizer accepts a name
//                         change (nullable; display-only).
//  IsPublic             – whether the event shows up in browse lists.
//  CreatedAt, UpdatedAt – row timestamps.
type Event struct {
	ID                uint64     // events.id
	OrganizerID       *uint64    // events.organizer_id (nullable)
	Name              string     // events.name
	Location          string     // events.location
	EventDate         time.Time  // events.event_date
	DistanceKm        float64    // events.distance_km
	Type              string     // events.type
	PickupWindowBegin *time.Time // events.pickup_window_begin (nullable)
	PickupWindowEnd   *time.Time // events.pickup_window_end (nullable)
	TransferDeadline  *time.Time // events.transfer_deadline (nullable)
	IsPublic          bool       // events.is_public
	CreatedAt         time.Time  // events.created_at
	UpdatedAt         time.Time  // events.updated_at
}

// Organizer represents a race organizer referenced by events.  Pure
// admin-managed CRUD; no state machine.
type Organizer struct {
	ID          uint64    // organizers.id
	Name        string    // organizers.name
	Email       string    // organizers.email
	Website     string    // organizers.website
	IsPartnered bool      // organizers.is_partnered
	CreatedAt   time.Time // organizers.created_at
	UpdatedAt   time.Time // organizers.updated_at
}
