package models

import "time"

// Event is the catalog view of an event this subsystem cares about. The
// catalog itself is external; only the fields needed for redemption and
// resale gating are mirrored here.
type Event struct {
	Code      uint64    `json:"code"`
	Name      string    `json:"name"`
	Venue     string    `json:"venue"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Cancelled bool      `json:"cancelled"`
	Organizer string    `json:"organizer"`
	QrMode    QrMode    `json:"qr_mode"`
}

// Started reports whether the event has started at the given instant.
func (e Event) Started(now time.Time) bool {
	return !now.Before(e.StartsAt)
}

// Ended reports whether the event's nominal end time has passed.
func (e Event) Ended(now time.Time) bool {
	return now.After(e.EndsAt)
}
