// Package store defines the external collaborator interfaces the lifecycle
// core depends on, plus the Redis and PocketBase adapters used in this
// deployment. The authoritative ownership ledger is external; the Redis
// mirror here stands in for it behind the Ledger interface and any other
// implementation can be substituted.
package store

import (
	"context"
	"time"

	"ticket-gate/models"
)

// Ledger is the ownership/status store. Implementations must apply commits
// atomically per ticket: of two concurrent redemptions only one may observe
// valid -> used succeed; the loser gets an illegal-transition error.
type Ledger interface {
	GetTicket(ctx context.Context, id uint64) (models.Ticket, error)
	GetOwner(ctx context.Context, id uint64) (string, error)
	PutTicket(ctx context.Context, t models.Ticket) error
	CommitTransition(ctx context.Context, id uint64, from, to models.TicketStatus) error
	CommitTransfer(ctx context.Context, id uint64, from, to string) error
	TicketsByEvent(ctx context.Context, eventID uint64) ([]models.Ticket, error)
}

// RosterStore maps (event, account) to a staff role. A missing entry reads
// as RoleNone.
type RosterStore interface {
	GetStaffRole(ctx context.Context, eventID uint64, account string) (models.StaffRole, error)
	SetStaffRole(ctx context.Context, eventID uint64, account string, role models.StaffRole) error
	RemoveStaffRole(ctx context.Context, eventID uint64, account string) error
	Roster(ctx context.Context, eventID uint64) (map[string]models.StaffRole, error)
}

// ListingStore holds open resale listings.
type ListingStore interface {
	Put(ctx context.Context, l models.ResaleListing) error
	Get(ctx context.Context, id string) (models.ResaleListing, error)
	Delete(ctx context.Context, l models.ResaleListing) error
	ListByEvent(ctx context.Context, eventID uint64) ([]models.ResaleListing, error)
}

// EventCatalog is the read-only event/rules source.
type EventCatalog interface {
	GetEvent(ctx context.Context, eventID uint64) (models.Event, error)
	GetResaleRules(ctx context.Context, eventID uint64) (models.ResaleRules, error)
}

// ScanLog records redemption audit entries.
type ScanLog interface {
	Record(ctx context.Context, rec models.ScanRecord) error
	Last(ctx context.Context, ticketID uint64) (models.ScanRecord, error)
}

// Clock is injected so validity windows and resale timing are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
