// Package lifecycle owns the ticket status transition table and the pure
// validation rules for transfers. Nothing here mutates state; callers commit
// an approved transition through the ledger under its per-ticket atomicity.
package lifecycle

import (
	"fmt"
	"time"

	"ticket-gate/internal/status"
	"ticket-gate/models"
)

// transitions is the legal edge set. A transfer is modeled as
// valid -> transferred at settlement time; the ledger re-enters valid under
// the new owner in the same atomic commit, so "transferred" never rests.
var transitions = map[models.TicketStatus][]models.TicketStatus{
	models.StatusValid: {
		models.StatusUsed,
		models.StatusTransferred,
		models.StatusRefunded,
		models.StatusExpired,
	},
	models.StatusTransferred: {
		models.StatusValid,
	},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to models.TicketStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition validates from -> to, returning ErrIllegalTransition with
// both states named so callers can surface the exact reason.
func CheckTransition(from, to models.TicketStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", status.ErrIllegalTransition, from, to)
	}
	return nil
}

// EffectiveStatus evaluates lazy expiry: a valid ticket whose event has
// ended unused reads as expired. No stored timer flips the status; every
// query re-derives it from the event clock.
func EffectiveStatus(t models.Ticket, event models.Event, now time.Time) models.TicketStatus {
	if t.Status == models.StatusValid && event.Ended(now) {
		return models.StatusExpired
	}
	return t.Status
}

// CheckRedeemable validates a staff redemption attempt against the ticket's
// effective status and the event window.
func CheckRedeemable(t models.Ticket, event models.Event, now time.Time) error {
	if !event.Started(now) {
		return fmt.Errorf("%w: event %d starts at %s", status.ErrEventNotStarted, event.Code, event.StartsAt.Format(time.RFC3339))
	}

	if eff := EffectiveStatus(t, event, now); eff != models.StatusValid {
		return fmt.Errorf("%w: %s -> %s", status.ErrIllegalTransition, eff, models.StatusUsed)
	}

	return nil
}

// ValidateTransfer gates a direct ownership transfer. It is a pure
// predicate; the caller commits the ownership change afterwards.
func ValidateTransfer(t models.Ticket, from, to string) error {
	if from != t.Owner {
		return fmt.Errorf("%w: %s does not own ticket %d", status.ErrNotOwner, from, t.ID)
	}
	if to == from {
		return fmt.Errorf("%w: ticket %d", status.ErrSelfTransfer, t.ID)
	}
	if t.Status != models.StatusValid {
		return fmt.Errorf("%w: ticket %d is %s", status.ErrTicketNotTransferable, t.ID, t.Status)
	}
	return nil
}

// ValidateListing gates marketplace listing creation for ownership and
// status. Price and timing checks live in the fee engine.
func ValidateListing(t models.Ticket, lister string) error {
	if lister != t.Owner {
		return fmt.Errorf("%w: %s does not own ticket %d", status.ErrNotOwner, lister, t.ID)
	}
	if t.Status != models.StatusValid {
		return fmt.Errorf("%w: ticket %d is %s", status.ErrTicketNotTransferable, t.ID, t.Status)
	}
	return nil
}
