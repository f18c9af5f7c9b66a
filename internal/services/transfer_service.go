package services

import (
	"context"
	"fmt"
	"log"

	"ticket-gate/internal/lifecycle"
	"ticket-gate/internal/status"
	"ticket-gate/internal/store"
	"ticket-gate/models"
	"ticket-gate/monitoring"
)

// TransferService gates direct (non-marketplace) ownership transfers and
// runs the organizer refund sweep on event cancellation.
type TransferService struct {
	ledger   store.Ledger
	catalog  store.EventCatalog
	clock    store.Clock
	notifier Notifier
}

func NewTransferService(ledger store.Ledger, catalog store.EventCatalog, clock store.Clock, notifier Notifier) *TransferService {
	return &TransferService{
		ledger:   ledger,
		catalog:  catalog,
		clock:    clock,
		notifier: notifier,
	}
}

// Transfer moves the ticket from its current owner to a new one. The
// ticket re-enters valid under the recipient; only the relationship is
// retired, not the admission right.
func (s *TransferService) Transfer(ctx context.Context, ticketID uint64, from, to string) (models.TicketStatus, error) {
	ticket, err := s.ledger.GetTicket(ctx, ticketID)
	if err != nil {
		return "", err
	}
	eventLabel := fmt.Sprintf("%d", ticket.EventID)

	if err := lifecycle.ValidateTransfer(ticket, from, to); err != nil {
		monitoring.TrackTransfer(eventLabel, "rejected")
		return "", err
	}

	if err := s.ledger.CommitTransfer(ctx, ticketID, from, to); err != nil {
		monitoring.TrackTransfer(eventLabel, "conflict")
		return "", err
	}

	if err := s.notifier.Publish(ctx, userChannel(to), map[string]any{
		"type":      "ticket_received",
		"ticket_id": ticketID,
		"from":      from,
	}); err != nil {
		log.Printf("Error publishing transfer for ticket %d: %v", ticketID, err)
	}

	monitoring.TrackTransfer(eventLabel, "success")
	return models.StatusValid, nil
}

// RefundEvent marks every still-valid ticket of a cancelled event as
// refunded. Only the organizer may trigger it. Tickets whose events ended
// unused read expired and are left alone; the sweep never revives them.
func (s *TransferService) RefundEvent(ctx context.Context, eventID uint64, caller string) (int, error) {
	event, err := s.catalog.GetEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}

	if caller != event.Organizer {
		return 0, fmt.Errorf("%w: only the organizer may refund event %d", status.ErrInsufficientStaffPrivilege, eventID)
	}

	tickets, err := s.ledger.TicketsByEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	refunded := 0
	for _, ticket := range tickets {
		if lifecycle.EffectiveStatus(ticket, event, now) != models.StatusValid {
			continue
		}
		if err := s.ledger.CommitTransition(ctx, ticket.ID, models.StatusValid, models.StatusRefunded); err != nil {
			log.Printf("Error refunding ticket %d: %v", ticket.ID, err)
			continue
		}
		refunded++

		if err := s.notifier.Publish(ctx, userChannel(ticket.Owner), map[string]any{
			"type":      "ticket_refunded",
			"ticket_id": ticket.ID,
			"event_id":  eventID,
		}); err != nil {
			log.Printf("Error publishing refund for ticket %d: %v", ticket.ID, err)
		}
	}

	return refunded, nil
}
