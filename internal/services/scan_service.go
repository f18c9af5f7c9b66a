package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"ticket-gate/internal/lifecycle"
	"ticket-gate/internal/qr"
	"ticket-gate/internal/status"
	"ticket-gate/internal/store"
	"ticket-gate/models"
	"ticket-gate/monitoring"
)

// ScanService runs the venue redemption flow: parse the scanned payload,
// cross-check its event context, gate the caller's staff role, then commit
// valid -> used through the ledger's per-ticket atomic transaction. The
// whole flow is idempotent: re-scanning the same payload re-checks state
// and the loser of a race observes an illegal transition.
type ScanService struct {
	ledger   store.Ledger
	scans    store.ScanLog
	catalog  store.EventCatalog
	staff    *StaffService
	protocol *qr.Protocol
	clock    store.Clock
	notifier Notifier
}

func NewScanService(
	ledger store.Ledger,
	scans store.ScanLog,
	catalog store.EventCatalog,
	staff *StaffService,
	protocol *qr.Protocol,
	clock store.Clock,
	notifier Notifier,
) *ScanService {
	return &ScanService{
		ledger:   ledger,
		scans:    scans,
		catalog:  catalog,
		staff:    staff,
		protocol: protocol,
		clock:    clock,
		notifier: notifier,
	}
}

// ScanResult reports a completed redemption.
type ScanResult struct {
	TicketID    uint64              `json:"ticket_id"`
	EventID     uint64              `json:"event_id"`
	Status      models.TicketStatus `json:"status"`
	Owner       string              `json:"owner"`
	ValidatedBy string              `json:"validated_by"`
	ValidatedAt time.Time           `json:"validated_at"`
}

// Redeem accepts a raw scanned string. scannerEventID is the venue's own
// event and may be zero for trusted callers that verify the event
// themselves (bare legacy payloads then pass without a cross-check).
func (s *ScanService) Redeem(ctx context.Context, raw string, scannerEventID uint64, caller string) (ScanResult, error) {
	started := s.clock.Now()

	payload, err := s.protocol.Parse(raw)
	if err != nil {
		monitoring.TrackQrParseFailure()
		return ScanResult{}, err
	}

	parts, err := qr.VerifyEventContext(payload, scannerEventID)
	if err != nil {
		return ScanResult{}, err
	}
	eventLabel := fmt.Sprintf("%d", parts.EventID)

	if err := s.staff.Require(ctx, parts.EventID, caller, models.RoleScanner); err != nil {
		monitoring.TrackRedemption(eventLabel, "forbidden")
		return ScanResult{}, err
	}

	event, err := s.catalog.GetEvent(ctx, parts.EventID)
	if err != nil {
		return ScanResult{}, err
	}

	now := s.clock.Now()
	if err := qr.CheckExpiry(payload, now); err != nil {
		monitoring.TrackRedemption(eventLabel, "expired_qr")
		return ScanResult{}, err
	}

	ticket, err := s.ledger.GetTicket(ctx, payload.TicketID)
	if err != nil {
		return ScanResult{}, err
	}

	if err := lifecycle.CheckRedeemable(ticket, event, now); err != nil {
		monitoring.TrackRedemption(eventLabel, "rejected")
		return ScanResult{}, err
	}

	if err := s.ledger.CommitTransition(ctx, ticket.ID, models.StatusValid, models.StatusUsed); err != nil {
		monitoring.TrackRedemption(eventLabel, "conflict")
		return ScanResult{}, err
	}

	record := models.ScanRecord{
		TicketID:    ticket.ID,
		EventID:     parts.EventID,
		ValidatedBy: caller,
		ValidatedAt: now,
		PayloadMode: payload.Mode,
	}
	if err := s.scans.Record(ctx, record); err != nil {
		// The transition is already committed; the audit entry is
		// supplementary.
		log.Printf("Error recording scan audit for ticket %d: %v", ticket.ID, err)
	}

	if err := s.notifier.Publish(ctx, userChannel(ticket.Owner), map[string]any{
		"type":      "ticket_redeemed",
		"ticket_id": ticket.ID,
		"event_id":  parts.EventID,
	}); err != nil {
		log.Printf("Error publishing redemption for ticket %d: %v", ticket.ID, err)
	}

	if err := s.notifier.Publish(ctx, eventStaffChannel(parts.EventID), map[string]any{
		"type":         "scan_recorded",
		"ticket_id":    ticket.ID,
		"validated_by": caller,
	}); err != nil {
		log.Printf("Error publishing scan to staff channel for event %d: %v", parts.EventID, err)
	}

	monitoring.TrackRedemption(eventLabel, "success")
	monitoring.TrackRedemptionDuration(eventLabel, s.clock.Now().Sub(started))

	return ScanResult{
		TicketID:    ticket.ID,
		EventID:     parts.EventID,
		Status:      models.StatusUsed,
		Owner:       ticket.Owner,
		ValidatedBy: caller,
		ValidatedAt: now,
	}, nil
}

// BuildPayload produces the code the holder's device displays. Only the
// current owner may request it. mode overrides the event's configured
// payload mode when non-empty.
func (s *ScanService) BuildPayload(ctx context.Context, ticketID uint64, caller string, mode models.QrMode) (string, string, error) {
	ticket, err := s.ledger.GetTicket(ctx, ticketID)
	if err != nil {
		return "", "", err
	}

	if caller != ticket.Owner {
		return "", "", fmt.Errorf("%w: %s does not own ticket %d", status.ErrNotOwner, caller, ticketID)
	}

	event, err := s.catalog.GetEvent(ctx, ticket.EventID)
	if err != nil {
		return "", "", err
	}

	if mode == "" {
		mode = event.QrMode
	}
	if mode == "" {
		mode = models.QrModeStatic
	}

	code, err := s.protocol.Build(ticketID, ticket.EventID, mode)
	if err != nil {
		return "", "", err
	}

	return code, s.protocol.FallbackURL(ticketID), nil
}

// TicketInfo is the holder/staff view of one ticket with its lazily
// evaluated effective status and last scan, if any.
type TicketInfo struct {
	Ticket          models.Ticket       `json:"ticket"`
	EffectiveStatus models.TicketStatus `json:"effective_status"`
	LastScan        *models.ScanRecord  `json:"last_scan,omitempty"`
}

func (s *ScanService) TicketInfo(ctx context.Context, ticketID uint64) (TicketInfo, error) {
	ticket, err := s.ledger.GetTicket(ctx, ticketID)
	if err != nil {
		return TicketInfo{}, err
	}

	event, err := s.catalog.GetEvent(ctx, ticket.EventID)
	if err != nil {
		return TicketInfo{}, err
	}

	info := TicketInfo{
		Ticket:          ticket,
		EffectiveStatus: lifecycle.EffectiveStatus(ticket, event, s.clock.Now()),
	}

	if rec, err := s.scans.Last(ctx, ticketID); err == nil {
		info.LastScan = &rec
	}

	return info, nil
}
