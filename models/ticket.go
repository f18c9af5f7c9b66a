package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus is the closed set of lifecycle states a ticket moves through.
// "valid" is the only entry state; "used", "refunded" and "expired" are
// terminal for redemption purposes.
type TicketStatus string

const (
	StatusValid       TicketStatus = "valid"
	StatusUsed        TicketStatus = "used"
	StatusRefunded    TicketStatus = "refunded"
	StatusExpired     TicketStatus = "expired"
	StatusTransferred TicketStatus = "transferred"
)

// KnownStatus reports whether s is one of the declared lifecycle states.
func KnownStatus(s TicketStatus) bool {
	switch s {
	case StatusValid, StatusUsed, StatusRefunded, StatusExpired, StatusTransferred:
		return true
	}
	return false
}

// Ticket is one issued admission right, mirrored from the authoritative
// ledger. OriginalPrice and PurchaseDate are set at mint time and never
// mutated afterwards; resale markup bounds are computed against them no
// matter how often the ticket changes hands.
type Ticket struct {
	ID            uint64          `json:"id"`
	EventID       uint64          `json:"event_id"`
	TierCode      int             `json:"tier_code"`
	Owner         string          `json:"owner"`
	Status        TicketStatus    `json:"status"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	TransferCount int             `json:"transfer_count"`
}

// ScanRecord is the audit entry written when a ticket is redeemed at a venue.
type ScanRecord struct {
	TicketID    uint64    `json:"ticket_id"`
	EventID     uint64    `json:"event_id"`
	ValidatedBy string    `json:"validated_by"`
	ValidatedAt time.Time `json:"validated_at"`
	PayloadMode QrMode    `json:"payload_mode"`
}
