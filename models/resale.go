package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ResaleRules is the organizer's per-event resale configuration. Percentages
// are carried in basis points (1% = 100 bps) so fee arithmetic stays exact;
// conversion to human-readable percentages happens at the API boundary only.
type ResaleRules struct {
	AllowResell          bool  `json:"allow_resell"`
	MaxMarkupBps         int64 `json:"max_markup_bps"`
	OrganizerFeeBps      int64 `json:"organizer_fee_bps"`
	RestrictResellTiming bool  `json:"restrict_resell_timing"`
	MinDaysBeforeEvent   int   `json:"min_days_before_event"`
}

// ResaleListing is an offer to sell an already-owned ticket. Ownership sits
// with the marketplace authority while the listing is open; it moves to the
// buyer on settlement or back to the seller on cancellation.
type ResaleListing struct {
	ID        string          `json:"id"`
	TicketID  uint64          `json:"ticket_id"`
	EventID   uint64          `json:"event_id"`
	Seller    string          `json:"seller"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// FeeBreakdown is the deterministic split of a settled listing price.
// OrganizerFee + PlatformFee + SellerAmount always equals ListingPrice
// exactly; rounding is absorbed by the seller.
type FeeBreakdown struct {
	ListingPrice decimal.Decimal `json:"listing_price"`
	OrganizerFee decimal.Decimal `json:"organizer_fee"`
	PlatformFee  decimal.Decimal `json:"platform_fee"`
	SellerAmount decimal.Decimal `json:"seller_amount"`
}
