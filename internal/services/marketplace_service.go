package services

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"ticket-gate/internal/fees"
	"ticket-gate/internal/lifecycle"
	"ticket-gate/internal/status"
	"ticket-gate/internal/store"
	"ticket-gate/models"
	"ticket-gate/monitoring"
	"ticket-gate/utils"
)

// MarketplaceService runs the resale listing lifecycle: create, cancel,
// settle. Fee math is delegated to the engine; ownership moves go through
// the ledger's atomic transfer commit.
type MarketplaceService struct {
	ledger   store.Ledger
	listings store.ListingStore
	catalog  store.EventCatalog
	engine   *fees.Engine
	clock    store.Clock
	notifier Notifier
}

func NewMarketplaceService(ledger store.Ledger, listings store.ListingStore, catalog store.EventCatalog, engine *fees.Engine, clock store.Clock, notifier Notifier) *MarketplaceService {
	return &MarketplaceService{
		ledger:   ledger,
		listings: listings,
		catalog:  catalog,
		engine:   engine,
		clock:    clock,
		notifier: notifier,
	}
}

// CreateListing validates and opens a listing for the seller's ticket. The
// returned breakdown previews the settlement split at the listed price.
func (s *MarketplaceService) CreateListing(ctx context.Context, ticketID uint64, seller string, price decimal.Decimal) (models.ResaleListing, models.FeeBreakdown, error) {
	ticket, err := s.ledger.GetTicket(ctx, ticketID)
	if err != nil {
		return models.ResaleListing{}, models.FeeBreakdown{}, err
	}

	if err := lifecycle.ValidateListing(ticket, seller); err != nil {
		return models.ResaleListing{}, models.FeeBreakdown{}, err
	}

	event, err := s.catalog.GetEvent(ctx, ticket.EventID)
	if err != nil {
		return models.ResaleListing{}, models.FeeBreakdown{}, err
	}

	rules, err := s.catalog.GetResaleRules(ctx, ticket.EventID)
	if err != nil {
		return models.ResaleListing{}, models.FeeBreakdown{}, err
	}

	if err := s.engine.ValidateListing(ticket.OriginalPrice, price, rules, event.StartsAt, s.clock.Now()); err != nil {
		return models.ResaleListing{}, models.FeeBreakdown{}, err
	}

	id, err := utils.GenerateCode(8)
	if err != nil {
		return models.ResaleListing{}, models.FeeBreakdown{}, fmt.Errorf("generate listing id: %w", err)
	}

	listing := models.ResaleListing{
		ID:        id,
		TicketID:  ticketID,
		EventID:   ticket.EventID,
		Seller:    seller,
		Price:     price,
		CreatedAt: s.clock.Now(),
	}

	if err := s.listings.Put(ctx, listing); err != nil {
		return models.ResaleListing{}, models.FeeBreakdown{}, err
	}

	return listing, s.engine.ResaleBreakdown(price, rules), nil
}

// CancelListing withdraws an open listing. Only the seller may cancel.
func (s *MarketplaceService) CancelListing(ctx context.Context, listingID, caller string) error {
	listing, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return err
	}

	if caller != listing.Seller {
		return fmt.Errorf("%w: %s did not open listing %s", status.ErrNotOwner, caller, listingID)
	}

	return s.listings.Delete(ctx, listing)
}

// SettleListing completes a purchase: the ticket moves to the buyer and the
// listing price is split between seller, organizer and platform. The listing
// is closed in the same pass; a settlement that loses the ledger race leaves
// the listing open for retry.
func (s *MarketplaceService) SettleListing(ctx context.Context, listingID, buyer string) (models.FeeBreakdown, error) {
	listing, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return models.FeeBreakdown{}, err
	}

	if buyer == listing.Seller {
		return models.FeeBreakdown{}, fmt.Errorf("%w: listing %s", status.ErrSelfTransfer, listingID)
	}

	ticket, err := s.ledger.GetTicket(ctx, listing.TicketID)
	if err != nil {
		return models.FeeBreakdown{}, err
	}

	if err := lifecycle.ValidateTransfer(ticket, listing.Seller, buyer); err != nil {
		return models.FeeBreakdown{}, err
	}

	rules, err := s.catalog.GetResaleRules(ctx, listing.EventID)
	if err != nil {
		return models.FeeBreakdown{}, err
	}

	if err := s.ledger.CommitTransfer(ctx, listing.TicketID, listing.Seller, buyer); err != nil {
		return models.FeeBreakdown{}, err
	}

	if err := s.listings.Delete(ctx, listing); err != nil {
		log.Printf("Error closing listing %s after settlement: %v", listingID, err)
	}

	breakdown := s.engine.ResaleBreakdown(listing.Price, rules)

	if err := s.notifier.Publish(ctx, userChannel(listing.Seller), map[string]any{
		"type":          "listing_settled",
		"listing_id":    listingID,
		"ticket_id":     listing.TicketID,
		"seller_amount": breakdown.SellerAmount.String(),
	}); err != nil {
		log.Printf("Error publishing settlement for listing %s: %v", listingID, err)
	}

	monitoring.TrackSettlement(fmt.Sprintf("%d", listing.EventID), "success")
	return breakdown, nil
}
