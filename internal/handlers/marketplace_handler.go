package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"ticket-gate/internal/services"
	"ticket-gate/internal/store"
)

type MarketplaceHandler struct {
	app         *pocketbase.PocketBase
	marketplace *services.MarketplaceService
	listings    store.ListingStore
}

func NewMarketplaceHandler(app *pocketbase.PocketBase, marketplace *services.MarketplaceService, listings store.ListingStore) *MarketplaceHandler {
	return &MarketplaceHandler{
		app:         app,
		marketplace: marketplace,
		listings:    listings,
	}
}

// CreateListing - Open a resale listing for an owned ticket
func (h *MarketplaceHandler) CreateListing(e *core.RequestEvent) error {
	caller, err := requireAuth(e)
	if err != nil {
		return err
	}

	var req struct {
		TicketID uint64 `json:"ticket_id"`
		Price    string `json:"price"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return apis.NewBadRequestError("invalid price", nil)
	}

	listing, breakdown, err := h.marketplace.CreateListing(e.Request.Context(), req.TicketID, caller, price)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"listing":   listing,
		"breakdown": breakdown,
	})
}

// CancelListing - Withdraw an open listing, seller only
func (h *MarketplaceHandler) CancelListing(e *core.RequestEvent) error {
	caller, err := requireAuth(e)
	if err != nil {
		return err
	}

	listingID := e.Request.PathValue("listingId")
	if err := h.marketplace.CancelListing(e.Request.Context(), listingID, caller); err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{"listing_id": listingID, "cancelled": true})
}

// PurchaseListing - Settle an open listing for the authenticated buyer
func (h *MarketplaceHandler) PurchaseListing(e *core.RequestEvent) error {
	caller, err := requireAuth(e)
	if err != nil {
		return err
	}

	listingID := e.Request.PathValue("listingId")
	breakdown, err := h.marketplace.SettleListing(e.Request.Context(), listingID, caller)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"listing_id": listingID,
		"breakdown":  breakdown,
	})
}

// ListEventListings - Open listings for one event
func (h *MarketplaceHandler) ListEventListings(e *core.RequestEvent) error {
	eventID, err := pathID(e, "eventId")
	if err != nil {
		return err
	}

	listings, err := h.listings.ListByEvent(e.Request.Context(), eventID)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"event_id": eventID,
		"listings": listings,
	})
}
