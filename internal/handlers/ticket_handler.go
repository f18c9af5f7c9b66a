package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-gate/internal/services"
	"ticket-gate/internal/token"
	"ticket-gate/models"
)

type TicketHandler struct {
	app       *pocketbase.PocketBase
	scans     *services.ScanService
	transfers *services.TransferService
}

func NewTicketHandler(app *pocketbase.PocketBase, scans *services.ScanService, transfers *services.TransferService) *TicketHandler {
	return &TicketHandler{
		app:       app,
		scans:     scans,
		transfers: transfers,
	}
}

// DecodeTicketID - Break a composite ticket id into its components
func (h *TicketHandler) DecodeTicketID(e *core.RequestEvent) error {
	ticketID, err := pathID(e, "ticketId")
	if err != nil {
		return err
	}

	parts, err := token.Decode(ticketID)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"ticket_id": ticketID,
		"event_id":  parts.EventID,
		"tier_code": parts.TierCode,
		"sequence":  parts.Sequence,
	})
}

// GetTicket - Ticket detail with effective status and last scan
func (h *TicketHandler) GetTicket(e *core.RequestEvent) error {
	if _, err := requireAuth(e); err != nil {
		return err
	}

	ticketID, err := pathID(e, "ticketId")
	if err != nil {
		return err
	}

	info, err := h.scans.TicketInfo(e.Request.Context(), ticketID)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, info)
}

// TransferTicket - Move a ticket to another account
func (h *TicketHandler) TransferTicket(e *core.RequestEvent) error {
	caller, err := requireAuth(e)
	if err != nil {
		return err
	}

	ticketID, err := pathID(e, "ticketId")
	if err != nil {
		return err
	}

	var req struct {
		To string `json:"to"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.To == "" {
		return apis.NewBadRequestError("to is required", nil)
	}

	status, err := h.transfers.Transfer(e.Request.Context(), ticketID, caller, req.To)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"ticket_id": ticketID,
		"owner":     req.To,
		"status":    status,
	})
}

// BuildQr - Produce the proof-of-entry payload for the holder's device
func (h *TicketHandler) BuildQr(e *core.RequestEvent) error {
	caller, err := requireAuth(e)
	if err != nil {
		return err
	}

	ticketID, err := pathID(e, "ticketId")
	if err != nil {
		return err
	}

	var req struct {
		Mode string `json:"mode"`
	}
	// Body is optional; mode defaults to the event's configured mode.
	_ = e.BindBody(&req)

	code, fallback, err := h.scans.BuildPayload(e.Request.Context(), ticketID, caller, models.QrMode(req.Mode))
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"ticket_id":    ticketID,
		"code":         code,
		"fallback_url": fallback,
	})
}

// RefundEvent - Organizer sweep marking an event's valid tickets refunded
func (h *TicketHandler) RefundEvent(e *core.RequestEvent) error {
	caller, err := requireAuth(e)
	if err != nil {
		return err
	}

	eventID, err := pathID(e, "eventId")
	if err != nil {
		return err
	}

	refunded, err := h.transfers.RefundEvent(e.Request.Context(), eventID, caller)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"event_id": eventID,
		"refunded": refunded,
	})
}
