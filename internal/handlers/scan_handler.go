package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-gate/internal/services"
)

type ScanHandler struct {
	app   *pocketbase.PocketBase
	scans *services.ScanService
}

func NewScanHandler(app *pocketbase.PocketBase, scans *services.ScanService) *ScanHandler {
	return &ScanHandler{
		app:   app,
		scans: scans,
	}
}

// Scan - Staff redemption of a scanned payload
func (h *ScanHandler) Scan(e *core.RequestEvent) error {
	caller, err := requireAuth(e)
	if err != nil {
		return err
	}

	var req struct {
		Payload string `json:"payload"`
		EventID uint64 `json:"event_id"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.Payload == "" {
		return apis.NewBadRequestError("payload is required", nil)
	}

	result, err := h.scans.Redeem(e.Request.Context(), req.Payload, req.EventID, caller)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, result)
}

// ScanFallback - HTTPS fallback for scanners without the deep-link scheme.
// The ticket id rides the path; the event context comes from the id itself.
func (h *ScanHandler) ScanFallback(e *core.RequestEvent) error {
	caller, err := requireAuth(e)
	if err != nil {
		return err
	}

	raw := e.Request.PathValue("ticketId")
	if raw == "" {
		return apis.NewBadRequestError("ticket id is required", nil)
	}

	result, err := h.scans.Redeem(e.Request.Context(), raw, 0, caller)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, result)
}
