package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-gate/internal/services"
	"ticket-gate/models"
)

type StaffHandler struct {
	app   *pocketbase.PocketBase
	staff *services.StaffService
}

func NewStaffHandler(app *pocketbase.PocketBase, staff *services.StaffService) *StaffHandler {
	return &StaffHandler{
		app:   app,
		staff: staff,
	}
}

// AssignRole - Grant an account a staff role on an event
func (h *StaffHandler) AssignRole(e *core.RequestEvent) error {
	caller, err := requireAuth(e)
	if err != nil {
		return err
	}

	eventID, err := pathID(e, "eventId")
	if err != nil {
		return err
	}

	var req struct {
		Account string `json:"account"`
		Role    string `json:"role"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.Account == "" {
		return apis.NewBadRequestError("account is required", nil)
	}

	role, err := models.ParseStaffRole(req.Role)
	if err != nil {
		return apis.NewBadRequestError("unknown role "+req.Role, nil)
	}

	if err := h.staff.Assign(e.Request.Context(), eventID, caller, req.Account, role); err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"event_id": eventID,
		"account":  req.Account,
		"role":     role.String(),
	})
}

// RevokeRole - Remove an account from an event's staff roster
func (h *StaffHandler) RevokeRole(e *core.RequestEvent) error {
	caller, err := requireAuth(e)
	if err != nil {
		return err
	}

	eventID, err := pathID(e, "eventId")
	if err != nil {
		return err
	}

	account := e.Request.PathValue("account")
	if account == "" {
		return apis.NewBadRequestError("account is required", nil)
	}

	if err := h.staff.Revoke(e.Request.Context(), eventID, caller, account); err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"event_id": eventID,
		"account":  account,
		"role":     models.RoleNone.String(),
	})
}

// GetRole - Effective role of one account, organizer's implicit manager included
func (h *StaffHandler) GetRole(e *core.RequestEvent) error {
	if _, err := requireAuth(e); err != nil {
		return err
	}

	eventID, err := pathID(e, "eventId")
	if err != nil {
		return err
	}

	account := e.Request.PathValue("account")
	role, err := h.staff.Role(e.Request.Context(), eventID, account)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"event_id": eventID,
		"account":  account,
		"role":     role.String(),
	})
}

// GetRoster - Full explicit staff roster of an event, manager-gated
func (h *StaffHandler) GetRoster(e *core.RequestEvent) error {
	caller, err := requireAuth(e)
	if err != nil {
		return err
	}

	eventID, err := pathID(e, "eventId")
	if err != nil {
		return err
	}

	roster, err := h.staff.Roster(e.Request.Context(), eventID, caller)
	if err != nil {
		return apiError(err)
	}

	out := make(map[string]string, len(roster))
	for account, role := range roster {
		out[account] = role.String()
	}

	return e.JSON(http.StatusOK, map[string]any{
		"event_id": eventID,
		"roster":   out,
	})
}
