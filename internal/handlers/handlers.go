// Package handlers exposes the ticket lifecycle, venue scan, staff roster
// and resale marketplace operations over the PocketBase router. Handlers
// translate transport concerns only; domain rules live in the services.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"ticket-gate/internal/status"
)

// apiError maps the domain error taxonomy to HTTP responses. Unknown
// errors fall through as a generic 400 so internals never leak.
func apiError(err error) error {
	switch {
	case errors.Is(err, status.ErrTicketNotFound),
		errors.Is(err, status.ErrListingNotFound):
		return apis.NewNotFoundError(err.Error(), nil)
	case errors.Is(err, status.ErrNotOwner),
		errors.Is(err, status.ErrInsufficientStaffPrivilege),
		errors.Is(err, status.ErrCannotRemoveOrganizer):
		return apis.NewForbiddenError(err.Error(), nil)
	case errors.Is(err, status.ErrIllegalTransition):
		return apis.NewApiError(http.StatusConflict, err.Error(), nil)
	case errors.Is(err, status.ErrQrExpired),
		errors.Is(err, status.ErrUnrecognizedPayload),
		errors.Is(err, status.ErrInvalidIdFormat),
		errors.Is(err, status.ErrEventContextMismatch):
		return apis.NewBadRequestError(err.Error(), nil)
	case errors.Is(err, status.ErrResaleDisabled),
		errors.Is(err, status.ErrResaleWindowClosed),
		errors.Is(err, status.ErrMarkupExceeded),
		errors.Is(err, status.ErrInvalidListingPrice),
		errors.Is(err, status.ErrTicketNotTransferable),
		errors.Is(err, status.ErrSelfTransfer),
		errors.Is(err, status.ErrEventNotStarted),
		errors.Is(err, status.ErrCannotAssignNoneRole):
		return apis.NewBadRequestError(err.Error(), nil)
	}
	return apis.NewBadRequestError("request failed", nil)
}

// pathID parses a numeric path value, 400 on malformed input.
func pathID(e *core.RequestEvent, name string) (uint64, error) {
	raw := e.Request.PathValue(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apis.NewBadRequestError("invalid "+name, nil)
	}
	return id, nil
}

// requireAuth returns the authenticated account id or a 401.
func requireAuth(e *core.RequestEvent) (string, error) {
	if e.Auth == nil {
		return "", apis.NewUnauthorizedError("Unauthorized", nil)
	}
	return e.Auth.Id, nil
}
