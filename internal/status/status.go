package status

import "errors"

var (
	ErrInvalidIdFormat            = errors.New("token: invalid id format")
	ErrIllegalTransition          = errors.New("lifecycle: illegal transition")
	ErrTicketNotTransferable      = errors.New("lifecycle: ticket not transferable")
	ErrNotOwner                   = errors.New("transfer: caller is not the owner")
	ErrSelfTransfer               = errors.New("transfer: sender and recipient are the same")
	ErrResaleDisabled             = errors.New("resale: resale disabled for event")
	ErrResaleWindowClosed         = errors.New("resale: resale window closed")
	ErrMarkupExceeded             = errors.New("resale: listing price exceeds markup limit")
	ErrInvalidListingPrice        = errors.New("resale: listing price must be positive")
	ErrQrExpired                  = errors.New("qr: payload expired")
	ErrUnrecognizedPayload        = errors.New("qr: unrecognized payload")
	ErrEventContextMismatch       = errors.New("qr: event context mismatch")
	ErrCannotAssignNoneRole       = errors.New("staff: cannot assign none role")
	ErrCannotRemoveOrganizer      = errors.New("staff: cannot remove organizer")
	ErrInsufficientStaffPrivilege = errors.New("staff: insufficient privileges")
	ErrEventNotStarted            = errors.New("lifecycle: event has not started")
	ErrListingNotFound            = errors.New("resale: listing not found")
	ErrTicketNotFound             = errors.New("ledger: ticket not found")
)
