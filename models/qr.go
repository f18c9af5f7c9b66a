package models

import "time"

// QrMode selects how an event's proof-of-entry payload is produced.
type QrMode string

const (
	// QrModeStatic is a deep link with no expiry, for low-risk events.
	QrModeStatic QrMode = "static"
	// QrModeRotating is a signed payload bounded by a validity window; the
	// holder's device re-displays a fresh code before the window closes.
	QrModeRotating QrMode = "rotating"
)

// QrPayload is the parsed form of a scanned proof-of-entry code. It is
// ephemeral and never persisted. EventID is zero for bare legacy payloads
// that carry no event context. IssuedAt/ExpiresAt are zero for static
// payloads, which never expire.
type QrPayload struct {
	TicketID  uint64    `json:"ticket_id"`
	EventID   uint64    `json:"event_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Mode      QrMode    `json:"mode"`
}
