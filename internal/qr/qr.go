// Package qr builds and parses the proof-of-entry payload exchanged between
// a ticket holder's device and a venue scanner. The package is pure
// encode/decode; authorization and state changes happen after a payload is
// accepted.
package qr

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"ticket-gate/internal/status"
	"ticket-gate/internal/token"
	"ticket-gate/models"
)

// DefaultTTL is the rotating payload validity window. Rotation is purely
// time-window based; a scanner rejects any payload whose window has passed,
// no server round-trip needed to invalidate an old code.
const DefaultTTL = 5 * time.Minute

// Protocol carries the deep-link scheme, the HTTPS fallback host for
// devices without the scheme registered, and the signing key for rotating
// payloads. Now is injected for testability.
type Protocol struct {
	Scheme string
	Host   string
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewProtocol(scheme, host string, secret []byte) *Protocol {
	return &Protocol{
		Scheme: scheme,
		Host:   host,
		Secret: secret,
		TTL:    DefaultTTL,
		Now:    time.Now,
	}
}

type rotatingClaims struct {
	TicketID uint64 `json:"tid"`
	EventID  uint64 `json:"eid"`
	jwt.RegisteredClaims
}

// Build produces the string a holder's device displays for the given mode.
// Static payloads are deep links valid indefinitely; rotating payloads are
// signed tokens bounded by the protocol TTL.
func (p *Protocol) Build(ticketID, eventID uint64, mode models.QrMode) (string, error) {
	switch mode {
	case models.QrModeStatic:
		return fmt.Sprintf("%s://scan/%d/%d", p.Scheme, ticketID, eventID), nil
	case models.QrModeRotating:
		now := p.Now()
		claims := rotatingClaims{
			TicketID: ticketID,
			EventID:  eventID,
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(p.TTL)),
			},
		}
		return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.Secret)
	}
	return "", fmt.Errorf("unknown qr mode %q", mode)
}

// FallbackURL is the HTTPS form of the static payload, for devices without
// the scheme registered.
func (p *Protocol) FallbackURL(ticketID uint64) string {
	return fmt.Sprintf("https://%s/staff/scan/%d", p.Host, ticketID)
}

// Parse turns an arbitrary scanned string into a payload. Shapes are tried
// in order: scheme deep link, HTTPS fallback (path or query parameters),
// signed rotating token, bare numeric ticket id. A bare id carries no event
// context; the caller must verify the event independently.
func (p *Protocol) Parse(input string) (models.QrPayload, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return models.QrPayload{}, status.ErrUnrecognizedPayload
	}

	if strings.HasPrefix(input, p.Scheme+"://") {
		return p.parseDeepLink(input)
	}

	if strings.HasPrefix(input, "https://") || strings.HasPrefix(input, "http://") {
		return p.parseFallback(input)
	}

	if strings.Count(input, ".") == 2 {
		return p.parseRotating(input)
	}

	if id, err := strconv.ParseUint(input, 10, 64); err == nil {
		return models.QrPayload{TicketID: id, Mode: models.QrModeStatic}, nil
	}

	return models.QrPayload{}, status.ErrUnrecognizedPayload
}

// parseDeepLink handles scheme://scan/{ticketId}/{eventId}.
func (p *Protocol) parseDeepLink(input string) (models.QrPayload, error) {
	u, err := url.Parse(input)
	if err != nil || u.Host != "scan" {
		return models.QrPayload{}, fmt.Errorf("%w: bad deep link", status.ErrUnrecognizedPayload)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 {
		return models.QrPayload{}, fmt.Errorf("%w: deep link wants ticket and event", status.ErrUnrecognizedPayload)
	}

	ticketID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return models.QrPayload{}, fmt.Errorf("%w: bad ticket id %q", status.ErrUnrecognizedPayload, parts[0])
	}
	eventID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return models.QrPayload{}, fmt.Errorf("%w: bad event id %q", status.ErrUnrecognizedPayload, parts[1])
	}

	return models.QrPayload{TicketID: ticketID, EventID: eventID, Mode: models.QrModeStatic}, nil
}

// parseFallback handles https://<host>/staff/scan/{ticketId} and the query
// form https://<host>/staff/scan?ticket={id}&event={id}.
func (p *Protocol) parseFallback(input string) (models.QrPayload, error) {
	u, err := url.Parse(input)
	if err != nil {
		return models.QrPayload{}, fmt.Errorf("%w: bad url", status.ErrUnrecognizedPayload)
	}

	payload := models.QrPayload{Mode: models.QrModeStatic}

	if raw := u.Query().Get("ticket"); raw != "" {
		payload.TicketID, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return models.QrPayload{}, fmt.Errorf("%w: bad ticket parameter", status.ErrUnrecognizedPayload)
		}
		if rawEvent := u.Query().Get("event"); rawEvent != "" {
			payload.EventID, err = strconv.ParseUint(rawEvent, 10, 64)
			if err != nil {
				return models.QrPayload{}, fmt.Errorf("%w: bad event parameter", status.ErrUnrecognizedPayload)
			}
		}
		return payload, nil
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "staff" || parts[1] != "scan" {
		return models.QrPayload{}, fmt.Errorf("%w: unrecognized path", status.ErrUnrecognizedPayload)
	}

	payload.TicketID, err = strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return models.QrPayload{}, fmt.Errorf("%w: bad ticket id %q", status.ErrUnrecognizedPayload, parts[2])
	}

	return payload, nil
}

func (p *Protocol) parseRotating(input string) (models.QrPayload, error) {
	claims := &rotatingClaims{}

	_, err := jwt.ParseWithClaims(input, claims, func(t *jwt.Token) (any, error) {
		return p.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(p.Now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.QrPayload{}, fmt.Errorf("%w: %v", status.ErrQrExpired, err)
		}
		return models.QrPayload{}, fmt.Errorf("%w: %v", status.ErrUnrecognizedPayload, err)
	}

	// A rotating payload without a bounded window is not one of ours.
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return models.QrPayload{}, fmt.Errorf("%w: missing validity window", status.ErrUnrecognizedPayload)
	}

	return models.QrPayload{
		TicketID:  claims.TicketID,
		EventID:   claims.EventID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		Mode:      models.QrModeRotating,
	}, nil
}

// CheckExpiry re-validates a rotating payload's window against the given
// instant. Safe to call on static payloads, which never expire.
func CheckExpiry(payload models.QrPayload, now time.Time) error {
	if !payload.ExpiresAt.IsZero() && now.After(payload.ExpiresAt) {
		return fmt.Errorf("%w: expired at %s", status.ErrQrExpired, payload.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

// VerifyEventContext decodes the payload's ticket id and fails closed when
// any event id it carries disagrees with the event encoded in the id. This
// guards against a ticket presented at the wrong venue's scanner.
// scannerEventID is the scanning venue's own event; zero skips that check
// (the caller then must verify the event by other means).
func VerifyEventContext(payload models.QrPayload, scannerEventID uint64) (token.Parts, error) {
	parts, err := token.Decode(payload.TicketID)
	if err != nil {
		return token.Parts{}, err
	}

	if payload.EventID != 0 && payload.EventID != parts.EventID {
		return token.Parts{}, fmt.Errorf("%w: payload says event %d, id encodes %d",
			status.ErrEventContextMismatch, payload.EventID, parts.EventID)
	}
	if scannerEventID != 0 && scannerEventID != parts.EventID {
		return token.Parts{}, fmt.Errorf("%w: scanner is for event %d, id encodes %d",
			status.ErrEventContextMismatch, scannerEventID, parts.EventID)
	}

	return parts, nil
}
