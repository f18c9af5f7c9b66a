// Package token packs and unpacks ticket identifiers. A single unsigned
// integer carries the event, the tier and a per-tier sequence so any
// component holding a bare id can recover where it belongs without a
// lookup round-trip.
package token

import (
	"fmt"

	"ticket-gate/internal/status"
)

// Fixed-width decimal packing:
//
//	id = Base + eventID*EventMultiplier + (tierCode+1)*TierMultiplier + sequence
//
// Ids below Base do not belong to this scheme. Tier codes are stored 1-based
// so a zero tier digit is distinguishable from tier 0.
const (
	Base            uint64 = 1_000_000_000
	EventMultiplier uint64 = 1_000_000
	TierMultiplier  uint64 = 100_000

	MaxSequence uint64 = TierMultiplier - 1
	MaxTierCode        = 8 // tier digit holds tierCode+1, a single decimal digit
	MaxEventID  uint64 = (1<<63 - 1 - Base) / EventMultiplier
)

// Parts is the decoded form of a ticket id.
type Parts struct {
	EventID  uint64 `json:"event_id"`
	TierCode int    `json:"tier_code"`
	Sequence uint64 `json:"sequence"`
}

// Encode packs (eventID, tierCode, sequence) into a ticket id. Encode and
// Decode are exact inverses for every input Encode accepts.
func Encode(eventID uint64, tierCode int, sequence uint64) (uint64, error) {
	if eventID > MaxEventID {
		return 0, fmt.Errorf("%w: event id %d out of range", status.ErrInvalidIdFormat, eventID)
	}
	if tierCode < 0 || tierCode > MaxTierCode {
		return 0, fmt.Errorf("%w: tier code %d out of range", status.ErrInvalidIdFormat, tierCode)
	}
	if sequence > MaxSequence {
		return 0, fmt.Errorf("%w: sequence %d out of range", status.ErrInvalidIdFormat, sequence)
	}

	return Base + eventID*EventMultiplier + (uint64(tierCode)+1)*TierMultiplier + sequence, nil
}

// Decode unpacks a ticket id into its parts.
func Decode(id uint64) (Parts, error) {
	if id < Base {
		return Parts{}, fmt.Errorf("%w: id %d below scheme base", status.ErrInvalidIdFormat, id)
	}

	remaining := id - Base
	eventID := remaining / EventMultiplier
	afterEvent := remaining % EventMultiplier
	tierRaw := afterEvent / TierMultiplier
	sequence := afterEvent % TierMultiplier

	if tierRaw == 0 {
		return Parts{}, fmt.Errorf("%w: id %d has no tier digit", status.ErrInvalidIdFormat, id)
	}
	if eventID > MaxEventID {
		return Parts{}, fmt.Errorf("%w: id %d event part out of range", status.ErrInvalidIdFormat, id)
	}

	return Parts{
		EventID:  eventID,
		TierCode: int(tierRaw) - 1,
		Sequence: sequence,
	}, nil
}
