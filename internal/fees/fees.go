// Package fees prices resale listings and splits settlement proceeds.
// Every rate is carried in basis points and every amount in decimal so the
// split conserves the listing price to the currency's smallest unit.
package fees

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"ticket-gate/internal/status"
	"ticket-gate/models"
)

const (
	// Platform rates are event-independent. Primary sales carry 700 bps,
	// resales 300 bps.
	PlatformPrimaryFeeBps int64 = 700
	PlatformResaleFeeBps  int64 = 300

	bpsDenominator int64 = 10_000
)

// Engine computes fee breakdowns for one currency. Exponent is the number
// of decimal places of the currency's smallest unit; fees are rounded down
// to it and the seller absorbs the remainder.
type Engine struct {
	ResaleFeeBps  int64
	PrimaryFeeBps int64
	Exponent      int32
}

func NewEngine() *Engine {
	return &Engine{
		ResaleFeeBps:  PlatformResaleFeeBps,
		PrimaryFeeBps: PlatformPrimaryFeeBps,
		Exponent:      2,
	}
}

// MaxAllowedPrice is the listing ceiling: originalPrice * (1 + markup).
func MaxAllowedPrice(originalPrice decimal.Decimal, maxMarkupBps int64) decimal.Decimal {
	factor := decimal.NewFromInt(bpsDenominator + maxMarkupBps)
	return originalPrice.Mul(factor).Div(decimal.NewFromInt(bpsDenominator))
}

// ValidateListing applies the organizer's resale bounds to a proposed
// listing, failing fast in rule order: resale enabled, timing window,
// markup ceiling, positive price.
func (e *Engine) ValidateListing(originalPrice, listingPrice decimal.Decimal, rules models.ResaleRules, eventStart, now time.Time) error {
	if !rules.AllowResell {
		return status.ErrResaleDisabled
	}

	if rules.RestrictResellTiming {
		daysUntil := int(math.Floor(eventStart.Sub(now).Hours() / 24))
		if daysUntil < rules.MinDaysBeforeEvent {
			return fmt.Errorf("%w: %d days before event, minimum is %d", status.ErrResaleWindowClosed, daysUntil, rules.MinDaysBeforeEvent)
		}
	}

	maxAllowed := MaxAllowedPrice(originalPrice, rules.MaxMarkupBps)
	if listingPrice.GreaterThan(maxAllowed) {
		return fmt.Errorf("%w: %s over limit %s", status.ErrMarkupExceeded, listingPrice, maxAllowed)
	}

	if !listingPrice.IsPositive() {
		return fmt.Errorf("%w: %s", status.ErrInvalidListingPrice, listingPrice)
	}

	return nil
}

// ResaleBreakdown splits an accepted sale at listingPrice. Fee recipients
// are rounded down to the smallest unit; the seller takes the exact
// remainder, so the three parts always sum to the listing price.
func (e *Engine) ResaleBreakdown(listingPrice decimal.Decimal, rules models.ResaleRules) models.FeeBreakdown {
	organizerFee := feeOf(listingPrice, rules.OrganizerFeeBps, e.Exponent)
	platformFee := feeOf(listingPrice, e.ResaleFeeBps, e.Exponent)

	return models.FeeBreakdown{
		ListingPrice: listingPrice,
		OrganizerFee: organizerFee,
		PlatformFee:  platformFee,
		SellerAmount: listingPrice.Sub(organizerFee).Sub(platformFee),
	}
}

// PrimaryBreakdown splits a mint-time sale: the platform takes its primary
// rate and the organizer receives the remainder.
func (e *Engine) PrimaryBreakdown(salePrice decimal.Decimal) models.FeeBreakdown {
	platformFee := feeOf(salePrice, e.PrimaryFeeBps, e.Exponent)

	return models.FeeBreakdown{
		ListingPrice: salePrice,
		PlatformFee:  platformFee,
		SellerAmount: salePrice.Sub(platformFee),
	}
}

func feeOf(amount decimal.Decimal, bps int64, exponent int32) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(bps)).
		Div(decimal.NewFromInt(bpsDenominator)).
		RoundDown(exponent)
}

// PercentToBps converts a human-readable percentage (e.g. 2.5) to basis
// points. Used only at the presentation boundary.
func PercentToBps(percent decimal.Decimal) int64 {
	return percent.Mul(decimal.NewFromInt(100)).IntPart()
}

// BpsToPercent converts basis points back to a percentage for display.
func BpsToPercent(bps int64) decimal.Decimal {
	return decimal.NewFromInt(bps).Div(decimal.NewFromInt(100))
}
