package pricing

import (
	"errors"
	"math"
)

var (
	ErrInvalidNights   = errors.New("pricing: nights must be positive")
	ErrNegativeRate    = errors.New("pricing: nightly rate cannot be negative")
	ErrNegativeFee     = errors.New("pricing: cleaning fee cannot be negative")
	ErrInvalidFeeShare = errors.New("pricing: service fee fraction must be within [0, 1]")
)

// Quote is the price snapshot stored on a booking at creation time.
// All amounts are integer minor-currency units (cents).
type Quote struct {
	NightlyRateCents int64 `json:"nightly_rate_cents"`
	Nights           int   `json:"num_nights"`
	SubtotalCents    int64 `json:"subtotal_cents"`
	CleaningFeeCents int64 `json:"cleaning_fee_cents"`
	ServiceFeeCents  int64 `json:"service_fee_cents"`
	TotalCents       int64 `json:"total_cents"`
}

// Calculate derives a quote from the property's canonical rate inputs.
// The service fee rounds half away from zero to the nearest cent, so
// the same inputs always produce the same total at quote time and at
// charge time.
func Calculate(nightlyRateCents int64, nights int, cleaningFeeCents int64, serviceFeeFraction float64) (Quote, error) {
	if nights <= 0 {
		return Quote{}, ErrInvalidNights
	}
	if nightlyRateCents < 0 {
		return Quote{}, ErrNegativeRate
	}
	if cleaningFeeCents < 0 {
		return Quote{}, ErrNegativeFee
	}
	if serviceFeeFraction < 0 || serviceFeeFraction > 1 {
		return Quote{}, ErrInvalidFeeShare
	}
	subtotal := nightlyRateCents * int64(nights)
	serviceFee := int64(math.Round(float64(subtotal) * serviceFeeFraction))
	return Quote{
		NightlyRateCents: nightlyRateCents,
		Nights:           nights,
		SubtotalCents:    subtotal,
		CleaningFeeCents: cleaningFeeCents,
		ServiceFeeCents:  serviceFee,
		TotalCents:       subtotal + cleaningFeeCents + serviceFee,
	}, nil
}
