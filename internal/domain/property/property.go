package property

import (
	"context"
	"errors"

	"staybook/internal/domain/shared/daterange"
)

var (
	ErrPropertyNotFound = errors.New("property: not found")
	ErrTooManyGuests    = errors.New("property: guest count exceeds the maximum")
	ErrInvalidGuests    = errors.New("property: guest count must be positive")
	ErrBelowMinNights   = errors.New("property: stay shorter than the minimum nights")
)

// Property is the site's single rental unit. Rates are integer cents;
// the service fee is a decimal fraction of the nightly subtotal.
type Property struct {
	ID                 string
	Name               string
	NightlyRateCents   int64
	CleaningFeeCents   int64
	ServiceFeeFraction float64
	MinNights          int
	MaxGuests          int
	Bedrooms           int
	Bathrooms          int
	Amenities          []string
	Description        string
}

// Repository reads the singleton property record.
type Repository interface {
	Get(ctx context.Context) (*Property, error)
}

// ValidateStay checks a proposed stay against the property's limits.
func (p *Property) ValidateStay(dr daterange.DateRange, guests int) error {
	if guests <= 0 {
		return ErrInvalidGuests
	}
	if p.MaxGuests > 0 && guests > p.MaxGuests {
		return ErrTooManyGuests
	}
	if dr.Nights() < p.MinNights {
		return ErrBelowMinNights
	}
	return nil
}
