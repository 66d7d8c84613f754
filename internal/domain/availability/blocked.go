package availability

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/shared/daterange"
)

var (
	// ErrDateConflict is returned when inserting a block that already
	// exists for the same (property, date, source) key. The storage
	// layer's unique index is what makes the second concurrent writer
	// observe this instead of double-booking.
	ErrDateConflict = errors.New("availability: date already blocked")
)

// Source tags a blocked day with its origin.
type Source string

const (
	// SourceManual rows mirror pending/confirmed bookings.
	SourceManual Source = "manual"
	// SourceAirbnb rows mirror the external feed and are fully
	// replaced on every sync.
	SourceAirbnb Source = "airbnb"
)

// BlockedDate marks one calendar day the property cannot be booked.
type BlockedDate struct {
	PropertyID string
	Date       time.Time
	Source     Source
	Summary    string
}

// Repository persists blocked days. Insert must surface a unique-key
// violation as ErrDateConflict; Upsert must tolerate it.
type Repository interface {
	InRange(ctx context.Context, propertyID string, dr daterange.DateRange) ([]BlockedDate, error)
	Insert(ctx context.Context, blocks []BlockedDate) error
	Upsert(ctx context.Context, blocks []BlockedDate) error
	DeleteManualRange(ctx context.Context, propertyID string, dr daterange.DateRange) error
	ReplaceAirbnb(ctx context.Context, propertyID string, blocks []BlockedDate) error
}

// ManualBlocks expands a booking range into per-day manual rows.
func ManualBlocks(propertyID string, dr daterange.DateRange, summary string) []BlockedDate {
	days := dr.Days()
	blocks := make([]BlockedDate, 0, len(days))
	for _, day := range days {
		blocks = append(blocks, BlockedDate{
			PropertyID: propertyID,
			Date:       day,
			Source:     SourceManual,
			Summary:    summary,
		})
	}
	return blocks
}
