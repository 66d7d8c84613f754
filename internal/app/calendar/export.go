package calendar

import (
	"context"
	"fmt"

	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

// ExportService renders confirmed and pending bookings as an ICS
// document other platforms can subscribe to.
type ExportService struct {
	UoWFactory uow.UoWFactory
	Writer     policies.CalendarWriter
}

// Export returns the serialized calendar and the property name used as
// the calendar title.
func (s *ExportService) Export(ctx context.Context) (string, error) {
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return "", err
	}
	defer func() { _ = unit.Rollback(ctx) }()

	prop, err := unit.Property().Get(ctx)
	if err != nil {
		return "", err
	}
	bookings, err := unit.Bookings().ListByStatus(ctx, domainbooking.StatusConfirmed, domainbooking.StatusPending)
	if err != nil {
		return "", err
	}

	events := make([]policies.ExportEvent, 0, len(bookings))
	for _, b := range bookings {
		events = append(events, policies.ExportEvent{
			Start:       b.Range.CheckIn,
			End:         b.Range.CheckOut,
			Summary:     "Booking: " + b.GuestName,
			Description: fmt.Sprintf("%d guests — $%.2f", b.Guests, float64(b.Price.TotalCents)/100),
		})
	}
	return s.Writer.Encode(prop.Name, events)
}
