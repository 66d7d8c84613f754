package policies

import (
	"context"

	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
)

// MailerPort sends transactional email after a booking is confirmed.
type MailerPort interface {
	SendGuestConfirmation(ctx context.Context, prop *domainproperty.Property, b *domainbooking.Booking) error
	SendOwnerNotification(ctx context.Context, to string, b *domainbooking.Booking) error
}
