package policies

import (
	"context"
	"errors"

	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
)

var ErrInvalidSignature = errors.New("payments: invalid webhook signature")

// CheckoutSession is the provider-hosted session created for a pending
// booking. The URL is where the guest is redirected to pay.
type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentEvent is a verified webhook callback. BookingID comes from
// the session metadata the bridge attached at creation time.
type PaymentEvent struct {
	Type            string
	SessionID       string
	BookingID       string
	PaymentIntentID string
}

// EventCheckoutCompleted is the only event type that confirms a booking.
const EventCheckoutCompleted = "checkout.session.completed"

// PaymentsPort creates hosted checkout sessions. The amount charged is
// always the server-computed booking total, never a client value.
type PaymentsPort interface {
	CreateSession(ctx context.Context, prop *domainproperty.Property, b *domainbooking.Booking) (CheckoutSession, error)
}

// WebhookVerifier authenticates a raw webhook delivery. Implementations
// must return ErrInvalidSignature before trusting any payload bytes.
type WebhookVerifier interface {
	VerifyAndParse(payload []byte, signatureHeader string) (PaymentEvent, error)
}
