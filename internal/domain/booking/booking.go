package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
)

var (
	ErrBookingNotFound  = errors.New("booking: not found")
	ErrInvalidState     = errors.New("booking: invalid state transition")
	ErrAlreadyConfirmed = errors.New("booking: already confirmed")
	ErrGuestNameMissing = errors.New("booking: guest name required")
	ErrGuestEmailBad    = errors.New("booking: guest email required")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Source records where a reservation originated.
type Source string

const (
	SourceDirect Source = "direct"
	SourceAirbnb Source = "airbnb"
	SourceManual Source = "manual"
)

// Booking is a reservation for the property. Price fields are a
// snapshot taken at creation and never recomputed afterwards. A
// booking is never deleted; cancellation is a status change plus the
// release of its blocked dates.
type Booking struct {
	ID              BookingID
	PropertyID      string
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	Range           daterange.DateRange
	Guests          int
	Price           pricing.Quote
	Status          Status
	Source          Source
	StripeSessionID string
	PaymentIntentID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	events.EventRecorder
}

// Repository persists bookings.
type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	ListAll(ctx context.Context) ([]*Booking, error)
	ListByStatus(ctx context.Context, statuses ...Status) ([]*Booking, error)
	ListStalePending(ctx context.Context, createdBefore time.Time) ([]*Booking, error)
	ListFinishedStays(ctx context.Context, checkOutOnOrBefore time.Time) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	PropertyID string
	GuestName  string
	GuestEmail string
	GuestPhone string
	Range      daterange.DateRange
	Guests     int
	Price      pricing.Quote
	Source     Source
	CreatedAt  time.Time
}

// NewBooking creates a pending reservation and records the requested
// event.
func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(params.GuestName) == "" {
		return nil, ErrGuestNameMissing
	}
	if !strings.Contains(params.GuestEmail, "@") {
		return nil, ErrGuestEmailBad
	}
	source := params.Source
	if source == "" {
		source = SourceDirect
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		GuestName:  strings.TrimSpace(params.GuestName),
		GuestEmail: strings.TrimSpace(params.GuestEmail),
		GuestPhone: strings.TrimSpace(params.GuestPhone),
		Range:      params.Range,
		Guests:     params.Guests,
		Price:      params.Price,
		Status:     StatusPending,
		Source:     source,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(BookingRequested{BookingID: b.ID, Range: b.Range, Guests: b.Guests, TotalCents: b.Price.TotalCents, At: now})
	return b, nil
}

// AttachSession stores the hosted-checkout session identifier.
func (b *Booking) AttachSession(sessionID string, now time.Time) {
	b.StripeSessionID = sessionID
	b.UpdatedAt = now.UTC()
}

// Confirm moves a pending booking to confirmed. A booking already
// confirmed returns ErrAlreadyConfirmed so webhook replays can be
// treated as no-ops.
func (b *Booking) Confirm(paymentIntentID string, now time.Time) error {
	switch b.Status {
	case StatusConfirmed:
		return ErrAlreadyConfirmed
	case StatusPending:
	default:
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.PaymentIntentID = paymentIntentID
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, Range: b.Range, TotalCents: b.Price.TotalCents, At: b.UpdatedAt})
	return nil
}

// Cancel moves a pending or confirmed booking to cancelled.
func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	default:
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return nil
}

// Expire cancels an abandoned pending booking whose checkout was never
// paid.
func (b *Booking) Expire(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingExpired{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

// Complete marks a confirmed stay whose check-out date has passed.
func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	return nil
}
