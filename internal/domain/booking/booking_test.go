package booking

import (
	"errors"
	"testing"
	"time"

	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
)

func testRange(t *testing.T) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("daterange.New: %v", err)
	}
	return dr
}

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	quote, err := pricing.Calculate(20000, 3, 10000, 0.1)
	if err != nil {
		t.Fatalf("pricing.Calculate: %v", err)
	}
	b, err := NewBooking(CreateParams{
		ID:         "bk-1",
		PropertyID: "prop-1",
		GuestName:  "Ada Lovelace",
		GuestEmail: "ada@example.com",
		Range:      testRange(t),
		Guests:     2,
		Price:      quote,
		CreatedAt:  time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("NewBooking: %v", err)
	}
	return b
}

func TestNewBookingValidation(t *testing.T) {
	dr := testRange(t)
	if _, err := NewBooking(CreateParams{GuestName: "  ", GuestEmail: "a@b.c", Range: dr}); !errors.Is(err, ErrGuestNameMissing) {
		t.Errorf("blank name: got %v, want ErrGuestNameMissing", err)
	}
	if _, err := NewBooking(CreateParams{GuestName: "Ada", GuestEmail: "not-an-email", Range: dr}); !errors.Is(err, ErrGuestEmailBad) {
		t.Errorf("bad email: got %v, want ErrGuestEmailBad", err)
	}
}

func TestNewBookingStartsPending(t *testing.T) {
	b := newTestBooking(t)
	if b.Status != StatusPending {
		t.Fatalf("status = %q, want pending", b.Status)
	}
	if b.Source != SourceDirect {
		t.Errorf("source = %q, want direct", b.Source)
	}
	events := b.PendingEvents()
	if len(events) != 1 || events[0].EventName() != "booking.requested" {
		t.Errorf("pending events = %v, want one booking.requested", events)
	}
}

func TestConfirm(t *testing.T) {
	b := newTestBooking(t)
	now := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	if err := b.Confirm("pi_123", now); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if b.Status != StatusConfirmed || b.PaymentIntentID != "pi_123" {
		t.Fatalf("got status=%q intent=%q", b.Status, b.PaymentIntentID)
	}
	// Webhook replays surface a distinct sentinel so callers can no-op.
	if err := b.Confirm("pi_123", now); !errors.Is(err, ErrAlreadyConfirmed) {
		t.Fatalf("replay: got %v, want ErrAlreadyConfirmed", err)
	}
}

func TestCancelTransitions(t *testing.T) {
	now := time.Now()

	b := newTestBooking(t)
	if err := b.Cancel("guest request", now); err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if err := b.Cancel("again", now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel cancelled: got %v, want ErrInvalidState", err)
	}

	b = newTestBooking(t)
	if err := b.Confirm("pi_1", now); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := b.Cancel("owner request", now); err != nil {
		t.Fatalf("cancel confirmed: %v", err)
	}
}

func TestCompleteIsTerminal(t *testing.T) {
	now := time.Now()
	b := newTestBooking(t)
	if err := b.Complete(now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("complete pending: got %v, want ErrInvalidState", err)
	}
	if err := b.Confirm("pi_1", now); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := b.Complete(now); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := b.Cancel("too late", now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel completed: got %v, want ErrInvalidState", err)
	}
	if err := b.Confirm("pi_2", now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("confirm completed: got %v, want ErrInvalidState", err)
	}
}

func TestExpireOnlyPending(t *testing.T) {
	now := time.Now()
	b := newTestBooking(t)
	if err := b.Expire(now); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if b.Status != StatusCancelled {
		t.Fatalf("status = %q, want cancelled", b.Status)
	}

	b = newTestBooking(t)
	if err := b.Confirm("pi_1", now); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if err := b.Expire(now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expire confirmed: got %v, want ErrInvalidState", err)
	}
}

func TestValidateDateRange(t *testing.T) {
	now := time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)
	past, _ := daterange.New(
		time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
	)
	if err := ValidateDateRange(past, now); !errors.Is(err, ErrCheckInInPast) {
		t.Fatalf("got %v, want ErrCheckInInPast", err)
	}
	// Checking in later today is still allowed.
	today, _ := daterange.New(
		time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
	)
	if err := ValidateDateRange(today, now); err != nil {
		t.Fatalf("same-day check-in: %v", err)
	}
}
