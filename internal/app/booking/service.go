package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/pricing"
	domainrange "staybook/internal/domain/shared/daterange"
)

var (
	// ErrDatesUnavailable is the conflict surfaced to the guest when the
	// requested range overlaps any blocked day, including the case where
	// a concurrent checkout won the unique-index race.
	ErrDatesUnavailable = errors.New("booking: dates are not available")
)

const manualBlockSummary = "Direct booking"

// Service owns the booking lifecycle: checkout, webhook confirmation,
// admin cancellation and the background expiry/completion sweeps.
type Service struct {
	UoWFactory uow.UoWFactory
	Payments   policies.PaymentsPort
	Mailer     policies.MailerPort
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	PendingTTL time.Duration
	Now        func() time.Time
}

type CheckoutInput struct {
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	Name     string
	Email    string
	Phone    string
}

type CheckoutResult struct {
	BookingID string `json:"booking_id"`
	URL       string `json:"url"`
}

// Checkout validates the request, atomically reserves the dates by
// inserting the pending booking together with its manual blocked rows,
// then creates the hosted payment session. The blocked-date unique
// index turns the loser of a concurrent race into ErrDatesUnavailable.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	dr, err := domainrange.New(in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := domainbooking.ValidateDateRange(dr, now); err != nil {
		return nil, err
	}

	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	prop, err := unit.Property().Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := prop.ValidateStay(dr, in.Guests); err != nil {
		return nil, err
	}

	blocked, err := unit.Blocks().InRange(ctx, prop.ID, dr)
	if err != nil {
		return nil, err
	}
	if len(blocked) > 0 {
		return nil, ErrDatesUnavailable
	}

	quote, err := pricing.Calculate(prop.NightlyRateCents, dr.Nights(), prop.CleaningFeeCents, prop.ServiceFeeFraction)
	if err != nil {
		return nil, err
	}

	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(uuid.NewString()),
		PropertyID: prop.ID,
		GuestName:  in.Name,
		GuestEmail: in.Email,
		GuestPhone: in.Phone,
		Range:      dr,
		Guests:     in.Guests,
		Price:      quote,
		Source:     domainbooking.SourceDirect,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := unit.Blocks().Insert(ctx, domainavailability.ManualBlocks(prop.ID, dr, manualBlockSummary)); err != nil {
		if errors.Is(err, domainavailability.ErrDateConflict) {
			return nil, ErrDatesUnavailable
		}
		return nil, err
	}
	if err := s.drainEvents(ctx, unit, b); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true

	session, err := s.Payments.CreateSession(ctx, prop, b)
	if err != nil {
		// The hold must not outlive a checkout that can never be paid.
		if releaseErr := s.release(ctx, b.ID, "payment session creation failed"); releaseErr != nil {
			s.logger().Error("failed to release booking after session error", "booking_id", b.ID, "error", releaseErr)
		}
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	if err := s.attachSession(ctx, b.ID, session.ID); err != nil {
		s.logger().Error("failed to store session id", "booking_id", b.ID, "error", err)
	}
	return &CheckoutResult{BookingID: string(b.ID), URL: session.URL}, nil
}

// ConfirmFromWebhook applies a verified payment callback. Replays are
// no-ops: a booking found in any state but pending leaves storage and
// email untouched.
func (s *Service) ConfirmFromWebhook(ctx context.Context, evt policies.PaymentEvent) error {
	if evt.Type != policies.EventCheckoutCompleted {
		return nil
	}
	now := s.now()

	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(evt.BookingID))
	if err != nil {
		if errors.Is(err, domainbooking.ErrBookingNotFound) {
			s.logger().Warn("webhook for unknown booking", "booking_id", evt.BookingID)
			return nil
		}
		return err
	}
	if err := b.Confirm(evt.PaymentIntentID, now); err != nil {
		if errors.Is(err, domainbooking.ErrAlreadyConfirmed) {
			return nil
		}
		// Cancelled (expired) or completed: the payment arrived too
		// late, leave state alone and let reconciliation handle it.
		s.logger().Warn("webhook for non-pending booking", "booking_id", evt.BookingID, "status", b.Status)
		return nil
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return err
	}
	// The blocks already exist from checkout; the upsert only matters
	// if an operator released them manually in between.
	if err := unit.Blocks().Upsert(ctx, domainavailability.ManualBlocks(b.PropertyID, b.Range, manualBlockSummary)); err != nil {
		return err
	}
	if err := s.drainEvents(ctx, unit, b); err != nil {
		return err
	}

	prop, err := unit.Property().Get(ctx)
	if err != nil {
		return err
	}
	ownerEmail := ""
	if st, err := unit.Settings().Get(ctx); err == nil {
		ownerEmail = st.NotificationEmail
	}

	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true

	if s.Mailer != nil {
		if err := s.Mailer.SendGuestConfirmation(ctx, prop, b); err != nil {
			return fmt.Errorf("send confirmation email: %w", err)
		}
		if ownerEmail != "" {
			if err := s.Mailer.SendOwnerNotification(ctx, ownerEmail, b); err != nil {
				return fmt.Errorf("send owner notification: %w", err)
			}
		}
	}
	return nil
}

// Cancel transitions a booking to cancelled and releases exactly its
// manual-source blocked dates. Airbnb-source rows are never touched.
func (s *Service) Cancel(ctx context.Context, id string) error {
	return s.release(ctx, domainbooking.BookingID(id), "cancelled by admin")
}

// ExpireStalePending cancels pending bookings older than PendingTTL and
// frees their held dates. Returns the number of bookings expired.
func (s *Service) ExpireStalePending(ctx context.Context) (int, error) {
	now := s.now()
	cutoff := now.Add(-s.pendingTTL())

	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	stale, err := unit.Bookings().ListStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	for _, b := range stale {
		if err := b.Expire(now); err != nil {
			return 0, err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return 0, err
		}
		if err := unit.Blocks().DeleteManualRange(ctx, b.PropertyID, b.Range); err != nil {
			return 0, err
		}
		if err := s.drainEvents(ctx, unit, b); err != nil {
			return 0, err
		}
	}
	if err := unit.Commit(ctx); err != nil {
		return 0, err
	}
	committed = true
	return len(stale), nil
}

// CompleteFinishedStays marks confirmed bookings whose check-out date
// has passed. Bookkeeping only; blocked dates for past days are inert.
func (s *Service) CompleteFinishedStays(ctx context.Context) (int, error) {
	now := s.now()

	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	finished, err := unit.Bookings().ListFinishedStays(ctx, domainrange.Day(now))
	if err != nil {
		return 0, err
	}
	for _, b := range finished {
		if err := b.Complete(now); err != nil {
			return 0, err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return 0, err
		}
	}
	if err := unit.Commit(ctx); err != nil {
		return 0, err
	}
	committed = true
	return len(finished), nil
}

// ListAll returns every booking, most recent check-in first.
func (s *Service) ListAll(ctx context.Context) ([]*domainbooking.Booking, error) {
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = unit.Rollback(ctx) }()
	return unit.Bookings().ListAll(ctx)
}

func (s *Service) release(ctx context.Context, id domainbooking.BookingID, reason string) error {
	now := s.now()
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	b, err := unit.Bookings().ByID(ctx, id)
	if err != nil {
		return err
	}
	if err := b.Cancel(reason, now); err != nil {
		return err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return err
	}
	if err := unit.Blocks().DeleteManualRange(ctx, b.PropertyID, b.Range); err != nil {
		return err
	}
	if err := s.drainEvents(ctx, unit, b); err != nil {
		return err
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Service) attachSession(ctx context.Context, id domainbooking.BookingID, sessionID string) error {
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()
	b, err := unit.Bookings().ByID(ctx, id)
	if err != nil {
		return err
	}
	b.AttachSession(sessionID, s.now())
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return err
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *Service) drainEvents(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking) error {
	pending := b.PendingEvents()
	b.ClearEvents()
	return outbox.RecordDomainEvents(ctx, unit.Outbox(), s.Encoder, pending)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) pendingTTL() time.Duration {
	if s.PendingTTL > 0 {
		return s.PendingTTL
	}
	return 30 * time.Minute
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
