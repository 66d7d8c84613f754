package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appbooking "staybook/internal/app/booking"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	domainsettings "staybook/internal/domain/settings"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/infra/storage/memory"
)

var fixedNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

type paymentsStub struct {
	created int
	fail    bool
}

func (p *paymentsStub) CreateSession(ctx context.Context, prop *domainproperty.Property, b *domainbooking.Booking) (policies.CheckoutSession, error) {
	p.created++
	if p.fail {
		return policies.CheckoutSession{}, errors.New("stripe is down")
	}
	return policies.CheckoutSession{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
}

type mailerStub struct {
	guest int
	owner int
}

func (m *mailerStub) SendGuestConfirmation(ctx context.Context, prop *domainproperty.Property, b *domainbooking.Booking) error {
	m.guest++
	return nil
}

func (m *mailerStub) SendOwnerNotification(ctx context.Context, to string, b *domainbooking.Booking) error {
	m.owner++
	return nil
}

func newFixture(t *testing.T) (*appbooking.Service, *memory.Store, *paymentsStub, *mailerStub) {
	t.Helper()
	store := memory.NewStore()
	store.SeedProperty(&domainproperty.Property{
		ID:                 "prop-1",
		Name:               "Casa del Sol",
		NightlyRateCents:   20000,
		CleaningFeeCents:   10000,
		ServiceFeeFraction: 0.1,
		MinNights:          2,
		MaxGuests:          6,
	})
	store.SeedSettings(&domainsettings.SiteSettings{
		NotificationEmail: "owner@example.com",
	})
	payments := &paymentsStub{}
	mailer := &mailerStub{}
	svc := &appbooking.Service{
		UoWFactory: memory.Factory{Store: store},
		Payments:   payments,
		Mailer:     mailer,
		Now:        func() time.Time { return fixedNow },
	}
	return svc, store, payments, mailer
}

func checkoutInput() appbooking.CheckoutInput {
	return appbooking.CheckoutInput{
		CheckIn:  time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC),
		Guests:   2,
		Name:     "Ada Lovelace",
		Email:    "ada@example.com",
	}
}

func TestCheckoutCreatesPendingBookingAndHold(t *testing.T) {
	svc, store, payments, _ := newFixture(t)

	result, err := svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/cs_test_1", result.URL)
	require.Equal(t, 1, payments.created)

	b := store.Booking(domainbooking.BookingID(result.BookingID))
	require.NotNil(t, b)
	require.Equal(t, domainbooking.StatusPending, b.Status)
	require.Equal(t, "cs_test_1", b.StripeSessionID)
	require.Equal(t, int64(76000), b.Price.TotalCents)

	blocks := store.Blocks()
	require.Len(t, blocks, 3)
	for _, blk := range blocks {
		require.Equal(t, domainavailability.SourceManual, blk.Source)
	}

	records := store.OutboxRecords()
	require.Len(t, records, 1)
	require.Equal(t, "booking.requested", records[0].Name)
}

func TestCheckoutRejectsOverlap(t *testing.T) {
	svc, _, payments, _ := newFixture(t)

	_, err := svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)

	// Second guest wants a range overlapping one held day.
	in := checkoutInput()
	in.CheckIn = time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	in.CheckOut = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	in.Name = "Grace Hopper"
	in.Email = "grace@example.com"
	_, err = svc.Checkout(context.Background(), in)
	require.ErrorIs(t, err, appbooking.ErrDatesUnavailable)
	require.Equal(t, 1, payments.created)
}

func TestCheckoutValidation(t *testing.T) {
	svc, _, _, _ := newFixture(t)

	in := checkoutInput()
	in.CheckIn = time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	in.CheckOut = time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	_, err := svc.Checkout(context.Background(), in)
	require.ErrorIs(t, err, domainbooking.ErrCheckInInPast)

	in = checkoutInput()
	in.CheckOut = in.CheckIn.AddDate(0, 0, 1)
	_, err = svc.Checkout(context.Background(), in)
	require.ErrorIs(t, err, domainproperty.ErrBelowMinNights)

	in = checkoutInput()
	in.Guests = 9
	_, err = svc.Checkout(context.Background(), in)
	require.ErrorIs(t, err, domainproperty.ErrTooManyGuests)
}

func TestCheckoutReleasesHoldWhenSessionFails(t *testing.T) {
	svc, store, payments, _ := newFixture(t)
	payments.fail = true

	_, err := svc.Checkout(context.Background(), checkoutInput())
	require.Error(t, err)

	// The dates must be bookable again immediately.
	require.Empty(t, store.Blocks())
	payments.fail = false
	_, err = svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)
}

func TestConfirmFromWebhook(t *testing.T) {
	svc, store, _, mailer := newFixture(t)

	result, err := svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)

	evt := policies.PaymentEvent{
		Type:            policies.EventCheckoutCompleted,
		SessionID:       "cs_test_1",
		BookingID:       result.BookingID,
		PaymentIntentID: "pi_test_1",
	}
	require.NoError(t, svc.ConfirmFromWebhook(context.Background(), evt))

	b := store.Booking(domainbooking.BookingID(result.BookingID))
	require.Equal(t, domainbooking.StatusConfirmed, b.Status)
	require.Equal(t, "pi_test_1", b.PaymentIntentID)
	require.Equal(t, 1, mailer.guest)
	require.Equal(t, 1, mailer.owner)

	// A replayed delivery changes nothing and sends no second email.
	require.NoError(t, svc.ConfirmFromWebhook(context.Background(), evt))
	require.Equal(t, 1, mailer.guest)
	require.Equal(t, 1, mailer.owner)
	require.Len(t, store.Blocks(), 3)
}

func TestConfirmIgnoresOtherEventTypes(t *testing.T) {
	svc, store, _, mailer := newFixture(t)

	result, err := svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)

	evt := policies.PaymentEvent{Type: "payment_intent.created", BookingID: result.BookingID}
	require.NoError(t, svc.ConfirmFromWebhook(context.Background(), evt))
	require.Equal(t, domainbooking.StatusPending, store.Booking(domainbooking.BookingID(result.BookingID)).Status)
	require.Zero(t, mailer.guest)
}

func TestConfirmUnknownBookingIsNoOp(t *testing.T) {
	svc, _, _, mailer := newFixture(t)
	evt := policies.PaymentEvent{Type: policies.EventCheckoutCompleted, BookingID: "missing"}
	require.NoError(t, svc.ConfirmFromWebhook(context.Background(), evt))
	require.Zero(t, mailer.guest)
}

func TestCancelReleasesOnlyManualBlocks(t *testing.T) {
	svc, store, _, _ := newFixture(t)

	result, err := svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)

	// A feed-synced block inside the same range must survive the cancel.
	seedAirbnbBlock(t, store, time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC))

	require.NoError(t, svc.Cancel(context.Background(), result.BookingID))

	b := store.Booking(domainbooking.BookingID(result.BookingID))
	require.Equal(t, domainbooking.StatusCancelled, b.Status)

	blocks := store.Blocks()
	require.Len(t, blocks, 1)
	require.Equal(t, domainavailability.SourceAirbnb, blocks[0].Source)
}

func TestCancelUnknownBooking(t *testing.T) {
	svc, _, _, _ := newFixture(t)
	err := svc.Cancel(context.Background(), "missing")
	require.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestExpireStalePending(t *testing.T) {
	svc, store, _, _ := newFixture(t)

	result, err := svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)

	// Not stale yet.
	svc.Now = func() time.Time { return fixedNow.Add(10 * time.Minute) }
	n, err := svc.ExpireStalePending(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)

	// Past the TTL the hold is dropped and the dates reopen.
	svc.Now = func() time.Time { return fixedNow.Add(45 * time.Minute) }
	n, err = svc.ExpireStalePending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, domainbooking.StatusCancelled, store.Booking(domainbooking.BookingID(result.BookingID)).Status)
	require.Empty(t, store.Blocks())
}

func TestCompleteFinishedStays(t *testing.T) {
	svc, store, _, _ := newFixture(t)

	result, err := svc.Checkout(context.Background(), checkoutInput())
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmFromWebhook(context.Background(), policies.PaymentEvent{
		Type:      policies.EventCheckoutCompleted,
		BookingID: result.BookingID,
	}))

	// Before check-out nothing changes.
	n, err := svc.CompleteFinishedStays(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)

	svc.Now = func() time.Time { return time.Date(2026, 9, 14, 6, 0, 0, 0, time.UTC) }
	n, err = svc.CompleteFinishedStays(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, domainbooking.StatusCompleted, store.Booking(domainbooking.BookingID(result.BookingID)).Status)
}

func seedAirbnbBlock(t *testing.T, store *memory.Store, day time.Time) {
	t.Helper()
	unit, err := memory.Factory{Store: store}.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	err = unit.Blocks().Upsert(context.Background(), []domainavailability.BlockedDate{{
		PropertyID: "prop-1",
		Date:       daterange.Day(day),
		Source:     domainavailability.SourceAirbnb,
		Summary:    "Airbnb Block",
	}})
	require.NoError(t, err)
	require.NoError(t, unit.Commit(context.Background()))
}
