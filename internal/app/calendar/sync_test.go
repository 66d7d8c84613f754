package calendar_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appcalendar "staybook/internal/app/calendar"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainproperty "staybook/internal/domain/property"
	domainsettings "staybook/internal/domain/settings"
	"staybook/internal/infra/storage/memory"
)

type feedStub struct {
	events []policies.FeedEvent
	err    error
	calls  int
}

func (f *feedStub) Fetch(ctx context.Context, url string) ([]policies.FeedEvent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newSyncFixture(t *testing.T, feed *feedStub) (*appcalendar.SyncService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.SeedProperty(&domainproperty.Property{ID: "prop-1", Name: "Casa del Sol"})
	store.SeedSettings(&domainsettings.SiteSettings{AirbnbICalURL: "https://airbnb.example/feed.ics"})
	svc := &appcalendar.SyncService{
		UoWFactory: memory.Factory{Store: store},
		Feed:       feed,
		Locks:      memory.NewLocker(),
	}
	return svc, store
}

func seedAirbnbDays(t *testing.T, store *memory.Store, days ...time.Time) {
	t.Helper()
	blocks := make([]domainavailability.BlockedDate, 0, len(days))
	for _, d := range days {
		blocks = append(blocks, domainavailability.BlockedDate{
			PropertyID: "prop-1",
			Date:       d,
			Source:     domainavailability.SourceAirbnb,
			Summary:    "Airbnb Block",
		})
	}
	unit, err := memory.Factory{Store: store}.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Blocks().Upsert(context.Background(), blocks))
	require.NoError(t, unit.Commit(context.Background()))
}

func TestSyncFullyReplacesFeedBlocks(t *testing.T) {
	// Previous sync left Aug 1-4 blocked; the feed now says Aug 3-5.
	feed := &feedStub{events: []policies.FeedEvent{{
		Start:   day(2026, 8, 3),
		End:     day(2026, 8, 6),
		Summary: "Reserved",
	}}}
	svc, store := newSyncFixture(t, feed)
	seedAirbnbDays(t, store, day(2026, 8, 1), day(2026, 8, 2), day(2026, 8, 3), day(2026, 8, 4))

	n, err := svc.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)

	var got []string
	for _, b := range store.Blocks() {
		require.Equal(t, domainavailability.SourceAirbnb, b.Source)
		got = append(got, b.Date.Format("2006-01-02"))
	}
	require.ElementsMatch(t, []string{"2026-08-03", "2026-08-04", "2026-08-05"}, got)
}

func TestSyncKeepsBlocksWhenFetchFails(t *testing.T) {
	feed := &feedStub{err: errors.New("feed unreachable")}
	svc, store := newSyncFixture(t, feed)
	seedAirbnbDays(t, store, day(2026, 8, 1), day(2026, 8, 2))

	_, err := svc.Sync(context.Background())
	require.Error(t, err)
	require.Len(t, store.Blocks(), 2)
}

func TestSyncPreservesManualBlocks(t *testing.T) {
	feed := &feedStub{events: []policies.FeedEvent{{Start: day(2026, 8, 10), End: day(2026, 8, 12)}}}
	svc, store := newSyncFixture(t, feed)

	unit, err := memory.Factory{Store: store}.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.Blocks().Upsert(context.Background(), []domainavailability.BlockedDate{{
		PropertyID: "prop-1",
		Date:       day(2026, 8, 10),
		Source:     domainavailability.SourceManual,
		Summary:    "Direct booking",
	}}))
	require.NoError(t, unit.Commit(context.Background()))

	_, err = svc.Sync(context.Background())
	require.NoError(t, err)

	manual := 0
	for _, b := range store.Blocks() {
		if b.Source == domainavailability.SourceManual {
			manual++
		}
	}
	require.Equal(t, 1, manual)
}

func TestSyncDefaultsBlankSummaries(t *testing.T) {
	feed := &feedStub{events: []policies.FeedEvent{{Start: day(2026, 8, 1), End: day(2026, 8, 2)}}}
	svc, store := newSyncFixture(t, feed)

	_, err := svc.Sync(context.Background())
	require.NoError(t, err)
	blocks := store.Blocks()
	require.Len(t, blocks, 1)
	require.Equal(t, "Airbnb Block", blocks[0].Summary)
}

func TestSyncWithoutFeedURL(t *testing.T) {
	store := memory.NewStore()
	store.SeedProperty(&domainproperty.Property{ID: "prop-1"})
	store.SeedSettings(&domainsettings.SiteSettings{})
	svc := &appcalendar.SyncService{UoWFactory: memory.Factory{Store: store}, Feed: &feedStub{}}

	_, err := svc.Sync(context.Background())
	require.ErrorIs(t, err, appcalendar.ErrFeedNotConfigured)
}

func TestSyncRejectsConcurrentRun(t *testing.T) {
	feed := &feedStub{}
	svc, _ := newSyncFixture(t, feed)

	locker := memory.NewLocker()
	svc.Locks = locker
	ok, err := locker.TryLock(context.Background(), "ical-sync:prop-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = svc.Sync(context.Background())
	require.ErrorIs(t, err, appcalendar.ErrSyncInProgress)
	require.Zero(t, feed.calls)
}
