package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	"staybook/internal/domain/shared/daterange"
)

var (
	ErrFeedNotConfigured = errors.New("calendar: no feed url configured")
	ErrSyncInProgress    = errors.New("calendar: sync already running")
)

const (
	defaultBlockSummary = "Airbnb Block"
	syncLockTTL         = 2 * time.Minute
)

// SyncService pulls the external feed and fully replaces the
// airbnb-source blocked rows. The feed is fetched and parsed before
// any deletion, so a fetch failure never empties the block calendar.
type SyncService struct {
	UoWFactory uow.UoWFactory
	Feed       policies.FeedPort
	Locks      policies.LockPort
	Logger     *slog.Logger
}

// Sync runs one synchronization pass and returns the number of blocked
// days written. Concurrent invocations for the same property are
// rejected with ErrSyncInProgress.
func (s *SyncService) Sync(ctx context.Context) (int, error) {
	feedURL, propertyID, err := s.loadTargets(ctx)
	if err != nil {
		return 0, err
	}

	if s.Locks != nil {
		key := "ical-sync:" + propertyID
		ok, err := s.Locks.TryLock(ctx, key, syncLockTTL)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrSyncInProgress
		}
		defer func() {
			if err := s.Locks.Unlock(context.WithoutCancel(ctx), key); err != nil && s.Logger != nil {
				s.Logger.Warn("sync lock release failed", "error", err)
			}
		}()
	}

	// Fetch before touching storage: existing blocks survive a dead or
	// malformed feed.
	events, err := s.Feed.Fetch(ctx, feedURL)
	if err != nil {
		return 0, fmt.Errorf("fetch feed: %w", err)
	}
	blocks := expandEvents(propertyID, events)

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
	if err := unit.Blocks().ReplaceAirbnb(ctx, propertyID, blocks); err != nil {
		return 0, err
	}
	if err := unit.Commit(ctx); err != nil {
		return 0, err
	}
	committed = true

	if s.Logger != nil {
		s.Logger.Info("calendar sync completed", "events", len(events), "days", len(blocks))
	}
	return len(blocks), nil
}

func (s *SyncService) loadTargets(ctx context.Context) (feedURL, propertyID string, err error) {
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return "", "", err
	}
	defer func() { _ = unit.Rollback(ctx) }()

	st, err := unit.Settings().Get(ctx)
	if err != nil {
		return "", "", err
	}
	if st.AirbnbICalURL == "" {
		return "", "", ErrFeedNotConfigured
	}
	prop, err := unit.Property().Get(ctx)
	if err != nil {
		return "", "", err
	}
	return st.AirbnbICalURL, prop.ID, nil
}

// expandEvents flattens event spans into one row per day, de-duplicated
// so overlapping feed events cannot produce conflicting upserts.
func expandEvents(propertyID string, events []policies.FeedEvent) []domainavailability.BlockedDate {
	seen := make(map[time.Time]struct{})
	var blocks []domainavailability.BlockedDate
	for _, ev := range events {
		summary := ev.Summary
		if summary == "" {
			summary = defaultBlockSummary
		}
		start := daterange.Day(ev.Start)
		end := daterange.Day(ev.End)
		for cur := start; cur.Before(end); cur = cur.AddDate(0, 0, 1) {
			if _, dup := seen[cur]; dup {
				continue
			}
			seen[cur] = struct{}{}
			blocks = append(blocks, domainavailability.BlockedDate{
				PropertyID: propertyID,
				Date:       cur,
				Source:     domainavailability.SourceAirbnb,
				Summary:    summary,
			})
		}
	}
	return blocks
}
