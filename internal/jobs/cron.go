package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	appbooking "staybook/internal/app/booking"
	appcalendar "staybook/internal/app/calendar"
)

// Runner owns the background schedules: expiring stale pending
// bookings, pulling the external calendar feed, and marking finished
// stays completed.
type Runner struct {
	Bookings     *appbooking.Service
	Calendar     *appcalendar.SyncService
	SyncSchedule string
	Logger       *slog.Logger
}

// Start registers the schedules and begins running them. The returned
// cron must be stopped on shutdown.
func (r *Runner) Start(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc("*/5 * * * *", func() {
		n, err := r.Bookings.ExpireStalePending(ctx)
		if err != nil {
			r.Logger.Error("pending expiry sweep failed", "error", err)
			return
		}
		if n > 0 {
			r.Logger.Info("expired stale pending bookings", "count", n)
		}
	}); err != nil {
		return nil, err
	}

	if r.Calendar != nil && r.SyncSchedule != "" {
		if _, err := c.AddFunc(r.SyncSchedule, func() {
			if _, err := r.Calendar.Sync(ctx); err != nil {
				r.Logger.Warn("scheduled calendar sync failed", "error", err)
			}
		}); err != nil {
			return nil, err
		}
	}

	if _, err := c.AddFunc("0 0 * * *", func() {
		n, err := r.Bookings.CompleteFinishedStays(ctx)
		if err != nil {
			r.Logger.Error("stay completion sweep failed", "error", err)
			return
		}
		if n > 0 {
			r.Logger.Info("completed finished stays", "count", n)
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
