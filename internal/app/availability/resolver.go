package availability

import (
	"context"
	"sort"

	"staybook/internal/app/uow"
	"staybook/internal/domain/shared/daterange"
)

// Resolver answers "which days in this window are blocked" by unioning
// booking-held and feed-synced rows, regardless of source.
type Resolver struct {
	UoWFactory uow.UoWFactory
}

// BlockedDates returns the sorted, de-duplicated set of ISO dates in
// [start, end) that cannot be booked.
func (r *Resolver) BlockedDates(ctx context.Context, dr daterange.DateRange) ([]string, error) {
	unit, err := r.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = unit.Rollback(ctx) }()

	prop, err := unit.Property().Get(ctx)
	if err != nil {
		return nil, err
	}
	blocked, err := unit.Blocks().InRange(ctx, prop.ID, dr)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(blocked))
	dates := make([]string, 0, len(blocked))
	for _, b := range blocked {
		iso := b.Date.Format(daterange.DayLayout)
		if _, dup := seen[iso]; dup {
			continue
		}
		seen[iso] = struct{}{}
		dates = append(dates, iso)
	}
	sort.Strings(dates)
	return dates, nil
}
