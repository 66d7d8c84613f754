package memory

import (
	"context"
	"sort"
	"time"

	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	domainsettings "staybook/internal/domain/settings"
	"staybook/internal/domain/shared/daterange"
)

type propertyRepository struct {
	store *Store
}

func (r propertyRepository) Get(ctx context.Context) (*domainproperty.Property, error) {
	if r.store.property == nil {
		return nil, domainproperty.ErrPropertyNotFound
	}
	p := *r.store.property
	return &p, nil
}

type settingsRepository struct {
	store *Store
}

func (r settingsRepository) Get(ctx context.Context) (*domainsettings.SiteSettings, error) {
	if r.store.settings == nil {
		return nil, domainsettings.ErrSettingsNotFound
	}
	s := *r.store.settings
	return &s, nil
}

type bookingRepository struct {
	store *Store
}

func (r bookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	b, ok := r.store.bookings[string(id)]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (r bookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	copied := *b
	copied.ClearEvents()
	r.store.bookings[string(b.ID)] = &copied
	return nil
}

func (r bookingRepository) ListAll(ctx context.Context) ([]*domainbooking.Booking, error) {
	out := r.collect(func(*domainbooking.Booking) bool { return true })
	sort.Slice(out, func(i, j int) bool { return out[i].Range.CheckIn.After(out[j].Range.CheckIn) })
	return out, nil
}

func (r bookingRepository) ListByStatus(ctx context.Context, statuses ...domainbooking.Status) ([]*domainbooking.Booking, error) {
	out := r.collect(func(b *domainbooking.Booking) bool {
		for _, s := range statuses {
			if b.Status == s {
				return true
			}
		}
		return false
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Range.CheckIn.Before(out[j].Range.CheckIn) })
	return out, nil
}

func (r bookingRepository) ListStalePending(ctx context.Context, createdBefore time.Time) ([]*domainbooking.Booking, error) {
	return r.collect(func(b *domainbooking.Booking) bool {
		return b.Status == domainbooking.StatusPending && b.CreatedAt.Before(createdBefore)
	}), nil
}

func (r bookingRepository) ListFinishedStays(ctx context.Context, checkOutOnOrBefore time.Time) ([]*domainbooking.Booking, error) {
	return r.collect(func(b *domainbooking.Booking) bool {
		return b.Status == domainbooking.StatusConfirmed && !b.Range.CheckOut.After(checkOutOnOrBefore)
	}), nil
}

func (r bookingRepository) collect(keep func(*domainbooking.Booking) bool) []*domainbooking.Booking {
	var out []*domainbooking.Booking
	for _, b := range r.store.bookings {
		if keep(b) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out
}

type blockedDateRepository struct {
	store *Store
}

func (r blockedDateRepository) InRange(ctx context.Context, propertyID string, dr daterange.DateRange) ([]domainavailability.BlockedDate, error) {
	var out []domainavailability.BlockedDate
	for _, b := range r.store.blocks {
		if b.PropertyID != propertyID {
			continue
		}
		if b.Date.Before(dr.CheckIn) || !b.Date.Before(dr.CheckOut) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r blockedDateRepository) Insert(ctx context.Context, blocks []domainavailability.BlockedDate) error {
	for _, b := range blocks {
		if _, exists := r.store.blocks[keyFor(b)]; exists {
			return domainavailability.ErrDateConflict
		}
	}
	for _, b := range blocks {
		r.store.blocks[keyFor(b)] = b
	}
	return nil
}

func (r blockedDateRepository) Upsert(ctx context.Context, blocks []domainavailability.BlockedDate) error {
	for _, b := range blocks {
		if _, exists := r.store.blocks[keyFor(b)]; exists {
			continue
		}
		r.store.blocks[keyFor(b)] = b
	}
	return nil
}

func (r blockedDateRepository) DeleteManualRange(ctx context.Context, propertyID string, dr daterange.DateRange) error {
	for key, b := range r.store.blocks {
		if b.PropertyID != propertyID || b.Source != domainavailability.SourceManual {
			continue
		}
		if b.Date.Before(dr.CheckIn) || !b.Date.Before(dr.CheckOut) {
			continue
		}
		delete(r.store.blocks, key)
	}
	return nil
}

func (r blockedDateRepository) ReplaceAirbnb(ctx context.Context, propertyID string, blocks []domainavailability.BlockedDate) error {
	for key, b := range r.store.blocks {
		if b.PropertyID == propertyID && b.Source == domainavailability.SourceAirbnb {
			delete(r.store.blocks, key)
		}
	}
	return r.Upsert(ctx, blocks)
}

func keyFor(b domainavailability.BlockedDate) blockKey {
	return blockKey{
		propertyID: b.PropertyID,
		date:       b.Date.Format(daterange.DayLayout),
		source:     string(b.Source),
	}
}
