package postgres

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	domainsettings "staybook/internal/domain/settings"
	"staybook/internal/domain/shared/daterange"
)

// PropertyCache serves the singleton property row with a short TTL so
// every handler does not hit the database for an effectively immutable
// record. Invalidate clears it after out-of-band edits.
type PropertyCache struct {
	TTL time.Duration

	mu        sync.RWMutex
	cached    *domainproperty.Property
	fetchedAt time.Time
}

func (c *PropertyCache) get() (*domainproperty.Property, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cached == nil || time.Since(c.fetchedAt) > c.ttl() {
		return nil, false
	}
	return c.cached, true
}

func (c *PropertyCache) set(p *domainproperty.Property) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = p
	c.fetchedAt = time.Now()
}

// Invalidate drops the cached row.
func (c *PropertyCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
}

func (c *PropertyCache) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return time.Minute
}

type propertyRepository struct {
	db    *gorm.DB
	cache *PropertyCache
}

func (r propertyRepository) Get(ctx context.Context) (*domainproperty.Property, error) {
	if r.cache != nil {
		if p, ok := r.cache.get(); ok {
			return p, nil
		}
	}
	var row propertyRow
	if err := r.db.WithContext(ctx).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainproperty.ErrPropertyNotFound
		}
		return nil, err
	}
	p := row.toDomain()
	if r.cache != nil {
		r.cache.set(p)
	}
	return p, nil
}

type settingsRepository struct {
	db *gorm.DB
}

func (r settingsRepository) Get(ctx context.Context) (*domainsettings.SiteSettings, error) {
	var row siteSettingsRow
	if err := r.db.WithContext(ctx).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainsettings.ErrSettingsNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

type bookingRepository struct {
	db *gorm.DB
}

func (r bookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var row bookingRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r bookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	row := newBookingRow(b)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
}

func (r bookingRepository) ListAll(ctx context.Context) ([]*domainbooking.Booking, error) {
	var rows []bookingRow
	if err := r.db.WithContext(ctx).Order("check_in DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapBookingRows(rows), nil
}

func (r bookingRepository) ListByStatus(ctx context.Context, statuses ...domainbooking.Status) ([]*domainbooking.Booking, error) {
	raw := make([]string, 0, len(statuses))
	for _, s := range statuses {
		raw = append(raw, string(s))
	}
	var rows []bookingRow
	if err := r.db.WithContext(ctx).Where("status IN ?", raw).Order("check_in").Find(&rows).Error; err != nil {
		return nil, err
	}
	return mapBookingRows(rows), nil
}

func (r bookingRepository) ListStalePending(ctx context.Context, createdBefore time.Time) ([]*domainbooking.Booking, error) {
	var rows []bookingRow
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(domainbooking.StatusPending), createdBefore).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapBookingRows(rows), nil
}

func (r bookingRepository) ListFinishedStays(ctx context.Context, checkOutOnOrBefore time.Time) ([]*domainbooking.Booking, error) {
	var rows []bookingRow
	err := r.db.WithContext(ctx).
		Where("status = ? AND check_out <= ?", string(domainbooking.StatusConfirmed), checkOutOnOrBefore).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapBookingRows(rows), nil
}

func mapBookingRows(rows []bookingRow) []*domainbooking.Booking {
	out := make([]*domainbooking.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

type blockedDateRepository struct {
	db *gorm.DB
}

func (r blockedDateRepository) InRange(ctx context.Context, propertyID string, dr daterange.DateRange) ([]domainavailability.BlockedDate, error) {
	var rows []blockedDateRow
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND date >= ? AND date < ?", propertyID, dr.CheckIn, dr.CheckOut).
		Order("date").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domainavailability.BlockedDate, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Insert is the race-closing write: the unique index on
// (property_id, date, source) rejects a day already held by another
// pending or confirmed booking.
func (r blockedDateRepository) Insert(ctx context.Context, blocks []domainavailability.BlockedDate) error {
	if len(blocks) == 0 {
		return nil
	}
	rows := make([]blockedDateRow, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, newBlockedDateRow(b))
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainavailability.ErrDateConflict
		}
		return err
	}
	return nil
}

func (r blockedDateRepository) Upsert(ctx context.Context, blocks []domainavailability.BlockedDate) error {
	if len(blocks) == 0 {
		return nil
	}
	rows := make([]blockedDateRow, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, newBlockedDateRow(b))
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property_id"}, {Name: "date"}, {Name: "source"}},
		DoNothing: true,
	}).Create(&rows).Error
}

func (r blockedDateRepository) DeleteManualRange(ctx context.Context, propertyID string, dr daterange.DateRange) error {
	return r.db.WithContext(ctx).
		Where("property_id = ? AND source = ? AND date >= ? AND date < ?",
			propertyID, string(domainavailability.SourceManual), dr.CheckIn, dr.CheckOut).
		Delete(&blockedDateRow{}).Error
}

func (r blockedDateRepository) ReplaceAirbnb(ctx context.Context, propertyID string, blocks []domainavailability.BlockedDate) error {
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND source = ?", propertyID, string(domainavailability.SourceAirbnb)).
		Delete(&blockedDateRow{}).Error
	if err != nil {
		return err
	}
	return r.Upsert(ctx, blocks)
}
