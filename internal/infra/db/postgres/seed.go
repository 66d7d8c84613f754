package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainproperty "staybook/internal/domain/property"
	domainsettings "staybook/internal/domain/settings"
)

// SeedProperty inserts the singleton property row if it does not exist
// yet. Existing rows are left alone so operator edits survive restarts.
func SeedProperty(ctx context.Context, db *gorm.DB, p *domainproperty.Property) error {
	row := propertyRow{
		ID:            p.ID,
		Name:          p.Name,
		BasePrice:     p.NightlyRateCents,
		CleaningFee:   p.CleaningFeeCents,
		ServiceFeePct: p.ServiceFeeFraction,
		MinNights:     p.MinNights,
		MaxGuests:     p.MaxGuests,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		Amenities:     append([]string(nil), p.Amenities...),
		Description:   p.Description,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// SeedSettings inserts the singleton settings row if missing.
func SeedSettings(ctx context.Context, db *gorm.DB, s *domainsettings.SiteSettings) error {
	row := siteSettingsRow{
		ID:                "default",
		AirbnbIcalURL:     s.AirbnbICalURL,
		NotificationEmail: s.NotificationEmail,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}
