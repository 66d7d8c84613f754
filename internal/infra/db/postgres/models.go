package postgres

import (
	"time"

	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	domainsettings "staybook/internal/domain/settings"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
)

type propertyRow struct {
	ID                 string `gorm:"primaryKey"`
	Name               string
	BasePrice          int64
	CleaningFee        int64
	ServiceFeePct      float64
	MinNights          int
	MaxGuests          int
	Bedrooms           int
	Bathrooms          int
	Amenities          []string `gorm:"serializer:json"`
	Description        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (propertyRow) TableName() string { return "property" }

func (r propertyRow) toDomain() *domainproperty.Property {
	return &domainproperty.Property{
		ID:                 r.ID,
		Name:               r.Name,
		NightlyRateCents:   r.BasePrice,
		CleaningFeeCents:   r.CleaningFee,
		ServiceFeeFraction: r.ServiceFeePct,
		MinNights:          r.MinNights,
		MaxGuests:          r.MaxGuests,
		Bedrooms:           r.Bedrooms,
		Bathrooms:          r.Bathrooms,
		Amenities:          append([]string(nil), r.Amenities...),
		Description:        r.Description,
	}
}

type siteSettingsRow struct {
	ID                string `gorm:"primaryKey"`
	AirbnbIcalURL     string
	NotificationEmail string
	UpdatedAt         time.Time
}

func (siteSettingsRow) TableName() string { return "site_settings" }

func (r siteSettingsRow) toDomain() *domainsettings.SiteSettings {
	return &domainsettings.SiteSettings{
		AirbnbICalURL:     r.AirbnbIcalURL,
		NotificationEmail: r.NotificationEmail,
	}
}

type bookingRow struct {
	ID                    string    `gorm:"primaryKey"`
	PropertyID            string    `gorm:"index"`
	GuestName             string
	GuestEmail            string
	GuestPhone            string
	CheckIn               time.Time `gorm:"type:date;index"`
	CheckOut              time.Time `gorm:"type:date"`
	NumGuests             int
	NumNights             int
	NightlyRate           int64
	CleaningFee           int64
	ServiceFee            int64
	TotalPrice            int64
	Status                string `gorm:"index"`
	Source                string
	StripeSessionID       string
	StripePaymentIntentID string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (bookingRow) TableName() string { return "bookings" }

func newBookingRow(b *domainbooking.Booking) bookingRow {
	return bookingRow{
		ID:                    string(b.ID),
		PropertyID:            b.PropertyID,
		GuestName:             b.GuestName,
		GuestEmail:            b.GuestEmail,
		GuestPhone:            b.GuestPhone,
		CheckIn:               b.Range.CheckIn,
		CheckOut:              b.Range.CheckOut,
		NumGuests:             b.Guests,
		NumNights:             b.Price.Nights,
		NightlyRate:           b.Price.NightlyRateCents,
		CleaningFee:           b.Price.CleaningFeeCents,
		ServiceFee:            b.Price.ServiceFeeCents,
		TotalPrice:            b.Price.TotalCents,
		Status:                string(b.Status),
		Source:                string(b.Source),
		StripeSessionID:       b.StripeSessionID,
		StripePaymentIntentID: b.PaymentIntentID,
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
	}
}

func (r bookingRow) toDomain() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:         domainbooking.BookingID(r.ID),
		PropertyID: r.PropertyID,
		GuestName:  r.GuestName,
		GuestEmail: r.GuestEmail,
		GuestPhone: r.GuestPhone,
		Range: daterange.DateRange{
			CheckIn:  daterange.Day(r.CheckIn),
			CheckOut: daterange.Day(r.CheckOut),
		},
		Guests: r.NumGuests,
		Price: pricing.Quote{
			NightlyRateCents: r.NightlyRate,
			Nights:           r.NumNights,
			SubtotalCents:    r.NightlyRate * int64(r.NumNights),
			CleaningFeeCents: r.CleaningFee,
			ServiceFeeCents:  r.ServiceFee,
			TotalCents:       r.TotalPrice,
		},
		Status:          domainbooking.Status(r.Status),
		Source:          domainbooking.Source(r.Source),
		StripeSessionID: r.StripeSessionID,
		PaymentIntentID: r.StripePaymentIntentID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type blockedDateRow struct {
	ID         uint      `gorm:"primaryKey"`
	PropertyID string    `gorm:"uniqueIndex:idx_blocked_property_date_source"`
	Date       time.Time `gorm:"type:date;uniqueIndex:idx_blocked_property_date_source"`
	Source     string    `gorm:"uniqueIndex:idx_blocked_property_date_source"`
	Summary    string
	CreatedAt  time.Time
}

func (blockedDateRow) TableName() string { return "blocked_dates" }

func newBlockedDateRow(b domainavailability.BlockedDate) blockedDateRow {
	return blockedDateRow{
		PropertyID: b.PropertyID,
		Date:       b.Date,
		Source:     string(b.Source),
		Summary:    b.Summary,
	}
}

func (r blockedDateRow) toDomain() domainavailability.BlockedDate {
	return domainavailability.BlockedDate{
		PropertyID: r.PropertyID,
		Date:       daterange.Day(r.Date),
		Source:     domainavailability.Source(r.Source),
		Summary:    r.Summary,
	}
}

type outboxRow struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	Aggregate   string
	Payload     []byte
	Headers     map[string]string `gorm:"serializer:json"`
	Status      string            `gorm:"index"`
	Attempts    int
	NextRetryAt time.Time `gorm:"index"`
	ClaimedBy   string
	ClaimedAt   time.Time
	LastError   string
	OccurredAt  time.Time
	CreatedAt   time.Time
}

func (outboxRow) TableName() string { return "outbox_events" }
