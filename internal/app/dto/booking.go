package dto

import (
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/shared/daterange"
)

// BookingView is the admin-facing representation of a booking.
type BookingView struct {
	ID               string `json:"id"`
	GuestName        string `json:"guest_name"`
	GuestEmail       string `json:"guest_email"`
	GuestPhone       string `json:"guest_phone,omitempty"`
	CheckIn          string `json:"check_in"`
	CheckOut         string `json:"check_out"`
	Guests           int    `json:"num_guests"`
	Nights           int    `json:"num_nights"`
	NightlyRateCents int64  `json:"nightly_rate"`
	CleaningFeeCents int64  `json:"cleaning_fee"`
	ServiceFeeCents  int64  `json:"service_fee"`
	TotalCents       int64  `json:"total_price"`
	Status           string `json:"status"`
	Source           string `json:"source"`
	StripeSessionID  string `json:"stripe_session_id,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// MapBooking converts a domain booking to its view.
func MapBooking(b *domainbooking.Booking) BookingView {
	return BookingView{
		ID:               string(b.ID),
		GuestName:        b.GuestName,
		GuestEmail:       b.GuestEmail,
		GuestPhone:       b.GuestPhone,
		CheckIn:          b.Range.CheckIn.Format(daterange.DayLayout),
		CheckOut:         b.Range.CheckOut.Format(daterange.DayLayout),
		Guests:           b.Guests,
		Nights:           b.Price.Nights,
		NightlyRateCents: b.Price.NightlyRateCents,
		CleaningFeeCents: b.Price.CleaningFeeCents,
		ServiceFeeCents:  b.Price.ServiceFeeCents,
		TotalCents:       b.Price.TotalCents,
		Status:           string(b.Status),
		Source:           string(b.Source),
		StripeSessionID:  b.StripeSessionID,
		CreatedAt:        b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// MapBookings converts a list preserving order.
func MapBookings(items []*domainbooking.Booking) []BookingView {
	views := make([]BookingView, 0, len(items))
	for _, b := range items {
		views = append(views, MapBooking(b))
	}
	return views
}
