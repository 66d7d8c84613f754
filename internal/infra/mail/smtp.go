package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"staybook/internal/app/policies"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
)

// Sender delivers booking email over SMTP.
type Sender struct {
	Addr string
	Auth smtp.Auth
	From string
}

var _ policies.MailerPort = (*Sender)(nil)

func (s *Sender) SendGuestConfirmation(ctx context.Context, prop *domainproperty.Property, b *domainbooking.Booking) error {
	e := email.NewEmail()
	e.From = s.From
	e.To = []string{b.GuestEmail}
	e.Subject = "Your booking is confirmed"
	e.HTML = []byte(fmt.Sprintf(`<h2>Booking confirmed</h2>
<p>Hi %s, your stay at %s is confirmed.</p>
<ul>
<li>Check-in: %s</li>
<li>Check-out: %s</li>
<li>Guests: %d</li>
<li>Total paid: $%.2f</li>
</ul>
<p>We look forward to hosting you.</p>`,
		b.GuestName, prop.Name,
		b.Range.CheckIn.Format(daterange.DayLayout),
		b.Range.CheckOut.Format(daterange.DayLayout),
		b.Guests,
		float64(b.Price.TotalCents)/100))
	if err := e.Send(s.Addr, s.Auth); err != nil {
		return fmt.Errorf("mail: guest confirmation: %w", err)
	}
	return nil
}

func (s *Sender) SendOwnerNotification(ctx context.Context, to string, b *domainbooking.Booking) error {
	if to == "" {
		return nil
	}
	e := email.NewEmail()
	e.From = s.From
	e.To = []string{to}
	e.Subject = fmt.Sprintf("New booking: %s", b.GuestName)
	e.HTML = []byte(fmt.Sprintf(`<h2>New booking received</h2>
<ul>
<li>Guest: %s (%s)</li>
<li>Dates: %s to %s</li>
<li>Guests: %d</li>
<li>Total: $%.2f</li>
</ul>`,
		b.GuestName, b.GuestEmail,
		b.Range.CheckIn.Format(daterange.DayLayout),
		b.Range.CheckOut.Format(daterange.DayLayout),
		b.Guests,
		float64(b.Price.TotalCents)/100))
	if err := e.Send(s.Addr, s.Auth); err != nil {
		return fmt.Errorf("mail: owner notification: %w", err)
	}
	return nil
}
