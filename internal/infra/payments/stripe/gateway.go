package stripe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"staybook/internal/app/policies"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
)

// Gateway creates hosted checkout sessions and verifies webhook
// deliveries against the endpoint secret.
type Gateway struct {
	api           *client.API
	webhookSecret string
	baseURL       string
}

func NewGateway(secretKey, webhookSecret, baseURL string) *Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Gateway{api: api, webhookSecret: webhookSecret, baseURL: baseURL}
}

var _ policies.PaymentsPort = (*Gateway)(nil)
var _ policies.WebhookVerifier = (*Gateway)(nil)

func (g *Gateway) CreateSession(ctx context.Context, prop *domainproperty.Property, b *domainbooking.Booking) (policies.CheckoutSession, error) {
	description := fmt.Sprintf("%s to %s · %d guests",
		b.Range.CheckIn.Format(daterange.DayLayout),
		b.Range.CheckOut.Format(daterange.DayLayout),
		b.Guests)
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(prop.Name),
					Description: stripe.String(description),
				},
				UnitAmount: stripe.Int64(b.Price.TotalCents),
			},
			Quantity: stripe.Int64(1),
		}},
		CustomerEmail: stripe.String(b.GuestEmail),
		SuccessURL:    stripe.String(g.baseURL + "/booking/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(g.baseURL + "/booking"),
	}
	params.Context = ctx
	params.AddMetadata("booking_id", string(b.ID))
	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return policies.CheckoutSession{}, fmt.Errorf("stripe: create session: %w", err)
	}
	return policies.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (g *Gateway) VerifyAndParse(payload []byte, signatureHeader string) (policies.PaymentEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return policies.PaymentEvent{}, policies.ErrInvalidSignature
	}
	out := policies.PaymentEvent{Type: string(event.Type)}
	if event.Type != stripe.EventType(policies.EventCheckoutCompleted) {
		return out, nil
	}
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return policies.PaymentEvent{}, fmt.Errorf("stripe: decode session: %w", err)
	}
	out.SessionID = sess.ID
	out.BookingID = sess.Metadata["booking_id"]
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out, nil
}
