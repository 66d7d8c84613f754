package ginserver

import (
	"errors"
	"io"
	"net/http"

	gin "github.com/gin-gonic/gin"

	appbooking "staybook/internal/app/booking"
	"staybook/internal/app/policies"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
)

// BookingHandler serves checkout and the payment webhook.
type BookingHandler struct {
	Service  *appbooking.Service
	Verifier policies.WebhookVerifier
}

var _ BookingHTTP = (*BookingHandler)(nil)

type checkoutRequest struct {
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
	Guests   int    `json:"num_guests" binding:"required"`
	Name     string `json:"guest_name" binding:"required"`
	Email    string `json:"guest_email" binding:"required"`
	Phone    string `json:"guest_phone"`
}

// Checkout handles POST /api/checkout.
func (h *BookingHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	checkIn, err := daterange.ParseDay(req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in must be an ISO date"})
		return
	}
	checkOut, err := daterange.ParseDay(req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_out must be an ISO date"})
		return
	}
	result, err := h.Service.Checkout(c.Request.Context(), appbooking.CheckoutInput{
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   req.Guests,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		status := checkoutStatus(err)
		c.JSON(status, gin.H{"error": checkoutMessage(err, status)})
		return
	}
	c.JSON(http.StatusOK, result)
}

func checkoutStatus(err error) int {
	switch {
	case errors.Is(err, appbooking.ErrDatesUnavailable):
		return http.StatusConflict
	case errors.Is(err, daterange.ErrEmptyRange),
		errors.Is(err, domainbooking.ErrCheckInInPast),
		errors.Is(err, domainbooking.ErrGuestNameMissing),
		errors.Is(err, domainbooking.ErrGuestEmailBad),
		errors.Is(err, domainproperty.ErrBelowMinNights),
		errors.Is(err, domainproperty.ErrTooManyGuests),
		errors.Is(err, domainproperty.ErrInvalidGuests):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func checkoutMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "checkout failed"
	}
	return err.Error()
}

// Webhook handles POST /api/webhook. The body must be read raw so the
// signature covers the exact bytes the provider signed.
func (h *BookingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}
	event, err := h.Verifier.VerifyAndParse(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}
	if err := h.Service.ConfirmFromWebhook(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
