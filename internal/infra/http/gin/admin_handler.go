package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	appadmin "staybook/internal/app/admin"
	appbooking "staybook/internal/app/booking"
	"staybook/internal/app/dto"
	domainbooking "staybook/internal/domain/booking"
)

// AdminHandler serves the owner dashboard endpoints.
type AdminHandler struct {
	Auth     *appadmin.Service
	Bookings *appbooking.Service
}

var _ AdminHTTP = (*AdminHandler)(nil)

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/admin/auth.
func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}
	token, err := h.Auth.Login(c.Request.Context(), req.Password)
	if err != nil {
		if errors.Is(err, appadmin.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ListBookings handles GET /api/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	bookings, err := h.Bookings.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": dto.MapBookings(bookings)})
}

// CancelBooking handles DELETE /api/admin/bookings/:id.
func (h *AdminHandler) CancelBooking(c *gin.Context) {
	id := c.Param("id")
	if err := h.Bookings.Cancel(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, domainbooking.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, domainbooking.ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{"error": "booking cannot be cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cancel failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}
