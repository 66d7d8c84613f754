package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	appavailability "staybook/internal/app/availability"
	"staybook/internal/domain/shared/daterange"
)

// AvailabilityHandler serves the public blocked-dates endpoint.
type AvailabilityHandler struct {
	Resolver *appavailability.Resolver
}

var _ AvailabilityHTTP = (*AvailabilityHandler)(nil)

// Blocked handles GET /api/availability?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *AvailabilityHandler) Blocked(c *gin.Context) {
	startRaw := c.Query("start")
	endRaw := c.Query("end")
	if startRaw == "" || endRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end query parameters are required"})
		return
	}
	start, err := daterange.ParseDay(startRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be an ISO date"})
		return
	}
	end, err := daterange.ParseDay(endRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be an ISO date"})
		return
	}
	// A zero-width window is a valid query: nothing falls inside it.
	if start.Equal(end) {
		c.JSON(http.StatusOK, []string{})
		return
	}
	dr, err := daterange.New(start, end)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be after start"})
		return
	}
	dates, err := h.Resolver.BlockedDates(c.Request.Context(), dr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load availability"})
		return
	}
	c.JSON(http.StatusOK, dates)
}
