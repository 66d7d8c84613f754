package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	appcalendar "staybook/internal/app/calendar"
)

// CalendarHandler serves feed sync and the exported booking calendar.
type CalendarHandler struct {
	Syncer   *appcalendar.SyncService
	Exporter *appcalendar.ExportService
}

var _ CalendarHTTP = (*CalendarHandler)(nil)

// Sync handles GET /api/ical/sync.
func (h *CalendarHandler) Sync(c *gin.Context) {
	count, err := h.Syncer.Sync(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, appcalendar.ErrFeedNotConfigured):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no calendar feed configured"})
		case errors.Is(err, appcalendar.ErrSyncInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": "sync already running"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": count})
}

// Export handles GET /api/ical/export.
func (h *CalendarHandler) Export(c *gin.Context) {
	body, err := h.Exporter.Export(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="bookings.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
