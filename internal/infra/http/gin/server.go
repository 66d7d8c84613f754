package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type AvailabilityHTTP interface {
	Blocked(c *gin.Context)
}

type BookingHTTP interface {
	Checkout(c *gin.Context)
	Webhook(c *gin.Context)
}

type CalendarHTTP interface {
	Sync(c *gin.Context)
	Export(c *gin.Context)
}

type AdminHTTP interface {
	Login(c *gin.Context)
	ListBookings(c *gin.Context)
	CancelBooking(c *gin.Context)
}

type Handlers struct {
	Availability AvailabilityHTTP
	Booking      BookingHTTP
	Calendar     CalendarHTTP
	Admin        AdminHTTP
	RequireAdmin gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Stripe-Signature"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api")
	if h.Availability != nil {
		api.GET("/availability", h.Availability.Blocked)
	}
	if h.Booking != nil {
		api.POST("/checkout", h.Booking.Checkout)
		api.POST("/webhook", h.Booking.Webhook)
	}
	if h.Calendar != nil {
		api.GET("/ical/sync", h.Calendar.Sync)
		api.GET("/ical/export", h.Calendar.Export)
	}
	if h.Admin != nil {
		api.POST("/admin/auth", h.Admin.Login)
		adminGroup := api.Group("/admin")
		if h.RequireAdmin != nil {
			adminGroup.Use(h.RequireAdmin)
		}
		adminGroup.GET("/bookings", h.Admin.ListBookings)
		adminGroup.DELETE("/bookings/:id", h.Admin.CancelBooking)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
