package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/smtp"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	appadmin "staybook/internal/app/admin"
	appavailability "staybook/internal/app/availability"
	appbooking "staybook/internal/app/booking"
	appcalendar "staybook/internal/app/calendar"
	"staybook/internal/app/outbox"
	"staybook/internal/app/policies"
	domainproperty "staybook/internal/domain/property"
	domainsettings "staybook/internal/domain/settings"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	"staybook/internal/infra/db/postgres"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/ical"
	"staybook/internal/infra/mail"
	"staybook/internal/infra/obs"
	infraoutbox "staybook/internal/infra/outbox"
	stripegw "staybook/internal/infra/payments/stripe"
	"staybook/internal/infra/redisstore"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("dotenv load failed", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := seedFixtures(ctx, db, logger); err != nil {
		logger.Warn("fixture seeding failed", "error", err)
	}

	var locker policies.LockPort = memory.NewLocker()
	var sessions appadmin.SessionStore = memory.NewSessions()
	if cfg.RedisAddr != "" {
		redisClient, err := redisstore.NewClient(ctx, cfg)
		if err != nil {
			logger.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		locker = &redisstore.Locker{Client: redisClient}
		sessions = &redisstore.Sessions{Client: redisClient}
	}

	uowFactory := postgres.Factory{DB: db, Properties: &postgres.PropertyCache{}}
	gateway := stripegw.NewGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.BaseURL)

	var mailer policies.MailerPort
	if cfg.SMTPHost != "" {
		mailer = &mail.Sender{
			Addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
			Auth: smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost),
			From: cfg.MailFrom,
		}
	} else {
		logger.Warn("SMTP not configured, confirmation email disabled")
	}

	bookingSvc := &appbooking.Service{
		UoWFactory: uowFactory,
		Payments:   gateway,
		Mailer:     mailer,
		Encoder:    outbox.JSONEventEncoder{},
		Logger:     logger,
		PendingTTL: cfg.PendingTTL,
	}
	resolver := &appavailability.Resolver{UoWFactory: uowFactory}
	syncSvc := &appcalendar.SyncService{
		UoWFactory: uowFactory,
		Feed:       &ical.HTTPFeed{},
		Locks:      locker,
		Logger:     logger,
	}
	exportSvc := &appcalendar.ExportService{UoWFactory: uowFactory, Writer: ical.Writer{}}
	adminSvc := &appadmin.Service{
		PasswordHash: cfg.AdminPasswordHash,
		Passwords:    security.BcryptHasher{},
		Tokens:       security.RandomTokenGenerator{},
		Sessions:     sessions,
		SessionTTL:   cfg.AdminSessionTTL,
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		worker := &infraoutbox.Worker{
			Store:       &postgres.OutboxStore{DB: db},
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	} else {
		logger.Warn("kafka not configured, outbox events stay queued")
	}

	runner := &jobs.Runner{
		Bookings:     bookingSvc,
		Calendar:     syncSvc,
		SyncSchedule: cfg.SyncSchedule,
		Logger:       logger,
	}
	schedules, err := runner.Start(ctx)
	if err != nil {
		logger.Error("cron setup failed", "error", err)
		os.Exit(1)
	}
	defer schedules.Stop()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
	}, ginserver.Handlers{
		Availability: &ginserver.AvailabilityHandler{Resolver: resolver},
		Booking:      &ginserver.BookingHandler{Service: bookingSvc, Verifier: gateway},
		Calendar:     &ginserver.CalendarHandler{Syncer: syncSvc, Exporter: exportSvc},
		Admin:        &ginserver.AdminHandler{Auth: adminSvc, Bookings: bookingSvc},
		RequireAdmin: ginserver.RequireAdmin(adminSvc),
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type propertyFixture struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	NightlyRateCents   int64    `json:"nightly_rate_cents"`
	CleaningFeeCents   int64    `json:"cleaning_fee_cents"`
	ServiceFeeFraction float64  `json:"service_fee_fraction"`
	MinNights          int      `json:"min_nights"`
	MaxGuests          int      `json:"max_guests"`
	Bedrooms           int      `json:"bedrooms"`
	Bathrooms          int      `json:"bathrooms"`
	Amenities          []string `json:"amenities"`
	Description        string   `json:"description"`
	AirbnbICalURL      string   `json:"airbnb_ical_url"`
	NotificationEmail  string   `json:"notification_email"`
}

// seedFixtures installs the singleton property and settings rows on
// first boot. Existing rows win over the fixture file.
func seedFixtures(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	path := getenv("PROPERTY_FIXTURE", "data/property.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("property fixture not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixture: %w", err)
	}
	var fx propertyFixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("decode fixture: %w", err)
	}
	if fx.ID == "" {
		fx.ID = "default"
	}
	if err := postgres.SeedProperty(ctx, db, &domainproperty.Property{
		ID:                 fx.ID,
		Name:               fx.Name,
		NightlyRateCents:   fx.NightlyRateCents,
		CleaningFeeCents:   fx.CleaningFeeCents,
		ServiceFeeFraction: fx.ServiceFeeFraction,
		MinNights:          fx.MinNights,
		MaxGuests:          fx.MaxGuests,
		Bedrooms:           fx.Bedrooms,
		Bathrooms:          fx.Bathrooms,
		Amenities:          fx.Amenities,
		Description:        fx.Description,
	}); err != nil {
		return err
	}
	if err := postgres.SeedSettings(ctx, db, &domainsettings.SiteSettings{
		AirbnbICalURL:     fx.AirbnbICalURL,
		NotificationEmail: fx.NotificationEmail,
	}); err != nil {
		return err
	}
	logger.Info("property fixture imported", "property_id", fx.ID)
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
