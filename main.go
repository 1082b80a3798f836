package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/hanapp-ph/hanapp-backend/database"
	"github.com/hanapp-ph/hanapp-backend/internal/cache"
	"github.com/hanapp-ph/hanapp-backend/internal/config"
	"github.com/hanapp-ph/hanapp-backend/internal/events"
	"github.com/hanapp-ph/hanapp-backend/internal/handlers"
	"github.com/hanapp-ph/hanapp-backend/internal/jobs"
	"github.com/hanapp-ph/hanapp-backend/internal/metrics"
	"github.com/hanapp-ph/hanapp-backend/internal/middleware"
	"github.com/hanapp-ph/hanapp-backend/internal/routes"
	"github.com/hanapp-ph/hanapp-backend/internal/services"
	"github.com/hanapp-ph/hanapp-backend/internal/storage"
	"github.com/hanapp-ph/hanapp-backend/internal/utils"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "", "optional config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := utils.NewLogger(cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Initialize storage
	var store storage.Store
	if cfg.Storage.Memory {
		zl.Warn("using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		db, err := database.Connect(cfg.Database, zl)
		if err != nil {
			zl.Fatal("database connection failed", zap.Error(err))
		}
		zl.Info("running database migrations")
		if err := database.Migrate(db); err != nil {
			zl.Fatal("failed to migrate database", zap.Error(err))
		}
		store = storage.NewDatabaseStore(db)
	}

	// Rate limit counters and revoked tokens
	var kv cache.Cache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zl.Fatal("redis connection failed", zap.Error(err))
		}
		kv = rc
		zl.Info("using redis cache", zap.String("addr", cfg.Redis.Addr))
	} else {
		zl.Warn("redis not configured, using process-local cache")
		kv = cache.NewMemoryCache()
	}
	defer func() { _ = kv.Close() }()

	var publisher events.Publisher = events.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, zl.Named("events"))
		zl.Info("publishing domain events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	var sms services.SMSSender
	if cfg.TwilioConfigured() {
		tw, err := services.NewTwilioSMS(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.From, zl.Named("sms"))
		if err != nil {
			zl.Fatal("failed to initialize Twilio", zap.Error(err))
		}
		sms = tw
	} else {
		if !cfg.IsDevelopment() {
			zl.Fatal("twilio credentials are required outside development")
		}
		zl.Warn("twilio not configured, OTP messages will only be logged")
		sms = services.NewLogSMS(zl.Named("sms"))
	}

	// Initialize all services
	otpService := services.NewOTPService(store, kv, sms, services.OTPOptions{
		TTL:          time.Duration(cfg.OTP.TTLMinutes) * time.Minute,
		MaxAttempts:  cfg.OTP.MaxAttempts,
		SendsPerHour: cfg.OTP.SendsPerHour,
	}, zl)
	authService := services.NewAuthService(store, otpService, kv, services.AuthOptions{
		Secret: cfg.JWT.Secret,
		TTL:    time.Duration(cfg.JWT.TTLMinutes) * time.Minute,
		Issuer: cfg.JWT.Issuer,
	}, zl)

	cleanupJob := jobs.NewCleanupJob(otpService, time.Duration(cfg.OTP.RetentionHours)*time.Hour, cfg.OTP.CleanupSchedule, zl)
	if err := cleanupJob.Start(); err != nil {
		zl.Fatal("failed to start cleanup job", zap.Error(err))
	}

	ipLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.PerMinute, zl.Named("ratelimit"))

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName:      "HanApp-PH Backend v" + version,
		ErrorHandler: handlers.ErrorHandler(zl),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))
	app.Use(metrics.Middleware())
	app.Use(ipLimiter.Handler())

	routes.SetupRoutes(app, routes.Handlers{
		Auth:         handlers.NewAuthHandler(otpService, authService),
		Messages:     handlers.NewMessageHandler(services.NewMessageService(store, publisher, zl)),
		Requests:     handlers.NewServiceRequestHandler(services.NewServiceRequestService(store, zl)),
		Applications: handlers.NewJobApplicationHandler(services.NewJobApplicationService(store, publisher, zl)),
		Listings:     handlers.NewListingHandler(services.NewListingService(store, zl)),
		Catalog:      handlers.NewCatalogHandler(services.NewCatalogService(store, zl)),
		Bookings:     handlers.NewBookingHandler(services.NewBookingService(store, publisher, zl)),
		Reviews:      handlers.NewReviewHandler(services.NewReviewService(store, publisher, zl)),
		Health: handlers.NewHealthHandler(version, map[string]handlers.Pinger{
			"database": store,
			"cache":    kv,
		}),
		Webhook:     handlers.NewWebhookHandler(zl),
		RequireAuth: middleware.RequireAuth(authService),
		TwilioGuard: middleware.ValidateTwilioSignature(cfg.Twilio.AuthToken, cfg.Twilio.ValidateWebhooks, zl.Named("webhook")),
	})

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		zl.Info("gracefully shutting down")
		cleanupJob.Stop()
		ipLimiter.Stop()
		if err := publisher.Close(); err != nil {
			zl.Warn("failed to close event publisher", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := app.ShutdownWithContext(ctx); err != nil {
			zl.Error("server shutdown failed", zap.Error(err))
		}
	}()

	zl.Info("HanApp-PH backend starting",
		zap.Int("port", cfg.App.Port),
		zap.String("env", cfg.App.Env),
		zap.Bool("memory_store", cfg.Storage.Memory),
		zap.Bool("twilio", cfg.TwilioConfigured()),
		zap.Bool("kafka", len(cfg.Kafka.Brokers) > 0))

	if err := app.Listen(fmt.Sprintf(":%d", cfg.App.Port)); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
