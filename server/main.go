package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"srsevents/api/routes"
	"srsevents/internal/analytics"
	"srsevents/internal/auth"
	"srsevents/internal/bookings"
	"srsevents/internal/events"
	"srsevents/internal/notifications"
	"srsevents/internal/payments"
	"srsevents/internal/shared/config"
	"srsevents/internal/shared/database"
	"srsevents/internal/users"
	"srsevents/pkg/cache"
	"srsevents/pkg/logger"
	"srsevents/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using system environment variables")
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.IsProduction())
	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("failed to initialize databases", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db.PostgreSQL); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if err := database.ApplyConstraints(db.PostgreSQL); err != nil {
		logger.Error("applying constraints failed", "error", err)
		os.Exit(1)
	}

	// Rate limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			AuthRequests:    cfg.RateLimit.AuthRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			ScanRequests:    cfg.RateLimit.ScanRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		})
		logger.Info("rate limiter initialized",
			"window", cfg.RateLimit.WindowDuration,
			"default_requests", cfg.RateLimit.DefaultRequests,
		)
	} else {
		logger.Info("rate limiting disabled")
	}

	userRepo := users.NewRepository(db.PostgreSQL)

	// Notification pipeline: Kafka-backed when enabled, inline email otherwise.
	notifier, consumer := setupNotifications(cfg, userRepo)
	if consumer != nil {
		consumerCtx, consumerCancel := context.WithCancel(context.Background())
		defer consumerCancel()
		go func() {
			if err := consumer.Start(consumerCtx); err != nil {
				logger.Error("notification consumer stopped", "error", err)
			}
		}()
		defer func() {
			if err := consumer.Stop(); err != nil {
				logger.Error("error stopping notification consumer", "error", err)
			}
		}()
	}

	// Payment gateway
	gateway := payments.NewRazorpayGateway(
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.BaseURL,
		cfg.Razorpay.Currency,
	)

	// Feature wiring
	cacheService := cache.NewService(db.Redis, "srsevents")

	authService := auth.NewService(userRepo, auth.Config{
		Secret:             cfg.JWT.Secret,
		Issuer:             "srsevents",
		AccessTokenExpiry:  cfg.JWT.JWTExpiresIn,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiresIn,
	})

	eventRepo := events.NewRepository(db.PostgreSQL)
	eventService := events.NewService(eventRepo, cacheService, cfg.Redis.EventCacheTTL)

	bookingRepo := bookings.NewRepository(db.PostgreSQL)
	bookingService := bookings.NewService(bookingRepo, eventService, gateway, notifier, bookings.Options{
		Currency:             cfg.Razorpay.Currency,
		ReleaseRetryAttempts: cfg.Booking.ReleaseRetryAttempts,
		ReleaseRetryDelay:    cfg.Booking.ReleaseRetryDelay,
	})

	controllers := routes.Controllers{
		Auth:      auth.NewController(authService),
		Events:    events.NewController(eventService),
		Bookings:  bookings.NewController(bookingService),
		Analytics: analytics.NewController(analytics.NewRepository(db.PostgreSQL)),
	}

	engine := setupEngine(cfg)
	routes.NewRouter(cfg, db, controllers, rateLimiter).SetupRoutes(engine)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		logger.Info("server running",
			"address", cfg.GetServerAddress(),
			"health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port),
			"version", cfg.APIVersion,
			"rate_limiting", cfg.RateLimit.Enabled,
			"kafka", cfg.Kafka.Enabled,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}

	logger.Info("server exited gracefully")
}

// setupNotifications builds the notification service and, when Kafka is
// enabled, the consumer that drains the topic into the email sender.
func setupNotifications(cfg *config.Config, userRepo users.Repository) (*notifications.Service, notifications.Consumer) {
	sender := emailSender(cfg)

	if !cfg.Kafka.Enabled {
		logger.Info("kafka disabled, notifications delivered inline")
		return notifications.NewService(nil, sender, userRepo), nil
	}

	producerCfg := notifications.DefaultProducerConfig()
	producerCfg.Brokers = cfg.Kafka.Brokers
	producerCfg.Topic = cfg.Kafka.NotificationTopic

	producer, err := notifications.NewKafkaProducer(producerCfg)
	if err != nil {
		logger.Error("kafka producer unavailable, falling back to inline delivery", "error", err)
		return notifications.NewService(nil, sender, userRepo), nil
	}

	consumerCfg := notifications.DefaultConsumerConfig()
	consumerCfg.Brokers = cfg.Kafka.Brokers
	consumerCfg.Topic = cfg.Kafka.NotificationTopic
	consumerCfg.GroupID = cfg.Kafka.ConsumerGroup

	consumer, err := notifications.NewKafkaConsumer(consumerCfg, sender)
	if err != nil {
		logger.Error("kafka consumer unavailable", "error", err)
		consumer = nil
	}

	return notifications.NewService(producer, sender, userRepo), consumer
}

func emailSender(cfg *config.Config) notifications.EmailSender {
	if cfg.Email.SMTPHost == "" {
		logger.Info("smtp not configured, notification emails are logged only")
		return notifications.NewLogSender()
	}

	sender, err := notifications.NewSMTPSender(&notifications.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  "SRS Events",
	})
	if err != nil {
		logger.Error("smtp sender init failed, notification emails are logged only", "error", err)
		return notifications.NewLogSender()
	}
	return sender
}

func setupEngine(cfg *config.Config) *gin.Engine {
	engine := gin.New()
	engine.Use(requestLogger(), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	return engine
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
