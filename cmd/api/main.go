package main

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"detailbook/internal/config"
	"detailbook/internal/database"
	"detailbook/internal/metrics"
	"detailbook/internal/middleware"
	"detailbook/internal/modules/auth"
	"detailbook/internal/modules/availability"
	"detailbook/internal/modules/booking"
	"detailbook/internal/modules/catalog"
	"detailbook/internal/modules/events"
	"detailbook/internal/modules/timeslot"
	jwtsvc "detailbook/internal/pkg/jwt"
	"detailbook/internal/repository"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	metrics.Register()

	userRepo := repository.NewUserRepository(db)
	slotRepo := repository.NewTimeSlotRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := events.NewHub()

	authService := auth.NewService(userRepo, cfg.Roles, j)
	authHandler := auth.NewHandler(authService)

	slotService := timeslot.NewService(slotRepo)
	slotHandler := timeslot.NewHandler(slotService)

	availService := availability.NewService(slotRepo, cfg.BufferMinutes, cfg.BookingWindowDays)
	availHandler := availability.NewHandler(availService)

	catalogService := catalog.NewService(serviceRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	bookingService := booking.NewService(
		bookingRepo,
		slotRepo,
		serviceRepo,
		historyRepo,
		hub,
		cfg.PaymentDeadline,
	)
	bookingHandler := booking.NewHandler(bookingService)

	eventsHandler := events.NewHandler(hub)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(&logger))
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		availHandler.RegisterRoutes(v1)
		catalogHandler.RegisterRoutes(v1)
		bookingHandler.RegisterWebhookRoutes(v1)

		// authenticated customers and admins
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			bookingHandler.RegisterRoutes(protected)
		}

		// admin only
		admin := v1.Group("/")
		admin.Use(middleware.Auth(j), middleware.RequireAdmin())
		{
			slotHandler.RegisterRoutes(admin)
			bookingHandler.RegisterAdminRoutes(admin)
			eventsHandler.RegisterRoutes(admin)
		}
	}

	logger.Info().Str("port", cfg.Port).Msg("starting api server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
