package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/eleqt/eleqt-rides/internal/booking"
	"github.com/eleqt/eleqt-rides/internal/http/handlers"
	httpmw "github.com/eleqt/eleqt-rides/internal/http/middleware"
	"github.com/eleqt/eleqt-rides/internal/platform/mailer"
	"github.com/eleqt/eleqt-rides/internal/platform/payment"
	"github.com/eleqt/eleqt-rides/internal/repo/postgres"
	"github.com/eleqt/eleqt-rides/pkg/config"
	"github.com/eleqt/eleqt-rides/pkg/database"
	"github.com/eleqt/eleqt-rides/pkg/events"
	"github.com/eleqt/eleqt-rides/pkg/logger"
	mw "github.com/eleqt/eleqt-rides/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	bookingRepo := postgres.NewBookingRepo(pool)
	vehicleRepo := postgres.NewVehicleRepo(pool)
	usersRepo := postgres.NewUsersRepo(pool)
	idemRepo := postgres.NewIdempotencyRepo(pool)

	gateway := payment.NewClient(cfg.Gateway)
	mail := mailer.New(cfg.Email)

	jwtSecret := []byte(cfg.Auth.JWTSecret)
	bookingSvc := booking.NewService(bookingRepo, vehicleRepo, usersRepo, idemRepo, gateway, mail, eventBus, booking.Config{
		LuxuryFarePaise: cfg.Booking.LuxuryFarePaise,
		JWTSecret:       jwtSecret,
		PaymentTokenTTL: cfg.Auth.PaymentTokenTTL,
	})

	authHandler := handlers.NewAuthHandler(usersRepo, jwtSecret, cfg.Auth.AccessTokenTTL)
	bookingsHandler := handlers.NewBookingsHandler(bookingSvc)
	vehiclesHandler := handlers.NewVehiclesHandler(vehicleRepo)

	authLimiter := httpmw.NewRateLimiter(rdb, httpmw.RateLimitConfig{
		Requests: 10,
		Window:   time.Minute,
		KeyFunc:  httpmw.ClientIPKeyFunc,
	})
	bookingLimiter := httpmw.NewRateLimiter(rdb, httpmw.RateLimitConfig{
		Requests: 60,
		Window:   time.Minute,
		KeyFunc:  httpmw.UserKeyFunc,
	})

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("api"))
	r.Use(mw.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(authLimiter.Middleware()).Mount("/auth", authHandler.Routes())

		r.Group(func(r chi.Router) {
			r.Use(httpmw.RequireJWT(jwtSecret))
			r.Use(bookingLimiter.Middleware())
			r.Mount("/bookings", bookingsHandler.Routes())
		})

		r.Group(func(r chi.Router) {
			r.Use(httpmw.RequireJWT(jwtSecret), httpmw.RequireAdmin)
			r.Mount("/admin/vehicles", vehiclesHandler.Routes())
		})
	})

	// Background workers: vehicle release sweep plus idempotency cleanup.
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	sweeper := booking.NewReleaseSweeper(vehicleRepo, eventBus, cfg.Booking.ReleaseSweepInterval)
	go sweeper.Run(workerCtx)
	go cleanupIdempotency(workerCtx, idemRepo)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		stopWorkers()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("starting api", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func cleanupIdempotency(ctx context.Context, repo postgres.IdempotencyRepo) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := repo.CleanupExpired(ctx); err != nil {
				logger.Error("idempotency cleanup failed", "error", err)
			} else if n > 0 {
				logger.Info("cleaned up expired idempotency keys", "count", n)
			}
		}
	}
}
