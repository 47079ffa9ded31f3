package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/medipoint/scheduler-api/internal/config"
	"github.com/medipoint/scheduler-api/internal/handler"
	appointmentHandler "github.com/medipoint/scheduler-api/internal/handler/appointment"
	availabilityHandler "github.com/medipoint/scheduler-api/internal/handler/availability"
	notificationHandler "github.com/medipoint/scheduler-api/internal/handler/notification"
	"github.com/medipoint/scheduler-api/internal/locker"
	"github.com/medipoint/scheduler-api/internal/middleware"
	"github.com/medipoint/scheduler-api/internal/repository/cache"
	"github.com/medipoint/scheduler-api/internal/repository/postgres"
	"github.com/medipoint/scheduler-api/internal/router"
	authService "github.com/medipoint/scheduler-api/internal/service/auth"
	notificationService "github.com/medipoint/scheduler-api/internal/service/notification"
	"github.com/medipoint/scheduler-api/internal/service/scheduling"
	"github.com/medipoint/scheduler-api/pkg/logger"
	redisbroker "github.com/medipoint/scheduler-api/pkg/messaging/redis"
	"github.com/medipoint/scheduler-api/pkg/metrics"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.New("scheduler")

	// Repositories
	slotDuration := cfg.Scheduling.SlotDuration()
	appointmentRepo := postgres.NewAppointmentRepository(db, slotDuration)
	availabilityRepo := cache.NewAvailabilityCache(
		postgres.NewAvailabilityRepository(db),
		cfg.Scheduling.WindowCacheTTL,
	)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Redis: broker for notification fan-out, locker for the per-doctor
	// booking critical section.
	zl := log.Logger
	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	redisOpts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse Redis URL")
	}
	doctorLocks := locker.NewRedisLocker(goredis.NewClient(redisOpts), cfg.Scheduling.LockTTL)

	// Services
	dispatcher := notificationService.NewDispatcher(notificationRepo, broker, m, appLogger, notificationService.Config{
		NotifyNoShow: cfg.Scheduling.NotifyNoShow,
	})
	engine := scheduling.NewEngine(
		appointmentRepo,
		scheduling.NewConflictChecker(appointmentRepo, availabilityRepo),
		scheduling.NewTransitionValidator(),
		dispatcher,
		doctorLocks,
		m,
		appLogger,
		slotDuration,
	)
	authSvc := authService.NewService(cfg.JWT)

	// HTTP surface
	r := router.New(
		middleware.NewAuthMiddleware(authSvc),
		handler.NewHealthHandler(db),
		m,
		router.Config{RateLimit: rate.Limit(cfg.Server.RateLimit), RateBurst: cfg.Server.RateBurst},
		appointmentHandler.NewHandler(engine),
		availabilityHandler.NewHandler(engine),
		notificationHandler.NewHandler(notificationRepo),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
