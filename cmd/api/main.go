package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/kientrank3/revita-scheduling-api/internal/config"
	"github.com/kientrank3/revita-scheduling-api/internal/handler"
	appointmentHandler "github.com/kientrank3/revita-scheduling-api/internal/handler/appointment"
	availabilityHandler "github.com/kientrank3/revita-scheduling-api/internal/handler/availability"
	bookingflowHandler "github.com/kientrank3/revita-scheduling-api/internal/handler/bookingflow"
	worksessionHandler "github.com/kientrank3/revita-scheduling-api/internal/handler/worksession"
	"github.com/kientrank3/revita-scheduling-api/internal/repository/postgres"
	"github.com/kientrank3/revita-scheduling-api/internal/router"
	"github.com/kientrank3/revita-scheduling-api/internal/service/availability"
	"github.com/kientrank3/revita-scheduling-api/internal/service/booking"
	"github.com/kientrank3/revita-scheduling-api/internal/service/roster"
	"github.com/kientrank3/revita-scheduling-api/pkg/lock"
	"github.com/kientrank3/revita-scheduling-api/pkg/logger"
	"github.com/kientrank3/revita-scheduling-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	specialtyRepo := postgres.NewSpecialtyRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	workingDayRepo := postgres.NewWorkingDayRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	workSessionRepo := postgres.NewWorkSessionRepository(db)

	m := metrics.New("revita")

	// A distributed lock is only needed when several replicas share
	// the database; single-node deployments rely on the advisory lock.
	var redisClient *redis.Client
	var dlock lock.Locker
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		dlock = lock.NewRedisLock(redisClient)
	}

	availabilitySvc := availability.NewService(
		specialtyRepo, doctorRepo, serviceRepo, workingDayRepo, appointmentRepo, m,
	)
	bookingSvc := booking.NewService(appointmentRepo, serviceRepo, dlock, cfg.Booking.LockTTL(), m)
	rosterSvc := roster.NewService(workSessionRepo, m)

	flowStore := booking.NewFlowStore(cfg.Booking.FlowTTL())

	healthHandler := handler.NewHandler(db, redisClient)
	r := router.New(
		router.Config{
			RateLimit:      rate.Limit(cfg.Server.RateLimitRPS),
			RateBurst:      cfg.Server.RateLimitBurst,
			RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		},
		m,
		healthHandler,
		availabilityHandler.NewHandler(availabilitySvc, cfg.Booking.MaxGranularity()),
		appointmentHandler.NewHandler(bookingSvc),
		bookingflowHandler.NewHandler(flowStore, bookingSvc, availabilitySvc, m),
		worksessionHandler.NewHandler(rosterSvc),
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Setup(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	log.Info().Msg("server stopped")
}
