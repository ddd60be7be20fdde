package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hivcare-api/internal/config"
	appointmentHandler "github.com/jwalitptl/hivcare-api/internal/handler/appointment"
	arvHandler "github.com/jwalitptl/hivcare-api/internal/handler/arv"
	catalogHandler "github.com/jwalitptl/hivcare-api/internal/handler/catalog"
	doctorHandler "github.com/jwalitptl/hivcare-api/internal/handler/doctor"
	"github.com/jwalitptl/hivcare-api/internal/handler/health"
	patientHandler "github.com/jwalitptl/hivcare-api/internal/handler/patient"
	promhandler "github.com/jwalitptl/hivcare-api/internal/handler/prometheus"
	"github.com/jwalitptl/hivcare-api/internal/middleware"
	"github.com/jwalitptl/hivcare-api/internal/repository/postgres"
	"github.com/jwalitptl/hivcare-api/internal/router"
	appointmentService "github.com/jwalitptl/hivcare-api/internal/service/appointment"
	arvService "github.com/jwalitptl/hivcare-api/internal/service/arv"
	catalogService "github.com/jwalitptl/hivcare-api/internal/service/catalog"
	doctorService "github.com/jwalitptl/hivcare-api/internal/service/doctor"
	eventService "github.com/jwalitptl/hivcare-api/internal/service/event"
	patientService "github.com/jwalitptl/hivcare-api/internal/service/patient"
	"github.com/jwalitptl/hivcare-api/pkg/auth"
	"github.com/jwalitptl/hivcare-api/pkg/logger"
	"github.com/jwalitptl/hivcare-api/pkg/messaging/redis"
	"github.com/jwalitptl/hivcare-api/pkg/metrics"
	"github.com/jwalitptl/hivcare-api/pkg/security"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Console:    cfg.Log.Console,
	})
	log.Logger = appLogger.ZL
	if appLogger.ZL.GetLevel() > logger.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Redis is only probed for readiness here; the worker owns publishing.
	redisClient, err := redis.NewClient(ctx, redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()

	// Initialize repositories
	doctorRepo := postgres.NewDoctorRepository(db)
	hoursRepo := postgres.NewWorkingHoursRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	arvRepo := postgres.NewARVRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	m := metrics.NewMetrics(prometheus.DefaultRegisterer, "hivcare")

	// Initialize services
	events := eventService.NewEventService(outboxRepo, appLogger)
	catalogSvc := catalogService.NewService(serviceRepo, cfg.Cache.ServiceTTL, cfg.Cache.CleanupInterval)
	doctorSvc := doctorService.NewService(doctorRepo, hoursRepo, security.NewBcryptHasher(0))
	patientSvc := patientService.NewService(patientRepo)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo,
		doctorRepo,
		patientRepo,
		hoursRepo,
		catalogSvc,
		events,
		security.NewCodeGenerator(nil, 8),
		m,
		appLogger,
	)
	arvSvc := arvService.NewService(arvRepo, patientRepo, doctorRepo, events, appLogger)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	healthH := health.NewHandler(map[string]health.Check{
		"database": db.PingContext,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins

	r, err := router.NewRouter(
		authMiddleware,
		m,
		healthH,
		promhandler.New(prometheus.DefaultGatherer),
		[]router.Handler{
			doctorHandler.NewHandler(doctorSvc),
			catalogHandler.NewHandler(catalogSvc),
			patientHandler.NewHandler(patientSvc),
			appointmentHandler.NewHandler(appointmentSvc),
			arvHandler.NewHandler(arvSvc),
		},
		router.RouterConfig{
			RateLimit:      rate.Limit(cfg.Server.RateLimitRPS),
			RateBurst:      cfg.Server.RateLimitBurst,
			CORSConfig:     corsConfig,
			RequestTimeout: cfg.Server.RequestTimeout,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}
	r.Setup()
	go r.RunJanitor(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server exited properly")
}
