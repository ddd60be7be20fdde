package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hivcare-api/internal/config"
	"github.com/jwalitptl/hivcare-api/internal/email"
	"github.com/jwalitptl/hivcare-api/internal/handler/health"
	promhandler "github.com/jwalitptl/hivcare-api/internal/handler/prometheus"
	"github.com/jwalitptl/hivcare-api/internal/repository/postgres"
	"github.com/jwalitptl/hivcare-api/internal/service/notification"
	internalworker "github.com/jwalitptl/hivcare-api/internal/worker"
	"github.com/jwalitptl/hivcare-api/pkg/logger"
	"github.com/jwalitptl/hivcare-api/pkg/messaging/redis"
	"github.com/jwalitptl/hivcare-api/pkg/metrics"
	"github.com/jwalitptl/hivcare-api/pkg/worker"
)

const cleanupInterval = time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Console:    cfg.Log.Console,
	})
	log.Logger = appLogger.ZL
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

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
	broker := redis.NewRedisBroker(redisClient, appLogger)
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	m := metrics.NewMetrics(prometheus.DefaultRegisterer, "hivcare_worker")

	processor, err := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
			Channel:       cfg.Redis.Channel,
		},
		appLogger,
		m,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create outbox processor")
	}

	cleanup := internalworker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.Retention, cleanupInterval, appLogger)

	notifier := notification.NewService(email.NewSMTPService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}), appLogger)

	srv := healthServer(cfg.Server.WorkerHealthPort, map[string]health.Check{
		"database": db.PingContext,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health check server failed")
			stop()
		}
	}()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := notifier.Run(ctx, broker, cfg.Redis.Channel); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("notification subscriber stopped")
		}
	}()

	log.Info().Str("channel", cfg.Redis.Channel).Msg("worker started")
	<-ctx.Done()
	log.Info().Msg("shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to stop health check server")
	}

	wg.Wait()
	log.Info().Msg("worker exited properly")
}

func healthServer(port int, checks map[string]health.Check) *http.Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	health.NewHandler(checks).RegisterRoutes(engine)
	promhandler.New(prometheus.DefaultGatherer).RegisterRoutes(engine)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
