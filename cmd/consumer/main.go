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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/cache"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/config"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/consumer"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/logger"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/metrics"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/queue/sqs"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/repository/clickhouse"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Service.Environment, cfg.Service.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		_ = log.Sync()
	}(log)

	log.Info("Starting results consumer",
		zap.String("environment", cfg.Service.Environment))

	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close Postgres", zap.Error(err))
		}
	}()
	store := postgres.NewStore(db, log)

	chClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	analytics := clickhouse.NewRepository(chClient, log)
	defer func() {
		if err := analytics.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}()

	if err := analytics.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize ClickHouse schema", zap.Error(err))
	}
	log.Info("ClickHouse schema initialized")

	redisClient, err := cache.NewRedisClient(ctx, cfg.Valkey, log)
	if err != nil {
		log.Fatal("Failed to connect to Valkey", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Valkey client", zap.Error(err))
		}
	}()
	invalidator := cache.NewInvalidator(cache.NewRedisStore(redisClient), log)

	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}
	if sqsClient.QueueURL() == "" {
		log.Fatal("SQS_RESULTS_QUEUE_URL is required for the results consumer")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	c := consumer.NewConsumer(cfg, sqsClient, store, analytics, invalidator, m, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			log.Warn("Health check failed", zap.String("dependency", "postgres"), zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if err := analytics.Ping(r.Context()); err != nil {
			log.Warn("Health check failed", zap.String("dependency", "clickhouse"), zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	health := &http.Server{
		Addr:              ":" + cfg.Consumer.HealthCheckPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health check server starting", zap.String("address", health.Addr))
		if err := health.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health check server error", zap.Error(err))
		}
	}()

	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		log.Info("Consumer starting")
		if err := c.Start(consumerCtx); err != nil {
			log.Error("Consumer error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-stopped:
	}

	log.Info("Shutting down consumer gracefully")
	cancel()
	<-stopped

	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 5*time.Second)
	defer cancelShutdown()
	if err := health.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down health check server", zap.Error(err))
	}
}
