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
	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/docs"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/cache"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/config"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/enrichment"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/handler"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/ingestion"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/logger"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/metrics"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/queue/sqs"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/realtime"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/repository/clickhouse"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/repository/postgres"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/service"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/validation"
)

const (
	realtimeBuffer  = 64
	shutdownTimeout = 15 * time.Second
)

// @title Customer Insights API
// @version 1.0
// @description Interaction ingestion, customer views and organization dashboards
// @host localhost:8080
// @BasePath /
// @schemes http https
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

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	docs.SwaggerInfo.Host = cfg.Service.Host

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
	if cfg.Postgres.InitSchema {
		if err := store.InitSchema(ctx, postgres.PostgresSchemaName); err != nil {
			log.Fatal("Failed to initialize Postgres schema", zap.Error(err))
		}
		log.Info("Postgres schema initialized")
	}

	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Valkey, log)
	if err != nil {
		log.Fatal("Failed to connect to Valkey", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Valkey client", zap.Error(err))
		}
	}()
	cacheStore := cache.NewRedisStore(redisClient)
	invalidator := cache.NewInvalidator(cacheStore, log)
	views := cache.NewViews(cacheStore, cfg.Valkey.ViewTTL(), log)

	clickhouseClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	analytics := clickhouse.NewRepository(clickhouseClient, log)
	defer func() {
		if err := analytics.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}()

	m := metrics.New(prometheus.DefaultRegisterer)
	hub := realtime.NewHub(realtimeBuffer, m, log)

	coordinator := ingestion.NewCoordinator(
		validation.New(time.Now),
		enrichment.NewEnricher(store, log),
		store,
		sqsClient,
		invalidator,
		hub,
		cfg.Ingestion.SideEffectTimeout(),
		m,
		log,
	)
	batches := ingestion.NewBatchOrchestrator(coordinator, cfg.Ingestion.BatchChunkSize)

	interactions := service.NewInteractionService(coordinator, batches, cfg.Ingestion.MaxBatchItems, log)
	insights := service.NewInsightsService(store, analytics, views, cfg.Ingestion.RecentInteractions, log)

	h := handler.NewHandler(interactions, insights, hub, nil, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Service.APIPort),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("API server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down API server gracefully")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down API server", zap.Error(err))
	}
}
