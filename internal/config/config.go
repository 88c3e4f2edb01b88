package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full service configuration, read from the environment
type Config struct {
	Service    Service    `envconfig:"SERVICE"`
	Postgres   Postgres   `envconfig:"POSTGRES"`
	SQS        SQS        `envconfig:"SQS"`
	ClickHouse ClickHouse `envconfig:"CLICKHOUSE"`
	Valkey     Valkey     `envconfig:"VALKEY"`
	Ingestion  Ingestion  `envconfig:"INGESTION"`
	Consumer   Consumer   `envconfig:"CONSUMER"`
}

type Service struct {
	Environment string `envconfig:"ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"API_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Host        string `envconfig:"HOST" default:"localhost:8080"`
}

type Postgres struct {
	DSN                string `envconfig:"DSN" required:"true"`
	MaxOpenConns       int    `envconfig:"MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns       int    `envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetimeSec int    `envconfig:"CONN_MAX_LIFETIME_SEC" default:"1800"`
	InitSchema         bool   `envconfig:"INIT_SCHEMA" default:"false"`
}

type SQS struct {
	Endpoint              string `envconfig:"ENDPOINT"`
	Region                string `envconfig:"REGION" required:"true"`
	AnalysisQueueURL      string `envconfig:"ANALYSIS_QUEUE_URL" required:"true"`
	AnalysisBatchQueueURL string `envconfig:"ANALYSIS_BATCH_QUEUE_URL"`
	ResultsQueueURL       string `envconfig:"RESULTS_QUEUE_URL"`
	MaxAttempts           int    `envconfig:"MAX_ATTEMPTS" default:"3"`
}

// BatchQueueURL returns the queue for low-priority jobs, falling back to the analysis queue
func (s SQS) BatchQueueURL() string {
	if s.AnalysisBatchQueueURL != "" {
		return s.AnalysisBatchQueueURL
	}
	return s.AnalysisQueueURL
}

type ClickHouse struct {
	Host            string `envconfig:"HOST" required:"true"`
	Port            string `envconfig:"PORT" required:"true"`
	Database        string `envconfig:"DB" required:"true"`
	User            string `envconfig:"USER" default:""`
	Password        string `envconfig:"PASSWORD" default:""`
	UseTLS          bool   `envconfig:"USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CONN_MAX_LIFETIME_SEC" default:"3600"`
}

type Valkey struct {
	Host       string `envconfig:"HOST" required:"true"`
	Port       string `envconfig:"PORT" required:"true"`
	Password   string `envconfig:"PASSWORD" default:""`
	DB         int    `envconfig:"DB" default:"0"`
	ViewTTLSec int    `envconfig:"VIEW_TTL_SEC" default:"300"`
}

// ViewTTL returns the lifetime of cached views
func (v Valkey) ViewTTL() time.Duration {
	return time.Duration(v.ViewTTLSec) * time.Second
}

type Ingestion struct {
	BatchChunkSize      int `envconfig:"BATCH_CHUNK_SIZE" default:"100"`
	MaxBatchItems       int `envconfig:"MAX_BATCH_ITEMS" default:"1000"`
	SideEffectTimeoutMs int `envconfig:"SIDE_EFFECT_TIMEOUT_MS" default:"2000"`
	RecentInteractions  int `envconfig:"RECENT_INTERACTIONS" default:"20"`
}

// SideEffectTimeout bounds the post-commit steps of one ingestion
func (i Ingestion) SideEffectTimeout() time.Duration {
	return time.Duration(i.SideEffectTimeoutMs) * time.Millisecond
}

type Consumer struct {
	BatchSizeMax       int    `envconfig:"BATCH_SIZE_MAX" default:"100"`
	BatchTimeoutSec    int    `envconfig:"BATCH_TIMEOUT_SEC" default:"5"`
	HealthCheckPort    string `envconfig:"HEALTH_CHECK_PORT" default:"8081"`
	ReceiveMaxMessages int32  `envconfig:"RECEIVE_MAX_MESSAGES" default:"10"`
	WaitTimeSeconds    int32  `envconfig:"WAIT_TIME_SECONDS" default:"20"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Ingestion.BatchChunkSize <= 0 || cfg.Ingestion.BatchChunkSize > 100 {
		return nil, fmt.Errorf("INGESTION_BATCH_CHUNK_SIZE must be between 1 and 100, got %d", cfg.Ingestion.BatchChunkSize)
	}

	return &cfg, nil
}
