package clickhouse

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/config"
)

const (
	pingAttempts = 5
	pingTimeout  = 3 * time.Second
	pingBackoff  = time.Second
)

// Client owns the pooled connection to the analytics warehouse
type Client struct {
	connection driver.Conn
	log        *zap.Logger
}

// NewClient opens the pool and waits for the server to answer a ping.
// The server is retried a few times so the service can start alongside it.
func NewClient(ctx context.Context, cfg *config.ClickHouse, log *zap.Logger) (*Client, error) {
	opts := options(cfg)

	log.Info("Connecting to ClickHouse",
		zap.Strings("addr", opts.Addr),
		zap.String("database", cfg.Database),
		zap.Bool("tls", cfg.UseTLS))

	connection, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse: %w", err)
	}

	if err := ping(ctx, connection, log); err != nil {
		_ = connection.Close()
		return nil, err
	}

	log.Info("ClickHouse connection established")
	return &Client{connection: connection, log: log}, nil
}

func options(cfg *config.ClickHouse) *clickhouse.Options {
	var tlsConfig *tls.Config
	if cfg.UseTLS {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return &clickhouse.Options{
		Addr: []string{net.JoinHostPort(cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "customer-insights", Version: "1.0"}},
		},
		TLS:              tlsConfig,
		DialTimeout:      5 * time.Second,
		MaxOpenConns:     cfg.MaxOpenConns,
		MaxIdleConns:     cfg.MaxIdleConns,
		ConnMaxLifetime:  time.Duration(cfg.ConnMaxLifetime) * time.Second,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	}
}

func ping(ctx context.Context, conn driver.Conn, log *zap.Logger) error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = conn.Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}

		log.Warn("ClickHouse not ready",
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to ping ClickHouse: %w", ctx.Err())
		case <-time.After(pingBackoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("failed to ping ClickHouse after %d attempts: %w", pingAttempts, err)
}

// Conn returns the pooled connection
func (c *Client) Conn() driver.Conn {
	return c.connection
}

func (c *Client) Close() error {
	if err := c.connection.Close(); err != nil {
		return fmt.Errorf("failed to close ClickHouse connection: %w", err)
	}
	c.log.Debug("ClickHouse connection closed")
	return nil
}
