package clickhouse

import (
	"crypto/tls"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/config"
)

func TestOptions(t *testing.T) {
	cfg := &config.ClickHouse{
		Host:            "clickhouse",
		Port:            "9000",
		Database:        "insights",
		User:            "svc",
		Password:        "secret",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 3600,
	}

	opts := options(cfg)

	assert.Equal(t, []string{"clickhouse:9000"}, opts.Addr)
	assert.Equal(t, clickhouse.Auth{Database: "insights", Username: "svc", Password: "secret"}, opts.Auth)
	assert.Equal(t, 5, opts.MaxOpenConns)
	assert.Equal(t, 2, opts.MaxIdleConns)
	assert.Equal(t, time.Hour, opts.ConnMaxLifetime)
	require.NotNil(t, opts.Compression)
	assert.Equal(t, clickhouse.CompressionLZ4, opts.Compression.Method)
	assert.Nil(t, opts.TLS)
}

func TestOptions_TLS(t *testing.T) {
	opts := options(&config.ClickHouse{Host: "::1", Port: "9440", UseTLS: true})

	assert.Equal(t, []string{"[::1]:9440"}, opts.Addr)
	require.NotNil(t, opts.TLS)
	assert.Equal(t, uint16(tls.VersionTLS12), opts.TLS.MinVersion)
}
