package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/repository"
)

const createAnalyticsTable = `
	CREATE TABLE IF NOT EXISTS interaction_analytics (
		interaction_id String,
		customer_id String,
		organization_id LowCardinality(String),
		channel LowCardinality(String),
		event_type LowCardinality(String),
		segment LowCardinality(String),
		country LowCardinality(String),
		device_type LowCardinality(String),
		timestamp DateTime64(3, 'UTC'),
		sentiment LowCardinality(String),
		sentiment_score Float64,
		sentiment_confidence Float64,
		processed_at DateTime64(3, 'UTC'),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	PARTITION BY toYYYYMM(timestamp)
	ORDER BY (organization_id, timestamp, interaction_id)
	SETTINGS index_granularity = 8192
	`

// Repository stores analyzed interactions and serves the organization dashboard
type Repository struct {
	client *Client
	conn   driver.Conn
	log    *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client: client,
		conn:   client.Conn(),
		log:    log,
	}
}

// InitSchema creates the interaction_analytics table. Re-delivered results replace older
// versions of the same row on merge.
func (r *Repository) InitSchema(ctx context.Context) error {
	if err := r.conn.Exec(ctx, createAnalyticsTable); err != nil {
		return fmt.Errorf("failed to create interaction_analytics table: %w", err)
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// InsertBatch inserts a batch of analyzed interactions
func (r *Repository) InsertBatch(ctx context.Context, rows []*domain.AnalyzedInteraction) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO interaction_analytics")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, row := range rows {
		if row.Version == 0 {
			row.Version = uint64(time.Now().UnixNano())
		}
		if err := batch.AppendStruct(row); err != nil {
			_ = batch.Abort()
			return 0, fmt.Errorf("failed to append analyzed interaction to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send batch: %w", err)
	}

	return len(rows), nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}

// GetMetrics aggregates one organization's analyzed interactions within [From, To]
func (r *Repository) GetMetrics(ctx context.Context, query repository.MetricsQuery) (*repository.MetricsResult, error) {
	result := &repository.MetricsResult{
		Groups: []repository.MetricsGroupResult{},
	}

	whereClause := "WHERE organization_id = ? AND toUnixTimestamp(timestamp) >= ? AND toUnixTimestamp(timestamp) <= ?"
	args := []any{query.OrganizationID, query.From, query.To}

	overallQuery := fmt.Sprintf(`
		SELECT
			count() AS total_count,
			uniq(customer_id) AS unique_customers,
			ifNotFinite(avg(sentiment_score), 0) AS average_sentiment
		FROM interaction_analytics FINAL
		%s
	`, whereClause)

	row := r.conn.QueryRow(ctx, overallQuery, args...)
	if err := row.Scan(&result.TotalCount, &result.UniqueCustomers, &result.AverageSentiment); err != nil {
		return nil, fmt.Errorf("failed to query overall metrics: %w", err)
	}

	if query.GroupBy == "" {
		return result, nil
	}

	var selectField, groupByClause, orderBy string
	switch query.GroupBy {
	case "channel":
		selectField = "toString(channel)"
		groupByClause = "GROUP BY channel"
		orderBy = "ORDER BY total_count DESC"
	case "hour":
		selectField = "formatDateTime(toStartOfHour(timestamp), '%Y-%m-%d %H:00:00')"
		groupByClause = "GROUP BY toStartOfHour(timestamp)"
		orderBy = "ORDER BY group_value ASC"
	case "day":
		selectField = "formatDateTime(toStartOfDay(timestamp), '%Y-%m-%d')"
		groupByClause = "GROUP BY toStartOfDay(timestamp)"
		orderBy = "ORDER BY group_value ASC"
	default:
		return nil, fmt.Errorf("unsupported group_by value: %s (supported: channel, hour, day)", query.GroupBy)
	}

	groupedQuery := fmt.Sprintf(`
		SELECT
			%s AS group_value,
			count() AS total_count,
			ifNotFinite(avg(sentiment_score), 0) AS average_sentiment
		FROM interaction_analytics FINAL
		%s
		%s
		%s
	`, selectField, whereClause, groupByClause, orderBy)

	rows, err := r.conn.Query(ctx, groupedQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grouped metrics: %w", err)
	}
	defer func(rows driver.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error("Failed to close grouped metrics rows", zap.Error(err))
		}
	}(rows)

	for rows.Next() {
		var group repository.MetricsGroupResult
		if err := rows.Scan(&group.GroupValue, &group.TotalCount, &group.AverageSentiment); err != nil {
			return nil, fmt.Errorf("failed to scan grouped metrics row: %w", err)
		}
		result.Groups = append(result.Groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grouped metrics rows: %w", err)
	}

	return result, nil
}
