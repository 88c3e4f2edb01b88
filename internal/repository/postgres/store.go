package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/repository"
)

const (
	customerColumns = `id, organization_id, external_id, segment, last_seen_at, interaction_count,
		average_sentiment, created_at, updated_at`

	interactionColumns = `id, customer_id, organization_id, occurred_at, channel, event_type, content,
		metadata, device, geo, segment, sentiment, sentiment_score, sentiment_confidence, processed_at, created_at`
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// Store implements the relational repositories on database/sql
type Store struct {
	db    *sql.DB
	log   *zap.Logger
	newID func() string
	now   func() time.Time
}

// NewStore creates a new relational store
func NewStore(db *sql.DB, log *zap.Logger) *Store {
	return &Store{
		db:    db,
		log:   log,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// InitSchema creates tables and indexes from the named embedded schema file
func (s *Store) InitSchema(ctx context.Context, schemaName string) error {
	schema, err := LoadSchema(schemaName)
	if err != nil {
		return fmt.Errorf("failed to load schema %s: %w", schemaName, err)
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema %s: %w", schemaName, err)
	}

	s.log.Info("Relational schema initialized successfully", zap.String("schema", schemaName))
	return nil
}

// Ping checks if the database connection is alive
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// GetCustomer returns the customer with id
func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return getCustomer(ctx, s.db, id)
}

// WithTx runs fn in one transaction. The transaction commits only when fn returns nil;
// any error or panic rolls it back.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.InteractionTx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&interactionTx{tx: sqlTx, store: s}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			s.log.Error("Failed to roll back transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCustomerProfile loads a customer of organizationID with its most recent interactions
func (s *Store) GetCustomerProfile(ctx context.Context, customerID, organizationID string, recent int) (*domain.CustomerProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1 AND organization_id = $2`,
		customerID, organizationID)
	customer, err := scanCustomer(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+interactionColumns+` FROM interactions
		WHERE customer_id = $1
		ORDER BY occurred_at DESC, created_at DESC
		LIMIT $2`,
		customerID, recent)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent interactions: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			s.log.Error("Failed to close recent interaction rows", zap.Error(err))
		}
	}(rows)

	profile := &domain.CustomerProfile{
		Customer:           *customer,
		RecentInteractions: []domain.Interaction{},
	}
	for rows.Next() {
		interaction, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		profile.RecentInteractions = append(profile.RecentInteractions, *interaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recent interaction rows: %w", err)
	}

	return profile, nil
}

// ApplyAnalysisResults writes sentiment results and recomputes the average sentiment of every
// affected customer in one transaction
func (s *Store) ApplyAnalysisResults(ctx context.Context, results []*domain.AnalysisResult) ([]*domain.AnalyzedInteraction, error) {
	if len(results) == 0 {
		return nil, nil
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// no-op after commit
		_ = sqlTx.Rollback()
	}()

	now := s.now().UTC()
	applied := make([]*domain.AnalyzedInteraction, 0, len(results))
	customers := make(map[string]struct{})

	for _, result := range results {
		row, err := applyResult(ctx, sqlTx, result, now)
		if errors.Is(err, domain.ErrInteractionNotFound) {
			s.log.Warn("Skipping analysis result for unknown interaction",
				zap.String("interaction_id", result.InteractionID))
			continue
		}
		if err != nil {
			return nil, err
		}
		applied = append(applied, row)
		customers[row.CustomerID] = struct{}{}
	}

	for customerID := range customers {
		_, err := sqlTx.ExecContext(ctx,
			`UPDATE customers SET
				average_sentiment = (
					SELECT AVG(sentiment_score) FROM interactions
					WHERE customer_id = $1 AND sentiment_score IS NOT NULL
				),
				updated_at = $2
			WHERE id = $1`,
			customerID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to update average sentiment: %w", err)
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit analysis results: %w", err)
	}

	return applied, nil
}

func applyResult(ctx context.Context, q querier, result *domain.AnalysisResult, now time.Time) (*domain.AnalyzedInteraction, error) {
	score, ok := domain.SentimentScore(result.Sentiment)
	if !ok {
		return nil, fmt.Errorf("unknown sentiment label %q", result.Sentiment)
	}

	processedAt := result.ProcessedAt
	if processedAt.IsZero() {
		processedAt = now
	}

	res, err := q.ExecContext(ctx,
		`UPDATE interactions SET
			sentiment = $1, sentiment_score = $2, sentiment_confidence = $3, processed_at = $4
		WHERE id = $5`,
		result.Sentiment, score, result.SentimentConfidence, processedAt.UTC(), result.InteractionID)
	if err != nil {
		return nil, fmt.Errorf("failed to apply analysis result: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrInteractionNotFound
	}

	interaction, err := scanInteraction(q.QueryRowContext(ctx,
		`SELECT `+interactionColumns+` FROM interactions WHERE id = $1`, result.InteractionID))
	if err != nil {
		return nil, err
	}

	analyzed := &domain.AnalyzedInteraction{
		InteractionID:       interaction.ID,
		CustomerID:          interaction.CustomerID,
		OrganizationID:      interaction.OrganizationID,
		Channel:             string(interaction.Channel),
		EventType:           interaction.EventType,
		Segment:             interaction.Segment,
		Timestamp:           interaction.Timestamp,
		Sentiment:           result.Sentiment,
		SentimentScore:      score,
		SentimentConfidence: result.SentimentConfidence,
		ProcessedAt:         processedAt.UTC(),
		Version:             uint64(now.UnixNano()),
	}
	if interaction.Device != nil {
		analyzed.DeviceType = interaction.Device.Type
	}
	if interaction.Geo != nil {
		analyzed.Country = interaction.Geo.Country
	}

	return analyzed, nil
}

func getCustomer(ctx context.Context, q querier, id string) (*domain.Customer, error) {
	row := q.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	return scanCustomer(row)
}

func scanCustomer(row scanner) (*domain.Customer, error) {
	var (
		c        domain.Customer
		segment  sql.NullString
		lastSeen sql.NullTime
		avg      sql.NullFloat64
	)
	err := row.Scan(&c.ID, &c.OrganizationID, &c.ExternalID, &segment, &lastSeen, &c.InteractionCount,
		&avg, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}

	if segment.Valid {
		c.Segment = &segment.String
	}
	if lastSeen.Valid {
		t := lastSeen.Time
		c.LastSeenAt = &t
	}
	if avg.Valid {
		c.AverageSentiment = &avg.Float64
	}
	return &c, nil
}

func scanInteraction(row scanner) (*domain.Interaction, error) {
	var (
		i          domain.Interaction
		channel    string
		content    sql.NullString
		metadata   []byte
		device     []byte
		geo        []byte
		segment    sql.NullString
		sentiment  sql.NullString
		score      sql.NullFloat64
		confidence sql.NullFloat64
		processed  sql.NullTime
	)
	err := row.Scan(&i.ID, &i.CustomerID, &i.OrganizationID, &i.Timestamp, &channel, &i.EventType, &content,
		&metadata, &device, &geo, &segment, &sentiment, &score, &confidence, &processed, &i.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan interaction: %w", err)
	}

	i.Channel = domain.Channel(channel)
	i.Content = content.String
	i.Segment = segment.String
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &i.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal interaction metadata: %w", err)
		}
	}
	if i.Device, err = unmarshalDevice(device); err != nil {
		return nil, err
	}
	if i.Geo, err = unmarshalGeo(geo); err != nil {
		return nil, err
	}
	if sentiment.Valid {
		i.Sentiment = &sentiment.String
	}
	if score.Valid {
		i.SentimentScore = &score.Float64
	}
	if confidence.Valid {
		i.SentimentConfidence = &confidence.Float64
	}
	if processed.Valid {
		t := processed.Time
		i.ProcessedAt = &t
	}
	return &i, nil
}

func unmarshalDevice(data []byte) (*domain.DeviceInfo, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var d domain.DeviceInfo
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal device: %w", err)
	}
	return &d, nil
}

func unmarshalGeo(data []byte) (*domain.GeoLocation, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var g domain.GeoLocation
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal geo: %w", err)
	}
	return &g, nil
}
