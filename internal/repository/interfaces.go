package repository

import (
	"context"
	"time"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
)

// CustomerReader resolves customers by id
type CustomerReader interface {
	// GetCustomer returns domain.ErrCustomerNotFound when no customer has the id
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
}

// InteractionTx is the set of writes available inside one atomic unit
type InteractionTx interface {
	CustomerReader

	// InsertInteraction inserts a new interaction row and returns it with its generated id
	InsertInteraction(ctx context.Context, in *domain.EnrichedInteraction) (*domain.Interaction, error)

	// TouchCustomer sets last_seen_at and increments interaction_count by one.
	// It returns domain.ErrCustomerNotFound when no row of the organization matches.
	TouchCustomer(ctx context.Context, customerID, organizationID string, seenAt time.Time) error
}

// InteractionStore is the relational store behind ingestion
type InteractionStore interface {
	CustomerReader

	// WithTx runs fn inside one transaction, committing when fn returns nil
	WithTx(ctx context.Context, fn func(tx InteractionTx) error) error
}

// ProfileReader loads the customer view
type ProfileReader interface {
	GetCustomerProfile(ctx context.Context, customerID, organizationID string, recent int) (*domain.CustomerProfile, error)
}

// ResultStore applies analysis write-backs
type ResultStore interface {
	// ApplyAnalysisResults writes results in one transaction and returns the rows it updated.
	// Results for unknown interactions are skipped.
	ApplyAnalysisResults(ctx context.Context, results []*domain.AnalysisResult) ([]*domain.AnalyzedInteraction, error)
}

// MetricsQuery represents dashboard metrics query parameters
type MetricsQuery struct {
	OrganizationID string
	From           int64
	To             int64
	GroupBy        string
}

// MetricsGroupResult represents aggregated metrics for a specific group
type MetricsGroupResult struct {
	GroupValue       string
	TotalCount       uint64
	AverageSentiment float64
}

// MetricsResult represents the result of a dashboard metrics query
type MetricsResult struct {
	TotalCount       uint64
	UniqueCustomers  uint64
	AverageSentiment float64
	Groups           []MetricsGroupResult
}

// AnalyticsRepository defines the interface for analyzed interaction storage
type AnalyticsRepository interface {
	// InsertBatch inserts a batch of analyzed interactions into the storage
	InsertBatch(ctx context.Context, rows []*domain.AnalyzedInteraction) (int, error)

	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error

	// GetMetrics retrieves aggregated organization metrics based on the query
	GetMetrics(ctx context.Context, query MetricsQuery) (*MetricsResult, error)
}
