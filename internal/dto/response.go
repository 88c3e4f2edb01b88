package dto

import "github.com/cosmium2004/Customer-Insights-sub000/internal/domain"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// IngestResponse represents a successful single ingestion
type IngestResponse struct {
	Success       bool   `json:"success"`
	InteractionID string `json:"interactionId"`
}

// BatchSummary counts the items of a batch ingestion
type BatchSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// BatchIngestResponse represents the outcome of a batch ingestion
type BatchIngestResponse struct {
	Summary BatchSummary            `json:"summary"`
	Errors  []domain.BatchItemError `json:"errors,omitempty"`
}

// NewBatchIngestResponse converts a batch result
func NewBatchIngestResponse(r domain.BatchResult) *BatchIngestResponse {
	return &BatchIngestResponse{
		Summary: BatchSummary{
			Total:      r.Total,
			Successful: r.Successful,
			Failed:     r.Failed,
		},
		Errors: r.Errors,
	}
}

// DashboardGroup represents aggregated metrics for one group
type DashboardGroup struct {
	GroupValue       string  `json:"groupValue"`
	TotalCount       uint64  `json:"totalCount"`
	AverageSentiment float64 `json:"averageSentiment"`
}

// DashboardResponse represents an organization dashboard
type DashboardResponse struct {
	OrganizationID   string           `json:"organizationId"`
	From             int64            `json:"from"`
	To               int64            `json:"to"`
	TotalCount       uint64           `json:"totalCount"`
	UniqueCustomers  uint64           `json:"uniqueCustomers"`
	AverageSentiment float64          `json:"averageSentiment"`
	GroupBy          string           `json:"groupBy,omitempty"`
	Groups           []DashboardGroup `json:"groups,omitempty"`
}
