package dto

import "github.com/cosmium2004/Customer-Insights-sub000/internal/domain"

// InteractionRequest represents a single interaction ingestion request.
// Field rules are checked by the validator so every violation is reported at once.
type InteractionRequest struct {
	CustomerID string         `json:"customerId"`
	Timestamp  string         `json:"timestamp"`
	Channel    string         `json:"channel"`
	EventType  string         `json:"eventType"`
	Content    string         `json:"content,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Input converts the request into a validator input
func (r InteractionRequest) Input() domain.InteractionInput {
	return domain.InteractionInput{
		CustomerID: r.CustomerID,
		Timestamp:  r.Timestamp,
		Channel:    r.Channel,
		EventType:  r.EventType,
		Content:    r.Content,
		Metadata:   r.Metadata,
	}
}

// BatchInteractionRequest represents a batch ingestion request
type BatchInteractionRequest struct {
	Interactions []InteractionRequest `json:"interactions" binding:"required,min=1"`
}

// DashboardRequest represents an organization dashboard query
type DashboardRequest struct {
	OrganizationID string `form:"organization_id" binding:"required"`
	From           int64  `form:"from" binding:"required"`
	To             int64  `form:"to" binding:"required"`
	GroupBy        string `form:"group_by"`
}
