package domain

import "time"

// Customer represents a customer row owned by an organization
type Customer struct {
	ID               string     `json:"id"`
	OrganizationID   string     `json:"organizationId"`
	ExternalID       string     `json:"externalId"`
	Segment          *string    `json:"segment,omitempty"`
	LastSeenAt       *time.Time `json:"lastSeenAt,omitempty"`
	InteractionCount int64      `json:"interactionCount"`
	AverageSentiment *float64   `json:"averageSentiment,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// CustomerProfile is the cached customer view
type CustomerProfile struct {
	Customer           Customer      `json:"customer"`
	RecentInteractions []Interaction `json:"recentInteractions"`
}
