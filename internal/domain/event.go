package domain

import "time"

// EventInteractionCreated is the type of the creation notification
const EventInteractionCreated = "interaction.created"

// InteractionCreatedEvent is broadcast to subscribers of one organization
type InteractionCreatedEvent struct {
	Type           string    `json:"type"`
	InteractionID  string    `json:"interactionId"`
	CustomerID     string    `json:"customerId"`
	OrganizationID string    `json:"organizationId"`
	Timestamp      time.Time `json:"timestamp"`
	Channel        Channel   `json:"channel"`
	EventType      string    `json:"eventType"`
}

// NewInteractionCreatedEvent builds the creation notification for a committed interaction
func NewInteractionCreatedEvent(i *Interaction) InteractionCreatedEvent {
	return InteractionCreatedEvent{
		Type:           EventInteractionCreated,
		InteractionID:  i.ID,
		CustomerID:     i.CustomerID,
		OrganizationID: i.OrganizationID,
		Timestamp:      i.Timestamp,
		Channel:        i.Channel,
		EventType:      i.EventType,
	}
}
