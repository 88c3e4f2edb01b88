package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/metrics"
)

const defaultBuffer = 64

// Subscriber receives the events of one organization
type Subscriber struct {
	organizationID string
	events         chan []byte
}

// Events yields encoded events until the subscriber is removed
func (s *Subscriber) Events() <-chan []byte {
	return s.events
}

// OrganizationID returns the organization the subscriber is registered for
func (s *Subscriber) OrganizationID() string {
	return s.organizationID
}

// Hub fans events out to subscribers registered for the event's organization.
// Delivery never blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscriber]struct{}
	buffer      int
	metrics     *metrics.Metrics
	log         *zap.Logger
}

// NewHub creates a hub with per-subscriber buffers of size buffer
func NewHub(buffer int, m *metrics.Metrics, log *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subscribers: make(map[string]map[*Subscriber]struct{}),
		buffer:      buffer,
		metrics:     m,
		log:         log,
	}
}

// Subscribe registers a subscriber for organizationID
func (h *Hub) Subscribe(organizationID string) *Subscriber {
	sub := &Subscriber{
		organizationID: organizationID,
		events:         make(chan []byte, h.buffer),
	}

	h.mu.Lock()
	subs, ok := h.subscribers[organizationID]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.subscribers[organizationID] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	h.metrics.SubscriberAdded()
	return sub
}

// Unsubscribe removes sub and closes its event channel. It is safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	subs, ok := h.subscribers[sub.organizationID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := subs[sub]; !ok {
		h.mu.Unlock()
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.subscribers, sub.organizationID)
	}
	close(sub.events)
	h.mu.Unlock()

	h.metrics.SubscriberRemoved()
}

// Subscribers returns the number of subscribers of organizationID
func (h *Hub) Subscribers(organizationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[organizationID])
}

// Publish delivers event to the subscribers of event.OrganizationID
func (h *Hub) Publish(ctx context.Context, event domain.InteractionCreatedEvent) error {
	if event.OrganizationID == "" {
		return errors.New("event has no organization")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[event.OrganizationID] {
		select {
		case sub.events <- payload:
		default:
			h.metrics.EventDropped()
			h.log.Warn("Dropping event for slow subscriber",
				zap.String("organization_id", event.OrganizationID),
				zap.String("interaction_id", event.InteractionID))
		}
	}
	return nil
}
