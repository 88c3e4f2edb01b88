package ingestion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/repository"
)

// memStore is an in-memory InteractionStore whose transactions roll back every write on error
type memStore struct {
	mu           sync.Mutex
	customers    map[string]domain.Customer
	interactions []*domain.Interaction
	nextID       int

	// failInsert makes InsertInteraction fail for matching inputs
	failInsert func(in *domain.EnrichedInteraction) bool
	commitErr  error
}

func newMemStore(customers ...domain.Customer) *memStore {
	s := &memStore{customers: make(map[string]domain.Customer)}
	for _, c := range customers {
		s.customers[c.ID] = c
	}
	return s
}

func (s *memStore) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customer(id)
}

func (s *memStore) customer(id string) (*domain.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return &c, nil
}

func (s *memStore) WithTx(_ context.Context, fn func(tx repository.InteractionTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customers := make(map[string]domain.Customer, len(s.customers))
	for id, c := range s.customers {
		customers[id] = c
	}
	rows := len(s.interactions)

	err := fn(&memTx{s: s})
	if err == nil && s.commitErr != nil {
		err = s.commitErr
	}
	if err != nil {
		s.customers = customers
		s.interactions = s.interactions[:rows]
		return err
	}
	return nil
}

// Rows returns the committed interactions
func (s *memStore) Rows() []*domain.Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Interaction(nil), s.interactions...)
}

func (s *memStore) Customer(id string) domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers[id]
}

type memTx struct {
	s *memStore
}

func (t *memTx) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	return t.s.customer(id)
}

func (t *memTx) InsertInteraction(_ context.Context, in *domain.EnrichedInteraction) (*domain.Interaction, error) {
	if t.s.failInsert != nil && t.s.failInsert(in) {
		return nil, fmt.Errorf("insert or update on table \"interactions\" violates foreign key constraint")
	}
	t.s.nextID++
	interaction := &domain.Interaction{
		ID:             fmt.Sprintf("interaction-%d", t.s.nextID),
		CustomerID:     in.CustomerID,
		OrganizationID: in.OrganizationID,
		Timestamp:      in.Timestamp,
		Channel:        in.Channel,
		EventType:      in.EventType,
		Content:        in.Content,
		Metadata:       in.Metadata,
		Segment:        in.Segment,
		Device:         in.Device,
		Geo:            in.Geo,
		CreatedAt:      time.Now(),
	}
	t.s.interactions = append(t.s.interactions, interaction)
	return interaction, nil
}

func (t *memTx) TouchCustomer(_ context.Context, customerID, organizationID string, seenAt time.Time) error {
	c, ok := t.s.customers[customerID]
	if !ok || c.OrganizationID != organizationID {
		return domain.ErrCustomerNotFound
	}
	c.InteractionCount++
	c.LastSeenAt = &seenAt
	t.s.customers[customerID] = c
	return nil
}

type MockJobSink struct {
	mock.Mock
}

func (m *MockJobSink) EnqueueAnalysis(ctx context.Context, job domain.AnalysisJob, priority domain.Priority) error {
	args := m.Called(ctx, job, priority)
	return args.Error(0)
}

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(ctx context.Context, customerID, organizationID string) error {
	args := m.Called(ctx, customerID, organizationID)
	return args.Error(0)
}

func (m *MockInvalidator) InvalidateAll(ctx context.Context, customerIDs, organizationIDs []string) error {
	args := m.Called(ctx, customerIDs, organizationIDs)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.InteractionCreatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
