package enrichment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/repository"
)

// Enricher resolves the owning customer and organization of a validated interaction
// and normalizes its device and geolocation hints
type Enricher struct {
	customers repository.CustomerReader
	log       *zap.Logger
}

// NewEnricher creates a new enricher reading customers from customers
func NewEnricher(customers repository.CustomerReader, log *zap.Logger) *Enricher {
	return &Enricher{
		customers: customers,
		log:       log,
	}
}

// Using returns a copy of the enricher that reads customers from r, typically an open transaction
func (e *Enricher) Using(r repository.CustomerReader) *Enricher {
	return &Enricher{customers: r, log: e.log}
}

// Enrich resolves in against the customer store. A missing customer yields a
// *domain.EnrichmentError wrapping domain.ErrCustomerNotFound.
func (e *Enricher) Enrich(ctx context.Context, in domain.InteractionInput) (*domain.EnrichedInteraction, error) {
	ts, err := domain.ParseTimestamp(in.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp of validated interaction: %w", err)
	}

	customer, err := e.customers.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			e.log.Warn("Customer not found during enrichment",
				zap.String("customer_id", in.CustomerID))
			return nil, &domain.EnrichmentError{CustomerID: in.CustomerID, Err: domain.ErrCustomerNotFound}
		}
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	enriched := &domain.EnrichedInteraction{
		CustomerID:     customer.ID,
		OrganizationID: customer.OrganizationID,
		Timestamp:      ts,
		Channel:        domain.Channel(in.Channel),
		EventType:      in.EventType,
		Content:        in.Content,
		Metadata:       in.Metadata,
		Device:         NormalizeDevice(in.Metadata),
		Geo:            NormalizeGeo(in.Metadata),
	}
	if customer.Segment != nil {
		enriched.Segment = *customer.Segment
	}

	return enriched, nil
}

// NormalizeDevice extracts the device descriptor from metadata, or nil when none of its fields is present
func NormalizeDevice(metadata map[string]any) *domain.DeviceInfo {
	if len(metadata) == 0 {
		return nil
	}

	device := domain.DeviceInfo{
		Type:    lookupString(metadata, deviceTypeKeys),
		OS:      lookupString(metadata, deviceOSKeys),
		Browser: lookupString(metadata, deviceBrowserKeys),
		Version: lookupString(metadata, deviceVersionKeys),
	}
	if device.Empty() {
		return nil
	}
	return &device
}

// NormalizeGeo extracts the geolocation descriptor from metadata, or nil when none of its fields is present
func NormalizeGeo(metadata map[string]any) *domain.GeoLocation {
	if len(metadata) == 0 {
		return nil
	}

	geo := domain.GeoLocation{
		Country:   lookupString(metadata, geoCountryKeys),
		Region:    lookupString(metadata, geoRegionKeys),
		City:      lookupString(metadata, geoCityKeys),
		Latitude:  lookupFloat(metadata, geoLatKeys),
		Longitude: lookupFloat(metadata, geoLngKeys),
	}
	if geo.Empty() {
		return nil
	}
	return &geo
}
