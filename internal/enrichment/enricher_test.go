package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
)

const (
	testCustomerID = "7f3c2a1e-9b4d-4c8e-a5f6-1d2e3f4a5b6c"
	testOrgID      = "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"
)

// MockCustomerReader is a mock implementation of repository.CustomerReader
type MockCustomerReader struct {
	mock.Mock
}

func (m *MockCustomerReader) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func testInput(metadata map[string]any) domain.InteractionInput {
	return domain.InteractionInput{
		CustomerID: testCustomerID,
		Timestamp:  "2025-05-01T10:00:00Z",
		Channel:    "web",
		EventType:  "page_view",
		Content:    "hello",
		Metadata:   metadata,
	}
}

func ptr[T any](v T) *T { return &v }

func TestEnricher_Enrich_Success(t *testing.T) {
	reader := new(MockCustomerReader)
	segment := "enterprise"
	reader.On("GetCustomer", mock.Anything, testCustomerID).Return(&domain.Customer{
		ID:             testCustomerID,
		OrganizationID: testOrgID,
		Segment:        &segment,
	}, nil)

	enricher := NewEnricher(reader, zap.NewNop())

	enriched, err := enricher.Enrich(context.Background(), testInput(map[string]any{
		"deviceType": "desktop",
		"browser":    "firefox",
		"country":    "DE",
	}))

	require.NoError(t, err)
	assert.Equal(t, testOrgID, enriched.OrganizationID)
	assert.Equal(t, testCustomerID, enriched.CustomerID)
	assert.Equal(t, "enterprise", enriched.Segment)
	assert.Equal(t, domain.ChannelWeb, enriched.Channel)
	assert.Equal(t, 2025, enriched.Timestamp.Year())
	assert.Equal(t, &domain.DeviceInfo{Type: "desktop", Browser: "firefox"}, enriched.Device)
	assert.Equal(t, &domain.GeoLocation{Country: "DE"}, enriched.Geo)
	reader.AssertExpectations(t)
}

func TestEnricher_Enrich_NoSegment(t *testing.T) {
	reader := new(MockCustomerReader)
	reader.On("GetCustomer", mock.Anything, testCustomerID).
		Return(&domain.Customer{ID: testCustomerID, OrganizationID: testOrgID}, nil)

	enriched, err := NewEnricher(reader, zap.NewNop()).Enrich(context.Background(), testInput(nil))

	require.NoError(t, err)
	assert.Empty(t, enriched.Segment)
	assert.Nil(t, enriched.Device)
	assert.Nil(t, enriched.Geo)
}

func TestEnricher_Enrich_CustomerNotFound(t *testing.T) {
	reader := new(MockCustomerReader)
	reader.On("GetCustomer", mock.Anything, testCustomerID).Return(nil, domain.ErrCustomerNotFound)

	enriched, err := NewEnricher(reader, zap.NewNop()).Enrich(context.Background(), testInput(nil))

	assert.Nil(t, enriched)
	var eerr *domain.EnrichmentError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, testCustomerID, eerr.CustomerID)
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestEnricher_Enrich_LookupError(t *testing.T) {
	reader := new(MockCustomerReader)
	reader.On("GetCustomer", mock.Anything, testCustomerID).Return(nil, errors.New("connection refused"))

	_, err := NewEnricher(reader, zap.NewNop()).Enrich(context.Background(), testInput(nil))

	require.Error(t, err)
	var eerr *domain.EnrichmentError
	assert.False(t, errors.As(err, &eerr))
	assert.Contains(t, err.Error(), "failed to look up customer")
}

func TestEnricher_Using_SwapsReader(t *testing.T) {
	base := new(MockCustomerReader)
	txReader := new(MockCustomerReader)
	txReader.On("GetCustomer", mock.Anything, testCustomerID).
		Return(&domain.Customer{ID: testCustomerID, OrganizationID: testOrgID}, nil)

	_, err := NewEnricher(base, zap.NewNop()).Using(txReader).Enrich(context.Background(), testInput(nil))

	require.NoError(t, err)
	base.AssertNotCalled(t, "GetCustomer", mock.Anything, mock.Anything)
	txReader.AssertExpectations(t)
}

func TestNormalizeDevice_NestedBeatsFlattened(t *testing.T) {
	device := NormalizeDevice(map[string]any{
		"device":  map[string]any{"type": "mobile", "os": "ios"},
		"os":      "android",
		"browser": "safari",
		"version": 17,
	})

	assert.Equal(t, &domain.DeviceInfo{Type: "mobile", OS: "ios", Browser: "safari", Version: "17"}, device)
}

func TestNormalizeDevice_AliasPriority(t *testing.T) {
	device := NormalizeDevice(map[string]any{
		"device_type":     "tablet",
		"browser_name":    "chrome",
		"browser_version": "120.0.1",
		"platform":        "linux",
	})

	assert.Equal(t, &domain.DeviceInfo{Type: "tablet", OS: "linux", Browser: "chrome", Version: "120.0.1"}, device)
}

func TestNormalizeDevice_ScalarDevice(t *testing.T) {
	device := NormalizeDevice(map[string]any{"device": "kiosk"})

	assert.Equal(t, &domain.DeviceInfo{Type: "kiosk"}, device)
}

func TestNormalizeDevice_Absent(t *testing.T) {
	assert.Nil(t, NormalizeDevice(nil))
	assert.Nil(t, NormalizeDevice(map[string]any{"campaign": "spring"}))
	assert.Nil(t, NormalizeDevice(map[string]any{"browser": "   "}))
}

func TestNormalizeGeo_Nested(t *testing.T) {
	geo := NormalizeGeo(map[string]any{
		"geo": map[string]any{
			"country": "US",
			"region":  "CA",
			"city":    "San Francisco",
			"lat":     37.77,
			"lng":     "-122.42",
		},
	})

	assert.Equal(t, &domain.GeoLocation{
		Country:   "US",
		Region:    "CA",
		City:      "San Francisco",
		Latitude:  ptr(37.77),
		Longitude: ptr(-122.42),
	}, geo)
}

func TestNormalizeGeo_FlattenedAliases(t *testing.T) {
	geo := NormalizeGeo(map[string]any{
		"country_code": "FR",
		"state":        "IDF",
		"geo_city":     "Paris",
		"latitude":     json.Number("48.85"),
		"lon":          2,
	})

	assert.Equal(t, &domain.GeoLocation{
		Country:   "FR",
		Region:    "IDF",
		City:      "Paris",
		Latitude:  ptr(48.85),
		Longitude: ptr(2.0),
	}, geo)
}

func TestNormalizeGeo_TolerantCoercion(t *testing.T) {
	geo := NormalizeGeo(map[string]any{
		"location": map[string]any{"latitude": "north", "longitude": true},
		"country":  404,
	})

	assert.Equal(t, &domain.GeoLocation{Country: "404"}, geo)
}

func TestNormalizeGeo_Absent(t *testing.T) {
	assert.Nil(t, NormalizeGeo(map[string]any{"geo": "somewhere"}))
}

func TestCoercion(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		wantStr   string
		wantFloat float64
		wantOK    bool
	}{
		{name: "padded numeric string", value: " 12.5 ", wantStr: "12.5", wantFloat: 12.5, wantOK: true},
		{name: "json number", value: json.Number("7"), wantStr: "7", wantFloat: 7, wantOK: true},
		{name: "integer", value: int64(-3), wantStr: "-3", wantFloat: -3, wantOK: true},
		{name: "float", value: 0.25, wantStr: "0.25", wantFloat: 0.25, wantOK: true},
		{name: "bool is not a number", value: true, wantStr: "true"},
		{name: "word", value: "north", wantStr: "north"},
		{name: "nan string", value: "NaN", wantStr: "NaN"},
		{name: "blank", value: "   ", wantStr: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStr, toString(tt.value))
			f, ok := toFloat(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantFloat, f)
		})
	}
}
