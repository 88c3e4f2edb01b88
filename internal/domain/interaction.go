package domain

import (
	"strings"
	"time"
)

// Channel is the touchpoint an interaction arrived through
type Channel string

const (
	ChannelWeb    Channel = "web"
	ChannelMobile Channel = "mobile"
	ChannelEmail  Channel = "email"
	ChannelChat   Channel = "chat"
	ChannelPhone  Channel = "phone"
)

// Channels lists every accepted channel
var Channels = []Channel{ChannelWeb, ChannelMobile, ChannelEmail, ChannelChat, ChannelPhone}

// Valid reports whether c is one of the accepted channels
func (c Channel) Valid() bool {
	for _, ch := range Channels {
		if c == ch {
			return true
		}
	}
	return false
}

// TextBased reports whether interactions on c must carry content
func (c Channel) TextBased() bool {
	return c.Valid() && c != ChannelPhone
}

// TimestampLayout is the wire format of interaction timestamps
const TimestampLayout = time.RFC3339Nano

// ParseTimestamp parses an interaction timestamp in RFC 3339 form
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, strings.TrimSpace(s))
}

// InteractionInput is a candidate interaction as received from a client
type InteractionInput struct {
	CustomerID string         `json:"customerId" validate:"required,canonical_uuid"`
	Timestamp  string         `json:"timestamp" validate:"required,rfc3339,not_future"`
	Channel    string         `json:"channel" validate:"required,oneof=web mobile email chat phone"`
	EventType  string         `json:"eventType" validate:"required,notblank"`
	Content    string         `json:"content,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// DeviceInfo is the normalized device descriptor of an interaction
type DeviceInfo struct {
	Type    string `json:"type,omitempty"`
	OS      string `json:"os,omitempty"`
	Browser string `json:"browser,omitempty"`
	Version string `json:"version,omitempty"`
}

// Empty reports whether no device field was resolved
func (d DeviceInfo) Empty() bool {
	return d == DeviceInfo{}
}

// GeoLocation is the normalized geolocation descriptor of an interaction
type GeoLocation struct {
	Country   string   `json:"country,omitempty"`
	Region    string   `json:"region,omitempty"`
	City      string   `json:"city,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Empty reports whether no geolocation field was resolved
func (g GeoLocation) Empty() bool {
	return g.Country == "" && g.Region == "" && g.City == "" && g.Latitude == nil && g.Longitude == nil
}

// EnrichedInteraction is a validated interaction with its resolved context.
// It is never persisted as-is.
type EnrichedInteraction struct {
	CustomerID     string
	OrganizationID string
	Timestamp      time.Time
	Channel        Channel
	EventType      string
	Content        string
	Metadata       map[string]any
	Segment        string
	Device         *DeviceInfo
	Geo            *GeoLocation
}

// Interaction represents an interaction stored in the relational store
type Interaction struct {
	ID                  string         `json:"id"`
	CustomerID          string         `json:"customerId"`
	OrganizationID      string         `json:"organizationId"`
	Timestamp           time.Time      `json:"timestamp"`
	Channel             Channel        `json:"channel"`
	EventType           string         `json:"eventType"`
	Content             string         `json:"content,omitempty"`
	Metadata            map[string]any `json:"metadata,omitempty"`
	Segment             string         `json:"segment,omitempty"`
	Device              *DeviceInfo    `json:"device,omitempty"`
	Geo                 *GeoLocation   `json:"geo,omitempty"`
	Sentiment           *string        `json:"sentiment,omitempty"`
	SentimentScore      *float64       `json:"sentimentScore,omitempty"`
	SentimentConfidence *float64       `json:"sentimentConfidence,omitempty"`
	ProcessedAt         *time.Time     `json:"processedAt,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
}

// BatchItemError records why one input of a batch was not committed
type BatchItemError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// BatchResult summarizes a batch ingestion across all chunks
type BatchResult struct {
	Total      int
	Successful int
	Failed     int
	Errors     []BatchItemError
}

// Merge adds the counts and errors of other to r
func (r *BatchResult) Merge(other BatchResult) {
	r.Total += other.Total
	r.Successful += other.Successful
	r.Failed += other.Failed
	r.Errors = append(r.Errors, other.Errors...)
}
