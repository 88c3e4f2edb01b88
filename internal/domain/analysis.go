package domain

import "time"

// Priority orders analysis jobs on the queue
type Priority int

const (
	PriorityLow Priority = iota
	PriorityHigh
)

// String returns the queue attribute value of p
func (p Priority) String() string {
	if p == PriorityHigh {
		return "high"
	}
	return "low"
}

// AnalysisJob is the payload handed to the external analysis worker
type AnalysisJob struct {
	InteractionID  string `json:"interactionId"`
	Content        string `json:"content"`
	CustomerID     string `json:"customerId"`
	OrganizationID string `json:"organizationId"`
}

// Sentiment labels produced by the analysis worker
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// SentimentScore maps a sentiment label onto [-1, 1]
func SentimentScore(label string) (float64, bool) {
	switch label {
	case SentimentPositive:
		return 1, true
	case SentimentNeutral:
		return 0, true
	case SentimentNegative:
		return -1, true
	}
	return 0, false
}

// AnalysisResult is the write-back published by the analysis worker
type AnalysisResult struct {
	InteractionID       string    `json:"interactionId"`
	Sentiment           string    `json:"sentiment"`
	SentimentConfidence float64   `json:"sentimentConfidence"`
	ProcessedAt         time.Time `json:"processedAt"`
}

// AnalyzedInteraction is an analyzed interaction mirrored into ClickHouse
type AnalyzedInteraction struct {
	InteractionID       string    `ch:"interaction_id"`
	CustomerID          string    `ch:"customer_id"`
	OrganizationID      string    `ch:"organization_id"`
	Channel             string    `ch:"channel"`
	EventType           string    `ch:"event_type"`
	Segment             string    `ch:"segment"`
	Country             string    `ch:"country"`
	DeviceType          string    `ch:"device_type"`
	Timestamp           time.Time `ch:"timestamp"`
	Sentiment           string    `ch:"sentiment"`
	SentimentScore      float64   `ch:"sentiment_score"`
	SentimentConfidence float64   `ch:"sentiment_confidence"`
	ProcessedAt         time.Time `ch:"processed_at"`
	Version             uint64    `ch:"version"`
}
