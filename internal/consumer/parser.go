package consumer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
)

// JSONResultParser implements MessageParser for the analysis worker's JSON write-backs
type JSONResultParser struct {
	now func() time.Time
}

// NewJSONResultParser creates a parser that stamps results missing processedAt with now
func NewJSONResultParser(now func() time.Time) *JSONResultParser {
	if now == nil {
		now = time.Now
	}
	return &JSONResultParser{now: now}
}

type resultMessage struct {
	InteractionID       string   `json:"interactionId"`
	Sentiment           string   `json:"sentiment"`
	SentimentConfidence *float64 `json:"sentimentConfidence"`
	ProcessedAt         string   `json:"processedAt"`
}

// Parse decodes and checks one message body
func (p *JSONResultParser) Parse(body []byte) (*domain.AnalysisResult, error) {
	var msg resultMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message body: %w", err)
	}

	raw := strings.TrimSpace(msg.InteractionID)
	if raw == "" {
		return nil, errors.New("interactionId is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("interactionId %q is not a UUID: %w", msg.InteractionID, err)
	}

	label := strings.ToLower(strings.TrimSpace(msg.Sentiment))
	if _, ok := domain.SentimentScore(label); !ok {
		return nil, fmt.Errorf("unknown sentiment label %q", msg.Sentiment)
	}

	confidence := 0.0
	if msg.SentimentConfidence != nil {
		confidence = *msg.SentimentConfidence
	}
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("sentimentConfidence %v out of range [0, 1]", confidence)
	}

	processedAt := p.now().UTC()
	if msg.ProcessedAt != "" {
		ts, err := parseProcessedAt(msg.ProcessedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid processedAt: %w", err)
		}
		processedAt = ts
	}

	return &domain.AnalysisResult{
		InteractionID:       id.String(),
		Sentiment:           label,
		SentimentConfidence: confidence,
		ProcessedAt:         processedAt,
	}, nil
}

// zonelessLayout covers workers that emit naive UTC timestamps
const zonelessLayout = "2006-01-02T15:04:05.999999999"

func parseProcessedAt(s string) (time.Time, error) {
	ts, err := domain.ParseTimestamp(s)
	if err == nil {
		return ts.UTC(), nil
	}
	if naive, naiveErr := time.Parse(zonelessLayout, strings.TrimSpace(s)); naiveErr == nil {
		return naive, nil
	}
	return time.Time{}, err
}
