package consumer

import (
	"context"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
)

// Envelope carries one parsed result together with the callbacks that settle its message
type Envelope struct {
	Result *domain.AnalysisResult
	ack    func(context.Context) error
	nack   func(context.Context) error
}

// NewEnvelope pairs a parsed result with the callbacks that settle its message
func NewEnvelope(result *domain.AnalysisResult, ack, nack func(context.Context) error) *Envelope {
	return &Envelope{
		Result: result,
		ack:    ack,
		nack:   nack,
	}
}

// Ack settles the message as processed. A nil callback is a no-op.
func (e *Envelope) Ack(ctx context.Context) error {
	if e.ack == nil {
		return nil
	}
	return e.ack(ctx)
}

// Nack returns the message for redelivery. A nil callback is a no-op.
func (e *Envelope) Nack(ctx context.Context) error {
	if e.nack == nil {
		return nil
	}
	return e.nack(ctx)
}
