package queue

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
)

// JobSink accepts analysis jobs for the external analysis worker
type JobSink interface {
	EnqueueAnalysis(ctx context.Context, job domain.AnalysisJob, priority domain.Priority) error
}

// QueueConsumer defines the interface for consuming messages from a queue
type QueueConsumer interface {
	ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error)
	QueueURL() string
}
