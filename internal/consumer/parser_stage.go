package consumer

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/metrics"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/queue"
)

// ParserStage turns queue messages into result envelopes. Malformed messages are deleted.
type ParserStage struct {
	consumer queue.QueueConsumer
	parser   MessageParser
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewParserStage creates the stage that decodes raw messages into results
func NewParserStage(consumer queue.QueueConsumer, parser MessageParser, m *metrics.Metrics, log *zap.Logger) *ParserStage {
	return &ParserStage{
		consumer: consumer,
		parser:   parser,
		metrics:  m,
		log:      log,
	}
}

// Start parses messages from in until in closes or ctx is done, then closes out
func (p *ParserStage) Start(ctx context.Context, in <-chan types.Message, out chan<- *Envelope) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Parser stage shutting down")
			return
		case msg, ok := <-in:
			if !ok {
				p.log.Info("Parser stage input channel closed")
				return
			}

			envelope := p.parseMessage(ctx, msg)
			if envelope == nil {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case out <- envelope:
			}
		}
	}
}

func (p *ParserStage) parseMessage(ctx context.Context, msg types.Message) *Envelope {
	messageID := aws.ToString(msg.MessageId)

	result, err := p.parser.Parse([]byte(aws.ToString(msg.Body)))
	if err != nil {
		p.log.Warn("Discarding malformed analysis result",
			zap.String("message_id", messageID),
			zap.Error(err))
		p.metrics.ResultsHandled(metrics.ResultInvalid, 1)
		if err := p.deleteMessage(ctx, msg); err != nil {
			p.log.Error("Failed to delete malformed message",
				zap.String("message_id", messageID),
				zap.Error(err))
		}
		return nil
	}

	ack := func(ctx context.Context) error {
		return p.deleteMessage(ctx, msg)
	}

	// Leaving the message alone lets the visibility timeout redeliver it
	nack := func(context.Context) error {
		return nil
	}

	return NewEnvelope(result, ack, nack)
}

func (p *ParserStage) deleteMessage(ctx context.Context, msg types.Message) error {
	_, err := p.consumer.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.consumer.QueueURL()),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		return err
	}
	p.log.Debug("Deleted message from results queue",
		zap.String("message_id", aws.ToString(msg.MessageId)))
	return nil
}
