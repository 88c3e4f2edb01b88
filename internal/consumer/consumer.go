package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/config"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/metrics"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/queue"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/repository"
)

const stageBufferSize = 100

// Consumer runs the results pipeline: receiver -> parser -> batch writer
type Consumer struct {
	receiver    *Receiver
	parser      *ParserStage
	batchWriter *BatchWriter
}

// NewConsumer wires the pipeline stages from cfg
func NewConsumer(
	cfg *config.Config,
	queueConsumer queue.QueueConsumer,
	results repository.ResultStore,
	analytics repository.AnalyticsRepository,
	invalidator CacheInvalidator,
	m *metrics.Metrics,
	log *zap.Logger,
) *Consumer {
	receiver := NewReceiver(queueConsumer, ReceiverConfig{
		MaxMessages:     cfg.Consumer.ReceiveMaxMessages,
		WaitTimeSeconds: cfg.Consumer.WaitTimeSeconds,
	}, log)

	parser := NewParserStage(queueConsumer, NewJSONResultParser(time.Now), m, log)

	batchWriter := NewBatchWriter(results, analytics, invalidator, m, BatchWriterConfig{
		MaxBatchSize: cfg.Consumer.BatchSizeMax,
		FlushTimeout: time.Duration(cfg.Consumer.BatchTimeoutSec) * time.Second,
	}, log)

	return &Consumer{
		receiver:    receiver,
		parser:      parser,
		batchWriter: batchWriter,
	}
}

// Start blocks until every stage has stopped. Cancel ctx to shut down.
func (c *Consumer) Start(ctx context.Context) error {
	messageChan := make(chan types.Message, stageBufferSize)
	envelopeChan := make(chan *Envelope, stageBufferSize)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		c.receiver.Start(ctx, messageChan)
	}()

	go func() {
		defer wg.Done()
		c.parser.Start(ctx, messageChan, envelopeChan)
	}()

	go func() {
		defer wg.Done()
		c.batchWriter.Start(ctx, envelopeChan)
	}()

	wg.Wait()
	return nil
}
