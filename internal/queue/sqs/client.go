package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	envConfig "github.com/cosmium2004/Customer-Insights-sub000/internal/config"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
)

// api is the subset of the SQS client used here
type api interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Client publishes analysis jobs and consumes analysis results
type Client struct {
	client api
	config envConfig.SQS
	log    *zap.Logger
}

// NewClient creates a new SQS client
func NewClient(ctx context.Context, SQSConfig envConfig.SQS, log *zap.Logger) (*Client, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(SQSConfig.Region),
		config.WithRetryMaxAttempts(SQSConfig.MaxAttempts),
	}

	var clientOpts []func(*sqs.Options)

	// Local development with ElasticMQ
	if SQSConfig.Endpoint != "" {
		log.Info("Configuring SQS for local development",
			zap.String("endpoint", SQSConfig.Endpoint))
		configOpts = append(configOpts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "")))

		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(SQSConfig.Endpoint)
		})
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("SQS client created",
		zap.String("region", SQSConfig.Region),
		zap.String("analysis_queue_url", SQSConfig.AnalysisQueueURL),
		zap.String("analysis_batch_queue_url", SQSConfig.BatchQueueURL()),
		zap.String("results_queue_url", SQSConfig.ResultsQueueURL))

	return newClient(sqs.NewFromConfig(cfg, clientOpts...), SQSConfig, log), nil
}

func newClient(client api, cfg envConfig.SQS, log *zap.Logger) *Client {
	return &Client{client: client, config: cfg, log: log}
}

// ReceiveMessages receives messages from SQS
func (c *Client) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	return c.client.ReceiveMessage(ctx, input)
}

// DeleteMessage deletes a message from SQS
func (c *Client) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	return c.client.DeleteMessage(ctx, input)
}

// QueueURL returns the analysis results queue consumed by the result sink
func (c *Client) QueueURL() string {
	return c.config.ResultsQueueURL
}

// EnqueueAnalysis sends job to the analysis queue. Low-priority jobs go to the batch queue.
func (c *Client) EnqueueAnalysis(ctx context.Context, job domain.AnalysisJob, priority domain.Priority) error {
	queueURL := c.config.AnalysisQueueURL
	if priority == domain.PriorityLow {
		queueURL = c.config.BatchQueueURL()
	}
	if queueURL == "" {
		return errors.New("no analysis queue configured")
	}

	bodyJSON, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis job: %w", err)
	}

	_, err = c.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(bodyJSON)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"Priority": {
				DataType:    aws.String("String"),
				StringValue: aws.String(priority.String()),
			},
			"OrganizationId": {
				DataType:    aws.String("String"),
				StringValue: aws.String(job.OrganizationID),
			},
		},
	})
	if err != nil {
		c.log.Error("Failed to send analysis job to SQS",
			zap.String("interaction_id", job.InteractionID),
			zap.Stringer("priority", priority),
			zap.Error(err))
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	c.log.Debug("Analysis job enqueued",
		zap.String("interaction_id", job.InteractionID),
		zap.Stringer("priority", priority))

	return nil
}
