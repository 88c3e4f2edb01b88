package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	envConfig "github.com/cosmium2004/Customer-Insights-sub000/internal/config"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) SendMessage(ctx context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.SendMessageOutput), args.Error(1)
}

func (m *MockAPI) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockAPI) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(*sqs.DeleteMessageOutput), args.Error(1)
}

var testJob = domain.AnalysisJob{
	InteractionID:  "i-1",
	Content:        "great product",
	CustomerID:     "c-1",
	OrganizationID: "o-1",
}

func TestClient_EnqueueAnalysis_HighPriority(t *testing.T) {
	mockAPI := new(MockAPI)
	client := newClient(mockAPI, envConfig.SQS{
		AnalysisQueueURL:      "http://queue/analysis",
		AnalysisBatchQueueURL: "http://queue/analysis-batch",
	}, zap.NewNop())

	mockAPI.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
		return aws.ToString(in.QueueUrl) == "http://queue/analysis" &&
			aws.ToString(in.MessageAttributes["Priority"].StringValue) == "high"
	})).Return(&sqs.SendMessageOutput{}, nil).Once()

	err := client.EnqueueAnalysis(context.Background(), testJob, domain.PriorityHigh)

	require.NoError(t, err)
	mockAPI.AssertExpectations(t)

	in := mockAPI.Calls[0].Arguments.Get(1).(*sqs.SendMessageInput)
	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &body))
	assert.Equal(t, "i-1", body["interactionId"])
	assert.Equal(t, "great product", body["content"])
	assert.Equal(t, "o-1", body["organizationId"])
}

func TestClient_EnqueueAnalysis_LowPriorityUsesBatchQueue(t *testing.T) {
	mockAPI := new(MockAPI)
	client := newClient(mockAPI, envConfig.SQS{
		AnalysisQueueURL:      "http://queue/analysis",
		AnalysisBatchQueueURL: "http://queue/analysis-batch",
	}, zap.NewNop())

	mockAPI.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
		return aws.ToString(in.QueueUrl) == "http://queue/analysis-batch" &&
			aws.ToString(in.MessageAttributes["Priority"].StringValue) == "low"
	})).Return(&sqs.SendMessageOutput{}, nil).Once()

	err := client.EnqueueAnalysis(context.Background(), testJob, domain.PriorityLow)

	assert.NoError(t, err)
	mockAPI.AssertExpectations(t)
}

func TestClient_EnqueueAnalysis_LowPriorityFallsBackToAnalysisQueue(t *testing.T) {
	mockAPI := new(MockAPI)
	client := newClient(mockAPI, envConfig.SQS{AnalysisQueueURL: "http://queue/analysis"}, zap.NewNop())

	mockAPI.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
		return aws.ToString(in.QueueUrl) == "http://queue/analysis"
	})).Return(&sqs.SendMessageOutput{}, nil).Once()

	assert.NoError(t, client.EnqueueAnalysis(context.Background(), testJob, domain.PriorityLow))
	mockAPI.AssertExpectations(t)
}

func TestClient_EnqueueAnalysis_SendError(t *testing.T) {
	mockAPI := new(MockAPI)
	client := newClient(mockAPI, envConfig.SQS{AnalysisQueueURL: "http://queue/analysis"}, zap.NewNop())

	mockAPI.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()

	err := client.EnqueueAnalysis(context.Background(), testJob, domain.PriorityHigh)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send message to SQS")
}

func TestClient_EnqueueAnalysis_NoQueueConfigured(t *testing.T) {
	mockAPI := new(MockAPI)
	client := newClient(mockAPI, envConfig.SQS{}, zap.NewNop())

	err := client.EnqueueAnalysis(context.Background(), testJob, domain.PriorityHigh)

	assert.Error(t, err)
	mockAPI.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestClient_QueueURL(t *testing.T) {
	client := newClient(new(MockAPI), envConfig.SQS{ResultsQueueURL: "http://queue/results"}, zap.NewNop())

	assert.Equal(t, "http://queue/results", client.QueueURL())
}
