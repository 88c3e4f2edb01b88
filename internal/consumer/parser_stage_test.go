package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/metrics"
)

// MockMessageParser is a mock implementation of MessageParser
type MockMessageParser struct {
	mock.Mock
}

func (m *MockMessageParser) Parse(body []byte) (*domain.AnalysisResult, error) {
	args := m.Called(body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func resultMessageFor(id, receipt string) types.Message {
	return types.Message{
		MessageId:     aws.String("msg-" + id),
		Body:          aws.String(`{"interactionId":"` + id + `"}`),
		ReceiptHandle: aws.String(receipt),
	}
}

func deleteFor(receipt string) interface{} {
	return mock.MatchedBy(func(in *sqs.DeleteMessageInput) bool {
		return aws.ToString(in.QueueUrl) == testQueueURL && aws.ToString(in.ReceiptHandle) == receipt
	})
}

func TestParserStage_Start_Success(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	mockConsumer.On("QueueURL").Return(testQueueURL)
	mockConsumer.On("DeleteMessage", mock.Anything, deleteFor("receipt-1")).
		Return(&sqs.DeleteMessageOutput{}, nil).Once()

	result := &domain.AnalysisResult{InteractionID: "1", Sentiment: domain.SentimentPositive, SentimentConfidence: 0.9}
	mockParser.On("Parse", []byte(`{"interactionId":"1"}`)).Return(result, nil)

	stage := NewParserStage(mockConsumer, mockParser, nil, zap.NewNop())

	in := make(chan types.Message, 1)
	out := make(chan *Envelope, 1)
	go stage.Start(context.Background(), in, out)

	in <- resultMessageFor("1", "receipt-1")
	close(in)

	envelope := <-out
	require.NotNil(t, envelope)
	assert.Same(t, result, envelope.Result)

	// nothing is deleted before the envelope is acked
	mockConsumer.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything)

	require.NoError(t, envelope.Nack(context.Background()))
	mockConsumer.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything)

	require.NoError(t, envelope.Ack(context.Background()))
	mockConsumer.AssertExpectations(t)

	_, open := <-out
	assert.False(t, open)
}

func TestParserStage_Start_MalformedMessageIsDeleted(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	mockConsumer.On("QueueURL").Return(testQueueURL)
	mockConsumer.On("DeleteMessage", mock.Anything, deleteFor("receipt-bad")).
		Return(&sqs.DeleteMessageOutput{}, nil).Once()

	good := &domain.AnalysisResult{InteractionID: "2", Sentiment: domain.SentimentNeutral}
	mockParser.On("Parse", []byte(`{"interactionId":"1"}`)).Return(nil, errors.New("unknown sentiment label"))
	mockParser.On("Parse", []byte(`{"interactionId":"2"}`)).Return(good, nil)

	m := metrics.New(prometheus.NewRegistry())
	stage := NewParserStage(mockConsumer, mockParser, m, zap.NewNop())

	in := make(chan types.Message, 2)
	out := make(chan *Envelope, 2)
	go stage.Start(context.Background(), in, out)

	in <- resultMessageFor("1", "receipt-bad")
	in <- resultMessageFor("2", "receipt-good")
	close(in)

	var envelopes []*Envelope
	for env := range out {
		envelopes = append(envelopes, env)
	}

	require.Len(t, envelopes, 1)
	assert.Equal(t, "2", envelopes[0].Result.InteractionID)
	mockConsumer.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisResultsApplied.WithLabelValues(metrics.ResultInvalid)))
}

func TestParserStage_Start_DeleteFailureDropsMessage(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	mockConsumer.On("QueueURL").Return(testQueueURL)
	mockConsumer.On("DeleteMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("access denied")).Once()
	mockParser.On("Parse", mock.Anything).Return(nil, errors.New("invalid json"))

	stage := NewParserStage(mockConsumer, mockParser, nil, zap.NewNop())

	in := make(chan types.Message, 1)
	out := make(chan *Envelope, 1)
	go stage.Start(context.Background(), in, out)

	in <- resultMessageFor("1", "receipt-1")
	close(in)

	_, open := <-out
	assert.False(t, open, "malformed message must not reach the batch writer")
	mockConsumer.AssertExpectations(t)
}

func TestParserStage_Start_AckPropagatesDeleteError(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	mockConsumer.On("QueueURL").Return(testQueueURL)
	mockConsumer.On("DeleteMessage", mock.Anything, mock.Anything).
		Return(nil, errors.New("receipt handle expired"))
	mockParser.On("Parse", mock.Anything).Return(&domain.AnalysisResult{InteractionID: "1"}, nil)

	stage := NewParserStage(mockConsumer, mockParser, nil, zap.NewNop())

	in := make(chan types.Message, 1)
	out := make(chan *Envelope, 1)
	go stage.Start(context.Background(), in, out)
	in <- resultMessageFor("1", "receipt-1")

	envelope := <-out
	err := envelope.Ack(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "receipt handle expired")
}

func TestParserStage_Start_ContextCancellation(t *testing.T) {
	stage := NewParserStage(new(MockQueueConsumer), new(MockMessageParser), nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan types.Message)
	out := make(chan *Envelope)
	done := make(chan struct{})
	go func() {
		stage.Start(ctx, in, out)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("parser stage did not stop")
	}
	_, open := <-out
	assert.False(t, open)
}
