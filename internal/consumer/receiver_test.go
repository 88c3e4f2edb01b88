package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testQueueURL = "http://localhost:9324/000000000000/interaction-analysis-results"

// MockQueueConsumer is a mock implementation of queue.QueueConsumer
type MockQueueConsumer struct {
	mock.Mock
}

func (m *MockQueueConsumer) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockQueueConsumer) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.DeleteMessageOutput), args.Error(1)
}

func (m *MockQueueConsumer) QueueURL() string {
	args := m.Called()
	return args.String(0)
}

// idlePolls answers every further receive with an empty long poll
func idlePolls(m *MockQueueConsumer) {
	m.On("ReceiveMessages", mock.Anything, mock.Anything).
		Return(&sqs.ReceiveMessageOutput{}, nil).
		Run(func(mock.Arguments) { time.Sleep(5 * time.Millisecond) }).
		Maybe()
}

func TestReceiver_Start_ForwardsMessages(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockConsumer.On("QueueURL").Return(testQueueURL)

	messages := []types.Message{
		{MessageId: aws.String("msg-1"), Body: aws.String(`{"interactionId":"1"}`)},
		{MessageId: aws.String("msg-2"), Body: aws.String(`{"interactionId":"2"}`)},
	}
	mockConsumer.On("ReceiveMessages", mock.Anything, mock.MatchedBy(func(in *sqs.ReceiveMessageInput) bool {
		return aws.ToString(in.QueueUrl) == testQueueURL &&
			in.MaxNumberOfMessages == 5 &&
			in.WaitTimeSeconds == 1
	})).Return(&sqs.ReceiveMessageOutput{Messages: messages}, nil).Once()
	idlePolls(mockConsumer)

	receiver := NewReceiver(mockConsumer, ReceiverConfig{MaxMessages: 5, WaitTimeSeconds: 1}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan types.Message, 10)
	go receiver.Start(ctx, out)

	for _, want := range []string{"msg-1", "msg-2"} {
		select {
		case msg := <-out:
			assert.Equal(t, want, aws.ToString(msg.MessageId))
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestReceiver_Start_RetriesAfterReceiveError(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockConsumer.On("QueueURL").Return(testQueueURL)
	mockConsumer.On("ReceiveMessages", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused")).Once()
	mockConsumer.On("ReceiveMessages", mock.Anything, mock.Anything).
		Return(&sqs.ReceiveMessageOutput{Messages: []types.Message{{MessageId: aws.String("msg-1")}}}, nil).Once()
	idlePolls(mockConsumer)

	receiver := NewReceiver(mockConsumer, ReceiverConfig{MaxMessages: 10, WaitTimeSeconds: 1}, zap.NewNop())
	receiver.retryDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan types.Message, 1)
	go receiver.Start(ctx, out)

	select {
	case msg := <-out:
		assert.Equal(t, "msg-1", aws.ToString(msg.MessageId))
	case <-time.After(time.Second):
		t.Fatal("receiver did not recover from the receive error")
	}
}

func TestReceiver_Start_ContextCancellationClosesOutput(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockConsumer.On("QueueURL").Return(testQueueURL)
	idlePolls(mockConsumer)

	receiver := NewReceiver(mockConsumer, ReceiverConfig{MaxMessages: 10}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan types.Message)
	done := make(chan struct{})
	go func() {
		receiver.Start(ctx, out)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("receiver did not stop")
	}
	_, ok := <-out
	assert.False(t, ok)
}

func TestReceiver_Start_BlockedSendStopsOnCancel(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockConsumer.On("QueueURL").Return(testQueueURL)
	mockConsumer.On("ReceiveMessages", mock.Anything, mock.Anything).
		Return(&sqs.ReceiveMessageOutput{Messages: []types.Message{
			{MessageId: aws.String("msg-1")},
			{MessageId: aws.String("msg-2")},
		}}, nil).Once()
	idlePolls(mockConsumer)

	receiver := NewReceiver(mockConsumer, ReceiverConfig{MaxMessages: 10}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan types.Message) // unbuffered and never drained
	done := make(chan struct{})
	go func() {
		receiver.Start(ctx, out)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("receiver stayed blocked on a full output")
	}
}

func TestNewReceiver_ClampsMaxMessages(t *testing.T) {
	tests := []struct {
		in   int32
		want int32
	}{
		{in: 0, want: 10},
		{in: 25, want: 10},
		{in: 4, want: 4},
	}
	for _, tt := range tests {
		r := NewReceiver(new(MockQueueConsumer), ReceiverConfig{MaxMessages: tt.in}, zap.NewNop())
		require.Equal(t, tt.want, r.config.MaxMessages)
	}
}
