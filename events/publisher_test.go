package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"attire-service/events"
	"attire-service/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTopicPublisher struct {
	mock.Mock
}

func (m *MockTopicPublisher) Publish(ctx context.Context, topicArn string, message []byte) error {
	args := m.Called(ctx, topicArn, message)
	return args.Error(0)
}

type MockKeyedPublisher struct {
	mock.Mock
}

func (m *MockKeyedPublisher) Publish(ctx context.Context, key string, message []byte) error {
	args := m.Called(ctx, key, message)
	return args.Error(0)
}

type funcPublisher func(context.Context, models.OrderEvent) error

func (f funcPublisher) Publish(ctx context.Context, e models.OrderEvent) error { return f(ctx, e) }

func sampleEvent() models.OrderEvent {
	order := &models.Order{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		Type:       models.OrderTypeRent,
		TotalPrice: decimal.NewFromInt(15000),
		PaidAmount: decimal.NewFromInt(5000),
	}
	return models.NewOrderEvent(models.EventOrderPlaced, order, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
}

func TestSNSPublisher_MarshalsEvent(t *testing.T) {
	client := new(MockTopicPublisher)
	event := sampleEvent()

	var body []byte
	client.On("Publish", mock.Anything, "arn:aws:sns:local:000000000000:orders", mock.Anything).
		Run(func(args mock.Arguments) { body = args.Get(2).([]byte) }).
		Return(nil)

	require.NoError(t, events.NewSNSPublisher(client, "arn:aws:sns:local:000000000000:orders").Publish(context.Background(), event))
	client.AssertExpectations(t)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "order.placed", decoded["event"])
	assert.Equal(t, event.OrderID.String(), decoded["order_id"])
}

func TestKafkaPublisher_KeysByOrder(t *testing.T) {
	producer := new(MockKeyedPublisher)
	event := sampleEvent()

	producer.On("Publish", mock.Anything, event.OrderID.String(), mock.Anything).Return(errors.New("broker down"))

	err := events.NewKafkaPublisher(producer).Publish(context.Background(), event)
	assert.EqualError(t, err, "broker down")
	producer.AssertExpectations(t)
}

func TestMulti_PublishesToAllAndJoinsErrors(t *testing.T) {
	first := errors.New("sns unavailable")
	second := errors.New("kafka unavailable")
	calls := 0
	target := func(err error) events.Publisher {
		return funcPublisher(func(context.Context, models.OrderEvent) error {
			calls++
			return err
		})
	}

	m := events.NewMulti(nil, target(first), target(nil), target(second))
	assert.Equal(t, 3, m.Len())

	err := m.Publish(context.Background(), sampleEvent())
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func TestMulti_Empty(t *testing.T) {
	assert.NoError(t, events.NewMulti(nil).Publish(context.Background(), sampleEvent()))
}
