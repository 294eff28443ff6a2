// Package events fans order events out to the configured brokers. Every
// publisher here is best effort from the caller's point of view.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"attire-service/models"

	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, event models.OrderEvent) error
}

// TopicPublisher matches pkg/aws.SNSPublisher.
type TopicPublisher interface {
	Publish(ctx context.Context, topicArn string, message []byte) error
}

// KeyedPublisher matches kafka.Producer.
type KeyedPublisher interface {
	Publish(ctx context.Context, key string, message []byte) error
}

type SNSPublisher struct {
	client   TopicPublisher
	topicArn string
}

func NewSNSPublisher(client TopicPublisher, topicArn string) *SNSPublisher {
	return &SNSPublisher{client: client, topicArn: topicArn}
}

func (p *SNSPublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.Event, err)
	}
	return p.client.Publish(ctx, p.topicArn, body)
}

type KafkaPublisher struct {
	producer KeyedPublisher
}

func NewKafkaPublisher(producer KeyedPublisher) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish keys messages by order id.
func (p *KafkaPublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.Event, err)
	}
	return p.producer.Publish(ctx, event.OrderID.String(), body)
}

// Multi publishes to every target and joins the failures.
type Multi struct {
	targets []Publisher
	logger  *zap.Logger
}

func NewMulti(logger *zap.Logger, targets ...Publisher) *Multi {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multi{targets: targets, logger: logger}
}

func (m *Multi) Len() int { return len(m.targets) }

func (m *Multi) Publish(ctx context.Context, event models.OrderEvent) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.Publish(ctx, event); err != nil {
			m.logger.Warn("order event publish failed",
				zap.String("event", string(event.Event)),
				zap.String("order_id", event.OrderID.String()),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
