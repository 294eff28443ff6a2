package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Producer struct {
	writer *kafka.Writer
	topic  string
	logger *zap.Logger
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}
	logger.Info("kafka producer initialized", zap.String("topic", topic), zap.Strings("brokers", brokers))
	return &Producer{writer: w, topic: topic, logger: logger}
}

// Publish writes one message keyed by key so events of one order stay ordered.
func (p *Producer) Publish(ctx context.Context, key string, message []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: message,
	})
}

func (p *Producer) Close() error {
	p.logger.Info("closing kafka producer", zap.String("topic", p.topic))
	return p.writer.Close()
}
