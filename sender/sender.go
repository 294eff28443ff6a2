package sender

import (
	"context"
	"fmt"
	"time"

	"attire-service/models"
)

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers one rendered notification to the customer.
type Sender interface {
	Send(ctx context.Context, n models.Notification) (SendResult, error)
}

// Simulated stands in for an SMS gateway. It never talks to the network.
type Simulated struct {
	now func() time.Time
}

func NewSimulated(now func() time.Time) *Simulated {
	if now == nil {
		now = time.Now
	}
	return &Simulated{now: now}
}

func (s *Simulated) Send(ctx context.Context, n models.Notification) (SendResult, error) {
	if err := ctx.Err(); err != nil {
		return SendResult{}, fmt.Errorf("simulated send aborted: %w", err)
	}
	sentAt := s.now()
	return SendResult{
		MessageID: fmt.Sprintf("sim-%d", sentAt.UnixNano()),
		SentAt:    sentAt,
	}, nil
}
