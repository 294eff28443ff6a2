package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"attire-service/models"
	"attire-service/sender"

	"go.uber.org/zap"
)

const (
	DefaultSendDelay = 1500 * time.Millisecond
	sendTimeout      = 10 * time.Second

	shutdownReason = "service shutting down"
)

// Dispatcher performs the delayed, best-effort delivery of immediate
// notifications. A scheduled send cannot be cancelled.
type Dispatcher struct {
	store  *Store
	sender sender.Sender
	delay  time.Duration
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(store *Store, s sender.Sender, delay time.Duration, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay < 0 {
		delay = 0
	}
	return &Dispatcher{store: store, sender: s, delay: delay, logger: logger}
}

// Dispatch returns immediately; delivery happens after the configured delay.
// After Close the notification is marked failed instead.
func (d *Dispatcher) Dispatch(n models.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("notification dispatched after shutdown",
			zap.String("notification_id", n.ID.String()),
			zap.String("type", string(n.Type)),
		)
		if err := d.store.MarkAsFailed(n.ID, shutdownReason); err != nil {
			d.logger.Error("failed to mark notification as failed", zap.Error(err))
		}
		return
	}
	d.wg.Add(1)
	time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.deliver(n)
	})
}

// Wait blocks until every scheduled send has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting sends and waits for the scheduled ones.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) deliver(n models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	result, err := d.send(ctx, n)
	if err != nil {
		d.logger.Warn("notification delivery failed",
			zap.String("notification_id", n.ID.String()),
			zap.String("type", string(n.Type)),
			zap.Error(err),
		)
		if markErr := d.store.MarkAsFailed(n.ID, err.Error()); markErr != nil {
			d.logger.Error("failed to mark notification as failed", zap.Error(markErr))
		}
		return
	}

	if err := d.store.MarkAsSent(n.ID, result.SentAt); err != nil {
		d.logger.Error("failed to mark notification as sent", zap.Error(err))
		return
	}
	d.logger.Info("notification sent",
		zap.String("notification_id", n.ID.String()),
		zap.String("type", string(n.Type)),
		zap.String("message_id", result.MessageID),
	)
}

func (d *Dispatcher) send(ctx context.Context, n models.Notification) (result sender.SendResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panicked: %v", r)
		}
	}()
	result, err = d.sender.Send(ctx, n)
	if err == nil && result.SentAt.IsZero() {
		result.SentAt = time.Now()
	}
	return result, err
}
