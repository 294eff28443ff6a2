package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"attire-service/models"

	"go.uber.org/zap"
)

var (
	ErrQueueFull   = errors.New("order event queue is full")
	ErrQueueClosed = errors.New("order event queue is closed")
)

const (
	DefaultQueueSize    = 256
	defaultQueueTimeout = 10 * time.Second
)

// Queue hands events to a single background worker so Publish never waits
// on a broker. Delivery failures are logged by the worker.
type Queue struct {
	target  Publisher
	events  chan models.OrderEvent
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.RWMutex
	closed  bool
	pending sync.WaitGroup
	done    chan struct{}
}

func NewQueue(target Publisher, size int, logger *zap.Logger) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &Queue{
		target:  target,
		events:  make(chan models.OrderEvent, size),
		timeout: defaultQueueTimeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Publish enqueues event and returns at once. A full queue drops the event.
func (q *Queue) Publish(_ context.Context, event models.OrderEvent) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.pending.Add(1)
	select {
	case q.events <- event:
		return nil
	default:
		q.pending.Done()
		q.logger.Warn("order event dropped",
			zap.String("event", string(event.Event)),
			zap.String("order_id", event.OrderID.String()),
		)
		return ErrQueueFull
	}
}

// Flush waits until every accepted event has been handed to the target.
func (q *Queue) Flush() {
	q.pending.Wait()
}

// Close stops accepting events and waits for the worker to drain.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	close(q.events)
	q.mu.Unlock()
	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)
	for event := range q.events {
		q.deliver(event)
		q.pending.Done()
	}
}

func (q *Queue) deliver(event models.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	if err := q.target.Publish(ctx, event); err != nil {
		q.logger.Warn("order event delivery failed",
			zap.String("event", string(event.Event)),
			zap.String("order_id", event.OrderID.String()),
			zap.Error(err),
		)
	}
}
