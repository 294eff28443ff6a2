// Package reminder decides which return, payment and overdue reminders are
// due for active rental orders. It keeps no per-order state: every decision
// is a function of the order, the notification log and the current time.
package reminder

import (
	"context"
	"sync"
	"time"

	"attire-service/models"
	"attire-service/notifier"
	"attire-service/status"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultInterval = time.Hour

// OrderSource lists the orders a tick has to look at.
type OrderSource interface {
	FindActiveRentals(ctx context.Context) ([]models.Order, error)
}

// CustomerDirectory resolves contact details. A missing customer is not an
// error for the scheduler; the reminder is still recorded without a phone.
type CustomerDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type Scheduler struct {
	orders     OrderSource
	customers  CustomerDirectory
	store      *notifier.Store
	dispatcher *notifier.Dispatcher
	interval   time.Duration
	now        func() time.Time
	logger     *zap.Logger

	// mu makes the log scan and the following Record one step, so two
	// evaluations of the same order cannot both miss each other's entry.
	mu sync.Mutex
}

func NewScheduler(
	orders OrderSource,
	customers CustomerDirectory,
	store *notifier.Store,
	dispatcher *notifier.Dispatcher,
	interval time.Duration,
	now func() time.Time,
	logger *zap.Logger,
) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		orders:     orders,
		customers:  customers,
		store:      store,
		dispatcher: dispatcher,
		interval:   interval,
		now:        now,
		logger:     logger,
	}
}

// Evaluate records the reminders due for order at now and returns them.
// Cancelled orders, sales and rentals without a return date yield nothing.
func (s *Scheduler) Evaluate(ctx context.Context, order *models.Order, now time.Time) []models.Notification {
	return s.evaluate(ctx, order, now, true)
}

// EvaluatePlacement is the check run once when an order is placed. Only a
// rental with an outstanding balance is looked at, and only the due-tomorrow
// reminders apply; overdue reminders wait for the next tick.
func (s *Scheduler) EvaluatePlacement(ctx context.Context, order *models.Order, now time.Time) []models.Notification {
	if order == nil || !order.Balance().IsPositive() {
		return nil
	}
	return s.evaluate(ctx, order, now, false)
}

func (s *Scheduler) evaluate(ctx context.Context, order *models.Order, now time.Time, withOverdue bool) []models.Notification {
	if order == nil || order.IsCancelled() || !order.IsRental() || order.ReturnDate == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sentToday := s.createdOn(order.ID, now)
	unreturned := order.HasUnreturnedItems()
	balanceDue := order.Balance().IsPositive()

	var due []models.NotificationType
	if status.IsTomorrow(*order.ReturnDate, now) {
		if unreturned && !sentToday[models.TypeReturnReminder] {
			due = append(due, models.TypeReturnReminder)
		}
		if balanceDue && !sentToday[models.TypePaymentReminder] {
			due = append(due, models.TypePaymentReminder)
		}
	}
	if withOverdue && status.IsBeforeToday(*order.ReturnDate, now) && (unreturned || balanceDue) &&
		!sentToday[models.TypeOverdueReminder] {
		due = append(due, models.TypeOverdueReminder)
	}
	if len(due) == 0 {
		return nil
	}

	phone := s.phone(ctx, order.CustomerID)
	recorded := make([]models.Notification, 0, len(due))
	for _, kind := range due {
		n, err := notifier.Compose(kind, order, phone, now)
		if err != nil {
			s.logger.Error("failed to compose reminder",
				zap.String("order_id", order.ID.String()),
				zap.String("type", string(kind)),
				zap.Error(err),
			)
			continue
		}
		n = s.store.Record(n)
		if kind.Immediate() && s.dispatcher != nil {
			s.dispatcher.Dispatch(n)
		}
		recorded = append(recorded, n)
	}
	return recorded
}

// Tick evaluates every active rental once and returns how many reminders
// were recorded.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	orders, err := s.orders.FindActiveRentals(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	created := 0
	for i := range orders {
		if ctx.Err() != nil {
			break
		}
		created += len(s.Evaluate(ctx, &orders[i], now))
	}
	s.logger.Info("reminder tick finished",
		zap.Int("orders", len(orders)),
		zap.Int("reminders", created),
	)
	return created, nil
}

// Run ticks once immediately and then on every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("reminder scheduler started", zap.Duration("interval", s.interval))
	s.runTick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return nil
		case <-ticker.C:
			s.runTick(ctx)
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	if _, err := s.Tick(ctx); err != nil {
		s.logger.Error("reminder tick failed", zap.Error(err))
	}
}

// createdOn scans the log for reminders of this order created on now's
// calendar day. The key is (order, type, day).
func (s *Scheduler) createdOn(orderID uuid.UUID, now time.Time) map[models.NotificationType]bool {
	seen := make(map[models.NotificationType]bool)
	for _, n := range s.store.List(false) {
		if n.OrderID == orderID && status.SameDay(n.CreatedAt, now) {
			seen[n.Type] = true
		}
	}
	return seen
}

func (s *Scheduler) phone(ctx context.Context, customerID uuid.UUID) string {
	if s.customers == nil {
		return ""
	}
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil || customer == nil {
		s.logger.Warn("customer lookup failed for reminder",
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
		return ""
	}
	return customer.ContactNumber
}
