package services

import (
	"context"
	"sync"
	"time"

	apperrors "attire-service/common/errors"
	"attire-service/events"
	"attire-service/models"
	"attire-service/notifier"
	"attire-service/reminder"
	"attire-service/repository"
	"attire-service/status"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

type OrderServiceOptions struct {
	Publisher events.Publisher
	// ReevaluateOnEdit runs the reminder rules right after an edit that
	// moves the return date.
	ReevaluateOnEdit bool
	Now              func() time.Time
}

// OrderService is the only writer of orders. Every mutation validates on a
// copy, persists it and only then triggers notifications and events.
type OrderService struct {
	orders     repository.OrderRepository
	customers  reminder.CustomerDirectory
	store      *notifier.Store
	dispatcher *notifier.Dispatcher
	reminders  *reminder.Scheduler
	publisher  events.Publisher
	reevaluate bool
	now        func() time.Time
	logger     *zap.Logger

	mu sync.Mutex
}

type OrderPage struct {
	Orders []status.OrderView `json:"orders"`
	Meta   Page               `json:"meta"`
}

func NewOrderService(
	orders repository.OrderRepository,
	customers reminder.CustomerDirectory,
	store *notifier.Store,
	dispatcher *notifier.Dispatcher,
	reminders *reminder.Scheduler,
	logger *zap.Logger,
	opts OrderServiceOptions,
) *OrderService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:     orders,
		customers:  customers,
		store:      store,
		dispatcher: dispatcher,
		reminders:  reminders,
		publisher:  opts.Publisher,
		reevaluate: opts.ReevaluateOnEdit,
		now:        opts.Now,
		logger:     logger,
	}
}

// PlaceOrder creates an order for an existing customer. A positive paid
// amount becomes the first payment record.
func (s *OrderService) PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.Order, error) {
	var outbox []models.OrderEvent
	defer s.publish(ctx, &outbox)

	s.mu.Lock()
	defer s.mu.Unlock()

	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, mapError(err, "Failed to load customer")
	}

	now := s.now()
	order := &models.Order{
		ID:            uuid.New(),
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		Type:          req.Type,
		CourierMethod: req.CourierMethod,
		WeddingDate:   req.WeddingDate,
		CourierDate:   req.CourierDate,
		ReturnDate:    req.ReturnDate,
		Fulfillment:   models.FulfillmentActive,
		DepositState:  models.DepositNone,
		CreatedAt:     now,
	}
	if err := order.SetItems(models.ToItems(req.Items, nil)); err != nil {
		return nil, mapError(err, "")
	}
	if err := order.SetDeposit(req.DepositAmount); err != nil {
		return nil, mapError(err, "")
	}
	if req.PaidAmount.IsNegative() {
		return nil, apperrors.BadRequest(models.ErrNonPositiveAmount)
	}
	if req.PaidAmount.IsPositive() {
		if _, err := order.ApplyPayment(req.PaidAmount, req.PaymentNote, now); err != nil {
			return nil, mapError(err, "")
		}
	}
	if err := order.Validate(); err != nil {
		return nil, mapError(err, "")
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("failed to create order", zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, apperrors.Internal("Failed to create order", err)
	}
	saved := s.reload(ctx, order)

	s.logger.Info("order placed",
		zap.String("order_id", saved.ID.String()),
		zap.String("customer_id", saved.CustomerID.String()),
		zap.String("type", string(saved.Type)),
	)
	s.notify(models.TypeOrderPlaced, saved, customer.ContactNumber)
	outbox = append(outbox, models.NewOrderEvent(models.EventOrderPlaced, saved, now))
	if s.reminders != nil {
		s.reminders.EvaluatePlacement(ctx, saved, now)
	}
	return saved, nil
}

// EditOrder applies the non-nil fields of req to a non-cancelled order.
func (s *OrderService) EditOrder(ctx context.Context, id uuid.UUID, req *models.EditOrderRequest) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsCancelled() {
		return nil, apperrors.Conflict(models.ErrOrderCancelled)
	}

	returnMoved := false
	if req.Items != nil {
		if err := order.SetItems(models.ToItems(req.Items, order.Items)); err != nil {
			return nil, mapError(err, "")
		}
	}
	if req.DepositAmount != nil {
		if err := order.SetDeposit(*req.DepositAmount); err != nil {
			return nil, mapError(err, "")
		}
	}
	if req.CourierMethod != nil {
		order.CourierMethod = *req.CourierMethod
	}
	if req.WeddingDate != nil {
		order.WeddingDate = *req.WeddingDate
	}
	if req.CourierDate != nil {
		order.CourierDate = *req.CourierDate
	}
	if req.ReturnDate != nil {
		if !order.IsRental() {
			return nil, apperrors.BadRequest(models.ErrReturnDateOnSale)
		}
		returnMoved = order.ReturnDate == nil || !order.ReturnDate.Equal(*req.ReturnDate)
		rd := *req.ReturnDate
		order.ReturnDate = &rd
	}
	if err := order.Validate(); err != nil {
		return nil, mapError(err, "")
	}

	saved, err := s.persist(ctx, order, "Failed to update order")
	if err != nil {
		return nil, err
	}
	s.logger.Info("order edited", zap.String("order_id", saved.ID.String()))
	if s.reevaluate && returnMoved && s.reminders != nil {
		s.reminders.Evaluate(ctx, saved, s.now())
	}
	return saved, nil
}

// RecordPayment appends a payment of amount to the order's ledger.
func (s *OrderService) RecordPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal, note string) (*models.Order, error) {
	var outbox []models.OrderEvent
	defer s.publish(ctx, &outbox)

	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if _, err := order.ApplyPayment(amount, note, now); err != nil {
		return nil, mapError(err, "")
	}

	saved, err := s.persist(ctx, order, "Failed to record payment")
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment recorded",
		zap.String("order_id", saved.ID.String()),
		zap.String("amount", amount.StringFixed(2)),
	)
	event := models.NewOrderEvent(models.EventPaymentRecorded, saved, now)
	event.Amount = amount
	outbox = append(outbox, event)
	return saved, nil
}

func (s *OrderService) DispatchOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var outbox []models.OrderEvent
	defer s.publish(ctx, &outbox)

	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	changed, err := order.MarkDispatched(now)
	if err != nil {
		return nil, mapError(err, "")
	}
	if !changed {
		return order, nil
	}

	saved, err := s.persist(ctx, order, "Failed to dispatch order")
	if err != nil {
		return nil, err
	}
	s.logger.Info("order dispatched", zap.String("order_id", saved.ID.String()))
	outbox = append(outbox, models.NewOrderEvent(models.EventOrderDispatched, saved, now))
	return saved, nil
}

// CancelOrder is only allowed before dispatch. The cancelled order drops out
// of reminders and financial totals from the next read on.
func (s *OrderService) CancelOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var outbox []models.OrderEvent
	defer s.publish(ctx, &outbox)

	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	changed, err := order.MarkCancelled(now)
	if err != nil {
		return nil, mapError(err, "")
	}
	if !changed {
		return order, nil
	}

	saved, err := s.persist(ctx, order, "Failed to cancel order")
	if err != nil {
		return nil, err
	}
	s.logger.Info("order cancelled", zap.String("order_id", saved.ID.String()))
	s.notify(models.TypeOrderCancelled, saved, s.phone(ctx, saved.CustomerID))
	outbox = append(outbox, models.NewOrderEvent(models.EventOrderCancelled, saved, now))
	return saved, nil
}

func (s *OrderService) MarkItemReturned(ctx context.Context, orderID, itemID uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	changed, err := order.MarkItemReturned(itemID)
	if err != nil {
		return nil, mapError(err, "")
	}
	if !changed {
		return order, nil
	}
	saved, err := s.persist(ctx, order, "Failed to mark item returned")
	if err != nil {
		return nil, err
	}
	s.logger.Info("item returned",
		zap.String("order_id", saved.ID.String()),
		zap.String("item_id", itemID.String()),
	)
	return saved, nil
}

// RefundDeposit is one-way. Repeating it returns the order unchanged.
func (s *OrderService) RefundDeposit(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	changed, err := order.RefundDeposit(s.now())
	if err != nil {
		return nil, mapError(err, "")
	}
	if !changed {
		return order, nil
	}
	saved, err := s.persist(ctx, order, "Failed to refund deposit")
	if err != nil {
		return nil, err
	}
	s.logger.Info("deposit refunded", zap.String("order_id", saved.ID.String()))
	return saved, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.load(ctx, id)
}

// ListOrders returns one page of orders with their derived status.
func (s *OrderService) ListOrders(ctx context.Context, filter models.OrderFilter, page, limit int) (*OrderPage, error) {
	page, limit = clampPage(page, limit)
	orders, total, err := s.orders.FindAll(ctx, filter, page, limit)
	if err != nil {
		s.logger.Error("failed to list orders", zap.Error(err))
		return nil, apperrors.Internal("Failed to fetch orders", err)
	}
	return &OrderPage{
		Orders: status.Views(orders, s.now()),
		Meta:   newPage(page, limit, total),
	}, nil
}

// Now exposes the service clock so handlers derive status at the same instant.
func (s *OrderService) Now() time.Time { return s.now() }

func (s *OrderService) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "Failed to fetch order")
	}
	return order.Clone(), nil
}

func (s *OrderService) persist(ctx context.Context, order *models.Order, failure string) (*models.Order, error) {
	if err := s.orders.Update(ctx, order); err != nil {
		s.logger.Error(failure, zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, apperrors.Internal(failure, err)
	}
	return s.reload(ctx, order), nil
}

// reload prefers the stored row over the copy that was just written.
func (s *OrderService) reload(ctx context.Context, order *models.Order) *models.Order {
	saved, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		s.logger.Warn("reload after write failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		return order
	}
	return saved
}

func (s *OrderService) notify(kind models.NotificationType, order *models.Order, phone string) {
	if s.store == nil {
		return
	}
	n, err := notifier.Compose(kind, order, phone, s.now())
	if err != nil {
		s.logger.Error("failed to compose notification",
			zap.String("order_id", order.ID.String()),
			zap.String("type", string(kind)),
			zap.Error(err),
		)
		return
	}
	n = s.store.Record(n)
	if kind.Immediate() && s.dispatcher != nil {
		s.dispatcher.Dispatch(n)
	}
}

// publish sends the events a mutation queued. It runs after s.mu is
// released so a slow broker never holds up other mutations.
func (s *OrderService) publish(ctx context.Context, outbox *[]models.OrderEvent) {
	if s.publisher == nil {
		return
	}
	for _, event := range *outbox {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		if err := s.publisher.Publish(pubCtx, event); err != nil {
			s.logger.Warn("order event not published",
				zap.String("event", string(event.Event)),
				zap.String("order_id", event.OrderID.String()),
				zap.Error(err),
			)
		}
		cancel()
	}
}

func (s *OrderService) phone(ctx context.Context, customerID uuid.UUID) string {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		s.logger.Warn("customer lookup failed", zap.String("customer_id", customerID.String()), zap.Error(err))
		return ""
	}
	return customer.ContactNumber
}
