package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderEventType string

const (
	EventOrderPlaced     OrderEventType = "order.placed"
	EventOrderCancelled  OrderEventType = "order.cancelled"
	EventOrderDispatched OrderEventType = "order.dispatched"
	EventPaymentRecorded OrderEventType = "payment.recorded"
)

// OrderEvent is published after a mutation has been persisted
type OrderEvent struct {
	Event      OrderEventType  `json:"event"`
	OrderID    uuid.UUID       `json:"order_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Type       OrderType       `json:"type"`
	TotalPrice decimal.Decimal `json:"total_price"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Amount     decimal.Decimal `json:"amount,omitempty"` // payment.recorded only
	Timestamp  time.Time       `json:"timestamp"`
}

// NewOrderEvent snapshots order for an event of the given kind.
func NewOrderEvent(kind OrderEventType, order *Order, at time.Time) OrderEvent {
	return OrderEvent{
		Event:      kind,
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Type:       order.Type,
		TotalPrice: order.TotalPrice,
		PaidAmount: order.PaidAmount,
		Timestamp:  at,
	}
}
