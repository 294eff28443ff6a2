package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemRequest struct {
	ID    *uuid.UUID      `json:"id,omitempty"`
	Name  string          `json:"name" binding:"required,notblank"`
	Price decimal.Decimal `json:"price"`
}

// PlaceOrderRequest is the payload for creating an order.
type PlaceOrderRequest struct {
	CustomerID    uuid.UUID       `json:"customer_id" binding:"required"`
	Type          OrderType       `json:"type" binding:"required,oneof=rent sale"`
	Items         []ItemRequest   `json:"items" binding:"required,min=1,dive"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentNote   string          `json:"payment_note"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	CourierMethod CourierMethod   `json:"courier_method" binding:"required,oneof=pickme byhand bus"`
	WeddingDate   time.Time       `json:"wedding_date" binding:"required"`
	CourierDate   time.Time       `json:"courier_date" binding:"required"`
	ReturnDate    *time.Time      `json:"return_date"`
}

// EditOrderRequest carries optional edits; nil fields are left untouched.
type EditOrderRequest struct {
	Items         []ItemRequest    `json:"items" binding:"omitempty,dive"`
	DepositAmount *decimal.Decimal `json:"deposit_amount"`
	CourierMethod *CourierMethod   `json:"courier_method" binding:"omitempty,oneof=pickme byhand bus"`
	WeddingDate   *time.Time       `json:"wedding_date"`
	CourierDate   *time.Time       `json:"courier_date"`
	ReturnDate    *time.Time       `json:"return_date"`
}

type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// OrderFilter narrows order listings. Zero values mean "any".
type OrderFilter struct {
	Type        OrderType
	CustomerID  uuid.UUID
	Fulfillment FulfillmentState
	Search      string
}

// ToItems converts request items into order items, keeping known ids so
// return flags survive an edit.
func ToItems(reqs []ItemRequest, existing []OrderItem) []OrderItem {
	known := make(map[uuid.UUID]OrderItem, len(existing))
	for _, item := range existing {
		known[item.ID] = item
	}
	items := make([]OrderItem, 0, len(reqs))
	for _, r := range reqs {
		item := OrderItem{Name: r.Name, Price: r.Price}
		if r.ID != nil {
			if prev, ok := known[*r.ID]; ok {
				item.ID = prev.ID
				item.IsReturned = prev.IsReturned
			}
		}
		items = append(items, item)
	}
	return items
}
