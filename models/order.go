package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeRent OrderType = "rent"
	OrderTypeSale OrderType = "sale"
)

type CourierMethod string

const (
	CourierPickMe CourierMethod = "pickme"
	CourierByHand CourierMethod = "byhand"
	CourierBus    CourierMethod = "bus"
)

// FulfillmentState replaces the isDispatched/isCancelled flag pair. An order
// is in exactly one state and only ever leaves FulfillmentActive.
type FulfillmentState string

const (
	FulfillmentActive     FulfillmentState = "active"
	FulfillmentDispatched FulfillmentState = "dispatched"
	FulfillmentCancelled  FulfillmentState = "cancelled"
)

type DepositState string

const (
	DepositNone     DepositState = "none"
	DepositHeld     DepositState = "held"
	DepositRefunded DepositState = "refunded"
)

// OrderItem is owned by exactly one order.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	IsReturned bool            `gorm:"not null;default:false" json:"is_returned"`
}

// PaymentRecord is an immutable ledger entry.
type PaymentRecord struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Amount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Date    time.Time       `gorm:"not null" json:"date"`
	Note    string          `gorm:"type:varchar(512)" json:"note,omitempty"`
}

type Order struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"customer_id"`
	CustomerName      string           `gorm:"type:varchar(255);not null" json:"customer_name"`
	Type              OrderType        `gorm:"type:varchar(10);not null;index" json:"type"`
	Items             []OrderItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice        decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"total_price"`
	PaidAmount        decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"paid_amount"`
	PaymentRecords    []PaymentRecord  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payment_records"`
	DepositAmount     decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0" json:"deposit_amount"`
	DepositState      DepositState     `gorm:"type:varchar(10);not null;default:'none'" json:"deposit_state"`
	DepositRefundedAt *time.Time       `json:"deposit_refunded_at,omitempty"`
	CourierMethod     CourierMethod    `gorm:"type:varchar(10);not null" json:"courier_method"`
	WeddingDate       time.Time        `gorm:"not null" json:"wedding_date"`
	CourierDate       time.Time        `gorm:"not null;index" json:"courier_date"`
	ReturnDate        *time.Time       `gorm:"index" json:"return_date,omitempty"`
	Fulfillment       FulfillmentState `gorm:"type:varchar(12);not null;default:'active';index" json:"fulfillment"`
	DispatchedAt      *time.Time       `json:"dispatched_at,omitempty"`
	CancelledAt       *time.Time       `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// ComputeTotal sums item prices.
func ComputeTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total
}

// ValidatePayment checks amount against the order's outstanding balance.
func ValidatePayment(order *Order, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if amount.GreaterThan(order.Balance()) {
		return ErrExceedsBalance
	}
	return nil
}

// Balance is always derived from total and paid amount.
func (o *Order) Balance() decimal.Decimal {
	return o.TotalPrice.Sub(o.PaidAmount)
}

func (o *Order) IsRental() bool          { return o.Type == OrderTypeRent }
func (o *Order) IsDispatched() bool      { return o.Fulfillment == FulfillmentDispatched }
func (o *Order) IsCancelled() bool       { return o.Fulfillment == FulfillmentCancelled }
func (o *Order) IsDepositRefunded() bool { return o.DepositState == DepositRefunded }

// HasUnreturnedItems reports whether any item of a rental is still out.
func (o *Order) HasUnreturnedItems() bool {
	for _, item := range o.Items {
		if !item.IsReturned {
			return true
		}
	}
	return false
}

// SetItems replaces the item list and recomputes the total.
func (o *Order) SetItems(items []OrderItem) error {
	if len(items) == 0 {
		return ErrNoValidItems
	}
	cleaned := make([]OrderItem, 0, len(items))
	for _, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			return ErrBlankItemName
		}
		if item.Price.IsNegative() {
			return ErrNegativePrice
		}
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = o.ID
		if !o.IsRental() {
			item.IsReturned = false
		}
		cleaned = append(cleaned, item)
	}
	total := ComputeTotal(cleaned)
	if total.LessThan(o.PaidAmount) {
		return ErrTotalBelowPaid
	}
	o.Items = cleaned
	o.TotalPrice = total
	return nil
}

// ApplyPayment appends a new ledger entry and raises PaidAmount by exactly amount.
func (o *Order) ApplyPayment(amount decimal.Decimal, note string, at time.Time) (PaymentRecord, error) {
	if o.IsCancelled() {
		return PaymentRecord{}, ErrOrderCancelled
	}
	if err := ValidatePayment(o, amount); err != nil {
		return PaymentRecord{}, err
	}
	record := PaymentRecord{
		ID:      uuid.New(),
		OrderID: o.ID,
		Amount:  amount,
		Date:    at,
		Note:    strings.TrimSpace(note),
	}
	o.PaymentRecords = append(o.PaymentRecords, record)
	o.PaidAmount = o.PaidAmount.Add(amount)
	return record, nil
}

// Validate checks the shape rules that do not depend on other orders.
func (o *Order) Validate() error {
	switch o.Type {
	case OrderTypeRent, OrderTypeSale:
	default:
		return ErrInvalidOrderType
	}
	switch o.CourierMethod {
	case CourierPickMe, CourierByHand, CourierBus:
	default:
		return ErrInvalidCourier
	}
	if len(o.Items) == 0 {
		return ErrNoValidItems
	}
	if o.IsRental() && o.ReturnDate == nil {
		return ErrReturnDateRequired
	}
	if !o.IsRental() {
		if o.ReturnDate != nil {
			return ErrReturnDateOnSale
		}
		if !o.DepositAmount.IsZero() {
			return ErrDepositOnSale
		}
	}
	if o.DepositAmount.IsNegative() {
		return ErrNegativeDeposit
	}
	if o.PaidAmount.IsNegative() || o.PaidAmount.GreaterThan(o.TotalPrice) {
		return ErrExceedsBalance
	}
	return nil
}

// SetDeposit updates the deposit while it is still held. A refunded deposit
// is frozen.
func (o *Order) SetDeposit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeDeposit
	}
	if !o.IsRental() {
		if !amount.IsZero() {
			return ErrDepositOnSale
		}
		o.DepositState = DepositNone
		return nil
	}
	if o.IsDepositRefunded() {
		if amount.Equal(o.DepositAmount) {
			return nil
		}
		return ErrInvalidTransition
	}
	o.DepositAmount = amount
	if amount.IsPositive() {
		o.DepositState = DepositHeld
	} else {
		o.DepositState = DepositNone
	}
	return nil
}

// MarkDispatched moves an active order to dispatched. It returns false when
// the order was already dispatched.
func (o *Order) MarkDispatched(at time.Time) (bool, error) {
	switch o.Fulfillment {
	case FulfillmentDispatched:
		return false, nil
	case FulfillmentCancelled:
		return false, ErrInvalidTransition
	}
	o.Fulfillment = FulfillmentDispatched
	o.DispatchedAt = &at
	return true, nil
}

// MarkCancelled moves an active order to cancelled. It returns false when
// the order was already cancelled.
func (o *Order) MarkCancelled(at time.Time) (bool, error) {
	switch o.Fulfillment {
	case FulfillmentCancelled:
		return false, nil
	case FulfillmentDispatched:
		return false, ErrInvalidTransition
	}
	o.Fulfillment = FulfillmentCancelled
	o.CancelledAt = &at
	return true, nil
}

// RefundDeposit is one-way; a repeated call keeps the first refund date.
func (o *Order) RefundDeposit(at time.Time) (bool, error) {
	if !o.IsRental() {
		return false, ErrNotRental
	}
	switch o.DepositState {
	case DepositRefunded:
		return false, nil
	case DepositNone:
		return false, ErrNoDeposit
	}
	o.DepositState = DepositRefunded
	o.DepositRefundedAt = &at
	return true, nil
}

// MarkItemReturned flags a single rental item as back in the shop.
func (o *Order) MarkItemReturned(itemID uuid.UUID) (bool, error) {
	if !o.IsRental() {
		return false, ErrNotRental
	}
	if o.IsCancelled() {
		return false, ErrOrderCancelled
	}
	for i := range o.Items {
		if o.Items[i].ID != itemID {
			continue
		}
		if o.Items[i].IsReturned {
			return false, nil
		}
		o.Items[i].IsReturned = true
		return true, nil
	}
	return false, ErrItemNotFound
}

// Clone returns a deep copy so callers never alias slices of a cached order.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	c.PaymentRecords = append([]PaymentRecord(nil), o.PaymentRecords...)
	c.ReturnDate = cloneTime(o.ReturnDate)
	c.DispatchedAt = cloneTime(o.DispatchedAt)
	c.CancelledAt = cloneTime(o.CancelledAt)
	c.DepositRefundedAt = cloneTime(o.DepositRefundedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// MarshalJSON adds the derived balance and the boolean view of the state tags.
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		Balance           decimal.Decimal `json:"balance"`
		IsDispatched      bool            `json:"is_dispatched"`
		IsCancelled       bool            `json:"is_cancelled"`
		IsDepositRefunded bool            `json:"is_deposit_refunded"`
	}{
		plain:             plain(o),
		Balance:           o.Balance(),
		IsDispatched:      o.IsDispatched(),
		IsCancelled:       o.IsCancelled(),
		IsDepositRefunded: o.IsDepositRefunded(),
	})
}
