package models

import "errors"

// Validation errors raised before any state change or persistence call.
var (
	ErrNonPositiveAmount   = errors.New("payment amount must be greater than zero")
	ErrExceedsBalance      = errors.New("payment amount exceeds the outstanding balance")
	ErrNoValidItems        = errors.New("order must contain at least one item")
	ErrBlankItemName       = errors.New("item name is required")
	ErrNegativePrice       = errors.New("item price cannot be negative")
	ErrTotalBelowPaid      = errors.New("order total cannot be less than the amount already paid")
	ErrInvalidOrderType    = errors.New("order type must be rent or sale")
	ErrInvalidCourier      = errors.New("courier method must be pickme, byhand or bus")
	ErrReturnDateRequired  = errors.New("return date is required for rental orders")
	ErrReturnDateOnSale    = errors.New("sale orders cannot have a return date")
	ErrDepositOnSale       = errors.New("sale orders cannot carry a deposit")
	ErrNegativeDeposit     = errors.New("deposit amount cannot be negative")
	ErrNotRental           = errors.New("operation is only valid for rental orders")
	ErrOrderCancelled      = errors.New("order is cancelled")
	ErrInvalidTransition   = errors.New("order cannot move to the requested state")
	ErrNoDeposit           = errors.New("order has no deposit to refund")
	ErrItemNotFound        = errors.New("item not found on order")
	ErrBlankCustomerName   = errors.New("customer name is required")
	ErrDuplicateCustomer   = errors.New("a customer with this name already exists")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrNotificationMissing = errors.New("notification not found")
)
