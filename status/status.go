package status

import (
	"encoding/json"
	"time"

	"attire-service/models"

	"github.com/shopspring/decimal"
)

type DispatchStatus string

const (
	Dispatched      DispatchStatus = "dispatched"
	DispatchOverdue DispatchStatus = "dispatch_overdue"
	DispatchToday   DispatchStatus = "dispatch_today"
	Scheduled       DispatchStatus = "scheduled"
)

type ReturnStatus string

const (
	ReturnOverdue       ReturnStatus = "return_overdue"
	ReturnToday         ReturnStatus = "return_today"
	ReturnNone          ReturnStatus = "none"
	ReturnNotApplicable ReturnStatus = "not_applicable"
)

type PaymentStatus string

const (
	Paid    PaymentStatus = "paid"
	Unpaid  PaymentStatus = "unpaid"
	Partial PaymentStatus = "partial"
)

type ItemReturnStatus string

const (
	Returned                ItemReturnStatus = "returned"
	NotReturned             ItemReturnStatus = "not_returned"
	PartialReturn           ItemReturnStatus = "partial_return"
	ItemReturnNotApplicable ItemReturnStatus = "not_applicable"
)

// Dispatch compares the courier date with now at day granularity.
func Dispatch(order *models.Order, now time.Time) DispatchStatus {
	if order.IsDispatched() {
		return Dispatched
	}
	switch diff := DayDiff(order.CourierDate, now); {
	case diff < 0:
		return DispatchOverdue
	case diff == 0:
		return DispatchToday
	default:
		return Scheduled
	}
}

// Return compares the return date of a rental with now at day granularity.
func Return(order *models.Order, now time.Time) ReturnStatus {
	if !order.IsRental() || order.ReturnDate == nil {
		return ReturnNotApplicable
	}
	switch diff := DayDiff(*order.ReturnDate, now); {
	case diff < 0:
		return ReturnOverdue
	case diff == 0:
		return ReturnToday
	default:
		return ReturnNone
	}
}

func Payment(order *models.Order) PaymentStatus {
	switch {
	case order.Balance().Sign() <= 0:
		return Paid
	case order.PaidAmount.IsZero():
		return Unpaid
	default:
		return Partial
	}
}

func ItemReturn(order *models.Order) ItemReturnStatus {
	if !order.IsRental() {
		return ItemReturnNotApplicable
	}
	returned := 0
	for _, item := range order.Items {
		if item.IsReturned {
			returned++
		}
	}
	switch {
	case len(order.Items) > 0 && returned == len(order.Items):
		return Returned
	case returned == 0:
		return NotReturned
	default:
		return PartialReturn
	}
}

// Snapshot bundles every derived value a view needs for one order.
type Snapshot struct {
	Dispatch   DispatchStatus   `json:"dispatch_status"`
	Return     ReturnStatus     `json:"return_status"`
	Payment    PaymentStatus    `json:"payment_status"`
	ItemReturn ItemReturnStatus `json:"item_return_status"`
	Balance    decimal.Decimal  `json:"balance"`
}

func Derive(order *models.Order, now time.Time) Snapshot {
	return Snapshot{
		Dispatch:   Dispatch(order, now),
		Return:     Return(order, now),
		Payment:    Payment(order),
		ItemReturn: ItemReturn(order),
		Balance:    order.Balance(),
	}
}

// OrderView is an order annotated with its derived status.
type OrderView struct {
	*models.Order
	Status Snapshot `json:"status"`
}

// MarshalJSON keeps the order's own encoding and appends the status block.
func (v OrderView) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(v.Order)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields["status"], err = json.Marshal(v.Status); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func Views(orders []models.Order, now time.Time) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		views = append(views, OrderView{Order: o, Status: Derive(o, now)})
	}
	return views
}
