package services

import (
	"context"
	"time"

	apperrors "attire-service/common/errors"
	"attire-service/models"
	"attire-service/repository"
	"attire-service/status"

	"github.com/shopspring/decimal"
)

// Dashboard is the landing-page summary. Cancelled orders are left out of
// every figure.
type Dashboard struct {
	DispatchesToday   int             `json:"dispatches_today"`
	DispatchesOverdue int             `json:"dispatches_overdue"`
	ReturnsToday      int             `json:"returns_today"`
	ReturnsOverdue    int             `json:"returns_overdue"`
	PendingDeposits   int             `json:"pending_deposits"`
	ActiveRentals     int             `json:"active_rentals"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalReceived     decimal.Decimal `json:"total_received"`
	TotalOutstanding  decimal.Decimal `json:"total_outstanding"`
	DepositsHeld      decimal.Decimal `json:"deposits_held"`
	GeneratedAt       time.Time       `json:"generated_at"`
}

type SummaryService struct {
	orders repository.OrderRepository
	now    func() time.Time
}

func NewSummaryService(orders repository.OrderRepository, now func() time.Time) *SummaryService {
	if now == nil {
		now = time.Now
	}
	return &SummaryService{orders: orders, now: now}
}

func (s *SummaryService) Dashboard(ctx context.Context) (*Dashboard, error) {
	orders, err := s.orders.FindNotCancelled(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to build dashboard", err)
	}
	return Summarize(orders, s.now()), nil
}

// Summarize aggregates orders as of now.
func Summarize(orders []models.Order, now time.Time) *Dashboard {
	d := &Dashboard{
		TotalSales:       decimal.Zero,
		TotalReceived:    decimal.Zero,
		TotalOutstanding: decimal.Zero,
		DepositsHeld:     decimal.Zero,
		GeneratedAt:      now,
	}
	for i := range orders {
		o := &orders[i]
		if o.IsCancelled() {
			continue
		}
		switch status.Dispatch(o, now) {
		case status.DispatchToday:
			d.DispatchesToday++
		case status.DispatchOverdue:
			d.DispatchesOverdue++
		}
		if o.HasUnreturnedItems() {
			switch status.Return(o, now) {
			case status.ReturnToday:
				d.ReturnsToday++
			case status.ReturnOverdue:
				d.ReturnsOverdue++
			}
		}
		if o.DepositState == models.DepositHeld {
			d.PendingDeposits++
			d.DepositsHeld = d.DepositsHeld.Add(o.DepositAmount)
		}
		if o.IsRental() && o.HasUnreturnedItems() {
			d.ActiveRentals++
		}
		d.TotalSales = d.TotalSales.Add(o.TotalPrice)
		d.TotalReceived = d.TotalReceived.Add(o.PaidAmount)
		d.TotalOutstanding = d.TotalOutstanding.Add(o.Balance())
	}
	return d
}
