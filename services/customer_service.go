package services

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "attire-service/common/errors"
	"attire-service/models"
	"attire-service/repository"
	"attire-service/status"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultSearchLimit = 20

type CustomerService struct {
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	now       func() time.Time
	logger    *zap.Logger
}

type CustomerPage struct {
	Customers []models.Customer `json:"customers"`
	Meta      Page              `json:"meta"`
}

// CustomerProfile is the read model behind the customer detail screen.
type CustomerProfile struct {
	Customer    models.Customer    `json:"customer"`
	Orders      []status.OrderView `json:"orders"`
	TotalSpent  decimal.Decimal    `json:"total_spent"`
	Outstanding decimal.Decimal    `json:"outstanding"`
}

func NewCustomerService(customers repository.CustomerRepository, orders repository.OrderRepository, now func() time.Time, logger *zap.Logger) *CustomerService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{customers: customers, orders: orders, now: now, logger: logger}
}

func (s *CustomerService) Create(ctx context.Context, req models.CustomerRequest) (*models.Customer, error) {
	req.Normalize()
	if req.Name == "" {
		return nil, apperrors.BadRequest(models.ErrBlankCustomerName)
	}
	if err := s.ensureUniqueName(ctx, req.Name, uuid.Nil); err != nil {
		return nil, err
	}

	customer := &models.Customer{
		ID:            uuid.New(),
		Name:          req.Name,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		s.logger.Error("failed to create customer", zap.Error(err))
		return nil, apperrors.Internal("Failed to create customer", err)
	}
	s.logger.Info("customer created", zap.String("customer_id", customer.ID.String()))
	return customer, nil
}

// Update changes the contact record. Existing orders keep the name they
// were placed under.
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req models.CustomerRequest) (*models.Customer, error) {
	req.Normalize()
	if req.Name == "" {
		return nil, apperrors.BadRequest(models.ErrBlankCustomerName)
	}
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "Failed to fetch customer")
	}
	if !strings.EqualFold(customer.Name, req.Name) {
		if err := s.ensureUniqueName(ctx, req.Name, id); err != nil {
			return nil, err
		}
	}

	customer.Name = req.Name
	customer.Address = req.Address
	customer.ContactNumber = req.ContactNumber
	if err := s.customers.Update(ctx, customer); err != nil {
		s.logger.Error("failed to update customer", zap.String("customer_id", id.String()), zap.Error(err))
		return nil, apperrors.Internal("Failed to update customer", err)
	}
	return customer, nil
}

// Delete removes the customer together with all of their orders.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		if !errors.Is(err, models.ErrCustomerNotFound) {
			s.logger.Error("failed to delete customer", zap.String("customer_id", id.String()), zap.Error(err))
		}
		return mapError(err, "Failed to delete customer")
	}
	s.logger.Info("customer deleted", zap.String("customer_id", id.String()))
	return nil
}

func (s *CustomerService) Search(ctx context.Context, term string, limit int) ([]models.Customer, error) {
	term = strings.TrimSpace(term)
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	customers, err := s.customers.Search(ctx, term, limit)
	if err != nil {
		return nil, apperrors.Internal("Failed to search customers", err)
	}
	return customers, nil
}

func (s *CustomerService) List(ctx context.Context, page, limit int) (*CustomerPage, error) {
	page, limit = clampPage(page, limit)
	customers, total, err := s.customers.FindAll(ctx, page, limit)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch customers", err)
	}
	return &CustomerPage{Customers: customers, Meta: newPage(page, limit, total)}, nil
}

// Profile returns the customer with every order and the running totals.
// Cancelled orders are listed but do not count towards the totals.
func (s *CustomerService) Profile(ctx context.Context, id uuid.UUID) (*CustomerProfile, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "Failed to fetch customer")
	}
	orders, err := s.orders.FindByCustomerID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch customer orders", err)
	}

	profile := &CustomerProfile{
		Customer:    *customer,
		Orders:      status.Views(orders, s.now()),
		TotalSpent:  decimal.Zero,
		Outstanding: decimal.Zero,
	}
	for i := range orders {
		if orders[i].IsCancelled() {
			continue
		}
		profile.TotalSpent = profile.TotalSpent.Add(orders[i].PaidAmount)
		profile.Outstanding = profile.Outstanding.Add(orders[i].Balance())
	}
	return profile, nil
}

func (s *CustomerService) ensureUniqueName(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.customers.FindByName(ctx, name)
	switch {
	case errors.Is(err, models.ErrCustomerNotFound):
		return nil
	case err != nil:
		return apperrors.Internal("Failed to check customer name", err)
	case existing.ID != self:
		return apperrors.Conflict(models.ErrDuplicateCustomer)
	}
	return nil
}
