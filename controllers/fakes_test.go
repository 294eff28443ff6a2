package controllers_test

import (
	"context"
	"strings"
	"sync"

	"attire-service/models"
	"attire-service/repository"

	"github.com/google/uuid"
)

type memStore struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*models.Order
	customers map[uuid.UUID]models.Customer
	creds     map[string]models.Credential
}

func newMemStore() *memStore {
	return &memStore{
		orders:    map[uuid.UUID]*models.Order{},
		customers: map[uuid.UUID]models.Customer{},
		creds:     map[string]models.Credential{},
	}
}

type memOrders struct{ *memStore }

func (m memOrders) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o.Clone()
	return nil
}

func (m memOrders) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (m memOrders) Update(ctx context.Context, o *models.Order) error { return m.Create(ctx, o) }

func (m memOrders) FindAll(_ context.Context, f models.OrderFilter, page, limit int) ([]models.Order, int64, error) {
	all := m.where(func(o *models.Order) bool {
		return (f.Type == "" || o.Type == f.Type) &&
			(f.Fulfillment == "" || o.Fulfillment == f.Fulfillment) &&
			(f.CustomerID == uuid.Nil || o.CustomerID == f.CustomerID)
	})
	return all, int64(len(all)), nil
}

func (m memOrders) FindActiveRentals(context.Context) ([]models.Order, error) {
	return m.where(func(o *models.Order) bool { return o.IsRental() && !o.IsCancelled() }), nil
}

func (m memOrders) FindNotCancelled(context.Context) ([]models.Order, error) {
	return m.where(func(o *models.Order) bool { return !o.IsCancelled() }), nil
}

func (m memOrders) FindByCustomerID(_ context.Context, id uuid.UUID) ([]models.Order, error) {
	return m.where(func(o *models.Order) bool { return o.CustomerID == id }), nil
}

func (m memOrders) where(keep func(*models.Order) bool) []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, *o.Clone())
		}
	}
	return out
}

type memCustomers struct{ *memStore }

func (m memCustomers) Create(_ context.Context, c *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.ID] = *c
	return nil
}

func (m memCustomers) FindByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, models.ErrCustomerNotFound
	}
	return &c, nil
}

func (m memCustomers) FindByName(_ context.Context, name string) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, models.ErrCustomerNotFound
}

func (m memCustomers) Update(ctx context.Context, c *models.Customer) error { return m.Create(ctx, c) }

func (m memCustomers) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[id]; !ok {
		return models.ErrCustomerNotFound
	}
	for oid, o := range m.orders {
		if o.CustomerID == id {
			delete(m.orders, oid)
		}
	}
	delete(m.customers, id)
	return nil
}

func (m memCustomers) Search(_ context.Context, term string, limit int) ([]models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Customer{}
	for _, c := range m.customers {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(term)) || strings.Contains(c.ContactNumber, term) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m memCustomers) FindAll(context.Context, int, int) ([]models.Customer, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Customer{}
	for _, c := range m.customers {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

type memCredentials struct{ *memStore }

func (m memCredentials) FindByUsername(_ context.Context, username string) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[username]
	if !ok {
		return nil, repository.ErrCredentialNotFound
	}
	return &c, nil
}

func (m memCredentials) Save(_ context.Context, c *models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[c.Username] = *c
	return nil
}

var (
	_ repository.OrderRepository      = memOrders{}
	_ repository.CustomerRepository   = memCustomers{}
	_ repository.CredentialRepository = memCredentials{}
)
