package services_test

import (
	"context"
	"strings"
	"sync"

	"attire-service/models"
	"attire-service/repository"

	"github.com/google/uuid"
)

// memOrders stores deep copies so tests can tell persisted state from the
// copy a service is working on.
type memOrders struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*models.Order
	createErr error
	updateErr error
	updates   int
}

func newMemOrders() *memOrders {
	return &memOrders{byID: map[uuid.UUID]*models.Order{}}
}

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.byID[o.ID] = o.Clone()
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (m *memOrders) Update(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates++
	m.byID[o.ID] = o.Clone()
	return nil
}

func (m *memOrders) FindAll(_ context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, error) {
	all := m.filter(func(o *models.Order) bool {
		return (filter.Type == "" || o.Type == filter.Type) &&
			(filter.CustomerID == uuid.Nil || o.CustomerID == filter.CustomerID) &&
			(filter.Fulfillment == "" || o.Fulfillment == filter.Fulfillment) &&
			(filter.Search == "" || strings.Contains(strings.ToLower(o.CustomerName), strings.ToLower(filter.Search)))
	})
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (m *memOrders) FindActiveRentals(context.Context) ([]models.Order, error) {
	return m.filter(func(o *models.Order) bool { return o.IsRental() && !o.IsCancelled() }), nil
}

func (m *memOrders) FindNotCancelled(context.Context) ([]models.Order, error) {
	return m.filter(func(o *models.Order) bool { return !o.IsCancelled() }), nil
}

func (m *memOrders) FindByCustomerID(_ context.Context, id uuid.UUID) ([]models.Order, error) {
	return m.filter(func(o *models.Order) bool { return o.CustomerID == id }), nil
}

func (m *memOrders) deleteByCustomerID(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for oid, o := range m.byID {
		if o.CustomerID == id {
			delete(m.byID, oid)
		}
	}
}

func (m *memOrders) filter(keep func(*models.Order) bool) []models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.byID {
		if keep(o) {
			out = append(out, *o.Clone())
		}
	}
	return out
}

type memCustomers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]models.Customer
	err  error

	orders    *memOrders
	deleteErr error
}

func newMemCustomers(seed ...models.Customer) *memCustomers {
	m := &memCustomers{byID: map[uuid.UUID]models.Customer{}}
	for _, c := range seed {
		m.byID[c.ID] = c
	}
	return m
}

func (m *memCustomers) Create(_ context.Context, c *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.byID[c.ID] = *c
	return nil
}

func (m *memCustomers) FindByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, models.ErrCustomerNotFound
	}
	return &c, nil
}

func (m *memCustomers) FindByName(_ context.Context, name string) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byID {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, models.ErrCustomerNotFound
}

func (m *memCustomers) Update(_ context.Context, c *models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[c.ID] = *c
	return nil
}

// Delete cascades into orders when set, and leaves both untouched on error.
func (m *memCustomers) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.byID[id]; !ok {
		return models.ErrCustomerNotFound
	}
	if m.orders != nil {
		m.orders.deleteByCustomerID(id)
	}
	delete(m.byID, id)
	return nil
}

func (m *memCustomers) Search(_ context.Context, term string, limit int) ([]models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Customer
	for _, c := range m.byID {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(term)) || strings.Contains(c.ContactNumber, term) {
			out = append(out, c)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memCustomers) FindAll(_ context.Context, page, limit int) ([]models.Customer, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Customer
	for _, c := range m.byID {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

type memCredentials struct {
	byName map[string]models.Credential
}

func (m *memCredentials) FindByUsername(_ context.Context, username string) (*models.Credential, error) {
	c, ok := m.byName[username]
	if !ok {
		return nil, repository.ErrCredentialNotFound
	}
	return &c, nil
}

func (m *memCredentials) Save(_ context.Context, c *models.Credential) error {
	m.byName[c.Username] = *c
	return nil
}

var (
	_ repository.OrderRepository      = (*memOrders)(nil)
	_ repository.CustomerRepository   = (*memCustomers)(nil)
	_ repository.CredentialRepository = (*memCredentials)(nil)
)
