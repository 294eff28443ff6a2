package repository

import (
	"context"
	"errors"

	"attire-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	FindAll(ctx context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, error)
	FindActiveRentals(ctx context.Context) ([]models.Order, error)
	FindNotCancelled(ctx context.Context) ([]models.Order, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)
}

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new instance of GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items").
		Preload("PaymentRecords", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC")
		})
}

// Create inserts the order together with its items and payment records
func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID retrieves one order with items and payments
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.withRelations(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Update saves the order, upserts its children and drops items that were
// removed by an edit. Payment records are only ever added.
func (r *GormOrderRepository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keep := make([]uuid.UUID, 0, len(order.Items))
		for _, item := range order.Items {
			keep = append(keep, item.ID)
		}
		if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, keep).
			Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error
	})
}

// FindAll retrieves orders matching filter with pagination
func (r *GormOrderRepository) FindAll(ctx context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.CustomerID != uuid.Nil {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Fulfillment != "" {
		query = query.Where("fulfillment = ?", filter.Fulfillment)
	}
	if filter.Search != "" {
		query = query.Where("customer_name ILIKE ?", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items").
		Preload("PaymentRecords").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// FindActiveRentals returns every rental that has not been cancelled
func (r *GormOrderRepository) FindActiveRentals(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.withRelations(ctx).
		Where("type = ? AND fulfillment <> ?", models.OrderTypeRent, models.FulfillmentCancelled).
		Order("return_date ASC").
		Find(&orders).Error
	return orders, err
}

// FindNotCancelled feeds the dashboard aggregates
func (r *GormOrderRepository) FindNotCancelled(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.withRelations(ctx).
		Where("fulfillment <> ?", models.FulfillmentCancelled).
		Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.withRelations(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}
