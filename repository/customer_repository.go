package repository

import (
	"context"
	"errors"

	"attire-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByName(ctx context.Context, name string) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, term string, limit int) ([]models.Customer, error)
	FindAll(ctx context.Context, page, limit int) ([]models.Customer, int64, error)
}

type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) CustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByName matches case-insensitively; names are unique per shop
func (r *GormCustomerRepository) FindByName(ctx context.Context, name string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (r *GormCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// Delete removes the customer and all of their orders in one transaction.
// Order children go with the FK cascade.
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Customer{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrCustomerNotFound
		}
		return nil
	})
}

// Search looks for term in name and contact number
func (r *GormCustomerRepository) Search(ctx context.Context, term string, limit int) ([]models.Customer, error) {
	var customers []models.Customer
	like := "%" + term + "%"
	err := r.db.WithContext(ctx).
		Where("name ILIKE ? OR contact_number LIKE ?", like, like).
		Order("name ASC").
		Limit(limit).
		Find(&customers).Error
	return customers, err
}

func (r *GormCustomerRepository) FindAll(ctx context.Context, page, limit int) ([]models.Customer, int64, error) {
	var customers []models.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Customer{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}
