package repository

import (
	"context"
	"errors"

	"attire-service/models"

	"gorm.io/gorm"
)

var ErrCredentialNotFound = errors.New("credential not found")

type CredentialRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Credential, error)
	Save(ctx context.Context, credential *models.Credential) error
}

type GormCredentialRepository struct {
	db *gorm.DB
}

func NewGormCredentialRepository(db *gorm.DB) CredentialRepository {
	return &GormCredentialRepository{db: db}
}

func (r *GormCredentialRepository) FindByUsername(ctx context.Context, username string) (*models.Credential, error) {
	var credential models.Credential
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&credential).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}
	return &credential, nil
}

// Save inserts or replaces the credential row
func (r *GormCredentialRepository) Save(ctx context.Context, credential *models.Credential) error {
	return r.db.WithContext(ctx).Save(credential).Error
}
