package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer is a shop client. Orders keep a denormalized copy of the name.
type Customer struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Address       string    `gorm:"type:varchar(512)" json:"address"`
	ContactNumber string    `gorm:"type:varchar(32)" json:"contact_number"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CustomerRequest is the create/update payload.
type CustomerRequest struct {
	Name          string `json:"name" binding:"required,notblank"`
	Address       string `json:"address"`
	ContactNumber string `json:"contact_number"`
}

// Normalize trims surrounding whitespace from every field.
func (r *CustomerRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.ContactNumber = strings.TrimSpace(r.ContactNumber)
}
