package models

import "time"

// Credential is the shop's login. There is normally a single row.
type Credential struct {
	Username     string    `gorm:"type:varchar(64);primaryKey" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
