package models

import (
	"time"

	"gorm.io/gorm"

	"budgetapp/internal/uuid"
)

// Base contains common columns for all tables
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID != "" {
		return nil
	}
	id, err := uuid.New()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}
