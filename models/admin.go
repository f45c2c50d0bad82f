package models

import (
	"time"

	"github.com/amirphl/cleaning-orders/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admin is a back-office account allowed to manage orders
type Admin struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_admins_uuid" json:"uuid"`
	Username     string    `gorm:"size:255;not null;uniqueIndex:uk_admins_username" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`

	IsActive    *bool      `gorm:"default:true;index:idx_admins_is_active" json:"is_active"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (Admin) TableName() string {
	return "admins"
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.UTCNow()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	return nil
}

// AdminFilter represents filter criteria for admin queries
type AdminFilter struct {
	Username *string
	IsActive *bool
}

// AllModels is the AutoMigrate set
func AllModels() []any {
	return []any{&Admin{}, &Order{}, &OrderStatusChange{}}
}
