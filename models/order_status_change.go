package models

import (
	"time"

	"github.com/amirphl/cleaning-orders/utils"
	"gorm.io/gorm"
)

// OrderStatusChange records one admin status write
type OrderStatusChange struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    uint        `gorm:"not null;index:idx_order_status_changes_order_id" json:"order_id"`
	FromStatus OrderStatus `gorm:"size:32;not null" json:"from_status"`
	ToStatus   OrderStatus `gorm:"size:32;not null" json:"to_status"`
	AdminID    *uint       `gorm:"index:idx_order_status_changes_admin_id" json:"admin_id,omitempty"`
	Notes      *string     `gorm:"type:text" json:"notes,omitempty"`
	ChangedAt  time.Time   `gorm:"not null;index:idx_order_status_changes_changed_at" json:"changed_at"`

	Order *Order `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (OrderStatusChange) TableName() string {
	return "order_status_changes"
}

func (c *OrderStatusChange) BeforeCreate(tx *gorm.DB) error {
	if c.ChangedAt.IsZero() {
		c.ChangedAt = utils.UTCNow()
	}
	return nil
}

// OrderStatusChangeFilter represents filter criteria for status history queries
type OrderStatusChangeFilter struct {
	OrderID      *uint
	AdminID      *uint
	ToStatus     *OrderStatus
	ChangedAfter *time.Time
}
