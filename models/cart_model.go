package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ItemTypeCourse = "course"
	ItemTypeBundle = "bundle"
)

type CartItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID   uuid.UUID `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"user_id"`
	ItemID   uuid.UUID `gorm:"not null;uniqueIndex:idx_cart_user_item" json:"item_id"`
	ItemType string    `gorm:"size:10;not null" json:"item_type"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
