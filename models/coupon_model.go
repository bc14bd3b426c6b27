package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

type Coupon struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Code          string    `gorm:"size:20;not null;unique" json:"code"`
	DiscountType  string    `gorm:"size:20;not null" json:"discount_type"`
	DiscountValue float64   `gorm:"type:numeric(10,2);not null" json:"discount_value"`
	ExpiryDate    time.Time `gorm:"not null" json:"expiry_date"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// UsedCoupon records a consumed (user, coupon) pair. The composite unique
// index makes finalization an idempotent set-insert.
type UsedCoupon struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID   uuid.UUID `gorm:"not null;uniqueIndex:idx_user_coupon" json:"user_id"`
	CouponID uuid.UUID `gorm:"not null;uniqueIndex:idx_user_coupon" json:"coupon_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (u *UsedCoupon) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
