package services

import (
	"errors"
	"time"

	"github.com/mridulaoc/life_academy/database"
	"github.com/mridulaoc/life_academy/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CouponSnapshot struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue float64   `json:"discount_value"`
	ExpiryDate    time.Time `json:"expiry_date"`
}

// ValidateCoupon is read-only: it never reserves the coupon, so an abandoned
// pending order cannot lock a code. Consumption happens at order completion.
func ValidateCoupon(code string, userID uuid.UUID) (*CouponSnapshot, error) {
	var coupon models.Coupon
	err := database.DB.
		Where("code = ? AND is_active = ? AND expiry_date > ?", code, true, time.Now()).
		First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	var used int64
	err = database.DB.Model(&models.UsedCoupon{}).
		Where("user_id = ? AND coupon_id = ?", userID, coupon.ID).
		Count(&used).Error
	if err != nil {
		return nil, err
	}
	if used > 0 {
		return nil, ErrCouponAlreadyUsed
	}

	return &CouponSnapshot{
		ID:            coupon.ID,
		Code:          coupon.Code,
		DiscountType:  coupon.DiscountType,
		DiscountValue: coupon.DiscountValue,
		ExpiryDate:    coupon.ExpiryDate,
	}, nil
}

// FinalizeCoupon inserts into the user's used-coupon set. The insert is a
// conflict-ignoring upsert; it reports false when the pair was already
// consumed by an earlier order.
func FinalizeCoupon(tx *gorm.DB, couponID, userID uuid.UUID) (bool, error) {
	used := models.UsedCoupon{UserID: userID, CouponID: couponID}
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&used)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DiscountFor computes the discount a snapshot yields on a subtotal, capped
// at the subtotal itself.
func DiscountFor(snap *CouponSnapshot, subtotal float64) float64 {
	if snap == nil {
		return 0
	}
	var discount float64
	switch snap.DiscountType {
	case models.DiscountTypePercentage:
		discount = subtotal * snap.DiscountValue / 100
	case models.DiscountTypeFixed:
		discount = snap.DiscountValue
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount
}
