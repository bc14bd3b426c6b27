package services

import (
	"errors"
	"testing"
	"time"

	"github.com/mridulaoc/life_academy/database"
	"github.com/mridulaoc/life_academy/models"
)

func TestValidateCouponNotFound(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t)

	if _, err := ValidateCoupon("NOPE", user.ID); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound for unknown code, got %v", err)
	}

	expired := models.Coupon{
		Code:          "EXPIRED",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: 50,
		ExpiryDate:    time.Now().Add(-time.Hour),
		IsActive:      true,
	}
	if err := database.DB.Create(&expired).Error; err != nil {
		t.Fatalf("failed to seed coupon: %v", err)
	}
	if _, err := ValidateCoupon("EXPIRED", user.ID); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound for expired code, got %v", err)
	}

	inactive := createTestCoupon(t, "DISABLED", models.DiscountTypeFixed, 50)
	database.DB.Model(&models.Coupon{}).Where("id = ?", inactive.ID).Update("is_active", false)
	if _, err := ValidateCoupon("DISABLED", user.ID); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound for inactive code, got %v", err)
	}
}

func TestValidateCouponAlreadyUsed(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t)
	coupon := createTestCoupon(t, "USED", models.DiscountTypeFixed, 50)

	if _, err := ValidateCoupon("USED", user.ID); err != nil {
		t.Fatalf("expected fresh coupon to validate, got %v", err)
	}

	consumed, err := FinalizeCoupon(database.DB, coupon.ID, user.ID)
	if err != nil || !consumed {
		t.Fatalf("expected first finalize to consume, got consumed=%v err=%v", consumed, err)
	}

	if _, err := ValidateCoupon("USED", user.ID); !errors.Is(err, ErrCouponAlreadyUsed) {
		t.Fatalf("expected ErrCouponAlreadyUsed, got %v", err)
	}

	// Validation is user-scoped: another user can still use the code.
	other := createTestUser(t)
	if _, err := ValidateCoupon("USED", other.ID); err != nil {
		t.Fatalf("expected other user to validate, got %v", err)
	}
}

func TestFinalizeCouponIdempotent(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t)
	coupon := createTestCoupon(t, "ONCE", models.DiscountTypeFixed, 50)

	consumed, err := FinalizeCoupon(database.DB, coupon.ID, user.ID)
	if err != nil || !consumed {
		t.Fatalf("expected first finalize to consume, got consumed=%v err=%v", consumed, err)
	}
	consumed, err = FinalizeCoupon(database.DB, coupon.ID, user.ID)
	if err != nil {
		t.Fatalf("second finalize errored: %v", err)
	}
	if consumed {
		t.Error("expected second finalize to be a no-op")
	}

	var rows int64
	database.DB.Model(&models.UsedCoupon{}).Where("user_id = ? AND coupon_id = ?", user.ID, coupon.ID).Count(&rows)
	if rows != 1 {
		t.Fatalf("expected exactly one used-coupon row, got %d", rows)
	}
}

func TestDiscountFor(t *testing.T) {
	percent := &CouponSnapshot{DiscountType: models.DiscountTypePercentage, DiscountValue: 25}
	if got := DiscountFor(percent, 200); got != 50 {
		t.Errorf("percentage discount = %v, want 50", got)
	}

	fixed := &CouponSnapshot{DiscountType: models.DiscountTypeFixed, DiscountValue: 80}
	if got := DiscountFor(fixed, 200); got != 80 {
		t.Errorf("fixed discount = %v, want 80", got)
	}
	if got := DiscountFor(fixed, 50); got != 50 {
		t.Errorf("fixed discount should cap at subtotal, got %v", got)
	}

	if got := DiscountFor(nil, 200); got != 0 {
		t.Errorf("nil snapshot discount = %v, want 0", got)
	}
}
