package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/mridulaoc/life_academy/database"
	"github.com/mridulaoc/life_academy/metrics"
	"github.com/mridulaoc/life_academy/models"
	"github.com/mridulaoc/life_academy/notifications"
	"github.com/mridulaoc/life_academy/payments"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const orderCurrency = "INR"

type BillingDetails struct {
	Name  string
	Email string
	Tax   float64
}

// ToMinorUnits converts a stored major-unit amount to the integer minor
// units the gateway expects. This is the only conversion site.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateOrder snapshots the user's cart into line items, validates (without
// consuming) an optional coupon, mints a gateway order and persists the
// pending ledger record keyed by the returned external id.
func CreateOrder(userID uuid.UUID, billing BillingDetails, couponCode string) (*models.Order, error) {
	var cartItems []models.CartItem
	if err := database.DB.Where("user_id = ?", userID).Find(&cartItems).Error; err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	orderItems := make([]models.OrderItem, 0, len(cartItems))
	var subtotal float64
	for _, cartItem := range cartItems {
		switch cartItem.ItemType {
		case models.ItemTypeCourse:
			var course models.Course
			if err := database.DB.First(&course, "id = ? AND is_published = ?", cartItem.ItemID, true).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrNotFound
				}
				return nil, err
			}
			orderItems = append(orderItems, models.OrderItem{
				ItemID:   course.ID,
				ItemType: models.ItemTypeCourse,
				Title:    course.Title,
				Price:    course.Price,
			})
			subtotal += course.Price
		case models.ItemTypeBundle:
			var bundle models.Bundle
			if err := database.DB.First(&bundle, "id = ? AND is_active = ?", cartItem.ItemID, true).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrNotFound
				}
				return nil, err
			}
			orderItems = append(orderItems, models.OrderItem{
				ItemID:   bundle.ID,
				ItemType: models.ItemTypeBundle,
				Title:    bundle.Title,
				Price:    bundle.Price,
			})
			subtotal += bundle.Price
		}
	}

	var coupon *CouponSnapshot
	if couponCode != "" {
		snap, err := ValidateCoupon(couponCode, userID)
		if err != nil {
			return nil, err
		}
		coupon = snap
	}

	discount := DiscountFor(coupon, subtotal)
	total := subtotal - discount + billing.Tax
	if total <= 0 {
		return nil, ErrInvalidAmount
	}

	remote, err := payments.CreateRemoteOrder(ToMinorUnits(total), orderCurrency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	order := models.Order{
		ExternalOrderID: remote.ID,
		UserID:          userID,
		Amount:          total,
		Subtotal:        subtotal,
		Discount:        discount,
		Tax:             billing.Tax,
		Currency:        orderCurrency,
		Status:          models.OrderStatusPending,
		PaymentStatus:   "Payment Pending",
		BillingName:     billing.Name,
		BillingEmail:    billing.Email,
		Items:           orderItems,
	}
	if coupon != nil {
		order.CouponID = &coupon.ID
		order.CouponCode = &coupon.Code
		order.CouponType = &coupon.DiscountType
		order.CouponValue = &coupon.DiscountValue
		order.CouponExpiry = &coupon.ExpiryDate
	}

	if err := database.DB.Create(&order).Error; err != nil {
		log.Printf("🔥 Failed to persist order for gateway order %s: %v", remote.ID, err)
		return nil, err
	}

	return &order, nil
}

// VerifyAndCompleteOrder checks the callback signature and the gateway's view
// of the payment, then settles the order. The pending→completed transition is
// a conditional update; a redelivered callback observes the order already
// completed and performs no side effects. The second return value reports
// that case.
func VerifyAndCompleteOrder(externalOrderID, paymentID, signature string) (*models.Order, bool, error) {
	var order models.Order
	if err := database.DB.Where("external_order_id = ?", externalOrderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrNotFound
		}
		return nil, false, err
	}

	if !payments.VerifySignature(externalOrderID, paymentID, signature) {
		failPendingOrder(externalOrderID, "Payment Failed: signature mismatch")
		metrics.PaymentVerifications.WithLabelValues("signature_mismatch").Inc()
		return nil, false, ErrSignatureMismatch
	}

	payment, err := payments.FetchPayment(paymentID)
	if err != nil {
		failPendingOrder(externalOrderID, "Payment Failed: gateway unreachable")
		metrics.PaymentVerifications.WithLabelValues("gateway_error").Inc()
		return nil, false, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if payment.Status != "captured" {
		failPendingOrder(externalOrderID, "Payment Failed: not captured")
		metrics.PaymentVerifications.WithLabelValues("not_captured").Inc()
		return nil, false, ErrPaymentNotCaptured
	}

	now := time.Now()
	alreadyCompleted := false
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Order{}).
			Where("external_order_id = ? AND status = ?", externalOrderID, models.OrderStatusPending).
			Updates(map[string]interface{}{
				"status":            models.OrderStatusCompleted,
				"payment_status":    "Payment Successful",
				"payment_id":        paymentID,
				"payment_signature": signature,
				"completed_at":      now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var current models.Order
			if err := tx.Where("external_order_id = ?", externalOrderID).First(&current).Error; err != nil {
				return err
			}
			if current.Status == models.OrderStatusCompleted {
				alreadyCompleted = true
				order = current
				return nil
			}
			return ErrInvalidState
		}

		if err := tx.Preload("Items").Where("external_order_id = ?", externalOrderID).First(&order).Error; err != nil {
			return err
		}

		for _, item := range order.Items {
			if err := ApplyGrant(tx, order.UserID, item, models.EnrollmentTypeAuto, now); err != nil {
				return err
			}
		}

		if order.CouponID != nil {
			consumed, err := FinalizeCoupon(tx, *order.CouponID, order.UserID)
			if err != nil {
				return err
			}
			if !consumed {
				// Another completed order of this user already spent the
				// coupon; roll the whole settlement back.
				return ErrCouponAlreadyUsed
			}
		}

		return tx.Where("user_id = ?", order.UserID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, false, err
	}

	if alreadyCompleted {
		metrics.PaymentVerifications.WithLabelValues("duplicate").Inc()
		return &order, true, nil
	}

	metrics.PaymentVerifications.WithLabelValues("completed").Inc()
	for _, item := range order.Items {
		metrics.GrantsApplied.WithLabelValues(item.ItemType).Inc()
	}
	if order.BillingEmail != "" {
		go notifications.SendEmail(order.BillingName, order.BillingEmail, "Purchase Confirmed!",
			"<h1>Thank you!</h1><p>Your payment was successful and your courses are now available in your account.</p>")
	}
	return &order, false, nil
}

// failPendingOrder force-fails an order only while it is still pending, so a
// late failure report can never clobber a settled order.
func failPendingOrder(externalOrderID, reason string) {
	result := database.DB.Model(&models.Order{}).
		Where("external_order_id = ? AND status = ?", externalOrderID, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":         models.OrderStatusFailed,
			"payment_status": reason,
		})
	if result.Error != nil {
		log.Printf("🔥 Failed to mark order %s as failed: %v", externalOrderID, result.Error)
	}
}

// MarkOrderFailed records a failure reported by the checkout client.
func MarkOrderFailed(externalOrderID string, userID uuid.UUID, reason string) error {
	if reason == "" {
		reason = "Payment Failed"
	}
	result := database.DB.Model(&models.Order{}).
		Where("external_order_id = ? AND user_id = ? AND status = ?", externalOrderID, userID, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":         models.OrderStatusFailed,
			"payment_status": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return orderMissingOrInvalid(externalOrderID)
	}
	return nil
}

func CancelOrder(externalOrderID string, userID uuid.UUID) error {
	result := database.DB.Model(&models.Order{}).
		Where("external_order_id = ? AND user_id = ? AND status = ?", externalOrderID, userID, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":         models.OrderStatusCancelled,
			"payment_status": "Payment Cancelled",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return orderMissingOrInvalid(externalOrderID)
	}
	return nil
}

// RetryPayment mints a fresh gateway order id for a pending or failed order
// and re-arms it. The settled amount and items are reused untouched; terminal
// settled/refund states are never retryable.
func RetryPayment(externalOrderID string, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := database.DB.Where("external_order_id = ? AND user_id = ?", externalOrderID, userID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusFailed {
		return nil, ErrInvalidState
	}

	remote, err := payments.CreateRemoteOrder(ToMinorUnits(order.Amount), order.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	result := database.DB.Model(&models.Order{}).
		Where("id = ? AND status IN ?", order.ID, []string{models.OrderStatusPending, models.OrderStatusFailed}).
		Updates(map[string]interface{}{
			"external_order_id": remote.ID,
			"status":            models.OrderStatusPending,
			"payment_status":    "Payment Pending",
			"payment_id":        nil,
			"payment_signature": nil,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvalidState
	}

	if err := database.DB.Preload("Items").First(&order, "id = ?", order.ID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ConfirmPayment is a reconciliation probe for the client: while the order is
// pending and a payment id is known it re-checks the gateway and finalizes a
// reported failure, otherwise it just returns the persisted state.
func ConfirmPayment(externalOrderID string, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := database.DB.Preload("Items").
		Where("external_order_id = ? AND user_id = ?", externalOrderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if order.Status == models.OrderStatusPending && order.PaymentID != nil {
		payment, err := payments.FetchPayment(*order.PaymentID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGateway, err)
		}
		if payment.Status == "failed" {
			failPendingOrder(externalOrderID, "Payment Failed")
			order.Status = models.OrderStatusFailed
			order.PaymentStatus = "Payment Failed"
		}
	}

	return &order, nil
}

func ListOrders(userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	var total int64
	if err := database.DB.Model(&models.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := database.DB.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

type DailySales struct {
	Day     string  `json:"day"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type SalesReport struct {
	StartDate    time.Time    `json:"start_date"`
	EndDate      time.Time    `json:"end_date"`
	TotalRevenue float64      `json:"total_revenue"`
	OrderCount   int          `json:"order_count"`
	Daily        []DailySales `json:"daily"`
}

// BuildSalesReport sums completed-order amounts in [start, end]. The settled
// Amount column is the sole revenue source.
func BuildSalesReport(start, end time.Time) (*SalesReport, error) {
	var orders []models.Order
	err := database.DB.
		Where("status = ? AND completed_at >= ? AND completed_at < ?", models.OrderStatusCompleted, start, end).
		Order("completed_at asc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	report := SalesReport{StartDate: start, EndDate: end}
	byDay := map[string]*DailySales{}
	var days []string
	for _, order := range orders {
		report.TotalRevenue += order.Amount
		report.OrderCount++
		day := order.CompletedAt.Format("2006-01-02")
		if byDay[day] == nil {
			byDay[day] = &DailySales{Day: day}
			days = append(days, day)
		}
		byDay[day].Orders++
		byDay[day].Revenue += order.Amount
	}
	for _, day := range days {
		report.Daily = append(report.Daily, *byDay[day])
	}
	return &report, nil
}

// orderMissingOrInvalid resolves the ambiguity of a zero-row conditional
// update into the right typed error.
func orderMissingOrInvalid(externalOrderID string) error {
	var count int64
	if err := database.DB.Model(&models.Order{}).Where("external_order_id = ?", externalOrderID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrInvalidState
}
