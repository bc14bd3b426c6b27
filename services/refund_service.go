package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mridulaoc/life_academy/database"
	"github.com/mridulaoc/life_academy/metrics"
	"github.com/mridulaoc/life_academy/models"
	"github.com/mridulaoc/life_academy/notifications"
	"github.com/mridulaoc/life_academy/payments"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefundWindow is the period after completion during which a customer may
// request a refund.
const RefundWindow = 7 * 24 * time.Hour

// RequestRefund is the customer self-service path. Policy: only completed
// orders owned by the requester, containing at least one bundle, inside the
// refund window. The refund covers the full settled amount and revokes the
// bundle grant plus every course grant derived from it.
func RequestRefund(orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := database.DB.Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if order.Status != models.OrderStatusCompleted || order.CompletedAt == nil || order.PaymentID == nil {
		return nil, ErrInvalidState
	}

	var bundleItems []models.OrderItem
	for _, item := range order.Items {
		if item.ItemType == models.ItemTypeBundle {
			bundleItems = append(bundleItems, item)
		}
	}
	if len(bundleItems) == 0 {
		return nil, ErrNotEligible
	}

	if time.Now().After(order.CompletedAt.Add(RefundWindow)) {
		return nil, ErrInvalidState
	}

	// Claim the order before touching the gateway so a concurrent request
	// cannot refund it twice.
	result := database.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.OrderStatusCompleted).
		Updates(map[string]interface{}{
			"status":         models.OrderStatusRefundRequested,
			"payment_status": "Refund Requested",
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvalidState
	}

	refund, err := payments.RefundPayment(*order.PaymentID, ToMinorUnits(order.Amount))
	if err != nil {
		// Left in refund_requested for the admin override to reconcile.
		log.Printf("🔥 Gateway refund failed for order %s: %v", orderID, err)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	refundStatus := "processed"
	var revoked int64
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			Updates(map[string]interface{}{
				"status":         models.OrderStatusRefundProcessed,
				"payment_status": "Refund Processed",
				"refund_id":      refund.ID,
				"refund_status":  refundStatus,
			}).Error; err != nil {
			return err
		}
		for _, item := range bundleItems {
			n, err := RevokeBundleGrants(tx, order.UserID, item.ItemID)
			if err != nil {
				return err
			}
			revoked += n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Refunds.WithLabelValues("customer").Inc()
	metrics.GrantsRevoked.Add(float64(revoked))
	if order.BillingEmail != "" {
		go notifications.SendEmail(order.BillingName, order.BillingEmail, "Refund Processed",
			"<h1>Refund Processed</h1><p>Your refund has been issued to your original payment method. Access granted by this purchase has been removed.</p>")
	}

	if err := database.DB.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ProcessRefundAdmin is the manual reconciliation override. It deliberately
// skips the gateway call and the customer eligibility checks, but still
// refuses any order that has not settled: only completed orders, or orders a
// stalled customer refund left in refund_requested, can be forced through.
func ProcessRefundAdmin(orderID uuid.UUID) (*models.Order, error) {
	refundStatus := "processed"
	result := database.DB.Model(&models.Order{}).
		Where("id = ? AND status IN ?", orderID, []string{models.OrderStatusCompleted, models.OrderStatusRefundRequested}).
		Updates(map[string]interface{}{
			"status":         models.OrderStatusRefundProcessed,
			"payment_status": "Refund Processed",
			"refund_status":  refundStatus,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := database.DB.Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrInvalidState
	}

	metrics.Refunds.WithLabelValues("admin").Inc()

	var order models.Order
	if err := database.DB.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
