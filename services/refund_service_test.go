package services

import (
	"errors"
	"testing"
	"time"

	"github.com/mridulaoc/life_academy/database"
	"github.com/mridulaoc/life_academy/models"
)

func checkoutBundle(t *testing.T, stub *gatewayStub, user models.User, bundle models.Bundle, paymentID string) *models.Order {
	t.Helper()
	addToCart(t, user.ID, bundle.ID, models.ItemTypeBundle)
	order, err := CreateOrder(user.ID, BillingDetails{Name: "T", Email: "t@example.com"}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	return completeOrder(t, stub, order, paymentID)
}

func setCompletedAt(t *testing.T, orderID interface{}, completedAt time.Time) {
	t.Helper()
	err := database.DB.Model(&models.Order{}).Where("id = ?", orderID).Update("completed_at", completedAt).Error
	if err != nil {
		t.Fatalf("failed to backdate order: %v", err)
	}
}

func TestRequestRefundRevokesGrants(t *testing.T) {
	setupTestDB(t)
	stub := startGatewayStub(t)
	user := createTestUser(t)
	course := createTestCourse(t, "Course", 1000)
	bundle := createTestBundle(t, "Pack", 3000, models.BundleAccessLimited, 30, course)
	order := checkoutBundle(t, stub, user, bundle, "pay_refund")

	refunded, err := RequestRefund(order.ID, user.ID)
	if err != nil {
		t.Fatalf("RequestRefund failed: %v", err)
	}
	if refunded.Status != models.OrderStatusRefundProcessed {
		t.Errorf("expected refund_processed, got %s", refunded.Status)
	}
	if refunded.RefundID == nil || *refunded.RefundID == "" {
		t.Error("expected refund id recorded")
	}

	var bundleGrant models.EnrolledBundle
	database.DB.First(&bundleGrant, "user_id = ? AND bundle_id = ?", user.ID, bundle.ID)
	if bundleGrant.IsActive {
		t.Error("expected bundle grant revoked")
	}
	var courseGrant models.EnrolledCourse
	database.DB.First(&courseGrant, "user_id = ? AND course_id = ?", user.ID, course.ID)
	if courseGrant.IsActive {
		t.Error("expected derived course grant revoked")
	}

	// Grants are deactivated, never deleted.
	var rows int64
	database.DB.Model(&models.EnrolledCourse{}).Where("user_id = ?", user.ID).Count(&rows)
	if rows != 1 {
		t.Errorf("expected grant row retained, got %d", rows)
	}
}

func TestRequestRefundWindowEdges(t *testing.T) {
	setupTestDB(t)
	stub := startGatewayStub(t)
	user := createTestUser(t)
	course := createTestCourse(t, "Course", 1000)

	insideBundle := createTestBundle(t, "Inside", 3000, models.BundleAccessPermanent, 0, course)
	inside := checkoutBundle(t, stub, user, insideBundle, "pay_inside")
	setCompletedAt(t, inside.ID, time.Now().Add(-(RefundWindow - time.Second)))
	if _, err := RequestRefund(inside.ID, user.ID); err != nil {
		t.Fatalf("refund just inside the window failed: %v", err)
	}

	outsideBundle := createTestBundle(t, "Outside", 3000, models.BundleAccessPermanent, 0)
	outside := checkoutBundle(t, stub, user, outsideBundle, "pay_outside")
	setCompletedAt(t, outside.ID, time.Now().Add(-(RefundWindow + time.Second)))
	if _, err := RequestRefund(outside.ID, user.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState just outside the window, got %v", err)
	}
}

func TestRequestRefundCourseOnlyNotEligible(t *testing.T) {
	setupTestDB(t)
	stub := startGatewayStub(t)
	user := createTestUser(t)
	course := createTestCourse(t, "Course", 1000)
	addToCart(t, user.ID, course.ID, models.ItemTypeCourse)

	order, err := CreateOrder(user.ID, BillingDetails{Name: "T", Email: "t@example.com"}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	completed := completeOrder(t, stub, order, "pay_course")

	if _, err := RequestRefund(completed.ID, user.ID); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible for course-only order, got %v", err)
	}
}

func TestRequestRefundWrongUser(t *testing.T) {
	setupTestDB(t)
	stub := startGatewayStub(t)
	owner := createTestUser(t)
	stranger := createTestUser(t)
	bundle := createTestBundle(t, "Pack", 3000, models.BundleAccessPermanent, 0)
	order := checkoutBundle(t, stub, owner, bundle, "pay_owner")

	if _, err := RequestRefund(order.ID, stranger.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign order, got %v", err)
	}
}

func TestProcessRefundAdminOverride(t *testing.T) {
	setupTestDB(t)
	stub := startGatewayStub(t)
	user := createTestUser(t)
	course := createTestCourse(t, "Course", 1000)
	addToCart(t, user.ID, course.ID, models.ItemTypeCourse)

	// Course-only and outside any window: the override ignores both.
	order, err := CreateOrder(user.ID, BillingDetails{Name: "T", Email: "t@example.com"}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	completed := completeOrder(t, stub, order, "pay_admin")
	setCompletedAt(t, completed.ID, time.Now().Add(-30*24*time.Hour))

	processed, err := ProcessRefundAdmin(completed.ID)
	if err != nil {
		t.Fatalf("ProcessRefundAdmin failed: %v", err)
	}
	if processed.Status != models.OrderStatusRefundProcessed {
		t.Errorf("expected refund_processed, got %s", processed.Status)
	}
	if processed.RefundID != nil {
		t.Error("admin override must not fabricate a gateway refund id")
	}
}

func TestProcessRefundAdminRefusesUnsettled(t *testing.T) {
	setupTestDB(t)
	startGatewayStub(t)
	user := createTestUser(t)
	course := createTestCourse(t, "Course", 1000)
	addToCart(t, user.ID, course.ID, models.ItemTypeCourse)

	pending, err := CreateOrder(user.ID, BillingDetails{Name: "T", Email: "t@example.com"}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if _, err := ProcessRefundAdmin(pending.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for pending order, got %v", err)
	}

	var persisted models.Order
	database.DB.First(&persisted, "id = ?", pending.ID)
	if persisted.Status != models.OrderStatusPending {
		t.Errorf("expected pending order untouched, got %s", persisted.Status)
	}
}
