package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mridulaoc/life_academy/database"
	"github.com/mridulaoc/life_academy/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Bundle{},
		&models.CartItem{},
		&models.Coupon{},
		&models.UsedCoupon{},
		&models.Order{},
		&models.OrderItem{},
		&models.EnrolledCourse{},
		&models.EnrolledBundle{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	database.DB = db
}

// gatewayStub is an in-process stand-in for the payment gateway API.
type gatewayStub struct {
	mu        sync.Mutex
	orderSeq  int
	refundSeq int
	payments  map[string]string
	server    *httptest.Server
}

func startGatewayStub(t *testing.T) *gatewayStub {
	t.Helper()

	stub := &gatewayStub{payments: map[string]string{}}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		defer stub.mu.Unlock()

		switch {
		case r.Method == "POST" && r.URL.Path == "/v1/orders":
			stub.orderSeq++
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id": fmt.Sprintf("order_stub_%d", stub.orderSeq), "status": "created",
			})
		case r.Method == "GET" && strings.HasPrefix(r.URL.Path, "/v1/payments/") && !strings.HasSuffix(r.URL.Path, "/refund"):
			paymentID := strings.TrimPrefix(r.URL.Path, "/v1/payments/")
			status, ok := stub.payments[paymentID]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"id": paymentID, "status": status})
		case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/refund"):
			stub.refundSeq++
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id": fmt.Sprintf("rfnd_stub_%d", stub.refundSeq), "status": "processed",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(stub.server.Close)

	t.Setenv("RAZORPAY_API_BASE_URL", stub.server.URL)
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "rzp_test_secret")
	return stub
}

func (g *gatewayStub) setPaymentStatus(paymentID, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payments[paymentID] = status
}

func createTestUser(t *testing.T) models.User {
	t.Helper()
	user := models.User{
		FullName: "Test Student",
		Email:    fmt.Sprintf("%s@example.com", uuid.New()),
		Password: "hashed",
	}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestCourse(t *testing.T, title string, price float64) models.Course {
	t.Helper()
	course := models.Course{Title: title, Price: price, IsPublished: true}
	if err := database.DB.Create(&course).Error; err != nil {
		t.Fatalf("failed to create test course: %v", err)
	}
	return course
}

func createTestBundle(t *testing.T, title string, price float64, accessType string, accessPeriodDays int, courses ...models.Course) models.Bundle {
	t.Helper()
	bundle := models.Bundle{
		Title:            title,
		Price:            price,
		AccessType:       accessType,
		AccessPeriodDays: accessPeriodDays,
		IsActive:         true,
		Courses:          courses,
	}
	if err := database.DB.Create(&bundle).Error; err != nil {
		t.Fatalf("failed to create test bundle: %v", err)
	}
	return bundle
}

func createTestCoupon(t *testing.T, code, discountType string, value float64) models.Coupon {
	t.Helper()
	coupon := models.Coupon{
		Code:          code,
		DiscountType:  discountType,
		DiscountValue: value,
		ExpiryDate:    time.Now().Add(30 * 24 * time.Hour),
		IsActive:      true,
	}
	if err := database.DB.Create(&coupon).Error; err != nil {
		t.Fatalf("failed to create test coupon: %v", err)
	}
	return coupon
}

func addToCart(t *testing.T, userID, itemID uuid.UUID, itemType string) {
	t.Helper()
	item := models.CartItem{UserID: userID, ItemID: itemID, ItemType: itemType}
	if err := database.DB.Create(&item).Error; err != nil {
		t.Fatalf("failed to add cart item: %v", err)
	}
}

func approxSameTime(t *testing.T, want, got time.Time) {
	t.Helper()
	diff := want.Sub(got)
	if diff < 0 {
		diff = -diff
	}
	if diff > 2*time.Second {
		t.Fatalf("expected time near %v, got %v", want, got)
	}
}
