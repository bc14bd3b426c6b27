package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusPending         = "pending"
	OrderStatusCompleted       = "completed"
	OrderStatusFailed          = "failed"
	OrderStatusCancelled       = "cancelled"
	OrderStatusRefundRequested = "refund_requested"
	OrderStatusRefundProcessed = "refund_processed"
)

// Order is the ledger record of one checkout attempt. Once completed, the
// amount, items and coupon snapshot never change; only payment/refund
// metadata and the status move after that.
type Order struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ExternalOrderID  string    `gorm:"size:255;not null;unique" json:"external_order_id"`
	UserID           uuid.UUID `gorm:"not null;index" json:"user_id"`
	Amount           float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Subtotal         float64   `gorm:"type:numeric(10,2);not null" json:"subtotal"`
	Discount         float64   `gorm:"type:numeric(10,2);default:0" json:"discount"`
	Tax              float64   `gorm:"type:numeric(10,2);default:0" json:"tax"`
	Currency         string    `gorm:"size:3;default:'INR'" json:"currency"`
	Status           string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaymentStatus    string    `gorm:"size:50" json:"payment_status"`
	PaymentID        *string   `gorm:"size:255" json:"payment_id"`
	PaymentSignature *string   `gorm:"size:255" json:"-"`

	CouponID     *uuid.UUID `json:"coupon_id"`
	CouponCode   *string    `gorm:"size:20" json:"coupon_code"`
	CouponType   *string    `gorm:"size:20" json:"coupon_type"`
	CouponValue  *float64   `gorm:"type:numeric(10,2)" json:"coupon_value"`
	CouponExpiry *time.Time `json:"coupon_expiry"`

	RefundID     *string `gorm:"size:255" json:"refund_id"`
	RefundStatus *string `gorm:"size:20" json:"refund_status"`

	BillingName  string `gorm:"size:255" json:"billing_name"`
	BillingEmail string `gorm:"size:255" json:"billing_email"`

	Items []OrderItem `gorm:"foreignkey:OrderID" json:"items"`

	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is a price snapshot taken at order creation. Catalog edits after
// the fact must never change a persisted order.
type OrderItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrderID  uuid.UUID `gorm:"not null;index" json:"order_id"`
	ItemID   uuid.UUID `gorm:"not null" json:"item_id"`
	ItemType string    `gorm:"size:10;not null" json:"item_type"`
	Title    string    `gorm:"size:255;not null" json:"title"`
	Price    float64   `gorm:"type:numeric(10,2);not null" json:"price"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
