package services

import "errors"

// Domain errors. Handlers map these with errors.Is so "not found" never gets
// collapsed into an empty result and callers can assert on cause.
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidState       = errors.New("operation not permitted in current order state")
	ErrInvalidAmount      = errors.New("computed order total must be positive")
	ErrSignatureMismatch  = errors.New("payment signature mismatch")
	ErrPaymentNotCaptured = errors.New("payment not captured by gateway")
	ErrGateway            = errors.New("payment gateway request failed")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCouponNotFound     = errors.New("coupon not found or expired")
	ErrCouponAlreadyUsed  = errors.New("coupon already used by this user")
	ErrNotEligible        = errors.New("order is not eligible for refund")
	ErrAlreadyEnrolled    = errors.New("user is already enrolled")
)
