package handlers

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/mridulaoc/life_academy/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateOrderRequest struct {
	BillingName  string  `json:"billing_name" validate:"required"`
	BillingEmail string  `json:"billing_email" validate:"required,email"`
	Tax          float64 `json:"tax" validate:"gte=0"`
	CouponCode   string  `json:"coupon_code,omitempty"`
}

func CreateOrder(c *fiber.Ctx) error {
	userID := userIDFromToken(c)

	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := services.CreateOrder(userID, services.BillingDetails{
		Name:  req.BillingName,
		Email: req.BillingEmail,
		Tax:   req.Tax,
	}, req.CouponCode)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order":        order,
		"amount_minor": services.ToMinorUnits(order.Amount),
		"currency":     order.Currency,
	})
}

type VerifyPaymentRequest struct {
	ExternalOrderID string `json:"external_order_id" validate:"required"`
	PaymentID       string `json:"payment_id" validate:"required"`
	Signature       string `json:"signature" validate:"required"`
}

func VerifyPayment(c *fiber.Ctx) error {
	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, alreadyCompleted, err := services.VerifyAndCompleteOrder(req.ExternalOrderID, req.PaymentID, req.Signature)
	if err != nil {
		return serviceError(c, err)
	}
	if alreadyCompleted {
		return c.JSON(fiber.Map{"message": "Order already completed", "order": order})
	}
	return c.JSON(fiber.Map{"message": "Payment verified and order completed", "order": order})
}

type OrderActionRequest struct {
	ExternalOrderID string `json:"external_order_id" validate:"required"`
	Reason          string `json:"reason,omitempty"`
}

func ConfirmPayment(c *fiber.Ctx) error {
	userID := userIDFromToken(c)

	var req OrderActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := services.ConfirmPayment(req.ExternalOrderID, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"order": order})
}

func CancelPayment(c *fiber.Ctx) error {
	userID := userIDFromToken(c)

	var req OrderActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := services.CancelOrder(req.ExternalOrderID, userID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order cancelled"})
}

func FailPayment(c *fiber.Ctx) error {
	userID := userIDFromToken(c)

	var req OrderActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := services.MarkOrderFailed(req.ExternalOrderID, userID, req.Reason); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order marked as failed"})
}

func RetryPayment(c *fiber.Ctx) error {
	userID := userIDFromToken(c)

	var req OrderActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := services.RetryPayment(req.ExternalOrderID, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":      "New gateway order created",
		"order":        order,
		"amount_minor": services.ToMinorUnits(order.Amount),
	})
}

func ListMyOrders(c *fiber.Ctx) error {
	userID := userIDFromToken(c)
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	orders, total, err := services.ListOrders(userID, page, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"orders": orders,
		"meta": fiber.Map{
			"total":        total,
			"current_page": page,
			"total_pages":  int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

func RequestRefund(c *fiber.Ctx) error {
	userID := userIDFromToken(c)
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID format"})
	}

	order, err := services.RequestRefund(orderID, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Refund processed", "order": order})
}

type ProcessRefundRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
}

func ProcessRefund(c *fiber.Ctx) error {
	var req ProcessRefundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := services.ProcessRefundAdmin(uuid.MustParse(req.OrderID))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Refund marked as processed", "order": order})
}

func GetOrderReceipt(c *fiber.Ctx) error {
	userID := userIDFromToken(c)
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order ID format"})
	}

	pdfBytes, err := services.GenerateOrderReceipt(orderID, userID)
	if err != nil {
		return serviceError(c, err)
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", orderID))
	return c.Send(pdfBytes)
}

func GetSalesReport(c *fiber.Ctx) error {
	start, err := time.Parse("2006-01-02", c.Query("startDate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid startDate, expected YYYY-MM-DD"})
	}
	end, err := time.Parse("2006-01-02", c.Query("endDate"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid endDate, expected YYYY-MM-DD"})
	}

	report, err := services.BuildSalesReport(start, end.Add(24*time.Hour))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(report)
}
