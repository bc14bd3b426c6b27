package handlers

import (
	"time"

	"github.com/mridulaoc/life_academy/database"
	"github.com/mridulaoc/life_academy/models"
	"github.com/mridulaoc/life_academy/services"
	"github.com/mridulaoc/life_academy/utils"
	"github.com/gofiber/fiber/v2"
)

type ValidateCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

func ValidateCoupon(c *fiber.Ctx) error {
	userID := userIDFromToken(c)

	var req ValidateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	snap, err := services.ValidateCoupon(req.Code, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(snap)
}

type CreateCouponRequest struct {
	Code          string    `json:"code,omitempty"`
	DiscountType  string    `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue float64   `json:"discount_value" validate:"required,gt=0"`
	ExpiryDate    time.Time `json:"expiry_date" validate:"required"`
}

func CreateCoupon(c *fiber.Ctx) error {
	var req CreateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.DiscountType == models.DiscountTypePercentage && req.DiscountValue > 100 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Percentage discount cannot exceed 100"})
	}

	code := req.Code
	if code == "" {
		generated, err := utils.GenerateUniqueCouponCode(database.DB)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate coupon code"})
		}
		code = generated
	}

	coupon := models.Coupon{
		Code:          code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		ExpiryDate:    req.ExpiryDate,
		IsActive:      true,
	}
	if err := database.DB.Create(&coupon).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create coupon"})
	}
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

func ListCoupons(c *fiber.Ctx) error {
	var coupons []models.Coupon
	database.DB.Order("created_at desc").Find(&coupons)
	return c.JSON(coupons)
}
