package handlers

import (
	"github.com/mridulaoc/life_academy/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func GetMyEnrollments(c *fiber.Ctx) error {
	userID := userIDFromToken(c)

	enrollments, err := services.ListUserEnrollments(userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(enrollments)
}

type ManualEnrollRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	ItemID   string `json:"item_id" validate:"required,uuid"`
	ItemType string `json:"item_type" validate:"required,oneof=course bundle"`
}

func ManualEnroll(c *fiber.Ctx) error {
	var req ManualEnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	err := services.ManualEnroll(uuid.MustParse(req.UserID), uuid.MustParse(req.ItemID), req.ItemType)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Enrollment created"})
}
