package handlers

import (
	"errors"

	"github.com/mridulaoc/life_academy/database"
	"github.com/mridulaoc/life_academy/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AddCartItemRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	ItemType string `json:"item_type" validate:"required,oneof=course bundle"`
}

func AddCartItem(c *fiber.Ctx) error {
	userID := userIDFromToken(c)

	var req AddCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	itemID := uuid.MustParse(req.ItemID)
	switch req.ItemType {
	case models.ItemTypeCourse:
		var course models.Course
		if err := database.DB.First(&course, "id = ? AND is_published = ?", itemID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
		}
	case models.ItemTypeBundle:
		var bundle models.Bundle
		if err := database.DB.First(&bundle, "id = ? AND is_active = ?", itemID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bundle not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
		}
	}

	item := models.CartItem{UserID: userID, ItemID: itemID, ItemType: req.ItemType}
	if err := database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add item to cart"})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func RemoveCartItem(c *fiber.Ctx) error {
	userID := userIDFromToken(c)
	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID format"})
	}

	result := database.DB.Where("user_id = ? AND item_id = ?", userID, itemID).Delete(&models.CartItem{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove item"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Item not in cart"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func GetCart(c *fiber.Ctx) error {
	userID := userIDFromToken(c)

	var items []models.CartItem
	if err := database.DB.Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(fiber.Map{"items": items})
}
