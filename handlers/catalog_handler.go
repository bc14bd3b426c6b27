package handlers

import (
	"github.com/mridulaoc/life_academy/database"
	"github.com/mridulaoc/life_academy/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CourseRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gt=0"`
}

func CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	course := models.Course{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		IsPublished: true,
	}
	if err := database.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create course"})
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

func ListCourses(c *fiber.Ctx) error {
	var courses []models.Course
	database.DB.Where("is_published = ?", true).Find(&courses)
	return c.JSON(courses)
}

type BundleRequest struct {
	Title            string   `json:"title" validate:"required"`
	Description      string   `json:"description"`
	Price            float64  `json:"price" validate:"required,gt=0"`
	AccessType       string   `json:"access_type" validate:"required,oneof=permanent limited"`
	AccessPeriodDays int      `json:"access_period_days" validate:"gte=0"`
	CourseIDs        []string `json:"course_ids" validate:"required,min=1,dive,uuid"`
}

func CreateBundle(c *fiber.Ctx) error {
	var req BundleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.AccessType == models.BundleAccessLimited && req.AccessPeriodDays <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Limited bundles require a positive access period"})
	}

	courseIDs := make([]uuid.UUID, 0, len(req.CourseIDs))
	for _, id := range req.CourseIDs {
		courseIDs = append(courseIDs, uuid.MustParse(id))
	}
	var courses []models.Course
	if err := database.DB.Where("id IN ?", courseIDs).Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if len(courses) != len(courseIDs) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "One or more courses not found"})
	}

	bundle := models.Bundle{
		Title:            req.Title,
		Description:      req.Description,
		Price:            req.Price,
		AccessType:       req.AccessType,
		AccessPeriodDays: req.AccessPeriodDays,
		IsActive:         true,
		Courses:          courses,
	}
	if err := database.DB.Create(&bundle).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create bundle"})
	}
	return c.Status(fiber.StatusCreated).JSON(bundle)
}

func ListActiveBundles(c *fiber.Ctx) error {
	var bundles []models.Bundle
	database.DB.Preload("Courses").Where("is_active = ?", true).Find(&bundles)
	return c.JSON(bundles)
}
