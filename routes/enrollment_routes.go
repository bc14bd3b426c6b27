package routes

import (
	"github.com/mridulaoc/life_academy/handlers"
	"github.com/mridulaoc/life_academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func EnrollmentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	enrollments := api.Group("/enrollments", middleware.Protected())
	enrollments.Get("/me", handlers.GetMyEnrollments)

	admin := api.Group("/admin/enrollments", middleware.Protected(), middleware.AdminRequired())
	admin.Post("", handlers.ManualEnroll)
}
