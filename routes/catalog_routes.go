package routes

import (
	"github.com/mridulaoc/life_academy/handlers"
	"github.com/mridulaoc/life_academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func CatalogRoutes(app *fiber.App) {
	api := app.Group("/api/v1")
	api.Get("/courses", handlers.ListCourses)
	api.Get("/bundles", handlers.ListActiveBundles)

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Post("/courses", handlers.CreateCourse)
	admin.Post("/bundles", handlers.CreateBundle)
}
