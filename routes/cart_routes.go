package routes

import (
	"github.com/mridulaoc/life_academy/handlers"
	"github.com/mridulaoc/life_academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func CartRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	cart := api.Group("/cart", middleware.Protected())
	cart.Get("", handlers.GetCart)
	cart.Post("/items", handlers.AddCartItem)
	cart.Delete("/items/:itemId", handlers.RemoveCartItem)
}
