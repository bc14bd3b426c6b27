package routes

import (
	"github.com/mridulaoc/life_academy/handlers"
	"github.com/mridulaoc/life_academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func CouponRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	coupons := api.Group("/coupons", middleware.Protected())
	coupons.Post("/validate", handlers.ValidateCoupon)

	adminCoupons := api.Group("/admin/coupons", middleware.Protected(), middleware.AdminRequired())
	adminCoupons.Post("", handlers.CreateCoupon)
	adminCoupons.Get("", handlers.ListCoupons)
}
