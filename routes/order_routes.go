package routes

import (
	"github.com/mridulaoc/life_academy/handlers"
	"github.com/mridulaoc/life_academy/middleware"
	"github.com/gofiber/fiber/v2"
)

func OrderRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	orders := api.Group("/orders", middleware.Protected())
	orders.Post("/create-order", handlers.CreateOrder)
	orders.Post("/verify-payment", handlers.VerifyPayment)
	orders.Post("/confirm-payment", handlers.ConfirmPayment)
	orders.Post("/cancel-payment", handlers.CancelPayment)
	orders.Post("/fail-payment", handlers.FailPayment)
	orders.Post("/retry-payment", handlers.RetryPayment)
	orders.Get("", handlers.ListMyOrders)
	orders.Put("/:orderId/refund", handlers.RequestRefund)
	orders.Get("/:orderId/receipt", handlers.GetOrderReceipt)

	adminOrders := api.Group("/admin/orders", middleware.Protected(), middleware.AdminRequired())
	adminOrders.Put("/process-refund", handlers.ProcessRefund)
	adminOrders.Get("/sales-report", handlers.GetSalesReport)
}
