package routes

import (
	"net/http"

	"attire-service/controllers"
	"attire-service/middleware"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Auth          *controllers.AuthController
	Customers     *controllers.CustomerController
	Orders        *controllers.OrderController
	Notifications *controllers.NotificationController
	Dashboard     *controllers.DashboardController
}

// Register mounts every route. Only /health and /auth/login are public.
func Register(r *gin.Engine, c Controllers, auth middleware.TokenValidator, loginLimiter *middleware.RateLimiter) {
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "attire-service"})
	})

	r.POST("/auth/login", loginLimiter.Middleware(), c.Auth.Login)

	api := r.Group("/")
	api.Use(middleware.AuthMiddleware(auth))

	api.POST("/auth/change-password", c.Auth.ChangePassword)

	customers := api.Group("/customers")
	customers.GET("", c.Customers.ListCustomers)
	customers.POST("", c.Customers.CreateCustomer)
	customers.GET("/:id", c.Customers.GetCustomer)
	customers.PUT("/:id", c.Customers.UpdateCustomer)
	customers.DELETE("/:id", c.Customers.DeleteCustomer)

	orders := api.Group("/orders")
	orders.GET("", c.Orders.ListOrders)
	orders.POST("", c.Orders.PlaceOrder)
	orders.GET("/:id", c.Orders.GetOrder)
	orders.PUT("/:id", c.Orders.EditOrder)
	orders.POST("/:id/payments", c.Orders.RecordPayment)
	orders.POST("/:id/dispatch", c.Orders.DispatchOrder)
	orders.POST("/:id/cancel", c.Orders.CancelOrder)
	orders.POST("/:id/items/:item_id/return", c.Orders.MarkItemReturned)
	orders.POST("/:id/deposit/refund", c.Orders.RefundDeposit)

	api.GET("/dashboard", c.Dashboard.GetDashboard)
	api.POST("/reminders/run", c.Dashboard.RunReminders)

	notifications := api.Group("/notifications")
	notifications.GET("", c.Notifications.ListNotifications)
	notifications.GET("/stream", c.Notifications.Stream)
	notifications.GET("/pending", c.Notifications.PendingNotifications)
	notifications.POST("/:id/sent", c.Notifications.MarkSent)
	notifications.POST("/:id/failed", c.Notifications.MarkFailed)
}
