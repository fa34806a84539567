package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/config"
	deliveryControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/delivery"
	notificationControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/notification"
	orderControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/order"
	paymentControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/payment"
	reviewControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/review"
	userControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/user"
	"github.com/sonali-vishwakarma08/bakery-api/middleware"
	"github.com/sonali-vishwakarma08/bakery-api/models"
)

// SetupUserRoutes wires the JWT-protected customer and staff routes.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, deps Deps) {
	protected := r.Group("/")
	protected.Use(middleware.ValidateToken(cfg.Auth.JWTSecret))
	{
		protected.GET("/user", userControllers.GetUser(db))
		protected.PUT("/user", userControllers.UpdateUser(db))
		protected.POST("/user/push-tokens", userControllers.RegisterPushToken(db))

		protected.POST("/orders", orderControllers.CreateOrderHandler(db, deps.Notifier))
		protected.GET("/orders", orderControllers.GetUserOrdersHandler(db))
		protected.GET("/orders/:orderID", orderControllers.GetOrderHandler(db))

		protected.POST("/payments", paymentControllers.CreatePaymentHandler(db, deps.Gateway))
		protected.POST("/payments/verify", paymentControllers.VerifyPaymentHandler(db, deps.Gateway, deps.Notifier))
		protected.POST("/payments/cancel", paymentControllers.CancelPaymentHandler(db, deps.Notifier))
		protected.POST("/payments/retry", paymentControllers.RetryPaymentHandler(db, deps.Gateway))

		protected.POST("/reviews", reviewControllers.CreateReview(db))
		protected.DELETE("/reviews/:id", reviewControllers.DeleteReview(db))

		protected.GET("/notifications", notificationControllers.GetMineHandler(db))
		protected.GET("/notifications/unread-count", notificationControllers.UnreadCountHandler(db))
		protected.PUT("/notifications/:id/read", notificationControllers.MarkReadHandler(db))
		protected.POST("/notifications/read-all", notificationControllers.MarkAllReadHandler(db))
	}

	staff := r.Group("/deliveries")
	staff.Use(middleware.ValidateToken(cfg.Auth.JWTSecret),
		middleware.RequireRole(models.RoleStaff, models.RoleAdmin))
	{
		staff.GET("/mine", deliveryControllers.GetMyDeliveries(db))
		staff.PUT("/:id", deliveryControllers.UpdateDeliveryStatus(db, deps.Notifier))
	}
}
