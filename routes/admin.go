package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/config"
	adminControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/admin"
	bannerControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/banner"
	couponControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/coupon"
	deliveryControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/delivery"
	notificationControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/notification"
	orderControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/order"
	paymentControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/payment"
	productControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/product"
	reviewControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/review"
	settingsControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/settings"
	userControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/user"
	"github.com/sonali-vishwakarma08/bakery-api/middleware"
	"github.com/sonali-vishwakarma08/bakery-api/models"
)

// SetupAdminRoutes wires the back-office routes behind JWT + admin role.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, deps Deps) {
	admin := r.Group("/admin")
	admin.Use(middleware.ValidateToken(cfg.Auth.JWTSecret),
		middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/dashboard", adminControllers.GetDashboardStats(db))
		admin.GET("/reports/sales", adminControllers.GetSalesReport(db))
		admin.GET("/reports/top-products", adminControllers.GetTopProducts(db))

		admin.GET("/users", userControllers.GetAllUsers(db))
		admin.POST("/users/:id/role", userControllers.UpdateUserRole(db))
		admin.POST("/users/:id/deactivate", userControllers.DeactivateUser(db))

		admin.POST("/products", productControllers.CreateProduct(db, cfg.Uploads.Dir))
		admin.PUT("/products/:id", productControllers.UpdateProduct(db, cfg.Uploads.Dir))
		admin.DELETE("/products/:id", productControllers.DeleteProduct(db, cfg.Uploads.Dir))
		admin.POST("/products/import", productControllers.ImportProductsFromExcel(db))
		admin.GET("/products/export", productControllers.ExportProductsToExcel(db))

		admin.POST("/categories", productControllers.CreateCategory(db, cfg.Uploads.Dir))
		admin.PUT("/categories/:id", productControllers.UpdateCategory(db, cfg.Uploads.Dir))
		admin.DELETE("/categories/:id", productControllers.DeleteCategory(db, cfg.Uploads.Dir))
		admin.POST("/subcategories", productControllers.CreateSubCategory(db, cfg.Uploads.Dir))
		admin.PUT("/subcategories/:id", productControllers.UpdateSubCategory(db, cfg.Uploads.Dir))
		admin.DELETE("/subcategories/:id", productControllers.DeleteSubCategory(db, cfg.Uploads.Dir))

		admin.GET("/orders", orderControllers.GetAllOrdersHandler(db))
		admin.GET("/orders/:orderID", orderControllers.GetOrderHandler(db))
		admin.PUT("/orders/:orderID", orderControllers.UpdateOrderHandler(db, deps.Notifier))
		admin.DELETE("/orders/:orderID", orderControllers.DeleteOrderHandler(db))
		admin.GET("/orders-export", orderControllers.ExportOrdersToExcel(db))
		admin.GET("/orders/:orderID/payments", paymentControllers.GetOrderPaymentsHandler(db))

		admin.POST("/payments/refund", paymentControllers.RefundPaymentHandler(db, deps.Gateway, deps.Notifier))

		admin.POST("/coupons", couponControllers.CreateCoupon(db))
		admin.GET("/coupons", couponControllers.GetAllCoupons(db))
		admin.PUT("/coupons/:id", couponControllers.UpdateCoupon(db))
		admin.DELETE("/coupons/:id", couponControllers.DeleteCoupon(db))

		admin.POST("/banners", bannerControllers.CreateBanner(db, cfg.Uploads.Dir))
		admin.GET("/banners", bannerControllers.GetAllBanners(db))
		admin.PUT("/banners/:id", bannerControllers.UpdateBanner(db))
		admin.DELETE("/banners/:id", bannerControllers.DeleteBanner(db, cfg.Uploads.Dir))

		admin.GET("/reviews", reviewControllers.GetAllReviews(db))
		admin.POST("/reviews/:id/approve", reviewControllers.ApproveReview(db))

		admin.POST("/deliveries", deliveryControllers.AssignDelivery(db, deps.Notifier))
		admin.GET("/deliveries", deliveryControllers.GetAllDeliveries(db))

		admin.PUT("/settings", settingsControllers.UpdateSettings(db))

		admin.POST("/notifications", notificationControllers.SendHandler(deps.Notifier))
		admin.POST("/notifications/broadcast", notificationControllers.BroadcastHandler(deps.Notifier))
		admin.GET("/notifications", notificationControllers.GetAllHandler(db))
		admin.DELETE("/notifications/:id", notificationControllers.DeleteHandler(db))
	}
}
