package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/config"
	bannerControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/banner"
	couponControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/coupon"
	orderControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/order"
	paymentControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/payment"
	productControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/product"
	reviewControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/review"
	settingsControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/settings"
	"github.com/sonali-vishwakarma08/bakery-api/middleware"
)

// SetupPublicRoutes wires the storefront endpoints that need no auth,
// plus the gateway webhook which carries its own signature check.
func SetupPublicRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, deps Deps) {
	r.GET("/products", productControllers.GetProducts(db))
	r.GET("/products/:id", productControllers.GetProductByID(db))
	r.GET("/products/:id/reviews", reviewControllers.GetProductReviews(db))

	r.GET("/categories", productControllers.GetAllCategories(db))
	r.GET("/categories/:id", productControllers.GetCategoryWithProducts(db))

	r.GET("/banners", bannerControllers.GetActiveBanners(db))
	r.GET("/settings", settingsControllers.GetSettings(db))

	r.GET("/coupons", couponControllers.GetActiveCoupons(db))
	r.POST("/coupons/validate", couponControllers.ValidateCoupon(db))

	// Live order feed for the admin dashboard.
	r.GET("/ws/orders", orderControllers.OrderWebSocketHandler)

	// Gateway callbacks are authenticated by webhook signature, not JWT.
	r.POST("/payments/webhook",
		middleware.PayPalWebhookAuth(deps.Gateway, cfg.PayPal.Mode),
		paymentControllers.WebhookHandler(db, deps.Notifier))
}
