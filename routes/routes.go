package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/config"
	notificationControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/notification"
	paymentControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/payment"
)

// Deps carries the shared handler dependencies built in main.
type Deps struct {
	Gateway  paymentControllers.Gateway
	Notifier *notificationControllers.Dispatcher
}

// SetupRoutes is the single entry point that wires up every route group.
func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, deps Deps) {
	// Public routes (no middleware)
	SetupAuthRoutes(r, db, cfg)
	SetupPublicRoutes(r, db, cfg, deps)

	// JWT-protected customer/staff routes
	SetupUserRoutes(r, db, cfg, deps)

	// JWT + admin role
	SetupAdminRoutes(r, db, cfg, deps)
}
