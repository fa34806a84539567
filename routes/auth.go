package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/auth"
	"github.com/sonali-vishwakarma08/bakery-api/config"
)

func SetupAuthRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.RegisterHandler(db, cfg.Auth))
		authGroup.POST("/login", auth.LoginHandler(db, cfg.Auth))
	}
}
