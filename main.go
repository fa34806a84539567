package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/config"
	notificationControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/notification"
	paymentControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/payment"
	"github.com/sonali-vishwakarma08/bakery-api/middleware"
	"github.com/sonali-vishwakarma08/bakery-api/models"
	"github.com/sonali-vishwakarma08/bakery-api/routes"
	"github.com/sonali-vishwakarma08/bakery-api/utils"
)

func main() {
	cfg := config.Load()

	utils.InitLogger(cfg.Server.Env)
	defer utils.SyncLogger()
	logger := utils.GetLogger()

	logger.Info("starting bakery api", zap.String("env", cfg.Server.Env))

	db := initDatabase(cfg, logger)

	if err := db.AutoMigrate(
		&models.User{},
		&models.PushToken{},
		&models.Category{},
		&models.SubCategory{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.WebhookEvent{},
		&models.Coupon{},
		&models.Notification{},
		&models.Delivery{},
		&models.Review{},
		&models.Banner{},
		&models.Setting{},
	); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics())

	r.MaxMultipartMemory = 32 << 20 // 32 MB

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Static("/uploads", cfg.Uploads.Dir)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	gateway := paymentControllers.NewPayPalGateway(cfg.PayPal)

	pusher, err := notificationControllers.NewFCMPusher(context.Background(), cfg.Firebase.CredentialsFile)
	if err != nil {
		logger.Warn("push notifications disabled", zap.Error(err))
	}
	mailer := notificationControllers.NewSMTPMailer(cfg.SMTP)

	// Keep disabled channels as untyped nils so the dispatcher skips them.
	var pushChannel notificationControllers.Pusher
	if pusher != nil {
		pushChannel = pusher
	}
	var mailChannel notificationControllers.Mailer
	if mailer != nil {
		mailChannel = mailer
	}
	notifier := notificationControllers.NewDispatcher(db, pushChannel, mailChannel)

	routes.SetupRoutes(r, db, cfg, routes.Deps{
		Gateway:  gateway,
		Notifier: notifier,
	})

	// Expire stale coupons at startup and then every night at 00:05.
	if n, err := models.SweepExpiredCoupons(db); err != nil {
		logger.Error("coupon sweep failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("expired coupons swept", zap.Int64("count", n))
	}
	go startDailyCouponSweep(db, logger, 0, 5)

	addr := ":" + cfg.Server.Port
	logger.Info("server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

// initDatabase opens the GORM connection from DATABASE_URL when set,
// falling back to discrete host/user settings.
func initDatabase(cfg *config.Config, logger *zap.Logger) *gorm.DB {
	dsn := cfg.Database.URL
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.Database.Host, cfg.Database.User, cfg.Database.Password,
			cfg.Database.Name, cfg.Database.Port,
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	return db
}

// startDailyCouponSweep marks expired coupons once a day at a fixed time.
func startDailyCouponSweep(db *gorm.DB, logger *zap.Logger, hour, min int) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		time.Sleep(next.Sub(now))

		if n, err := models.SweepExpiredCoupons(db); err != nil {
			logger.Error("coupon sweep failed", zap.Error(err))
		} else if n > 0 {
			logger.Info("expired coupons swept", zap.Int64("count", n))
		}
	}
}
