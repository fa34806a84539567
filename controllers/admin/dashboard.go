package adminControllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/models"
)

// GetDashboardStats aggregates headline numbers for the admin home
// screen: order counts by status, revenue, customers, low stock and
// pending moderation queues.
func GetDashboardStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			totalOrders     int64
			pendingOrders   int64
			deliveredOrders int64
			cancelledOrders int64
			totalCustomers  int64
			totalProducts   int64
			lowStock        int64
			pendingReviews  int64
			totalRevenue    float64
			todayRevenue    float64
		)

		db.Model(&models.Order{}).Count(&totalOrders)
		db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&pendingOrders)
		db.Model(&models.Order{}).Where("status = ?", models.OrderStatusDelivered).Count(&deliveredOrders)
		db.Model(&models.Order{}).Where("status = ?", models.OrderStatusCancelled).Count(&cancelledOrders)
		db.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&totalCustomers)
		db.Model(&models.Product{}).Count(&totalProducts)
		db.Model(&models.Product{}).Where("stock < ?", 5).Count(&lowStock)
		db.Model(&models.Review{}).Where("is_approved = ?", false).Count(&pendingReviews)

		db.Model(&models.Order{}).
			Where("payment_status = ?", models.PaymentStateSuccess).
			Select("COALESCE(SUM(final_amount), 0)").Scan(&totalRevenue)

		startOfDay := time.Now().Truncate(24 * time.Hour)
		db.Model(&models.Order{}).
			Where("payment_status = ? AND created_at >= ?", models.PaymentStateSuccess, startOfDay).
			Select("COALESCE(SUM(final_amount), 0)").Scan(&todayRevenue)

		c.JSON(http.StatusOK, gin.H{
			"total_orders":     totalOrders,
			"pending_orders":   pendingOrders,
			"delivered_orders": deliveredOrders,
			"cancelled_orders": cancelledOrders,
			"total_customers":  totalCustomers,
			"total_products":   totalProducts,
			"low_stock_count":  lowStock,
			"pending_reviews":  pendingReviews,
			"total_revenue":    totalRevenue,
			"today_revenue":    todayRevenue,
		})
	}
}

// GetSalesReport returns per-day order counts and revenue for a date
// range (default last 30 days).
func GetSalesReport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		days := 30
		since := time.Now().AddDate(0, 0, -days)
		if v := c.Query("from"); v != "" {
			if t, err := time.Parse("2006-01-02", v); err == nil {
				since = t
			}
		}

		type dayRow struct {
			Day     string  `json:"day"`
			Orders  int64   `json:"orders"`
			Revenue float64 `json:"revenue"`
		}
		var rows []dayRow
		if err := db.Model(&models.Order{}).
			Select("DATE(created_at) AS day, COUNT(*) AS orders, COALESCE(SUM(final_amount), 0) AS revenue").
			Where("created_at >= ? AND payment_status = ?", since, models.PaymentStateSuccess).
			Group("DATE(created_at)").
			Order("day asc").
			Scan(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build sales report"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"since": since.Format("2006-01-02"), "rows": rows})
	}
}

// GetTopProducts lists best sellers by quantity sold.
func GetTopProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		type productRow struct {
			ProductID   uint    `json:"product_id"`
			ProductName string  `json:"product_name"`
			Sold        int64   `json:"sold"`
			Revenue     float64 `json:"revenue"`
		}
		var rows []productRow
		if err := db.Model(&models.OrderItem{}).
			Select("order_items.product_id, order_items.product_name, SUM(order_items.quantity) AS sold, SUM(order_items.quantity * order_items.unit_price) AS revenue").
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.status <> ?", models.OrderStatusCancelled).
			Group("order_items.product_id, order_items.product_name").
			Order("sold desc").
			Limit(10).
			Scan(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top products"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}
