package deliveryControllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	notificationControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/notification"
	orderControllers "github.com/sonali-vishwakarma08/bakery-api/controllers/order"
	"github.com/sonali-vishwakarma08/bakery-api/middleware"
	"github.com/sonali-vishwakarma08/bakery-api/models"
)

type AssignDeliveryInput struct {
	OrderID uint   `json:"order_id" binding:"required"`
	StaffID uint   `json:"staff_id" binding:"required"`
	Notes   string `json:"notes"`
}

type UpdateDeliveryInput struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

func parseDeliveryStatus(s string) (models.DeliveryStatus, bool) {
	switch models.DeliveryStatus(s) {
	case models.DeliveryStatusAssigned, models.DeliveryStatusPickedUp,
		models.DeliveryStatusOnTheWay, models.DeliveryStatusDelivered,
		models.DeliveryStatusFailed:
		return models.DeliveryStatus(s), true
	}
	return "", false
}

// POST /admin/deliveries assigns delivery staff to an order. The order
// moves to out_for_delivery when it is packed.
func AssignDelivery(db *gorm.DB, notifier *notificationControllers.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input AssignDeliveryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.Order
		if err := db.First(&order, input.OrderID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		var staff models.User
		if err := db.First(&staff, "id = ? AND role = ?", input.StaffID, models.RoleStaff).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery staff not found"})
			return
		}

		var existing models.Delivery
		if err := db.First(&existing, "order_id = ?", order.ID).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order already has an assigned delivery"})
			return
		}

		delivery := models.Delivery{
			OrderID:    order.ID,
			StaffID:    staff.ID,
			Status:     models.DeliveryStatusAssigned,
			Notes:      input.Notes,
			AssignedAt: time.Now(),
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&delivery).Error; err != nil {
				return err
			}
			updates := map[string]interface{}{"delivery_user_id": staff.ID}
			if order.Status.CanTransition(models.OrderStatusOutForDelivery) {
				updates["status"] = models.OrderStatusOutForDelivery
				order.Status = models.OrderStatusOutForDelivery
			}
			return tx.Model(&order).Updates(updates).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign delivery"})
			return
		}

		if notifier != nil {
			notifier.NotifyOrderStatus(c.Request.Context(), &order)
			_, _ = notifier.Send(c.Request.Context(), staff.ID, models.Notification{
				Title:   "New delivery assigned",
				Message: fmt.Sprintf("Order %s has been assigned to you for delivery.", order.Code),
				Type:    models.NotificationTypeOrder,
				OrderID: &order.ID,
			})
		}
		orderControllers.BroadcastOrderUpdate(order)

		c.JSON(http.StatusCreated, delivery)
	}
}

// PUT /deliveries/:id updates a delivery's status. Delivery staff may
// only update their own assignments; delivered moves the order to its
// terminal state.
func UpdateDeliveryStatus(db *gorm.DB, notifier *notificationControllers.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateDeliveryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, ok := parseDeliveryStatus(input.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery status"})
			return
		}

		var delivery models.Delivery
		if err := db.First(&delivery, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Delivery not found"})
			return
		}

		role, _ := c.Get("role")
		if role == string(models.RoleStaff) {
			userID, _ := middleware.CurrentUserID(c)
			if delivery.StaffID != userID {
				c.JSON(http.StatusForbidden, gin.H{"error": "Not your delivery"})
				return
			}
		}

		delivery.Status = status
		if input.Notes != "" {
			delivery.Notes = input.Notes
		}
		if status == models.DeliveryStatusDelivered {
			now := time.Now()
			delivery.DeliveredAt = &now
		}

		var order models.Order
		if err := db.First(&order, delivery.OrderID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&delivery).Error; err != nil {
				return err
			}
			if status == models.DeliveryStatusDelivered &&
				order.Status.CanTransition(models.OrderStatusDelivered) {
				order.Status = models.OrderStatusDelivered
				return tx.Model(&order).Update("status", models.OrderStatusDelivered).Error
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update delivery"})
			return
		}

		if status == models.DeliveryStatusDelivered {
			if notifier != nil {
				notifier.NotifyOrderStatus(c.Request.Context(), &order)
			}
			orderControllers.BroadcastOrderUpdate(order)
		}

		c.JSON(http.StatusOK, delivery)
	}
}

// GET /admin/deliveries lists all deliveries; staff see only their own
// via GET /deliveries/mine.
func GetAllDeliveries(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Order").Preload("Staff", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name", "phone")
		}).Order("created_at desc")
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		var deliveries []models.Delivery
		if err := query.Find(&deliveries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deliveries"})
			return
		}
		c.JSON(http.StatusOK, deliveries)
	}
}

// GET /deliveries/mine lists the calling staff member's assignments.
func GetMyDeliveries(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.CurrentUserID(c)
		var deliveries []models.Delivery
		if err := db.Preload("Order").Preload("Order.Items").
			Where("staff_id = ?", userID).
			Order("created_at desc").Find(&deliveries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch deliveries"})
			return
		}
		c.JSON(http.StatusOK, deliveries)
	}
}
