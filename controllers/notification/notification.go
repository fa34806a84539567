package notificationControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/middleware"
	"github.com/sonali-vishwakarma08/bakery-api/models"
)

type SendRequest struct {
	UserID   uint                    `json:"user_id" binding:"required"`
	Title    string                  `json:"title" binding:"required"`
	Message  string                  `json:"message"`
	Type     models.NotificationType `json:"type"`
	Priority string                  `json:"priority"`
}

type BroadcastRequest struct {
	TargetRole models.Role             `json:"target_role" binding:"required"`
	Title      string                  `json:"title" binding:"required"`
	Message    string                  `json:"message"`
	Type       models.NotificationType `json:"type"`
	Priority   string                  `json:"priority"`
	SendEmail  bool                    `json:"send_email"`
}

// SendHandler sends a direct notification to one user (admin).
func SendHandler(d *Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		n, err := d.Send(c.Request.Context(), req.UserID, models.Notification{
			Title:    req.Title,
			Message:  req.Message,
			Type:     req.Type,
			Priority: req.Priority,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, n)
	}
}

// BroadcastHandler fans a notification out to every user of a role (admin).
func BroadcastHandler(d *Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BroadcastRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		n, count, err := d.Broadcast(c.Request.Context(), req.TargetRole, models.Notification{
			Title:    req.Title,
			Message:  req.Message,
			Type:     req.Type,
			Priority: req.Priority,
		}, req.SendEmail)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"notification": n, "recipients": count})
	}
}

// GetAllHandler lists canonical notifications for the admin panel.
// Delivery copies of broadcasts are excluded so each broadcast shows once.
func GetAllHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var notifications []models.Notification
		if err := db.
			Where("is_delivery_copy = ?", false).
			Order("created_at DESC").
			Find(&notifications).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
			return
		}
		c.JSON(http.StatusOK, notifications)
	}
}

// GetMineHandler lists the authenticated user's notifications, including
// delivery copies of broadcasts addressed to them.
func GetMineHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		var notifications []models.Notification
		if err := db.
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Find(&notifications).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
			return
		}
		c.JSON(http.StatusOK, notifications)
	}
}

// UnreadCountHandler returns the authenticated user's unread count.
func UnreadCountHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		var count int64
		if err := db.Model(&models.Notification{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread": count})
	}
}

// MarkReadHandler marks one of the user's notifications as read.
func MarkReadHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.CurrentUserID(c)
		id := c.Param("id")

		res := db.Model(&models.Notification{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_read", true)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
	}
}

// MarkAllReadHandler marks all of the user's notifications as read.
func MarkAllReadHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.CurrentUserID(c)
		if err := db.Model(&models.Notification{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Update("is_read", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
	}
}

// DeleteHandler removes a notification (admin). Deleting a canonical
// broadcast also removes its delivery copies.
func DeleteHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		var n models.Notification
		if err := db.First(&n, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if n.UserID == nil && n.TargetRole != "" {
				if err := tx.Where("broadcast_id = ?", n.ID).
					Delete(&models.Notification{}).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&n).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
	}
}
