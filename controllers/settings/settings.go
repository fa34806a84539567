package settingsControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/models"
)

// GET /settings returns the store-wide configuration row.
func GetSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := models.GetSettings(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

// PUT /admin/settings applies partial updates to the singleton row.
func UpdateSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := models.GetSettings(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
			return
		}

		var input struct {
			StoreName      *string  `json:"store_name"`
			ContactEmail   *string  `json:"contact_email"`
			ContactPhone   *string  `json:"contact_phone"`
			Currency       *string  `json:"currency"`
			TaxRate        *float64 `json:"tax_rate"`
			DeliveryCharge *float64 `json:"delivery_charge"`
			MinOrderAmount *float64 `json:"min_order_amount"`
			StoreOpen      *bool    `json:"store_open"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updates := make(map[string]interface{})
		if input.StoreName != nil {
			updates["store_name"] = *input.StoreName
		}
		if input.ContactEmail != nil {
			updates["contact_email"] = *input.ContactEmail
		}
		if input.ContactPhone != nil {
			updates["contact_phone"] = *input.ContactPhone
		}
		if input.Currency != nil {
			updates["currency"] = *input.Currency
		}
		if input.TaxRate != nil {
			updates["tax_rate"] = *input.TaxRate
		}
		if input.DeliveryCharge != nil {
			updates["delivery_charge"] = *input.DeliveryCharge
		}
		if input.MinOrderAmount != nil {
			updates["min_order_amount"] = *input.MinOrderAmount
		}
		if input.StoreOpen != nil {
			updates["store_open"] = *input.StoreOpen
		}

		if len(updates) > 0 {
			if err := db.Model(settings).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
				return
			}
		}
		c.JSON(http.StatusOK, settings)
	}
}
