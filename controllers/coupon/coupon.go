package couponControllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/models"
)

type CouponInput struct {
	Code              string    `json:"code" binding:"required"`
	Description       string    `json:"description"`
	DiscountType      string    `json:"discount_type" binding:"required"`
	DiscountValue     float64   `json:"discount_value" binding:"required"`
	MaxDiscountAmount float64   `json:"max_discount_amount"`
	MinOrderAmount    float64   `json:"min_order_amount"`
	StartDate         time.Time `json:"start_date" binding:"required"`
	ExpiryDate        time.Time `json:"expiry_date" binding:"required"`
	UsageLimit        int       `json:"usage_limit"`
	Status            string    `json:"status"`
}

type ValidateCouponRequest struct {
	Code        string  `json:"code" binding:"required"`
	OrderAmount float64 `json:"order_amount" binding:"required"`
}

func parseDiscountType(s string) (models.DiscountType, bool) {
	switch models.DiscountType(s) {
	case models.DiscountTypePercentage, models.DiscountTypeFlat:
		return models.DiscountType(s), true
	}
	return "", false
}

// POST /admin/coupons
func CreateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CouponInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		discountType, ok := parseDiscountType(input.DiscountType)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "discount_type must be percentage or flat"})
			return
		}
		if input.DiscountValue <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "discount_value must be positive"})
			return
		}
		if !input.ExpiryDate.After(input.StartDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expiry_date must be after start_date"})
			return
		}

		status := models.CouponStatus(input.Status)
		if status == "" {
			status = models.CouponStatusActive
		}

		coupon := models.Coupon{
			Code:              strings.ToUpper(strings.TrimSpace(input.Code)),
			Description:       input.Description,
			DiscountType:      discountType,
			DiscountValue:     input.DiscountValue,
			MaxDiscountAmount: input.MaxDiscountAmount,
			MinOrderAmount:    input.MinOrderAmount,
			StartDate:         input.StartDate,
			ExpiryDate:        input.ExpiryDate,
			UsageLimit:        input.UsageLimit,
			Status:            status,
		}
		if err := db.Create(&coupon).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Coupon code already exists"})
			return
		}
		c.JSON(http.StatusCreated, coupon)
	}
}

// GET /admin/coupons
func GetAllCoupons(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Order("created_at desc")
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		var coupons []models.Coupon
		if err := query.Find(&coupons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupons"})
			return
		}
		c.JSON(http.StatusOK, coupons)
	}
}

// PUT /admin/coupons/:id
func UpdateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var coupon models.Coupon
		if err := db.First(&coupon, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
			return
		}

		var input struct {
			Description       *string    `json:"description"`
			DiscountType      *string    `json:"discount_type"`
			DiscountValue     *float64   `json:"discount_value"`
			MaxDiscountAmount *float64   `json:"max_discount_amount"`
			MinOrderAmount    *float64   `json:"min_order_amount"`
			StartDate         *time.Time `json:"start_date"`
			ExpiryDate        *time.Time `json:"expiry_date"`
			UsageLimit        *int       `json:"usage_limit"`
			Status            *string    `json:"status"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if input.Description != nil {
			coupon.Description = *input.Description
		}
		if input.DiscountType != nil {
			discountType, ok := parseDiscountType(*input.DiscountType)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "discount_type must be percentage or flat"})
				return
			}
			coupon.DiscountType = discountType
		}
		if input.DiscountValue != nil {
			if *input.DiscountValue <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "discount_value must be positive"})
				return
			}
			coupon.DiscountValue = *input.DiscountValue
		}
		if input.MaxDiscountAmount != nil {
			coupon.MaxDiscountAmount = *input.MaxDiscountAmount
		}
		if input.MinOrderAmount != nil {
			coupon.MinOrderAmount = *input.MinOrderAmount
		}
		if input.StartDate != nil {
			coupon.StartDate = *input.StartDate
		}
		if input.ExpiryDate != nil {
			coupon.ExpiryDate = *input.ExpiryDate
		}
		if input.UsageLimit != nil {
			coupon.UsageLimit = *input.UsageLimit
		}
		if input.Status != nil {
			switch models.CouponStatus(*input.Status) {
			case models.CouponStatusActive, models.CouponStatusExpired, models.CouponStatusDisabled:
				coupon.Status = models.CouponStatus(*input.Status)
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
				return
			}
		}

		if err := db.Save(&coupon).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coupon"})
			return
		}
		c.JSON(http.StatusOK, coupon)
	}
}

// DELETE /admin/coupons/:id
func DeleteCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := db.Delete(&models.Coupon{}, "id = ?", c.Param("id"))
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete coupon"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted successfully"})
	}
}

// GET /coupons lists currently usable coupons for the storefront.
func GetActiveCoupons(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		var coupons []models.Coupon
		if err := db.
			Where("status = ? AND start_date <= ? AND expiry_date >= ?",
				models.CouponStatusActive, now, now).
			Where("usage_limit = 0 OR used_count < usage_limit").
			Order("expiry_date asc").
			Find(&coupons).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coupons"})
			return
		}
		c.JSON(http.StatusOK, coupons)
	}
}

// POST /coupons/validate checks a code against an order amount and
// returns the discount that would apply. No usage is consumed here;
// redemption happens when the order is placed.
func ValidateCoupon(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ValidateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var coupon models.Coupon
		code := strings.ToUpper(strings.TrimSpace(req.Code))
		if err := db.First(&coupon, "code = ?", code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up coupon"})
			}
			return
		}

		if err := coupon.Validate(req.OrderAmount, time.Now()); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		discount := coupon.Discount(req.OrderAmount)
		c.JSON(http.StatusOK, gin.H{
			"valid":        true,
			"code":         coupon.Code,
			"discount":     discount,
			"final_amount": req.OrderAmount - discount,
		})
	}
}
