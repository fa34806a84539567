package reviewControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/middleware"
	"github.com/sonali-vishwakarma08/bakery-api/models"
)

type CreateReviewInput struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

// POST /reviews creates a review pending moderation.
func CreateReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := middleware.CurrentUserID(c)

		var input CreateReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Rating < 1 || input.Rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
			return
		}

		var product models.Product
		if err := db.First(&product, input.ProductID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}

		var existing models.Review
		if err := db.First(&existing, "product_id = ? AND user_id = ?", input.ProductID, userID).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You have already reviewed this product"})
			return
		}

		review := models.Review{
			ProductID: input.ProductID,
			UserID:    userID,
			Rating:    input.Rating,
			Comment:   input.Comment,
		}
		if err := db.Create(&review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}

// GET /products/:id/reviews returns approved reviews plus the average
// rating for one product.
func GetProductReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID := c.Param("id")

		var reviews []models.Review
		if err := db.Preload("User", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name", "picture")
		}).Where("product_id = ? AND is_approved = ?", productID, true).
			Order("created_at desc").Find(&reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
			return
		}

		var avg float64
		if len(reviews) > 0 {
			total := 0
			for _, r := range reviews {
				total += r.Rating
			}
			avg = float64(total) / float64(len(reviews))
		}

		c.JSON(http.StatusOK, gin.H{
			"reviews":        reviews,
			"average_rating": avg,
			"count":          len(reviews),
		})
	}
}

// GET /admin/reviews lists all reviews, optionally filtered by approval.
func GetAllReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("User", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name", "email")
		}).Preload("Product", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name", "image")
		}).Order("created_at desc")

		switch c.Query("approved") {
		case "true":
			query = query.Where("is_approved = ?", true)
		case "false":
			query = query.Where("is_approved = ?", false)
		}

		var reviews []models.Review
		if err := query.Find(&reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
			return
		}
		c.JSON(http.StatusOK, reviews)
	}
}

// POST /admin/reviews/:id/approve
func ApproveReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := db.Model(&models.Review{}).Where("id = ?", c.Param("id")).Update("is_approved", true)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve review"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Review approved"})
	}
}

// DELETE /reviews/:id removes a review. Customers can only delete their
// own; admins can delete any.
func DeleteReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var review models.Review
		if err := db.First(&review, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}

		role, _ := c.Get("role")
		userID, _ := middleware.CurrentUserID(c)
		if role != string(models.RoleAdmin) && review.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to delete this review"})
			return
		}

		if err := db.Delete(&review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
	}
}
