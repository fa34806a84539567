package productControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/models"
)

const categoryFolder = "categories"

func CreateCategory(db *gorm.DB, uploadsDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.PostForm("name")
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		category := models.Category{
			Name:        name,
			Description: c.PostForm("description"),
		}

		if file, err := c.FormFile("image"); err == nil {
			imageURL, err := saveImage(c, file, uploadsDir, categoryFolder)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			category.Image = imageURL
		}

		if err := db.Create(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

// GetAllCategories returns all categories with their subcategories.
func GetAllCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.Preload("SubCategories").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// GetCategoryWithProducts returns one category expanded with products.
func GetCategoryWithProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.Category
		if err := db.Preload("SubCategories").Preload("Products").
			First(&category, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

func UpdateCategory(db *gorm.DB, uploadsDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.Category
		if err := db.First(&category, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}

		if v := c.PostForm("name"); v != "" {
			category.Name = v
		}
		if v := c.PostForm("description"); v != "" {
			category.Description = v
		}

		if file, err := c.FormFile("image"); err == nil {
			removeImage(uploadsDir, categoryFolder, category.Image)
			imageURL, err := saveImage(c, file, uploadsDir, categoryFolder)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			category.Image = imageURL
		}

		if err := db.Save(&category).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// DeleteCategory removes a category, its subcategories and its image.
// Products keep existing with a cleared category reference.
func DeleteCategory(db *gorm.DB, uploadsDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.Category
		if err := db.First(&category, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Product{}).
				Where("category_id = ?", category.ID).
				Updates(map[string]interface{}{"category_id": nil, "sub_category_id": nil}).Error; err != nil {
				return err
			}
			if err := tx.Where("category_id = ?", category.ID).
				Delete(&models.SubCategory{}).Error; err != nil {
				return err
			}
			return tx.Delete(&category).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
			return
		}

		removeImage(uploadsDir, categoryFolder, category.Image)
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}

// -------- SubCategories --------

func CreateSubCategory(db *gorm.DB, uploadsDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.PostForm("name")
		categoryID := c.PostForm("category_id")
		if name == "" || categoryID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and category_id are required"})
			return
		}

		var category models.Category
		if err := db.First(&category, "id = ?", categoryID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}

		sub := models.SubCategory{CategoryID: category.ID, Name: name}
		if file, err := c.FormFile("image"); err == nil {
			imageURL, err := saveImage(c, file, uploadsDir, categoryFolder)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			sub.Image = imageURL
		}

		if err := db.Create(&sub).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subcategory"})
			return
		}
		c.JSON(http.StatusCreated, sub)
	}
}

func UpdateSubCategory(db *gorm.DB, uploadsDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sub models.SubCategory
		if err := db.First(&sub, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "SubCategory not found"})
			return
		}

		if v := c.PostForm("name"); v != "" {
			sub.Name = v
		}
		if file, err := c.FormFile("image"); err == nil {
			removeImage(uploadsDir, categoryFolder, sub.Image)
			imageURL, err := saveImage(c, file, uploadsDir, categoryFolder)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			sub.Image = imageURL
		}

		if err := db.Save(&sub).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subcategory"})
			return
		}
		c.JSON(http.StatusOK, sub)
	}
}

func DeleteSubCategory(db *gorm.DB, uploadsDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sub models.SubCategory
		if err := db.First(&sub, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "SubCategory not found"})
			return
		}

		if err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Product{}).
				Where("sub_category_id = ?", sub.ID).
				Update("sub_category_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(&sub).Error
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subcategory"})
			return
		}

		removeImage(uploadsDir, categoryFolder, sub.Image)
		c.JSON(http.StatusOK, gin.H{"message": "SubCategory deleted successfully"})
	}
}
