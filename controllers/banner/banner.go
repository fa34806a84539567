package bannerControllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/models"
)

const bannerFolder = "banners"

// POST /admin/banners uploads a banner image with optional title/link.
func CreateBanner(db *gorm.DB, uploadsDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
			return
		}

		saveDir := filepath.Join(uploadsDir, bannerFolder)
		if err := os.MkdirAll(saveDir, os.ModePerm); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload folder"})
			return
		}
		ext := filepath.Ext(file.Filename)
		base := strings.ReplaceAll(strings.TrimSuffix(filepath.Base(file.Filename), ext), " ", "_")
		filename := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), base, ext)
		if err := c.SaveUploadedFile(file, filepath.Join(saveDir, filename)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
			return
		}

		banner := models.Banner{
			Title:    c.PostForm("title"),
			ImageURL: fmt.Sprintf("/uploads/%s/%s", bannerFolder, filename),
			Link:     c.PostForm("link"),
			IsActive: c.DefaultPostForm("is_active", "true") != "false",
		}
		if err := db.Create(&banner).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create banner"})
			return
		}
		c.JSON(http.StatusCreated, banner)
	}
}

// GET /banners returns active banners for the storefront.
func GetActiveBanners(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var banners []models.Banner
		if err := db.Where("is_active = ?", true).Order("created_at desc").Find(&banners).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch banners"})
			return
		}
		c.JSON(http.StatusOK, banners)
	}
}

// GET /admin/banners returns every banner.
func GetAllBanners(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var banners []models.Banner
		if err := db.Order("created_at desc").Find(&banners).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch banners"})
			return
		}
		c.JSON(http.StatusOK, banners)
	}
}

// PUT /admin/banners/:id toggles active state or edits title/link.
func UpdateBanner(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var banner models.Banner
		if err := db.First(&banner, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Banner not found"})
			return
		}

		var input struct {
			Title    *string `json:"title"`
			Link     *string `json:"link"`
			IsActive *bool   `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Title != nil {
			banner.Title = *input.Title
		}
		if input.Link != nil {
			banner.Link = *input.Link
		}
		if input.IsActive != nil {
			banner.IsActive = *input.IsActive
		}

		if err := db.Save(&banner).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update banner"})
			return
		}
		c.JSON(http.StatusOK, banner)
	}
}

// DELETE /admin/banners/:id removes the row and its image file.
func DeleteBanner(db *gorm.DB, uploadsDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var banner models.Banner
		if err := db.First(&banner, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Banner not found"})
			return
		}

		if err := db.Delete(&banner).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete banner"})
			return
		}
		if banner.ImageURL != "" {
			_ = os.Remove(filepath.Join(uploadsDir, bannerFolder, filepath.Base(banner.ImageURL)))
		}
		c.JSON(http.StatusOK, gin.H{"message": "Banner deleted successfully"})
	}
}
