package productControllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/models"
)

// ImportProductsFromExcel bulk-creates or updates products from an
// uploaded spreadsheet. Rows with an existing id update that product;
// rows without one insert. Malformed rows are skipped and counted.
func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse Excel file"})
			return
		}
		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		sheet := xlFile.Sheets[0]
		createdCount, updatedCount, skippedCount := 0, 0, 0

		for i := 1; i < sheet.MaxRow; i++ {
			row := sheet.Rows[i]

			get := func(index int) string {
				if index < len(row.Cells) {
					return strings.TrimSpace(row.Cells[index].String())
				}
				return ""
			}

			idStr := get(0)
			name := get(1)
			description := get(2)
			price, priceErr := strconv.ParseFloat(get(3), 64)
			stock, _ := strconv.Atoi(get(4))
			flavors := get(5)
			weights := get(6)
			image := get(7)
			categoryIDStr := get(8)

			if name == "" || priceErr != nil {
				skippedCount++
				continue
			}

			var categoryID *uint
			if categoryIDStr != "" {
				if cid, err := strconv.Atoi(categoryIDStr); err == nil {
					id := uint(cid)
					categoryID = &id
				}
			}

			if idStr != "" {
				if id, err := strconv.Atoi(idStr); err == nil {
					var existing models.Product
					if err := db.First(&existing, id).Error; err == nil {
						existing.Name = name
						existing.Description = description
						existing.Price = price
						existing.Stock = stock
						existing.Flavors = flavors
						existing.Weights = weights
						if image != "" {
							existing.Image = image
						}
						existing.CategoryID = categoryID
						if err := db.Save(&existing).Error; err == nil {
							updatedCount++
							continue
						}
						skippedCount++
						continue
					}
				}
			}

			product := models.Product{
				Name:        name,
				Description: description,
				Price:       price,
				Stock:       stock,
				Flavors:     flavors,
				Weights:     weights,
				Image:       image,
				CategoryID:  categoryID,
				IsAvailable: true,
			}
			if err := db.Create(&product).Error; err == nil {
				createdCount++
			} else {
				skippedCount++
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": createdCount,
			"updated_count": updatedCount,
			"skipped_count": skippedCount,
		})
	}
}

// ExportProductsToExcel streams the catalog as an .xlsx download.
func ExportProductsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		if err := db.Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Products")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headers := []string{
			"ID", "Name", "Description", "Price", "Stock",
			"Flavors", "Weights", "Image", "CategoryID", "Available", "CreatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, p := range products {
			row := sheet.AddRow()
			row.AddCell().SetValue(p.ID)
			row.AddCell().SetValue(p.Name)
			row.AddCell().SetValue(p.Description)
			row.AddCell().SetValue(p.Price)
			row.AddCell().SetValue(p.Stock)
			row.AddCell().SetValue(p.Flavors)
			row.AddCell().SetValue(p.Weights)
			row.AddCell().SetValue(p.Image)
			if p.CategoryID != nil {
				row.AddCell().SetValue(*p.CategoryID)
			} else {
				row.AddCell().SetValue("")
			}
			row.AddCell().SetValue(p.IsAvailable)
			row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
