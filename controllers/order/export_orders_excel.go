package orderControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/sonali-vishwakarma08/bakery-api/models"
)

// ExportOrdersToExcel streams all orders as an .xlsx download (admin).
func ExportOrdersToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("User").Preload("Items").
			Order("created_at DESC").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headers := []string{
			"Code", "Customer", "Email", "Items", "Total", "Discount",
			"Final", "Status", "PaymentStatus", "PaymentMethod", "CreatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, o := range orders {
			itemCount := 0
			for _, item := range o.Items {
				itemCount += item.Quantity
			}

			row := sheet.AddRow()
			row.AddCell().SetValue(o.Code)
			row.AddCell().SetValue(o.User.Name)
			row.AddCell().SetValue(o.User.Email)
			row.AddCell().SetValue(itemCount)
			row.AddCell().SetValue(o.TotalAmount)
			row.AddCell().SetValue(o.DiscountAmount)
			row.AddCell().SetValue(o.FinalAmount)
			row.AddCell().SetValue(string(o.Status))
			row.AddCell().SetValue(string(o.PaymentStatus))
			row.AddCell().SetValue(o.PaymentMethod)
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
