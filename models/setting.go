package models

import (
	"time"

	"gorm.io/gorm"
)

// Setting is a single-row table holding store-wide configuration.
type Setting struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	StoreName      string    `gorm:"default:'Bakery'" json:"store_name"`
	ContactEmail   string    `json:"contact_email"`
	ContactPhone   string    `json:"contact_phone"`
	Currency       string    `gorm:"default:'USD'" json:"currency"`
	TaxRate        float64   `json:"tax_rate"`
	DeliveryCharge float64   `json:"delivery_charge"`
	MinOrderAmount float64   `json:"min_order_amount"`
	StoreOpen      bool      `gorm:"default:true" json:"store_open"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GetSettings returns the singleton settings row, creating it with
// defaults on first access.
func GetSettings(db *gorm.DB) (*Setting, error) {
	var s Setting
	if err := db.First(&s).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		s = Setting{StoreName: "Bakery", Currency: "USD", StoreOpen: true}
		if err := db.Create(&s).Error; err != nil {
			return nil, err
		}
	}
	return &s, nil
}
