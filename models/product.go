package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string  `gorm:"not null" json:"name"`
	Description   string  `json:"description"`
	Price         float64 `gorm:"not null" json:"price"`
	Stock         int     `json:"stock"`
	CategoryID    *uint   `gorm:"index" json:"category_id"`
	Category      *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SubCategoryID *uint     `gorm:"index" json:"sub_category_id"`
	Flavors       string    `json:"flavors"` // comma-separated, e.g. "chocolate,vanilla"
	Weights       string    `json:"weights"` // comma-separated kg options, e.g. "0.5,1,2"
	Image         string    `json:"image"`
	IsAvailable   bool      `gorm:"default:true" json:"is_available"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
