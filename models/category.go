package models

import "time"

type Category struct {
	ID            uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string        `gorm:"unique;not null" json:"name"`
	Description   string        `json:"description"`
	Image         string        `json:"image"`
	SubCategories []SubCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"sub_categories,omitempty"`
	Products      []Product     `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type SubCategory struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID uint      `gorm:"index;not null" json:"category_id"`
	Name       string    `gorm:"not null" json:"name"`
	Image      string    `json:"image"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
