package models

import "time"

type Review struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID  uint      `gorm:"index;not null" json:"product_id"`
	Product    Product   `gorm:"foreignKey:ProductID" json:"product"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user"`
	Rating     int       `gorm:"not null" json:"rating"` // 1..5
	Comment    string    `json:"comment"`
	IsApproved bool      `gorm:"default:false" json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
