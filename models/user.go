package models

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
)

type User struct {
	ID           uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string      `gorm:"not null" json:"name"`
	Email        string      `gorm:"unique;not null" json:"email"`
	PasswordHash string      `gorm:"not null" json:"-"`
	Phone        string      `json:"phone"`
	Role         Role        `gorm:"type:VARCHAR(20);default:'customer'" json:"role"`
	Picture      string      `json:"picture"`
	Address      Address     `gorm:"embedded" json:"address"`
	PushTokens   []PushToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Address is embedded in User and snapshotted onto orders.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PushToken is one registered FCM device token for a user.
type PushToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	Platform  string    `json:"platform"` // "android", "ios", "web"
	CreatedAt time.Time `json:"created_at"`
}
