package models

import "time"

type DeliveryStatus string

const (
	DeliveryStatusAssigned  DeliveryStatus = "assigned"
	DeliveryStatusPickedUp  DeliveryStatus = "picked_up"
	DeliveryStatusOnTheWay  DeliveryStatus = "on_the_way"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

// Delivery tracks one order's hand-off to delivery staff.
type Delivery struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     uint           `gorm:"uniqueIndex;not null" json:"order_id"`
	Order       Order          `gorm:"foreignKey:OrderID" json:"order"`
	StaffID     uint           `gorm:"index;not null" json:"staff_id"`
	Staff       User           `gorm:"foreignKey:StaffID" json:"staff"`
	Status      DeliveryStatus `gorm:"type:VARCHAR(20);default:'assigned'" json:"status"`
	Notes       string         `json:"notes"`
	AssignedAt  time.Time      `json:"assigned_at"`
	DeliveredAt *time.Time     `json:"delivered_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
