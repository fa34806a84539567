package models

import "time"

type NotificationType string

const (
	NotificationTypeOrder  NotificationType = "order"
	NotificationTypeSystem NotificationType = "system"
	NotificationTypePromo  NotificationType = "promo"
	NotificationTypeAlert  NotificationType = "alert"
)

// Notification is a message to one user, or a broadcast to a role when
// UserID is nil. Broadcasts fan out into per-user delivery copies
// (IsDeliveryCopy) so read-state is tracked per recipient without the
// copies showing up in admin aggregate views.
type Notification struct {
	ID             uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         *uint            `gorm:"index" json:"user_id"` // nil = broadcast
	TargetRole     Role             `gorm:"type:VARCHAR(20)" json:"target_role,omitempty"`
	Title          string           `gorm:"not null" json:"title"`
	Message        string           `json:"message"`
	Type           NotificationType `gorm:"type:VARCHAR(20);default:'system'" json:"type"`
	Priority       string           `gorm:"type:VARCHAR(10);default:'normal'" json:"priority"` // "low", "normal", "high"
	IsRead         bool             `gorm:"default:false" json:"is_read"`
	IsDeliveryCopy bool             `gorm:"default:false" json:"is_delivery_copy"`
	BroadcastID    *uint            `gorm:"index" json:"broadcast_id,omitempty"` // canonical row a copy belongs to
	OrderID        *uint            `gorm:"index" json:"order_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}
