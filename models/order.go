package models

import (
	"errors"
	"time"
)

type OrderStatus string
type PaymentState string

const (
	// Order statuses (bakery fulfilment flow)
	OrderStatusPending        OrderStatus = "pending"          // Order placed, awaiting confirmation
	OrderStatusConfirmed      OrderStatus = "confirmed"        // Confirmed (payment received or COD accepted)
	OrderStatusBaking         OrderStatus = "baking"           // In the oven
	OrderStatusPacked         OrderStatus = "packed"           // Boxed and ready for dispatch
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery" // With delivery staff
	OrderStatusDelivered      OrderStatus = "delivered"        // Customer received the order
	OrderStatusCancelled      OrderStatus = "cancelled"        // Cancelled before delivery

	// Order payment states
	PaymentStatePending PaymentState = "pending"
	PaymentStateSuccess PaymentState = "success"
	PaymentStateFailed  PaymentState = "failed"
)

// orderTransitions is the allowed status graph. Anything not listed here
// is rejected, so a delivered order can never go back to pending.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusBaking, OrderStatusCancelled},
	OrderStatusBaking:         {OrderStatusPacked, OrderStatusCancelled},
	OrderStatusPacked:         {OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
	OrderStatusDelivered:      {},
	OrderStatusCancelled:      {},
}

// ErrInvalidTransition is returned when an order status change is not in
// the transition graph.
var ErrInvalidTransition = errors.New("invalid order status transition")

// ParseOrderStatus maps a raw string to a known order status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusBaking,
		OrderStatusPacked, OrderStatusOutForDelivery, OrderStatusDelivered,
		OrderStatusCancelled:
		return OrderStatus(s), nil
	default:
		return "", errors.New("invalid order status")
	}
}

// ParsePaymentState maps a raw string to a known order payment state.
func ParsePaymentState(s string) (PaymentState, error) {
	switch PaymentState(s) {
	case PaymentStatePending, PaymentStateSuccess, PaymentStateFailed:
		return PaymentState(s), nil
	default:
		return "", errors.New("invalid payment status")
	}
}

// CanTransition reports whether an order may move from one status to another.
func (from OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID             uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	Code           string        `gorm:"uniqueIndex;not null" json:"code"` // human-readable, e.g. ORD-20250908-ab12cd34
	UserID         uint          `gorm:"index;not null" json:"user_id"`
	User           User          `gorm:"foreignKey:UserID" json:"user"`
	Items          []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount    float64       `json:"total_amount"`
	DiscountAmount float64       `json:"discount_amount"`
	FinalAmount    float64       `json:"final_amount"`
	Status         OrderStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	PaymentStatus  PaymentState  `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	PaymentMethod  string        `json:"payment_method"` // "paypal", "cod"
	CouponID       *uint         `gorm:"index" json:"coupon_id"`
	Coupon         *Coupon       `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
	DeliveryUserID *uint         `gorm:"index" json:"delivery_user_id"`
	DeliveryUser   *User         `gorm:"foreignKey:DeliveryUserID" json:"delivery_user,omitempty"`
	Address        Address       `gorm:"embedded;embeddedPrefix:ship_" json:"address"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type OrderItem struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	OrderID       uint    `gorm:"index" json:"order_id"`
	ProductID     uint    `gorm:"not null" json:"product_id"`
	Product       Product `gorm:"foreignKey:ProductID" json:"product"`
	ProductName   string  `json:"product_name"` // snapshot at purchase time
	UnitPrice     float64 `json:"unit_price"`   // snapshot at purchase time
	Quantity      int     `gorm:"not null" json:"quantity"`
	Flavor        string  `json:"flavor,omitempty"`
	Weight        float64 `json:"weight,omitempty"`
	CustomMessage string  `json:"custom_message,omitempty"` // text piped onto the cake
}
