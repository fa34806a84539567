package models

import (
	"errors"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusCreated           PaymentStatus = "created" // gateway order opened, not yet approved
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusSuccess           PaymentStatus = "success"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

// paymentTransitions is the allowed payment state graph. Retry moves a
// failed payment back to created with a fresh gateway order id.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusCreated: {PaymentStatusPending, PaymentStatusSuccess, PaymentStatusFailed},
	PaymentStatusPending: {PaymentStatusSuccess, PaymentStatusFailed},
	PaymentStatusSuccess: {PaymentStatusRefunded, PaymentStatusPartiallyRefunded},
	PaymentStatusFailed:  {PaymentStatusCreated},
}

var ErrInvalidPaymentTransition = errors.New("invalid payment status transition")

// CanTransition reports whether a payment may move between two states.
func (from PaymentStatus) CanTransition(to PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Payment is one payment attempt against exactly one order. Retrying a
// failed attempt reuses the row with a new gateway order id; the order's
// own payment_status reflects only the latest relevant transition.
type Payment struct {
	ID             uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        uint          `gorm:"index;not null" json:"order_id"`
	Order          Order         `gorm:"foreignKey:OrderID" json:"order"`
	UserID         uint          `gorm:"index;not null" json:"user_id"`
	Gateway        string        `gorm:"default:'paypal'" json:"gateway"`
	GatewayOrderID string        `gorm:"index" json:"gateway_order_id"`
	CaptureID      string        `json:"capture_id"`
	Amount         float64       `json:"amount"`
	Currency       string        `gorm:"default:'USD'" json:"currency"`
	Method         string        `json:"method"`
	PaymentStatus  PaymentStatus `gorm:"type:VARCHAR(20);default:'created'" json:"payment_status"`
	IsVerified     bool          `gorm:"default:false" json:"is_verified"`
	PaidAt         *time.Time    `json:"paid_at"`
	RefundID       string        `json:"refund_id,omitempty"`
	RefundAmount   float64       `json:"refund_amount,omitempty"`
	RefundReason   string        `json:"refund_reason,omitempty"`
	FailureReason  string        `json:"failure_reason,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// WebhookEvent records processed gateway event ids so repeated webhook
// deliveries of the same event are no-ops.
type WebhookEvent struct {
	EventID     string    `gorm:"primaryKey;size:128" json:"event_id"`
	EventType   string    `gorm:"index" json:"event_type"`
	ProcessedAt time.Time `json:"processed_at"`
}
