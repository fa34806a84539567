package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type CouponStatus string
type DiscountType string

const (
	CouponStatusActive   CouponStatus = "active"
	CouponStatusExpired  CouponStatus = "expired"
	CouponStatusDisabled CouponStatus = "disabled"

	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFlat       DiscountType = "flat"
)

type Coupon struct {
	ID                uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Code              string       `gorm:"uniqueIndex;not null" json:"code"` // stored uppercase
	Description       string       `json:"description"`
	DiscountType      DiscountType `gorm:"type:VARCHAR(20);not null" json:"discount_type"`
	DiscountValue     float64      `gorm:"not null" json:"discount_value"`
	MaxDiscountAmount float64      `json:"max_discount_amount"` // 0 = uncapped, percentage only
	MinOrderAmount    float64      `json:"min_order_amount"`
	StartDate         time.Time    `json:"start_date"`
	ExpiryDate        time.Time    `json:"expiry_date"`
	UsageLimit        int          `json:"usage_limit"` // 0 = unlimited
	UsedCount         int          `json:"used_count"`
	Status            CouponStatus `gorm:"type:VARCHAR(20);default:'active'" json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

var (
	ErrCouponNotActive    = errors.New("coupon is not active")
	ErrCouponNotStarted   = errors.New("coupon is not valid yet")
	ErrCouponExpired      = errors.New("coupon has expired")
	ErrCouponExhausted    = errors.New("coupon usage limit reached")
	ErrCouponMinNotMet    = errors.New("order amount is below the coupon minimum")
)

// Validate checks whether the coupon can be applied to an order of the
// given amount at time now. It mutates nothing; redemption is the
// caller's job.
func (c *Coupon) Validate(orderAmount float64, now time.Time) error {
	if c.Status != CouponStatusActive {
		return ErrCouponNotActive
	}
	if now.Before(c.StartDate) {
		return ErrCouponNotStarted
	}
	if now.After(c.ExpiryDate) {
		return ErrCouponExpired
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return ErrCouponExhausted
	}
	if orderAmount < c.MinOrderAmount {
		return ErrCouponMinNotMet
	}
	return nil
}

// Discount computes the discount for an order amount. Percentage
// discounts are capped by MaxDiscountAmount when set; no discount ever
// exceeds the order amount.
func (c *Coupon) Discount(orderAmount float64) float64 {
	var discount float64
	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = orderAmount * c.DiscountValue / 100
		if c.MaxDiscountAmount > 0 && discount > c.MaxDiscountAmount {
			discount = c.MaxDiscountAmount
		}
	case DiscountTypeFlat:
		discount = c.DiscountValue
	}
	if discount > orderAmount {
		discount = orderAmount
	}
	return discount
}

// SweepExpiredCoupons marks active coupons past their expiry date as
// expired. Run at startup and once a day.
func SweepExpiredCoupons(db *gorm.DB) (int64, error) {
	res := db.Model(&Coupon{}).
		Where("status = ? AND expiry_date < ?", CouponStatusActive, time.Now()).
		Update("status", CouponStatusExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to sweep expired coupons: %w", res.Error)
	}
	return res.RowsAffected, nil
}
