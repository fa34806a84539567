package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func activeCoupon() Coupon {
	return Coupon{
		Code:          "SAVE10",
		DiscountType:  DiscountTypePercentage,
		DiscountValue: 10,
		StartDate:     time.Now().Add(-24 * time.Hour),
		ExpiryDate:    time.Now().Add(24 * time.Hour),
		Status:        CouponStatusActive,
	}
}

func TestCouponValidate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name        string
		mutate      func(*Coupon)
		orderAmount float64
		wantErr     error
	}{
		{
			name:        "valid coupon passes",
			mutate:      func(c *Coupon) {},
			orderAmount: 100,
		},
		{
			name:        "disabled coupon rejected",
			mutate:      func(c *Coupon) { c.Status = CouponStatusDisabled },
			orderAmount: 100,
			wantErr:     ErrCouponNotActive,
		},
		{
			name:        "not started yet",
			mutate:      func(c *Coupon) { c.StartDate = now.Add(time.Hour) },
			orderAmount: 100,
			wantErr:     ErrCouponNotStarted,
		},
		{
			name:        "expired",
			mutate:      func(c *Coupon) { c.ExpiryDate = now.Add(-time.Hour) },
			orderAmount: 100,
			wantErr:     ErrCouponExpired,
		},
		{
			name: "usage limit reached",
			mutate: func(c *Coupon) {
				c.UsageLimit = 5
				c.UsedCount = 5
			},
			orderAmount: 100,
			wantErr:     ErrCouponExhausted,
		},
		{
			name:        "below minimum order amount",
			mutate:      func(c *Coupon) { c.MinOrderAmount = 200 },
			orderAmount: 100,
			wantErr:     ErrCouponMinNotMet,
		},
		{
			name: "under usage limit passes",
			mutate: func(c *Coupon) {
				c.UsageLimit = 5
				c.UsedCount = 4
			},
			orderAmount: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coupon := activeCoupon()
			tt.mutate(&coupon)
			err := coupon.Validate(tt.orderAmount, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCouponDiscount(t *testing.T) {
	t.Run("percentage capped at max discount", func(t *testing.T) {
		coupon := activeCoupon()
		coupon.MaxDiscountAmount = 15

		// 10% of 300 is 30, capped to 15
		assert.Equal(t, 15.0, coupon.Discount(300))
		// 10% of 100 is under the cap
		assert.Equal(t, 10.0, coupon.Discount(100))
	})

	t.Run("percentage uncapped when max is zero", func(t *testing.T) {
		coupon := activeCoupon()
		assert.Equal(t, 30.0, coupon.Discount(300))
	})

	t.Run("flat discount", func(t *testing.T) {
		coupon := activeCoupon()
		coupon.DiscountType = DiscountTypeFlat
		coupon.DiscountValue = 25
		assert.Equal(t, 25.0, coupon.Discount(100))
	})

	t.Run("discount never exceeds order amount", func(t *testing.T) {
		coupon := activeCoupon()
		coupon.DiscountType = DiscountTypeFlat
		coupon.DiscountValue = 50
		assert.Equal(t, 20.0, coupon.Discount(20))
	})
}

func TestSweepExpiredCoupons(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Coupon{}))

	expired := activeCoupon()
	expired.Code = "OLD"
	expired.ExpiryDate = time.Now().Add(-time.Hour)
	require.NoError(t, db.Create(&expired).Error)

	current := activeCoupon()
	current.Code = "FRESH"
	require.NoError(t, db.Create(&current).Error)

	n, err := SweepExpiredCoupons(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var got Coupon
	require.NoError(t, db.First(&got, "code = ?", "OLD").Error)
	assert.Equal(t, CouponStatusExpired, got.Status)

	var fresh Coupon
	require.NoError(t, db.First(&fresh, "code = ?", "FRESH").Error)
	assert.Equal(t, CouponStatusActive, fresh.Status)
}
