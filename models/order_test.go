package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusBaking, true},
		{OrderStatusBaking, OrderStatusPacked, true},
		{OrderStatusPacked, OrderStatusOutForDelivery, true},
		{OrderStatusOutForDelivery, OrderStatusDelivered, true},

		// skipping steps is not allowed
		{OrderStatusPending, OrderStatusBaking, false},
		{OrderStatusPending, OrderStatusDelivered, false},

		// terminal states never move
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},

		// out for delivery cannot be cancelled any more
		{OrderStatusOutForDelivery, OrderStatusCancelled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestParseOrderStatus(t *testing.T) {
	got, err := ParseOrderStatus("baking")
	assert.NoError(t, err)
	assert.Equal(t, OrderStatusBaking, got)

	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)

	_, err = ParseOrderStatus("")
	assert.Error(t, err)
}

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		from    PaymentStatus
		to      PaymentStatus
		allowed bool
	}{
		{PaymentStatusCreated, PaymentStatusPending, true},
		{PaymentStatusCreated, PaymentStatusSuccess, true},
		{PaymentStatusCreated, PaymentStatusFailed, true},
		{PaymentStatusPending, PaymentStatusSuccess, true},
		{PaymentStatusPending, PaymentStatusFailed, true},
		{PaymentStatusSuccess, PaymentStatusRefunded, true},
		{PaymentStatusSuccess, PaymentStatusPartiallyRefunded, true},

		// retry path
		{PaymentStatusFailed, PaymentStatusCreated, true},

		// a settled payment never regresses
		{PaymentStatusSuccess, PaymentStatusPending, false},
		{PaymentStatusSuccess, PaymentStatusFailed, false},
		{PaymentStatusRefunded, PaymentStatusSuccess, false},
		{PaymentStatusRefunded, PaymentStatusCreated, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}
