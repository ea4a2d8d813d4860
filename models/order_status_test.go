package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{OrderStatusPendingWhatsApp, OrderStatusCooking},
		{OrderStatusPendingWhatsApp, OrderStatusCancelled},
		{OrderStatusPendingPayment, OrderStatusPaid},
		{OrderStatusPendingPayment, OrderStatusCancelled},
		{OrderStatusPaid, OrderStatusCooking},
		{OrderStatusCooking, OrderStatusReady},
		{OrderStatusReady, OrderStatusDelivered},
		{OrderStatusReady, OrderStatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to string }{
		{OrderStatusPendingPayment, OrderStatusCooking},
		{OrderStatusPaid, OrderStatusReady},
		{OrderStatusCooking, OrderStatusDelivered},
		{OrderStatusCooking, OrderStatusPaid},
		{OrderStatusReady, OrderStatusCooking},
		{OrderStatusDelivered, OrderStatusCooking},
		{OrderStatusCancelled, OrderStatusCooking},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, IsTerminalStatus(OrderStatusDelivered))
	assert.True(t, IsTerminalStatus(OrderStatusCancelled))
	for _, s := range ActiveOrderStatuses() {
		assert.False(t, IsTerminalStatus(s), s)
	}
	assert.False(t, IsTerminalStatus(OrderStatusPendingPayment))
}

func TestAdmitsToKitchen(t *testing.T) {
	assert.True(t, AdmitsToKitchen(OrderStatusPendingWhatsApp))
	assert.True(t, AdmitsToKitchen(OrderStatusPaid))
	assert.False(t, AdmitsToKitchen(OrderStatusPendingPayment))
	assert.False(t, AdmitsToKitchen(OrderStatusCooking))
}
