package kds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menudigital/backend/models"
)

func orderAt(id uint, status string, createdAt time.Time) models.Order {
	return models.Order{
		ID:           id,
		RestaurantID: "rest-1",
		Status:       status,
		CreatedAt:    createdAt,
	}
}

func TestNewFeedSortsOldestFirst(t *testing.T) {
	base := time.Now()
	feed := NewFeed([]models.Order{
		orderAt(2, models.OrderStatusCooking, base.Add(5*time.Minute)),
		orderAt(1, models.OrderStatusPaid, base),
		orderAt(3, models.OrderStatusReady, base.Add(10*time.Minute)),
	})

	snap := feed.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, uint(1), snap[0].ID)
	assert.Equal(t, uint(2), snap[1].ID)
	assert.Equal(t, uint(3), snap[2].ID)
}

func TestNewFeedDropsTerminalOrders(t *testing.T) {
	base := time.Now()
	feed := NewFeed([]models.Order{
		orderAt(1, models.OrderStatusDelivered, base),
		orderAt(2, models.OrderStatusCancelled, base),
		orderAt(3, models.OrderStatusCooking, base),
	})
	assert.Equal(t, 1, feed.Len())
}

func TestInsertAdmitsOnlyNewOrderStatuses(t *testing.T) {
	feed := NewFeed(nil)

	feed.Apply(OrderEvent{Type: OrderInserted, Order: orderAt(1, models.OrderStatusPendingWhatsApp, time.Now())})
	feed.Apply(OrderEvent{Type: OrderInserted, Order: orderAt(2, models.OrderStatusPaid, time.Now())})
	// Awaiting its payment notification; not a kitchen ticket yet.
	feed.Apply(OrderEvent{Type: OrderInserted, Order: orderAt(3, models.OrderStatusPendingPayment, time.Now())})

	assert.Equal(t, 2, feed.Len())
}

func TestInsertIsIdempotent(t *testing.T) {
	feed := NewFeed(nil)
	o := orderAt(1, models.OrderStatusPaid, time.Now())

	feed.Apply(OrderEvent{Type: OrderInserted, Order: o})
	feed.Apply(OrderEvent{Type: OrderInserted, Order: o})

	assert.Equal(t, 1, feed.Len())
}

func TestUpdateReplacesInPlace(t *testing.T) {
	base := time.Now()
	feed := NewFeed([]models.Order{
		orderAt(1, models.OrderStatusPaid, base),
		orderAt(2, models.OrderStatusPaid, base.Add(time.Minute)),
	})

	updated := orderAt(1, models.OrderStatusCooking, base)
	feed.Apply(OrderEvent{Type: OrderUpdated, Order: updated})

	snap := feed.Snapshot()
	require.Len(t, snap, 2)
	// Position in the queue is preserved; only the status changed.
	assert.Equal(t, uint(1), snap[0].ID)
	assert.Equal(t, models.OrderStatusCooking, snap[0].Status)
}

func TestUpdateToTerminalRemoves(t *testing.T) {
	base := time.Now()
	feed := NewFeed([]models.Order{
		orderAt(1, models.OrderStatusReady, base),
		orderAt(2, models.OrderStatusCooking, base.Add(time.Minute)),
	})

	feed.Apply(OrderEvent{Type: OrderUpdated, Order: orderAt(1, models.OrderStatusDelivered, base)})

	snap := feed.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, uint(2), snap[0].ID)
}

func TestUpdateBringsInPaidOrderFirstSeen(t *testing.T) {
	feed := NewFeed(nil)

	// The insert arrived as pending_payment and was ignored; the paid
	// update is the order's first appearance.
	feed.Apply(OrderEvent{Type: OrderUpdated, Order: orderAt(1, models.OrderStatusPaid, time.Now())})
	assert.Equal(t, 1, feed.Len())
}

func TestUpdateIgnoresInvisibleUnknownOrder(t *testing.T) {
	feed := NewFeed(nil)
	feed.Apply(OrderEvent{Type: OrderUpdated, Order: orderAt(1, models.OrderStatusPendingPayment, time.Now())})
	assert.Equal(t, 0, feed.Len())
}

func TestRegistrySnapshotsLazilyAndDispatches(t *testing.T) {
	base := time.Now()
	snapshots := 0
	registry := NewRegistry(func(restaurantID string) ([]models.Order, error) {
		snapshots++
		return []models.Order{orderAt(1, models.OrderStatusPaid, base)}, nil
	})

	// Events for restaurants without a live feed are not materialized.
	registry.Dispatch(OrderEvent{Type: OrderInserted, Order: orderAt(2, models.OrderStatusPaid, base)})
	assert.Equal(t, 0, snapshots)

	feed, err := registry.Feed("rest-1")
	require.NoError(t, err)
	assert.Equal(t, 1, snapshots)
	assert.Equal(t, 1, feed.Len())

	// Second access reuses the feed.
	_, err = registry.Feed("rest-1")
	require.NoError(t, err)
	assert.Equal(t, 1, snapshots)

	registry.Dispatch(OrderEvent{Type: OrderInserted, Order: orderAt(2, models.OrderStatusPaid, base.Add(time.Minute))})
	assert.Equal(t, 2, feed.Len())
}
