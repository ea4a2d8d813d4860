package main

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/menudigital/backend/cart"
	"github.com/menudigital/backend/database"
	"github.com/menudigital/backend/kds"
	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/services"
	"github.com/menudigital/backend/utils"
)

// Exercises the full order pipeline: cart -> checkout -> trigger-written
// change rows -> monitor -> kitchen feed -> staff transitions, against an
// in-memory database with real triggers installed.
func TestOrderPipeline(t *testing.T) {
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open("file:pipeline?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Restaurant{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
		&models.RestaurantEvent{},
		&models.DBChange{},
	))
	require.NoError(t, database.ExecuteTriggers(db))

	phone := "50255551234"
	restaurant := models.Restaurant{ID: "rest-1", Slug: "la-esquina", Name: "La Esquina", Phone: &phone}
	require.NoError(t, db.Create(&restaurant).Error)

	hub := kds.NewHub()
	orders := services.NewOrderService(db)
	registry := kds.NewRegistry(orders.ActiveOrders)
	monitor := services.NewChangeMonitor(db, hub, registry)
	checkout := services.NewCheckoutService(db, nil)

	feed, err := registry.Feed("rest-1")
	require.NoError(t, err)
	require.Equal(t, 0, feed.Len())

	// Customer builds a cart and checks out via WhatsApp.
	store, err := cart.NewStore(context.Background(), cart.NewMemoryProvider().ForSession("s"))
	require.NoError(t, err)
	price := decimal.RequireFromString("45.00")
	require.NoError(t, store.AddLine(context.Background(),
		cart.Item{ProductID: 1, Name: "Hamburguesa", UnitPrice: price}, nil))

	order, link, err := checkout.SubmitWhatsApp(context.Background(), restaurant, store, services.CheckoutRequest{
		FulfillmentMethod: models.FulfillmentDineIn,
		TableNumber:       "5",
	})
	require.NoError(t, err)
	assert.Contains(t, link, "wa.me/50255551234")

	// The insert trigger wrote a change row; the monitor turns it into a
	// kitchen ticket.
	monitor.CheckChanges()
	require.Equal(t, 1, feed.Len())
	assert.Equal(t, order.ID, feed.Snapshot()[0].ID)

	// Staff cook and serve the ticket; every transition lands in the feed
	// through the same pipeline.
	_, err = orders.Transition(order.ID, -1, models.OrderStatusCooking)
	require.NoError(t, err)
	monitor.CheckChanges()
	assert.Equal(t, models.OrderStatusCooking, feed.Snapshot()[0].Status)

	_, err = orders.Transition(order.ID, -1, models.OrderStatusReady)
	require.NoError(t, err)
	_, err = orders.Transition(order.ID, -1, models.OrderStatusDelivered)
	require.NoError(t, err)
	monitor.CheckChanges()
	assert.Equal(t, 0, feed.Len())

	// Orders are never deleted; the delivered ticket stays queryable.
	var final models.Order
	require.NoError(t, db.First(&final, order.ID).Error)
	assert.Equal(t, models.OrderStatusDelivered, final.Status)
}
