package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/menudigital/backend/controllers"
	"github.com/menudigital/backend/kds"
	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/services"
	"github.com/menudigital/backend/utils"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:orderctl_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
	))
	return db
}

// asStaff stands in for the auth middleware, pinning the request to one
// restaurant.
func asStaff(restaurantID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uint(1))
		c.Set("role", role)
		c.Set("restaurantID", restaurantID)
		c.Next()
	}
}

func setupOrderRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()

	orders := services.NewOrderService(db)
	registry := kds.NewRegistry(orders.ActiveOrders)
	orderCtrl := controllers.NewOrderController(db, orders, registry)

	staff := r.Group("/", asStaff("rest-1", models.RoleKitchen))
	staff.GET("/kitchen/display", orderCtrl.GetKitchenDisplay)
	staff.GET("/orders", orderCtrl.GetAllOrders)
	staff.GET("/orders/:id", orderCtrl.GetOrderByID)
	staff.POST("/orders/:id/cooking", orderCtrl.StartCooking)
	staff.POST("/orders/:id/ready", orderCtrl.MarkReady)
	staff.POST("/orders/:id/deliver", orderCtrl.Deliver)
	staff.POST("/orders/:id/cancel", orderCtrl.Cancel)
	return r
}

func createOrder(t *testing.T, db *gorm.DB, restaurantID, status string, createdAt time.Time) models.Order {
	t.Helper()
	order := models.Order{
		RestaurantID:      restaurantID,
		CustomerName:      "Mesa 5",
		TableNumber:       "5",
		FulfillmentMethod: models.FulfillmentDineIn,
		Status:            status,
		TotalAmount:       mustDecimal("60.00"),
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func doTransition(t *testing.T, router *gin.Engine, orderID uint, action string, version int) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(map[string]int{"version": version})
	require.NoError(t, err)
	req, err := http.NewRequest("POST", fmt.Sprintf("/orders/%d/%s", orderID, action), bytes.NewBuffer(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestKitchenDisplayListsActiveTicketsFIFO(t *testing.T) {
	utils.InitLogger()
	db := setupOrderTestDB(t)
	router := setupOrderRouter(db)

	now := time.Now()
	older := createOrder(t, db, "rest-1", models.OrderStatusPaid, now.Add(-25*time.Minute))
	newer := createOrder(t, db, "rest-1", models.OrderStatusCooking, now.Add(-2*time.Minute))
	createOrder(t, db, "rest-1", models.OrderStatusDelivered, now.Add(-1*time.Hour))
	createOrder(t, db, "rest-2", models.OrderStatusPaid, now)

	req, _ := http.NewRequest("GET", "/kitchen/display", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data []struct {
			ID             uint   `json:"id"`
			Status         string `json:"status"`
			Urgency        string `json:"urgency"`
			ElapsedSeconds int    `json:"elapsed_seconds"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)

	assert.Equal(t, older.ID, resp.Data[0].ID)
	assert.Equal(t, "urgent", resp.Data[0].Urgency)
	assert.Equal(t, newer.ID, resp.Data[1].ID)
	assert.Equal(t, "nominal", resp.Data[1].Urgency)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	utils.InitLogger()
	db := setupOrderTestDB(t)
	router := setupOrderRouter(db)

	order := createOrder(t, db, "rest-1", models.OrderStatusPaid, time.Now())

	w := doTransition(t, router, order.ID, "cooking", 0)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doTransition(t, router, order.ID, "ready", 1)
	require.Equal(t, http.StatusOK, w.Code)

	w = doTransition(t, router, order.ID, "deliver", 2)
	require.Equal(t, http.StatusOK, w.Code)

	var final models.Order
	require.NoError(t, db.First(&final, order.ID).Error)
	assert.Equal(t, models.OrderStatusDelivered, final.Status)
	assert.Equal(t, 3, final.Version)
}

func TestStaleVersionGets409(t *testing.T) {
	utils.InitLogger()
	db := setupOrderTestDB(t)
	router := setupOrderRouter(db)

	order := createOrder(t, db, "rest-1", models.OrderStatusPaid, time.Now())

	w := doTransition(t, router, order.ID, "cooking", 0)
	require.Equal(t, http.StatusOK, w.Code)

	// A colleague still rendering version 0 tries to cancel.
	w = doTransition(t, router, order.ID, "cancel", 0)
	assert.Equal(t, http.StatusConflict, w.Code)

	var current models.Order
	require.NoError(t, db.First(&current, order.ID).Error)
	assert.Equal(t, models.OrderStatusCooking, current.Status)
}

func TestInvalidTransitionGets400(t *testing.T) {
	utils.InitLogger()
	db := setupOrderTestDB(t)
	router := setupOrderRouter(db)

	order := createOrder(t, db, "rest-1", models.OrderStatusPaid, time.Now())

	// paid -> ready skips cooking.
	w := doTransition(t, router, order.ID, "ready", 0)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrdersAreTenantScoped(t *testing.T) {
	utils.InitLogger()
	db := setupOrderTestDB(t)
	router := setupOrderRouter(db)

	foreign := createOrder(t, db, "rest-2", models.OrderStatusPaid, time.Now())

	req, _ := http.NewRequest("GET", fmt.Sprintf("/orders/%d", foreign.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doTransition(t, router, foreign.ID, "cooking", 0)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
