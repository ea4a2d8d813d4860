package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/menudigital/backend/cart"
	"github.com/menudigital/backend/controllers"
	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/services"
	"github.com/menudigital/backend/utils"
)

type fakeGateway struct {
	url string
	err error
}

func (g *fakeGateway) CreateSession(order models.Order, lines []cart.Line) (string, error) {
	return g.url, g.err
}

type fakeVerifier struct{ ok bool }

func (v fakeVerifier) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	return v.ok
}

type checkoutFixture struct {
	db     *gorm.DB
	router *gin.Engine
	carts  cart.Provider
}

func setupCheckoutFixture(t *testing.T, verifierOK bool) checkoutFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:checkoutctl_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Restaurant{},
		&models.Category{},
		&models.MenuItem{},
		&models.ModifierGroup{},
		&models.ModifierOption{},
		&models.ItemModifier{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemModifier{},
	))
	seedCatalog(t, db)
	phone := "50255551234"
	require.NoError(t, db.Model(&models.Restaurant{}).
		Where("id = ?", "rest-1").Update("phone", phone).Error)

	gin.SetMode(gin.TestMode)
	r := gin.Default()

	carts := cart.NewMemoryProvider()
	gateway := &fakeGateway{url: "https://pay.example/session"}
	orders := services.NewOrderService(db)
	checkout := services.NewCheckoutService(db, gateway)
	payments := services.NewPaymentService(db, orders, fakeVerifier{ok: verifierOK})
	checkoutCtrl := controllers.NewCheckoutController(db, carts, checkout, payments)
	cartCtrl := controllers.NewCartController(db, carts)

	r.POST("/api/public/restaurants/:slug/cart/items", cartCtrl.AddItem)
	r.POST("/api/public/restaurants/:slug/checkout", checkoutCtrl.Submit)
	r.POST("/api/payments/notify", checkoutCtrl.PaymentNotification)

	return checkoutFixture{db: db, router: r, carts: carts}
}

func (f checkoutFixture) fillCart(t *testing.T, session string) {
	t.Helper()
	var burger models.MenuItem
	require.NoError(t, f.db.Where("name = ?", "Hamburguesa").First(&burger).Error)
	var medio models.ModifierOption
	require.NoError(t, f.db.Where("name = ?", "Medio").First(&medio).Error)

	payload, _ := json.Marshal(map[string]interface{}{
		"product_id": burger.ID,
		"option_ids": []uint{medio.ID},
	})
	req, _ := http.NewRequest("POST", "/api/public/restaurants/la-esquina/cart/items", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Cart-Session", session)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func (f checkoutFixture) submit(t *testing.T, session string, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest("POST", "/api/public/restaurants/la-esquina/checkout", bytes.NewBuffer(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("X-Cart-Session", session)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestCheckoutWhatsAppFlow(t *testing.T) {
	utils.InitLogger()
	f := setupCheckoutFixture(t, true)
	f.fillCart(t, "s1")

	w := f.submit(t, "s1", map[string]interface{}{
		"payment_method":     "whatsapp",
		"fulfillment_method": "dine_in",
		"table_number":       "5",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Order       models.Order `json:"order"`
			RedirectURL string       `json:"redirect_url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.OrderStatusPendingWhatsApp, resp.Data.Order.Status)
	assert.Contains(t, resp.Data.RedirectURL, "https://wa.me/50255551234?text=")

	// Checkout clears the session cart.
	storage := f.carts.ForSession("la-esquina:s1")
	store, err := cart.NewStore(context.Background(), storage)
	require.NoError(t, err)
	assert.Empty(t, store.Lines())
}

func TestCheckoutCardFlowAndNotification(t *testing.T) {
	utils.InitLogger()
	f := setupCheckoutFixture(t, true)
	f.fillCart(t, "s2")

	w := f.submit(t, "s2", map[string]interface{}{
		"payment_method":     "card",
		"fulfillment_method": "pickup",
		"customer_name":      "Ana",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Order       models.Order `json:"order"`
			RedirectURL string       `json:"redirect_url"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.OrderStatusPendingPayment, resp.Data.Order.Status)
	assert.Equal(t, "https://pay.example/session", resp.Data.RedirectURL)

	// Gateway settles; the webhook flips the order to paid.
	raw, _ := json.Marshal(services.PaymentNotification{
		OrderID:           services.SessionOrderID(resp.Data.Order.ID),
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "4500",
		SignatureKey:      "sig",
	})
	req, _ := http.NewRequest("POST", "/api/payments/notify", bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var order models.Order
	require.NoError(t, f.db.First(&order, resp.Data.Order.ID).Error)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
}

func TestCheckoutNotificationBadSignature(t *testing.T) {
	utils.InitLogger()
	f := setupCheckoutFixture(t, false)

	raw, _ := json.Marshal(services.PaymentNotification{
		OrderID:           "order-1",
		TransactionStatus: "settlement",
		StatusCode:        "200",
		GrossAmount:       "4500",
		SignatureKey:      "forged",
	})
	req, _ := http.NewRequest("POST", "/api/payments/notify", bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCheckoutValidation(t *testing.T) {
	utils.InitLogger()
	f := setupCheckoutFixture(t, true)
	f.fillCart(t, "s3")

	// Missing table for dine-in.
	w := f.submit(t, "s3", map[string]interface{}{
		"payment_method":     "whatsapp",
		"fulfillment_method": "dine_in",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "table number is required")

	// Empty cart.
	w = f.submit(t, "fresh-session", map[string]interface{}{
		"payment_method":     "whatsapp",
		"fulfillment_method": "dine_in",
		"table_number":       "5",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cart is empty")

	// Missing session header entirely.
	w = f.submit(t, "", map[string]interface{}{
		"payment_method":     "whatsapp",
		"fulfillment_method": "dine_in",
		"table_number":       "5",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown payment channel.
	w = f.submit(t, "s3", map[string]interface{}{
		"payment_method":     "crypto",
		"fulfillment_method": "dine_in",
		"table_number":       "5",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

var errGatewayDown = errors.New("gateway down")

func TestCheckoutCardGatewayFailure(t *testing.T) {
	utils.InitLogger()
	f := setupCheckoutFixture(t, true)

	// Swap in a failing gateway behind a fresh router.
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	orders := services.NewOrderService(f.db)
	checkout := services.NewCheckoutService(f.db, &fakeGateway{err: errGatewayDown})
	payments := services.NewPaymentService(f.db, orders, fakeVerifier{ok: true})
	checkoutCtrl := controllers.NewCheckoutController(f.db, f.carts, checkout, payments)
	cartCtrl := controllers.NewCartController(f.db, f.carts)
	r.POST("/api/public/restaurants/:slug/cart/items", cartCtrl.AddItem)
	r.POST("/api/public/restaurants/:slug/checkout", checkoutCtrl.Submit)

	fx := checkoutFixture{db: f.db, router: r, carts: f.carts}
	fx.fillCart(t, "s4")

	w := fx.submit(t, "s4", map[string]interface{}{
		"payment_method":     "card",
		"fulfillment_method": "pickup",
		"customer_name":      "Ana",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
