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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/menudigital/backend/cart"
	"github.com/menudigital/backend/controllers"
	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/utils"
)

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// seedCatalog creates a restaurant with one burger carrying a required
// single-select group and an optional extras group.
func seedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.Restaurant{
		ID:        "rest-1",
		Slug:      "la-esquina",
		Name:      "La Esquina",
		Theme:     models.ThemeClassicGrid,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}).Error)

	category := models.Category{RestaurantID: "rest-1", Name: "Platos", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, db.Create(&category).Error)

	termino := models.ModifierGroup{
		RestaurantID: "rest-1",
		Name:         "Término",
		MinSelection: 1,
		MaxSelection: 1,
		Options: []models.ModifierOption{
			{Name: "Medio", PriceAdjustment: mustDecimal("0")},
			{Name: "Bien cocido", PriceAdjustment: mustDecimal("0")},
		},
	}
	require.NoError(t, db.Create(&termino).Error)

	extras := models.ModifierGroup{
		RestaurantID: "rest-1",
		Name:         "Extras",
		MinSelection: 0,
		MaxSelection: 3,
		Options: []models.ModifierOption{
			{Name: "Queso Extra", PriceAdjustment: mustDecimal("5.00")},
		},
	}
	require.NoError(t, db.Create(&extras).Error)

	burger := models.MenuItem{
		RestaurantID: "rest-1",
		CategoryID:   category.ID,
		Name:         "Hamburguesa",
		Price:        mustDecimal("45.00"),
		Available:    true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, db.Create(&burger).Error)
	require.NoError(t, db.Create(&models.ItemModifier{MenuItemID: burger.ID, ModifierGroupID: termino.ID}).Error)
	require.NoError(t, db.Create(&models.ItemModifier{MenuItemID: burger.ID, ModifierGroupID: extras.ID}).Error)
}

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Restaurant{},
		&models.Category{},
		&models.MenuItem{},
		&models.ModifierGroup{},
		&models.ModifierOption{},
		&models.ItemModifier{},
	))
	seedCatalog(t, db)
	return db
}

func setupCartRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	cartCtrl := controllers.NewCartController(db, cart.NewMemoryProvider())
	group := r.Group("/api/public/restaurants/:slug/cart")
	group.GET("", cartCtrl.GetCart)
	group.POST("/items", cartCtrl.AddItem)
	group.POST("/items/:lineKey/decrement", cartCtrl.DecrementLine)
	group.DELETE("/items/:lineKey", cartCtrl.RemoveLine)
	group.PUT("/table", cartCtrl.SetTable)
	return r
}

func cartRequest(t *testing.T, router *gin.Engine, method, url, session string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("X-Cart-Session", session)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func cartData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "data must be an object: %s", w.Body.String())
	return data
}

func TestCartFlowMergesAndDecrements(t *testing.T) {
	utils.InitLogger()
	db := setupCartTestDB(t)
	router := setupCartRouter(db)
	base := "/api/public/restaurants/la-esquina/cart"

	// Look up the seeded IDs; they drive the option payloads.
	var burger models.MenuItem
	require.NoError(t, db.Where("name = ?", "Hamburguesa").First(&burger).Error)
	var medio, queso models.ModifierOption
	require.NoError(t, db.Where("name = ?", "Medio").First(&medio).Error)
	require.NoError(t, db.Where("name = ?", "Queso Extra").First(&queso).Error)

	session := "test-session"
	addPayload := map[string]interface{}{
		"product_id": burger.ID,
		"option_ids": []uint{medio.ID, queso.ID},
	}

	w := cartRequest(t, router, "POST", base+"/items", session, addPayload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := cartData(t, w)
	lines := data["lines"].([]interface{})
	require.Len(t, lines, 1)

	// Identical selection merges.
	w = cartRequest(t, router, "POST", base+"/items", session, addPayload)
	require.Equal(t, http.StatusOK, w.Code)
	data = cartData(t, w)
	lines = data["lines"].([]interface{})
	require.Len(t, lines, 1)
	line := lines[0].(map[string]interface{})
	assert.EqualValues(t, 2, line["quantity"])

	// Base burger (different modifier set) is a separate line.
	w = cartRequest(t, router, "POST", base+"/items", session, map[string]interface{}{
		"product_id": burger.ID,
		"option_ids": []uint{medio.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)
	data = cartData(t, w)
	require.Len(t, data["lines"].([]interface{}), 2)

	// Decrement the merged line back to one.
	key := line["key"].(string)
	w = cartRequest(t, router, "POST", base+"/items/"+key+"/decrement", session, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = cartData(t, w)
	first := data["lines"].([]interface{})[0].(map[string]interface{})
	assert.EqualValues(t, 1, first["quantity"])

	// Remove drops the whole line.
	w = cartRequest(t, router, "DELETE", base+"/items/"+key, session, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = cartData(t, w)
	require.Len(t, data["lines"].([]interface{}), 1)
}

func TestCartRejectsIncompleteSelection(t *testing.T) {
	utils.InitLogger()
	db := setupCartTestDB(t)
	router := setupCartRouter(db)

	var burger models.MenuItem
	require.NoError(t, db.Where("name = ?", "Hamburguesa").First(&burger).Error)

	// Término requires one choice; sending none is refused.
	w := cartRequest(t, router, "POST", "/api/public/restaurants/la-esquina/cart/items", "s1", map[string]interface{}{
		"product_id": burger.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartSessionPersistsTableNumber(t *testing.T) {
	utils.InitLogger()
	db := setupCartTestDB(t)
	router := setupCartRouter(db)
	base := "/api/public/restaurants/la-esquina/cart"

	w := cartRequest(t, router, "PUT", base+"/table", "qr-session", map[string]interface{}{
		"table_number": "7",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = cartRequest(t, router, "GET", base, "qr-session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := cartData(t, w)
	assert.Equal(t, "7", data["table_number"])
}

func TestCartMintsSessionWhenMissing(t *testing.T) {
	utils.InitLogger()
	db := setupCartTestDB(t)
	router := setupCartRouter(db)

	w := cartRequest(t, router, "GET", "/api/public/restaurants/la-esquina/cart", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Cart-Session"))
}

func TestCartUnavailableItemConflicts(t *testing.T) {
	utils.InitLogger()
	db := setupCartTestDB(t)
	router := setupCartRouter(db)

	var burger models.MenuItem
	require.NoError(t, db.Where("name = ?", "Hamburguesa").First(&burger).Error)
	require.NoError(t, db.Model(&burger).Update("available", false).Error)

	w := cartRequest(t, router, "POST", "/api/public/restaurants/la-esquina/cart/items", "s2", map[string]interface{}{
		"product_id": burger.ID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
