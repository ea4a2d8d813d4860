package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/menudigital/backend/cart"
	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/utils"
)

// CartController serves the session cart for the public menu. The session
// rides in the X-Cart-Session header; a request without one gets a fresh
// session ID back and starts empty.
type CartController struct {
	DB    *gorm.DB
	Carts cart.Provider
}

func NewCartController(db *gorm.DB, carts cart.Provider) *CartController {
	return &CartController{DB: db, Carts: carts}
}

const sessionHeader = "X-Cart-Session"

// session returns the cart session key, minting one when absent. The key
// is always echoed back so the client can persist it.
func (cc *CartController) session(c *gin.Context) string {
	key := c.GetHeader(sessionHeader)
	if key == "" {
		key = uuid.NewString()
	}
	c.Header(sessionHeader, key)
	return key
}

// store loads the session cart, scoped per restaurant so the same browser
// can hold carts at two restaurants.
func (cc *CartController) store(c *gin.Context, slug string) (*cart.Store, string, error) {
	session := cc.session(c)
	storage := cc.Carts.ForSession(slug + ":" + session)
	store, err := cart.NewStore(c.Request.Context(), storage)
	return store, session, err
}

func (cc *CartController) restaurant(c *gin.Context) (models.Restaurant, bool) {
	var restaurant models.Restaurant
	if err := cc.DB.Where("slug = ?", c.Param("slug")).First(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return models.Restaurant{}, false
	}
	return restaurant, true
}

func cartPayload(session string, store *cart.Store) gin.H {
	return gin.H{
		"session":      session,
		"lines":        store.Lines(),
		"total":        store.Total(),
		"table_number": store.TableNumber(),
	}
}

func (cc *CartController) GetCart(c *gin.Context) {
	restaurant, ok := cc.restaurant(c)
	if !ok {
		return
	}
	store, session, err := cc.store(c, restaurant.Slug)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart", cartPayload(session, store))
}

// AddItem builds a modifier selection for the product and adds it to the
// cart. Selections missing a required group are rejected before anything
// is stored.
func (cc *CartController) AddItem(c *gin.Context) {
	restaurant, ok := cc.restaurant(c)
	if !ok {
		return
	}

	var req struct {
		ProductID uint   `json:"product_id" binding:"required"`
		OptionIDs []uint `json:"option_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var item models.MenuItem
	if err := cc.DB.Where("id = ? AND restaurant_id = ?", req.ProductID, restaurant.ID).
		Preload("ModifierGroups").
		Preload("ModifierGroups.Options").
		First(&item).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}
	if !item.Available {
		utils.RespondError(c, http.StatusConflict, errors.New("menu item is not available"))
		return
	}

	selection := cart.NewSelection(item)
	for _, optID := range req.OptionIDs {
		groupID, ok := optionGroup(item, optID)
		if !ok {
			utils.RespondError(c, http.StatusBadRequest, errors.New("option does not belong to this item"))
			return
		}
		if err := selection.Toggle(groupID, optID); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	store, session, err := cc.store(c, restaurant.Slug)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := store.AddSelection(c.Request.Context(), selection); err != nil {
		if errors.Is(err, cart.ErrSelectionIncomplete) {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item added", cartPayload(session, store))
}

func optionGroup(item models.MenuItem, optionID uint) (uint, bool) {
	for _, group := range item.ModifierGroups {
		for _, opt := range group.Options {
			if opt.ID == optionID {
				return group.ID, true
			}
		}
	}
	return 0, false
}

// DecrementLine lowers a line's quantity by one; at one it removes the
// line.
func (cc *CartController) DecrementLine(c *gin.Context) {
	restaurant, ok := cc.restaurant(c)
	if !ok {
		return
	}

	key, err := cart.ParseLineKey(c.Param("lineKey"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	store, session, err := cc.store(c, restaurant.Slug)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := store.DecrementLine(c.Request.Context(), key); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Line decremented", cartPayload(session, store))
}

// RemoveLine drops a line entirely, whatever its quantity.
func (cc *CartController) RemoveLine(c *gin.Context) {
	restaurant, ok := cc.restaurant(c)
	if !ok {
		return
	}

	key, err := cart.ParseLineKey(c.Param("lineKey"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	store, session, err := cc.store(c, restaurant.Slug)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := store.RemoveLine(c.Request.Context(), key); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Line removed", cartPayload(session, store))
}

func (cc *CartController) ClearCart(c *gin.Context) {
	restaurant, ok := cc.restaurant(c)
	if !ok {
		return
	}
	store, session, err := cc.store(c, restaurant.Slug)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := store.Clear(c.Request.Context()); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart cleared", cartPayload(session, store))
}

// SetTable records the table number carried by a scanned QR link.
func (cc *CartController) SetTable(c *gin.Context) {
	restaurant, ok := cc.restaurant(c)
	if !ok {
		return
	}

	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	store, session, err := cc.store(c, restaurant.Slug)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if err := store.SetTableNumber(c.Request.Context(), req.TableNumber); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table set", cartPayload(session, store))
}
