package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/menudigital/backend/kds"
	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/services"
	"github.com/menudigital/backend/utils"
)

type OrderController struct {
	DB       *gorm.DB
	Orders   *services.OrderService
	Registry *kds.Registry
}

func NewOrderController(db *gorm.DB, orders *services.OrderService, registry *kds.Registry) *OrderController {
	return &OrderController{DB: db, Orders: orders, Registry: registry}
}

// GetKitchenDisplay returns the active tickets, oldest first, decorated
// with elapsed time and urgency.
func (oc *OrderController) GetKitchenDisplay(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	feed, err := oc.Registry.Feed(restaurantID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tickets := kds.BuildTickets(feed.Snapshot(), time.Now())
	utils.RespondJSON(c, http.StatusOK, "Kitchen display", tickets)
}

// GetAllOrders lists the restaurant's orders newest first, optionally
// filtered by status.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	query := oc.DB.Where("restaurant_id = ?", restaurantID).
		Preload("Items").
		Preload("Items.Modifiers")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var order models.Order
	if err := oc.DB.Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurantID).
		Preload("Items").
		Preload("Items.Modifiers").
		First(&order).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order", order)
}

// transition runs one guarded status change. The client sends the version
// it last rendered; a stale version gets 409 so the display reloads
// instead of silently overwriting a colleague's action.
func (oc *OrderController) transition(c *gin.Context, to string) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var order models.Order
	if err := oc.DB.Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurantID).
		First(&order).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Version *int `json:"version"`
	}
	// An absent body means "use the current version".
	_ = c.ShouldBindJSON(&req)
	version := -1
	if req.Version != nil {
		version = *req.Version
	}

	updated, err := oc.Orders.Transition(order.ID, version, to)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVersionConflict):
			utils.RespondError(c, http.StatusConflict, err)
		case errors.Is(err, services.ErrInvalidTransition):
			utils.RespondError(c, http.StatusBadRequest, err)
		default:
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order updated", updated)
}

func (oc *OrderController) StartCooking(c *gin.Context) {
	oc.transition(c, models.OrderStatusCooking)
}

func (oc *OrderController) MarkReady(c *gin.Context) {
	oc.transition(c, models.OrderStatusReady)
}

func (oc *OrderController) Deliver(c *gin.Context) {
	oc.transition(c, models.OrderStatusDelivered)
}

func (oc *OrderController) Cancel(c *gin.Context) {
	oc.transition(c, models.OrderStatusCancelled)
}
