package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/utils"
)

type RestaurantController struct {
	DB *gorm.DB
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{DB: db}
}

// CreateRestaurant provisions a new tenant.
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	var req struct {
		Slug          string   `json:"slug" binding:"required"`
		Name          string   `json:"name" binding:"required"`
		Phone         *string  `json:"phone"`
		Theme         string   `json:"theme"`
		DeliveryZones []string `json:"delivery_zones"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	zones, err := json.Marshal(req.DeliveryZones)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurant := models.Restaurant{
		ID:            uuid.NewString(),
		Slug:          req.Slug,
		Name:          req.Name,
		Phone:         req.Phone,
		Theme:         models.ThemeClassicGrid,
		DeliveryZones: string(zones),
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if req.Theme != "" {
		restaurant.Theme = req.Theme
	}

	if err := rc.DB.Create(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created", restaurant)
}

// GetBySlug is the public lookup used by the menu and checkout pages.
func (rc *RestaurantController) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")

	var restaurant models.Restaurant
	if err := rc.DB.Where("slug = ?", slug).First(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant", restaurant)
}

// UpdateSettings lets the owner change branding, theme, phone and delivery
// zones.
func (rc *RestaurantController) UpdateSettings(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, "id = ?", restaurantID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Name          *string  `json:"name"`
		Phone         *string  `json:"phone"`
		Theme         *string  `json:"theme"`
		LogoURL       *string  `json:"logo_url"`
		DeliveryZones []string `json:"delivery_zones"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		restaurant.Name = *req.Name
	}
	if req.Phone != nil {
		restaurant.Phone = req.Phone
	}
	if req.Theme != nil {
		restaurant.Theme = *req.Theme
	}
	if req.LogoURL != nil {
		restaurant.LogoURL = req.LogoURL
	}
	if req.DeliveryZones != nil {
		zones, err := json.Marshal(req.DeliveryZones)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		restaurant.DeliveryZones = string(zones)
	}
	restaurant.UpdatedAt = time.Now()

	if err := rc.DB.Save(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settings updated", restaurant)
}
