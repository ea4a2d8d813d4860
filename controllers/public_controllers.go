package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/utils"
)

// PublicController serves the unauthenticated menu page: restaurant
// branding, categorized items and active promos in one payload.
type PublicController struct {
	DB *gorm.DB
}

func NewPublicController(db *gorm.DB) *PublicController {
	return &PublicController{DB: db}
}

func (pc *PublicController) GetMenu(c *gin.Context) {
	var restaurant models.Restaurant
	if err := pc.DB.Where("slug = ?", c.Param("slug")).First(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	var categories []models.Category
	if err := pc.DB.Where("restaurant_id = ?", restaurant.ID).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// Unavailable items are hidden from customers, not greyed out.
	var items []models.MenuItem
	if err := pc.DB.Where("restaurant_id = ? AND available = ?", restaurant.ID, true).
		Preload("ModifierGroups").
		Preload("ModifierGroups.Options").
		Order("name ASC").
		Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	now := time.Now()
	var events []models.RestaurantEvent
	if err := pc.DB.Where("restaurant_id = ? AND active = ?", restaurant.ID, true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu", gin.H{
		"restaurant": restaurant,
		"categories": categories,
		"items":      items,
		"events":     events,
	})
}
