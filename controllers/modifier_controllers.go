package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/utils"
)

type ModifierController struct {
	DB *gorm.DB
}

func NewModifierController(db *gorm.DB) *ModifierController {
	return &ModifierController{DB: db}
}

func (mc *ModifierController) CreateGroup(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		Name         string `json:"name" binding:"required"`
		MinSelection int    `json:"min_selection"`
		MaxSelection int    `json:"max_selection" binding:"required,min=1"`
		Options      []struct {
			Name            string `json:"name" binding:"required"`
			PriceAdjustment string `json:"price_adjustment"`
		} `json:"options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.MinSelection < 0 || req.MinSelection > req.MaxSelection {
		utils.RespondError(c, http.StatusBadRequest, errors.New("min_selection must be between 0 and max_selection"))
		return
	}

	group := models.ModifierGroup{
		RestaurantID: restaurantID,
		Name:         req.Name,
		MinSelection: req.MinSelection,
		MaxSelection: req.MaxSelection,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	for _, opt := range req.Options {
		adj := decimal.Zero
		if opt.PriceAdjustment != "" {
			var err error
			adj, err = decimal.NewFromString(opt.PriceAdjustment)
			if err != nil {
				utils.RespondError(c, http.StatusBadRequest, errors.New("price_adjustment must be a decimal"))
				return
			}
		}
		group.Options = append(group.Options, models.ModifierOption{
			Name:            opt.Name,
			PriceAdjustment: adj,
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		})
	}

	if err := mc.DB.Create(&group).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Modifier group created", group)
}

func (mc *ModifierController) GetGroups(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var groups []models.ModifierGroup
	if err := mc.DB.Where("restaurant_id = ?", restaurantID).
		Preload("Options").
		Order("name ASC").
		Find(&groups).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Modifier groups", groups)
}

func (mc *ModifierController) UpdateGroup(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var group models.ModifierGroup
	if err := mc.DB.Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurantID).
		First(&group).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Name         *string `json:"name"`
		MinSelection *int    `json:"min_selection"`
		MaxSelection *int    `json:"max_selection"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.MinSelection != nil {
		group.MinSelection = *req.MinSelection
	}
	if req.MaxSelection != nil {
		group.MaxSelection = *req.MaxSelection
	}
	if group.MinSelection < 0 || group.MaxSelection < 1 || group.MinSelection > group.MaxSelection {
		utils.RespondError(c, http.StatusBadRequest, errors.New("min_selection must be between 0 and max_selection"))
		return
	}
	group.UpdatedAt = time.Now()

	if err := mc.DB.Save(&group).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Modifier group updated", group)
}

func (mc *ModifierController) DeleteGroup(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	err = mc.DB.Transaction(func(tx *gorm.DB) error {
		var group models.ModifierGroup
		if err := tx.Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurantID).
			First(&group).Error; err != nil {
			return err
		}
		if err := tx.Where("modifier_group_id = ?", group.ID).
			Delete(&models.ItemModifier{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", group.ID).
			Delete(&models.ModifierOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Modifier group deleted", nil)
}

func (mc *ModifierController) AddOption(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var group models.ModifierGroup
	if err := mc.DB.Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurantID).
		First(&group).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Name            string `json:"name" binding:"required"`
		PriceAdjustment string `json:"price_adjustment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	adj := decimal.Zero
	if req.PriceAdjustment != "" {
		adj, err = decimal.NewFromString(req.PriceAdjustment)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("price_adjustment must be a decimal"))
			return
		}
	}

	option := models.ModifierOption{
		GroupID:         group.ID,
		Name:            req.Name,
		PriceAdjustment: adj,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	if err := mc.DB.Create(&option).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Option added", option)
}

func (mc *ModifierController) DeleteOption(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var group models.ModifierGroup
	if err := mc.DB.Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurantID).
		First(&group).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	result := mc.DB.Where("id = ? AND group_id = ?", c.Param("optionId"), group.ID).
		Delete(&models.ModifierOption{})
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, gorm.ErrRecordNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Option deleted", nil)
}

// AttachToItem links a modifier group to a menu item so the selection
// dialog offers it.
func (mc *ModifierController) AttachToItem(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		MenuItemID      uint `json:"menu_item_id" binding:"required"`
		ModifierGroupID uint `json:"modifier_group_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var item models.MenuItem
	if err := mc.DB.Where("id = ? AND restaurant_id = ?", req.MenuItemID, restaurantID).
		First(&item).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}
	var group models.ModifierGroup
	if err := mc.DB.Where("id = ? AND restaurant_id = ?", req.ModifierGroupID, restaurantID).
		First(&group).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("modifier group not found"))
		return
	}

	link := models.ItemModifier{MenuItemID: item.ID, ModifierGroupID: group.ID}
	if err := mc.DB.Where(&link).FirstOrCreate(&link).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Modifier group attached", link)
}

func (mc *ModifierController) DetachFromItem(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		MenuItemID      uint `json:"menu_item_id" binding:"required"`
		ModifierGroupID uint `json:"modifier_group_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var item models.MenuItem
	if err := mc.DB.Where("id = ? AND restaurant_id = ?", req.MenuItemID, restaurantID).
		First(&item).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}

	result := mc.DB.Where("menu_item_id = ? AND modifier_group_id = ?", req.MenuItemID, req.ModifierGroupID).
		Delete(&models.ItemModifier{})
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, gorm.ErrRecordNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Modifier group detached", nil)
}
