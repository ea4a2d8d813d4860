package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/utils"
)

type MenuController struct {
	DB        *gorm.DB
	UploadDir string
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db, UploadDir: "public/uploads"}
}

// saveImage stores an uploaded image and returns its public URL. An upload
// failure is logged and the item is saved without an image rather than
// failing the whole request.
func (mc *MenuController) saveImage(c *gin.Context, file *multipart.FileHeader) *string {
	if err := os.MkdirAll(mc.UploadDir, 0o755); err != nil {
		utils.ErrorLogger.Printf("Error creating upload dir: %v", err)
		return nil
	}

	filename := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(file.Filename))
	dst := filepath.Join(mc.UploadDir, filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		utils.ErrorLogger.Printf("Error saving uploaded image: %v", err)
		return nil
	}

	url := "/uploads/" + filename
	return &url
}

// CreateMenuItem accepts multipart form data so the image can ride along
// with the item fields.
func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		CategoryID  uint   `form:"category_id" binding:"required"`
		Name        string `form:"name" binding:"required"`
		Description string `form:"description"`
		Price       string `form:"price" binding:"required"`
		Available   *bool  `form:"available"`
	}
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price must be a non-negative decimal"))
		return
	}

	var category models.Category
	if err := mc.DB.Where("id = ? AND restaurant_id = ?", req.CategoryID, restaurantID).
		First(&category).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
		return
	}

	item := models.MenuItem{
		RestaurantID: restaurantID,
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        price,
		Available:    true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if file, err := c.FormFile("image"); err == nil {
		item.ImageURL = mc.saveImage(c, file)
	}

	if err := mc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

func (mc *MenuController) GetMenuItems(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	query := mc.DB.Where("restaurant_id = ?", restaurantID).
		Preload("ModifierGroups").
		Preload("ModifierGroups.Options")

	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var items []models.MenuItem
	if err := query.Order("name ASC").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu items", items)
}

func (mc *MenuController) GetMenuItemByID(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var item models.MenuItem
	if err := mc.DB.Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurantID).
		Preload("ModifierGroups").
		Preload("ModifierGroups.Options").
		First(&item).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item", item)
}

func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var item models.MenuItem
	if err := mc.DB.Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurantID).
		First(&item).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		CategoryID  *uint   `form:"category_id"`
		Name        *string `form:"name"`
		Description *string `form:"description"`
		Price       *string `form:"price"`
		Available   *bool   `form:"available"`
	}
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := mc.DB.Where("id = ? AND restaurant_id = ?", *req.CategoryID, restaurantID).
			First(&category).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("category not found"))
			return
		}
		item.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil || price.IsNegative() {
			utils.RespondError(c, http.StatusBadRequest, errors.New("price must be a non-negative decimal"))
			return
		}
		item.Price = price
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if file, err := c.FormFile("image"); err == nil {
		if url := mc.saveImage(c, file); url != nil {
			item.ImageURL = url
		}
	}
	item.UpdatedAt = time.Now()

	if err := mc.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

// SetAvailability is the quick toggle used from the admin list view.
func (mc *MenuController) SetAvailability(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		Available *bool `json:"available" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result := mc.DB.Model(&models.MenuItem{}).
		Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurantID).
		Updates(map[string]interface{}{"available": *req.Available, "updated_at": time.Now()})
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, gorm.ErrRecordNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Availability updated", gin.H{"available": *req.Available})
}

func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	result := mc.DB.Where("id = ? AND restaurant_id = ?", c.Param("id"), restaurantID).
		Delete(&models.MenuItem{})
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, gorm.ErrRecordNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", nil)
}
