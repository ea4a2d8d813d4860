package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/utils"
)

// QRController renders the per-table QR codes that admins print. Each code
// encodes the public menu URL with the table number, which the menu page
// stores into the cart session.
type QRController struct {
	DB      *gorm.DB
	BaseURL string
}

func NewQRController(db *gorm.DB) *QRController {
	base := os.Getenv("PUBLIC_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return &QRController{DB: db, BaseURL: base}
}

// TableQR responds with a PNG QR code for one table.
func (qc *QRController) TableQR(c *gin.Context) {
	restaurantID, err := restaurantScope(c)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	table := c.Param("table")
	if table == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("table number is required"))
		return
	}

	var restaurant models.Restaurant
	if err := qc.DB.First(&restaurant, "id = ?", restaurantID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	target := fmt.Sprintf("%s/r/%s?mesa=%s", qc.BaseURL, restaurant.Slug, url.QueryEscape(table))
	png, err := qrcode.Encode(target, qrcode.Medium, 512)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"mesa-%s.png\"", table))
	c.Data(http.StatusOK, "image/png", png)
}
