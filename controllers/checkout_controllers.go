package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/menudigital/backend/cart"
	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/services"
	"github.com/menudigital/backend/utils"
)

// Payment channels offered at checkout.
const (
	PaymentWhatsApp = "whatsapp"
	PaymentCard     = "card"
)

type CheckoutController struct {
	DB       *gorm.DB
	Carts    cart.Provider
	Checkout *services.CheckoutService
	Payments *services.PaymentService
}

func NewCheckoutController(db *gorm.DB, carts cart.Provider, checkout *services.CheckoutService, payments *services.PaymentService) *CheckoutController {
	return &CheckoutController{DB: db, Carts: carts, Checkout: checkout, Payments: payments}
}

// Submit turns the session cart into an order. The whatsapp channel
// responds with the wa.me deep link; the card channel responds with the
// hosted payment page URL.
func (cc *CheckoutController) Submit(c *gin.Context) {
	var restaurant models.Restaurant
	if err := cc.DB.Where("slug = ?", c.Param("slug")).First(&restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("restaurant not found"))
		return
	}

	var req struct {
		PaymentMethod string `json:"payment_method" binding:"required"`
		services.CheckoutRequest
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session := c.GetHeader(sessionHeader)
	if session == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("missing cart session"))
		return
	}
	storage := cc.Carts.ForSession(restaurant.Slug + ":" + session)
	store, err := cart.NewStore(c.Request.Context(), storage)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// A dine-in checkout without an explicit table falls back to the one
	// captured from the scanned QR link.
	if req.FulfillmentMethod == models.FulfillmentDineIn && req.TableNumber == "" {
		req.TableNumber = store.TableNumber()
	}

	var (
		order models.Order
		link  string
	)
	switch req.PaymentMethod {
	case PaymentWhatsApp:
		order, link, err = cc.Checkout.SubmitWhatsApp(c.Request.Context(), restaurant, store, req.CheckoutRequest)
	case PaymentCard:
		order, link, err = cc.Checkout.SubmitCardPayment(c.Request.Context(), restaurant, store, req.CheckoutRequest)
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("payment_method must be whatsapp or card"))
		return
	}
	if err != nil {
		if isValidationError(err) {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := store.Clear(c.Request.Context()); err != nil {
		utils.ErrorLogger.Printf("Error clearing cart after checkout: %v", err)
	}

	utils.RespondJSON(c, http.StatusCreated, "Order submitted", gin.H{
		"order":        order,
		"redirect_url": link,
	})
}

func isValidationError(err error) bool {
	for _, verr := range []error{
		services.ErrEmptyCart,
		services.ErrInvalidFulfillment,
		services.ErrTableNumberRequired,
		services.ErrCustomerNameRequired,
		services.ErrDeliveryZoneRequired,
		services.ErrDeliveryAddressRequired,
		services.ErrWhatsAppRequired,
	} {
		if errors.Is(err, verr) {
			return true
		}
	}
	return false
}

// PaymentNotification is the gateway webhook. Signature failures get 403;
// everything else is acknowledged so the gateway stops retrying.
func (cc *CheckoutController) PaymentNotification(c *gin.Context) {
	var n services.PaymentNotification
	if err := c.ShouldBindJSON(&n); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := cc.Payments.HandleNotification(n)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSignature) {
			utils.RespondError(c, http.StatusForbidden, err)
			return
		}
		utils.ErrorLogger.Printf("Error handling payment notification: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification processed", gin.H{
		"order_id": order.ID,
		"status":   order.Status,
	})
}
