package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/menudigital/backend/cart"
	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/utils"
)

// Validation errors, reported to the customer before anything is persisted.
var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInvalidFulfillment      = errors.New("invalid fulfillment method")
	ErrTableNumberRequired     = errors.New("table number is required")
	ErrCustomerNameRequired    = errors.New("customer name is required")
	ErrDeliveryZoneRequired    = errors.New("delivery zone is required")
	ErrDeliveryAddressRequired = errors.New("delivery address is required")
	ErrWhatsAppRequired        = errors.New("whatsapp contact is required")
)

// CheckoutRequest is the customer-entered half of an order; the other half
// comes from the cart.
type CheckoutRequest struct {
	FulfillmentMethod string `json:"fulfillment_method"`
	CustomerName      string `json:"customer_name"`
	TableNumber       string `json:"table_number"`
	DeliveryZone      string `json:"delivery_zone"`
	DeliveryAddress   string `json:"delivery_address"`
	PickupTime        string `json:"pickup_time"`
	CustomerWhatsApp  string `json:"customer_whatsapp"`
	Notes             string `json:"notes"`
}

// CheckoutService persists orders and hands the customer off to either the
// WhatsApp deep link or a hosted payment session. Double submits are
// absorbed by an idempotency key derived from the cart contents bucketed
// into a short time window.
type CheckoutService struct {
	db      *gorm.DB
	gateway PaymentGateway

	idempotencyWindow time.Duration
	now               func() time.Time
}

func NewCheckoutService(db *gorm.DB, gateway PaymentGateway) *CheckoutService {
	return &CheckoutService{
		db:                db,
		gateway:           gateway,
		idempotencyWindow: 2 * time.Minute,
		now:               time.Now,
	}
}

// Validate checks the required fields for the chosen fulfillment method:
// dine-in needs a table number, delivery needs zone + address + contact,
// pickup and delivery need a name.
func (s *CheckoutService) Validate(req CheckoutRequest) error {
	switch req.FulfillmentMethod {
	case models.FulfillmentDineIn:
		if strings.TrimSpace(req.TableNumber) == "" {
			return ErrTableNumberRequired
		}
	case models.FulfillmentPickup:
		if strings.TrimSpace(req.CustomerName) == "" {
			return ErrCustomerNameRequired
		}
	case models.FulfillmentDelivery:
		if strings.TrimSpace(req.CustomerName) == "" {
			return ErrCustomerNameRequired
		}
		if strings.TrimSpace(req.DeliveryZone) == "" {
			return ErrDeliveryZoneRequired
		}
		if strings.TrimSpace(req.DeliveryAddress) == "" {
			return ErrDeliveryAddressRequired
		}
		if strings.TrimSpace(req.CustomerWhatsApp) == "" {
			return ErrWhatsAppRequired
		}
	default:
		return ErrInvalidFulfillment
	}
	return nil
}

// SubmitWhatsApp persists the order as pending_whatsapp and returns the
// wa.me deep link carrying the formatted summary. No delivery confirmation
// exists on this channel; the order stays unconfirmed until staff act.
func (s *CheckoutService) SubmitWhatsApp(ctx context.Context, restaurant models.Restaurant, store *cart.Store, req CheckoutRequest) (models.Order, string, error) {
	if err := s.Validate(req); err != nil {
		return models.Order{}, "", err
	}
	lines := store.Lines()
	if len(lines) == 0 {
		return models.Order{}, "", ErrEmptyCart
	}

	order, err := s.persistOrder(restaurant, store, req, models.OrderStatusPendingWhatsApp)
	if err != nil {
		return models.Order{}, "", err
	}

	message := BuildWhatsAppMessage(restaurant, req, lines, store.Total())
	phone := ""
	if restaurant.Phone != nil {
		phone = *restaurant.Phone
	}
	return order, WhatsAppLink(phone, message), nil
}

// SubmitCardPayment persists the order as pending_payment and requests a
// hosted checkout session for the cart total. The gateway notification
// later flips the order to paid.
func (s *CheckoutService) SubmitCardPayment(ctx context.Context, restaurant models.Restaurant, store *cart.Store, req CheckoutRequest) (models.Order, string, error) {
	if err := s.Validate(req); err != nil {
		return models.Order{}, "", err
	}
	lines := store.Lines()
	if len(lines) == 0 {
		return models.Order{}, "", ErrEmptyCart
	}

	order, err := s.persistOrder(restaurant, store, req, models.OrderStatusPendingPayment)
	if err != nil {
		return models.Order{}, "", err
	}

	redirectURL, err := s.gateway.CreateSession(order, lines)
	if err != nil {
		return models.Order{}, "", fmt.Errorf("create payment session: %w", err)
	}
	return order, redirectURL, nil
}

// persistOrder writes the order with its denormalized items. The
// idempotency key makes a double click within the window return the
// already-created order instead of a duplicate.
func (s *CheckoutService) persistOrder(restaurant models.Restaurant, store *cart.Store, req CheckoutRequest, status string) (models.Order, error) {
	lines := store.Lines()
	key := s.idempotencyKey(restaurant.ID, lines, status)

	var existing models.Order
	err := s.db.Preload("Items").Preload("Items.Modifiers").
		Where("idempotency_key = ?", key).First(&existing).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, err
	}

	order := models.Order{
		RestaurantID:      restaurant.ID,
		CustomerName:      customerName(req),
		TableNumber:       tableNumber(req),
		FulfillmentMethod: req.FulfillmentMethod,
		Notes:             req.Notes,
		Status:            status,
		TotalAmount:       store.Total(),
		IdempotencyKey:    &key,
		CreatedAt:         s.now(),
		UpdatedAt:         s.now(),
	}
	if req.FulfillmentMethod == models.FulfillmentDelivery {
		order.DeliveryZone = &req.DeliveryZone
		order.DeliveryAddress = &req.DeliveryAddress
	}
	if req.FulfillmentMethod == models.FulfillmentPickup && req.PickupTime != "" {
		order.PickupTime = &req.PickupTime
	}
	if req.CustomerWhatsApp != "" {
		order.CustomerWhatsApp = &req.CustomerWhatsApp
	}

	for _, line := range lines {
		item := models.OrderItem{
			MenuItemID: line.ProductID,
			LineKey:    line.Key.String(),
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
			CreatedAt:  s.now(),
			UpdatedAt:  s.now(),
		}
		for _, mod := range line.Modifiers {
			item.Modifiers = append(item.Modifiers, models.OrderItemModifier{
				OptionID:        mod.ID,
				Name:            mod.Name,
				PriceAdjustment: mod.PriceAdjustment,
				GroupName:       mod.GroupName,
				CreatedAt:       s.now(),
			})
		}
		order.Items = append(order.Items, item)
	}

	if err := s.db.Create(&order).Error; err != nil {
		// A concurrent submit may have won the unique-key race.
		var winner models.Order
		if ferr := s.db.Preload("Items").Preload("Items.Modifiers").
			Where("idempotency_key = ?", key).First(&winner).Error; ferr == nil {
			return winner, nil
		}
		return models.Order{}, err
	}
	return order, nil
}

// idempotencyKey hashes the restaurant, the line multiset and the current
// time bucket. Identical carts submitted within the same window map to the
// same order row.
func (s *CheckoutService) idempotencyKey(restaurantID string, lines []cart.Line, status string) string {
	parts := make([]string, len(lines))
	for i, line := range lines {
		parts[i] = fmt.Sprintf("%s=%d", line.Key, line.Quantity)
	}
	sort.Strings(parts)

	bucket := s.now().Truncate(s.idempotencyWindow).Unix()
	payload := fmt.Sprintf("%s|%s|%s|%d", restaurantID, status, strings.Join(parts, ","), bucket)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func customerName(req CheckoutRequest) string {
	if strings.TrimSpace(req.CustomerName) != "" {
		return req.CustomerName
	}
	if req.FulfillmentMethod == models.FulfillmentDineIn {
		return "Mesa " + req.TableNumber
	}
	return "Cliente"
}

func tableNumber(req CheckoutRequest) string {
	if req.FulfillmentMethod == models.FulfillmentDineIn {
		return req.TableNumber
	}
	return "N/A"
}

// BuildWhatsAppMessage renders the order summary sent to the restaurant's
// WhatsApp. Customer-facing text stays in Spanish.
func BuildWhatsAppMessage(restaurant models.Restaurant, req CheckoutRequest, lines []cart.Line, total decimal.Decimal) string {
	var itemLines []string
	for _, line := range lines {
		entry := fmt.Sprintf("• %dx %s (%s)", line.Quantity, line.Name, utils.FormatCurrencyGTQ(line.Subtotal()))
		for _, mod := range line.Modifiers {
			entry += "\n   + " + mod.Name
		}
		itemLines = append(itemLines, entry)
	}

	var methodDetails string
	switch req.FulfillmentMethod {
	case models.FulfillmentDineIn:
		methodDetails = fmt.Sprintf("🍽️ *Mesa:* %s", req.TableNumber)
	case models.FulfillmentPickup:
		pickup := req.PickupTime
		if pickup == "" {
			pickup = "Lo antes posible"
		}
		methodDetails = fmt.Sprintf("🛍️ *Para Llevar*\n⏰ *Hora:* %s", pickup)
	case models.FulfillmentDelivery:
		methodDetails = fmt.Sprintf("🛵 *A Domicilio*\n📍 *Zona:* %s\n🏠 *Dirección:* %s\n📱 *WA:* %s",
			req.DeliveryZone, req.DeliveryAddress, req.CustomerWhatsApp)
	}

	return fmt.Sprintf("*NUEVO PEDIDO - %s*\n\n*Cliente:* %s\n%s\n\n*Detalle del Pedido:*\n%s\n\n*TOTAL: %s*",
		restaurant.Name, customerName(req), methodDetails, strings.Join(itemLines, "\n"), utils.FormatCurrencyGTQ(total))
}

// WhatsAppLink builds the wa.me deep link with the URL-encoded message.
func WhatsAppLink(phone, message string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return fmt.Sprintf("https://wa.me/%s?text=%s", phone, encoded)
}
