package services

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/menudigital/backend/cart"
	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/utils"
)

// PaymentGateway creates a hosted checkout session for an order and returns
// the redirect URL the customer's browser is sent to.
type PaymentGateway interface {
	CreateSession(order models.Order, lines []cart.Line) (string, error)
}

// SnapGateway is the Midtrans Snap implementation. Amounts are sent in
// minor units so item subtotals always sum exactly to the gross amount.
type SnapGateway struct {
	client    snap.Client
	serverKey string
}

func NewSnapGateway() *SnapGateway {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_ENV") == "production" {
		env = midtrans.Production
	}

	var client snap.Client
	client.New(serverKey, env)
	return &SnapGateway{client: client, serverKey: serverKey}
}

func (g *SnapGateway) CreateSession(order models.Order, lines []cart.Line) (string, error) {
	items := make([]midtrans.ItemDetails, 0, len(lines))
	var gross int64

	for _, line := range lines {
		unit := line.UnitPrice
		var modNames []string
		for _, mod := range line.Modifiers {
			unit = unit.Add(mod.PriceAdjustment)
			modNames = append(modNames, mod.Name)
		}

		name := line.Name
		if len(modNames) > 0 {
			name = fmt.Sprintf("%s (+ %s)", name, strings.Join(modNames, ", "))
		}

		price := unit.Mul(decimalHundred).IntPart()
		gross += price * int64(line.Quantity)

		items = append(items, midtrans.ItemDetails{
			ID:    line.Key.String(),
			Name:  truncate(name, 50),
			Price: price,
			Qty:   int32(line.Quantity),
		})
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  SessionOrderID(order.ID),
			GrossAmt: gross,
		},
		Items: &items,
	}

	resp, err := g.client.CreateTransaction(req)
	if err != nil {
		return "", err
	}
	return resp.RedirectURL, nil
}

// VerifySignature checks the notification signature:
// sha512(order_id + status_code + gross_amount + server key).
func (g *SnapGateway) VerifySignature(orderID, statusCode, grossAmount, signature string) bool {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + g.serverKey))
	return hex.EncodeToString(sum[:]) == signature
}

// SessionOrderID maps our numeric order ID to the gateway's order
// reference.
func SessionOrderID(id uint) string {
	return fmt.Sprintf("order-%d", id)
}

// ParseSessionOrderID inverts SessionOrderID.
func ParseSessionOrderID(s string) (uint, error) {
	var id uint
	if _, err := fmt.Sscanf(s, "order-%d", &id); err != nil {
		return 0, fmt.Errorf("unrecognized order reference %q", s)
	}
	return id, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// ---------------------------------------------------------------------------

var (
	ErrInvalidSignature = errors.New("invalid notification signature")

	decimalHundred = decimal.NewFromInt(100)
)

// SignatureVerifier is the part of the gateway the webhook handler needs.
type SignatureVerifier interface {
	VerifySignature(orderID, statusCode, grossAmount, signature string) bool
}

// PaymentNotification is the gateway's webhook payload.
type PaymentNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

// PaymentService reconciles gateway notifications with pending_payment
// orders: settlement flips them to paid (which admits them to the kitchen),
// expiry/denial cancels them.
type PaymentService struct {
	db       *gorm.DB
	orders   *OrderService
	verifier SignatureVerifier
}

func NewPaymentService(db *gorm.DB, orders *OrderService, verifier SignatureVerifier) *PaymentService {
	return &PaymentService{db: db, orders: orders, verifier: verifier}
}

func (s *PaymentService) HandleNotification(n PaymentNotification) (models.Order, error) {
	if !s.verifier.VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, n.SignatureKey) {
		return models.Order{}, ErrInvalidSignature
	}

	orderID, err := ParseSessionOrderID(n.OrderID)
	if err != nil {
		return models.Order{}, err
	}

	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return models.Order{}, err
	}
	if order.Status != models.OrderStatusPendingPayment {
		// Already reconciled; notifications may be redelivered.
		return order, nil
	}

	switch n.TransactionStatus {
	case "settlement", "capture":
		return s.orders.Transition(orderID, -1, models.OrderStatusPaid)
	case "expire", "cancel", "deny":
		return s.orders.Transition(orderID, -1, models.OrderStatusCancelled)
	default:
		utils.InfoLogger.Printf("Ignoring notification status %q for order %d", n.TransactionStatus, orderID)
		return order, nil
	}
}
