package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fulfillment methods.
const (
	FulfillmentDineIn   = "dine_in"
	FulfillmentPickup   = "pickup"
	FulfillmentDelivery = "delivery"
)

// Order is the store of record for a submitted cart. Orders are never
// deleted, only filtered out of the active view once delivered/cancelled.
// Version backs the conditional update guarding concurrent staff actions.
type Order struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	RestaurantID      string          `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	Restaurant        Restaurant      `gorm:"foreignKey:RestaurantID;references:ID" json:"-"`
	CustomerName      string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	TableNumber       string          `gorm:"type:varchar(20)" json:"table_number"`
	FulfillmentMethod string          `gorm:"type:varchar(20);not null" json:"fulfillment_method"`
	DeliveryZone      *string         `gorm:"type:varchar(100)" json:"delivery_zone,omitempty"`
	DeliveryAddress   *string         `gorm:"type:text" json:"delivery_address,omitempty"`
	PickupTime        *string         `gorm:"type:varchar(20)" json:"pickup_time,omitempty"`
	CustomerWhatsApp  *string         `gorm:"type:varchar(30)" json:"customer_whatsapp,omitempty"`
	Notes             string          `gorm:"type:text" json:"notes"`
	Status            string          `gorm:"type:varchar(20);not null;default:'pending_whatsapp'" json:"status"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	IdempotencyKey    *string         `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	Version           int             `gorm:"not null;default:0" json:"version"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updated_at"`
}

// OrderItem is a denormalized cart line: name and unit price are copied at
// checkout so the ticket survives later catalog edits.
type OrderItem struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	OrderID    uint                `gorm:"not null;index" json:"order_id"`
	Order      Order               `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID uint                `gorm:"not null" json:"menu_item_id"`
	LineKey    string              `gorm:"type:varchar(255);not null" json:"line_key"`
	Name       string              `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice  decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity   int                 `gorm:"not null" json:"quantity"`
	Modifiers  []OrderItemModifier `gorm:"foreignKey:OrderItemID" json:"modifiers"`
	CreatedAt  time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time           `gorm:"not null" json:"updated_at"`
}

type OrderItemModifier struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderItemID     uint            `gorm:"not null;index" json:"order_item_id"`
	OptionID        uint            `gorm:"not null" json:"option_id"`
	Name            string          `gorm:"type:varchar(100);not null" json:"name"`
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_adjustment"`
	GroupName       string          `gorm:"type:varchar(100)" json:"group_name"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
}
