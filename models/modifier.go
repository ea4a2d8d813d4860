package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ModifierGroup is a named set of add-on choices (e.g. "Toppings") with
// selection-count constraints. MaxSelection == 1 means single-select.
type ModifierGroup struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	RestaurantID string           `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	Name         string           `gorm:"type:varchar(100);not null" json:"name"`
	MinSelection int              `gorm:"not null;default:0" json:"min_selection"`
	MaxSelection int              `gorm:"not null;default:1" json:"max_selection"`
	Options      []ModifierOption `gorm:"foreignKey:GroupID" json:"options"`
	CreatedAt    time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"not null" json:"updated_at"`
}

type ModifierOption struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	GroupID         uint            `gorm:"not null;index" json:"group_id"`
	Name            string          `gorm:"type:varchar(100);not null" json:"name"`
	PriceAdjustment decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price_adjustment"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`
}

// ItemModifier attaches a modifier group to a menu item.
type ItemModifier struct {
	MenuItemID      uint `gorm:"primaryKey" json:"menu_item_id"`
	ModifierGroupID uint `gorm:"primaryKey" json:"modifier_group_id"`
}
