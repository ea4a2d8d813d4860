package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	RestaurantID string          `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	CategoryID   uint            `gorm:"not null;index" json:"category_id"`
	Category     Category        `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL     *string         `gorm:"type:varchar(255)" json:"image_url"`
	Available    bool            `gorm:"not null;default:true" json:"available"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`

	// Attached via the item_modifiers join table.
	ModifierGroups []ModifierGroup `gorm:"many2many:item_modifiers;" json:"modifier_groups,omitempty"`
}
