package models

import "time"

// Restaurant is the tenant root. Every catalog entity and order hangs off
// a restaurant ID, and realtime subscriptions are filtered by it.
type Restaurant struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Slug          string    `gorm:"type:varchar(100);unique;not null" json:"slug"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name"`
	Phone         *string   `gorm:"type:varchar(30)" json:"phone"`
	Theme         string    `gorm:"type:varchar(50);not null;default:'classic_grid'" json:"theme"`
	LogoURL       *string   `gorm:"type:varchar(255)" json:"logo_url"`
	DeliveryZones string    `gorm:"type:text" json:"delivery_zones"` // JSON array of zone names
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

// Menu themes selectable per restaurant.
const (
	ThemeClassicGrid    = "classic_grid"
	ThemeMinimalList    = "minimal_list"
	ThemeUrbanGrid      = "urban_grid"
	ThemeLuxe           = "luxe"
	ThemeLuxuryShowcase = "luxury_showcase"
)
