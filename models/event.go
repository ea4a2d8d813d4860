package models

import "time"

// RestaurantEvent is a promo/announcement shown on the public menu.
type RestaurantEvent struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RestaurantID string     `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	Title        string     `gorm:"type:varchar(255);not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	ImageURL     *string    `gorm:"type:varchar(255)" json:"image_url"`
	StartsAt     *time.Time `json:"starts_at,omitempty"`
	EndsAt       *time.Time `json:"ends_at,omitempty"`
	Active       bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}
