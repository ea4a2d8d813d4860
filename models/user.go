package models

import "time"

// User is a staff account (admin panel or kitchen display), scoped to one
// restaurant.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RestaurantID string     `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID;references:ID" json:"-"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	Email        string     `gorm:"type:varchar(255);unique;not null" json:"email"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         string     `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

const (
	RoleAdmin   = "admin"
	RoleKitchen = "kitchen"
)
