package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/menudigital/backend/models"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrVersionConflict   = errors.New("order was modified by someone else, reload and retry")
)

// OrderService owns order status changes. Every transition is checked
// against the state machine and applied with a conditional update on the
// version column, so two staff members acting on the same ticket cannot
// silently overwrite each other.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// Transition moves an order to the given status. expectedVersion is the
// version the caller last saw; pass a negative value to use the current one
// (still guarded against updates racing this call).
func (s *OrderService) Transition(orderID uint, expectedVersion int, to string) (models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, orderID).Error; err != nil {
		return models.Order{}, err
	}

	if !models.CanTransition(order.Status, to) {
		return models.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, to)
	}

	if expectedVersion < 0 {
		expectedVersion = order.Version
	}

	res := s.db.Model(&models.Order{}).
		Where("id = ? AND version = ?", orderID, expectedVersion).
		Updates(map[string]interface{}{
			"status":     to,
			"version":    expectedVersion + 1,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return models.Order{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.Order{}, ErrVersionConflict
	}

	if err := s.db.Preload("Items").Preload("Items.Modifiers").First(&order, orderID).Error; err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// ActiveOrders loads the kitchen snapshot: non-terminal orders of one
// restaurant, oldest first.
func (s *OrderService) ActiveOrders(restaurantID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items").Preload("Items.Modifiers").
		Where("restaurant_id = ? AND status IN ?", restaurantID, models.ActiveOrderStatuses()).
		Order("created_at asc").
		Find(&orders).Error
	return orders, err
}
