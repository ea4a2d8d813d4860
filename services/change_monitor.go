package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/menudigital/backend/kds"
	"github.com/menudigital/backend/models"
	"github.com/menudigital/backend/utils"
)

// ChangeMonitor polls the db_changes table that the database triggers fill
// on every order write, and turns unprocessed rows into feed events: the
// per-restaurant kitchen feeds reduce over them and websocket clients get
// the same events pushed.
type ChangeMonitor struct {
	DB       *gorm.DB
	Hub      *kds.Hub
	Registry *kds.Registry
	StopChan chan struct{}
	Interval time.Duration
}

func NewChangeMonitor(db *gorm.DB, hub *kds.Hub, registry *kds.Registry) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		Hub:      hub,
		Registry: registry,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Second,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.CheckChanges()
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

// CheckChanges drains up to one batch of unprocessed change rows in arrival
// order. Exported so tests can drive the monitor without the ticker.
func (cm *ChangeMonitor) CheckChanges() {
	var changes []models.DBChange

	tx := cm.DB.Begin()

	if err := tx.Where("processed = ?", false).
		Order("changed_at ASC, id ASC").
		Limit(100).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("Error fetching changes: %v", err)
		return
	}

	for _, change := range changes {
		switch change.TableName {
		case "orders":
			cm.processOrderChange(change)
		case "restaurant_events":
			cm.processEventChange(change)
		}

		if err := tx.Model(&models.DBChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			utils.ErrorLogger.Printf("Error marking change as processed: %v", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.ErrorLogger.Printf("Error committing change batch: %v", err)
		tx.Rollback()
		return
	}

	if len(changes) > 0 {
		utils.InfoLogger.Printf("Processed %d change rows", len(changes))
	}
}

func (cm *ChangeMonitor) processOrderChange(change models.DBChange) {
	var order models.Order
	if err := cm.DB.Preload("Items").Preload("Items.Modifiers").
		First(&order, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching order %d: %v", change.RecordID, err)
		return
	}

	var ev kds.OrderEvent
	switch change.ActionType {
	case models.ChangeActionInsert:
		ev = kds.OrderEvent{Type: kds.OrderInserted, Order: order}
	case models.ChangeActionUpdate:
		ev = kds.OrderEvent{Type: kds.OrderUpdated, Order: order}
	default:
		return
	}

	cm.Registry.Dispatch(ev)
	cm.Hub.BroadcastOrderEvent(ev)
}

func (cm *ChangeMonitor) processEventChange(change models.DBChange) {
	var event models.RestaurantEvent
	if err := cm.DB.First(&event, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching event %d: %v", change.RecordID, err)
		return
	}
	cm.Hub.BroadcastEventUpdate(event)
}
