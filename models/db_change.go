package models

import "time"

// DBChange is the change-feed row written by database triggers on every
// insert/update of a watched table. The ChangeMonitor polls unprocessed
// rows and turns them into kitchen feed events.
type DBChange struct {
	ID           uint      `gorm:"primaryKey"`
	TableName    string    `gorm:"type:varchar(50);not null;index:idx_table_action"`
	RecordID     int64     `gorm:"not null"`
	RestaurantID string    `gorm:"type:varchar(36);not null;index"`
	ActionType   string    `gorm:"type:varchar(10);not null;index:idx_table_action"`
	ChangedAt    time.Time `gorm:"not null"`
	Processed    bool      `gorm:"default:false;index:idx_processed"`
}

const (
	ChangeActionInsert = "INSERT"
	ChangeActionUpdate = "UPDATE"
	ChangeActionDelete = "DELETE"
)
