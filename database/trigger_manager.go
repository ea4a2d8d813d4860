package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/menudigital/backend/utils"
)

// ExecuteTriggers installs the change-feed triggers: every insert/update on
// orders writes a row into db_changes carrying the restaurant scope, which
// the ChangeMonitor polls and fans out to websocket clients.
func ExecuteTriggers(db *gorm.DB) error {
	statements := mysqlTriggers
	if db.Dialector.Name() == "sqlite" {
		statements = sqliteTriggers
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			utils.ErrorLogger.Printf("Error executing trigger: %v\nStatement: %s", err, stmt)
			return fmt.Errorf("install triggers: %w", err)
		}
	}

	utils.InfoLogger.Printf("Change-feed triggers installed")
	return nil
}

var mysqlTriggers = []string{
	`DROP TRIGGER IF EXISTS orders_after_insert`,
	`CREATE TRIGGER orders_after_insert AFTER INSERT ON orders
	 FOR EACH ROW
	 INSERT INTO db_changes (table_name, record_id, restaurant_id, action_type, changed_at, processed)
	 VALUES ('orders', NEW.id, NEW.restaurant_id, 'INSERT', NOW(), false)`,
	`DROP TRIGGER IF EXISTS orders_after_update`,
	`CREATE TRIGGER orders_after_update AFTER UPDATE ON orders
	 FOR EACH ROW
	 INSERT INTO db_changes (table_name, record_id, restaurant_id, action_type, changed_at, processed)
	 VALUES ('orders', NEW.id, NEW.restaurant_id, 'UPDATE', NOW(), false)`,
	`DROP TRIGGER IF EXISTS restaurant_events_after_update`,
	`CREATE TRIGGER restaurant_events_after_update AFTER UPDATE ON restaurant_events
	 FOR EACH ROW
	 INSERT INTO db_changes (table_name, record_id, restaurant_id, action_type, changed_at, processed)
	 VALUES ('restaurant_events', NEW.id, NEW.restaurant_id, 'UPDATE', NOW(), false)`,
}

var sqliteTriggers = []string{
	`DROP TRIGGER IF EXISTS orders_after_insert`,
	`CREATE TRIGGER orders_after_insert AFTER INSERT ON orders
	 BEGIN
	   INSERT INTO db_changes (table_name, record_id, restaurant_id, action_type, changed_at, processed)
	   VALUES ('orders', NEW.id, NEW.restaurant_id, 'INSERT', CURRENT_TIMESTAMP, 0);
	 END`,
	`DROP TRIGGER IF EXISTS orders_after_update`,
	`CREATE TRIGGER orders_after_update AFTER UPDATE ON orders
	 BEGIN
	   INSERT INTO db_changes (table_name, record_id, restaurant_id, action_type, changed_at, processed)
	   VALUES ('orders', NEW.id, NEW.restaurant_id, 'UPDATE', CURRENT_TIMESTAMP, 0);
	 END`,
	`DROP TRIGGER IF EXISTS restaurant_events_after_update`,
	`CREATE TRIGGER restaurant_events_after_update AFTER UPDATE ON restaurant_events
	 BEGIN
	   INSERT INTO db_changes (table_name, record_id, restaurant_id, action_type, changed_at, processed)
	   VALUES ('restaurant_events', NEW.id, NEW.restaurant_id, 'UPDATE', CURRENT_TIMESTAMP, 0);
	 END`,
}
