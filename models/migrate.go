package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every table. The usage ledger is only
// provisioned when withUsageLedger is set.
func AutoMigrate(db *gorm.DB, withUsageLedger bool) error {
	tables := []interface{}{
		&MenuItem{},
		&Topping{},
		&Order{},
		&OrderItem{},
		&InventoryItem{},
		&Manager{},
	}
	if withUsageLedger {
		tables = append(tables, &InventoryUsage{})
	}
	return db.AutoMigrate(tables...)
}
