package database

import (
	"log"

	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate applies the schema for every model. Separated from NewConnection
// so tests can run it against their own database handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.ProductTransaction{},
		&model.Supplier{},
		&model.Customer{},
		&model.Purchase{},
		&model.PurchaseItem{},
		&model.PurchaseEdit{},
		&model.PurchaseReturn{},
		&model.InventoryBatch{},
		&model.InventoryItem{},
		&model.InventoryMovement{},
		&model.Sales{},
		&model.SalesReturn{},
		&model.ActivityLog{},
	)
}
