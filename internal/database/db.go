package database

import (
	"log"

	"dealership/internal/model"

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

// Migrate runs the schema migration for all domain models. Shared with the
// test harness, which runs it against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.VehicleStatus{},
		&model.Vehicle{},
		&model.Client{},
		&model.Supplier{},
		&model.RentalContract{},
		&model.Installment{},
		&model.Reservation{},
		&model.PurchaseInvoice{},
		&model.SaleInvoice{},
		&model.AuditEvent{},
	)
}
