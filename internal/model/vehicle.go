package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FuelType enum constants
const (
	FuelDiesel   = "DIESEL"
	FuelPetrol   = "PETROL"
	FuelHybrid   = "HYBRID"
	FuelElectric = "ELECTRIC"
)

// Vehicle is the central aggregate: its status must stay consistent with the
// purchase invoice, the active rental contract, the live reservation and the
// sale invoice attached to it.
type Vehicle struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Plate           string           `gorm:"type:varchar(10);uniqueIndex;not null" json:"plate"`
	Brand           string           `gorm:"type:varchar(50);not null" json:"brand"`
	Model           string           `gorm:"type:varchar(50);not null" json:"model"`
	ManufactureYear int              `gorm:"not null" json:"manufacture_year"`
	Color           string           `gorm:"type:varchar(30)" json:"color"`
	Mileage         int              `gorm:"not null;default:0" json:"mileage"`
	VIN             string           `gorm:"column:vin;type:varchar(17);uniqueIndex" json:"vin"`
	FuelType        string           `gorm:"type:varchar(20);not null" json:"fuel_type"` // DIESEL, PETROL, HYBRID, ELECTRIC
	StatusID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"status_id"`
	Status          *VehicleStatus   `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Version         int64            `gorm:"not null;default:0" json:"-"` // optimistic lock for status changes
	PurchaseInvoice *PurchaseInvoice `gorm:"foreignKey:VehicleID" json:"purchase_invoice,omitempty"`
	SaleInvoice     *SaleInvoice     `gorm:"foreignKey:VehicleID" json:"sale_invoice,omitempty"`
	Contracts       []RentalContract `gorm:"foreignKey:VehicleID" json:"contracts,omitempty"`
	Reservations    []Reservation    `gorm:"foreignKey:VehicleID" json:"reservations,omitempty"`
	IsActive        bool             `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// StatusName returns the loaded status name, or empty if not preloaded.
func (v *Vehicle) StatusName() string {
	if v.Status == nil {
		return ""
	}
	return v.Status.Name
}

// IsRentable reports whether the vehicle can enter a rental contract:
// available, already purchased, not yet sold.
func (v *Vehicle) IsRentable() bool {
	return v.StatusName() == StatusAvailable &&
		v.PurchaseInvoice != nil &&
		v.SaleInvoice == nil
}

// IsSold reports whether a sale invoice exists for the vehicle.
func (v *Vehicle) IsSold() bool {
	return v.SaleInvoice != nil
}
