package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle status name constants. The catalog rows are extensible, but these
// four drive every transition in the engines.
const (
	StatusAvailable = "AVAILABLE"
	StatusInRental  = "IN_RENTAL"
	StatusReserved  = "RESERVED"
	StatusSold      = "SOLD"
)

// VehicleStatus is one entry of the vehicle lifecycle catalog, ordered for display.
type VehicleStatus struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"name"`
	Description  string    `gorm:"type:varchar(100);not null" json:"description"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *VehicleStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// DefaultStatuses is the catalog seeded on first boot.
var DefaultStatuses = []VehicleStatus{
	{Name: StatusAvailable, Description: "Vehicle available for rental or sale", DisplayOrder: 1},
	{Name: StatusInRental, Description: "Vehicle under an active rental contract", DisplayOrder: 2},
	{Name: StatusReserved, Description: "Vehicle reserved for sale", DisplayOrder: 3},
	{Name: StatusSold, Description: "Vehicle sold", DisplayOrder: 4},
}
