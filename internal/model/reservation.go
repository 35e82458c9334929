package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReservationState enum constants
const (
	ReservationPending   = "PENDING"
	ReservationConfirmed = "CONFIRMED"
	ReservationCancelled = "CANCELLED"
	ReservationCompleted = "COMPLETED"
)

// Reservation is a client's hold on a vehicle pending a future sale.
// A vehicle carries at most one live (is_active) reservation.
type Reservation struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"client_id"`
	Client          *Client          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	VehicleID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle         *Vehicle         `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	ReservationDate time.Time        `gorm:"not null;index" json:"reservation_date"`
	Deadline        *time.Time       `json:"deadline"`
	Price           decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	Deposit         *decimal.Decimal `gorm:"type:decimal(10,2)" json:"deposit"`
	State           string           `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"state"`
	Notes           string           `gorm:"type:text" json:"notes"`
	IsActive        bool             `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether a pending reservation has passed its deadline.
func (r *Reservation) IsExpired(today time.Time) bool {
	return r.State == ReservationPending &&
		r.Deadline != nil &&
		r.Deadline.Before(today)
}
