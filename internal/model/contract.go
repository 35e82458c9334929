package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContractState enum constants
const (
	ContractPending   = "PENDING"
	ContractActive    = "ACTIVE"
	ContractFinished  = "FINISHED"
	ContractCancelled = "CANCELLED"
)

// InstallmentState enum constants
const (
	InstallmentPending   = "PENDING"
	InstallmentPaid      = "PAID"
	InstallmentOverdue   = "OVERDUE"
	InstallmentCancelled = "CANCELLED"
)

// RentalContract leases a vehicle to a client for a fixed term and monthly fee.
// The installment schedule is generated once at creation, one row per month of
// duration.
type RentalContract struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"contract_number"`
	ClientID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client         *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	VehicleID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Vehicle        *Vehicle        `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	StartDate      time.Time       `gorm:"not null;index" json:"start_date"`
	EndDate        time.Time       `gorm:"not null" json:"end_date"`
	DurationMonths int             `gorm:"not null" json:"duration_months"`
	MonthlyFee     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"monthly_fee"`
	IncludedKm     int             `gorm:"not null;default:0" json:"included_km"`
	ExtraKmCost    decimal.Decimal `gorm:"type:decimal(5,3);not null;default:0" json:"extra_km_cost"`
	State          string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"state"`
	Notes          string          `gorm:"type:text" json:"notes"`
	Installments   []Installment   `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE" json:"installments,omitempty"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (c *RentalContract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Installment is one scheduled monthly payment within a rental contract.
type Installment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"contract_id"`
	Contract    *RentalContract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
	Number      int             `gorm:"not null" json:"number"`
	DueDate     time.Time       `gorm:"not null;index" json:"due_date"`
	PaymentDate *time.Time      `json:"payment_date"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	State       string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"state"`
	Notes       string          `gorm:"type:text" json:"notes"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (i *Installment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// IsOverdue reports whether a pending installment has passed its due date.
func (i *Installment) IsOverdue(today time.Time) bool {
	return i.State == InstallmentPending && i.DueDate.Before(today)
}
