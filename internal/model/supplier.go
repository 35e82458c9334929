package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier is a dealer or manufacturer vehicles are purchased from.
type Supplier struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaxID         string    `gorm:"column:tax_id;type:varchar(20);uniqueIndex;not null" json:"tax_id"`
	LegalName     string    `gorm:"type:varchar(200);not null" json:"legal_name"`
	TradeName     string    `gorm:"type:varchar(200);not null" json:"trade_name"`
	Address       string    `gorm:"type:varchar(300);not null" json:"address"`
	City          string    `gorm:"type:varchar(100)" json:"city"`
	Province      string    `gorm:"type:varchar(100)" json:"province"`
	PostalCode    string    `gorm:"type:varchar(10)" json:"postal_code"`
	Phone         string    `gorm:"type:varchar(20)" json:"phone"`
	Email         string    `gorm:"type:varchar(100)" json:"email"`
	ContactPerson string    `gorm:"type:varchar(100)" json:"contact_person"`
	Notes         string    `gorm:"type:text" json:"notes"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
