package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// PurchaseInvoice records a vehicle's acquisition cost. One per vehicle.
type PurchaseInvoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_number"`
	InvoiceDate   time.Time       `gorm:"not null;index" json:"invoice_date"`
	SupplierID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier      *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	VehicleID     uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"vehicle_id"`
	BaseAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_amount"`
	VATRate       decimal.Decimal `gorm:"column:vat_rate;type:decimal(5,2);not null" json:"vat_rate"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Notes         string          `gorm:"type:text" json:"notes"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p *PurchaseInvoice) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ComputeTotal derives total = base + base * vat/100, rounded to 2 decimals.
func (p *PurchaseInvoice) ComputeTotal() {
	vat := p.BaseAmount.Mul(p.VATRate).Div(hundred)
	p.Total = p.BaseAmount.Add(vat).Round(2)
}

// SaleInvoice records a vehicle's sale to a client, possibly closing a
// reservation. One per vehicle.
type SaleInvoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_number"`
	InvoiceDate   time.Time       `gorm:"not null;index" json:"invoice_date"`
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client        *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	VehicleID     uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"vehicle_id"`
	ReservationID *uuid.UUID      `gorm:"type:uuid;index" json:"reservation_id"`
	Reservation   *Reservation    `gorm:"foreignKey:ReservationID" json:"reservation,omitempty"`
	BaseAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_amount"`
	VATRate       decimal.Decimal `gorm:"column:vat_rate;type:decimal(5,2);not null" json:"vat_rate"`
	Discount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Notes         string          `gorm:"type:text" json:"notes"`
	IsActive      bool            `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (s *SaleInvoice) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ComputeTotal derives total = (base - discount) * (1 + vat/100), rounded to 2
// decimals.
func (s *SaleInvoice) ComputeTotal() {
	base := s.BaseAmount
	if s.Discount.IsPositive() {
		base = base.Sub(s.Discount)
	}
	vat := base.Mul(s.VATRate).Div(hundred)
	s.Total = base.Add(vat).Round(2)
}
