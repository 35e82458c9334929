package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientType enum constants
const (
	ClientIndividual = "INDIVIDUAL"
	ClientCompany    = "COMPANY"
)

// Client is a person or company renting or buying vehicles.
// Document (DNI/CIF) is the business identity.
type Client struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Type        string    `gorm:"type:varchar(20);not null;index" json:"type"` // INDIVIDUAL, COMPANY
	Document    string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"document"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	Surname     string    `gorm:"type:varchar(200)" json:"surname"`
	CompanyName string    `gorm:"type:varchar(200)" json:"company_name"`
	Address     string    `gorm:"type:varchar(300);not null" json:"address"`
	City        string    `gorm:"type:varchar(100)" json:"city"`
	Province    string    `gorm:"type:varchar(100)" json:"province"`
	PostalCode  string    `gorm:"type:varchar(10)" json:"postal_code"`
	Phone       string    `gorm:"type:varchar(20)" json:"phone"`
	Email       string    `gorm:"type:varchar(100)" json:"email"`
	Notes       string    `gorm:"type:text" json:"notes"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DisplayName returns the company name for companies and name plus surname for
// individuals.
func (c *Client) DisplayName() string {
	if c.Type == ClientCompany && c.CompanyName != "" {
		return c.CompanyName
	}
	if c.Surname != "" {
		return c.Name + " " + c.Surname
	}
	return c.Name
}
