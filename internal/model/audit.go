package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit action constants
const (
	ActionCreateContract        = "CREATE_CONTRACT"
	ActionActivateContract      = "ACTIVATE_CONTRACT"
	ActionFinalizeContract      = "FINALIZE_CONTRACT"
	ActionCancelContract        = "CANCEL_CONTRACT"
	ActionPayInstallment        = "PAY_INSTALLMENT"
	ActionInstallmentLate       = "INSTALLMENT_OVERDUE"
	ActionCreateReservation     = "CREATE_RESERVATION"
	ActionConfirmReservation    = "CONFIRM_RESERVATION"
	ActionCancelReservation     = "CANCEL_RESERVATION"
	ActionCompleteReservation   = "COMPLETE_RESERVATION"
	ActionCreatePurchaseInvoice = "CREATE_PURCHASE_INVOICE"
	ActionCreateSaleInvoice     = "CREATE_SALE_INVOICE"
	ActionVehicleStatusChange   = "VEHICLE_STATUS_CHANGE"
)

// AuditEvent is one append-only entry of the audit trail: who did what to which
// entity, with structured details. Cancellation reasons are recorded here
// instead of being concatenated into entity notes.
type AuditEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Actor      string    `gorm:"type:varchar(100);not null" json:"actor"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType string    `gorm:"type:varchar(50);not null;index" json:"entity_type"`
	EntityID   string    `gorm:"type:varchar(50);not null;index" json:"entity_id"`
	Details    string    `gorm:"type:text" json:"details"` // serialized JSON payload
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (a *AuditEvent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
