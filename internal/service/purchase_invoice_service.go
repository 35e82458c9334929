package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dealership/internal/model"
	"dealership/internal/repository"
	"dealership/pkg/apperror"
)

// --- DTOs ---

type CreatePurchaseInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number" binding:"required,max=50"`
	InvoiceDate   string `json:"invoice_date" binding:"required"` // YYYY-MM-DD
	SupplierID    string `json:"supplier_id" binding:"required,uuid"`
	VehicleID     string `json:"vehicle_id" binding:"required,uuid"`
	BaseAmount    string `json:"base_amount" binding:"required"`
	VATRate       string `json:"vat_rate" binding:"required"`
	Notes         string `json:"notes"`
}

type UpdatePurchaseInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number" binding:"required,max=50"`
	InvoiceDate   string `json:"invoice_date" binding:"required"`
	BaseAmount    string `json:"base_amount" binding:"required"`
	VATRate       string `json:"vat_rate" binding:"required"`
	Notes         string `json:"notes"`
}

type PurchaseInvoiceResponse struct {
	ID            string `json:"id"`
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`
	SupplierID    string `json:"supplier_id"`
	VehicleID     string `json:"vehicle_id"`
	BaseAmount    string `json:"base_amount"`
	VATRate       string `json:"vat_rate"`
	Total         string `json:"total"`
	Notes         string `json:"notes,omitempty"`
}

// --- Interface ---

// PurchaseInvoiceService records vehicle acquisitions. A vehicle must carry a
// purchase invoice before it can be rented, and carries at most one. A sale
// without a recorded purchase is allowed and reports the full total as profit.
type PurchaseInvoiceService interface {
	CreatePurchaseInvoice(ctx context.Context, req CreatePurchaseInvoiceRequest, actor string) (PurchaseInvoiceResponse, error)
	UpdatePurchaseInvoice(ctx context.Context, id string, req UpdatePurchaseInvoiceRequest) (PurchaseInvoiceResponse, error)
	GetPurchaseInvoice(ctx context.Context, id string) (PurchaseInvoiceResponse, error)
	GetPurchaseInvoiceByNumber(ctx context.Context, number string) (PurchaseInvoiceResponse, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]PurchaseInvoiceResponse, error)
	ListByDateRange(ctx context.Context, from, to string) ([]PurchaseInvoiceResponse, error)
}

type purchaseInvoiceService struct {
	purchaseRepo repository.PurchaseInvoiceRepository
	supplierRepo repository.SupplierRepository
	vehicleRepo  repository.VehicleRepository
	audit        AuditService
	txManager    repository.TransactionManager
}

func NewPurchaseInvoiceService(
	purchaseRepo repository.PurchaseInvoiceRepository,
	supplierRepo repository.SupplierRepository,
	vehicleRepo repository.VehicleRepository,
	audit AuditService,
	txManager repository.TransactionManager,
) PurchaseInvoiceService {
	return &purchaseInvoiceService{
		purchaseRepo: purchaseRepo,
		supplierRepo: supplierRepo,
		vehicleRepo:  vehicleRepo,
		audit:        audit,
		txManager:    txManager,
	}
}

// --- Implementation ---

func (s *purchaseInvoiceService) CreatePurchaseInvoice(ctx context.Context, req CreatePurchaseInvoiceRequest, actor string) (PurchaseInvoiceResponse, error) {
	supplierID, err := parseID("supplier_id", req.SupplierID)
	if err != nil {
		return PurchaseInvoiceResponse{}, err
	}
	vehicleID, err := parseID("vehicle_id", req.VehicleID)
	if err != nil {
		return PurchaseInvoiceResponse{}, err
	}
	invoiceDate, err := parseDate("invoice_date", req.InvoiceDate)
	if err != nil {
		return PurchaseInvoiceResponse{}, err
	}
	base, vat, err := parseInvoiceAmounts(req.BaseAmount, req.VATRate)
	if err != nil {
		return PurchaseInvoiceResponse{}, err
	}

	var invoice *model.PurchaseInvoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.supplierRepo.FindByID(txCtx, supplierID); err != nil {
			return apperror.NewNotFound("supplier", "id", req.SupplierID)
		}
		if _, err := s.vehicleRepo.FindByID(txCtx, vehicleID); err != nil {
			return apperror.NewNotFound("vehicle", "id", req.VehicleID)
		}

		taken, err := s.purchaseRepo.ExistsByVehicle(txCtx, vehicleID)
		if err != nil {
			return fmt.Errorf("failed to check vehicle purchases: %w", err)
		}
		if taken {
			return apperror.NewDuplicate("purchase invoice", "vehicle_id", req.VehicleID)
		}

		taken, err = s.purchaseRepo.ExistsByNumber(txCtx, req.InvoiceNumber, uuid.Nil)
		if err != nil {
			return fmt.Errorf("failed to check invoice number: %w", err)
		}
		if taken {
			return apperror.NewDuplicate("purchase invoice", "invoice_number", req.InvoiceNumber)
		}

		invoice = &model.PurchaseInvoice{
			InvoiceNumber: req.InvoiceNumber,
			InvoiceDate:   invoiceDate,
			SupplierID:    supplierID,
			VehicleID:     vehicleID,
			BaseAmount:    base,
			VATRate:       vat,
			Notes:         req.Notes,
			IsActive:      true,
		}
		invoice.ComputeTotal()
		if err := s.purchaseRepo.Create(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to create purchase invoice: %w", err)
		}

		return s.audit.Record(txCtx, actor, model.ActionCreatePurchaseInvoice, "purchase_invoice", invoice.ID.String(), map[string]any{
			"invoice_number": req.InvoiceNumber,
			"vehicle_id":     req.VehicleID,
			"total":          invoice.Total.StringFixed(2),
		})
	})
	if err != nil {
		return PurchaseInvoiceResponse{}, err
	}
	return toPurchaseInvoiceResponse(*invoice), nil
}

func (s *purchaseInvoiceService) UpdatePurchaseInvoice(ctx context.Context, id string, req UpdatePurchaseInvoiceRequest) (PurchaseInvoiceResponse, error) {
	invoiceID, err := parseID("invoice id", id)
	if err != nil {
		return PurchaseInvoiceResponse{}, err
	}
	invoiceDate, err := parseDate("invoice_date", req.InvoiceDate)
	if err != nil {
		return PurchaseInvoiceResponse{}, err
	}
	base, vat, err := parseInvoiceAmounts(req.BaseAmount, req.VATRate)
	if err != nil {
		return PurchaseInvoiceResponse{}, err
	}

	invoice, err := s.purchaseRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return PurchaseInvoiceResponse{}, apperror.NewNotFound("purchase invoice", "id", id)
	}

	if req.InvoiceNumber != invoice.InvoiceNumber {
		taken, err := s.purchaseRepo.ExistsByNumber(ctx, req.InvoiceNumber, invoice.ID)
		if err != nil {
			return PurchaseInvoiceResponse{}, fmt.Errorf("failed to check invoice number: %w", err)
		}
		if taken {
			return PurchaseInvoiceResponse{}, apperror.NewDuplicate("purchase invoice", "invoice_number", req.InvoiceNumber)
		}
		invoice.InvoiceNumber = req.InvoiceNumber
	}

	invoice.InvoiceDate = invoiceDate
	invoice.BaseAmount = base
	invoice.VATRate = vat
	invoice.Notes = req.Notes
	invoice.ComputeTotal()

	if err := s.purchaseRepo.Save(ctx, invoice); err != nil {
		return PurchaseInvoiceResponse{}, fmt.Errorf("failed to update purchase invoice: %w", err)
	}
	return toPurchaseInvoiceResponse(*invoice), nil
}

func (s *purchaseInvoiceService) GetPurchaseInvoice(ctx context.Context, id string) (PurchaseInvoiceResponse, error) {
	invoiceID, err := parseID("invoice id", id)
	if err != nil {
		return PurchaseInvoiceResponse{}, err
	}
	invoice, err := s.purchaseRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return PurchaseInvoiceResponse{}, apperror.NewNotFound("purchase invoice", "id", id)
	}
	return toPurchaseInvoiceResponse(*invoice), nil
}

func (s *purchaseInvoiceService) GetPurchaseInvoiceByNumber(ctx context.Context, number string) (PurchaseInvoiceResponse, error) {
	invoice, err := s.purchaseRepo.FindByNumber(ctx, number)
	if err != nil {
		return PurchaseInvoiceResponse{}, apperror.NewNotFound("purchase invoice", "invoice_number", number)
	}
	return toPurchaseInvoiceResponse(*invoice), nil
}

func (s *purchaseInvoiceService) ListBySupplier(ctx context.Context, supplierID string) ([]PurchaseInvoiceResponse, error) {
	id, err := parseID("supplier_id", supplierID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.purchaseRepo.FindBySupplier(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase invoices: %w", err)
	}

	res := make([]PurchaseInvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		res = append(res, toPurchaseInvoiceResponse(inv))
	}
	return res, nil
}

func (s *purchaseInvoiceService) ListByDateRange(ctx context.Context, from, to string) ([]PurchaseInvoiceResponse, error) {
	fromDate, toDate, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}
	invoices, err := s.purchaseRepo.FindByDateRange(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase invoices: %w", err)
	}

	res := make([]PurchaseInvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		res = append(res, toPurchaseInvoiceResponse(inv))
	}
	return res, nil
}

// --- Helpers ---

func toPurchaseInvoiceResponse(inv model.PurchaseInvoice) PurchaseInvoiceResponse {
	return PurchaseInvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   fmtDate(inv.InvoiceDate),
		SupplierID:    inv.SupplierID.String(),
		VehicleID:     inv.VehicleID.String(),
		BaseAmount:    inv.BaseAmount.StringFixed(2),
		VATRate:       inv.VATRate.String(),
		Total:         inv.Total.StringFixed(2),
		Notes:         inv.Notes,
	}
}
