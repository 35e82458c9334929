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

type CreateSupplierRequest struct {
	TaxID         string `json:"tax_id" binding:"required,max=20"`
	LegalName     string `json:"legal_name" binding:"required,max=200"`
	TradeName     string `json:"trade_name" binding:"required,max=200"`
	Address       string `json:"address" binding:"required,max=300"`
	City          string `json:"city" binding:"max=100"`
	Province      string `json:"province" binding:"max=100"`
	PostalCode    string `json:"postal_code" binding:"max=10"`
	Phone         string `json:"phone" binding:"max=20"`
	Email         string `json:"email" binding:"omitempty,email"`
	ContactPerson string `json:"contact_person" binding:"max=100"`
	Notes         string `json:"notes"`
}

type UpdateSupplierRequest struct {
	LegalName     string `json:"legal_name" binding:"required,max=200"`
	TradeName     string `json:"trade_name" binding:"required,max=200"`
	Address       string `json:"address" binding:"required,max=300"`
	City          string `json:"city" binding:"max=100"`
	Province      string `json:"province" binding:"max=100"`
	PostalCode    string `json:"postal_code" binding:"max=10"`
	Phone         string `json:"phone" binding:"max=20"`
	Email         string `json:"email" binding:"omitempty,email"`
	ContactPerson string `json:"contact_person" binding:"max=100"`
	Notes         string `json:"notes"`
}

type SupplierResponse struct {
	ID            string `json:"id"`
	TaxID         string `json:"tax_id"`
	LegalName     string `json:"legal_name"`
	TradeName     string `json:"trade_name"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Province      string `json:"province"`
	PostalCode    string `json:"postal_code"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	ContactPerson string `json:"contact_person"`
	IsActive      bool   `json:"is_active"`
}

// --- Interface ---

type SupplierService interface {
	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (SupplierResponse, error)
	UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (SupplierResponse, error)
	GetSupplier(ctx context.Context, id string) (SupplierResponse, error)
	GetSupplierByTaxID(ctx context.Context, taxID string) (SupplierResponse, error)
	ListSuppliers(ctx context.Context, page, limit int) ([]SupplierResponse, int64, error)
	DeactivateSupplier(ctx context.Context, id string) error
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
}

func NewSupplierService(supplierRepo repository.SupplierRepository) SupplierService {
	return &supplierService{supplierRepo: supplierRepo}
}

// --- Implementation ---

func (s *supplierService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (SupplierResponse, error) {
	exists, err := s.supplierRepo.ExistsByTaxID(ctx, req.TaxID, uuid.Nil)
	if err != nil {
		return SupplierResponse{}, fmt.Errorf("failed to check tax id: %w", err)
	}
	if exists {
		return SupplierResponse{}, apperror.NewDuplicate("supplier", "tax_id", req.TaxID)
	}

	supplier := &model.Supplier{
		TaxID:         req.TaxID,
		LegalName:     req.LegalName,
		TradeName:     req.TradeName,
		Address:       req.Address,
		City:          req.City,
		Province:      req.Province,
		PostalCode:    req.PostalCode,
		Phone:         req.Phone,
		Email:         req.Email,
		ContactPerson: req.ContactPerson,
		Notes:         req.Notes,
		IsActive:      true,
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return SupplierResponse{}, fmt.Errorf("failed to create supplier: %w", err)
	}
	return toSupplierResponse(*supplier), nil
}

func (s *supplierService) UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (SupplierResponse, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return SupplierResponse{}, err
	}

	supplier.LegalName = req.LegalName
	supplier.TradeName = req.TradeName
	supplier.Address = req.Address
	supplier.City = req.City
	supplier.Province = req.Province
	supplier.PostalCode = req.PostalCode
	supplier.Phone = req.Phone
	supplier.Email = req.Email
	supplier.ContactPerson = req.ContactPerson
	supplier.Notes = req.Notes

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return SupplierResponse{}, fmt.Errorf("failed to update supplier: %w", err)
	}
	return toSupplierResponse(*supplier), nil
}

func (s *supplierService) GetSupplier(ctx context.Context, id string) (SupplierResponse, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return SupplierResponse{}, err
	}
	return toSupplierResponse(*supplier), nil
}

func (s *supplierService) GetSupplierByTaxID(ctx context.Context, taxID string) (SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByTaxID(ctx, taxID)
	if err != nil {
		return SupplierResponse{}, apperror.NewNotFound("supplier", "tax_id", taxID)
	}
	return toSupplierResponse(*supplier), nil
}

func (s *supplierService) ListSuppliers(ctx context.Context, page, limit int) ([]SupplierResponse, int64, error) {
	suppliers, total, err := s.supplierRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list suppliers: %w", err)
	}

	res := make([]SupplierResponse, 0, len(suppliers))
	for _, sp := range suppliers {
		res = append(res, toSupplierResponse(sp))
	}
	return res, total, nil
}

func (s *supplierService) DeactivateSupplier(ctx context.Context, id string) error {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return err
	}

	supplier.IsActive = false
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return fmt.Errorf("failed to deactivate supplier: %w", err)
	}
	return nil
}

// --- Helpers ---

func (s *supplierService) findSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	supplierID, err := parseID("supplier id", id)
	if err != nil {
		return nil, err
	}
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, apperror.NewNotFound("supplier", "id", id)
	}
	return supplier, nil
}

func toSupplierResponse(sp model.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            sp.ID.String(),
		TaxID:         sp.TaxID,
		LegalName:     sp.LegalName,
		TradeName:     sp.TradeName,
		Address:       sp.Address,
		City:          sp.City,
		Province:      sp.Province,
		PostalCode:    sp.PostalCode,
		Phone:         sp.Phone,
		Email:         sp.Email,
		ContactPerson: sp.ContactPerson,
		IsActive:      sp.IsActive,
	}
}
