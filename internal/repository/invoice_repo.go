package repository

import (
	"context"
	"time"

	"dealership/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseInvoiceRepository interface {
	Create(ctx context.Context, invoice *model.PurchaseInvoice) error
	Save(ctx context.Context, invoice *model.PurchaseInvoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoice, error)
	FindByNumber(ctx context.Context, number string) (*model.PurchaseInvoice, error)
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.PurchaseInvoice, error)
	FindByVehicle(ctx context.Context, vehicleID uuid.UUID) (*model.PurchaseInvoice, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]model.PurchaseInvoice, error)
	ExistsByNumber(ctx context.Context, number string, excludeID uuid.UUID) (bool, error)
	ExistsByVehicle(ctx context.Context, vehicleID uuid.UUID) (bool, error)
}

type purchaseInvoiceRepository struct {
	db *gorm.DB
}

func NewPurchaseInvoiceRepository(db *gorm.DB) PurchaseInvoiceRepository {
	return &purchaseInvoiceRepository{db: db}
}

func (r *purchaseInvoiceRepository) Create(ctx context.Context, invoice *model.PurchaseInvoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *purchaseInvoiceRepository) Save(ctx context.Context, invoice *model.PurchaseInvoice) error {
	return GetDB(ctx, r.db).Save(invoice).Error
}

func (r *purchaseInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseInvoice, error) {
	var invoice model.PurchaseInvoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *purchaseInvoiceRepository) FindByNumber(ctx context.Context, number string) (*model.PurchaseInvoice, error) {
	var invoice model.PurchaseInvoice
	if err := GetDB(ctx, r.db).First(&invoice, "invoice_number = ?", number).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *purchaseInvoiceRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]model.PurchaseInvoice, error) {
	var invoices []model.PurchaseInvoice
	err := GetDB(ctx, r.db).
		Where("supplier_id = ? AND is_active = ?", supplierID, true).
		Order("invoice_date desc").
		Find(&invoices).Error
	return invoices, err
}

func (r *purchaseInvoiceRepository) FindByVehicle(ctx context.Context, vehicleID uuid.UUID) (*model.PurchaseInvoice, error) {
	var invoice model.PurchaseInvoice
	if err := GetDB(ctx, r.db).First(&invoice, "vehicle_id = ?", vehicleID).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *purchaseInvoiceRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]model.PurchaseInvoice, error) {
	var invoices []model.PurchaseInvoice
	err := GetDB(ctx, r.db).
		Where("invoice_date BETWEEN ? AND ? AND is_active = ?", from, to, true).
		Order("invoice_date asc").
		Find(&invoices).Error
	return invoices, err
}

func (r *purchaseInvoiceRepository) ExistsByNumber(ctx context.Context, number string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := GetDB(ctx, r.db).Model(&model.PurchaseInvoice{}).Where("invoice_number = ?", number)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *purchaseInvoiceRepository) ExistsByVehicle(ctx context.Context, vehicleID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.PurchaseInvoice{}).
		Where("vehicle_id = ?", vehicleID).Count(&count).Error
	return count > 0, err
}

type SaleInvoiceRepository interface {
	Create(ctx context.Context, invoice *model.SaleInvoice) error
	Save(ctx context.Context, invoice *model.SaleInvoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SaleInvoice, error)
	FindByNumber(ctx context.Context, number string) (*model.SaleInvoice, error)
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]model.SaleInvoice, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]model.SaleInvoice, error)
	ExistsByNumber(ctx context.Context, number string, excludeID uuid.UUID) (bool, error)
	ExistsByVehicle(ctx context.Context, vehicleID uuid.UUID) (bool, error)
}

type saleInvoiceRepository struct {
	db *gorm.DB
}

func NewSaleInvoiceRepository(db *gorm.DB) SaleInvoiceRepository {
	return &saleInvoiceRepository{db: db}
}

func (r *saleInvoiceRepository) Create(ctx context.Context, invoice *model.SaleInvoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *saleInvoiceRepository) Save(ctx context.Context, invoice *model.SaleInvoice) error {
	return GetDB(ctx, r.db).Save(invoice).Error
}

func (r *saleInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.SaleInvoice, error) {
	var invoice model.SaleInvoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *saleInvoiceRepository) FindByNumber(ctx context.Context, number string) (*model.SaleInvoice, error) {
	var invoice model.SaleInvoice
	if err := GetDB(ctx, r.db).First(&invoice, "invoice_number = ?", number).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *saleInvoiceRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]model.SaleInvoice, error) {
	var invoices []model.SaleInvoice
	err := GetDB(ctx, r.db).
		Where("client_id = ? AND is_active = ?", clientID, true).
		Order("invoice_date desc").
		Find(&invoices).Error
	return invoices, err
}

func (r *saleInvoiceRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]model.SaleInvoice, error) {
	var invoices []model.SaleInvoice
	err := GetDB(ctx, r.db).
		Where("invoice_date BETWEEN ? AND ? AND is_active = ?", from, to, true).
		Order("invoice_date asc").
		Find(&invoices).Error
	return invoices, err
}

func (r *saleInvoiceRepository) ExistsByNumber(ctx context.Context, number string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := GetDB(ctx, r.db).Model(&model.SaleInvoice{}).Where("invoice_number = ?", number)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *saleInvoiceRepository) ExistsByVehicle(ctx context.Context, vehicleID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.SaleInvoice{}).
		Where("vehicle_id = ?", vehicleID).Count(&count).Error
	return count > 0, err
}
