package repository

import (
	"context"

	"dealership/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	Save(ctx context.Context, vehicle *model.Vehicle) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*model.Vehicle, error)
	List(ctx context.Context, page, limit int) ([]model.Vehicle, int64, error)
	ExistsByPlate(ctx context.Context, plate string, excludeID uuid.UUID) (bool, error)
	ExistsByVIN(ctx context.Context, vin string, excludeID uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, statusID uuid.UUID, version int64) (bool, error)
}

type vehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	return GetDB(ctx, r.db).Create(vehicle).Error
}

func (r *vehicleRepository) Save(ctx context.Context, vehicle *model.Vehicle) error {
	return GetDB(ctx, r.db).Save(vehicle).Error
}

// FindByID loads a vehicle with the relations the eligibility checks read:
// status, purchase invoice, sale invoice.
func (r *vehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := GetDB(ctx, r.db).
		Preload("Status").
		Preload("PurchaseInvoice").
		Preload("SaleInvoice").
		First(&vehicle, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) FindByPlate(ctx context.Context, plate string) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := GetDB(ctx, r.db).
		Preload("Status").
		Preload("PurchaseInvoice").
		Preload("SaleInvoice").
		First(&vehicle, "plate = ?", plate).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *vehicleRepository) List(ctx context.Context, page, limit int) ([]model.Vehicle, int64, error) {
	var vehicles []model.Vehicle
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Vehicle{}).Where("is_active = ?", true).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Preload("Status").
		Where("is_active = ?", true).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&vehicles).Error
	if err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

func (r *vehicleRepository) ExistsByPlate(ctx context.Context, plate string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := GetDB(ctx, r.db).Model(&model.Vehicle{}).Where("plate = ?", plate)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *vehicleRepository) ExistsByVIN(ctx context.Context, vin string, excludeID uuid.UUID) (bool, error) {
	if vin == "" {
		return false, nil
	}
	var count int64
	query := GetDB(ctx, r.db).Model(&model.Vehicle{}).Where("vin = ?", vin)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// UpdateStatus performs the optimistic compare-and-set on the status column.
// It returns false when the version no longer matches, which means another
// request transitioned the vehicle first.
func (r *vehicleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, statusID uuid.UUID, version int64) (bool, error) {
	result := GetDB(ctx, r.db).Model(&model.Vehicle{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"status_id": statusID,
			"version":   version + 1,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
