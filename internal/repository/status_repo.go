package repository

import (
	"context"

	"dealership/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StatusRepository interface {
	Create(ctx context.Context, status *model.VehicleStatus) error
	Save(ctx context.Context, status *model.VehicleStatus) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.VehicleStatus, error)
	FindByName(ctx context.Context, name string) (*model.VehicleStatus, error)
	List(ctx context.Context, activeOnly bool) ([]model.VehicleStatus, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type statusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &statusRepository{db: db}
}

func (r *statusRepository) Create(ctx context.Context, status *model.VehicleStatus) error {
	return GetDB(ctx, r.db).Create(status).Error
}

func (r *statusRepository) Save(ctx context.Context, status *model.VehicleStatus) error {
	return GetDB(ctx, r.db).Save(status).Error
}

func (r *statusRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.VehicleStatus, error) {
	var status model.VehicleStatus
	if err := GetDB(ctx, r.db).First(&status, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *statusRepository) FindByName(ctx context.Context, name string) (*model.VehicleStatus, error) {
	var status model.VehicleStatus
	if err := GetDB(ctx, r.db).First(&status, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *statusRepository) List(ctx context.Context, activeOnly bool) ([]model.VehicleStatus, error) {
	var statuses []model.VehicleStatus
	query := GetDB(ctx, r.db).Order("display_order asc")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *statusRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.VehicleStatus{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}
