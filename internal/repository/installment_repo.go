package repository

import (
	"context"
	"time"

	"dealership/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InstallmentRepository interface {
	Save(ctx context.Context, installment *model.Installment) error
	SaveAll(ctx context.Context, installments []model.Installment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Installment, error)
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]model.Installment, error)
	FindByState(ctx context.Context, state string) ([]model.Installment, error)
	FindOverdue(ctx context.Context, today time.Time) ([]model.Installment, error)
	FindDueBefore(ctx context.Context, limit time.Time) ([]model.Installment, error)
}

type installmentRepository struct {
	db *gorm.DB
}

func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) Save(ctx context.Context, installment *model.Installment) error {
	return GetDB(ctx, r.db).Save(installment).Error
}

func (r *installmentRepository) SaveAll(ctx context.Context, installments []model.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Save(&installments).Error
}

func (r *installmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Installment, error) {
	var installment model.Installment
	if err := GetDB(ctx, r.db).First(&installment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &installment, nil
}

func (r *installmentRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]model.Installment, error) {
	var installments []model.Installment
	err := GetDB(ctx, r.db).
		Where("contract_id = ?", contractID).
		Order("number asc").
		Find(&installments).Error
	return installments, err
}

func (r *installmentRepository) FindByState(ctx context.Context, state string) ([]model.Installment, error) {
	var installments []model.Installment
	err := GetDB(ctx, r.db).
		Where("state = ? AND is_active = ?", state, true).
		Order("due_date asc").
		Find(&installments).Error
	return installments, err
}

// FindOverdue returns pending installments whose due date has passed.
func (r *installmentRepository) FindOverdue(ctx context.Context, today time.Time) ([]model.Installment, error) {
	var installments []model.Installment
	err := GetDB(ctx, r.db).
		Where("state = ? AND due_date < ?", model.InstallmentPending, today).
		Order("due_date asc").
		Find(&installments).Error
	return installments, err
}

// FindDueBefore returns pending installments due before the given limit.
func (r *installmentRepository) FindDueBefore(ctx context.Context, limit time.Time) ([]model.Installment, error) {
	var installments []model.Installment
	err := GetDB(ctx, r.db).
		Where("state = ? AND due_date < ?", model.InstallmentPending, limit).
		Order("due_date asc").
		Find(&installments).Error
	return installments, err
}
