package repository

import (
	"context"
	"time"

	"dealership/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractRepository interface {
	Create(ctx context.Context, contract *model.RentalContract) error
	Save(ctx context.Context, contract *model.RentalContract) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RentalContract, error)
	FindByNumber(ctx context.Context, number string) (*model.RentalContract, error)
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]model.RentalContract, error)
	FindByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.RentalContract, error)
	FindByState(ctx context.Context, state string) ([]model.RentalContract, error)
	FindExpiringBefore(ctx context.Context, limit time.Time) ([]model.RentalContract, error)
	ExistsLiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
	LockNumberSequence(ctx context.Context, key string) error
	DeleteInstallments(ctx context.Context, contractID uuid.UUID) error
}

type contractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

// Create persists the contract together with its installment schedule.
func (r *contractRepository) Create(ctx context.Context, contract *model.RentalContract) error {
	return GetDB(ctx, r.db).Create(contract).Error
}

func (r *contractRepository) Save(ctx context.Context, contract *model.RentalContract) error {
	return GetDB(ctx, r.db).Omit("Installments").Save(contract).Error
}

func (r *contractRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RentalContract, error) {
	var contract model.RentalContract
	err := GetDB(ctx, r.db).
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("number asc") }).
		First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByNumber(ctx context.Context, number string) (*model.RentalContract, error) {
	var contract model.RentalContract
	err := GetDB(ctx, r.db).
		Preload("Installments", func(db *gorm.DB) *gorm.DB { return db.Order("number asc") }).
		First(&contract, "contract_number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]model.RentalContract, error) {
	var contracts []model.RentalContract
	err := GetDB(ctx, r.db).
		Where("client_id = ? AND is_active = ?", clientID, true).
		Order("start_date desc").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) FindByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.RentalContract, error) {
	var contracts []model.RentalContract
	err := GetDB(ctx, r.db).
		Where("vehicle_id = ? AND is_active = ?", vehicleID, true).
		Order("start_date desc").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) FindByState(ctx context.Context, state string) ([]model.RentalContract, error) {
	var contracts []model.RentalContract
	err := GetDB(ctx, r.db).
		Where("state = ? AND is_active = ?", state, true).
		Order("start_date desc").
		Find(&contracts).Error
	return contracts, err
}

// FindExpiringBefore returns active contracts whose end date falls before the
// given limit.
func (r *contractRepository) FindExpiringBefore(ctx context.Context, limit time.Time) ([]model.RentalContract, error) {
	var contracts []model.RentalContract
	err := GetDB(ctx, r.db).
		Where("state = ? AND end_date < ? AND is_active = ?", model.ContractActive, limit, true).
		Order("end_date asc").
		Find(&contracts).Error
	return contracts, err
}

// ExistsLiveByVehicle reports whether the vehicle already carries a pending or
// active contract.
func (r *contractRepository) ExistsLiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.RentalContract{}).
		Where("vehicle_id = ? AND state IN ?", vehicleID, []string{model.ContractPending, model.ContractActive}).
		Count(&count).Error
	return count > 0, err
}

// Count returns the total number of contracts ever created, cancelled ones
// included. Contract numbers are derived from it, so rows are never deleted.
func (r *contractRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.RentalContract{}).Count(&count).Error
	return count, err
}

// LockNumberSequence serializes contract number generation for one key.
// Advisory locks only exist on postgres; other dialects fall through.
func (r *contractRepository) LockNumberSequence(ctx context.Context, key string) error {
	db := GetDB(ctx, r.db)
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}

// DeleteInstallments drops a contract's schedule so it can be regenerated
// while the contract is still pending.
func (r *contractRepository) DeleteInstallments(ctx context.Context, contractID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("contract_id = ?", contractID).
		Delete(&model.Installment{}).Error
}
