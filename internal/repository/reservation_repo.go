package repository

import (
	"context"
	"time"

	"dealership/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	Save(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]model.Reservation, error)
	FindByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.Reservation, error)
	FindByState(ctx context.Context, state string) ([]model.Reservation, error)
	FindExpired(ctx context.Context, today time.Time) ([]model.Reservation, error)
	ExistsLiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (bool, error)
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	return GetDB(ctx, r.db).Create(reservation).Error
}

func (r *reservationRepository) Save(ctx context.Context, reservation *model.Reservation) error {
	return GetDB(ctx, r.db).Save(reservation).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := GetDB(ctx, r.db).First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := GetDB(ctx, r.db).
		Where("client_id = ? AND is_active = ?", clientID, true).
		Order("reservation_date desc").
		Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepository) FindByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := GetDB(ctx, r.db).
		Where("vehicle_id = ? AND is_active = ?", vehicleID, true).
		Order("reservation_date desc").
		Find(&reservations).Error
	return reservations, err
}

func (r *reservationRepository) FindByState(ctx context.Context, state string) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := GetDB(ctx, r.db).
		Where("state = ? AND is_active = ?", state, true).
		Order("reservation_date desc").
		Find(&reservations).Error
	return reservations, err
}

// FindExpired returns pending reservations whose deadline has passed.
func (r *reservationRepository) FindExpired(ctx context.Context, today time.Time) ([]model.Reservation, error) {
	var reservations []model.Reservation
	err := GetDB(ctx, r.db).
		Where("state = ? AND deadline IS NOT NULL AND deadline < ?", model.ReservationPending, today).
		Order("deadline asc").
		Find(&reservations).Error
	return reservations, err
}

// ExistsLiveByVehicle enforces the one-live-reservation-per-vehicle rule: a
// reservation still flagged active in a non-terminal state counts as live.
func (r *reservationRepository) ExistsLiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Reservation{}).
		Where("vehicle_id = ? AND is_active = ? AND state IN ?",
			vehicleID, true, []string{model.ReservationPending, model.ReservationConfirmed}).
		Count(&count).Error
	return count > 0, err
}
