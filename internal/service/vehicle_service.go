package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dealership/internal/model"
	"dealership/internal/repository"
	ws "dealership/internal/websocket"
	"dealership/pkg/apperror"
)

// --- DTOs ---

type CreateVehicleRequest struct {
	Plate           string `json:"plate" binding:"required,max=10"`
	Brand           string `json:"brand" binding:"required,max=50"`
	Model           string `json:"model" binding:"required,max=50"`
	ManufactureYear int    `json:"manufacture_year" binding:"required"`
	Color           string `json:"color" binding:"max=30"`
	Mileage         int    `json:"mileage"`
	VIN             string `json:"vin" binding:"omitempty,len=17"`
	FuelType        string `json:"fuel_type" binding:"required,oneof=DIESEL PETROL HYBRID ELECTRIC"`
}

type UpdateVehicleRequest struct {
	Brand           string `json:"brand" binding:"required,max=50"`
	Model           string `json:"model" binding:"required,max=50"`
	ManufactureYear int    `json:"manufacture_year" binding:"required"`
	Color           string `json:"color" binding:"max=30"`
	FuelType        string `json:"fuel_type" binding:"required,oneof=DIESEL PETROL HYBRID ELECTRIC"`
}

type UpdateMileageRequest struct {
	Mileage int `json:"mileage" binding:"required"`
}

type VehicleResponse struct {
	ID              string `json:"id"`
	Plate           string `json:"plate"`
	Brand           string `json:"brand"`
	Model           string `json:"model"`
	ManufactureYear int    `json:"manufacture_year"`
	Color           string `json:"color"`
	Mileage         int    `json:"mileage"`
	VIN             string `json:"vin"`
	FuelType        string `json:"fuel_type"`
	Status          string `json:"status"`
	HasPurchase     bool   `json:"has_purchase"`
	HasSale         bool   `json:"has_sale"`
	IsActive        bool   `json:"is_active"`
}

// --- Interface ---

// VehicleService manages the vehicle catalog and owns every status change.
// ApplyStatusEvent is the only write path to a vehicle's status: the rental,
// reservation and sale engines go through it so the transition table is
// enforced in exactly one place.
type VehicleService interface {
	CreateVehicle(ctx context.Context, req CreateVehicleRequest) (VehicleResponse, error)
	UpdateVehicle(ctx context.Context, id string, req UpdateVehicleRequest) (VehicleResponse, error)
	UpdateMileage(ctx context.Context, id string, req UpdateMileageRequest) (VehicleResponse, error)
	GetVehicle(ctx context.Context, id string) (VehicleResponse, error)
	GetVehicleByPlate(ctx context.Context, plate string) (VehicleResponse, error)
	ListVehicles(ctx context.Context, page, limit int) ([]VehicleResponse, int64, error)
	DeactivateVehicle(ctx context.Context, id string) error

	// ApplyStatusEvent resolves the transition table for the given event,
	// swaps the status under an optimistic version check and records the
	// change in the audit trail. Callers run it inside their transaction.
	ApplyStatusEvent(ctx context.Context, vehicleID uuid.UUID, event model.StatusEvent, actor string) (*model.Vehicle, error)
}

type vehicleService struct {
	vehicleRepo repository.VehicleRepository
	statusRepo  repository.StatusRepository
	audit       AuditService
	hub         *ws.Hub
}

func NewVehicleService(
	vehicleRepo repository.VehicleRepository,
	statusRepo repository.StatusRepository,
	audit AuditService,
	hub *ws.Hub,
) VehicleService {
	return &vehicleService{
		vehicleRepo: vehicleRepo,
		statusRepo:  statusRepo,
		audit:       audit,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *vehicleService) CreateVehicle(ctx context.Context, req CreateVehicleRequest) (VehicleResponse, error) {
	if err := validateManufactureYear(req.ManufactureYear); err != nil {
		return VehicleResponse{}, err
	}
	if req.Mileage < 0 {
		return VehicleResponse{}, apperror.NewBusinessRule("mileage cannot be negative")
	}

	exists, err := s.vehicleRepo.ExistsByPlate(ctx, req.Plate, uuid.Nil)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("failed to check plate: %w", err)
	}
	if exists {
		return VehicleResponse{}, apperror.NewDuplicate("vehicle", "plate", req.Plate)
	}
	if req.VIN != "" {
		exists, err = s.vehicleRepo.ExistsByVIN(ctx, req.VIN, uuid.Nil)
		if err != nil {
			return VehicleResponse{}, fmt.Errorf("failed to check vin: %w", err)
		}
		if exists {
			return VehicleResponse{}, apperror.NewDuplicate("vehicle", "vin", req.VIN)
		}
	}

	status, err := s.statusRepo.FindByName(ctx, model.StatusAvailable)
	if err != nil {
		return VehicleResponse{}, fmt.Errorf("status catalog not seeded: %w", err)
	}

	vehicle := &model.Vehicle{
		Plate:           req.Plate,
		Brand:           req.Brand,
		Model:           req.Model,
		ManufactureYear: req.ManufactureYear,
		Color:           req.Color,
		Mileage:         req.Mileage,
		VIN:             req.VIN,
		FuelType:        req.FuelType,
		StatusID:        status.ID,
		IsActive:        true,
	}
	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return VehicleResponse{}, fmt.Errorf("failed to create vehicle: %w", err)
	}

	vehicle.Status = status
	return toVehicleResponse(*vehicle), nil
}

func (s *vehicleService) UpdateVehicle(ctx context.Context, id string, req UpdateVehicleRequest) (VehicleResponse, error) {
	vehicle, err := s.findVehicle(ctx, id)
	if err != nil {
		return VehicleResponse{}, err
	}
	if err := validateManufactureYear(req.ManufactureYear); err != nil {
		return VehicleResponse{}, err
	}

	vehicle.Brand = req.Brand
	vehicle.Model = req.Model
	vehicle.ManufactureYear = req.ManufactureYear
	vehicle.Color = req.Color
	vehicle.FuelType = req.FuelType

	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return VehicleResponse{}, fmt.Errorf("failed to update vehicle: %w", err)
	}
	return toVehicleResponse(*vehicle), nil
}

func (s *vehicleService) UpdateMileage(ctx context.Context, id string, req UpdateMileageRequest) (VehicleResponse, error) {
	vehicle, err := s.findVehicle(ctx, id)
	if err != nil {
		return VehicleResponse{}, err
	}
	if req.Mileage < vehicle.Mileage {
		return VehicleResponse{}, apperror.NewBusinessRule(
			"mileage cannot decrease: current %d, requested %d", vehicle.Mileage, req.Mileage)
	}

	vehicle.Mileage = req.Mileage
	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return VehicleResponse{}, fmt.Errorf("failed to update mileage: %w", err)
	}
	return toVehicleResponse(*vehicle), nil
}

func (s *vehicleService) GetVehicle(ctx context.Context, id string) (VehicleResponse, error) {
	vehicle, err := s.findVehicle(ctx, id)
	if err != nil {
		return VehicleResponse{}, err
	}
	return toVehicleResponse(*vehicle), nil
}

func (s *vehicleService) GetVehicleByPlate(ctx context.Context, plate string) (VehicleResponse, error) {
	vehicle, err := s.vehicleRepo.FindByPlate(ctx, plate)
	if err != nil {
		return VehicleResponse{}, apperror.NewNotFound("vehicle", "plate", plate)
	}
	return toVehicleResponse(*vehicle), nil
}

func (s *vehicleService) ListVehicles(ctx context.Context, page, limit int) ([]VehicleResponse, int64, error) {
	vehicles, total, err := s.vehicleRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}

	res := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		res = append(res, toVehicleResponse(v))
	}
	return res, total, nil
}

func (s *vehicleService) DeactivateVehicle(ctx context.Context, id string) error {
	vehicle, err := s.findVehicle(ctx, id)
	if err != nil {
		return err
	}
	if vehicle.StatusName() == model.StatusInRental || vehicle.StatusName() == model.StatusReserved {
		return apperror.NewBusinessRule("vehicle %s cannot be deactivated while %s", vehicle.Plate, vehicle.StatusName())
	}

	vehicle.IsActive = false
	if err := s.vehicleRepo.Save(ctx, vehicle); err != nil {
		return fmt.Errorf("failed to deactivate vehicle: %w", err)
	}
	return nil
}

func (s *vehicleService) ApplyStatusEvent(ctx context.Context, vehicleID uuid.UUID, event model.StatusEvent, actor string) (*model.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, apperror.NewNotFound("vehicle", "id", vehicleID)
	}

	current := vehicle.StatusName()
	next, err := model.NextStatus(current, event)
	if err != nil {
		return nil, apperror.NewInvalidOperation(
			"vehicle %s: event %s is not allowed from status %s", vehicle.Plate, event, current)
	}

	nextStatus, err := s.statusRepo.FindByName(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("status catalog missing %s: %w", next, err)
	}

	ok, err := s.vehicleRepo.UpdateStatus(ctx, vehicle.ID, nextStatus.ID, vehicle.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update vehicle status: %w", err)
	}
	if !ok {
		return nil, apperror.NewInvalidOperation("vehicle %s was modified concurrently, retry", vehicle.Plate)
	}

	vehicle.StatusID = nextStatus.ID
	vehicle.Status = nextStatus
	vehicle.Version++

	err = s.audit.Record(ctx, actor, model.ActionVehicleStatusChange, "vehicle", vehicle.ID.String(), map[string]any{
		"plate": vehicle.Plate,
		"event": string(event),
		"from":  current,
		"to":    next,
	})
	if err != nil {
		return nil, err
	}

	// The broadcast must not escape a transaction that later rolls back.
	repository.AfterCommit(ctx, func() {
		s.hub.Publish(ws.StatusEvent{
			Type:      "vehicle_status_changed",
			VehicleID: vehicle.ID.String(),
			Plate:     vehicle.Plate,
			From:      current,
			To:        next,
			Event:     string(event),
			Timestamp: time.Now().UTC(),
		})
	})

	return vehicle, nil
}

// --- Helpers ---

func (s *vehicleService) findVehicle(ctx context.Context, id string) (*model.Vehicle, error) {
	vehicleID, err := parseID("vehicle id", id)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, apperror.NewNotFound("vehicle", "id", id)
	}
	return vehicle, nil
}

func validateManufactureYear(year int) error {
	if year < 1900 || year > time.Now().Year()+1 {
		return apperror.NewBusinessRule("manufacture_year %d is out of range", year)
	}
	return nil
}

func toVehicleResponse(v model.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:              v.ID.String(),
		Plate:           v.Plate,
		Brand:           v.Brand,
		Model:           v.Model,
		ManufactureYear: v.ManufactureYear,
		Color:           v.Color,
		Mileage:         v.Mileage,
		VIN:             v.VIN,
		FuelType:        v.FuelType,
		Status:          v.StatusName(),
		HasPurchase:     v.PurchaseInvoice != nil,
		HasSale:         v.SaleInvoice != nil,
		IsActive:        v.IsActive,
	}
}
