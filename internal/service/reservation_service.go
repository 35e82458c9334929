package service

import (
	"context"
	"fmt"

	"dealership/internal/model"
	"dealership/internal/repository"
	"dealership/pkg/apperror"
)

// --- DTOs ---

type CreateReservationRequest struct {
	ClientID  string `json:"client_id" binding:"required,uuid"`
	VehicleID string `json:"vehicle_id" binding:"required,uuid"`
	Deadline  string `json:"deadline"` // YYYY-MM-DD, optional
	Price     string `json:"price" binding:"required"`
	Deposit   string `json:"deposit"`
	Notes     string `json:"notes"`
}

type ReservationResponse struct {
	ID              string  `json:"id"`
	ClientID        string  `json:"client_id"`
	VehicleID       string  `json:"vehicle_id"`
	ReservationDate string  `json:"reservation_date"`
	Deadline        *string `json:"deadline"`
	Price           string  `json:"price"`
	Deposit         *string `json:"deposit"`
	State           string  `json:"state"`
	Notes           string  `json:"notes,omitempty"`
	IsActive        bool    `json:"is_active"`
}

// --- Interface ---

// ReservationService runs the sales-hold engine. Placing a reservation moves
// the vehicle to RESERVED; releasing it by cancellation or expiry hands the
// vehicle back, and completion is driven by the sale invoice.
type ReservationService interface {
	CreateReservation(ctx context.Context, req CreateReservationRequest, actor string) (ReservationResponse, error)
	ConfirmReservation(ctx context.Context, id string, actor string) (ReservationResponse, error)
	CancelReservation(ctx context.Context, id string, reason string, actor string) (ReservationResponse, error)
	ExpirySweep(ctx context.Context, actor string) (SweepResult, error)
	GetReservation(ctx context.Context, id string) (ReservationResponse, error)
	ListByClient(ctx context.Context, clientID string) ([]ReservationResponse, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]ReservationResponse, error)
	ListByState(ctx context.Context, state string) ([]ReservationResponse, error)
	ListExpired(ctx context.Context) ([]ReservationResponse, error)
}

type reservationService struct {
	reservationRepo repository.ReservationRepository
	clientRepo      repository.ClientRepository
	vehicleRepo     repository.VehicleRepository
	vehicles        VehicleService
	audit           AuditService
	txManager       repository.TransactionManager
}

func NewReservationService(
	reservationRepo repository.ReservationRepository,
	clientRepo repository.ClientRepository,
	vehicleRepo repository.VehicleRepository,
	vehicles VehicleService,
	audit AuditService,
	txManager repository.TransactionManager,
) ReservationService {
	return &reservationService{
		reservationRepo: reservationRepo,
		clientRepo:      clientRepo,
		vehicleRepo:     vehicleRepo,
		vehicles:        vehicles,
		audit:           audit,
		txManager:       txManager,
	}
}

// --- Implementation ---

func (s *reservationService) CreateReservation(ctx context.Context, req CreateReservationRequest, actor string) (ReservationResponse, error) {
	clientID, err := parseID("client_id", req.ClientID)
	if err != nil {
		return ReservationResponse{}, err
	}
	vehicleID, err := parseID("vehicle_id", req.VehicleID)
	if err != nil {
		return ReservationResponse{}, err
	}
	deadline, err := parseOptionalDate("deadline", req.Deadline)
	if err != nil {
		return ReservationResponse{}, err
	}
	if deadline != nil && !deadline.After(today()) {
		return ReservationResponse{}, apperror.NewBusinessRule("deadline must be in the future")
	}
	price, err := parseAmount("price", req.Price)
	if err != nil {
		return ReservationResponse{}, err
	}
	if !price.IsPositive() {
		return ReservationResponse{}, apperror.NewBusinessRule("price must be positive")
	}
	deposit, err := parseOptionalAmount("deposit", req.Deposit)
	if err != nil {
		return ReservationResponse{}, err
	}
	if deposit.IsNegative() || deposit.GreaterThan(price) {
		return ReservationResponse{}, apperror.NewBusinessRule("deposit must be between 0 and the reservation price")
	}

	var reservation *model.Reservation
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client, err := s.clientRepo.FindByID(txCtx, clientID)
		if err != nil {
			return apperror.NewNotFound("client", "id", req.ClientID)
		}
		if !client.IsActive {
			return apperror.NewBusinessRule("client %s is deactivated", client.Document)
		}

		vehicle, err := s.vehicleRepo.FindByID(txCtx, vehicleID)
		if err != nil {
			return apperror.NewNotFound("vehicle", "id", req.VehicleID)
		}
		if vehicle.IsSold() {
			return apperror.NewBusinessRule("vehicle %s is already sold", vehicle.Plate)
		}
		if vehicle.StatusName() != model.StatusAvailable {
			return apperror.NewBusinessRule(
				"vehicle %s cannot be reserved while %s", vehicle.Plate, vehicle.StatusName())
		}

		live, err := s.reservationRepo.ExistsLiveByVehicle(txCtx, vehicleID)
		if err != nil {
			return fmt.Errorf("failed to check live reservations: %w", err)
		}
		if live {
			return apperror.NewDuplicate("reservation", "vehicle_id", req.VehicleID)
		}

		reservation = &model.Reservation{
			ClientID:        clientID,
			VehicleID:       vehicleID,
			ReservationDate: today(),
			Deadline:        deadline,
			Price:           price.Round(2),
			State:           model.ReservationPending,
			Notes:           req.Notes,
			IsActive:        true,
		}
		if !deposit.IsZero() {
			rounded := deposit.Round(2)
			reservation.Deposit = &rounded
		}
		if err := s.reservationRepo.Create(txCtx, reservation); err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		if _, err := s.vehicles.ApplyStatusEvent(txCtx, vehicleID, model.EventReservationPlaced, actor); err != nil {
			return err
		}

		return s.audit.Record(txCtx, actor, model.ActionCreateReservation, "reservation", reservation.ID.String(), map[string]any{
			"vehicle_id": req.VehicleID,
			"client_id":  req.ClientID,
			"price":      reservation.Price.StringFixed(2),
		})
	})
	if err != nil {
		return ReservationResponse{}, err
	}
	return toReservationResponse(*reservation), nil
}

func (s *reservationService) ConfirmReservation(ctx context.Context, id string, actor string) (ReservationResponse, error) {
	var reservation *model.Reservation
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		reservation, err = s.findReservation(txCtx, id)
		if err != nil {
			return err
		}
		if reservation.State != model.ReservationPending {
			return apperror.NewInvalidOperation(
				"reservation cannot be confirmed from state %s", reservation.State)
		}
		if reservation.IsExpired(today()) {
			return apperror.NewBusinessRule(
				"reservation deadline %s has passed", fmtDate(*reservation.Deadline))
		}

		reservation.State = model.ReservationConfirmed
		if err := s.reservationRepo.Save(txCtx, reservation); err != nil {
			return fmt.Errorf("failed to confirm reservation: %w", err)
		}

		return s.audit.Record(txCtx, actor, model.ActionConfirmReservation, "reservation", reservation.ID.String(), nil)
	})
	if err != nil {
		return ReservationResponse{}, err
	}
	return toReservationResponse(*reservation), nil
}

func (s *reservationService) CancelReservation(ctx context.Context, id string, reason string, actor string) (ReservationResponse, error) {
	if reason == "" {
		return ReservationResponse{}, apperror.NewBusinessRule("a cancellation reason is required")
	}

	var reservation *model.Reservation
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		reservation, err = s.findReservation(txCtx, id)
		if err != nil {
			return err
		}
		return s.release(txCtx, reservation, reason, actor)
	})
	if err != nil {
		return ReservationResponse{}, err
	}
	return toReservationResponse(*reservation), nil
}

// ExpirySweep cancels every pending reservation past its deadline and hands
// the vehicles back. Reruns only pick up newly expired rows.
func (s *reservationService) ExpirySweep(ctx context.Context, actor string) (SweepResult, error) {
	var released int
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		expired, err := s.reservationRepo.FindExpired(txCtx, today())
		if err != nil {
			return fmt.Errorf("failed to find expired reservations: %w", err)
		}
		for i := range expired {
			if err := s.release(txCtx, &expired[i], "auto-expired", actor); err != nil {
				return err
			}
			released++
		}
		return nil
	})
	if err != nil {
		return SweepResult{}, err
	}
	return SweepResult{Flagged: released}, nil
}

func (s *reservationService) GetReservation(ctx context.Context, id string) (ReservationResponse, error) {
	reservation, err := s.findReservation(ctx, id)
	if err != nil {
		return ReservationResponse{}, err
	}
	return toReservationResponse(*reservation), nil
}

func (s *reservationService) ListByClient(ctx context.Context, clientID string) ([]ReservationResponse, error) {
	id, err := parseID("client_id", clientID)
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservationRepo.FindByClient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return toReservationResponses(reservations), nil
}

func (s *reservationService) ListByVehicle(ctx context.Context, vehicleID string) ([]ReservationResponse, error) {
	id, err := parseID("vehicle_id", vehicleID)
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservationRepo.FindByVehicle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return toReservationResponses(reservations), nil
}

func (s *reservationService) ListByState(ctx context.Context, state string) ([]ReservationResponse, error) {
	switch state {
	case model.ReservationPending, model.ReservationConfirmed, model.ReservationCancelled, model.ReservationCompleted:
	default:
		return nil, apperror.NewBusinessRule("unknown reservation state %q", state)
	}
	reservations, err := s.reservationRepo.FindByState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return toReservationResponses(reservations), nil
}

// ListExpired returns pending reservations whose deadline has passed, the rows
// the next expiry sweep would release.
func (s *reservationService) ListExpired(ctx context.Context) ([]ReservationResponse, error) {
	reservations, err := s.reservationRepo.FindExpired(ctx, today())
	if err != nil {
		return nil, fmt.Errorf("failed to list expired reservations: %w", err)
	}
	return toReservationResponses(reservations), nil
}

// --- Helpers ---

// release cancels a reservation and returns the vehicle to the pool. A
// completed reservation closed a sale and cannot be undone; cancelling an
// already cancelled one only appends another audit entry.
func (s *reservationService) release(ctx context.Context, reservation *model.Reservation, reason, actor string) error {
	if reservation.State == model.ReservationCompleted {
		return apperror.NewBusinessRule("a completed reservation cannot be cancelled")
	}

	wasLive := reservation.State == model.ReservationPending || reservation.State == model.ReservationConfirmed

	reservation.State = model.ReservationCancelled
	reservation.IsActive = false
	if err := s.reservationRepo.Save(ctx, reservation); err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}

	if wasLive {
		if _, err := s.vehicles.ApplyStatusEvent(ctx, reservation.VehicleID, model.EventReservationReleased, actor); err != nil {
			return err
		}
	}

	return s.audit.Record(ctx, actor, model.ActionCancelReservation, "reservation", reservation.ID.String(), map[string]any{
		"vehicle_id": reservation.VehicleID.String(),
		"reason":     reason,
	})
}

func (s *reservationService) findReservation(ctx context.Context, id string) (*model.Reservation, error) {
	reservationID, err := parseID("reservation id", id)
	if err != nil {
		return nil, err
	}
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, apperror.NewNotFound("reservation", "id", id)
	}
	return reservation, nil
}

func toReservationResponse(r model.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID.String(),
		ClientID:        r.ClientID.String(),
		VehicleID:       r.VehicleID.String(),
		ReservationDate: fmtDate(r.ReservationDate),
		Deadline:        fmtDatePtr(r.Deadline),
		Price:           r.Price.StringFixed(2),
		Deposit:         fmtAmountPtr(r.Deposit),
		State:           r.State,
		Notes:           r.Notes,
		IsActive:        r.IsActive,
	}
}

func toReservationResponses(reservations []model.Reservation) []ReservationResponse {
	res := make([]ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		res = append(res, toReservationResponse(r))
	}
	return res
}
