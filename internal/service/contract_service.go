package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"dealership/internal/model"
	"dealership/internal/repository"
	"dealership/pkg/apperror"
	"dealership/pkg/dateutil"
)

// --- DTOs ---

type CreateContractRequest struct {
	ClientID    string `json:"client_id" binding:"required,uuid"`
	VehicleID   string `json:"vehicle_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate     string `json:"end_date" binding:"required"`   // YYYY-MM-DD
	MonthlyFee  string `json:"monthly_fee" binding:"required"`
	IncludedKm  int    `json:"included_km"`
	ExtraKmCost string `json:"extra_km_cost"`
	Notes       string `json:"notes"`
}

type UpdateContractRequest struct {
	ClientID    string `json:"client_id" binding:"required,uuid"`
	VehicleID   string `json:"vehicle_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	MonthlyFee  string `json:"monthly_fee" binding:"required"`
	IncludedKm  int    `json:"included_km"`
	ExtraKmCost string `json:"extra_km_cost"`
	Notes       string `json:"notes"`
}

type ContractResponse struct {
	ID             string                `json:"id"`
	ContractNumber string                `json:"contract_number"`
	ClientID       string                `json:"client_id"`
	VehicleID      string                `json:"vehicle_id"`
	StartDate      string                `json:"start_date"`
	EndDate        string                `json:"end_date"`
	DurationMonths int                   `json:"duration_months"`
	MonthlyFee     string                `json:"monthly_fee"`
	TotalAmount    string                `json:"total_amount"`
	IncludedKm     int                   `json:"included_km"`
	ExtraKmCost    string                `json:"extra_km_cost"`
	State          string                `json:"state"`
	Notes          string                `json:"notes"`
	Installments   []InstallmentResponse `json:"installments,omitempty"`
}

// --- Interface ---

// ContractService runs the rental engine. A contract is created PENDING with
// its full installment schedule and takes the vehicle into rental on creation.
// It leaves through exactly one of finalize or cancel, which returns the
// vehicle to the fleet.
type ContractService interface {
	CreateContract(ctx context.Context, req CreateContractRequest, actor string) (ContractResponse, error)
	UpdateContract(ctx context.Context, id string, req UpdateContractRequest, actor string) (ContractResponse, error)
	ActivateContract(ctx context.Context, id string, actor string) (ContractResponse, error)
	FinalizeContract(ctx context.Context, id string, actor string) (ContractResponse, error)
	CancelContract(ctx context.Context, id string, reason string, actor string) (ContractResponse, error)
	GetContract(ctx context.Context, id string) (ContractResponse, error)
	GetContractByNumber(ctx context.Context, number string) (ContractResponse, error)
	ListByClient(ctx context.Context, clientID string) ([]ContractResponse, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]ContractResponse, error)
	ListByState(ctx context.Context, state string) ([]ContractResponse, error)
	ExpiringWithin(ctx context.Context, days int) ([]ContractResponse, error)
}

type contractService struct {
	contractRepo    repository.ContractRepository
	installmentRepo repository.InstallmentRepository
	clientRepo      repository.ClientRepository
	vehicleRepo     repository.VehicleRepository
	vehicles        VehicleService
	audit           AuditService
	txManager       repository.TransactionManager
}

func NewContractService(
	contractRepo repository.ContractRepository,
	installmentRepo repository.InstallmentRepository,
	clientRepo repository.ClientRepository,
	vehicleRepo repository.VehicleRepository,
	vehicles VehicleService,
	audit AuditService,
	txManager repository.TransactionManager,
) ContractService {
	return &contractService{
		contractRepo:    contractRepo,
		installmentRepo: installmentRepo,
		clientRepo:      clientRepo,
		vehicleRepo:     vehicleRepo,
		vehicles:        vehicles,
		audit:           audit,
		txManager:       txManager,
	}
}

// --- Implementation ---

func (s *contractService) CreateContract(ctx context.Context, req CreateContractRequest, actor string) (ContractResponse, error) {
	clientID, err := parseID("client_id", req.ClientID)
	if err != nil {
		return ContractResponse{}, err
	}
	vehicleID, err := parseID("vehicle_id", req.VehicleID)
	if err != nil {
		return ContractResponse{}, err
	}
	terms, err := parseContractTerms(req.StartDate, req.EndDate, req.MonthlyFee, req.ExtraKmCost)
	if err != nil {
		return ContractResponse{}, err
	}
	if req.IncludedKm < 0 {
		return ContractResponse{}, apperror.NewBusinessRule("included_km cannot be negative")
	}

	var contract *model.RentalContract
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
		if !vehicle.IsRentable() {
			return apperror.NewBusinessRule(
				"vehicle %s is not rentable: status %s, purchased %t, sold %t",
				vehicle.Plate, vehicle.StatusName(), vehicle.PurchaseInvoice != nil, vehicle.IsSold())
		}

		live, err := s.contractRepo.ExistsLiveByVehicle(txCtx, vehicleID)
		if err != nil {
			return fmt.Errorf("failed to check live contracts: %w", err)
		}
		if live {
			return apperror.NewDuplicate("rental contract", "vehicle_id", req.VehicleID)
		}

		number, err := s.generateContractNumber(txCtx)
		if err != nil {
			return err
		}

		contract = &model.RentalContract{
			ContractNumber: number,
			ClientID:       clientID,
			VehicleID:      vehicleID,
			StartDate:      terms.start,
			EndDate:        terms.end,
			DurationMonths: terms.duration,
			MonthlyFee:     terms.fee,
			IncludedKm:     req.IncludedKm,
			ExtraKmCost:    terms.extraKm,
			State:          model.ContractPending,
			Notes:          req.Notes,
			IsActive:       true,
			Installments:   buildSchedule(terms.start, terms.duration, terms.fee),
		}
		if err := s.contractRepo.Create(txCtx, contract); err != nil {
			return fmt.Errorf("failed to create contract: %w", err)
		}

		if _, err := s.vehicles.ApplyStatusEvent(txCtx, vehicleID, model.EventRentalStarted, actor); err != nil {
			return err
		}

		return s.audit.Record(txCtx, actor, model.ActionCreateContract, "contract", contract.ID.String(), map[string]any{
			"contract_number": number,
			"vehicle_id":      req.VehicleID,
			"client_id":       req.ClientID,
			"duration_months": terms.duration,
			"monthly_fee":     terms.fee.StringFixed(2),
		})
	})
	if err != nil {
		return ContractResponse{}, err
	}
	return toContractResponse(*contract), nil
}

func (s *contractService) UpdateContract(ctx context.Context, id string, req UpdateContractRequest, actor string) (ContractResponse, error) {
	clientID, err := parseID("client_id", req.ClientID)
	if err != nil {
		return ContractResponse{}, err
	}
	vehicleID, err := parseID("vehicle_id", req.VehicleID)
	if err != nil {
		return ContractResponse{}, err
	}
	terms, err := parseContractTerms(req.StartDate, req.EndDate, req.MonthlyFee, req.ExtraKmCost)
	if err != nil {
		return ContractResponse{}, err
	}
	if req.IncludedKm < 0 {
		return ContractResponse{}, apperror.NewBusinessRule("included_km cannot be negative")
	}

	var contract *model.RentalContract
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		contract, err = s.findContract(txCtx, id)
		if err != nil {
			return err
		}

		termsChanged := !contract.StartDate.Equal(terms.start) ||
			!contract.EndDate.Equal(terms.end) ||
			!contract.MonthlyFee.Equal(terms.fee)
		clientChanged := contract.ClientID != clientID
		vehicleChanged := contract.VehicleID != vehicleID
		if (termsChanged || clientChanged || vehicleChanged) && contract.State != model.ContractPending {
			return apperror.NewInvalidOperation(
				"contract %s is %s: client, vehicle, dates and fee are frozen after activation",
				contract.ContractNumber, contract.State)
		}

		if clientChanged {
			client, err := s.clientRepo.FindByID(txCtx, clientID)
			if err != nil {
				return apperror.NewNotFound("client", "id", req.ClientID)
			}
			if !client.IsActive {
				return apperror.NewBusinessRule("client %s is deactivated", client.Document)
			}
			contract.ClientID = clientID
		}

		if vehicleChanged {
			vehicle, err := s.vehicleRepo.FindByID(txCtx, vehicleID)
			if err != nil {
				return apperror.NewNotFound("vehicle", "id", req.VehicleID)
			}
			if !vehicle.IsRentable() {
				return apperror.NewBusinessRule(
					"vehicle %s is not rentable: status %s, purchased %t, sold %t",
					vehicle.Plate, vehicle.StatusName(), vehicle.PurchaseInvoice != nil, vehicle.IsSold())
			}
			// Return the previous vehicle to the fleet before taking the new one.
			if _, err := s.vehicles.ApplyStatusEvent(txCtx, contract.VehicleID, model.EventRentalEnded, actor); err != nil {
				return err
			}
			if _, err := s.vehicles.ApplyStatusEvent(txCtx, vehicleID, model.EventRentalStarted, actor); err != nil {
				return err
			}
			contract.VehicleID = vehicleID
		}

		contract.IncludedKm = req.IncludedKm
		contract.ExtraKmCost = terms.extraKm
		contract.Notes = req.Notes

		if termsChanged {
			contract.StartDate = terms.start
			contract.EndDate = terms.end
			contract.DurationMonths = terms.duration
			contract.MonthlyFee = terms.fee

			if err := s.contractRepo.DeleteInstallments(txCtx, contract.ID); err != nil {
				return fmt.Errorf("failed to drop schedule: %w", err)
			}
			schedule := buildSchedule(terms.start, terms.duration, terms.fee)
			for i := range schedule {
				schedule[i].ContractID = contract.ID
			}
			if err := s.installmentRepo.SaveAll(txCtx, schedule); err != nil {
				return fmt.Errorf("failed to regenerate schedule: %w", err)
			}
			contract.Installments = schedule
		}

		return s.contractRepo.Save(txCtx, contract)
	})
	if err != nil {
		return ContractResponse{}, err
	}
	return toContractResponse(*contract), nil
}

func (s *contractService) ActivateContract(ctx context.Context, id string, actor string) (ContractResponse, error) {
	var contract *model.RentalContract
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		contract, err = s.findContract(txCtx, id)
		if err != nil {
			return err
		}
		if contract.State != model.ContractPending {
			return apperror.NewInvalidOperation(
				"contract %s cannot be activated from state %s", contract.ContractNumber, contract.State)
		}

		// The vehicle went into rental when the contract was created.
		contract.State = model.ContractActive
		if err := s.contractRepo.Save(txCtx, contract); err != nil {
			return fmt.Errorf("failed to activate contract: %w", err)
		}

		return s.audit.Record(txCtx, actor, model.ActionActivateContract, "contract", contract.ID.String(), map[string]any{
			"contract_number": contract.ContractNumber,
		})
	})
	if err != nil {
		return ContractResponse{}, err
	}
	return toContractResponse(*contract), nil
}

func (s *contractService) FinalizeContract(ctx context.Context, id string, actor string) (ContractResponse, error) {
	var contract *model.RentalContract
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		contract, err = s.findContract(txCtx, id)
		if err != nil {
			return err
		}
		if contract.State != model.ContractActive {
			return apperror.NewInvalidOperation(
				"contract %s cannot be finalized from state %s", contract.ContractNumber, contract.State)
		}

		if _, err := s.vehicles.ApplyStatusEvent(txCtx, contract.VehicleID, model.EventRentalEnded, actor); err != nil {
			return err
		}

		contract.State = model.ContractFinished
		if err := s.contractRepo.Save(txCtx, contract); err != nil {
			return fmt.Errorf("failed to finalize contract: %w", err)
		}

		return s.audit.Record(txCtx, actor, model.ActionFinalizeContract, "contract", contract.ID.String(), map[string]any{
			"contract_number": contract.ContractNumber,
		})
	})
	if err != nil {
		return ContractResponse{}, err
	}
	return toContractResponse(*contract), nil
}

func (s *contractService) CancelContract(ctx context.Context, id string, reason string, actor string) (ContractResponse, error) {
	if reason == "" {
		return ContractResponse{}, apperror.NewBusinessRule("a cancellation reason is required")
	}

	var contract *model.RentalContract
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		contract, err = s.findContract(txCtx, id)
		if err != nil {
			return err
		}
		if contract.State == model.ContractFinished {
			return apperror.NewBusinessRule(
				"contract %s is finished and cannot be cancelled", contract.ContractNumber)
		}

		// A pending or active contract still holds the vehicle. Cancelling an
		// already cancelled contract only appends another audit entry.
		if contract.State != model.ContractCancelled {
			if _, err := s.vehicles.ApplyStatusEvent(txCtx, contract.VehicleID, model.EventRentalEnded, actor); err != nil {
				return err
			}
		}

		for i := range contract.Installments {
			inst := &contract.Installments[i]
			if inst.State == model.InstallmentPending || inst.State == model.InstallmentOverdue {
				inst.State = model.InstallmentCancelled
				if err := s.installmentRepo.Save(txCtx, inst); err != nil {
					return fmt.Errorf("failed to cancel installment %d: %w", inst.Number, err)
				}
			}
		}

		contract.State = model.ContractCancelled
		if err := s.contractRepo.Save(txCtx, contract); err != nil {
			return fmt.Errorf("failed to cancel contract: %w", err)
		}

		return s.audit.Record(txCtx, actor, model.ActionCancelContract, "contract", contract.ID.String(), map[string]any{
			"contract_number": contract.ContractNumber,
			"reason":          reason,
		})
	})
	if err != nil {
		return ContractResponse{}, err
	}
	return toContractResponse(*contract), nil
}

func (s *contractService) GetContract(ctx context.Context, id string) (ContractResponse, error) {
	contract, err := s.findContract(ctx, id)
	if err != nil {
		return ContractResponse{}, err
	}
	return toContractResponse(*contract), nil
}

func (s *contractService) GetContractByNumber(ctx context.Context, number string) (ContractResponse, error) {
	contract, err := s.contractRepo.FindByNumber(ctx, number)
	if err != nil {
		return ContractResponse{}, apperror.NewNotFound("contract", "number", number)
	}
	return toContractResponse(*contract), nil
}

func (s *contractService) ListByClient(ctx context.Context, clientID string) ([]ContractResponse, error) {
	id, err := parseID("client_id", clientID)
	if err != nil {
		return nil, err
	}
	contracts, err := s.contractRepo.FindByClient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return toContractResponses(contracts), nil
}

func (s *contractService) ListByVehicle(ctx context.Context, vehicleID string) ([]ContractResponse, error) {
	id, err := parseID("vehicle_id", vehicleID)
	if err != nil {
		return nil, err
	}
	contracts, err := s.contractRepo.FindByVehicle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return toContractResponses(contracts), nil
}

func (s *contractService) ListByState(ctx context.Context, state string) ([]ContractResponse, error) {
	switch state {
	case model.ContractPending, model.ContractActive, model.ContractFinished, model.ContractCancelled:
	default:
		return nil, apperror.NewBusinessRule("unknown contract state %q", state)
	}
	contracts, err := s.contractRepo.FindByState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return toContractResponses(contracts), nil
}

func (s *contractService) ExpiringWithin(ctx context.Context, days int) ([]ContractResponse, error) {
	if days < 0 {
		return nil, apperror.NewBusinessRule("days cannot be negative")
	}
	limit := today().AddDate(0, 0, days+1)
	contracts, err := s.contractRepo.FindExpiringBefore(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring contracts: %w", err)
	}
	return toContractResponses(contracts), nil
}

// --- Helpers ---

type contractTerms struct {
	start    time.Time
	end      time.Time
	duration int
	fee      decimal.Decimal
	extraKm  decimal.Decimal
}

func parseContractTerms(startDate, endDate, monthlyFee, extraKmCost string) (contractTerms, error) {
	start, err := parseDate("start_date", startDate)
	if err != nil {
		return contractTerms{}, err
	}
	end, err := parseDate("end_date", endDate)
	if err != nil {
		return contractTerms{}, err
	}
	if !end.After(start) {
		return contractTerms{}, apperror.NewBusinessRule("end_date must be after start_date")
	}

	duration := dateutil.MonthsBetween(start, end)
	if duration < 1 {
		return contractTerms{}, apperror.NewBusinessRule("contract must span at least one whole month")
	}

	fee, err := parseAmount("monthly_fee", monthlyFee)
	if err != nil {
		return contractTerms{}, err
	}
	if !fee.IsPositive() {
		return contractTerms{}, apperror.NewBusinessRule("monthly_fee must be positive")
	}

	extraKm, err := parseOptionalAmount("extra_km_cost", extraKmCost)
	if err != nil {
		return contractTerms{}, err
	}
	if extraKm.IsNegative() {
		return contractTerms{}, apperror.NewBusinessRule("extra_km_cost cannot be negative")
	}

	return contractTerms{
		start:    start,
		end:      end,
		duration: duration,
		fee:      fee.Round(2),
		extraKm:  extraKm,
	}, nil
}

// buildSchedule generates one installment per month of duration. Due dates
// land on the start date's day, clamped to shorter months.
func buildSchedule(start time.Time, duration int, fee decimal.Decimal) []model.Installment {
	schedule := make([]model.Installment, 0, duration)
	for i := 1; i <= duration; i++ {
		schedule = append(schedule, model.Installment{
			Number:   i,
			DueDate:  dateutil.AddMonths(start, i),
			Amount:   fee,
			State:    model.InstallmentPending,
			IsActive: true,
		})
	}
	return schedule
}

// generateContractNumber yields RENT-{year}-{seq} where seq runs over all
// contracts ever created, not per year.
func (s *contractService) generateContractNumber(ctx context.Context) (string, error) {
	if err := s.contractRepo.LockNumberSequence(ctx, "rental_contract_number"); err != nil {
		return "", fmt.Errorf("failed to lock number sequence: %w", err)
	}
	count, err := s.contractRepo.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to count contracts: %w", err)
	}
	return fmt.Sprintf("RENT-%d-%04d", time.Now().Year(), count+1), nil
}

func (s *contractService) findContract(ctx context.Context, id string) (*model.RentalContract, error) {
	contractID, err := parseID("contract id", id)
	if err != nil {
		return nil, err
	}
	contract, err := s.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return nil, apperror.NewNotFound("contract", "id", id)
	}
	return contract, nil
}

func toContractResponse(c model.RentalContract) ContractResponse {
	total := c.MonthlyFee.Mul(decimal.NewFromInt(int64(c.DurationMonths))).Round(2)
	res := ContractResponse{
		ID:             c.ID.String(),
		ContractNumber: c.ContractNumber,
		ClientID:       c.ClientID.String(),
		VehicleID:      c.VehicleID.String(),
		StartDate:      fmtDate(c.StartDate),
		EndDate:        fmtDate(c.EndDate),
		DurationMonths: c.DurationMonths,
		MonthlyFee:     c.MonthlyFee.StringFixed(2),
		TotalAmount:    total.StringFixed(2),
		IncludedKm:     c.IncludedKm,
		ExtraKmCost:    c.ExtraKmCost.String(),
		State:          c.State,
		Notes:          c.Notes,
	}
	for _, inst := range c.Installments {
		res.Installments = append(res.Installments, toInstallmentResponse(inst))
	}
	return res
}

func toContractResponses(contracts []model.RentalContract) []ContractResponse {
	res := make([]ContractResponse, 0, len(contracts))
	for _, c := range contracts {
		res = append(res, toContractResponse(c))
	}
	return res
}
