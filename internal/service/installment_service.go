package service

import (
	"context"
	"fmt"

	"dealership/internal/model"
	"dealership/internal/repository"
	"dealership/pkg/apperror"
)

// --- DTOs ---

type PayInstallmentRequest struct {
	PaymentDate string `json:"payment_date"` // YYYY-MM-DD, defaults to today
	Notes       string `json:"notes"`
}

type InstallmentResponse struct {
	ID          string  `json:"id"`
	ContractID  string  `json:"contract_id"`
	Number      int     `json:"number"`
	DueDate     string  `json:"due_date"`
	PaymentDate *string `json:"payment_date"`
	Amount      string  `json:"amount"`
	State       string  `json:"state"`
	Notes       string  `json:"notes,omitempty"`
}

type SweepResult struct {
	Flagged int `json:"flagged"`
}

// --- Interface ---

// InstallmentService settles the rows of a contract's payment schedule. The
// overdue sweep is triggered externally; there is no internal timer.
type InstallmentService interface {
	MarkPaid(ctx context.Context, id string, req PayInstallmentRequest, actor string) (InstallmentResponse, error)
	MarkOverdue(ctx context.Context, id string, actor string) (InstallmentResponse, error)
	OverdueSweep(ctx context.Context, actor string) (SweepResult, error)
	ListByContract(ctx context.Context, contractID string) ([]InstallmentResponse, error)
	ListByState(ctx context.Context, state string) ([]InstallmentResponse, error)
	DueWithin(ctx context.Context, days int) ([]InstallmentResponse, error)
}

type installmentService struct {
	installmentRepo repository.InstallmentRepository
	audit           AuditService
	txManager       repository.TransactionManager
}

func NewInstallmentService(
	installmentRepo repository.InstallmentRepository,
	audit AuditService,
	txManager repository.TransactionManager,
) InstallmentService {
	return &installmentService{
		installmentRepo: installmentRepo,
		audit:           audit,
		txManager:       txManager,
	}
}

// --- Implementation ---

func (s *installmentService) MarkPaid(ctx context.Context, id string, req PayInstallmentRequest, actor string) (InstallmentResponse, error) {
	paymentDate, err := parseOptionalDate("payment_date", req.PaymentDate)
	if err != nil {
		return InstallmentResponse{}, err
	}
	if paymentDate == nil {
		t := today()
		paymentDate = &t
	}

	var inst *model.Installment
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		inst, err = s.findInstallment(txCtx, id)
		if err != nil {
			return err
		}
		if inst.State != model.InstallmentPending && inst.State != model.InstallmentOverdue {
			return apperror.NewBusinessRule(
				"installment %d is %s and cannot be paid", inst.Number, inst.State)
		}
		inst.State = model.InstallmentPaid
		inst.PaymentDate = paymentDate
		if req.Notes != "" {
			inst.Notes = req.Notes
		}
		if err := s.installmentRepo.Save(txCtx, inst); err != nil {
			return fmt.Errorf("failed to pay installment: %w", err)
		}

		return s.audit.Record(txCtx, actor, model.ActionPayInstallment, "installment", inst.ID.String(), map[string]any{
			"contract_id":  inst.ContractID.String(),
			"number":       inst.Number,
			"amount":       inst.Amount.StringFixed(2),
			"payment_date": fmtDate(*paymentDate),
		})
	})
	if err != nil {
		return InstallmentResponse{}, err
	}
	return toInstallmentResponse(*inst), nil
}

func (s *installmentService) MarkOverdue(ctx context.Context, id string, actor string) (InstallmentResponse, error) {
	var inst *model.Installment
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		inst, err = s.findInstallment(txCtx, id)
		if err != nil {
			return err
		}
		if !inst.IsOverdue(today()) {
			return apperror.NewBusinessRule(
				"installment %d is not overdue: state %s, due %s", inst.Number, inst.State, fmtDate(inst.DueDate))
		}
		return s.flagOverdue(txCtx, inst, actor)
	})
	if err != nil {
		return InstallmentResponse{}, err
	}
	return toInstallmentResponse(*inst), nil
}

// OverdueSweep flags every pending installment past its due date. Partial
// progress is rolled back on error so reruns stay idempotent.
func (s *installmentService) OverdueSweep(ctx context.Context, actor string) (SweepResult, error) {
	var flagged int
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		late, err := s.installmentRepo.FindOverdue(txCtx, today())
		if err != nil {
			return fmt.Errorf("failed to find overdue installments: %w", err)
		}
		for i := range late {
			if err := s.flagOverdue(txCtx, &late[i], actor); err != nil {
				return err
			}
			flagged++
		}
		return nil
	})
	if err != nil {
		return SweepResult{}, err
	}
	return SweepResult{Flagged: flagged}, nil
}

func (s *installmentService) ListByContract(ctx context.Context, contractID string) ([]InstallmentResponse, error) {
	id, err := parseID("contract_id", contractID)
	if err != nil {
		return nil, err
	}
	installments, err := s.installmentRepo.FindByContract(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	return toInstallmentResponses(installments), nil
}

func (s *installmentService) ListByState(ctx context.Context, state string) ([]InstallmentResponse, error) {
	switch state {
	case model.InstallmentPending, model.InstallmentPaid, model.InstallmentOverdue, model.InstallmentCancelled:
	default:
		return nil, apperror.NewBusinessRule("unknown installment state %q", state)
	}
	installments, err := s.installmentRepo.FindByState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	return toInstallmentResponses(installments), nil
}

func (s *installmentService) DueWithin(ctx context.Context, days int) ([]InstallmentResponse, error) {
	if days < 0 {
		return nil, apperror.NewBusinessRule("days cannot be negative")
	}
	limit := today().AddDate(0, 0, days+1)
	installments, err := s.installmentRepo.FindDueBefore(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due installments: %w", err)
	}
	return toInstallmentResponses(installments), nil
}

// --- Helpers ---

func (s *installmentService) flagOverdue(ctx context.Context, inst *model.Installment, actor string) error {
	inst.State = model.InstallmentOverdue
	if err := s.installmentRepo.Save(ctx, inst); err != nil {
		return fmt.Errorf("failed to flag installment %d: %w", inst.Number, err)
	}
	return s.audit.Record(ctx, actor, model.ActionInstallmentLate, "installment", inst.ID.String(), map[string]any{
		"contract_id": inst.ContractID.String(),
		"number":      inst.Number,
		"due_date":    fmtDate(inst.DueDate),
	})
}

func (s *installmentService) findInstallment(ctx context.Context, id string) (*model.Installment, error) {
	instID, err := parseID("installment id", id)
	if err != nil {
		return nil, err
	}
	inst, err := s.installmentRepo.FindByID(ctx, instID)
	if err != nil {
		return nil, apperror.NewNotFound("installment", "id", id)
	}
	return inst, nil
}

func toInstallmentResponse(i model.Installment) InstallmentResponse {
	return InstallmentResponse{
		ID:          i.ID.String(),
		ContractID:  i.ContractID.String(),
		Number:      i.Number,
		DueDate:     fmtDate(i.DueDate),
		PaymentDate: fmtDatePtr(i.PaymentDate),
		Amount:      i.Amount.StringFixed(2),
		State:       i.State,
		Notes:       i.Notes,
	}
}

func toInstallmentResponses(installments []model.Installment) []InstallmentResponse {
	res := make([]InstallmentResponse, 0, len(installments))
	for _, i := range installments {
		res = append(res, toInstallmentResponse(i))
	}
	return res
}
