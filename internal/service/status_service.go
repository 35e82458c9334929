package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"dealership/internal/model"
	"dealership/internal/repository"
	"dealership/pkg/apperror"
)

// --- DTOs ---

type CreateStatusRequest struct {
	Name         string `json:"name" binding:"required,max=20"`
	Description  string `json:"description" binding:"required,max=100"`
	DisplayOrder int    `json:"display_order"`
}

type UpdateStatusRequest struct {
	Description  string `json:"description" binding:"required,max=100"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active"`
}

type StatusResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

// --- Interface ---

// StatusService manages the vehicle status catalog. The four lifecycle rows
// are seeded at boot and their names are load-bearing for the transition
// table, so they can be described but never renamed.
type StatusService interface {
	GetStatuses(ctx context.Context, activeOnly bool) ([]StatusResponse, error)
	GetStatus(ctx context.Context, id string) (StatusResponse, error)
	CreateStatus(ctx context.Context, req CreateStatusRequest) (StatusResponse, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (StatusResponse, error)
	Seed(ctx context.Context) error
}

type statusService struct {
	statusRepo repository.StatusRepository
}

func NewStatusService(statusRepo repository.StatusRepository) StatusService {
	return &statusService{statusRepo: statusRepo}
}

// --- Implementation ---

func (s *statusService) GetStatuses(ctx context.Context, activeOnly bool) ([]StatusResponse, error) {
	statuses, err := s.statusRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}

	res := make([]StatusResponse, 0, len(statuses))
	for _, st := range statuses {
		res = append(res, toStatusResponse(st))
	}
	return res, nil
}

func (s *statusService) GetStatus(ctx context.Context, id string) (StatusResponse, error) {
	statusID, err := parseID("status id", id)
	if err != nil {
		return StatusResponse{}, err
	}

	status, err := s.statusRepo.FindByID(ctx, statusID)
	if err != nil {
		return StatusResponse{}, apperror.NewNotFound("status", "id", id)
	}
	return toStatusResponse(*status), nil
}

func (s *statusService) CreateStatus(ctx context.Context, req CreateStatusRequest) (StatusResponse, error) {
	exists, err := s.statusRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("failed to check status name: %w", err)
	}
	if exists {
		return StatusResponse{}, apperror.NewDuplicate("status", "name", req.Name)
	}

	status := &model.VehicleStatus{
		Name:         req.Name,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if err := s.statusRepo.Create(ctx, status); err != nil {
		return StatusResponse{}, fmt.Errorf("failed to create status: %w", err)
	}
	return toStatusResponse(*status), nil
}

func (s *statusService) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (StatusResponse, error) {
	statusID, err := parseID("status id", id)
	if err != nil {
		return StatusResponse{}, err
	}

	status, err := s.statusRepo.FindByID(ctx, statusID)
	if err != nil {
		return StatusResponse{}, apperror.NewNotFound("status", "id", id)
	}

	status.Description = req.Description
	status.DisplayOrder = req.DisplayOrder
	if req.IsActive != nil {
		if !*req.IsActive && isLifecycleStatus(status.Name) {
			return StatusResponse{}, apperror.NewBusinessRule("lifecycle status %s cannot be deactivated", status.Name)
		}
		status.IsActive = *req.IsActive
	}

	if err := s.statusRepo.Save(ctx, status); err != nil {
		return StatusResponse{}, fmt.Errorf("failed to update status: %w", err)
	}
	return toStatusResponse(*status), nil
}

// Seed inserts the lifecycle status rows missing from the catalog. Existing
// rows are left untouched so redeployments never overwrite descriptions.
func (s *statusService) Seed(ctx context.Context) error {
	for _, def := range model.DefaultStatuses {
		exists, err := s.statusRepo.ExistsByName(ctx, def.Name)
		if err != nil {
			return fmt.Errorf("failed to check status %s: %w", def.Name, err)
		}
		if exists {
			continue
		}

		status := def
		status.ID = uuid.Nil
		status.IsActive = true
		if err := s.statusRepo.Create(ctx, &status); err != nil {
			return fmt.Errorf("failed to seed status %s: %w", def.Name, err)
		}
		log.Printf("Seeded vehicle status %s", def.Name)
	}
	return nil
}

// --- Helpers ---

func isLifecycleStatus(name string) bool {
	switch name {
	case model.StatusAvailable, model.StatusInRental, model.StatusReserved, model.StatusSold:
		return true
	}
	return false
}

func toStatusResponse(st model.VehicleStatus) StatusResponse {
	return StatusResponse{
		ID:           st.ID.String(),
		Name:         st.Name,
		Description:  st.Description,
		DisplayOrder: st.DisplayOrder,
		IsActive:     st.IsActive,
	}
}
