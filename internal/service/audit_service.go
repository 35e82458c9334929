package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"dealership/internal/model"
	"dealership/internal/repository"
)

// --- DTOs ---

type AuditEventResponse struct {
	ID         string         `json:"id"`
	Actor      string         `json:"actor"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Details    map[string]any `json:"details"`
	CreatedAt  string         `json:"created_at"`
}

// --- Interface ---

// AuditService appends entries to the audit trail and serves them back. The
// trail is append-only: there is no update or delete path.
type AuditService interface {
	Record(ctx context.Context, actor, action, entityType, entityID string, details map[string]any) error
	HistoryForEntity(ctx context.Context, entityType, entityID string) ([]AuditEventResponse, error)
	List(ctx context.Context, page, limit int) ([]AuditEventResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// --- Implementation ---

func (s *auditService) Record(ctx context.Context, actor, action, entityType, entityID string, details map[string]any) error {
	payload := ""
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to serialize audit details: %w", err)
		}
		payload = string(raw)
	}

	event := &model.AuditEvent{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    payload,
	}
	if err := s.auditRepo.Append(ctx, event); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}

func (s *auditService) HistoryForEntity(ctx context.Context, entityType, entityID string) ([]AuditEventResponse, error) {
	events, err := s.auditRepo.FindByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audit history: %w", err)
	}

	res := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		res = append(res, toAuditEventResponse(e))
	}
	return res, nil
}

func (s *auditService) List(ctx context.Context, page, limit int) ([]AuditEventResponse, int64, error) {
	events, total, err := s.auditRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit events: %w", err)
	}

	res := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		res = append(res, toAuditEventResponse(e))
	}
	return res, total, nil
}

// --- Helpers ---

func toAuditEventResponse(e model.AuditEvent) AuditEventResponse {
	var details map[string]any
	if e.Details != "" {
		if err := json.Unmarshal([]byte(e.Details), &details); err != nil {
			log.Printf("audit: unreadable details on event %s: %v", e.ID, err)
		}
	}
	return AuditEventResponse{
		ID:         e.ID.String(),
		Actor:      e.Actor,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    details,
		CreatedAt:  e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
