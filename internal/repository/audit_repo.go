package repository

import (
	"context"

	"dealership/internal/model"

	"gorm.io/gorm"
)

type AuditRepository interface {
	Append(ctx context.Context, event *model.AuditEvent) error
	FindByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditEvent, error)
	List(ctx context.Context, page, limit int) ([]model.AuditEvent, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Append inserts one audit event. Events are never updated or deleted.
func (r *auditRepository) Append(ctx context.Context, event *model.AuditEvent) error {
	return GetDB(ctx, r.db).Create(event).Error
}

func (r *auditRepository) FindByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	err := GetDB(ctx, r.db).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at asc").
		Find(&events).Error
	return events, err
}

func (r *auditRepository) List(ctx context.Context, page, limit int) ([]model.AuditEvent, int64, error) {
	var events []model.AuditEvent
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.AuditEvent{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
