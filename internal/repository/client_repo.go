package repository

import (
	"context"

	"dealership/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	Save(ctx context.Context, client *model.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	FindByDocument(ctx context.Context, document string) (*model.Client, error)
	List(ctx context.Context, page, limit int) ([]model.Client, int64, error)
	ExistsByDocument(ctx context.Context, document string, excludeID uuid.UUID) (bool, error)
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Create(client).Error
}

func (r *clientRepository) Save(ctx context.Context, client *model.Client) error {
	return GetDB(ctx, r.db).Save(client).Error
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) FindByDocument(ctx context.Context, document string) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).First(&client, "document = ?", document).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, page, limit int) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Client{}).Where("is_active = ?", true).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Where("is_active = ?", true).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *clientRepository) ExistsByDocument(ctx context.Context, document string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := GetDB(ctx, r.db).Model(&model.Client{}).Where("document = ?", document)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}
