package repository

import (
	"context"

	"pharmaledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StakeholderRepository defines the interface for data access of Stakeholder entities
type StakeholderRepository interface {
	Create(ctx context.Context, s *model.Stakeholder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Stakeholder, error)
	// Exists resolves a (type, id) reference against active stakeholders.
	Exists(ctx context.Context, stakeholderType string, id uuid.UUID) (bool, error)
	List(ctx context.Context, stakeholderType string, page, limit int) ([]model.Stakeholder, int64, error)
}

type stakeholderRepository struct {
	db *gorm.DB
}

func NewStakeholderRepository(db *gorm.DB) StakeholderRepository {
	return &stakeholderRepository{db: db}
}

func (r *stakeholderRepository) Create(ctx context.Context, s *model.Stakeholder) error {
	return GetDB(ctx, r.db).Create(s).Error
}

func (r *stakeholderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Stakeholder, error) {
	var s model.Stakeholder
	if err := GetDB(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *stakeholderRepository) Exists(ctx context.Context, stakeholderType string, id uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Stakeholder{}).
		Where("id = ? AND type = ? AND is_active = true", id, stakeholderType).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *stakeholderRepository) List(ctx context.Context, stakeholderType string, page, limit int) ([]model.Stakeholder, int64, error) {
	var stakeholders []model.Stakeholder
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Stakeholder{})
	if stakeholderType != "" {
		query = query.Where("type = ?", stakeholderType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Model(&model.Stakeholder{})
	if stakeholderType != "" {
		fetchQuery = fetchQuery.Where("type = ?", stakeholderType)
	}
	if err := fetchQuery.Order("name asc").Offset(offset).Limit(limit).Find(&stakeholders).Error; err != nil {
		return nil, 0, err
	}

	return stakeholders, total, nil
}
