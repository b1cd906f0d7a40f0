package repository

import (
	"context"

	"pharmaledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnitRepository defines the interface for data access of Unit entities
type UnitRepository interface {
	Create(ctx context.Context, unit *model.Unit) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Unit, error)
	List(ctx context.Context) ([]model.Unit, error)
}

type unitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) Create(ctx context.Context, unit *model.Unit) error {
	return GetDB(ctx, r.db).Create(unit).Error
}

func (r *unitRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	var unit model.Unit
	if err := GetDB(ctx, r.db).First(&unit, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &unit, nil
}

func (r *unitRepository) List(ctx context.Context) ([]model.Unit, error) {
	var units []model.Unit
	if err := GetDB(ctx, r.db).Order("name asc").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}
