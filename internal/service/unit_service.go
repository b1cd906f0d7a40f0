package service

import (
	"context"

	"pharmaledger/internal/model"
	"pharmaledger/internal/repository"
	"pharmaledger/pkg/apperror"

	"github.com/google/uuid"
)

type CreateUnitRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type UnitResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	IsActive bool   `json:"is_active"`
}

type UnitService interface {
	Create(ctx context.Context, req CreateUnitRequest) (*UnitResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*UnitResponse, error)
	List(ctx context.Context) ([]UnitResponse, error)
}

type unitService struct {
	repo repository.UnitRepository
}

func NewUnitService(repo repository.UnitRepository) UnitService {
	return &unitService{repo: repo}
}

func mapUnit(u *model.Unit) *UnitResponse {
	return &UnitResponse{
		ID:       u.ID.String(),
		Name:     u.Name,
		Address:  u.Address,
		Phone:    u.Phone,
		IsActive: u.IsActive,
	}
}

func (s *unitService) Create(ctx context.Context, req CreateUnitRequest) (*UnitResponse, error) {
	unit := &model.Unit{
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, unit); err != nil {
		return nil, apperror.Internal(err)
	}
	return mapUnit(unit), nil
}

func (s *unitService) GetByID(ctx context.Context, id uuid.UUID) (*UnitResponse, error) {
	unit, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.From(err)
	}
	return mapUnit(unit), nil
}

func (s *unitService) List(ctx context.Context) ([]UnitResponse, error) {
	units, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	responses := make([]UnitResponse, 0, len(units))
	for i := range units {
		responses = append(responses, *mapUnit(&units[i]))
	}
	return responses, nil
}
