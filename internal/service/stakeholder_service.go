package service

import (
	"context"

	"pharmaledger/internal/model"
	"pharmaledger/internal/repository"
	"pharmaledger/pkg/apperror"

	"github.com/google/uuid"
)

type CreateStakeholderRequest struct {
	Type  string `json:"type" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email" binding:"omitempty,email"`
}

type StakeholderResponse struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	IsActive bool   `json:"is_active"`
}

type StakeholderService interface {
	Create(ctx context.Context, req CreateStakeholderRequest) (*StakeholderResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*StakeholderResponse, error)
	List(ctx context.Context, stakeholderType string, page, limit int) ([]StakeholderResponse, int64, error)
}

type stakeholderService struct {
	repo repository.StakeholderRepository
}

func NewStakeholderService(repo repository.StakeholderRepository) StakeholderService {
	return &stakeholderService{repo: repo}
}

func mapStakeholder(s *model.Stakeholder) *StakeholderResponse {
	return &StakeholderResponse{
		ID:       s.ID.String(),
		Type:     s.Type,
		Name:     s.Name,
		Phone:    s.Phone,
		Email:    s.Email,
		IsActive: s.IsActive,
	}
}

func (s *stakeholderService) Create(ctx context.Context, req CreateStakeholderRequest) (*StakeholderResponse, error) {
	if !model.ValidStakeholderType(req.Type) {
		return nil, apperror.Validation(apperror.FieldError{Field: "type", Message: "unknown stakeholder type"})
	}

	stakeholder := &model.Stakeholder{
		Type:     req.Type,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, stakeholder); err != nil {
		return nil, apperror.Internal(err)
	}
	return mapStakeholder(stakeholder), nil
}

func (s *stakeholderService) GetByID(ctx context.Context, id uuid.UUID) (*StakeholderResponse, error) {
	stakeholder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.From(err)
	}
	return mapStakeholder(stakeholder), nil
}

func (s *stakeholderService) List(ctx context.Context, stakeholderType string, page, limit int) ([]StakeholderResponse, int64, error) {
	if stakeholderType != "" && !model.ValidStakeholderType(stakeholderType) {
		return nil, 0, apperror.Validation(apperror.FieldError{Field: "type", Message: "unknown stakeholder type"})
	}

	stakeholders, total, err := s.repo.List(ctx, stakeholderType, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}

	responses := make([]StakeholderResponse, 0, len(stakeholders))
	for i := range stakeholders {
		responses = append(responses, *mapStakeholder(&stakeholders[i]))
	}
	return responses, total, nil
}
