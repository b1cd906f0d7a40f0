package service

import (
	"context"
	"errors"

	"pharmaledger/internal/model"
	"pharmaledger/internal/repository"
	"pharmaledger/pkg/apperror"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone"`
	Password        string `json:"password" binding:"required,min=6"`
	Role            string `json:"role" binding:"required"`
	UnitID          string `json:"unit_id"`
	StakeholderID   string `json:"stakeholder_id"`
	StakeholderType string `json:"stakeholder_type"`
}

type UpdateUserRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email" binding:"omitempty,email"`
	Phone    string  `json:"phone"`
	IsActive *bool   `json:"is_active"`
	UnitID   *string `json:"unit_id"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID              string                  `json:"id"`
	Username        string                  `json:"username"`
	Email           string                  `json:"email"`
	Phone           string                  `json:"phone"`
	Role            string                  `json:"role"`
	UnitID          *string                 `json:"unit_id"`
	StakeholderID   *string                 `json:"stakeholder_id"`
	StakeholderType string                  `json:"stakeholder_type,omitempty"`
	IsActive        bool                    `json:"is_active"`
	Grants          []model.PermissionGrant `json:"grants"`
	CreatedAt       string                  `json:"created_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	repo            repository.UserRepository
	stakeholderRepo repository.StakeholderRepository
	unitRepo        repository.UnitRepository
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, stakeholderRepo repository.StakeholderRepository, unitRepo repository.UnitRepository) UserService {
	return &userService{repo: repo, stakeholderRepo: stakeholderRepo, unitRepo: unitRepo}
}

// Helper: parse model to standard json API response
func mapUser(user *model.User) *UserResponse {
	res := &UserResponse{
		ID:              user.ID.String(),
		Username:        user.Username,
		Email:           user.Email,
		Phone:           user.Phone,
		Role:            user.Role,
		StakeholderType: user.StakeholderType,
		IsActive:        user.IsActive,
		Grants:          user.Grants,
		CreatedAt:       user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if user.UnitID != nil {
		id := user.UnitID.String()
		res.UnitID = &id
	}
	if user.StakeholderID != nil {
		id := user.StakeholderID.String()
		res.StakeholderID = &id
	}
	return res
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if !model.ValidRole(req.Role) {
		return nil, apperror.Validation(apperror.FieldError{Field: "role", Message: "unknown role"})
	}

	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, apperror.Validation(apperror.FieldError{Field: "username", Message: "already exists"})
	}
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Validation(apperror.FieldError{Field: "email", Message: "already exists"})
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		IsActive: true,
		Grants:   model.DefaultGrants(req.Role),
	}

	// Unit-scoped roles must belong to an existing unit.
	switch req.Role {
	case model.RoleAdmin, model.RoleOperator:
		if req.UnitID == "" {
			return nil, apperror.Validation(apperror.FieldError{Field: "unit_id", Message: "required for unit-scoped roles"})
		}
		unitID, err := uuid.Parse(req.UnitID)
		if err != nil {
			return nil, apperror.Validation(apperror.FieldError{Field: "unit_id", Message: "must be a valid uuid"})
		}
		if _, err := s.unitRepo.FindByID(ctx, unitID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.Validation(apperror.FieldError{Field: "unit_id", Message: "unit does not exist"})
			}
			return nil, apperror.Internal(err)
		}
		user.UnitID = &unitID
	}

	// Stakeholder-linked roles must reference an existing stakeholder of
	// the matching type.
	switch req.Role {
	case model.RoleDoctor, model.RolePartner, model.RoleDistributor:
		expected := map[string]string{
			model.RoleDoctor:      model.StakeholderDoctor,
			model.RolePartner:     model.StakeholderBusinessPartner,
			model.RoleDistributor: model.StakeholderDistributor,
		}[req.Role]
		if req.StakeholderID == "" {
			return nil, apperror.Validation(apperror.FieldError{Field: "stakeholder_id", Message: "required for stakeholder-linked roles"})
		}
		stakeholderID, err := uuid.Parse(req.StakeholderID)
		if err != nil {
			return nil, apperror.Validation(apperror.FieldError{Field: "stakeholder_id", Message: "must be a valid uuid"})
		}
		exists, err := s.stakeholderRepo.Exists(ctx, expected, stakeholderID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if !exists {
			return nil, apperror.InvalidStakeholderReference(expected)
		}
		user.StakeholderID = &stakeholderID
		user.StakeholderType = expected
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	user.Password = string(hashedPassword)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}

	return mapUser(user), nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.From(err)
	}
	return mapUser(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapUser(&users[i]))
	}

	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.From(err)
	}

	if req.Username != "" && req.Username != user.Username {
		if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
			return nil, apperror.Validation(apperror.FieldError{Field: "username", Message: "already exists"})
		}
		user.Username = req.Username
	}

	if req.Email != "" && req.Email != user.Email {
		if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
			return nil, apperror.Validation(apperror.FieldError{Field: "email", Message: "already exists"})
		}
		user.Email = req.Email
	}

	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.UnitID != nil {
		if *req.UnitID == "" {
			user.UnitID = nil
		} else {
			unitID, parseErr := uuid.Parse(*req.UnitID)
			if parseErr != nil {
				return nil, apperror.Validation(apperror.FieldError{Field: "unit_id", Message: "must be a valid uuid"})
			}
			user.UnitID = &unitID
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperror.Internal(err)
	}

	return mapUser(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apperror.From(err)
	}
	return s.repo.Delete(ctx, id)
}
