package service

import (
	"context"
	"errors"
	"time"

	"pharmaledger/internal/auth"
	"pharmaledger/internal/model"
	"pharmaledger/internal/repository"
	"pharmaledger/pkg/apperror"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// RefreshTokenTTL is how long refresh tokens stay valid.
const RefreshTokenTTL = 7 * 24 * time.Hour

// --- DTOs ---

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type MeResponse struct {
	ID              string                  `json:"id"`
	Username        string                  `json:"username"`
	Role            string                  `json:"role"`
	UnitID          *string                 `json:"unit_id"`
	StakeholderID   *string                 `json:"stakeholder_id"`
	StakeholderType string                  `json:"stakeholder_type,omitempty"`
	Grants          []model.PermissionGrant `json:"grants"`
}

// --- Interface ---

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(p *auth.Principal) *MeResponse
}

type authService struct {
	userRepo    repository.UserRepository
	refreshRepo repository.RefreshTokenRepository
	secret      []byte
}

func NewAuthService(userRepo repository.UserRepository, refreshRepo repository.RefreshTokenRepository, secret []byte) AuthService {
	return &authService{userRepo: userRepo, refreshRepo: refreshRepo, secret: secret}
}

// --- Implementation ---

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*TokenResponse, error) {
	accessToken, err := auth.IssueAccessToken(s.secret, user)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(RefreshTokenTTL),
	}
	if err := s.refreshRepo.Create(ctx, refresh); err != nil {
		return nil, apperror.Internal(err)
	}

	return &TokenResponse{Token: accessToken, RefreshToken: refresh.Token}, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ErrInvalidCredential
		}
		return nil, apperror.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.ErrInvalidCredential
	}

	if !user.IsActive {
		return nil, apperror.ErrInactiveUser
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates the presented refresh token and issues a new access token.
func (s *authService) Refresh(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	if req.RefreshToken == "" {
		return nil, apperror.ErrUnauthenticated
	}

	stored, err := s.refreshRepo.FindByToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ErrInvalidCredential
		}
		return nil, apperror.Internal(err)
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = s.refreshRepo.Delete(ctx, stored.Token)
		return nil, apperror.ErrInvalidCredential
	}

	user, err := s.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ErrInvalidCredential
		}
		return nil, apperror.Internal(err)
	}

	if !user.IsActive {
		return nil, apperror.ErrInactiveUser
	}

	if err := s.refreshRepo.Delete(ctx, stored.Token); err != nil {
		return nil, apperror.Internal(err)
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.refreshRepo.Delete(ctx, refreshToken)
}

func (s *authService) Me(p *auth.Principal) *MeResponse {
	res := &MeResponse{
		ID:              p.UserID.String(),
		Username:        p.Username,
		Role:            p.Role,
		StakeholderType: p.StakeholderType,
		Grants:          p.Grants,
	}
	if p.UnitID != nil {
		id := p.UnitID.String()
		res.UnitID = &id
	}
	if p.StakeholderID != nil {
		id := p.StakeholderID.String()
		res.StakeholderID = &id
	}
	return res
}
