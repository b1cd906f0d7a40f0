package auth

import (
	"context"
	"errors"

	"pharmaledger/internal/model"
	"pharmaledger/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserDirectory looks up a user record (with its grants) by id.
type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Gate turns a bearer credential into a Principal. It is the first guard in
// the request pipeline; every failure short-circuits the request.
type Gate struct {
	secret []byte
	users  UserDirectory
}

func NewGate(secret []byte, users UserDirectory) *Gate {
	return &Gate{secret: secret, users: users}
}

// Resolve verifies the raw token, loads the subject from the directory, and
// returns a fully populated Principal.
func (g *Gate) Resolve(ctx context.Context, rawToken string) (*Principal, error) {
	if rawToken == "" {
		return nil, apperror.ErrUnauthenticated
	}

	token, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperror.ErrInvalidCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperror.ErrInvalidCredential
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apperror.ErrInvalidCredential
	}

	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ErrInvalidCredential
		}
		return nil, apperror.Internal(err)
	}

	if !user.IsActive {
		return nil, apperror.ErrInactiveUser
	}

	return FromUser(user), nil
}
