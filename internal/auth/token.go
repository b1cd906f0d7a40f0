package auth

import (
	"time"

	"pharmaledger/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenTTL is how long issued access tokens stay valid.
const AccessTokenTTL = 24 * time.Hour

// IssueAccessToken signs an HS256 access token for the given user.
func IssueAccessToken(secret []byte, user *model.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(AccessTokenTTL).Unix(),
	})
	return token.SignedString(secret)
}
