package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vytalle/storefront/internal/core/domain"
)

var errEmptySecret = errors.New("session: token secret must not be empty")

// TokenClaims is the payload of a session token. ScopeID names the session
// slot the token was minted for, so bearer clients can find it again.
type TokenClaims struct {
	Email   string `json:"email"`
	Role    string `json:"role"`
	ScopeID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// tokenIssuer signs and verifies HS256 session tokens.
type tokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func (t tokenIssuer) mint(user domain.User, scopeID string, expiresAt time.Time) (string, error) {
	claims := TokenClaims{
		Email:   user.Email,
		Role:    user.Role.String(),
		ScopeID: scopeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(t.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (t tokenIssuer) verify(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tkn *jwt.Token) (interface{}, error) {
		if tkn.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
