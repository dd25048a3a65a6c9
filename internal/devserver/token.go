package devserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/carbuyer/internal/common"
)

// Claims identifies the user a bearer token was issued to. The token id is
// what logout revokes.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// GenerateToken signs an HS256 token for userID valid for ttl.
func GenerateToken(userID string, secret []byte, ttl time.Duration, now time.Time) (token string, id string, err error) {
	id = uuid.NewString()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	})

	token, err = t.SignedString(secret)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return token, id, nil
}

// ParseToken validates token and returns its claims. Every failure is
// reported as common.ErrInvalidToken.
func ParseToken(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Join(common.ErrInvalidToken, err)
	}
	if !t.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
