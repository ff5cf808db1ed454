// Package auth issues and verifies the HS256 access tokens that name the
// calling account.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/ghosttips/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims and the caller's account address.
type Claims struct {
	jwt.RegisteredClaims
	Account string `json:"account"`
}

// GenerateToken signs a token for account valid for validityDuration.
func GenerateToken(account string, secretKey []byte, validityDuration time.Duration) (string, error) {
	account = strings.ToLower(strings.TrimSpace(account))
	if account == "" {
		return "", common.ErrInvalidToken
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Account: account,
	})

	return token.SignedString(secretKey)
}

// AccountFromToken verifies tokenString and returns the account it names.
// Expired tokens yield common.ErrTokenExpired, every other failure
// common.ErrInvalidToken.
func AccountFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Account == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Account, nil
}
