package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the only error ParseAccessToken returns. Decode,
// signature and expiry failures all collapse into it so callers can't
// tell them apart.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the account identity inside an access token.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	Provider string `json:"provider,omitempty"`
}

func MakeAccessToken(userID, email, provider string, secret []byte, validity time.Duration) (string, error) {
	now := time.Now().UTC()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Email:    email,
		Provider: provider,
	})

	return token.SignedString(secret)
}

func ParseAccessToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
