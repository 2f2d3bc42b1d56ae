package middleware

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const TokenTTL = 72 * time.Hour

// IssueToken signs an HS256 token whose subject is uid.
func IssueToken(secret, uid string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   uid,
		Issuer:    "delyplott",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
