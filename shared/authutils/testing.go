package authutils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fallen-dragon-server/shared/models"
)

// GenerateTestJWT signs an HS256 token for userID that expires after ttl.
// A negative ttl yields an already expired token.
func GenerateTestJWT(secret string, userID uint64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := models.Claims{
		UserID:   userID,
		Username: fmt.Sprintf("player%d", userID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign test token: %w", err)
	}
	return signed, nil
}
