package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the payload of the bearer tokens issued by the identity provider.
type Claims struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}
