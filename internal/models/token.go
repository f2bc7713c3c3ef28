package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type RefreshToken struct {
	UserID      uuid.UUID
	HashedToken string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

type TokenPair struct {
	AccessToken  *jwt.Token
	RefreshToken *jwt.Token
}

// Raw returns the signed access and refresh strings.
func (p *TokenPair) Raw() (access, refresh string) {
	if p == nil {
		return "", ""
	}
	if p.AccessToken != nil {
		access = p.AccessToken.Raw
	}
	if p.RefreshToken != nil {
		refresh = p.RefreshToken.Raw
	}
	return access, refresh
}
