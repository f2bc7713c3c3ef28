package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ClientRole = "client"
	AdminRole  = "admin"
)

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Password  string
	Roles     []string
	CreatedAt time.Time
}

func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
