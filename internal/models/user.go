package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProfileTable = "profiles"
	RoleAdmin    = "admin"
)

// AdminProfile is the profiles row of a dashboard operator.
type AdminProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullname"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

func (p AdminProfile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
