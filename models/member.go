package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Member is a user together with their role on a workspace or project.
type Member struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url"`
	Role      Role      `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

type AddMemberRequest struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
