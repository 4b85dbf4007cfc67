package models

import (
	"time"

	"github.com/google/uuid"
)

type Workspace struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	OwnerID     uuid.UUID `json:"owner_id"`
	OwnerName   string    `json:"owner_name,omitempty"`
	UserRole    *Role     `json:"user_role,omitempty"`
	MemberCount int       `json:"member_count"`
	Members     []Member  `json:"members,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateWorkspaceRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type WorkspacePatch struct {
	Name        *string          `json:"name"`
	Description Nullable[string] `json:"description"`
}

func (p WorkspacePatch) IsEmpty() bool {
	return p.Name == nil && !p.Description.Set
}
