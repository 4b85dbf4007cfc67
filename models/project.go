package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectArchived ProjectStatus = "archived"
	ProjectOnHold   ProjectStatus = "on_hold"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectArchived, ProjectOnHold:
		return true
	}
	return false
}

type ViewType string

const (
	ViewList     ViewType = "list"
	ViewBoard    ViewType = "board"
	ViewTimeline ViewType = "timeline"
	ViewCalendar ViewType = "calendar"
)

func (v ViewType) Valid() bool {
	switch v {
	case ViewList, ViewBoard, ViewTimeline, ViewCalendar:
		return true
	}
	return false
}

const DefaultProjectColor = "#6B46C1"

// DefaultSectionNames are created, in order, with every new project.
var DefaultSectionNames = []string{"To Do", "In Progress", "Done"}

type Project struct {
	ID                 uuid.UUID     `json:"id"`
	WorkspaceID        uuid.UUID     `json:"workspace_id"`
	Name               string        `json:"name"`
	Description        *string       `json:"description"`
	Color              string        `json:"color"`
	Icon               *string       `json:"icon"`
	Status             ProjectStatus `json:"status"`
	ViewType           ViewType      `json:"view_type"`
	OwnerID            uuid.UUID     `json:"owner_id"`
	StartDate          *time.Time    `json:"start_date"`
	DueDate            *time.Time    `json:"due_date"`
	OwnerName          string        `json:"owner_name,omitempty"`
	WorkspaceName      string        `json:"workspace_name,omitempty"`
	MemberCount        int           `json:"member_count"`
	TaskCount          int           `json:"task_count"`
	CompletedTaskCount int           `json:"completed_task_count"`
	Members            []Member      `json:"members,omitempty"`
	Sections           []Section     `json:"sections,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

type CreateProjectRequest struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Color       string    `json:"color"`
	Icon        *string   `json:"icon"`
	ViewType    ViewType  `json:"view_type"`
	StartDate   *Date     `json:"start_date"`
	DueDate     *Date     `json:"due_date"`
}

type ProjectPatch struct {
	Name        *string          `json:"name"`
	Description Nullable[string] `json:"description"`
	Color       *string          `json:"color"`
	Icon        Nullable[string] `json:"icon"`
	Status      *ProjectStatus   `json:"status"`
	ViewType    *ViewType        `json:"view_type"`
	StartDate   Nullable[Date]   `json:"start_date"`
	DueDate     Nullable[Date]   `json:"due_date"`
}

func (p ProjectPatch) IsEmpty() bool {
	return p.Name == nil && !p.Description.Set && p.Color == nil && !p.Icon.Set &&
		p.Status == nil && p.ViewType == nil && !p.StartDate.Set && !p.DueDate.Set
}

// NewProject is validated creation input with defaults applied.
type NewProject struct {
	WorkspaceID uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description *string
	Color       string
	Icon        *string
	ViewType    ViewType
	StartDate   *time.Time
	DueDate     *time.Time
}
