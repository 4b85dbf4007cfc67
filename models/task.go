package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusBlocked:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID            uuid.UUID       `json:"id"`
	ProjectID     uuid.UUID       `json:"project_id"`
	SectionID     *uuid.UUID      `json:"section_id"`
	Title         string          `json:"title"`
	Description   *string         `json:"description"`
	Status        TaskStatus      `json:"status"`
	Priority      Priority        `json:"priority"`
	DueDate       *time.Time      `json:"due_date"`
	StartDate     *time.Time      `json:"start_date"`
	CreatorID     uuid.UUID       `json:"creator_id"`
	Position      int             `json:"position"`
	Tags          []string        `json:"tags"`
	CustomFields  map[string]any  `json:"custom_fields"`
	CompletedAt   *time.Time      `json:"completed_at"`
	CreatorName   string          `json:"creator_name,omitempty"`
	SectionName   *string         `json:"section_name,omitempty"`
	ProjectName   string          `json:"project_name,omitempty"`
	Assignees     []Assignee      `json:"assignees"`
	Dependencies  []DependencyRef `json:"dependencies"`
	CommentsCount int             `json:"comments_count"`
	Attachments   []Attachment    `json:"attachments,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Assignee struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	AvatarURL  *string    `json:"avatar_url"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`
}

// DependencyRef is a task this task depends on.
type DependencyRef struct {
	ID     uuid.UUID  `json:"id"`
	Title  string     `json:"title"`
	Status TaskStatus `json:"status"`
}

type TaskFilter struct {
	SectionID  *uuid.UUID
	Status     *TaskStatus
	AssigneeID *uuid.UUID
	Search     string
}

type CreateTaskRequest struct {
	ProjectID    uuid.UUID      `json:"project_id"`
	SectionID    *uuid.UUID     `json:"section_id"`
	Title        string         `json:"title"`
	Description  *string        `json:"description"`
	Status       TaskStatus     `json:"status"`
	Priority     Priority       `json:"priority"`
	DueDate      *Date          `json:"due_date"`
	StartDate    *Date          `json:"start_date"`
	Tags         []string       `json:"tags"`
	AssigneeIDs  []uuid.UUID    `json:"assignee_ids"`
	CustomFields map[string]any `json:"custom_fields"`
}

// NewTask is what the store inserts. CompletedAt is decided by the caller.
type NewTask struct {
	ProjectID    uuid.UUID
	SectionID    *uuid.UUID
	Title        string
	Description  *string
	Status       TaskStatus
	Priority     Priority
	DueDate      *time.Time
	StartDate    *time.Time
	CreatorID    uuid.UUID
	Tags         []string
	CustomFields map[string]any
	CompletedAt  *time.Time
	AssigneeIDs  []uuid.UUID
}

type TaskPatch struct {
	Title        *string             `json:"title"`
	Description  Nullable[string]    `json:"description"`
	Status       *TaskStatus         `json:"status"`
	Priority     *Priority           `json:"priority"`
	DueDate      Nullable[Date]      `json:"due_date"`
	StartDate    Nullable[Date]      `json:"start_date"`
	SectionID    Nullable[uuid.UUID] `json:"section_id"`
	Tags         *[]string           `json:"tags"`
	CustomFields *map[string]any     `json:"custom_fields"`
	Position     *int                `json:"position"`

	// CompletedAt is derived from the status transition, never read from input.
	CompletedAt Nullable[time.Time] `json:"-"`
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && !p.Description.Set && p.Status == nil && p.Priority == nil &&
		!p.DueDate.Set && !p.StartDate.Set && !p.SectionID.Set && p.Tags == nil &&
		p.CustomFields == nil && p.Position == nil
}

type AssignRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type DependencyRequest struct {
	DependsOnTaskID uuid.UUID `json:"depends_on_task_id"`
}
