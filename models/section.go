package models

import (
	"time"

	"github.com/google/uuid"
)

type Section struct {
	ID                 uuid.UUID `json:"id"`
	ProjectID          uuid.UUID `json:"project_id"`
	Name               string    `json:"name"`
	Position           int       `json:"position"`
	TaskCount          int       `json:"task_count"`
	CompletedTaskCount int       `json:"completed_task_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type CreateSectionRequest struct {
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
}

type SectionPatch struct {
	Name     *string `json:"name"`
	Position *int    `json:"position"`
}

func (p SectionPatch) IsEmpty() bool {
	return p.Name == nil && p.Position == nil
}

// TaskDispositionMode says what happens to a deleted section's tasks.
type TaskDispositionMode int

const (
	TasksUnassign TaskDispositionMode = iota
	TasksDelete
	TasksMove
)

type TaskDisposition struct {
	Mode   TaskDispositionMode
	Target uuid.UUID
}

// ParseTaskDisposition interprets the moveTasks query value.
func ParseTaskDisposition(v string) (TaskDisposition, error) {
	switch v {
	case "":
		return TaskDisposition{Mode: TasksUnassign}, nil
	case "delete":
		return TaskDisposition{Mode: TasksDelete}, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return TaskDisposition{}, err
	}
	return TaskDisposition{Mode: TasksMove, Target: id}, nil
}
