package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies what changed inside a project.
type EventType string

const (
	ProjectUpdated EventType = "project_updated"
	SectionCreated EventType = "section_created"
	SectionUpdated EventType = "section_updated"
	SectionDeleted EventType = "section_deleted"
	TaskCreated    EventType = "task_created"
	TaskUpdated    EventType = "task_updated"
	TaskDeleted    EventType = "task_deleted"
	CommentCreated EventType = "comment_created"
	CommentUpdated EventType = "comment_updated"
	CommentDeleted EventType = "comment_deleted"
	MemberAdded    EventType = "member_added"
	MemberRemoved  EventType = "member_removed"
)

// Event is a change notification scoped to one project.
type Event struct {
	Type      EventType `json:"type"`
	ProjectID uuid.UUID `json:"project_id"`
	Data      any       `json:"data,omitempty"`
	Time      time.Time `json:"time"`
}

func NewEvent(t EventType, projectID uuid.UUID, data any) Event {
	return Event{
		Type:      t,
		ProjectID: projectID,
		Data:      data,
		Time:      time.Now().UTC(),
	}
}
