package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifyWorkspaceMember NotificationType = "workspace_member_added"
	NotifyProjectMember   NotificationType = "project_member_added"
	NotifyTaskAssigned    NotificationType = "task_assigned"
	NotifyCommentReply    NotificationType = "comment_reply"
)

type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	EntityID  uuid.UUID        `json:"entity_id"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
