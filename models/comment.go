package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID         uuid.UUID  `json:"id"`
	TaskID     uuid.UUID  `json:"task_id"`
	UserID     uuid.UUID  `json:"user_id"`
	Content    string     `json:"content"`
	ParentID   *uuid.UUID `json:"parent_id"`
	UserName   string     `json:"user_name,omitempty"`
	UserEmail  string     `json:"user_email,omitempty"`
	UserAvatar *string    `json:"user_avatar,omitempty"`
	ReplyCount int        `json:"reply_count"`
	Replies    []Comment  `json:"replies,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type CreateCommentRequest struct {
	TaskID   uuid.UUID  `json:"task_id"`
	Content  string     `json:"content"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}
