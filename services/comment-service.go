package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/events"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
	"github.com/alexander-edwards/asana-clone-app-fullstack/utils"
)

type CommentService struct {
	comments  CommentStore
	tasks     TaskStore
	auth      *Authorizer
	notifier  *NotificationService
	activity  *ActivityService
	publisher events.Publisher
}

func NewCommentService(
	comments CommentStore,
	tasks TaskStore,
	auth *Authorizer,
	notifier *NotificationService,
	activity *ActivityService,
	publisher events.Publisher,
) *CommentService {
	return &CommentService{
		comments:  comments,
		tasks:     tasks,
		auth:      auth,
		notifier:  notifier,
		activity:  activity,
		publisher: publisher,
	}
}

func (s *CommentService) List(ctx context.Context, userID, taskID uuid.UUID) ([]models.Comment, error) {
	if _, err := s.taskProject(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.comments.ListComments(ctx, taskID)
}

func (s *CommentService) Create(ctx context.Context, userID uuid.UUID, req models.CreateCommentRequest) (*models.Comment, error) {
	req.Content = strings.TrimSpace(req.Content)
	var v utils.Validator
	v.Check(req.TaskID != uuid.Nil, "task_id", "Task ID is required")
	v.Check(req.Content != "", "content", "Comment content is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	projectID, err := s.taskProject(ctx, userID, req.TaskID)
	if err != nil {
		return nil, err
	}

	var parent *models.Comment
	if req.ParentID != nil {
		parent, err = s.comments.GetComment(ctx, *req.ParentID)
		if err != nil && !apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, err
		}
		if parent == nil || parent.TaskID != req.TaskID || parent.ParentID != nil {
			return nil, apperrors.BadRequest("Invalid parent comment")
		}
	}

	comment, err := s.comments.CreateComment(ctx, req.TaskID, userID, req.Content, req.ParentID)
	if err != nil {
		return nil, err
	}

	if parent != nil {
		s.notifier.Notify(ctx, userID, parent.UserID, models.NotifyCommentReply, req.TaskID,
			fmt.Sprintf("%s replied to your comment", comment.UserName))
	}
	s.activity.Record(ctx, Entry{ProjectID: projectID, ActorID: userID, Type: models.ActivityAddComment, TaskID: req.TaskID})
	s.publisher.Publish(events.NewEvent(events.CommentCreated, projectID, comment))
	return comment, nil
}

// Update is limited to the comment's author.
func (s *CommentService) Update(ctx context.Context, userID, id uuid.UUID, req models.UpdateCommentRequest) (*models.Comment, error) {
	req.Content = strings.TrimSpace(req.Content)
	var v utils.Validator
	v.Check(req.Content != "", "content", "Comment content is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	existing, err := s.comments.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, denied("comment edit", id, userID)
	}

	comment, err := s.comments.UpdateComment(ctx, id, req.Content)
	if err != nil {
		return nil, err
	}
	if task, err := s.tasks.GetTask(ctx, comment.TaskID); err == nil {
		s.publisher.Publish(events.NewEvent(events.CommentUpdated, task.ProjectID, comment))
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	existing, err := s.comments.GetComment(ctx, id)
	if err != nil {
		return err
	}
	task, err := s.tasks.GetTask(ctx, existing.TaskID)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		if _, err := s.auth.RequireProjectAdmin(ctx, task.ProjectID, userID); err != nil {
			return err
		}
	}

	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish(events.NewEvent(events.CommentDeleted, task.ProjectID, map[string]uuid.UUID{"id": id, "task_id": existing.TaskID}))
	return nil
}

// taskProject resolves the task's project and checks read access.
func (s *CommentService) taskProject(ctx context.Context, userID, taskID uuid.UUID) (uuid.UUID, error) {
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := s.auth.RequireProject(ctx, task.ProjectID, userID); err != nil {
		return uuid.Nil, err
	}
	return task.ProjectID, nil
}
