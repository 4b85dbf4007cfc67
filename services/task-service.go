package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/events"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
	"github.com/alexander-edwards/asana-clone-app-fullstack/utils"
)

type TaskService struct {
	tasks       TaskStore
	sections    SectionStore
	users       UserStore
	attachments AttachmentStore
	auth        *Authorizer
	notifier    *NotificationService
	activity    *ActivityService
	publisher   events.Publisher
	now         func() time.Time
}

func NewTaskService(
	tasks TaskStore,
	sections SectionStore,
	users UserStore,
	attachments AttachmentStore,
	auth *Authorizer,
	notifier *NotificationService,
	activity *ActivityService,
	publisher events.Publisher,
) *TaskService {
	return &TaskService{
		tasks:       tasks,
		sections:    sections,
		users:       users,
		attachments: attachments,
		auth:        auth,
		notifier:    notifier,
		activity:    activity,
		publisher:   publisher,
		now:         time.Now,
	}
}

func (s *TaskService) List(ctx context.Context, userID, projectID uuid.UUID, filter models.TaskFilter) ([]models.Task, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "status", Message: "Invalid status filter"})
	}
	if _, err := s.auth.RequireProject(ctx, projectID, userID); err != nil {
		return nil, err
	}
	filter.Search = strings.TrimSpace(filter.Search)
	return s.tasks.ListTasks(ctx, projectID, filter)
}

// Get returns the task with its attachments.
func (s *TaskService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	task, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	task.Attachments, err = s.attachments.ListAttachments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, req models.CreateTaskRequest) (*models.Task, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Status == "" {
		req.Status = models.StatusTodo
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	var v utils.Validator
	v.Check(req.ProjectID != uuid.Nil, "project_id", "Project ID is required")
	v.Check(req.Title != "", "title", "Task title is required")
	v.Check(req.Status.Valid(), "status", "Status must be todo, in_progress, completed or blocked")
	v.Check(req.Priority.Valid(), "priority", "Priority must be low, medium, high or urgent")
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.auth.RequireProject(ctx, req.ProjectID, userID); err != nil {
		return nil, err
	}
	if req.SectionID != nil {
		if err := s.checkSection(ctx, req.ProjectID, *req.SectionID); err != nil {
			return nil, err
		}
	}

	nt := models.NewTask{
		ProjectID:    req.ProjectID,
		SectionID:    req.SectionID,
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		DueDate:      req.DueDate.TimePtr(),
		StartDate:    req.StartDate.TimePtr(),
		CreatorID:    userID,
		Tags:         req.Tags,
		CustomFields: req.CustomFields,
		AssigneeIDs:  uniqueIDs(req.AssigneeIDs),
	}
	if nt.Tags == nil {
		nt.Tags = []string{}
	}
	if nt.CustomFields == nil {
		nt.CustomFields = map[string]any{}
	}
	if nt.Status == models.StatusCompleted {
		now := s.now().UTC()
		nt.CompletedAt = &now
	}

	task, err := s.tasks.CreateTask(ctx, nt)
	if err != nil {
		return nil, err
	}

	for _, assignee := range nt.AssigneeIDs {
		s.notifier.Notify(ctx, userID, assignee, models.NotifyTaskAssigned, task.ID,
			fmt.Sprintf("You have been assigned to %q", task.Title))
	}
	s.activity.Record(ctx, Entry{ProjectID: task.ProjectID, ActorID: userID, Type: models.ActivityCreateTask, TaskID: task.ID, Details: task.Title})
	s.publisher.Publish(events.NewEvent(events.TaskCreated, task.ProjectID, task))
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, userID, id uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	var v utils.Validator
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		patch.Title = &trimmed
		v.Check(trimmed != "", "title", "Task title cannot be empty")
	}
	if patch.Status != nil {
		v.Check(patch.Status.Valid(), "status", "Status must be todo, in_progress, completed or blocked")
	}
	if patch.Priority != nil {
		v.Check(patch.Priority.Valid(), "priority", "Priority must be low, medium, high or urgent")
	}
	if patch.Position != nil {
		v.Check(*patch.Position >= 0, "position", "Position must be a non-negative integer")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, apperrors.BadRequest("No fields to update")
	}

	existing, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.SectionID.Valid {
		if err := s.checkSection(ctx, existing.ProjectID, patch.SectionID.Value); err != nil {
			return nil, err
		}
	}
	if patch.Tags != nil && *patch.Tags == nil {
		patch.Tags = &[]string{}
	}
	if patch.CustomFields != nil && *patch.CustomFields == nil {
		patch.CustomFields = &map[string]any{}
	}
	patch.CompletedAt = CompletedAtTransition(existing.Status, patch.Status, s.now().UTC())

	task, err := s.tasks.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	entry := Entry{ProjectID: task.ProjectID, ActorID: userID, Type: models.ActivityUpdateTask, TaskID: task.ID, Details: task.Title}
	if patch.Status != nil && *patch.Status != existing.Status {
		entry.Type = models.ActivityChangeTaskStatus
		entry.Details = fmt.Sprintf("%s -> %s", existing.Status, task.Status)
	}
	s.activity.Record(ctx, entry)
	s.publisher.Publish(events.NewEvent(events.TaskUpdated, task.ProjectID, task))
	return task, nil
}

// CompletedAtTransition decides how completed_at changes when status moves
// from prev to next. An unset result leaves the column alone.
func CompletedAtTransition(prev models.TaskStatus, next *models.TaskStatus, now time.Time) models.Nullable[time.Time] {
	if next == nil || *next == prev {
		return models.Nullable[time.Time]{}
	}
	if *next == models.StatusCompleted {
		return models.NewNullable(now)
	}
	return models.Null[time.Time]()
}

func (s *TaskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return err
	}
	access, err := s.auth.ProjectAccess(ctx, task.ProjectID, userID)
	if err != nil {
		return err
	}
	creator := task.CreatorID == userID && access.CanRead()
	if !creator && !access.IsAdmin() {
		return denied("task delete", id, userID)
	}

	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.activity.Record(ctx, Entry{ProjectID: task.ProjectID, ActorID: userID, Type: models.ActivityDeleteTask, TaskID: id, Details: task.Title})
	s.publisher.Publish(events.NewEvent(events.TaskDeleted, task.ProjectID, map[string]uuid.UUID{"id": id}))
	return nil
}

func (s *TaskService) AddAssignee(ctx context.Context, userID, id uuid.UUID, req models.AssignRequest) (*models.Assignee, error) {
	if req.UserID == uuid.Nil {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "user_id", Message: "User ID is required"})
	}
	task, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetUserByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	assignee, err := s.tasks.AddAssignee(ctx, id, req.UserID)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, userID, req.UserID, models.NotifyTaskAssigned, id,
		fmt.Sprintf("You have been assigned to %q", task.Title))
	s.activity.Record(ctx, Entry{ProjectID: task.ProjectID, ActorID: userID, Type: models.ActivityAssignTask, TaskID: id, MemberID: req.UserID})
	s.publishTask(ctx, task.ProjectID, id)
	return assignee, nil
}

func (s *TaskService) RemoveAssignee(ctx context.Context, userID, id, assigneeID uuid.UUID) error {
	task, err := s.load(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.tasks.RemoveAssignee(ctx, id, assigneeID); err != nil {
		return err
	}
	s.publishTask(ctx, task.ProjectID, id)
	return nil
}

func (s *TaskService) AddDependency(ctx context.Context, userID, id uuid.UUID, req models.DependencyRequest) error {
	if req.DependsOnTaskID == uuid.Nil {
		return apperrors.Validation(apperrors.FieldError{Field: "depends_on_task_id", Message: "Dependency task ID is required"})
	}
	if req.DependsOnTaskID == id {
		return apperrors.BadRequest("A task cannot depend on itself")
	}

	task, err := s.load(ctx, userID, id)
	if err != nil {
		return err
	}
	dep, err := s.tasks.GetTask(ctx, req.DependsOnTaskID)
	if err != nil {
		return err
	}
	if dep.ProjectID != task.ProjectID {
		return apperrors.BadRequest("Dependencies must be within the same project")
	}

	if err := s.tasks.AddDependency(ctx, id, req.DependsOnTaskID); err != nil {
		return err
	}
	s.publishTask(ctx, task.ProjectID, id)
	return nil
}

func (s *TaskService) RemoveDependency(ctx context.Context, userID, id, dependsOnID uuid.UUID) error {
	task, err := s.load(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.tasks.RemoveDependency(ctx, id, dependsOnID); err != nil {
		return err
	}
	s.publishTask(ctx, task.ProjectID, id)
	return nil
}

// load fetches a task and checks the caller can read its project.
func (s *TaskService) load(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.auth.RequireProject(ctx, task.ProjectID, userID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) checkSection(ctx context.Context, projectID, sectionID uuid.UUID) error {
	section, err := s.sections.GetSection(ctx, sectionID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return apperrors.BadRequest("Section not found in this project")
		}
		return err
	}
	if section.ProjectID != projectID {
		return apperrors.BadRequest("Section not found in this project")
	}
	return nil
}

// publishTask pushes the current task state to project subscribers.
func (s *TaskService) publishTask(ctx context.Context, projectID, id uuid.UUID) {
	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return
	}
	s.publisher.Publish(events.NewEvent(events.TaskUpdated, projectID, task))
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
