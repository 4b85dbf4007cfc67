package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

// Store interfaces are satisfied by the repositories package.

type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash, name string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req models.UpdateProfileRequest) (*models.User, error)
}

type AccessStore interface {
	WorkspaceAccess(ctx context.Context, workspaceID, userID uuid.UUID) (models.Access, error)
	ProjectAccess(ctx context.Context, projectID, userID uuid.UUID) (models.Access, error)
}

type WorkspaceStore interface {
	ListWorkspaces(ctx context.Context, userID uuid.UUID) ([]models.Workspace, error)
	GetWorkspace(ctx context.Context, id uuid.UUID) (*models.Workspace, error)
	ListWorkspaceMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.Member, error)
	CreateWorkspace(ctx context.Context, ownerID uuid.UUID, req models.CreateWorkspaceRequest) (*models.Workspace, error)
	UpdateWorkspace(ctx context.Context, id uuid.UUID, patch models.WorkspacePatch) (*models.Workspace, error)
	DeleteWorkspace(ctx context.Context, id uuid.UUID) error
	AddWorkspaceMember(ctx context.Context, workspaceID, userID uuid.UUID, role models.Role) (*models.Member, error)
	RemoveWorkspaceMember(ctx context.Context, workspaceID, userID uuid.UUID) error
}

type ProjectStore interface {
	ListProjects(ctx context.Context, workspaceID uuid.UUID) ([]models.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjectMembers(ctx context.Context, projectID uuid.UUID) ([]models.Member, error)
	CreateProject(ctx context.Context, np models.NewProject) (*models.Project, error)
	UpdateProject(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) (*models.Project, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error
	AddProjectMember(ctx context.Context, projectID, userID uuid.UUID, role models.Role) (*models.Member, error)
	RemoveProjectMember(ctx context.Context, projectID, userID uuid.UUID) error
}

type SectionStore interface {
	ListSections(ctx context.Context, projectID uuid.UUID) ([]models.Section, error)
	GetSection(ctx context.Context, id uuid.UUID) (*models.Section, error)
	CreateSection(ctx context.Context, projectID uuid.UUID, name string) (*models.Section, error)
	UpdateSection(ctx context.Context, id uuid.UUID, patch models.SectionPatch) (*models.Section, error)
	DeleteSection(ctx context.Context, id uuid.UUID, disposition models.TaskDisposition) error
}

type TaskStore interface {
	ListTasks(ctx context.Context, projectID uuid.UUID, filter models.TaskFilter) ([]models.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	CreateTask(ctx context.Context, nt models.NewTask) (*models.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	AddAssignee(ctx context.Context, taskID, userID uuid.UUID) (*models.Assignee, error)
	RemoveAssignee(ctx context.Context, taskID, userID uuid.UUID) error
	AddDependency(ctx context.Context, taskID, dependsOnID uuid.UUID) error
	RemoveDependency(ctx context.Context, taskID, dependsOnID uuid.UUID) error
}

type CommentStore interface {
	ListComments(ctx context.Context, taskID uuid.UUID) ([]models.Comment, error)
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	CreateComment(ctx context.Context, taskID, userID uuid.UUID, content string, parentID *uuid.UUID) (*models.Comment, error)
	UpdateComment(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error
}

type AttachmentStore interface {
	CreateAttachment(ctx context.Context, a models.Attachment) (*models.Attachment, error)
	ListAttachments(ctx context.Context, taskID uuid.UUID) ([]models.Attachment, error)
	GetAttachment(ctx context.Context, id uuid.UUID) (*models.Attachment, error)
	DeleteAttachment(ctx context.Context, id uuid.UUID) error
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	DeleteNotification(ctx context.Context, userID, id uuid.UUID) error
}

type ActivityStore interface {
	RecordActivity(ctx context.Context, activity *models.ProjectActivity) error
	ListActivities(ctx context.Context, projectID string, limit int64) ([]models.ProjectActivity, error)
}
