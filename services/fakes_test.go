package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/config"
	"github.com/alexander-edwards/asana-clone-app-fullstack/events"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

// Fakes embed the store interfaces; calling a method a test did not expect panics.

type accessKey struct{ target, user uuid.UUID }

type fakeAccess struct {
	workspaces map[accessKey]models.Access
	projects   map[accessKey]models.Access
}

func (f *fakeAccess) WorkspaceAccess(_ context.Context, workspaceID, userID uuid.UUID) (models.Access, error) {
	return f.workspaces[accessKey{workspaceID, userID}], nil
}

func (f *fakeAccess) ProjectAccess(_ context.Context, projectID, userID uuid.UUID) (models.Access, error) {
	return f.projects[accessKey{projectID, userID}], nil
}

func rolePtr(r models.Role) *models.Role { return &r }

func (f *fakeAccess) grantProject(projectID, userID uuid.UUID, a models.Access) {
	a.Exists = true
	f.projects[accessKey{projectID, userID}] = a
}

func (f *fakeAccess) grantWorkspace(workspaceID, userID uuid.UUID, a models.Access) {
	a.Exists = true
	f.workspaces[accessKey{workspaceID, userID}] = a
}

type fakeUsers struct {
	UserStore
	byID map[uuid.UUID]*models.User
}

func (f *fakeUsers) add(email, name string) *models.User {
	u := &models.User{ID: uuid.New(), Email: email, Name: name, Role: "member"}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) CreateUser(_ context.Context, email, hash, name string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return nil, apperrors.BadRequest("User already exists")
		}
	}
	u := f.add(email, name)
	u.Password = hash
	return u, nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("User")
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("User")
}

type fakeWorkspaces struct {
	WorkspaceStore
	items   map[uuid.UUID]*models.Workspace
	added   []models.Member
	removed []uuid.UUID
}

func (f *fakeWorkspaces) GetWorkspace(_ context.Context, id uuid.UUID) (*models.Workspace, error) {
	if w, ok := f.items[id]; ok {
		return w, nil
	}
	return nil, apperrors.NotFound("Workspace")
}

func (f *fakeWorkspaces) ListWorkspaceMembers(context.Context, uuid.UUID) ([]models.Member, error) {
	return f.added, nil
}

func (f *fakeWorkspaces) AddWorkspaceMember(_ context.Context, _ uuid.UUID, userID uuid.UUID, role models.Role) (*models.Member, error) {
	m := models.Member{ID: userID, Role: role, JoinedAt: time.Now()}
	f.added = append(f.added, m)
	return &m, nil
}

func (f *fakeWorkspaces) RemoveWorkspaceMember(_ context.Context, _ uuid.UUID, userID uuid.UUID) error {
	f.removed = append(f.removed, userID)
	return nil
}

func (f *fakeWorkspaces) UpdateWorkspace(_ context.Context, id uuid.UUID, patch models.WorkspacePatch) (*models.Workspace, error) {
	w := f.items[id]
	if patch.Name != nil {
		w.Name = *patch.Name
	}
	return w, nil
}

type fakeProjects struct {
	ProjectStore
	items   map[uuid.UUID]*models.Project
	created []models.NewProject
	members []models.Member
	removed []uuid.UUID
}

func (f *fakeProjects) GetProject(_ context.Context, id uuid.UUID) (*models.Project, error) {
	if p, ok := f.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, apperrors.NotFound("Project")
}

func (f *fakeProjects) ListProjectMembers(context.Context, uuid.UUID) ([]models.Member, error) {
	return f.members, nil
}

func (f *fakeProjects) CreateProject(_ context.Context, np models.NewProject) (*models.Project, error) {
	f.created = append(f.created, np)
	p := &models.Project{ID: uuid.New(), WorkspaceID: np.WorkspaceID, OwnerID: np.OwnerID, Name: np.Name, Color: np.Color, ViewType: np.ViewType, Status: models.ProjectActive}
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProjects) UpdateProject(_ context.Context, id uuid.UUID, patch models.ProjectPatch) (*models.Project, error) {
	p := f.items[id]
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	return p, nil
}

func (f *fakeProjects) AddProjectMember(_ context.Context, _ uuid.UUID, userID uuid.UUID, role models.Role) (*models.Member, error) {
	m := models.Member{ID: userID, Role: role}
	f.members = append(f.members, m)
	return &m, nil
}

func (f *fakeProjects) RemoveProjectMember(_ context.Context, _ uuid.UUID, userID uuid.UUID) error {
	f.removed = append(f.removed, userID)
	return nil
}

type fakeSections struct {
	SectionStore
	items       map[uuid.UUID]*models.Section
	disposition *models.TaskDisposition
}

func (f *fakeSections) add(projectID uuid.UUID, name string) *models.Section {
	s := &models.Section{ID: uuid.New(), ProjectID: projectID, Name: name, Position: len(f.items)}
	f.items[s.ID] = s
	return s
}

func (f *fakeSections) ListSections(_ context.Context, projectID uuid.UUID) ([]models.Section, error) {
	out := []models.Section{}
	for _, s := range f.items {
		if s.ProjectID == projectID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSections) GetSection(_ context.Context, id uuid.UUID) (*models.Section, error) {
	if s, ok := f.items[id]; ok {
		return s, nil
	}
	return nil, apperrors.NotFound("Section")
}

func (f *fakeSections) CreateSection(_ context.Context, projectID uuid.UUID, name string) (*models.Section, error) {
	return f.add(projectID, name), nil
}

func (f *fakeSections) DeleteSection(_ context.Context, id uuid.UUID, d models.TaskDisposition) error {
	f.disposition = &d
	delete(f.items, id)
	return nil
}

type fakeTasks struct {
	TaskStore
	items     map[uuid.UUID]*models.Task
	created   []models.NewTask
	patches   []models.TaskPatch
	deleted   []uuid.UUID
	deps      [][2]uuid.UUID
	assignees [][2]uuid.UUID
}

func (f *fakeTasks) add(projectID, creatorID uuid.UUID, status models.TaskStatus) *models.Task {
	t := &models.Task{ID: uuid.New(), ProjectID: projectID, CreatorID: creatorID, Title: "task", Status: status, Priority: models.PriorityMedium}
	f.items[t.ID] = t
	return t
}

func (f *fakeTasks) GetTask(_ context.Context, id uuid.UUID) (*models.Task, error) {
	if t, ok := f.items[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, apperrors.NotFound("Task")
}

func (f *fakeTasks) CreateTask(_ context.Context, nt models.NewTask) (*models.Task, error) {
	f.created = append(f.created, nt)
	t := f.add(nt.ProjectID, nt.CreatorID, nt.Status)
	t.Title = nt.Title
	t.CompletedAt = nt.CompletedAt
	return t, nil
}

func (f *fakeTasks) UpdateTask(_ context.Context, id uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	f.patches = append(f.patches, patch)
	t := f.items[id]
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.CompletedAt.Set {
		t.CompletedAt = patch.CompletedAt.Ptr()
	}
	return t, nil
}

func (f *fakeTasks) DeleteTask(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	delete(f.items, id)
	return nil
}

func (f *fakeTasks) AddAssignee(_ context.Context, taskID, userID uuid.UUID) (*models.Assignee, error) {
	f.assignees = append(f.assignees, [2]uuid.UUID{taskID, userID})
	return &models.Assignee{ID: userID}, nil
}

func (f *fakeTasks) AddDependency(_ context.Context, taskID, dependsOnID uuid.UUID) error {
	f.deps = append(f.deps, [2]uuid.UUID{taskID, dependsOnID})
	return nil
}

type fakeComments struct {
	CommentStore
	items   map[uuid.UUID]*models.Comment
	deleted []uuid.UUID
}

func (f *fakeComments) add(taskID, userID uuid.UUID, parentID *uuid.UUID) *models.Comment {
	c := &models.Comment{ID: uuid.New(), TaskID: taskID, UserID: userID, Content: "hi", ParentID: parentID}
	f.items[c.ID] = c
	return c
}

func (f *fakeComments) GetComment(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	if c, ok := f.items[id]; ok {
		return c, nil
	}
	return nil, apperrors.NotFound("Comment")
}

func (f *fakeComments) CreateComment(_ context.Context, taskID, userID uuid.UUID, content string, parentID *uuid.UUID) (*models.Comment, error) {
	c := f.add(taskID, userID, parentID)
	c.Content = content
	c.UserName = "Replier"
	return c, nil
}

func (f *fakeComments) UpdateComment(_ context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	c := f.items[id]
	c.Content = content
	return c, nil
}

func (f *fakeComments) DeleteComment(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAttachments struct {
	AttachmentStore
	items map[uuid.UUID]*models.Attachment
	fail  error
}

func (f *fakeAttachments) CreateAttachment(_ context.Context, a models.Attachment) (*models.Attachment, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	a.ID = uuid.New()
	f.items[a.ID] = &a
	return &a, nil
}

func (f *fakeAttachments) ListAttachments(context.Context, uuid.UUID) ([]models.Attachment, error) {
	return []models.Attachment{}, nil
}

func (f *fakeAttachments) GetAttachment(_ context.Context, id uuid.UUID) (*models.Attachment, error) {
	if a, ok := f.items[id]; ok {
		return a, nil
	}
	return nil, apperrors.NotFound("Attachment")
}

func (f *fakeAttachments) DeleteAttachment(_ context.Context, id uuid.UUID) error {
	delete(f.items, id)
	return nil
}

type fakeNotifications struct {
	mu      sync.Mutex
	created []models.Notification
	fail    bool
}

func (f *fakeNotifications) CreateNotification(_ context.Context, n *models.Notification) error {
	if f.fail {
		return errors.New("cassandra unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotifications) ListNotifications(context.Context, uuid.UUID, int) ([]models.Notification, error) {
	return f.created, nil
}

func (f *fakeNotifications) MarkAsRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (f *fakeNotifications) DeleteNotification(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

type fakeActivity struct {
	mu       sync.Mutex
	recorded []models.ProjectActivity
	fail     bool
}

func (f *fakeActivity) RecordActivity(_ context.Context, a *models.ProjectActivity) error {
	if f.fail {
		return errors.New("mongo unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, *a)
	return nil
}

func (f *fakeActivity) ListActivities(_ context.Context, _ string, limit int64) ([]models.ProjectActivity, error) {
	if int64(len(f.recorded)) > limit {
		return f.recorded[:limit], nil
	}
	return f.recorded, nil
}

// env wires every service to fresh fakes.
type env struct {
	access        *fakeAccess
	users         *fakeUsers
	workspaces    *fakeWorkspaces
	projects      *fakeProjects
	sections      *fakeSections
	tasks         *fakeTasks
	comments      *fakeComments
	attachments   *fakeAttachments
	notifications *fakeNotifications
	activities    *fakeActivity
	publisher     *events.MemoryPublisher

	auth     *Authorizer
	notifier *NotificationService
	activity *ActivityService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		access:        &fakeAccess{workspaces: map[accessKey]models.Access{}, projects: map[accessKey]models.Access{}},
		users:         &fakeUsers{byID: map[uuid.UUID]*models.User{}},
		workspaces:    &fakeWorkspaces{items: map[uuid.UUID]*models.Workspace{}},
		projects:      &fakeProjects{items: map[uuid.UUID]*models.Project{}},
		sections:      &fakeSections{items: map[uuid.UUID]*models.Section{}},
		tasks:         &fakeTasks{items: map[uuid.UUID]*models.Task{}},
		comments:      &fakeComments{items: map[uuid.UUID]*models.Comment{}},
		attachments:   &fakeAttachments{items: map[uuid.UUID]*models.Attachment{}},
		notifications: &fakeNotifications{},
		activities:    &fakeActivity{},
		publisher:     events.NewMemoryPublisher(),
	}
	t.Cleanup(e.publisher.Close)

	breakerCfg := config.BreakerConfig{Timeout: time.Second, MaxFailures: 3, CallTimeout: time.Second}
	e.auth = NewAuthorizer(e.access)
	e.notifier = NewNotificationService(e.notifications, NewBreaker("notifications-test", breakerCfg), breakerCfg.CallTimeout)
	e.activity = NewActivityService(e.activities, NewBreaker("activity-test", breakerCfg), breakerCfg.CallTimeout)
	return e
}

func (e *env) workspaceService() *WorkspaceService {
	return NewWorkspaceService(e.workspaces, e.users, e.auth, e.notifier)
}

func (e *env) projectService() *ProjectService {
	return NewProjectService(e.projects, e.sections, e.users, e.auth, e.notifier, e.activity, e.publisher)
}

func (e *env) sectionService() *SectionService {
	return NewSectionService(e.sections, e.auth, e.activity, e.publisher)
}

func (e *env) taskService() *TaskService {
	return NewTaskService(e.tasks, e.sections, e.users, e.attachments, e.auth, e.notifier, e.activity, e.publisher)
}

func (e *env) commentService() *CommentService {
	return NewCommentService(e.comments, e.tasks, e.auth, e.notifier, e.activity, e.publisher)
}
