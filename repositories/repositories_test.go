package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/config"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

// testDB connects to ASANA_TEST_DATABASE_URL, migrates it and empties every table.
func testDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("ASANA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("ASANA_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Connect(ctx, config.DatabaseConfig{URL: url, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx, MigrateUp))
	_, err = db.Pool.Exec(ctx, `TRUNCATE users, workspaces, projects, sections, tasks, comments, attachments CASCADE`)
	require.NoError(t, err)
	return db
}

type fixture struct {
	db        *DB
	users     *UserRepository
	access    *AccessRepository
	workspace *models.Workspace
	project   *models.Project
	owner     *models.User
	sections  *SectionRepository
	tasks     *TaskRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testDB(t)
	ctx := context.Background()

	f := &fixture{
		db:       db,
		users:    NewUserRepository(db),
		access:   NewAccessRepository(db),
		sections: NewSectionRepository(db),
		tasks:    NewTaskRepository(db),
	}

	var err error
	f.owner, err = f.users.CreateUser(ctx, "owner@example.com", "hash", "Owner")
	require.NoError(t, err)

	f.workspace, err = NewWorkspaceRepository(db).CreateWorkspace(ctx, f.owner.ID, models.CreateWorkspaceRequest{Name: "Acme"})
	require.NoError(t, err)

	f.project, err = NewProjectRepository(db).CreateProject(ctx, models.NewProject{
		WorkspaceID: f.workspace.ID,
		OwnerID:     f.owner.ID,
		Name:        "Launch",
		Color:       models.DefaultProjectColor,
		ViewType:    models.ViewList,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) task(t *testing.T, title string, sectionID *uuid.UUID) *models.Task {
	t.Helper()
	task, err := f.tasks.CreateTask(context.Background(), models.NewTask{
		ProjectID: f.project.ID,
		SectionID: sectionID,
		Title:     title,
		Status:    models.StatusTodo,
		Priority:  models.PriorityMedium,
		CreatorID: f.owner.ID,
	})
	require.NoError(t, err)
	return task
}

func sectionPositions(t *testing.T, f *fixture) map[string]int {
	t.Helper()
	sections, err := f.sections.ListSections(context.Background(), f.project.ID)
	require.NoError(t, err)
	out := map[string]int{}
	seen := map[int]bool{}
	for i, s := range sections {
		assert.Equal(t, i, s.Position, "positions must be dense")
		assert.False(t, seen[s.Position], "duplicate position %d", s.Position)
		seen[s.Position] = true
		out[s.Name] = s.Position
	}
	return out
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.CreateUser(context.Background(), "owner@example.com", "hash", "Again")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))
}

func TestCreateProject_DefaultSections(t *testing.T) {
	f := newFixture(t)

	require.Len(t, f.project.Sections, 3)
	assert.Equal(t, map[string]int{"To Do": 0, "In Progress": 1, "Done": 2}, sectionPositions(t, f))

	access, err := f.access.ProjectAccess(context.Background(), f.project.ID, f.owner.ID)
	require.NoError(t, err)
	assert.True(t, access.IsAdmin())
	require.NotNil(t, access.Role)
	assert.Equal(t, models.RoleAdmin, *access.Role)
}

func TestProjectAccess_ViaWorkspace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	member, err := f.users.CreateUser(ctx, "member@example.com", "hash", "Member")
	require.NoError(t, err)
	stranger, err := f.users.CreateUser(ctx, "stranger@example.com", "hash", "Stranger")
	require.NoError(t, err)

	_, err = NewWorkspaceRepository(f.db).AddWorkspaceMember(ctx, f.workspace.ID, member.ID, models.RoleMember)
	require.NoError(t, err)

	a, err := f.access.ProjectAccess(ctx, f.project.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, a.CanRead())
	assert.False(t, a.IsAdmin())

	a, err = f.access.ProjectAccess(ctx, f.project.ID, stranger.ID)
	require.NoError(t, err)
	assert.False(t, a.CanRead())

	a, err = f.access.ProjectAccess(ctx, uuid.New(), member.ID)
	require.NoError(t, err)
	assert.False(t, a.Exists)
}

func TestAddWorkspaceMember_Duplicate(t *testing.T) {
	f := newFixture(t)
	_, err := NewWorkspaceRepository(f.db).AddWorkspaceMember(context.Background(), f.workspace.ID, f.owner.ID, models.RoleMember)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))
}

func TestUpdateSection_Reorder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	review, err := f.sections.CreateSection(ctx, f.project.ID, "Review")
	require.NoError(t, err)
	assert.Equal(t, 3, review.Position)

	// Move "Review" from 3 to 1: In Progress and Done shift down.
	pos := 1
	moved, err := f.sections.UpdateSection(ctx, review.ID, models.SectionPatch{Position: &pos})
	require.NoError(t, err)
	assert.Equal(t, 1, moved.Position)
	assert.Equal(t, map[string]int{"To Do": 0, "Review": 1, "In Progress": 2, "Done": 3}, sectionPositions(t, f))

	// Move "To Do" past the end: clamped to the last slot.
	pos = 99
	todo := f.project.Sections[0]
	moved, err = f.sections.UpdateSection(ctx, todo.ID, models.SectionPatch{Position: &pos})
	require.NoError(t, err)
	assert.Equal(t, 3, moved.Position)
	assert.Equal(t, map[string]int{"Review": 0, "In Progress": 1, "Done": 2, "To Do": 3}, sectionPositions(t, f))
}

func TestDeleteSection_Dispositions(t *testing.T) {
	ctx := context.Background()

	t.Run("unset nulls section", func(t *testing.T) {
		f := newFixture(t)
		todo := f.project.Sections[0]
		task := f.task(t, "a", &todo.ID)

		require.NoError(t, f.sections.DeleteSection(ctx, todo.ID, models.TaskDisposition{Mode: models.TasksUnassign}))

		got, err := f.tasks.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Nil(t, got.SectionID)
		assert.Equal(t, map[string]int{"In Progress": 0, "Done": 1}, sectionPositions(t, f))
	})

	t.Run("delete removes tasks", func(t *testing.T) {
		f := newFixture(t)
		doing := f.project.Sections[1]
		task := f.task(t, "a", &doing.ID)

		require.NoError(t, f.sections.DeleteSection(ctx, doing.ID, models.TaskDisposition{Mode: models.TasksDelete}))

		_, err := f.tasks.GetTask(ctx, task.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
		assert.Equal(t, map[string]int{"To Do": 0, "Done": 1}, sectionPositions(t, f))
	})

	t.Run("move reassigns after existing tasks", func(t *testing.T) {
		f := newFixture(t)
		todo, done := f.project.Sections[0], f.project.Sections[2]
		existing := f.task(t, "existing", &done.ID)
		first := f.task(t, "first", &todo.ID)
		second := f.task(t, "second", &todo.ID)

		require.NoError(t, f.sections.DeleteSection(ctx, todo.ID, models.TaskDisposition{Mode: models.TasksMove, Target: done.ID}))

		for i, id := range []uuid.UUID{existing.ID, first.ID, second.ID} {
			got, err := f.tasks.GetTask(ctx, id)
			require.NoError(t, err)
			require.NotNil(t, got.SectionID)
			assert.Equal(t, done.ID, *got.SectionID)
			assert.Equal(t, i, got.Position)
		}
	})

	t.Run("move into itself is rejected", func(t *testing.T) {
		f := newFixture(t)
		todo := f.project.Sections[0]
		err := f.sections.DeleteSection(ctx, todo.ID, models.TaskDisposition{Mode: models.TasksMove, Target: todo.ID})
		assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))
		assert.Len(t, sectionPositions(t, f), 3)
	})
}

func TestCreateTask_AppendsPosition(t *testing.T) {
	f := newFixture(t)
	todo := f.project.Sections[0]

	a := f.task(t, "a", &todo.ID)
	b := f.task(t, "b", &todo.ID)
	loose := f.task(t, "loose", nil)

	assert.Equal(t, 0, a.Position)
	assert.Equal(t, 1, b.Position)
	assert.Equal(t, 0, loose.Position)
	assert.Equal(t, []string{}, a.Tags)
	assert.Equal(t, "Owner", a.CreatorName)
}

func TestUpdateTask_SectionMoveAppends(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo, done := f.project.Sections[0], f.project.Sections[2]
	f.task(t, "already done", &done.ID)
	task := f.task(t, "moving", &todo.ID)

	updated, err := f.tasks.UpdateTask(ctx, task.ID, models.TaskPatch{SectionID: models.NewNullable(done.ID)})
	require.NoError(t, err)
	require.NotNil(t, updated.SectionID)
	assert.Equal(t, done.ID, *updated.SectionID)
	assert.Equal(t, 1, updated.Position)
}

func TestListTasks_Filters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	todo := f.project.Sections[0]
	a := f.task(t, "Write launch post", &todo.ID)
	f.task(t, "Fix 100% bug", nil)

	_, err := f.tasks.AddAssignee(ctx, a.ID, f.owner.ID)
	require.NoError(t, err)

	all, err := f.tasks.ListTasks(ctx, f.project.ID, models.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bySection, err := f.tasks.ListTasks(ctx, f.project.ID, models.TaskFilter{SectionID: &todo.ID})
	require.NoError(t, err)
	require.Len(t, bySection, 1)
	require.Len(t, bySection[0].Assignees, 1)
	assert.Equal(t, f.owner.ID, bySection[0].Assignees[0].ID)

	byAssignee, err := f.tasks.ListTasks(ctx, f.project.ID, models.TaskFilter{AssigneeID: &f.owner.ID})
	require.NoError(t, err)
	assert.Len(t, byAssignee, 1)

	bySearch, err := f.tasks.ListTasks(ctx, f.project.ID, models.TaskFilter{Search: "100%"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "Fix 100% bug", bySearch[0].Title)
}

func TestAddDependency_Cycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.task(t, "a", nil)
	b := f.task(t, "b", nil)
	c := f.task(t, "c", nil)

	require.NoError(t, f.tasks.AddDependency(ctx, a.ID, b.ID))
	require.NoError(t, f.tasks.AddDependency(ctx, b.ID, c.ID))

	err := f.tasks.AddDependency(ctx, c.ID, a.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))

	err = f.tasks.AddDependency(ctx, a.ID, b.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	got, err := f.tasks.GetTask(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Dependencies, 1)
	assert.Equal(t, b.ID, got.Dependencies[0].ID)
}

func TestComments_Nesting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	comments := NewCommentRepository(f.db)
	task := f.task(t, "a", nil)

	parent, err := comments.CreateComment(ctx, task.ID, f.owner.ID, "first", nil)
	require.NoError(t, err)
	_, err = comments.CreateComment(ctx, task.ID, f.owner.ID, "reply 1", &parent.ID)
	require.NoError(t, err)
	_, err = comments.CreateComment(ctx, task.ID, f.owner.ID, "reply 2", &parent.ID)
	require.NoError(t, err)

	list, err := comments.ListComments(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].ReplyCount)
	require.Len(t, list[0].Replies, 2)
	assert.Equal(t, "reply 1", list[0].Replies[0].Content)
	assert.Equal(t, "Owner", list[0].UserName)
}
