package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/events"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

func seedProject(e *env) (p *models.Project, owner, admin, member *models.User) {
	owner = e.users.add("powner@x.io", "Owner")
	admin = e.users.add("padmin@x.io", "Admin")
	member = e.users.add("pmember@x.io", "Member")
	p = &models.Project{ID: uuid.New(), WorkspaceID: uuid.New(), Name: "Launch", OwnerID: owner.ID}
	e.projects.items[p.ID] = p

	e.access.grantProject(p.ID, owner.ID, models.Access{Owner: true, Role: rolePtr(models.RoleAdmin)})
	e.access.grantProject(p.ID, admin.ID, models.Access{Role: rolePtr(models.RoleAdmin)})
	e.access.grantProject(p.ID, member.ID, models.Access{ViaWorkspace: true})
	return p, owner, admin, member
}

func TestProjectService_CreateDefaults(t *testing.T) {
	e := newEnv(t)
	svc := e.projectService()
	user := e.users.add("u@x.io", "U")
	wsID := uuid.New()
	e.access.grantWorkspace(wsID, user.ID, models.Access{Role: rolePtr(models.RoleMember)})

	p, err := svc.Create(context.Background(), user.ID, models.CreateProjectRequest{WorkspaceID: wsID, Name: " Roadmap "})
	require.NoError(t, err)
	assert.Equal(t, "Roadmap", p.Name)

	require.Len(t, e.projects.created, 1)
	np := e.projects.created[0]
	assert.Equal(t, models.DefaultProjectColor, np.Color)
	assert.Equal(t, models.ViewList, np.ViewType)
	assert.Equal(t, user.ID, np.OwnerID)
}

func TestProjectService_CreateValidation(t *testing.T) {
	e := newEnv(t)
	svc := e.projectService()
	user := e.users.add("u@x.io", "U")
	wsID := uuid.New()

	tests := []struct {
		name  string
		req   models.CreateProjectRequest
		field string
	}{
		{"missing name", models.CreateProjectRequest{WorkspaceID: wsID}, "name"},
		{"bad color", models.CreateProjectRequest{WorkspaceID: wsID, Name: "P", Color: "purple"}, "color"},
		{"bad view", models.CreateProjectRequest{WorkspaceID: wsID, Name: "P", ViewType: "gantt"}, "view_type"},
		{"no workspace", models.CreateProjectRequest{Name: "P"}, "workspace_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), user.ID, tt.req)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			require.Equal(t, apperrors.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Fields[0].Field)
		})
	}

	_, err := svc.Create(context.Background(), user.ID, models.CreateProjectRequest{WorkspaceID: wsID, Name: "P"})
	assert.Equal(t, http.StatusForbidden, apperrors.StatusOf(err))
}

func TestProjectService_GetLoadsMembersAndSections(t *testing.T) {
	e := newEnv(t)
	svc := e.projectService()
	p, _, _, member := seedProject(e)
	e.sections.add(p.ID, "To Do")
	e.sections.add(p.ID, "Done")
	e.projects.members = []models.Member{{ID: member.ID, Role: models.RoleMember}}

	got, err := svc.Get(context.Background(), member.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Sections, 2)
	assert.Len(t, got.Members, 1)
}

func TestProjectService_UpdatePublishesAndRecords(t *testing.T) {
	e := newEnv(t)
	svc := e.projectService()
	p, _, admin, member := seedProject(e)
	sub := e.publisher.Subscribe(p.ID)
	name := "Renamed"

	_, err := svc.Update(context.Background(), member.ID, p.ID, models.ProjectPatch{Name: &name})
	assert.Equal(t, http.StatusForbidden, apperrors.StatusOf(err))

	_, err = svc.Update(context.Background(), admin.ID, p.ID, models.ProjectPatch{})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBadRequest))

	bad := models.ProjectStatus("done")
	_, err = svc.Update(context.Background(), admin.ID, p.ID, models.ProjectPatch{Status: &bad})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	got, err := svc.Update(context.Background(), admin.ID, p.ID, models.ProjectPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	select {
	case ev := <-sub:
		assert.Equal(t, events.ProjectUpdated, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("no project_updated event")
	}
	require.Len(t, e.activities.recorded, 1)
	assert.Equal(t, models.ActivityUpdateProject, e.activities.recorded[0].ActivityType)
}

func TestProjectService_MembersAndDelete(t *testing.T) {
	e := newEnv(t)
	svc := e.projectService()
	p, owner, admin, member := seedProject(e)
	ctx := context.Background()

	err := svc.RemoveMember(ctx, admin.ID, p.ID, owner.ID)
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusOf(err))
	require.NoError(t, svc.RemoveMember(ctx, member.ID, p.ID, member.ID))

	newcomer := e.users.add("n@x.io", "N")
	_, err = svc.AddMember(ctx, admin.ID, p.ID, models.AddMemberRequest{Email: "n@x.io", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Len(t, e.notifications.created, 1)
	assert.Equal(t, newcomer.ID, e.notifications.created[0].UserID)
	assert.Equal(t, models.NotifyProjectMember, e.notifications.created[0].Type)

	err = svc.Delete(ctx, admin.ID, p.ID)
	assert.Equal(t, http.StatusForbidden, apperrors.StatusOf(err))
}

func TestProjectService_ActivityRequiresAccess(t *testing.T) {
	e := newEnv(t)
	svc := e.projectService()
	p, _, _, member := seedProject(e)

	_, err := svc.Activity(context.Background(), uuid.New(), p.ID, 10)
	assert.Equal(t, http.StatusForbidden, apperrors.StatusOf(err))

	got, err := svc.Activity(context.Background(), member.ID, p.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
