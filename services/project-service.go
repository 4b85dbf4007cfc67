package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/events"
	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
	"github.com/alexander-edwards/asana-clone-app-fullstack/utils"
)

type ProjectService struct {
	projects  ProjectStore
	sections  SectionStore
	users     UserStore
	auth      *Authorizer
	notifier  *NotificationService
	activity  *ActivityService
	publisher events.Publisher
}

func NewProjectService(
	projects ProjectStore,
	sections SectionStore,
	users UserStore,
	auth *Authorizer,
	notifier *NotificationService,
	activity *ActivityService,
	publisher events.Publisher,
) *ProjectService {
	return &ProjectService{
		projects:  projects,
		sections:  sections,
		users:     users,
		auth:      auth,
		notifier:  notifier,
		activity:  activity,
		publisher: publisher,
	}
}

func (s *ProjectService) ListByWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) ([]models.Project, error) {
	if _, err := s.auth.RequireWorkspace(ctx, workspaceID, userID); err != nil {
		return nil, err
	}
	return s.projects.ListProjects(ctx, workspaceID)
}

// Get loads the project with its members and sections.
func (s *ProjectService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Project, error) {
	if _, err := s.auth.RequireProject(ctx, id, userID); err != nil {
		return nil, err
	}

	var (
		project  *models.Project
		members  []models.Member
		sections []models.Section
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		project, err = s.projects.GetProject(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = s.projects.ListProjectMembers(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		sections, err = s.sections.ListSections(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	project.Members = members
	project.Sections = sections
	return project, nil
}

func (s *ProjectService) Create(ctx context.Context, userID uuid.UUID, req models.CreateProjectRequest) (*models.Project, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Color == "" {
		req.Color = models.DefaultProjectColor
	}
	if req.ViewType == "" {
		req.ViewType = models.ViewList
	}

	var v utils.Validator
	v.Check(req.WorkspaceID != uuid.Nil, "workspace_id", "Workspace ID is required")
	v.Check(req.Name != "", "name", "Project name is required")
	v.Check(utils.IsHexColor(req.Color), "color", "Color must be a hex value like #6B46C1")
	v.Check(req.ViewType.Valid(), "view_type", "View type must be list, board, timeline or calendar")
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.auth.RequireWorkspace(ctx, req.WorkspaceID, userID); err != nil {
		return nil, err
	}

	p, err := s.projects.CreateProject(ctx, models.NewProject{
		WorkspaceID: req.WorkspaceID,
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		ViewType:    req.ViewType,
		StartDate:   req.StartDate.TimePtr(),
		DueDate:     req.DueDate.TimePtr(),
	})
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project %s created in workspace %s by %s", p.ID, p.WorkspaceID, userID)
	return p, nil
}

func (s *ProjectService) Update(ctx context.Context, userID, id uuid.UUID, patch models.ProjectPatch) (*models.Project, error) {
	if _, err := s.auth.RequireProjectAdmin(ctx, id, userID); err != nil {
		return nil, err
	}

	var v utils.Validator
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
		v.Check(trimmed != "", "name", "Project name cannot be empty")
	}
	if patch.Color != nil {
		v.Check(utils.IsHexColor(*patch.Color), "color", "Color must be a hex value like #6B46C1")
	}
	if patch.Status != nil {
		v.Check(patch.Status.Valid(), "status", "Status must be active, archived or on_hold")
	}
	if patch.ViewType != nil {
		v.Check(patch.ViewType.Valid(), "view_type", "View type must be list, board, timeline or calendar")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, apperrors.BadRequest("No fields to update")
	}

	p, err := s.projects.UpdateProject(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, Entry{ProjectID: id, ActorID: userID, Type: models.ActivityUpdateProject, Details: "Project details updated"})
	s.publisher.Publish(events.NewEvent(events.ProjectUpdated, id, p))
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.auth.RequireProjectOwner(ctx, id, userID); err != nil {
		return err
	}
	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: Project %s deleted by %s", id, userID)
	return nil
}

func (s *ProjectService) AddMember(ctx context.Context, userID, id uuid.UUID, req models.AddMemberRequest) (*models.Member, error) {
	role, err := validateAddMember(&req)
	if err != nil {
		return nil, err
	}
	if _, err := s.auth.RequireProjectAdmin(ctx, id, userID); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	member, err := s.projects.AddProjectMember(ctx, id, user.ID, role)
	if err != nil {
		return nil, err
	}

	if p, err := s.projects.GetProject(ctx, id); err == nil {
		s.notifier.Notify(ctx, userID, user.ID, models.NotifyProjectMember, id,
			fmt.Sprintf("You have been added to project %q", p.Name))
	}
	s.activity.Record(ctx, Entry{ProjectID: id, ActorID: userID, Type: models.ActivityAddMember, MemberID: user.ID,
		Details: fmt.Sprintf("%s added as %s", member.Email, member.Role)})
	s.publisher.Publish(events.NewEvent(events.MemberAdded, id, member))
	return member, nil
}

func (s *ProjectService) RemoveMember(ctx context.Context, userID, id, memberID uuid.UUID) error {
	access, err := s.auth.ProjectAccess(ctx, id, userID)
	if err != nil {
		return err
	}
	if !access.IsAdmin() && !(userID == memberID && access.CanRead()) {
		return denied("project member removal", id, userID)
	}

	p, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerID == memberID {
		return apperrors.BadRequest("Cannot remove the project owner")
	}
	if err := s.projects.RemoveProjectMember(ctx, id, memberID); err != nil {
		return err
	}

	s.activity.Record(ctx, Entry{ProjectID: id, ActorID: userID, Type: models.ActivityRemoveMember, MemberID: memberID})
	s.publisher.Publish(events.NewEvent(events.MemberRemoved, id, map[string]uuid.UUID{"user_id": memberID}))
	return nil
}

func (s *ProjectService) Activity(ctx context.Context, userID, id uuid.UUID, limit int) ([]models.ProjectActivity, error) {
	if _, err := s.auth.RequireProject(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.activity.List(ctx, id, limit)
}

// Authorize checks read access for the realtime feed.
func (s *ProjectService) Authorize(ctx context.Context, userID, id uuid.UUID) error {
	_, err := s.auth.RequireProject(ctx, id, userID)
	return err
}
