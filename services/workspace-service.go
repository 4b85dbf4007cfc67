package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
	"github.com/alexander-edwards/asana-clone-app-fullstack/utils"
)

type WorkspaceService struct {
	workspaces WorkspaceStore
	users      UserStore
	auth       *Authorizer
	notifier   *NotificationService
}

func NewWorkspaceService(workspaces WorkspaceStore, users UserStore, auth *Authorizer, notifier *NotificationService) *WorkspaceService {
	return &WorkspaceService{workspaces: workspaces, users: users, auth: auth, notifier: notifier}
}

func (s *WorkspaceService) List(ctx context.Context, userID uuid.UUID) ([]models.Workspace, error) {
	return s.workspaces.ListWorkspaces(ctx, userID)
}

func (s *WorkspaceService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Workspace, error) {
	access, err := s.auth.RequireWorkspace(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	w, err := s.workspaces.GetWorkspace(ctx, id)
	if err != nil {
		return nil, err
	}
	w.Members, err = s.workspaces.ListWorkspaceMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	w.UserRole = access.Role
	return w, nil
}

func (s *WorkspaceService) Create(ctx context.Context, userID uuid.UUID, req models.CreateWorkspaceRequest) (*models.Workspace, error) {
	req.Name = strings.TrimSpace(req.Name)
	var v utils.Validator
	v.Check(req.Name != "", "name", "Workspace name is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	w, err := s.workspaces.CreateWorkspace(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: WORKSPACE_CREATED, Description: Workspace %s created by %s", w.ID, userID)
	return w, nil
}

func (s *WorkspaceService) Update(ctx context.Context, userID, id uuid.UUID, patch models.WorkspacePatch) (*models.Workspace, error) {
	if err := s.auth.RequireWorkspaceOwner(ctx, id, userID); err != nil {
		return nil, err
	}

	var v utils.Validator
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
		v.Check(trimmed != "", "name", "Workspace name cannot be empty")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, apperrors.BadRequest("No fields to update")
	}

	return s.workspaces.UpdateWorkspace(ctx, id, patch)
}

func (s *WorkspaceService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.auth.RequireWorkspaceOwner(ctx, id, userID); err != nil {
		return err
	}
	if err := s.workspaces.DeleteWorkspace(ctx, id); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: WORKSPACE_DELETED, Description: Workspace %s deleted by %s", id, userID)
	return nil
}

func (s *WorkspaceService) AddMember(ctx context.Context, userID, id uuid.UUID, req models.AddMemberRequest) (*models.Member, error) {
	role, err := validateAddMember(&req)
	if err != nil {
		return nil, err
	}
	if _, err := s.auth.RequireWorkspaceAdmin(ctx, id, userID); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	member, err := s.workspaces.AddWorkspaceMember(ctx, id, user.ID, role)
	if err != nil {
		return nil, err
	}

	w, err := s.workspaces.GetWorkspace(ctx, id)
	if err == nil {
		s.notifier.Notify(ctx, userID, user.ID, models.NotifyWorkspaceMember, id,
			fmt.Sprintf("You have been added to workspace %q", w.Name))
	}
	return member, nil
}

// RemoveMember lets admins remove anyone but the owner, and members remove themselves.
func (s *WorkspaceService) RemoveMember(ctx context.Context, userID, id, memberID uuid.UUID) error {
	access, err := s.auth.WorkspaceAccess(ctx, id, userID)
	if err != nil {
		return err
	}
	if !access.IsAdmin() && !(userID == memberID && access.CanRead()) {
		return denied("workspace member removal", id, userID)
	}

	w, err := s.workspaces.GetWorkspace(ctx, id)
	if err != nil {
		return err
	}
	if w.OwnerID == memberID {
		return apperrors.BadRequest("Cannot remove the workspace owner")
	}
	return s.workspaces.RemoveWorkspaceMember(ctx, id, memberID)
}

// validateAddMember normalizes req and returns the effective role.
func validateAddMember(req *models.AddMemberRequest) (models.Role, error) {
	req.Email = utils.NormalizeEmail(req.Email)
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}

	var v utils.Validator
	v.Check(utils.IsEmail(req.Email), "email", "Please enter a valid email")
	v.Check(role.Valid(), "role", "Role must be admin or member")
	if err := v.Err(); err != nil {
		return "", err
	}
	return role, nil
}
