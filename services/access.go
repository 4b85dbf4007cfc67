package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

// Authorizer turns membership lookups into 403s.
type Authorizer struct {
	store AccessStore
}

func NewAuthorizer(store AccessStore) *Authorizer {
	return &Authorizer{store: store}
}

func (a *Authorizer) WorkspaceAccess(ctx context.Context, workspaceID, userID uuid.UUID) (models.Access, error) {
	access, err := a.store.WorkspaceAccess(ctx, workspaceID, userID)
	if err != nil {
		return models.Access{}, fmt.Errorf("workspace access: %w", err)
	}
	return access, nil
}

func (a *Authorizer) ProjectAccess(ctx context.Context, projectID, userID uuid.UUID) (models.Access, error) {
	access, err := a.store.ProjectAccess(ctx, projectID, userID)
	if err != nil {
		return models.Access{}, fmt.Errorf("project access: %w", err)
	}
	return access, nil
}

// RequireWorkspace fails with 403 unless the user owns or belongs to the workspace.
func (a *Authorizer) RequireWorkspace(ctx context.Context, workspaceID, userID uuid.UUID) (models.Access, error) {
	access, err := a.WorkspaceAccess(ctx, workspaceID, userID)
	if err != nil {
		return access, err
	}
	if !access.CanRead() {
		return access, denied("workspace", workspaceID, userID)
	}
	return access, nil
}

func (a *Authorizer) RequireWorkspaceAdmin(ctx context.Context, workspaceID, userID uuid.UUID) (models.Access, error) {
	access, err := a.WorkspaceAccess(ctx, workspaceID, userID)
	if err != nil {
		return access, err
	}
	if !access.IsAdmin() {
		return access, denied("workspace admin", workspaceID, userID)
	}
	return access, nil
}

func (a *Authorizer) RequireWorkspaceOwner(ctx context.Context, workspaceID, userID uuid.UUID) error {
	access, err := a.WorkspaceAccess(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if !access.Exists || !access.Owner {
		return denied("workspace owner", workspaceID, userID)
	}
	return nil
}

// RequireProject fails with 403 unless the user may read the project.
func (a *Authorizer) RequireProject(ctx context.Context, projectID, userID uuid.UUID) (models.Access, error) {
	access, err := a.ProjectAccess(ctx, projectID, userID)
	if err != nil {
		return access, err
	}
	if !access.CanRead() {
		return access, denied("project", projectID, userID)
	}
	return access, nil
}

func (a *Authorizer) RequireProjectAdmin(ctx context.Context, projectID, userID uuid.UUID) (models.Access, error) {
	access, err := a.ProjectAccess(ctx, projectID, userID)
	if err != nil {
		return access, err
	}
	if !access.IsAdmin() {
		return access, denied("project admin", projectID, userID)
	}
	return access, nil
}

func (a *Authorizer) RequireProjectOwner(ctx context.Context, projectID, userID uuid.UUID) error {
	access, err := a.ProjectAccess(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !access.Exists || !access.Owner {
		return denied("project owner", projectID, userID)
	}
	return nil
}

func denied(scope string, id, userID uuid.UUID) error {
	logging.Logger.Warnf("Event ID: ACCESS_DENIED, Description: User %s lacks %s access to %s", userID, scope, id)
	return apperrors.Forbidden()
}
