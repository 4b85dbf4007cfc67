package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

// AccessRepository answers membership questions with a single join per check.
type AccessRepository struct {
	db *DB
}

func NewAccessRepository(db *DB) *AccessRepository {
	return &AccessRepository{db: db}
}

func (r *AccessRepository) WorkspaceAccess(ctx context.Context, workspaceID, userID uuid.UUID) (models.Access, error) {
	var a models.Access
	err := r.db.Pool.QueryRow(ctx, `
		SELECT w.owner_id = $2, wm.role
		FROM workspaces w
		LEFT JOIN workspace_members wm ON wm.workspace_id = w.id AND wm.user_id = $2
		WHERE w.id = $1`, workspaceID, userID).Scan(&a.Owner, &a.Role)
	if err != nil {
		if isNoRows(err) {
			return models.Access{}, nil
		}
		return models.Access{}, fmt.Errorf("check workspace access: %w", err)
	}
	a.Exists = true
	return a, nil
}

func (r *AccessRepository) ProjectAccess(ctx context.Context, projectID, userID uuid.UUID) (models.Access, error) {
	var a models.Access
	err := r.db.Pool.QueryRow(ctx, `
		SELECT p.owner_id = $2,
		       pm.role,
		       w.owner_id = $2 OR EXISTS (
		           SELECT 1 FROM workspace_members wm
		           WHERE wm.workspace_id = p.workspace_id AND wm.user_id = $2)
		FROM projects p
		JOIN workspaces w ON w.id = p.workspace_id
		LEFT JOIN project_members pm ON pm.project_id = p.id AND pm.user_id = $2
		WHERE p.id = $1`, projectID, userID).Scan(&a.Owner, &a.Role, &a.ViaWorkspace)
	if err != nil {
		if isNoRows(err) {
			return models.Access{}, nil
		}
		return models.Access{}, fmt.Errorf("check project access: %w", err)
	}
	a.Exists = true
	return a, nil
}
