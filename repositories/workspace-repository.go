package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

type WorkspaceRepository struct {
	db *DB
}

func NewWorkspaceRepository(db *DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

const workspaceColumns = `w.id, w.name, w.description, w.owner_id, w.created_at, w.updated_at`

func scanWorkspace(row pgx.Row, extra ...any) (*models.Workspace, error) {
	var w models.Workspace
	dest := append([]any{&w.ID, &w.Name, &w.Description, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWorkspaces returns every workspace the user owns or belongs to, newest first.
func (r *WorkspaceRepository) ListWorkspaces(ctx context.Context, userID uuid.UUID) ([]models.Workspace, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+workspaceColumns+`, u.name, wm.role,
		       (SELECT COUNT(*) FROM workspace_members c WHERE c.workspace_id = w.id)
		FROM workspaces w
		JOIN users u ON u.id = w.owner_id
		LEFT JOIN workspace_members wm ON wm.workspace_id = w.id AND wm.user_id = $1
		WHERE w.owner_id = $1 OR wm.user_id IS NOT NULL
		ORDER BY w.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	workspaces := []models.Workspace{}
	for rows.Next() {
		var (
			ownerName string
			role      *models.Role
			count     int
		)
		w, err := scanWorkspace(rows, &ownerName, &role, &count)
		if err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		w.OwnerName, w.UserRole, w.MemberCount = ownerName, role, count
		workspaces = append(workspaces, *w)
	}
	return workspaces, rows.Err()
}

func (r *WorkspaceRepository) GetWorkspace(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	var (
		ownerName string
		count     int
	)
	w, err := scanWorkspace(r.db.Pool.QueryRow(ctx, `
		SELECT `+workspaceColumns+`, u.name,
		       (SELECT COUNT(*) FROM workspace_members c WHERE c.workspace_id = w.id)
		FROM workspaces w
		JOIN users u ON u.id = w.owner_id
		WHERE w.id = $1`, id), &ownerName, &count)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("Workspace")
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}
	w.OwnerName, w.MemberCount = ownerName, count
	return w, nil
}

func (r *WorkspaceRepository) ListWorkspaceMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.Member, error) {
	return listMembers(ctx, r.db.Pool, `
		SELECT u.id, u.email, u.name, u.avatar_url, wm.role, wm.joined_at
		FROM workspace_members wm
		JOIN users u ON u.id = wm.user_id
		WHERE wm.workspace_id = $1
		ORDER BY wm.joined_at`, workspaceID)
}

// CreateWorkspace inserts the workspace and the owner's admin membership atomically.
func (r *WorkspaceRepository) CreateWorkspace(ctx context.Context, ownerID uuid.UUID, req models.CreateWorkspaceRequest) (*models.Workspace, error) {
	var w *models.Workspace
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		w, err = scanWorkspace(tx.QueryRow(ctx, `
			INSERT INTO workspaces AS w (name, description, owner_id)
			VALUES ($1, $2, $3)
			RETURNING `+workspaceColumns, req.Name, req.Description, ownerID))
		if err != nil {
			return fmt.Errorf("insert workspace: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO workspace_members (workspace_id, user_id, role) VALUES ($1, $2, $3)`,
			w.ID, ownerID, models.RoleAdmin); err != nil {
			return fmt.Errorf("insert owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	role := models.RoleAdmin
	w.UserRole = &role
	w.MemberCount = 1
	return w, nil
}

func (r *WorkspaceRepository) UpdateWorkspace(ctx context.Context, id uuid.UUID, patch models.WorkspacePatch) (*models.Workspace, error) {
	var set setBuilder
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.Description.Set {
		set.add("description", patch.Description.Ptr())
	}
	set.addRaw("updated_at = NOW()")

	query, args := set.build("workspaces AS w", "w.id", id, workspaceColumns)
	w, err := scanWorkspace(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("Workspace")
		}
		return nil, fmt.Errorf("update workspace: %w", err)
	}
	return w, nil
}

func (r *WorkspaceRepository) DeleteWorkspace(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db.Pool, "workspaces", id, "Workspace")
}

func (r *WorkspaceRepository) AddWorkspaceMember(ctx context.Context, workspaceID, userID uuid.UUID, role models.Role) (*models.Member, error) {
	return addMember(ctx, r.db.Pool, "workspace_members", "workspace_id", workspaceID, userID, role)
}

func (r *WorkspaceRepository) RemoveWorkspaceMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	return removeMember(ctx, r.db.Pool, "workspace_members", "workspace_id", workspaceID, userID)
}
