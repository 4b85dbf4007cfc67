package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

type ProjectRepository struct {
	db *DB
}

func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `p.id, p.workspace_id, p.name, p.description, p.color, p.icon, p.status, p.view_type,
	p.owner_id, p.start_date, p.due_date, p.created_at, p.updated_at`

const projectCounts = `
	(SELECT COUNT(*) FROM project_members pm WHERE pm.project_id = p.id),
	(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id),
	(SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id AND t.status = 'completed')`

func scanProject(row pgx.Row, extra ...any) (*models.Project, error) {
	var p models.Project
	dest := append([]any{&p.ID, &p.WorkspaceID, &p.Name, &p.Description, &p.Color, &p.Icon, &p.Status, &p.ViewType,
		&p.OwnerID, &p.StartDate, &p.DueDate, &p.CreatedAt, &p.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) ListProjects(ctx context.Context, workspaceID uuid.UUID) ([]models.Project, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+projectColumns+`, u.name,`+projectCounts+`
		FROM projects p
		JOIN users u ON u.id = p.owner_id
		WHERE p.workspace_id = $1
		ORDER BY p.created_at DESC`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var (
			ownerName                 string
			members, tasks, completed int
		)
		p, err := scanProject(rows, &ownerName, &members, &tasks, &completed)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.OwnerName, p.MemberCount, p.TaskCount, p.CompletedTaskCount = ownerName, members, tasks, completed
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var (
		ownerName, workspaceName  string
		members, tasks, completed int
	)
	p, err := scanProject(r.db.Pool.QueryRow(ctx, `
		SELECT `+projectColumns+`, u.name, w.name,`+projectCounts+`
		FROM projects p
		JOIN users u ON u.id = p.owner_id
		JOIN workspaces w ON w.id = p.workspace_id
		WHERE p.id = $1`, id), &ownerName, &workspaceName, &members, &tasks, &completed)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("Project")
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	p.OwnerName, p.WorkspaceName = ownerName, workspaceName
	p.MemberCount, p.TaskCount, p.CompletedTaskCount = members, tasks, completed
	return p, nil
}

func (r *ProjectRepository) ListProjectMembers(ctx context.Context, projectID uuid.UUID) ([]models.Member, error) {
	return listMembers(ctx, r.db.Pool, `
		SELECT u.id, u.email, u.name, u.avatar_url, pm.role, pm.joined_at
		FROM project_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.project_id = $1
		ORDER BY pm.joined_at`, projectID)
}

// CreateProject inserts the project, the owner's admin membership and the
// default sections in one transaction.
func (r *ProjectRepository) CreateProject(ctx context.Context, np models.NewProject) (*models.Project, error) {
	var p *models.Project
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		p, err = scanProject(tx.QueryRow(ctx, `
			INSERT INTO projects AS p (workspace_id, name, description, color, icon, view_type, owner_id, start_date, due_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+projectColumns,
			np.WorkspaceID, np.Name, np.Description, np.Color, np.Icon, np.ViewType, np.OwnerID, np.StartDate, np.DueDate))
		if err != nil {
			return fmt.Errorf("insert project: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO project_members (project_id, user_id, role) VALUES ($1, $2, $3)`,
			p.ID, np.OwnerID, models.RoleAdmin); err != nil {
			return fmt.Errorf("insert owner membership: %w", err)
		}

		for i, name := range models.DefaultSectionNames {
			s, err := scanSection(tx.QueryRow(ctx, `
				INSERT INTO sections AS s (project_id, name, position) VALUES ($1, $2, $3)
				RETURNING `+sectionColumns, p.ID, name, i))
			if err != nil {
				return fmt.Errorf("insert default section %q: %w", name, err)
			}
			p.Sections = append(p.Sections, *s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.MemberCount = 1
	return p, nil
}

func (r *ProjectRepository) UpdateProject(ctx context.Context, id uuid.UUID, patch models.ProjectPatch) (*models.Project, error) {
	var set setBuilder
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.Description.Set {
		set.add("description", patch.Description.Ptr())
	}
	if patch.Color != nil {
		set.add("color", *patch.Color)
	}
	if patch.Icon.Set {
		set.add("icon", patch.Icon.Ptr())
	}
	if patch.Status != nil {
		set.add("status", *patch.Status)
	}
	if patch.ViewType != nil {
		set.add("view_type", *patch.ViewType)
	}
	if patch.StartDate.Set {
		set.add("start_date", dateArg(patch.StartDate))
	}
	if patch.DueDate.Set {
		set.add("due_date", dateArg(patch.DueDate))
	}
	set.addRaw("updated_at = NOW()")

	query, args := set.build("projects AS p", "p.id", id, projectColumns)
	p, err := scanProject(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("Project")
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (r *ProjectRepository) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db.Pool, "projects", id, "Project")
}

func (r *ProjectRepository) AddProjectMember(ctx context.Context, projectID, userID uuid.UUID, role models.Role) (*models.Member, error) {
	return addMember(ctx, r.db.Pool, "project_members", "project_id", projectID, userID, role)
}

func (r *ProjectRepository) RemoveProjectMember(ctx context.Context, projectID, userID uuid.UUID) error {
	return removeMember(ctx, r.db.Pool, "project_members", "project_id", projectID, userID)
}

// dateArg turns a nullable date into a query argument.
func dateArg(d models.Nullable[models.Date]) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Value.Time
	return &t
}
