package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskSelect = `
	SELECT t.id, t.project_id, t.section_id, t.title, t.description, t.status, t.priority,
	       t.due_date, t.start_date, t.creator_id, t.position, t.tags, t.custom_fields,
	       t.completed_at, t.created_at, t.updated_at,
	       u.name, s.name, p.name,
	       COALESCE((
	           SELECT JSON_AGG(JSON_BUILD_OBJECT(
	                      'id', au.id, 'email', au.email, 'name', au.name,
	                      'avatar_url', au.avatar_url, 'assigned_at', ta.assigned_at)
	                  ORDER BY ta.assigned_at)
	           FROM task_assignees ta JOIN users au ON au.id = ta.user_id
	           WHERE ta.task_id = t.id), '[]'),
	       COALESCE((
	           SELECT JSON_AGG(JSON_BUILD_OBJECT('id', dt.id, 'title', dt.title, 'status', dt.status)
	                  ORDER BY td.created_at)
	           FROM task_dependencies td JOIN tasks dt ON dt.id = td.depends_on_task_id
	           WHERE td.task_id = t.id), '[]'),
	       (SELECT COUNT(*) FROM comments c WHERE c.task_id = t.id)
	FROM tasks t
	JOIN users u ON u.id = t.creator_id
	JOIN projects p ON p.id = t.project_id
	LEFT JOIN sections s ON s.id = t.section_id`

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.ProjectID, &t.SectionID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.DueDate, &t.StartDate, &t.CreatorID, &t.Position, &t.Tags, &t.CustomFields,
		&t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
		&t.CreatorName, &t.SectionName, &t.ProjectName,
		&t.Assignees, &t.Dependencies, &t.CommentsCount)
	if err != nil {
		return nil, err
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.CustomFields == nil {
		t.CustomFields = map[string]any{}
	}
	return &t, nil
}

// ListTasks returns a project's tasks matching filter, ordered by position then newest.
func (r *TaskRepository) ListTasks(ctx context.Context, projectID uuid.UUID, filter models.TaskFilter) ([]models.Task, error) {
	where := []string{"t.project_id = $1"}
	args := []any{projectID}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.SectionID != nil {
		where = append(where, "t.section_id = "+next(*filter.SectionID))
	}
	if filter.Status != nil {
		where = append(where, "t.status = "+next(*filter.Status))
	}
	if filter.AssigneeID != nil {
		where = append(where, "EXISTS (SELECT 1 FROM task_assignees fa WHERE fa.task_id = t.id AND fa.user_id = "+next(*filter.AssigneeID)+")")
	}
	if filter.Search != "" {
		p := next("%" + escapeLike(filter.Search) + "%")
		where = append(where, "(t.title ILIKE "+p+" OR t.description ILIKE "+p+")")
	}

	query := taskSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY t.position ASC, t.created_at DESC"
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return getTask(ctx, r.db.Pool, id)
}

func getTask(ctx context.Context, q querier, id uuid.UUID) (*models.Task, error) {
	t, err := scanTask(q.QueryRow(ctx, taskSelect+" WHERE t.id = $1", id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("Task")
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// CreateTask inserts the task at the end of its section (or the project's
// unsectioned tasks) together with its assignees.
func (r *TaskRepository) CreateTask(ctx context.Context, nt models.NewTask) (*models.Task, error) {
	var created *models.Task
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		tags := nt.Tags
		if tags == nil {
			tags = []string{}
		}
		fields := nt.CustomFields
		if fields == nil {
			fields = map[string]any{}
		}

		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO tasks (project_id, section_id, title, description, status, priority, due_date, start_date,
			                   creator_id, position, tags, custom_fields, completed_at)
			SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE(MAX(position), -1) + 1, $10, $11, $12
			FROM tasks
			WHERE project_id = $1 AND section_id IS NOT DISTINCT FROM $2
			RETURNING id`,
			nt.ProjectID, nt.SectionID, nt.Title, nt.Description, nt.Status, nt.Priority, nt.DueDate, nt.StartDate,
			nt.CreatorID, tags, fields, nt.CompletedAt).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}

		for _, userID := range nt.AssigneeIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO task_assignees (task_id, user_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING`, id, userID); err != nil {
				if isForeignKeyViolation(err) {
					return apperrors.NotFound("Assignee")
				}
				return fmt.Errorf("insert assignee: %w", err)
			}
		}

		created, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTask applies patch. Moving a task to another section without an
// explicit position appends it to the end of the new section.
func (r *TaskRepository) UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	var set setBuilder
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Description.Set {
		set.add("description", patch.Description.Ptr())
	}
	if patch.Status != nil {
		set.add("status", *patch.Status)
	}
	if patch.Priority != nil {
		set.add("priority", *patch.Priority)
	}
	if patch.DueDate.Set {
		set.add("due_date", dateArg(patch.DueDate))
	}
	if patch.StartDate.Set {
		set.add("start_date", dateArg(patch.StartDate))
	}
	if patch.SectionID.Set {
		sectionID := patch.SectionID.Ptr()
		set.add("section_id", sectionID)
		if patch.Position == nil {
			set.addExpr("position", `CASE WHEN tasks.section_id IS NOT DISTINCT FROM %[1]s::uuid THEN tasks.position ELSE (
				SELECT COALESCE(MAX(o.position), -1) + 1 FROM tasks o
				WHERE o.project_id = tasks.project_id AND o.section_id IS NOT DISTINCT FROM %[1]s::uuid AND o.id <> tasks.id) END`, sectionID)
		}
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		set.add("tags", tags)
	}
	if patch.CustomFields != nil {
		fields := *patch.CustomFields
		if fields == nil {
			fields = map[string]any{}
		}
		set.add("custom_fields", fields)
	}
	if patch.Position != nil {
		set.add("position", *patch.Position)
	}
	if patch.CompletedAt.Set {
		set.add("completed_at", patch.CompletedAt.Ptr())
	}
	set.addRaw("updated_at = NOW()")

	var updated *models.Task
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		query, args := set.build("tasks", "id", id, "")
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound("Task")
		}
		updated, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *TaskRepository) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db.Pool, "tasks", id, "Task")
}

func (r *TaskRepository) AddAssignee(ctx context.Context, taskID, userID uuid.UUID) (*models.Assignee, error) {
	var a models.Assignee
	var assignedAt time.Time
	err := r.db.Pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO task_assignees (task_id, user_id) VALUES ($1, $2)
			RETURNING user_id, assigned_at
		)
		SELECT u.id, u.email, u.name, u.avatar_url, i.assigned_at
		FROM inserted i JOIN users u ON u.id = i.user_id`, taskID, userID).
		Scan(&a.ID, &a.Email, &a.Name, &a.AvatarURL, &assignedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.BadRequest("User already assigned to this task")
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound("User")
		}
		return nil, fmt.Errorf("insert assignee: %w", err)
	}
	a.AssignedAt = &assignedAt
	return &a, nil
}

func (r *TaskRepository) RemoveAssignee(ctx context.Context, taskID, userID uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM task_assignees WHERE task_id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return fmt.Errorf("delete assignee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Assignment")
	}
	return nil
}

// AddDependency records that taskID depends on dependsOnID, refusing edges
// that would close a cycle.
func (r *TaskRepository) AddDependency(ctx context.Context, taskID, dependsOnID uuid.UUID) error {
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		var cycle bool
		err := tx.QueryRow(ctx, `
			WITH RECURSIVE upstream(id) AS (
				SELECT depends_on_task_id FROM task_dependencies WHERE task_id = $1
				UNION
				SELECT td.depends_on_task_id
				FROM task_dependencies td JOIN upstream u ON td.task_id = u.id
			)
			SELECT EXISTS (SELECT 1 FROM upstream WHERE id = $2)`, dependsOnID, taskID).Scan(&cycle)
		if err != nil {
			return fmt.Errorf("check dependency cycle: %w", err)
		}
		if cycle {
			return apperrors.BadRequest("Dependency would create a cycle")
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO task_dependencies (task_id, depends_on_task_id) VALUES ($1, $2)`,
			taskID, dependsOnID); err != nil {
			if isUniqueViolation(err) {
				return apperrors.Conflict("Dependency already exists")
			}
			return fmt.Errorf("insert dependency: %w", err)
		}
		return nil
	})
}

func (r *TaskRepository) RemoveDependency(ctx context.Context, taskID, dependsOnID uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM task_dependencies WHERE task_id = $1 AND depends_on_task_id = $2`, taskID, dependsOnID)
	if err != nil {
		return fmt.Errorf("delete dependency: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Dependency")
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
