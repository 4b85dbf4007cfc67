package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

type SectionRepository struct {
	db *DB
}

func NewSectionRepository(db *DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = `s.id, s.project_id, s.name, s.position, s.created_at, s.updated_at`

func scanSection(row pgx.Row, extra ...any) (*models.Section, error) {
	var s models.Section
	dest := append([]any{&s.ID, &s.ProjectID, &s.Name, &s.Position, &s.CreatedAt, &s.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SectionRepository) ListSections(ctx context.Context, projectID uuid.UUID) ([]models.Section, error) {
	return listSections(ctx, r.db.Pool, projectID)
}

func listSections(ctx context.Context, q querier, projectID uuid.UUID) ([]models.Section, error) {
	rows, err := q.Query(ctx, `
		SELECT `+sectionColumns+`,
		       (SELECT COUNT(*) FROM tasks t WHERE t.section_id = s.id),
		       (SELECT COUNT(*) FROM tasks t WHERE t.section_id = s.id AND t.status = 'completed')
		FROM sections s
		WHERE s.project_id = $1
		ORDER BY s.position`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	sections := []models.Section{}
	for rows.Next() {
		var total, completed int
		s, err := scanSection(rows, &total, &completed)
		if err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		s.TaskCount, s.CompletedTaskCount = total, completed
		sections = append(sections, *s)
	}
	return sections, rows.Err()
}

func (r *SectionRepository) GetSection(ctx context.Context, id uuid.UUID) (*models.Section, error) {
	return getSection(ctx, r.db.Pool, id)
}

func getSection(ctx context.Context, q querier, id uuid.UUID) (*models.Section, error) {
	s, err := scanSection(q.QueryRow(ctx, `SELECT `+sectionColumns+` FROM sections s WHERE s.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("Section")
		}
		return nil, fmt.Errorf("get section: %w", err)
	}
	return s, nil
}

// CreateSection appends a section after the project's last one.
func (r *SectionRepository) CreateSection(ctx context.Context, projectID uuid.UUID, name string) (*models.Section, error) {
	s, err := scanSection(r.db.Pool.QueryRow(ctx, `
		INSERT INTO sections AS s (project_id, name, position)
		SELECT $1, $2, COALESCE(MAX(position), -1) + 1 FROM sections WHERE project_id = $1
		RETURNING `+sectionColumns, projectID, name))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound("Project")
		}
		return nil, fmt.Errorf("insert section: %w", err)
	}
	return s, nil
}

// ReorderShift describes how siblings move when one section changes position.
// Siblings with positions in [From, To] are shifted by Delta.
type ReorderShift struct {
	From, To, Delta int
}

// PlanReorder clamps target into [0, count-1] and returns the final position
// and the sibling shift, if any.
func PlanReorder(current, target, count int) (int, *ReorderShift) {
	if target < 0 {
		target = 0
	}
	if count > 0 && target > count-1 {
		target = count - 1
	}
	switch {
	case target < current:
		return target, &ReorderShift{From: target, To: current - 1, Delta: 1}
	case target > current:
		return target, &ReorderShift{From: current + 1, To: target, Delta: -1}
	default:
		return target, nil
	}
}

// UpdateSection renames and/or moves a section. A move shifts the siblings
// between the old and new position and writes the new position in one transaction.
func (r *SectionRepository) UpdateSection(ctx context.Context, id uuid.UUID, patch models.SectionPatch) (*models.Section, error) {
	var s *models.Section
	err := r.db.inTx(ctx, func(tx pgx.Tx) error {
		current, err := getSection(ctx, tx, id)
		if err != nil {
			return err
		}

		var set setBuilder
		if patch.Name != nil {
			set.add("name", *patch.Name)
		}

		if patch.Position != nil {
			var count int
			if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM sections WHERE project_id = $1`, current.ProjectID).Scan(&count); err != nil {
				return fmt.Errorf("count sections: %w", err)
			}

			target, shift := PlanReorder(current.Position, *patch.Position, count)
			if shift != nil {
				if _, err := tx.Exec(ctx, `
					UPDATE sections SET position = position + $1, updated_at = NOW()
					WHERE project_id = $2 AND id <> $3 AND position BETWEEN $4 AND $5`,
					shift.Delta, current.ProjectID, id, shift.From, shift.To); err != nil {
					return fmt.Errorf("shift sibling sections: %w", err)
				}
				set.add("position", target)
			}
		}
		set.addRaw("updated_at = NOW()")

		query, args := set.build("sections AS s", "s.id", id, sectionColumns)
		s, err = scanSection(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return fmt.Errorf("update section: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// DeleteSection disposes of the section's tasks, deletes it and closes the
// gap in sibling positions, all in one transaction.
func (r *SectionRepository) DeleteSection(ctx context.Context, id uuid.UUID, disposition models.TaskDisposition) error {
	return r.db.inTx(ctx, func(tx pgx.Tx) error {
		section, err := getSection(ctx, tx, id)
		if err != nil {
			return err
		}

		switch disposition.Mode {
		case models.TasksDelete:
			if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE section_id = $1`, id); err != nil {
				return fmt.Errorf("delete section tasks: %w", err)
			}
		case models.TasksMove:
			if disposition.Target == id {
				return apperrors.BadRequest("Cannot move tasks into the section being deleted")
			}
			target, err := getSection(ctx, tx, disposition.Target)
			if err != nil {
				if apperrors.IsCode(err, apperrors.CodeNotFound) {
					return apperrors.BadRequest("Target section not found")
				}
				return err
			}
			if target.ProjectID != section.ProjectID {
				return apperrors.BadRequest("Target section belongs to another project")
			}
			if err := appendTasks(ctx, tx, section.ProjectID, id, &target.ID); err != nil {
				return err
			}
		default:
			if err := appendTasks(ctx, tx, section.ProjectID, id, nil); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM sections WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete section: %w", err)
		}
		if _, err := tx.Exec(ctx, `
			UPDATE sections SET position = position - 1, updated_at = NOW()
			WHERE project_id = $1 AND position > $2`, section.ProjectID, section.Position); err != nil {
			return fmt.Errorf("renumber sections: %w", err)
		}
		return nil
	})
}

// appendTasks moves every task of section from onto the end of target
// (nil meaning the project's unsectioned tasks), keeping their relative order.
func appendTasks(ctx context.Context, tx pgx.Tx, projectID, from uuid.UUID, target *uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		WITH base AS (
			SELECT COALESCE(MAX(position), -1) AS top
			FROM tasks
			WHERE project_id = $1 AND section_id IS NOT DISTINCT FROM $3
		), moved AS (
			SELECT id, ROW_NUMBER() OVER (ORDER BY position, created_at) AS rn
			FROM tasks
			WHERE section_id = $2
		)
		UPDATE tasks t
		SET section_id = $3, position = base.top + moved.rn, updated_at = NOW()
		FROM base, moved
		WHERE t.id = moved.id`, projectID, from, target)
	if err != nil {
		return fmt.Errorf("move section tasks: %w", err)
	}
	return nil
}
