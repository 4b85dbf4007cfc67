package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

// Membership helpers shared by workspace_members and project_members, which have the same shape.

func listMembers(ctx context.Context, q querier, query string, args ...any) ([]models.Member, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.Email, &m.Name, &m.AvatarURL, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func addMember(ctx context.Context, q querier, table, parentColumn string, parentID, userID uuid.UUID, role models.Role) (*models.Member, error) {
	var m models.Member
	err := q.QueryRow(ctx, fmt.Sprintf(`
		WITH inserted AS (
			INSERT INTO %s (%s, user_id, role) VALUES ($1, $2, $3)
			RETURNING user_id, role, joined_at
		)
		SELECT u.id, u.email, u.name, u.avatar_url, i.role, i.joined_at
		FROM inserted i JOIN users u ON u.id = i.user_id`, table, parentColumn),
		parentID, userID, role).Scan(&m.ID, &m.Email, &m.Name, &m.AvatarURL, &m.Role, &m.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.BadRequest("User is already a member")
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound("User")
		}
		return nil, fmt.Errorf("insert member: %w", err)
	}
	return &m, nil
}

func removeMember(ctx context.Context, q querier, table, parentColumn string, parentID, userID uuid.UUID) error {
	tag, err := q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND user_id = $2`, table, parentColumn), parentID, userID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("Member")
	}
	return nil
}

func deleteByID(ctx context.Context, q querier, table string, id uuid.UUID, what string) error {
	tag, err := q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(what)
	}
	return nil
}
