package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

type CommentRepository struct {
	db *DB
}

func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentSelect = `
	SELECT c.id, c.task_id, c.user_id, c.content, c.parent_id, c.created_at, c.updated_at,
	       u.name, u.email, u.avatar_url,
	       (SELECT COUNT(*) FROM comments r WHERE r.parent_id = c.id)
	FROM comments c
	JOIN users u ON u.id = c.user_id`

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.ParentID, &c.CreatedAt, &c.UpdatedAt,
		&c.UserName, &c.UserEmail, &c.UserAvatar, &c.ReplyCount)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectComments(rows pgx.Rows) ([]models.Comment, error) {
	defer rows.Close()
	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// ListComments returns a task's top-level comments, newest first, each with
// its replies oldest first.
func (r *CommentRepository) ListComments(ctx context.Context, taskID uuid.UUID) ([]models.Comment, error) {
	rows, err := r.db.Pool.Query(ctx, commentSelect+`
		WHERE c.task_id = $1 AND c.parent_id IS NULL
		ORDER BY c.created_at DESC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	top, err := collectComments(rows)
	if err != nil {
		return nil, err
	}

	rows, err = r.db.Pool.Query(ctx, commentSelect+`
		WHERE c.task_id = $1 AND c.parent_id IS NOT NULL
		ORDER BY c.created_at ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	replies, err := collectComments(rows)
	if err != nil {
		return nil, err
	}

	return nestReplies(top, replies), nil
}

// nestReplies attaches each reply to its parent, preserving reply order.
func nestReplies(top, replies []models.Comment) []models.Comment {
	index := make(map[uuid.UUID]int, len(top))
	for i := range top {
		top[i].Replies = []models.Comment{}
		index[top[i].ID] = i
	}
	for _, reply := range replies {
		if reply.ParentID == nil {
			continue
		}
		if i, ok := index[*reply.ParentID]; ok {
			top[i].Replies = append(top[i].Replies, reply)
		}
	}
	return top
}

func (r *CommentRepository) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(r.db.Pool.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("Comment")
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func (r *CommentRepository) CreateComment(ctx context.Context, taskID, userID uuid.UUID, content string, parentID *uuid.UUID) (*models.Comment, error) {
	var id uuid.UUID
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO comments (task_id, user_id, content, parent_id) VALUES ($1, $2, $3, $4)
		RETURNING id`, taskID, userID, content, parentID).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound("Task")
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return r.GetComment(ctx, id)
}

func (r *CommentRepository) UpdateComment(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE comments SET content = $1, updated_at = NOW() WHERE id = $2`, content, id)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.NotFound("Comment")
	}
	return r.GetComment(ctx, id)
}

func (r *CommentRepository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db.Pool, "comments", id, "Comment")
}
