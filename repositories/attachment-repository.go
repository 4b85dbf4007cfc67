package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

type AttachmentRepository struct {
	db *DB
}

func NewAttachmentRepository(db *DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

const attachmentColumns = `id, task_id, user_id, file_name, file_path, file_size, mime_type, created_at`

func scanAttachment(row pgx.Row) (*models.Attachment, error) {
	var a models.Attachment
	if err := row.Scan(&a.ID, &a.TaskID, &a.UserID, &a.FileName, &a.FilePath, &a.FileSize, &a.MimeType, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.URL = "/uploads/" + a.FilePath
	return &a, nil
}

func (r *AttachmentRepository) CreateAttachment(ctx context.Context, a models.Attachment) (*models.Attachment, error) {
	created, err := scanAttachment(r.db.Pool.QueryRow(ctx, `
		INSERT INTO attachments (task_id, user_id, file_name, file_path, file_size, mime_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+attachmentColumns, a.TaskID, a.UserID, a.FileName, a.FilePath, a.FileSize, a.MimeType))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound("Task")
		}
		return nil, fmt.Errorf("insert attachment: %w", err)
	}
	return created, nil
}

func (r *AttachmentRepository) ListAttachments(ctx context.Context, taskID uuid.UUID) ([]models.Attachment, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+attachmentColumns+` FROM attachments WHERE task_id = $1 ORDER BY created_at`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	attachments := []models.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		attachments = append(attachments, *a)
	}
	return attachments, rows.Err()
}

func (r *AttachmentRepository) GetAttachment(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	a, err := scanAttachment(r.db.Pool.QueryRow(ctx, `SELECT `+attachmentColumns+` FROM attachments WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound("Attachment")
		}
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return a, nil
}

func (r *AttachmentRepository) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db.Pool, "attachments", id, "Attachment")
}
