package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

const defaultMimeType = "application/octet-stream"

// file_name is VARCHAR(255) and the stored name adds a uuid prefix.
const (
	maxFileNameLength = 200
	maxExtLength      = 16
)

// AttachmentService stores uploaded files on disk under dir and their
// metadata in the attachment store.
type AttachmentService struct {
	attachments AttachmentStore
	tasks       TaskStore
	auth        *Authorizer
	activity    *ActivityService
	dir         string
	maxSize     int64
}

func NewAttachmentService(attachments AttachmentStore, tasks TaskStore, auth *Authorizer, activity *ActivityService, dir string, maxSize int64) *AttachmentService {
	return &AttachmentService{
		attachments: attachments,
		tasks:       tasks,
		auth:        auth,
		activity:    activity,
		dir:         dir,
		maxSize:     maxSize,
	}
}

type Upload struct {
	FileName string
	MimeType string
	Content  io.Reader
}

func (s *AttachmentService) Upload(ctx context.Context, userID, taskID uuid.UUID, up Upload) (*models.Attachment, error) {
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.auth.RequireProject(ctx, task.ProjectID, userID); err != nil {
		return nil, err
	}

	name := sanitizeFileName(up.FileName)
	rel := path.Join(taskID.String(), uuid.NewString()+"_"+name)
	full := filepath.Join(s.dir, filepath.FromSlash(rel))

	size, err := s.save(full, up.Content)
	if err != nil {
		return nil, err
	}

	mime := up.MimeType
	if mime == "" {
		mime = defaultMimeType
	}
	attachment, err := s.attachments.CreateAttachment(ctx, models.Attachment{
		TaskID:   taskID,
		UserID:   userID,
		FileName: name,
		FilePath: rel,
		FileSize: size,
		MimeType: mime,
	})
	if err != nil {
		s.removeFile(full)
		return nil, err
	}

	s.activity.Record(ctx, Entry{ProjectID: task.ProjectID, ActorID: userID, Type: models.ActivityAddAttachment, TaskID: taskID, Details: name})
	return attachment, nil
}

// Delete is allowed for the uploader and project admins. The file goes with the row.
func (s *AttachmentService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	attachment, err := s.attachments.GetAttachment(ctx, id)
	if err != nil {
		return err
	}
	if attachment.UserID != userID {
		task, err := s.tasks.GetTask(ctx, attachment.TaskID)
		if err != nil {
			return err
		}
		if _, err := s.auth.RequireProjectAdmin(ctx, task.ProjectID, userID); err != nil {
			return err
		}
	}

	if err := s.attachments.DeleteAttachment(ctx, id); err != nil {
		return err
	}
	s.removeFile(filepath.Join(s.dir, filepath.FromSlash(attachment.FilePath)))
	return nil
}

func (s *AttachmentService) save(full string, content io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("create upload directory: %w", err)
	}
	dst, err := os.Create(full)
	if err != nil {
		return 0, fmt.Errorf("create upload file: %w", err)
	}

	written, err := io.Copy(dst, io.LimitReader(content, s.maxSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		s.removeFile(full)
		return 0, fmt.Errorf("write upload file: %w", err)
	}
	if written > s.maxSize {
		s.removeFile(full)
		return 0, apperrors.BadRequest("File exceeds the %d byte limit", s.maxSize)
	}
	return written, nil
}

func (s *AttachmentService) removeFile(full string) {
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Logger.Warnf("Event ID: ATTACHMENT_FILE_REMOVE_FAILED, Description: Could not remove %s: %v", full, err)
	}
}

// sanitizeFileName keeps the base name and drops characters that are unsafe in paths.
func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '/', r == ':', r == '*', r == '?', r == '"', r == '<', r == '>', r == '|':
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return truncateFileName(name, maxFileNameLength)
}

// truncateFileName shortens name to at most maxLen bytes on a rune boundary,
// keeping a short extension intact.
func truncateFileName(name string, maxLen int) string {
	if len(name) <= maxLen {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) > maxExtLength {
		ext = ""
	}
	base := strings.TrimSuffix(name, ext)
	limit := maxLen - len(ext)
	cut := limit
	for cut > 0 && !utf8.RuneStart(base[cut]) {
		cut--
	}
	return base[:cut] + ext
}
