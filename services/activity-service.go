package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// ActivityService records and reads the project activity feed.
type ActivityService struct {
	store       ActivityStore
	breaker     *gobreaker.CircuitBreaker
	callTimeout time.Duration
}

func NewActivityService(store ActivityStore, breaker *gobreaker.CircuitBreaker, callTimeout time.Duration) *ActivityService {
	return &ActivityService{store: store, breaker: breaker, callTimeout: callTimeout}
}

// Entry is one activity to record. Zero ids are omitted.
type Entry struct {
	ProjectID uuid.UUID
	ActorID   uuid.UUID
	Type      models.ActivityType
	TaskID    uuid.UUID
	MemberID  uuid.UUID
	Details   string
}

// Record is best effort; failures are logged and swallowed.
func (s *ActivityService) Record(ctx context.Context, e Entry) {
	activity := &models.ProjectActivity{
		ProjectID:    e.ProjectID.String(),
		ActorID:      e.ActorID.String(),
		ActivityType: e.Type,
		Details:      e.Details,
		Timestamp:    time.Now().UTC(),
	}
	if e.TaskID != uuid.Nil {
		activity.TaskID = e.TaskID.String()
	}
	if e.MemberID != uuid.Nil {
		activity.MemberID = e.MemberID.String()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.callTimeout)
	defer cancel()

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.store.RecordActivity(ctx, activity)
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: ACTIVITY_RECORD_FAILED, Description: Activity %s for project %s dropped: %v", e.Type, e.ProjectID, err)
	}
}

// ClampActivityLimit applies the default and the ceiling to a requested page size.
func ClampActivityLimit(limit int) int64 {
	if limit <= 0 {
		return defaultActivityLimit
	}
	if limit > maxActivityLimit {
		return maxActivityLimit
	}
	return int64(limit)
}

func (s *ActivityService) List(ctx context.Context, projectID uuid.UUID, limit int) ([]models.ProjectActivity, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.store.ListActivities(ctx, projectID.String(), ClampActivityLimit(limit))
	})
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return result.([]models.ProjectActivity), nil
}

// NopActivityStore is used when no MongoDB URI is configured.
type NopActivityStore struct{}

func (NopActivityStore) RecordActivity(context.Context, *models.ProjectActivity) error {
	return nil
}

func (NopActivityStore) ListActivities(context.Context, string, int64) ([]models.ProjectActivity, error) {
	return []models.ProjectActivity{}, nil
}
