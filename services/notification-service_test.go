package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-edwards/asana-clone-app-fullstack/config"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

func TestNotificationService_SkipsSelf(t *testing.T) {
	e := newEnv(t)
	me := uuid.New()

	e.notifier.Notify(context.Background(), me, me, models.NotifyTaskAssigned, uuid.New(), "self")
	assert.Empty(t, e.notifications.created)
}

func TestNotificationService_FailuresTripBreaker(t *testing.T) {
	store := &fakeNotifications{fail: true}
	breaker := NewBreaker("notifications-trip", config.BreakerConfig{Timeout: time.Minute, MaxFailures: 2})
	svc := NewNotificationService(store, breaker, time.Second)

	for i := 0; i < 3; i++ {
		svc.Notify(context.Background(), uuid.New(), uuid.New(), models.NotifyTaskAssigned, uuid.New(), "x")
	}
	assert.Equal(t, gobreaker.StateOpen, breaker.State())

	_, err := svc.List(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestActivityService_RecordAndLimit(t *testing.T) {
	e := newEnv(t)
	projectID, actor, taskID := uuid.New(), uuid.New(), uuid.New()

	e.activity.Record(context.Background(), Entry{ProjectID: projectID, ActorID: actor, Type: models.ActivityCreateTask, TaskID: taskID})
	require.Len(t, e.activities.recorded, 1)
	got := e.activities.recorded[0]
	assert.Equal(t, projectID.String(), got.ProjectID)
	assert.Equal(t, taskID.String(), got.TaskID)
	assert.Empty(t, got.MemberID)

	assert.Equal(t, int64(50), ClampActivityLimit(0))
	assert.Equal(t, int64(200), ClampActivityLimit(5000))
	assert.Equal(t, int64(7), ClampActivityLimit(7))
}

func TestActivityService_FailureIsSwallowed(t *testing.T) {
	store := &fakeActivity{fail: true}
	svc := NewActivityService(store, NewBreaker("activity-fail", config.BreakerConfig{Timeout: time.Minute, MaxFailures: 5}), time.Second)

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), Entry{ProjectID: uuid.New(), Type: models.ActivityDeleteTask})
	})
}
