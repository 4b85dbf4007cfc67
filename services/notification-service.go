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

const notificationListLimit = 100

// NotificationService writes and reads per-user notifications. Writes are
// best effort: a failing store never fails the request that triggered them.
type NotificationService struct {
	store       NotificationStore
	breaker     *gobreaker.CircuitBreaker
	callTimeout time.Duration
}

func NewNotificationService(store NotificationStore, breaker *gobreaker.CircuitBreaker, callTimeout time.Duration) *NotificationService {
	return &NotificationService{store: store, breaker: breaker, callTimeout: callTimeout}
}

// Notify stores a notification for userID unless the actor is notifying themselves.
func (s *NotificationService) Notify(ctx context.Context, actorID, userID uuid.UUID, kind models.NotificationType, entityID uuid.UUID, message string) {
	if actorID == userID {
		return
	}

	n := &models.Notification{
		UserID:    userID,
		Type:      kind,
		Message:   message,
		EntityID:  entityID,
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.callTimeout)
	defer cancel()

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.store.CreateNotification(ctx, n)
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: NOTIFICATION_CREATE_FAILED, Description: Notification %s for user %s dropped: %v", kind, userID, err)
		return
	}
	logging.Logger.Debugf("Event ID: NOTIFICATION_CREATED, Description: Notification %s created for user %s", kind, userID)
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.store.ListNotifications(ctx, userID, notificationListLimit)
	})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return result.([]models.Notification), nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.store.MarkAsRead(ctx, userID, id)
	})
	return err
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.store.DeleteNotification(ctx, userID, id)
	})
	return err
}

// NopNotificationStore is used when no Cassandra hosts are configured.
type NopNotificationStore struct{}

func (NopNotificationStore) CreateNotification(context.Context, *models.Notification) error {
	return nil
}

func (NopNotificationStore) ListNotifications(context.Context, uuid.UUID, int) ([]models.Notification, error) {
	return []models.Notification{}, nil
}

func (NopNotificationStore) MarkAsRead(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (NopNotificationStore) DeleteNotification(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}
