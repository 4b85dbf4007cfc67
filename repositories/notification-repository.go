package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/apperrors"
	"github.com/alexander-edwards/asana-clone-app-fullstack/config"
	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

// NotificationRepo stores per-user notifications in Cassandra, partitioned by
// user and clustered newest first by a time-based id.
type NotificationRepo struct {
	session *gocql.Session
}

func NewNotificationRepo(cfg config.CassandraConfig) (*NotificationRepo, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = "system"
	cluster.Timeout = 5 * time.Second
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to cassandra: %w", err)
	}

	err = session.Query(fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s
		 WITH replication = {
		     'class': 'SimpleStrategy',
		     'replication_factor': 1
		 }`, cfg.Keyspace)).Exec()
	session.Close()
	if err != nil {
		return nil, fmt.Errorf("create keyspace %s: %w", cfg.Keyspace, err)
	}

	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to keyspace %s: %w", cfg.Keyspace, err)
	}

	logging.Logger.Infof("Event ID: CASSANDRA_CONNECTED, Description: Connected to Cassandra keyspace %s", cfg.Keyspace)
	return &NotificationRepo{session: session}, nil
}

func (nr *NotificationRepo) Close() {
	nr.session.Close()
	logging.Logger.Info("Event ID: CASSANDRA_CLOSED, Description: Cassandra session closed")
}

func (nr *NotificationRepo) CreateTable() error {
	err := nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			user_id UUID,
			id TIMEUUID,
			type TEXT,
			message TEXT,
			entity_id UUID,
			is_read BOOLEAN,
			created_at TIMESTAMP,
			PRIMARY KEY ((user_id), id)
		) WITH CLUSTERING ORDER BY (id DESC)`).Exec()
	if err != nil {
		return fmt.Errorf("create notifications table: %w", err)
	}
	return nil
}

func (nr *NotificationRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	id := gocql.TimeUUID()
	n.ID = uuid.UUID(id)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = id.Time()
	}

	err := nr.session.Query(
		`INSERT INTO notifications (user_id, id, type, message, entity_id, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		gocql.UUID(n.UserID), id, string(n.Type), n.Message, gocql.UUID(n.EntityID), n.IsRead, n.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (nr *NotificationRepo) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	iter := nr.session.Query(
		`SELECT id, type, message, entity_id, is_read, created_at
		 FROM notifications WHERE user_id = ? LIMIT ?`,
		gocql.UUID(userID), limit,
	).WithContext(ctx).Iter()

	notifications := []models.Notification{}
	var (
		id, entityID gocql.UUID
		kind, msg    string
		isRead       bool
		createdAt    time.Time
	)
	for iter.Scan(&id, &kind, &msg, &entityID, &isRead, &createdAt) {
		notifications = append(notifications, models.Notification{
			ID:        uuid.UUID(id),
			UserID:    userID,
			Type:      models.NotificationType(kind),
			Message:   msg,
			EntityID:  uuid.UUID(entityID),
			IsRead:    isRead,
			CreatedAt: createdAt,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func (nr *NotificationRepo) exists(ctx context.Context, userID, id uuid.UUID) error {
	var found gocql.UUID
	err := nr.session.Query(`SELECT id FROM notifications WHERE user_id = ? AND id = ?`,
		gocql.UUID(userID), gocql.UUID(id)).WithContext(ctx).Scan(&found)
	if errors.Is(err, gocql.ErrNotFound) {
		return apperrors.NotFound("Notification")
	}
	if err != nil {
		return fmt.Errorf("lookup notification: %w", err)
	}
	return nil
}

func (nr *NotificationRepo) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	if err := nr.exists(ctx, userID, id); err != nil {
		return err
	}
	err := nr.session.Query(`UPDATE notifications SET is_read = true WHERE user_id = ? AND id = ?`,
		gocql.UUID(userID), gocql.UUID(id)).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (nr *NotificationRepo) DeleteNotification(ctx context.Context, userID, id uuid.UUID) error {
	if err := nr.exists(ctx, userID, id); err != nil {
		return err
	}
	err := nr.session.Query(`DELETE FROM notifications WHERE user_id = ? AND id = ?`,
		gocql.UUID(userID), gocql.UUID(id)).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}
