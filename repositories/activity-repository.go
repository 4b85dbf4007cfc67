package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alexander-edwards/asana-clone-app-fullstack/config"
	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
	"github.com/alexander-edwards/asana-clone-app-fullstack/models"
)

// ActivityRepo keeps the project activity feed in a MongoDB collection.
type ActivityRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewActivityRepo(ctx context.Context, cfg config.MongoConfig) (*ActivityRepo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	collection := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "projectId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create activity index: %w", err)
	}

	logging.Logger.Infof("Event ID: DB_COLLECTION_SET, Description: Using MongoDB collection: %s/%s", cfg.Database, cfg.Collection)
	return &ActivityRepo{client: client, collection: collection}, nil
}

func (r *ActivityRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *ActivityRepo) RecordActivity(ctx context.Context, activity *models.ProjectActivity) error {
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, activity); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityRepo) ListActivities(ctx context.Context, projectID string, limit int64) ([]models.ProjectActivity, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"projectId": projectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find activities: %w", err)
	}
	defer cursor.Close(ctx)

	activities := []models.ProjectActivity{}
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return activities, nil
}
