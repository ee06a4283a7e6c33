package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/projecthub/internal/models"
)

// MongoStore keeps the project activity log in MongoDB.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("activity")}
}

// EnsureIndexes creates the (project_id, created_at) index used by ListByProject.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo index: %w", err)
	}
	return nil
}

func (s *MongoStore) Record(ctx context.Context, a *models.Activity) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if _, err := s.col.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}

// ListByProject returns the newest events first.
func (s *MongoStore) ListByProject(ctx context.Context, projectID int64) ([]models.Activity, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(100)
	cur, err := s.col.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	docs := []models.Activity{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return docs, nil
}

// NopActivityLog is used when no MongoDB is configured.
type NopActivityLog struct{}

func (NopActivityLog) Record(context.Context, *models.Activity) error { return nil }

func (NopActivityLog) ListByProject(context.Context, int64) ([]models.Activity, error) {
	return []models.Activity{}, nil
}
