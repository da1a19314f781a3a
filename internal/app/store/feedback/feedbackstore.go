// internal/app/store/feedback/feedbackstore.go
package feedbackstore

import (
	"context"
	"time"

	"github.com/dalemusser/venuehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("feedback")}
}

// Create stores a feedback note.
func (s *Store) Create(ctx context.Context, text, ip string) (models.Feedback, error) {
	f := models.Feedback{
		ID:        primitive.NewObjectID(),
		Text:      text,
		IP:        ip,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.Feedback{}, err
	}
	return f, nil
}

// Recent returns the newest notes.
func (s *Store) Recent(ctx context.Context, limit int64) ([]models.Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Feedback{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
