// internal/app/store/hotels/hotelstore.go
package hotelstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("hotel not found")
	ErrInvalid  = errors.New("invalid hotel")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("hotels")}
}

// Create inserts a new Hotel. Name and address are required; a rating, when
// given, must lie in [0,5].
func (s *Store) Create(ctx context.Context, h models.Hotel) (models.Hotel, error) {
	h.Name = strings.TrimSpace(h.Name)
	h.Address = strings.TrimSpace(h.Address)
	if h.Name == "" {
		return models.Hotel{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if h.Address == "" {
		return models.Hotel{}, fmt.Errorf("%w: address is required", ErrInvalid)
	}
	if h.Rating != nil && (*h.Rating < 0 || *h.Rating > 5) {
		return models.Hotel{}, fmt.Errorf("%w: rating must be between 0 and 5", ErrInvalid)
	}

	h.ID = primitive.NewObjectID()
	h.NameCI = text.Fold(h.Name)
	h.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, h); err != nil {
		return models.Hotel{}, err
	}
	return h, nil
}

// GetByID returns a hotel or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Hotel, error) {
	var h models.Hotel
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&h)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Hotel{}, ErrNotFound
	}
	return h, err
}

// List returns all hotels ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Hotel, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	return s.find(ctx, bson.M{}, opts)
}

// GetByIDs returns the hotels whose ids are listed, ordered by name.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Hotel, error) {
	if len(ids) == 0 {
		return []models.Hotel{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Hotel, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Hotel{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
