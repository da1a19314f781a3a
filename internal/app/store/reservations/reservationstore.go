// internal/app/store/reservations/reservationstore.go
package reservationstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("reservation not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reservations")}
}

// Create persists a reservation. It assigns the id and booking reference,
// forces status to pending and stamps reservation_date. Validation of the
// request is the caller's job.
func (s *Store) Create(ctx context.Context, r models.Reservation) (models.Reservation, error) {
	r.ID = primitive.NewObjectID()
	r.Reference = uuid.NewString()
	r.Status = models.ReservationPending
	r.ReservationDate = time.Now().UTC()
	r.StartDate = r.StartDate.UTC()
	r.EndDate = r.EndDate.UTC()

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Reservation{}, err
	}
	return r, nil
}

// GetByReference returns a reservation or ErrNotFound.
func (s *Store) GetByReference(ctx context.Context, ref string) (models.Reservation, error) {
	var r models.Reservation
	err := s.c.FindOne(ctx, bson.M{"reference": ref}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Reservation{}, ErrNotFound
	}
	return r, err
}

// ListByUser returns a user's reservations, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "reservation_date", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Reservation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByItem returns how many reservations reference an item.
func (s *Store) CountByItem(ctx context.Context, itemID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"item_id": itemID})
}
