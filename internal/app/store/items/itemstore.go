// internal/app/store/items/itemstore.go
package itemstore

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
	ErrNotFound = errors.New("item not found")
	ErrInvalid  = errors.New("invalid item")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("items")}
}

// Validate checks the fields Create requires. Errors wrap ErrInvalid.
func Validate(it models.Item) error {
	if strings.TrimSpace(it.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if it.Latitude < -90 || it.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalid)
	}
	if it.Longitude < -180 || it.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalid)
	}
	sd := it.SpecialDate
	if sd != (models.SpecialDate{}) {
		if sd.Month < 1 || sd.Month > 12 || sd.Day < 1 || sd.Day > daysIn(sd.Month) {
			return fmt.Errorf("%w: special date is not a valid day and month", ErrInvalid)
		}
	}
	return nil
}

// daysIn allows Feb 29 since a special date recurs across years.
func daysIn(month int) int {
	return time.Date(2024, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Create inserts a new Item, setting NameCI and CreatedAt.
func (s *Store) Create(ctx context.Context, it models.Item) (models.Item, error) {
	it.Name = strings.TrimSpace(it.Name)
	it.Category = strings.TrimSpace(it.Category)
	if err := Validate(it); err != nil {
		return models.Item{}, err
	}
	it.ID = primitive.NewObjectID()
	it.NameCI = text.Fold(it.Name)
	it.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, it); err != nil {
		return models.Item{}, err
	}
	return it, nil
}

// Patch lists the fields Update may change. Nil fields are left alone.
type Patch struct {
	Name    *string
	Detail  *string
	Address *string
	Images  *[]string
}

// Update applies p to the item with id and returns the stored result.
// Returns ErrNotFound when no item has id, and an ErrInvalid error for a
// blank name or an empty patch.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch) (models.Item, error) {
	now := time.Now().UTC()
	set := bson.M{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return models.Item{}, fmt.Errorf("%w: name is required", ErrInvalid)
		}
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if p.Detail != nil {
		set["detail"] = *p.Detail
	}
	if p.Address != nil {
		set["address"] = *p.Address
	}
	if p.Images != nil {
		set["images"] = *p.Images
	}
	if len(set) == 0 {
		return models.Item{}, fmt.Errorf("%w: nothing to update", ErrInvalid)
	}
	set["updated_at"] = now

	var it models.Item
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&it)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Item{}, ErrNotFound
	}
	if err != nil {
		return models.Item{}, err
	}
	return it, nil
}

// GetByID returns an item or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Item, error) {
	var it models.Item
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&it)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Item{}, ErrNotFound
	}
	if err != nil {
		return models.Item{}, err
	}
	return it, nil
}

// Exists reports whether an item with id is stored.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

// List returns items ordered by name. An empty category returns all items.
func (s *Store) List(ctx context.Context, category string) ([]models.Item, error) {
	filter := bson.M{}
	if c := strings.TrimSpace(category); c != "" {
		filter["category"] = c
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Item{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDs returns the items whose ids are listed. Missing ids are skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Item, error) {
	if len(ids) == 0 {
		return []models.Item{}, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Item{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
