package userstore

import (
	"context"
	"strings"

	"github.com/dalemusser/venuehub/internal/app/system/auth"
	"github.com/dalemusser/venuehub/internal/app/system/normalize"
	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchUser retrieves a user by ID and returns nil if the user is not found,
// not verified, or if any error occurs. This implements auth.UserFetcher.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":                1,
		"username":           1,
		"email":              1,
		"role":               1,
		"is_verified":        1,
		"profile.first_name": 1,
		"profile.last_name":  1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		return nil
	}

	// Verification can be revoked out of band; it takes effect on the next request.
	if !u.IsVerified {
		return nil
	}

	name := strings.TrimSpace(u.Profile.FirstName + " " + u.Profile.LastName)
	if name == "" {
		name = u.Username
	}
	return &auth.SessionUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Name:     name,
		Email:    u.Email,
		Role:     normalize.Role(u.Role),
	}
}
