package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/venuehub/internal/app/system/credential"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a verified local user with the given password.
func (f *Fixtures) CreateUser(ctx context.Context, username, email, password, role string) models.User {
	f.t.Helper()
	u := f.newUser(username, email, role)
	u.IsVerified = true
	if err := credential.Set(&u, password); err != nil {
		f.t.Fatalf("failed to set password: %v", err)
	}
	f.insertUser(ctx, u)
	return u
}

// CreatePendingUser inserts an unverified local user holding token.
func (f *Fixtures) CreatePendingUser(ctx context.Context, username, email, password, token string, expires time.Time) models.User {
	f.t.Helper()
	u := f.newUser(username, email, models.RoleUser)
	if err := credential.Set(&u, password); err != nil {
		f.t.Fatalf("failed to set password: %v", err)
	}
	u.VerificationToken = &token
	exp := expires.UTC()
	u.VerificationTokenExpires = &exp
	f.insertUser(ctx, u)
	return u
}

// CreateFederatedUser inserts a verified user with only a Google identity.
func (f *Fixtures) CreateFederatedUser(ctx context.Context, email, externalID string) models.User {
	f.t.Helper()
	u := f.newUser(email, email, models.RoleUser)
	u.IsVerified = true
	u.ExternalID = &externalID
	f.insertUser(ctx, u)
	return u
}

func (f *Fixtures) newUser(username, email, role string) models.User {
	now := time.Now().UTC()
	return models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		UsernameCI: text.Fold(username),
		Email:      email,
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (f *Fixtures) insertUser(ctx context.Context, u models.User) {
	f.t.Helper()
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
}

// CreateItem creates a test item with the given name.
func (f *Fixtures) CreateItem(ctx context.Context, name string) models.Item {
	f.t.Helper()

	item := models.Item{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		ShortDetail: "A place worth visiting",
		Latitude:    13.75,
		Longitude:   100.49,
		Category:    "temple",
		SpecialDate: models.SpecialDate{Day: 13, Month: 4},
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("items").InsertOne(ctx, item); err != nil {
		f.t.Fatalf("failed to create test item: %v", err)
	}
	return item
}

// CreateHotel creates a test hotel with the given name.
func (f *Fixtures) CreateHotel(ctx context.Context, name string) models.Hotel {
	f.t.Helper()

	rating := 4.0
	hotel := models.Hotel{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Address:   "1 Riverside Road",
		Latitude:  13.72,
		Longitude: 100.51,
		Rating:    &rating,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("hotels").InsertOne(ctx, hotel); err != nil {
		f.t.Fatalf("failed to create test hotel: %v", err)
	}
	return hotel
}
