package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/venuehub/internal/app/system/validators"
	"github.com/dalemusser/venuehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{
		"users", "items", "hotels", "reservations", "feedback",
		"sessions", "oauth_states", "audit_events",
	} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestValidators(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	now := time.Now().UTC()
	tests := []struct {
		name    string
		coll    string
		doc     bson.M
		wantErr bool
	}{
		{
			name: "valid user",
			coll: "users",
			doc: bson.M{
				"username": "ada", "username_ci": "ada", "email": "ada@example.com",
				"role": "user", "is_verified": false, "profile": bson.M{},
			},
		},
		{
			name:    "user missing required fields",
			coll:    "users",
			doc:     bson.M{"username": "ada"},
			wantErr: true,
		},
		{
			name: "user with unknown role",
			coll: "users",
			doc: bson.M{
				"username": "ada", "username_ci": "ada", "email": "ada@example.com",
				"role": "superuser", "is_verified": true,
			},
			wantErr: true,
		},
		{
			name: "valid item",
			coll: "items",
			doc: bson.M{
				"name": "Old Town", "name_ci": "old town", "latitude": 40.7, "longitude": -74.0,
				"special_date": bson.M{"day": int32(14), "month": int32(7)},
			},
		},
		{
			name:    "item latitude out of range",
			coll:    "items",
			doc:     bson.M{"name": "Pole", "name_ci": "pole", "latitude": 91.0, "longitude": 0.0},
			wantErr: true,
		},
		{
			name:    "item with blank name",
			coll:    "items",
			doc:     bson.M{"name": "   ", "name_ci": "x", "latitude": 0.0, "longitude": 0.0},
			wantErr: true,
		},
		{
			name:    "item with bad month",
			coll:    "items",
			doc:     bson.M{"name": "Fair", "name_ci": "fair", "latitude": 0.0, "longitude": 0.0, "special_date": bson.M{"day": int32(1), "month": int32(13)}},
			wantErr: true,
		},
		{
			name: "valid hotel",
			coll: "hotels",
			doc:  bson.M{"name": "Grand", "name_ci": "grand", "address": "1 Main St", "rating": 4.5},
		},
		{
			name:    "hotel rating above five",
			coll:    "hotels",
			doc:     bson.M{"name": "Grand", "name_ci": "grand", "address": "1 Main St", "rating": 6.0},
			wantErr: true,
		},
		{
			name: "valid reservation",
			coll: "reservations",
			doc: bson.M{
				"reference": "VH-ABC123", "user_id": primitive.NewObjectID(), "item_id": primitive.NewObjectID(),
				"reservation_date": now, "start_date": now, "end_date": now.Add(24 * time.Hour),
				"status": "pending", "number_of_persons": int32(2),
			},
		},
		{
			name: "reservation with unknown status",
			coll: "reservations",
			doc: bson.M{
				"reference": "VH-ABC124", "user_id": primitive.NewObjectID(), "item_id": primitive.NewObjectID(),
				"reservation_date": now, "start_date": now, "end_date": now,
				"status": "lost", "number_of_persons": int32(2),
			},
			wantErr: true,
		},
		{
			name: "reservation with negative persons",
			coll: "reservations",
			doc: bson.M{
				"reference": "VH-ABC125", "user_id": primitive.NewObjectID(), "item_id": primitive.NewObjectID(),
				"reservation_date": now, "start_date": now, "end_date": now,
				"status": "pending", "number_of_persons": int32(-1),
			},
			wantErr: true,
		},
		{
			name: "valid feedback",
			coll: "feedback",
			doc:  bson.M{"text": "Lovely trip", "created_at": now},
		},
		{
			name:    "empty feedback",
			coll:    "feedback",
			doc:     bson.M{"text": "", "created_at": now},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc)
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error inserting into %s", tt.coll)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error inserting into %s: %v", tt.coll, err)
			}
		})
	}
}
