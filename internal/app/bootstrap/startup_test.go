package bootstrap

import (
	"testing"

	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/dalemusser/venuehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "boss", "boss@example.com", "pw-123456", models.RoleOfficer)

	deps := DBDeps{MongoDatabase: db}
	if err := ensureAdmin(ctx, deps, "Boss@Example.com", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var got models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u.ID}).Decode(&got); err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("expected role %q, got %q", models.RoleAdmin, got.Role)
	}
}

func TestEnsureAdmin_AlreadyAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	u := fx.CreateUser(ctx, "root", "root@example.com", "pw-123456", models.RoleAdmin)

	if err := ensureAdmin(ctx, DBDeps{MongoDatabase: db}, "root@example.com", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var got models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": u.ID}).Decode(&got); err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("expected role %q, got %q", models.RoleAdmin, got.Role)
	}
	if got.UpdatedAt.Unix() != u.UpdatedAt.Unix() {
		t.Error("expected an existing admin to be left untouched")
	}
}

func TestEnsureAdmin_MissingUserIsSkipped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := ensureAdmin(ctx, DBDeps{MongoDatabase: db}, "ghost@example.com", testLogger()); err != nil {
		t.Fatalf("expected nil for a missing user, got %v", err)
	}

	n, err := db.Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no users to be created, found %d", n)
	}
}
