package sessions_test

import (
	"testing"
	"time"

	"github.com/dalemusser/venuehub/internal/app/store/sessions"
	"github.com/dalemusser/venuehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_OpenResolveClose(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID().Hex()
	id, err := store.Open(ctx, userID, "192.168.1.1", "Mozilla/5.0", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a session id")
	}

	got, ok := store.Resolve(ctx, id)
	if !ok || got != userID {
		t.Errorf("Resolve: got (%q, %v), want (%q, true)", got, ok, userID)
	}

	if err := store.Close(ctx, id); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, ok := store.Resolve(ctx, id); ok {
		t.Error("expected closed session not to resolve")
	}

	// Idempotent.
	if err := store.Close(ctx, id); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestStore_Resolve_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, ok := store.Resolve(ctx, "does-not-exist"); ok {
		t.Error("expected unknown session not to resolve")
	}
	if _, ok := store.Resolve(ctx, ""); ok {
		t.Error("expected empty id not to resolve")
	}
}

func TestStore_Resolve_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id, err := store.Open(ctx, primitive.NewObjectID().Hex(), "", "", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, ok := store.Resolve(ctx, id); ok {
		t.Error("expected expired session not to resolve")
	}

	n, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CleanupExpired removed %d, want 1", n)
	}
}

func TestStore_CloseAllForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessions.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := primitive.NewObjectID().Hex()
	bob := primitive.NewObjectID().Hex()
	exp := time.Now().Add(time.Hour)

	for i := 0; i < 3; i++ {
		if _, err := store.Open(ctx, alice, "", "", exp); err != nil {
			t.Fatalf("Open failed: %v", err)
		}
	}
	bobSession, err := store.Open(ctx, bob, "", "", exp)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	n, err := store.CloseAllForUser(ctx, alice)
	if err != nil {
		t.Fatalf("CloseAllForUser failed: %v", err)
	}
	if n != 3 {
		t.Errorf("closed %d sessions, want 3", n)
	}
	if c, _ := store.CountForUser(ctx, alice); c != 0 {
		t.Errorf("alice still has %d sessions", c)
	}
	if _, ok := store.Resolve(ctx, bobSession); !ok {
		t.Error("other users' sessions must survive")
	}
}
