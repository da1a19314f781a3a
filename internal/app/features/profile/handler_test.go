package profile_test

import (
	"encoding/json"
	"net/http"
	"testing"

	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	"github.com/dalemusser/venuehub/internal/app/features/profile"
	userstore "github.com/dalemusser/venuehub/internal/app/store/users"
	"github.com/dalemusser/venuehub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*profile.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := profile.NewHandler(userstore.New(db), uierrors.NewErrorLogger(logger), logger)
	return h, testutil.NewFixtures(t, db)
}

func TestServeProfile_ReturnsCurrentUser(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := fixtures.CreateUser(ctx, "ana", "ana@example.com", "secret123", "user")

	req := testutil.NewAuthenticatedRequest("GET", "/profile", testutil.FromModel(u))
	rec := testutil.NewRecorder()
	h.ServeProfile(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["username"] != "ana" || body["email"] != "ana@example.com" {
		t.Errorf("unexpected body: %v", body)
	}
	if _, leaked := body["password_hash"]; leaked {
		t.Error("password hash must not be serialised")
	}
}

func TestServeProfile_Anonymous(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := testutil.NewRecorder()
	h.ServeProfile(rec, testutil.NewRequest("GET", "/profile"))
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, `"unauthorized"`)
}

func TestRoutes_GateRunsFirst(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := testutil.NewRecorder()
	profile.Routes(h).ServeHTTP(rec, testutil.NewRequest("GET", "/"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
