package logout_test

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - SessionID / session_id: The id of the server-side session record the cookie points at

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/venuehub/internal/app/features/logout"
	"github.com/dalemusser/venuehub/internal/app/system/auth"
	"github.com/dalemusser/venuehub/internal/testutil"
	"go.uber.org/zap"
)

func TestServeLogout_NoSessionRedirectsToLogin(t *testing.T) {
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	handler := logout.NewHandler(sessionMgr, nil, "", zap.NewNop())

	rec := testutil.NewRecorder()
	handler.ServeLogout(rec, httptest.NewRequest("GET", "/logout", nil))

	rec.AssertRedirect(t, "/login")
	c := testutil.SessionCookie(rec.ResponseRecorder)
	if c == nil || c.MaxAge != -1 {
		t.Errorf("expected an expired session cookie, got %+v", c)
	}
}

func TestServeLogout_InvalidatesServerSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	sm, sessStore := testutil.NewSessionManager(t, db)
	u := testutil.NewFixtures(t, db).CreateUser(ctx, "ana", "ana@example.com", "secret123", "user")

	// Log in to obtain a real cookie.
	loginRec := httptest.NewRecorder()
	if _, err := sm.Login(loginRec, httptest.NewRequest("POST", "/login", nil), &u); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	cookie := testutil.SessionCookie(loginRec)
	if cookie == nil {
		t.Fatal("expected session cookie after login")
	}

	handler := logout.NewHandler(sm, nil, "http://localhost:3000/", zap.NewNop())
	req := httptest.NewRequest("GET", "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	sm.LoadSessionUser(http.HandlerFunc(handler.ServeLogout)).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "http://localhost:3000/login" {
		t.Errorf("Location: got %q, want the frontend login page", loc)
	}
	if n, _ := sessStore.CountForUser(ctx, u.ID.Hex()); n != 0 {
		t.Errorf("server session should be gone, %d remain", n)
	}

	// Replaying the old cookie yields no principal.
	replay := httptest.NewRequest("GET", "/profile", nil)
	replay.AddCookie(cookie)
	if su, _ := sm.Resolve(replay); su != nil {
		t.Error("old cookie still resolves after logout")
	}

	// Logging out again is harmless.
	again := httptest.NewRequest("GET", "/logout", nil)
	again.AddCookie(cookie)
	rec2 := httptest.NewRecorder()
	handler.ServeLogout(rec2, again)
	if rec2.Code != http.StatusSeeOther {
		t.Errorf("second logout: got %d, want 303", rec2.Code)
	}
}
