package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/venuehub/internal/app/store/sessions"
	userstore "github.com/dalemusser/venuehub/internal/app/store/users"
	"github.com/dalemusser/venuehub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// TestSessionName is the cookie name used by NewSessionManager.
const TestSessionName = "test-session"

// NewSessionManager returns a SessionManager backed by db's sessions and
// users collections, the same wiring the server uses.
func NewSessionManager(t *testing.T, db *mongo.Database) (*auth.SessionManager, *sessions.Store) {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-for-testing-only", TestSessionName, "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	store := sessions.New(db)
	sm.SetSessionRecords(store)
	sm.SetUserFetcher(userstore.NewFetcher(db))
	return sm, store
}

// SessionCookie returns the session cookie set on rec, or nil.
func SessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == TestSessionName {
			return c
		}
	}
	return nil
}
