package auth_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/venuehub/internal/app/system/auth"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memRecords struct {
	mu   sync.Mutex
	next int
	m    map[string]string
}

func newMemRecords() *memRecords { return &memRecords{m: map[string]string{}} }

func (m *memRecords) Open(_ context.Context, userID, _, _ string, _ time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	id := fmt.Sprintf("sess-%d", m.next)
	m.m[id] = userID
	return id, nil
}

func (m *memRecords) Resolve(_ context.Context, id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uid, ok := m.m[id]
	return uid, ok
}

func (m *memRecords) Close(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, id)
	return nil
}

func (m *memRecords) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.m)
}

type mapFetcher map[string]*auth.SessionUser

func (f mapFetcher) FetchUser(_ context.Context, id string) *auth.SessionUser { return f[id] }

func newTestSessionManager(t *testing.T) (*auth.SessionManager, *memRecords, mapFetcher) {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	recs := newMemRecords()
	fetch := mapFetcher{}
	sm.SetSessionRecords(recs)
	sm.SetUserFetcher(fetch)
	return sm, recs, fetch
}

func verifiedUser(fetch mapFetcher) *models.User {
	u := &models.User{ID: primitive.NewObjectID(), Username: "alice", Email: "alice@example.com", Role: models.RoleUser, IsVerified: true}
	fetch[u.ID.Hex()] = &auth.SessionUser{ID: u.ID.Hex(), Username: u.Username, Email: u.Email, Role: u.Role}
	return u
}

// loginCookies performs a login and returns the cookies the browser would store.
func loginCookies(t *testing.T, sm *auth.SessionManager, u *models.User) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	if _, err := sm.Login(rec, req, u); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return rec.Result().Cookies()
}

func requestWith(cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest("GET", "/profile", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "s", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Error("expected error for empty session key")
	}
}

func TestLogin_Unverified(t *testing.T) {
	sm, recs, _ := newTestSessionManager(t)
	u := &models.User{ID: primitive.NewObjectID(), Username: "pending"}

	rec := httptest.NewRecorder()
	_, err := sm.Login(rec, httptest.NewRequest("POST", "/login", nil), u)
	if !errors.Is(err, auth.ErrUnverified) {
		t.Errorf("expected ErrUnverified, got %v", err)
	}
	if recs.count() != 0 {
		t.Error("no session should be opened for an unverified user")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no cookie should be written for an unverified user")
	}
}

func TestLogin_ThenResolve(t *testing.T) {
	sm, _, fetch := newTestSessionManager(t)
	u := verifiedUser(fetch)

	cookies := loginCookies(t, sm, u)
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	su, s := sm.Resolve(requestWith(cookies))
	if su == nil || s == nil {
		t.Fatal("expected session to resolve")
	}
	if su.ID != u.ID.Hex() || s.UserID != u.ID.Hex() {
		t.Errorf("resolved wrong user: %+v / %+v", su, s)
	}
}

func TestResolve_FreshUserEachRequest(t *testing.T) {
	sm, _, fetch := newTestSessionManager(t)
	u := verifiedUser(fetch)
	cookies := loginCookies(t, sm, u)

	fetch[u.ID.Hex()].Role = models.RoleOfficer
	su, _ := sm.Resolve(requestWith(cookies))
	if su == nil || su.Role != models.RoleOfficer {
		t.Errorf("expected role change to be visible, got %+v", su)
	}

	delete(fetch, u.ID.Hex())
	if su, _ := sm.Resolve(requestWith(cookies)); su != nil {
		t.Error("deleted user must not resolve")
	}
}

func TestResolve_Anonymous(t *testing.T) {
	sm, _, _ := newTestSessionManager(t)
	if su, s := sm.Resolve(httptest.NewRequest("GET", "/", nil)); su != nil || s != nil {
		t.Error("expected anonymous request to resolve to nothing")
	}
}

func TestResolve_TamperedCookie(t *testing.T) {
	sm, _, _ := newTestSessionManager(t)
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "not-a-valid-cookie"})
	if su, _ := sm.Resolve(req); su != nil {
		t.Error("tampered cookie must not resolve")
	}
}

func TestLogout_InvalidatesSession(t *testing.T) {
	sm, recs, fetch := newTestSessionManager(t)
	u := verifiedUser(fetch)
	cookies := loginCookies(t, sm, u)

	rec := httptest.NewRecorder()
	if err := sm.Logout(rec, requestWith(cookies)); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if recs.count() != 0 {
		t.Error("expected session record to be closed")
	}

	// The old cookie no longer resolves even if the browser replays it.
	if su, _ := sm.Resolve(requestWith(cookies)); su != nil {
		t.Error("replayed cookie must not resolve after logout")
	}

	var expired bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			expired = true
		}
	}
	if !expired {
		t.Error("expected logout to expire the cookie")
	}

	// Idempotent.
	if err := sm.Logout(httptest.NewRecorder(), requestWith(cookies)); err != nil {
		t.Errorf("second Logout failed: %v", err)
	}
	if err := sm.Logout(httptest.NewRecorder(), httptest.NewRequest("GET", "/logout", nil)); err != nil {
		t.Errorf("Logout without session failed: %v", err)
	}
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	sm, recs, fetch := newTestSessionManager(t)
	u := verifiedUser(fetch)
	first := loginCookies(t, sm, u)

	rec := httptest.NewRecorder()
	if _, err := sm.Login(rec, requestWith(first), u); err != nil {
		t.Fatalf("second Login failed: %v", err)
	}
	if recs.count() != 1 {
		t.Errorf("expected exactly one live session, got %d", recs.count())
	}
}

func TestLoadSessionUser(t *testing.T) {
	sm, _, fetch := newTestSessionManager(t)
	u := verifiedUser(fetch)
	cookies := loginCookies(t, sm, u)

	var got *auth.SessionUser
	var gotSession *auth.Session
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
		gotSession, _ = auth.CurrentSession(r)
	}))

	h.ServeHTTP(httptest.NewRecorder(), requestWith(cookies))
	if got == nil || got.ID != u.ID.Hex() {
		t.Errorf("expected principal in context, got %+v", got)
	}
	if gotSession == nil {
		t.Error("expected session in context")
	}

	got = nil
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if got != nil {
		t.Error("anonymous request must not carry a principal")
	}
}
