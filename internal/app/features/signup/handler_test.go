package signup_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/venuehub/internal/app/features/errors"
	"github.com/dalemusser/venuehub/internal/app/features/signup"
	userstore "github.com/dalemusser/venuehub/internal/app/store/users"
	"github.com/dalemusser/venuehub/internal/app/system/httpjson"
	"github.com/dalemusser/venuehub/internal/app/system/indexes"
	"github.com/dalemusser/venuehub/internal/app/system/mailer"
	"github.com/dalemusser/venuehub/internal/app/system/tokens"
	"github.com/dalemusser/venuehub/internal/testutil"
	"go.uber.org/zap"
)

type testEnv struct {
	handler  *signup.Handler
	users    *userstore.Store
	mail     *mailer.Recorder
	fixtures *testutil.Fixtures
}

func newTestHandler(t *testing.T) testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	logger := zap.NewNop()
	users := userstore.New(db)
	issuer, err := tokens.NewIssuer(users, tokens.Config{Secret: []byte("test-signing-secret")})
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}
	rec := &mailer.Recorder{}
	h := signup.NewHandler(users, issuer, rec, nil, uierrors.NewErrorLogger(logger),
		"http://localhost:8080/", "VenueHub", 24*time.Hour, logger)
	return testEnv{handler: h, users: users, mail: rec, fixtures: testutil.NewFixtures(t, db)}
}

func postSignup(h *signup.Handler, body string) *httptest.ResponseRecorder {
	req := testutil.NewJSONRequest("POST", "/signup", body)
	rec := httptest.NewRecorder()
	h.HandleSignup(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body httpjson.ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

// linkParams extracts token and username from the verification link in the last email.
func linkParams(t *testing.T, rec *mailer.Recorder) (token, username string) {
	t.Helper()
	msg, ok := rec.Last()
	if !ok {
		t.Fatal("expected a verification email")
	}
	i := strings.Index(msg.TextBody, "http://localhost:8080/verify-email?")
	if i < 0 {
		t.Fatalf("no verification link in body:\n%s", msg.TextBody)
	}
	link := strings.Fields(msg.TextBody[i:])[0]
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	return u.Query().Get("token"), u.Query().Get("username")
}

func TestHandleSignup_CreatesPendingUserAndSendsLink(t *testing.T) {
	env := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := postSignup(env.handler, `{"username":"Ana","password":"secret123","email":"Ana@Example.com","first_name":"Ana"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200; body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"email_sent":true`) {
		t.Errorf("expected email_sent true, body=%s", rec.Body.String())
	}

	u, err := env.users.FindByUsername(ctx, "ana")
	if err != nil || u == nil {
		t.Fatalf("user not stored: %v", err)
	}
	if u.IsVerified || u.VerificationToken == nil {
		t.Error("new account should be pending with a token")
	}
	if u.Email != "ana@example.com" {
		t.Errorf("email: got %q, want lowercased", u.Email)
	}
	if strings.Contains(rec.Body.String(), *u.VerificationToken) {
		t.Error("token must not be echoed in the response")
	}

	token, username := linkParams(t, env.mail)
	if token != *u.VerificationToken || username != "Ana" {
		t.Errorf("link params: got (%q, %q)", token, username)
	}
}

func TestHandleSignup_DuplicateEmail(t *testing.T) {
	env := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fixtures.CreateUser(ctx, "taken", "taken@example.com", "secret123", "user")

	rec := postSignup(env.handler, `{"username":"other","password":"secret123","email":"TAKEN@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != "duplicate_email" {
		t.Errorf("code: got %q, want duplicate_email", code)
	}
	if len(env.mail.Sent) != 0 {
		t.Error("no email should be sent on rejection")
	}
}

func TestHandleSignup_Validation(t *testing.T) {
	env := newTestHandler(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"bad json", `{`, "validation"},
		{"missing username", `{"password":"secret123","email":"a@example.com"}`, "validation"},
		{"bad email", `{"username":"a","password":"secret123","email":"nope"}`, "validation"},
		{"missing password", `{"username":"a","email":"a@example.com"}`, "validation"},
		{"no email, username not an address", `{"username":"a","password":"secret123"}`, "validation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postSignup(env.handler, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rec.Code)
			}
			if code := errorCode(t, rec); code != tt.code {
				t.Errorf("code: got %q, want %q", code, tt.code)
			}
		})
	}
}

func TestHandleSignup_EmailFallsBackToUsername(t *testing.T) {
	env := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := postSignup(env.handler, `{"username":"Bob@X.com","password":"pw1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	u, err := env.users.FindByEmail(ctx, "bob@x.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u == nil {
		t.Fatal("expected the account to be stored under the username's address")
	}
	if u.Username != "Bob@X.com" {
		t.Errorf("username: got %q, want %q", u.Username, "Bob@X.com")
	}
	if len(env.mail.Sent) != 1 || env.mail.Sent[0].To != "bob@x.com" {
		t.Errorf("expected one verification mail to bob@x.com, got %+v", env.mail.Sent)
	}
}

func TestHandleSignup_MailFailureStillCreates(t *testing.T) {
	env := newTestHandler(t)
	env.mail.Err = mailer.ErrSMTPDown

	rec := postSignup(env.handler, `{"username":"bo","password":"secret123","email":"bo@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"email_sent":false`) {
		t.Errorf("expected email_sent false, body=%s", rec.Body.String())
	}
}

func TestServeVerifyEmail_FlowAndSingleUse(t *testing.T) {
	env := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	postSignup(env.handler, `{"username":"cy","password":"secret123","email":"cy@example.com"}`)
	token, username := linkParams(t, env.mail)

	verify := func() *httptest.ResponseRecorder {
		q := url.Values{"token": {token}, "username": {username}}
		req := httptest.NewRequest("GET", "/verify-email?"+q.Encode(), nil)
		rec := httptest.NewRecorder()
		env.handler.ServeVerifyEmail(rec, req)
		return rec
	}

	if rec := verify(); rec.Code != http.StatusOK {
		t.Fatalf("first verify: got %d, want 200", rec.Code)
	}
	u, _ := env.users.FindByUsername(ctx, "cy")
	if u == nil || !u.IsVerified || u.VerificationToken != nil {
		t.Fatal("user should be verified with the token cleared")
	}

	rec := verify()
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("replayed verify: got %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != "invalid_token" {
		t.Errorf("code: got %q, want invalid_token", code)
	}
}

func TestServeVerifyEmail_WrongToken(t *testing.T) {
	env := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	env.fixtures.CreatePendingUser(ctx, "dee", "dee@example.com", "secret123", "right-token", time.Now().Add(time.Hour))

	req := httptest.NewRequest("GET", "/verify-email?token=wrong-token&username=dee", nil)
	rec := httptest.NewRecorder()
	env.handler.ServeVerifyEmail(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

func TestHandleResend_UniformResponse(t *testing.T) {
	env := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	pending := env.fixtures.CreatePendingUser(ctx, "eve", "eve@example.com", "secret123", "old-token", time.Now().Add(time.Hour))
	env.fixtures.CreateUser(ctx, "fay", "fay@example.com", "secret123", "user")

	resend := func(email string) *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest("POST", "/resend-verification", `{"email":"`+email+`"}`)
		rec := httptest.NewRecorder()
		env.handler.HandleResend(rec, req)
		return rec
	}

	known := resend("eve@example.com")
	verified := resend("fay@example.com")
	unknown := resend("nobody@example.com")
	for _, rec := range []*httptest.ResponseRecorder{known, verified, unknown} {
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d, want 200", rec.Code)
		}
	}
	if known.Body.String() != unknown.Body.String() || verified.Body.String() != unknown.Body.String() {
		t.Error("responses must not reveal which addresses exist")
	}
	if len(env.mail.Sent) != 1 {
		t.Fatalf("expected exactly one email, got %d", len(env.mail.Sent))
	}

	u, _ := env.users.GetByID(ctx, pending.ID)
	if u.VerificationToken == nil || *u.VerificationToken == "old-token" {
		t.Error("resend should replace the stored token")
	}
}
