// Package auth owns the login session: the signed cookie that names a
// server-side session record, and the per-request principal resolved from it.
package auth

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - SessionID / session_id: The id of the server-side session record the cookie points at

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/venuehub/internal/app/system/ratelimit"
	"github.com/dalemusser/venuehub/internal/domain/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

const sessionIDKey = "session_id"

var (
	// ErrUnverified is returned by Login for accounts that have not confirmed
	// their email address.
	ErrUnverified = errors.New("email not verified")

	errNoRecords = errors.New("session records not configured")
)

/*─────────────────────────────────────────────────────────────────────────────*
| Principal                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the principal for one request. It is rebuilt from the user
// record on every request and never cached in the cookie.
type SessionUser struct {
	ID       string
	Username string
	Name     string
	Email    string
	Role     string
}

// Session is the resolved server-side session for one request.
type Session struct {
	ID     string
	UserID string
}

type ctxKey string

const (
	currentUserKey    ctxKey = "currentUser"
	currentSessionKey ctxKey = "currentSession"
)

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// CurrentSession returns the resolved session, if any.
func CurrentSession(r *http.Request) (*Session, bool) {
	s, ok := r.Context().Value(currentSessionKey).(*Session)
	return s, ok && s != nil
}

// WithTestUser injects a principal directly. Intended for handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Collaborators                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// UserFetcher loads the current state of a user. It returns nil when the
// user no longer exists or may not hold a session.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionRecords persists server-side sessions.
type SessionRecords interface {
	Open(ctx context.Context, userID, ip, userAgent string, expiresAt time.Time) (sessionID string, err error)
	Resolve(ctx context.Context, sessionID string) (userID string, ok bool)
	Close(ctx context.Context, sessionID string) error
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager issues, resolves and revokes sessions.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	maxAge  time.Duration
	records SessionRecords
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds the cookie store. In production (secure=true)
// cookies are Secure and SameSite=None so a separately hosted frontend can
// send them; in local dev over http they are SameSite=Lax.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{
		store:  store,
		name:   name,
		maxAge: maxAge,
		log:    logger,
	}, nil
}

// SetUserFetcher installs the loader used to rebuild the principal per request.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// SetSessionRecords installs the server-side session persistence.
func (sm *SessionManager) SetSessionRecords(r SessionRecords) { sm.records = r }

// Store exposes the cookie store (cookie options are needed when expiring).
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// GetSession returns the cookie session. A cookie that fails to decode
// (rotated key, tampering) yields a fresh empty session and the error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// Login opens a session for u and writes the cookie. Unverified accounts are
// refused. Only the session id travels in the cookie; the user id lives in
// the server-side record.
func (sm *SessionManager) Login(w http.ResponseWriter, r *http.Request, u *models.User) (*Session, error) {
	if !u.IsVerified {
		return nil, ErrUnverified
	}
	if sm.records == nil {
		return nil, errNoRecords
	}

	sess, err := sm.GetSession(r)
	if err != nil {
		var se securecookie.Error
		if !(errors.As(err, &se) && se.IsDecode()) {
			return nil, err
		}
		// Stale cookie from a rotated key; overwrite it.
		sm.log.Debug("replacing undecodable session cookie", zap.Error(err))
	}

	// Drop any session this browser already held.
	if prev, ok := sess.Values[sessionIDKey].(string); ok && prev != "" {
		_ = sm.records.Close(r.Context(), prev)
	}

	id, err := sm.records.Open(r.Context(), u.ID.Hex(), ratelimit.ClientIP(r), r.UserAgent(), time.Now().UTC().Add(sm.maxAge))
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	sess.Values = map[any]any{sessionIDKey: id}
	if err := sess.Save(r, w); err != nil {
		_ = sm.records.Close(r.Context(), id)
		return nil, fmt.Errorf("save session cookie: %w", err)
	}
	return &Session{ID: id, UserID: u.ID.Hex()}, nil
}

// Resolve maps the request's cookie to a fresh principal. It returns
// (nil, nil) for anonymous requests, unknown or expired sessions, and users
// that may no longer hold a session.
func (sm *SessionManager) Resolve(r *http.Request) (*SessionUser, *Session) {
	if sm.records == nil || sm.fetcher == nil {
		return nil, nil
	}
	sess, err := sm.GetSession(r)
	if err != nil {
		return nil, nil
	}
	id, _ := sess.Values[sessionIDKey].(string)
	if id == "" {
		return nil, nil
	}
	userID, ok := sm.records.Resolve(r.Context(), id)
	if !ok {
		return nil, nil
	}
	u := sm.fetcher.FetchUser(r.Context(), userID)
	if u == nil {
		return nil, nil
	}
	return u, &Session{ID: id, UserID: userID}
}

// Logout closes the server-side session (if any) and expires the cookie.
// It is safe to call without a session.
func (sm *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Warn("session decode failed during logout", zap.Error(err))
	}
	if id, ok := sess.Values[sessionIDKey].(string); ok && id != "" && sm.records != nil {
		if err := sm.records.Close(r.Context(), id); err != nil {
			sm.log.Error("close session record failed", zap.Error(err))
		}
	}

	if opts := sm.store.Options; opts != nil {
		o := *opts
		sess.Options = &o
	}
	sess.Options.MaxAge = -1
	sess.Values = map[any]any{}
	return sess.Save(r, w)
}

// LoadSessionUser injects the principal into context if the request carries
// a live session. Anonymous requests pass through untouched.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, s := sm.Resolve(r); u != nil {
			r = withUser(r, u)
			r = r.WithContext(context.WithValue(r.Context(), currentSessionKey, s))
		}
		next.ServeHTTP(w, r)
	})
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
